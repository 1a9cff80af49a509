package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

type ratio struct{ keep, every uint64 }

// ratioSampler lets keep of every consecutive events through.
type ratioSampler struct {
	ratio atomic.Pointer[ratio]
	seen  atomic.Uint64
}

func newRatioSampler(keep, every int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(keep, every)
	return s
}

// Set changes the ratio and restarts counting. A non-positive value turns
// sampling off so every event passes.
func (s *ratioSampler) Set(keep, every int) {
	s.seen.Store(0)
	if keep <= 0 || every <= 0 {
		s.ratio.Store(nil)
		return
	}
	s.ratio.Store(&ratio{keep: uint64(min(keep, every)), every: uint64(every)})
}

// Allow reports whether the next event passes.
func (s *ratioSampler) Allow() bool {
	r := s.ratio.Load()
	if r == nil {
		return true
	}
	return (s.seen.Add(1)-1)%r.every < r.keep
}

// parseRatioSpec reads "keep/every" or a bare "every" meaning 1 in every.
// "0" and unparsable input yield 0/0.
func parseRatioSpec(spec string) (int, int) {
	spec = strings.TrimSpace(spec)
	if a, b, ok := strings.Cut(spec, "/"); ok {
		keep, err1 := strconv.Atoi(strings.TrimSpace(a))
		every, err2 := strconv.Atoi(strings.TrimSpace(b))
		if err1 == nil && err2 == nil {
			return keep, every
		}
		return 0, 0
	}
	every, err := strconv.Atoi(spec)
	if err != nil || every <= 0 {
		return 0, 0
	}
	return 1, every
}
