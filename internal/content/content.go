// Package content loads the immutable catalog the menu bot displays:
// a flat list of items, a set of topic records and the surrounding UI texts.
package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/m3rciful/infobot/core/logger"
)

//go:embed default.yaml
var defaultBundle []byte

// Topic is a single detail record.
type Topic struct {
	Key         string
	Title       string
	Icon        string
	Description string
	Takeaways   []string
}

func (t Topic) clone() Topic {
	t.Takeaways = append([]string(nil), t.Takeaways...)
	return t
}

// Label is the topic title prefixed with its icon, if any.
func (t Topic) Label() string {
	if t.Icon == "" {
		return t.Title
	}
	return t.Icon + " " + t.Title
}

type listFile struct {
	Title string   `yaml:"title"`
	Icon  string   `yaml:"icon"`
	Noun  string   `yaml:"noun"`
	Items []string `yaml:"items"`
}

type topicFile struct {
	Key         string   `yaml:"key"`
	Title       string   `yaml:"title"`
	Icon        string   `yaml:"icon"`
	Description string   `yaml:"description"`
	Takeaways   []string `yaml:"takeaways"`
}

type bundleFile struct {
	Title   string   `yaml:"title"`
	Welcome string   `yaml:"welcome"`
	Help    string   `yaml:"help"`
	List    listFile `yaml:"list"`
	Topics  struct {
		Preamble string      `yaml:"preamble"`
		Items    []topicFile `yaml:"items"`
	} `yaml:"topics"`
}

// Catalog is the validated, read-only content bundle. Accessors return
// copies so callers can never mutate shared state.
type Catalog struct {
	title, welcome, help string

	listTitle, listIcon, listNoun string
	items                         []string

	preamble string
	topics   []Topic
	byKey    map[string]int
}

// Option tunes Parse.
type Option func(*options)

type options struct {
	topicKey func(string) bool
	source   string
}

// WithTopicKeys restricts topic keys to those accepted by allowed; keys the
// navigation grammar cannot address would otherwise be unreachable.
func WithTopicKeys(allowed func(string) bool) Option {
	return func(o *options) { o.topicKey = allowed }
}

func withSource(src string) Option {
	return func(o *options) { o.source = src }
}

// Parse decodes and validates a YAML bundle.
func Parse(data []byte, opts ...Option) (*Catalog, error) {
	o := options{source: "inline"}
	for _, opt := range opts {
		opt(&o)
	}

	var f bundleFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("content: parse %s: %w", o.source, err)
	}
	if err := validate(&f, o.topicKey); err != nil {
		return nil, fmt.Errorf("content: invalid bundle %s: %w", o.source, err)
	}

	c := &Catalog{
		title:     strings.TrimSpace(f.Title),
		welcome:   strings.TrimSpace(f.Welcome),
		help:      strings.TrimSpace(f.Help),
		listTitle: strings.TrimSpace(f.List.Title),
		listIcon:  strings.TrimSpace(f.List.Icon),
		listNoun:  strings.TrimSpace(f.List.Noun),
		preamble:  strings.TrimSpace(f.Topics.Preamble),
		byKey:     make(map[string]int, len(f.Topics.Items)),
	}
	if c.listNoun == "" {
		c.listNoun = "items"
	}
	c.items = make([]string, len(f.List.Items))
	for i, it := range f.List.Items {
		c.items[i] = strings.TrimSpace(it)
	}
	c.topics = make([]Topic, len(f.Topics.Items))
	for i, t := range f.Topics.Items {
		takeaways := make([]string, 0, len(t.Takeaways))
		for _, line := range t.Takeaways {
			if line = strings.TrimSpace(line); line != "" {
				takeaways = append(takeaways, line)
			}
		}
		c.topics[i] = Topic{
			Key:         strings.TrimSpace(t.Key),
			Title:       strings.TrimSpace(t.Title),
			Icon:        strings.TrimSpace(t.Icon),
			Description: strings.TrimSpace(t.Description),
			Takeaways:   takeaways,
		}
		c.byKey[c.topics[i].Key] = i
	}

	logger.Info(logger.Background(), "content", "content.loaded",
		slog.String("source", o.source),
		slog.Int("items", len(c.items)),
		slog.Int("topics", len(c.topics)),
	)
	return c, nil
}

func validate(f *bundleFile, topicKey func(string) bool) error {
	var errs []error
	if strings.TrimSpace(f.Title) == "" {
		errs = append(errs, errors.New("title is required"))
	}
	if len(f.List.Items) > 0 && strings.TrimSpace(f.List.Title) == "" {
		errs = append(errs, errors.New("list.title is required when list.items is set"))
	}
	if len(f.List.Items) == 0 && len(f.Topics.Items) == 0 {
		errs = append(errs, errors.New("bundle has neither list items nor topics"))
	}

	seenItems := make(map[string]int, len(f.List.Items))
	for i, it := range f.List.Items {
		it = strings.TrimSpace(it)
		if it == "" {
			errs = append(errs, fmt.Errorf("list.items[%d] is empty", i))
			continue
		}
		if prev, dup := seenItems[strings.ToLower(it)]; dup {
			errs = append(errs, fmt.Errorf("list.items[%d] %q duplicates list.items[%d]", i, it, prev))
			continue
		}
		seenItems[strings.ToLower(it)] = i
	}

	seenKeys := make(map[string]int, len(f.Topics.Items))
	for i, t := range f.Topics.Items {
		key := strings.TrimSpace(t.Key)
		switch {
		case key == "":
			errs = append(errs, fmt.Errorf("topics.items[%d].key is empty", i))
		case topicKey != nil && !topicKey(key):
			errs = append(errs, fmt.Errorf("topics.items[%d].key %q is not an addressable topic", i, key))
		}
		if prev, dup := seenKeys[key]; dup && key != "" {
			errs = append(errs, fmt.Errorf("topics.items[%d].key %q duplicates topics.items[%d]", i, key, prev))
		}
		seenKeys[key] = i
		if strings.TrimSpace(t.Title) == "" {
			errs = append(errs, fmt.Errorf("topics.items[%d].title is empty", i))
		}
		if strings.TrimSpace(t.Description) == "" {
			errs = append(errs, fmt.Errorf("topics.items[%d].description is empty", i))
		}
	}
	return errors.Join(errs...)
}

// LoadFile reads and parses the bundle at path.
func LoadFile(path string, opts ...Option) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("content: read bundle: %w", err)
	}
	return Parse(data, append(opts, withSource(path))...)
}

// Default parses the bundle embedded in the binary.
func Default(opts ...Option) (*Catalog, error) {
	return Parse(defaultBundle, append(opts, withSource("embedded"))...)
}

// Load reads the bundle at path, or the embedded default when path is empty.
func Load(path string, opts ...Option) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(opts...)
	}
	return LoadFile(path, opts...)
}

func (c *Catalog) Title() string   { return c.title }
func (c *Catalog) Welcome() string { return c.welcome }
func (c *Catalog) Help() string    { return c.help }

// ListTitle is the heading of the paginated list.
func (c *Catalog) ListTitle() string { return c.listTitle }
func (c *Catalog) ListIcon() string  { return c.listIcon }

// ListNoun names the list items in plural, e.g. "countries".
func (c *Catalog) ListNoun() string { return c.listNoun }

// Len reports the number of list items.
func (c *Catalog) Len() int { return len(c.items) }

// Items returns a copy of the list in display order.
func (c *Catalog) Items() []string {
	return append([]string(nil), c.items...)
}

// Slice returns a copy of items[from:to] with bounds clipped to the list.
func (c *Catalog) Slice(from, to int) []string {
	if from < 0 {
		from = 0
	}
	if to > len(c.items) {
		to = len(c.items)
	}
	if from >= to {
		return nil
	}
	return append([]string(nil), c.items[from:to]...)
}

// Preamble is the fixed text shown above every topic.
func (c *Catalog) Preamble() string { return c.preamble }

// Topics returns copies of all topics in display order.
func (c *Catalog) Topics() []Topic {
	out := make([]Topic, len(c.topics))
	for i, t := range c.topics {
		out[i] = t.clone()
	}
	return out
}

// Topic looks up a topic by key.
func (c *Catalog) Topic(key string) (Topic, bool) {
	i, ok := c.byKey[key]
	if !ok {
		return Topic{}, false
	}
	return c.topics[i].clone(), true
}
