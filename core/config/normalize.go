package config

import (
	"errors"
	"fmt"
	"strings"
)

// Normalize trims and lowercases values, fills defaults and reports every
// invalid setting at once.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}
	err := errors.Join(
		cfg.Telegram.normalize(),
		cfg.normalizeTransport(),
		cfg.RateLimit.normalize(),
	)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (t *TelegramConfig) normalize() error {
	var errs []error
	if t.Token = strings.TrimSpace(t.Token); t.Token == "" {
		errs = append(errs, errors.New("telegram.token is required"))
	}
	for _, id := range t.AdminIDs {
		if id <= 0 {
			errs = append(errs, fmt.Errorf("telegram.admin_ids: %d is not a user id", id))
		}
	}
	if t.LongPollTimeoutSeconds < 0 {
		errs = append(errs, errors.New("telegram.longpoll_timeout_seconds must be >= 0"))
	}
	return errors.Join(errs...)
}

func (c *Config) normalizeTransport() error {
	mode := strings.ToLower(strings.TrimSpace(c.Telegram.RunMode))
	switch mode {
	case "", "polling", RunModeLongpoll:
		c.Telegram.RunMode = RunModeLongpoll
		return nil
	case RunModeWebhook:
		c.Telegram.RunMode = RunModeWebhook
	default:
		return fmt.Errorf("telegram.run_mode %q: want webhook or longpoll", c.Telegram.RunMode)
	}

	var errs []error
	wh := &c.Webhook
	if wh.URL = strings.TrimSpace(wh.URL); wh.URL == "" {
		errs = append(errs, errors.New("webhook.url is required in webhook mode"))
	}
	if wh.Listen = strings.TrimSpace(wh.Listen); wh.Listen == "" {
		errs = append(errs, errors.New("webhook.listen is required in webhook mode"))
	}
	if wh.Port <= 0 || wh.Port > 65535 {
		errs = append(errs, fmt.Errorf("webhook.port %d is out of range", wh.Port))
	}
	return errors.Join(errs...)
}

func (r *RateLimitConfig) normalize() error {
	if r.IntervalMS < 0 {
		return errors.New("rate_limit.interval_ms must be >= 0")
	}
	kept := r.ExcludeUpdates[:0]
	for _, v := range r.ExcludeUpdates {
		kind := strings.ToLower(strings.TrimSpace(v))
		switch kind {
		case "":
			continue
		case UpdateCallback, UpdateMessage, UpdateInlineQuery:
			kept = append(kept, kind)
		default:
			return fmt.Errorf("rate_limit.exclude_updates %q: want callback, message or inline_query", v)
		}
	}
	r.ExcludeUpdates = kept
	return nil
}
