package config

import (
	"fmt"
	"net/url"
)

// Validate checks all configuration values and returns a wrapped sentinel
// error for the first invalid one.
func (c *Config) Validate() error {
	if c.OllamaHost == "" {
		return fmt.Errorf("%w: host is empty", ErrInvalidOllamaHost)
	}
	u, err := url.Parse(c.OllamaHost)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q is not an absolute URL", ErrInvalidOllamaHost, c.OllamaHost)
	}

	if c.ModelName == "" {
		return fmt.Errorf("%w: model name is empty", ErrInvalidModelName)
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: %v not in [0, 2]", ErrInvalidTemperature, c.Temperature)
	}
	if c.MaxTokens <= 0 || c.MaxTokens > 1<<15 {
		return fmt.Errorf("%w: %d not in (0, 32768]", ErrInvalidMaxTokens, c.MaxTokens)
	}
	if c.TopP <= 0 || c.TopP > 1 {
		return fmt.Errorf("%w: %v not in (0, 1]", ErrInvalidTopP, c.TopP)
	}
	if c.FrequencyPenalty < 0 || c.FrequencyPenalty > 2 {
		return fmt.Errorf("%w: frequency_penalty %v not in [0, 2]", ErrInvalidPenalty, c.FrequencyPenalty)
	}
	if c.PresencePenalty < 0 || c.PresencePenalty > 2 {
		return fmt.Errorf("%w: presence_penalty %v not in [0, 2]", ErrInvalidPenalty, c.PresencePenalty)
	}

	if c.HistoryLimit < 2 {
		return fmt.Errorf("%w: %d is below the user+assistant pair minimum", ErrInvalidHistoryLimit, c.HistoryLimit)
	}

	if c.GenerateTimeout <= 0 {
		return fmt.Errorf("%w: generate_timeout %v", ErrInvalidTimeout, c.GenerateTimeout)
	}
	if c.StreamTimeout <= 0 {
		return fmt.Errorf("%w: stream_timeout %v", ErrInvalidTimeout, c.StreamTimeout)
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("%w: probe_timeout %v", ErrInvalidTimeout, c.ProbeTimeout)
	}

	if c.ListenAddr == "" {
		return fmt.Errorf("%w: listen_addr is empty", ErrInvalidListenAddr)
	}

	return nil
}
