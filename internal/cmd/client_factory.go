package cmd

import (
	"log/slog"
	"strings"

	"github.com/siftscience/sift-cli/internal/api"
	"github.com/siftscience/sift-cli/internal/config"
)

type clientFactory struct {
	overrides config.Overrides
	timeout   api.Timeout
	version   string
}

func newClientFactory() *clientFactory {
	return &clientFactory{
		overrides: config.Overrides{
			APIKey:    strings.TrimSpace(flags.APIKey),
			AccountID: strings.TrimSpace(flags.AccountID),
			BaseURL:   strings.TrimSpace(flags.BaseURL),
			Profile:   strings.TrimSpace(flags.Profile),
		},
		timeout: api.Timeout{Connect: flags.ConnectTimeout, Read: flags.Timeout},
		version: strings.TrimPrefix(strings.TrimSpace(flags.APIVersion), "v"),
	}
}

func (f *clientFactory) resolve() (config.ClientConfig, error) {
	return config.ResolveClientConfig(f.overrides)
}

func (f *clientFactory) client() (*api.Client, error) {
	cfg, err := f.resolve()
	if err != nil {
		return nil, err
	}
	slog.Debug("resolved credentials",
		"profile", cfg.Profile,
		"api_key", config.MaskKey(cfg.APIKey),
		"account_id", cfg.AccountID,
		"base_url", cfg.BaseURL,
	)
	return api.New(api.Config{
		APIKey:    cfg.APIKey,
		AccountID: cfg.AccountID,
		BaseURL:   cfg.BaseURL,
		Version:   f.version,
		Timeout:   f.timeout,
	})
}
