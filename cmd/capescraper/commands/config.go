package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"capescraper/internal/browser"
	"capescraper/internal/cape"
	"capescraper/internal/notify"
	"capescraper/internal/sink"
	"capescraper/lib/configutil"
)

type ChromeConfig struct {
	ExecPath             string `json:"exec_path"`
	Headless             bool   `json:"headless"`
	RemoteURL            string `json:"remote_url"`
	UserDataDir          string `json:"user_data_dir"`
	ActionTimeoutSeconds int    `json:"action_timeout_seconds"`
}

type WaitConfig struct {
	SettleDelayMs  int `json:"settle_delay_ms"`
	TimeoutSeconds int `json:"timeout_seconds"`
	PollIntervalMs int `json:"poll_interval_ms"`
}

type Config struct {
	BaseURL string `json:"base_url"`
	// Username and Password fall back to the CAPESCRAPER_USERNAME and CAPESCRAPER_PASSWORD environment
	// variables.
	Username string `json:"username"`
	Password string `json:"password"`

	Chrome  ChromeConfig  `json:"chrome"`
	Wait    WaitConfig    `json:"wait"`
	Outputs []sink.Output `json:"outputs"`

	// Subjects replaces the built in list of subject codes searched after the departments.
	Subjects     []string `json:"subjects"`
	SkipSubjects bool     `json:"skip_subjects"`

	Smtp notify.SmtpConfig `json:"smtp"`
}

func readConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no config file found, using defaults and the environment", "path", path)
	} else if err != nil {
		return Config{}, err
	}
	if cfg.Username == "" {
		cfg.Username = os.Getenv("CAPESCRAPER_USERNAME")
	}
	if cfg.Password == "" {
		cfg.Password = os.Getenv("CAPESCRAPER_PASSWORD")
	}
	if cfg.Wait.SettleDelayMs < 0 || cfg.Wait.TimeoutSeconds < 0 || cfg.Wait.PollIntervalMs < 0 {
		return Config{}, fmt.Errorf("wait durations in %s must not be negative", path)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = cape.BaseURL
	}
	if len(cfg.Outputs) == 0 {
		cfg.Outputs = []sink.Output{{Format: sink.FormatTSV, Path: "cape.tsv", Header: true}}
	}
	return cfg, nil
}

func (c Config) browserOptions() browser.Options {
	return browser.Options{
		ExecPath:      c.Chrome.ExecPath,
		Headless:      c.Chrome.Headless,
		UserDataDir:   c.Chrome.UserDataDir,
		RemoteURL:     c.Chrome.RemoteURL,
		ActionTimeout: time.Duration(c.Chrome.ActionTimeoutSeconds) * time.Second,
	}
}

func (c Config) waitOptions() cape.WaitOptions {
	return cape.WaitOptions{
		SettleDelay:  time.Duration(c.Wait.SettleDelayMs) * time.Millisecond,
		Timeout:      time.Duration(c.Wait.TimeoutSeconds) * time.Second,
		PollInterval: time.Duration(c.Wait.PollIntervalMs) * time.Millisecond,
	}
}
