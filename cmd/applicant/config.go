package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"krushisetu/internal/apply"
	"krushisetu/internal/logging"
	"krushisetu/internal/portal"
)

type config struct {
	BaseURL      string        `envconfig:"PORTAL_BASE_URL" default:"http://localhost:8080"`
	ApplicantID  string        `envconfig:"PORTAL_APPLICANT_ID"`
	CSRFToken    string        `envconfig:"PORTAL_CSRF_TOKEN"`
	Timeout      time.Duration `envconfig:"PORTAL_TIMEOUT" default:"30s"`
	ProfilePaths []string      `envconfig:"PROFILE_PATHS"`
	Policy       string        `envconfig:"RECONCILE_POLICY" default:"strict"`
	Concurrency  int           `envconfig:"UPLOAD_CONCURRENCY" default:"0"`
	MaxFileBytes int64         `envconfig:"MAX_UPLOAD_BYTES" default:"5242880"`
}

func loadConfig(c *cli.Context) (*config, error) {
	cfg := new(config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.IsSet("base-url") {
		cfg.BaseURL = c.String("base-url")
	}
	if c.IsSet("applicant") {
		cfg.ApplicantID = c.String("applicant")
	}
	cfg.ApplicantID = strings.TrimSpace(cfg.ApplicantID)
	if cfg.ApplicantID == "" {
		return nil, fmt.Errorf("set PORTAL_APPLICANT_ID or --applicant")
	}

	return cfg, nil
}

func newLogger(c *cli.Context) *logrus.Logger {
	w := c.App.ErrWriter
	if w == nil {
		w = os.Stderr
	}
	return logging.New(w, c.String("log-level"), time.Local)
}

// newClient builds the portal client from the environment and global flags.
func newClient(c *cli.Context) (*portal.Client, *config, logrus.FieldLogger, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, nil, err
	}
	log := newLogger(c).WithField("applicant_id", cfg.ApplicantID)

	client, err := portal.New(portal.Config{
		BaseURL:      cfg.BaseURL,
		ApplicantID:  cfg.ApplicantID,
		CSRFToken:    cfg.CSRFToken,
		Timeout:      cfg.Timeout,
		ProfilePaths: cfg.ProfilePaths,
	}, portal.WithLogger(log))
	if err != nil {
		return nil, nil, nil, err
	}
	return client, cfg, log, nil
}

func (cfg *config) sessionOptions(c *cli.Context, log logrus.FieldLogger) (apply.Options, error) {
	policy := cfg.Policy
	if c.IsSet("policy") {
		policy = c.String("policy")
	}
	p, err := apply.ParsePolicy(policy)
	if err != nil {
		return apply.Options{}, err
	}
	concurrency := cfg.Concurrency
	if c.IsSet("concurrency") {
		concurrency = c.Int("concurrency")
	}
	return apply.Options{
		Policy:       p,
		Concurrency:  concurrency,
		MaxFileBytes: cfg.MaxFileBytes,
		Logger:       log,
	}, nil
}
