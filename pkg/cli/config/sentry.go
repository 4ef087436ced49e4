package config

import (
	"log/slog"

	"github.com/teamsense-lab/argus/pkg/utils/errutil"
	"github.com/urfave/cli/v3"
)

// Sentry holds CLI flags for error reporting
type Sentry struct {
	dsn string
	env string
}

func (x *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN (error reporting is disabled when empty)",
			Category:    "Sentry",
			Sources:     cli.EnvVars("ARGUS_SENTRY_DSN"),
			Destination: &x.dsn,
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment name",
			Category:    "Sentry",
			Value:       "production",
			Sources:     cli.EnvVars("ARGUS_SENTRY_ENV"),
			Destination: &x.env,
		},
	}
}

func (x Sentry) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("dsn.len", len(x.dsn)),
		slog.String("env", x.env),
	)
}

// Configure initializes the error reporter. A missing DSN leaves
// reporting disabled.
func (x *Sentry) Configure() error {
	return errutil.InitSentry(x.dsn, x.env)
}
