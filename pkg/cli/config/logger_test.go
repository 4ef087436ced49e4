package config_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/teamsense-lab/argus/pkg/cli/config"
	"github.com/urfave/cli/v3"
)

func configureLogger(t *testing.T, args ...string) error {
	t.Helper()

	var loggerCfg config.Logger
	var configureErr error
	cmd := &cli.Command{
		Name:  "test",
		Flags: loggerCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			closer, err := loggerCfg.Configure()
			if err != nil {
				configureErr = err
				return nil
			}
			closer()
			return nil
		},
	}

	gt.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, args...)))
	return configureErr
}

func TestLoggerConfigure(t *testing.T) {
	gt.NoError(t, configureLogger(t, "--log-level", "debug", "--log-format", "json"))
}

func TestLoggerConfigureInvalidLevel(t *testing.T) {
	gt.Error(t, configureLogger(t, "--log-level", "verbose"))
}

func TestLoggerConfigureInvalidFormat(t *testing.T) {
	gt.Error(t, configureLogger(t, "--log-format", "xml"))
}

func TestLoggerConfigureFileOutput(t *testing.T) {
	path := t.TempDir() + "/argus.log"
	gt.NoError(t, configureLogger(t, "--log-output", path))
}
