package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/teamsense-lab/argus/pkg/domain/model/config"
	"github.com/urfave/cli/v3"
)

// AppConfig loads the optional application configuration file. The
// file tunes the scoring pipeline; when no file is given the
// calibrated defaults are used.
type AppConfig struct {
	path string
}

// fileConfig is the TOML layout of the configuration file
type fileConfig struct {
	Scoring domainConfig.Scoring `toml:"scoring"`
}

func (a *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the TOML configuration file",
			Sources:     cli.EnvVars("ARGUS_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Path returns the configured file path
func (a *AppConfig) Path() string {
	return a.path
}

// Configure loads and validates the scoring configuration. Values
// absent from the file keep their defaults.
func (a *AppConfig) Configure() (*domainConfig.Scoring, error) {
	if a.path == "" {
		return domainConfig.DefaultScoring(), nil
	}
	return LoadAppConfiguration(a.path)
}

// LoadAppConfiguration loads the scoring configuration from a TOML file
func LoadAppConfiguration(path string) (*domainConfig.Scoring, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrConfigNotFound, "cannot load configuration", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	cfg := fileConfig{Scoring: *domainConfig.DefaultScoring()}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V(ConfigPathKey, path))
	}

	if err := cfg.Scoring.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, err.Error(), goerr.V(ConfigPathKey, path))
	}

	return &cfg.Scoring, nil
}
