package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/teamsense-lab/argus/pkg/cli/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "argus.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadAppConfiguration(t *testing.T) {
	path := writeConfig(t, `
[scoring]
match_threshold = 0.8
load_capacity = 20
`)

	scoring := gt.R1(config.LoadAppConfiguration(path)).NoError(t)
	gt.Number(t, scoring.MatchThreshold).Equal(0.8)
	gt.Number(t, scoring.LoadCapacity).Equal(20)

	// Values absent from the file keep their defaults
	gt.Number(t, scoring.SourceDampening).Equal(0.75)
	gt.Number(t, scoring.PageSize).Equal(100)
	gt.Number(t, scoring.RefreshSkewMinutes).Equal(60)
}

func TestLoadAppConfigurationNotFound(t *testing.T) {
	_, err := config.LoadAppConfiguration(filepath.Join(t.TempDir(), "missing.toml"))
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, config.ErrConfigNotFound)).True()
}

func TestLoadAppConfigurationInvalidValue(t *testing.T) {
	path := writeConfig(t, `
[scoring]
match_threshold = 1.5
`)

	_, err := config.LoadAppConfiguration(path)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, config.ErrInvalidConfig)).True()
}

func TestLoadAppConfigurationBrokenTOML(t *testing.T) {
	path := writeConfig(t, `[scoring`)

	_, err := config.LoadAppConfiguration(path)
	gt.Error(t, err)
}
