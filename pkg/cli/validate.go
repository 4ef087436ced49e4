package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/teamsense-lab/argus/pkg/cli/config"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var appCfg config.AppConfig

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the configuration file",
		Flags:   appCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			if appCfg.Path() == "" {
				return goerr.New("--config is required")
			}

			scoring, err := config.LoadAppConfiguration(appCfg.Path())
			if err != nil {
				color.Red("FAIL %s", appCfg.Path())
				return goerr.Wrap(err, "configuration validation failed")
			}

			color.Green("OK   %s", appCfg.Path())
			fmt.Printf("  match_threshold:      %.2f\n", scoring.MatchThreshold)
			fmt.Printf("  component_dampening:  %.2f\n", scoring.ComponentDampening)
			fmt.Printf("  source_dampening:     %.2f\n", scoring.SourceDampening)
			fmt.Printf("  deadline_default:     %.2f\n", scoring.DeadlineDefault)
			fmt.Printf("  load_capacity:        %d\n", scoring.LoadCapacity)
			fmt.Printf("  page_size:            %d\n", scoring.PageSize)
			fmt.Printf("  max_pages:            %d\n", scoring.MaxPages)
			fmt.Printf("  refresh_skew_minutes: %d\n", scoring.RefreshSkewMinutes)

			return nil
		},
	}
}
