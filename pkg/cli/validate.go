package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/cli/config"
	"github.com/unihelpdesk/helpdesk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var appCfg config.App
	var knowledgeCfg config.Knowledge

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, knowledgeCfg.Flags()...)

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the configuration file and the knowledge source",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			app, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}
			tax := app.Taxonomy()
			logger.Info("Configuration validation passed",
				"categories", len(tax.Categories),
				"roles", len(tax.Roles),
			)

			source, err := knowledgeCfg.Source()
			if err != nil {
				return err
			}
			pairs, err := source.Load(ctx)
			if err != nil {
				return goerr.Wrap(err, "knowledge source validation failed")
			}

			if len(pairs) == 0 {
				color.New(color.FgYellow).Fprintf(os.Stdout, "%s: no usable rows, every question will be escalated\n", source.Name())
				return nil
			}
			color.New(color.FgGreen).Fprintf(os.Stdout, "%s: %d question/answer pairs\n", source.Name(), len(pairs))
			_, _ = fmt.Fprintf(os.Stdout, "categories: %v\nroles: %v\n", tax.Categories, tax.Roles)
			return nil
		},
	}
}
