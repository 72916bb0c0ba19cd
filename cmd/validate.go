package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/predsubmit/core/evalconfig"
	"github.com/kilianp07/predsubmit/core/submission"
)

func newValidateCmd() *cobra.Command {
	var configName string
	c := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a submission file against a prediction config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := evalconfig.Factory(configName)
			if err != nil {
				return err
			}
			preds, err := submission.Read(args[0])
			if err != nil {
				return err
			}
			if err := submission.Validate(preds, cfg.HorizonPoints()); err != nil {
				return fmt.Errorf("invalid submission %s: %w", args[0], err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d predictions valid for %s\n", args[0], len(preds), configName)
			return err
		},
	}
	c.Flags().StringVar(&configName, "config_name", evalconfig.DefaultName, "prediction config name or file")
	return c
}
