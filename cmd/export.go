package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/predsubmit/core/submission"
	"github.com/kilianp07/predsubmit/pkg/export"
)

func newExportCmd() *cobra.Command {
	var format string
	c := &cobra.Command{
		Use:   "export <file>",
		Short: "Print a submission file as csv or json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			preds, err := submission.Read(args[0])
			if err != nil {
				return err
			}
			switch format {
			case "csv":
				return export.WriteCSV(cmd.OutOrStdout(), preds)
			case "json":
				return export.WriteJSON(cmd.OutOrStdout(), preds)
			default:
				return fmt.Errorf("unsupported export format: %s", format)
			}
		},
	}
	c.Flags().StringVarP(&format, "format", "f", "csv", "output format: csv or json")
	return c
}
