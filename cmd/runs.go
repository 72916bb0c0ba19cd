package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/predsubmit/app/plugins"
	"github.com/kilianp07/predsubmit/infra/journal"
)

func newRunsCmd(cfgPath *string) *cobra.Command {
	var (
		sub   string
		since time.Duration
	)
	c := &cobra.Command{
		Use:   "runs",
		Short: "List recorded inference runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			store, err := plugins.OpenJournal(cfg.Journal)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			q := journal.RunQuery{Submission: sub}
			if since > 0 {
				q.Start = time.Now().Add(-since)
			}
			recs, err := store.Query(cmd.Context(), q)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tSTARTED\tSUBMISSION\tSPLIT\tMODEL\tPREDICTIONS\tSTATUS")
			for _, r := range recs {
				status := "ok"
				if r.Error != "" {
					status = "failed: " + r.Error
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
					r.RunID, r.Timestamp.Format(time.RFC3339), r.Submission, r.Split, r.Model, r.Predictions, status)
			}
			return w.Flush()
		},
	}
	c.Flags().StringVar(&sub, "submission", "", "only show runs of this submission")
	c.Flags().DurationVar(&since, "since", 0, "only show runs started within this duration, e.g. 24h")
	return c
}
