package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/predsubmit/app"
	"github.com/kilianp07/predsubmit/config"
	"github.com/kilianp07/predsubmit/core/evalconfig"
	"github.com/kilianp07/predsubmit/infra/logger"
)

// Execute runs the CLI.
func Execute() error { return NewRootCmd().Execute() }

// NewRootCmd builds the predsubmit command tree. The root command runs
// inference and writes the submission file.
func NewRootCmd() *cobra.Command {
	var (
		cfgPath string
		req     app.Request
	)
	root := &cobra.Command{
		Use:          "predsubmit",
		Short:        "Run a prediction model over a challenge split and write a submission",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInference(cmd, cfgPath, req)
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "run configuration file (yaml or json)")

	f := root.Flags()
	f.StringVar(&req.Version, "version", "", "dataset version, e.g. v1.0-trainval")
	f.StringVar(&req.DataRoot, "data_root", "", "directory holding the dataset")
	f.StringVar(&req.SplitName, "split_name", "", "challenge split: mini_train, mini_val, train, train_val or val")
	f.StringVar(&req.ModelWeights, "model_weights", "", "path to the model weights")
	f.StringVar(&req.OutputDir, "output_dir", "", "existing directory for the submission file")
	f.StringVar(&req.SubmissionName, "submission_name", "", "submission name, the file is <name>_inference.json")
	f.StringVar(&req.ConfigName, "config_name", evalconfig.DefaultName, "prediction config name or file")
	f.StringVar(&req.Model, "model", "", "registered model name (default from run config)")
	f.IntVar(&req.Workers, "workers", 0, "concurrent model calls (default from run config)")
	for _, name := range []string{"version", "data_root", "split_name", "model_weights", "output_dir", "submission_name"} {
		_ = root.MarkFlagRequired(name)
	}

	root.AddCommand(newValidateCmd(), newRunsCmd(&cfgPath), newExportCmd())
	return root
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return cfg, nil
}

func runInference(cmd *cobra.Command, cfgPath string, req app.Request) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	res, err := svc.Run(ctx, req)
	if err != nil {
		if app.IsUsageError(err) {
			_ = cmd.Usage()
		}
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d predictions to %s\n", res.Predictions, res.Path)
	return err
}
