package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"equipcare-hub.com/equipcare-hub/internal/services"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:       "export <log|schedule>",
	Short:     "Write the maintenance log or schedule as a PDF",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"log", "schedule"},
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup("export")
		if err != nil {
			return err
		}
		defer env.Close()

		var write func(ctx context.Context, w io.Writer) error
		output := exportOutput

		switch args[0] {
		case "log":
			write = services.NewLogService(env.store, env.retention, env.logger).Export
			if output == "" {
				output = "maintenance-log.pdf"
			}
		case "schedule":
			write = services.NewScheduleService(env.store, env.logger).Export
			if output == "" {
				output = "maintenance-schedule.pdf"
			}
		default:
			return fmt.Errorf("unknown export %q, expected log or schedule", args[0])
		}

		if err := writePDF(cmd.Context(), afero.NewOsFs(), output, write); err != nil {
			return err
		}

		env.logger.Info("export written", zap.String("file", output))
		return nil
	},
}

func writePDF(ctx context.Context, fs afero.Fs, path string, write func(ctx context.Context, w io.Writer) error) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := write(ctx, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file path")
	rootCmd.AddCommand(exportCmd)
}
