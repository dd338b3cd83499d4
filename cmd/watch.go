package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	config "equipcare-hub.com/equipcare-hub/internal/configs"
	"equipcare-hub.com/equipcare-hub/internal/records"
	"equipcare-hub.com/equipcare-hub/internal/services"
	"equipcare-hub.com/equipcare-hub/pkg/constants"
)

var watchCmd = &cobra.Command{
	Use:       "watch <daily|weekly|monthly|log|schedule>",
	Short:     "Print a collection every time another context changes it",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"daily", "weekly", "monthly", "log", "schedule"},
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup("watch")
		if err != nil {
			return err
		}
		defer env.Close()

		if env.cfg.BusDriver != config.BusRedis && env.cfg.StoreDriver != config.StoreFile {
			env.logger.Warn("local bus only reports writes made by this process",
				zap.String("store_driver", env.cfg.StoreDriver))
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		name := args[0]

		switch name {
		case "log":
			return watch(ctx, out, services.NewLogService(env.store, env.retention, env.logger).NewViewer)
		case "schedule":
			return watch(ctx, out, services.NewScheduleService(env.store, env.logger).NewViewer)
		}

		cadence, ok := constants.ParseCadence(name)
		if !ok {
			return fmt.Errorf("unknown collection %q", name)
		}
		return watch(ctx, out, services.NewTaskService(env.store, cadence, env.retention, env.logger).NewBoard)
	},
}

func watch[T records.Record](ctx context.Context, w io.Writer, newViewer func(...services.ViewerOption[T]) *services.Viewer[T]) error {
	var mu sync.Mutex
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	show := func(items []T) {
		mu.Lock()
		defer mu.Unlock()
		_ = enc.Encode(items)
	}

	viewer := newViewer(services.WithOnChange(show))
	show(viewer.Mount(ctx))
	defer viewer.Unmount()

	<-ctx.Done()
	return nil
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
