package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/pipeboard/internal/event"
	"github.com/spigell/pipeboard/internal/kanban"
	"github.com/spigell/pipeboard/internal/utils"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload and print the board periodically until interrupted",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		watch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Duration("interval", 0, "time between reloads (default 30s)")

	viper.BindPFlag("watch.interval", watchCmd.Flags().Lookup("interval"))
}

func watch(cmd *cobra.Command) {
	ctx := cmd.Context()
	s := newSession(ctx)

	interval := s.config.Watch.Interval
	if interval <= 0 {
		s.logger.Fatal("watch interval must be positive", zap.Duration("interval", interval))
	}

	s.print(cmd.OutOrStdout(), s.load(ctx))

	for {
		if err := utils.WaitFor(ctx, interval); err != nil {
			s.logger.Info("stopping", zap.String("reason", err.Error()))
			return
		}

		b, err := s.board.Reload(ctx, event.ReasonPoll)
		switch {
		case errors.Is(err, kanban.ErrSuperseded):
			continue
		case err != nil && ctx.Err() != nil:
			s.logger.Info("stopping", zap.String("reason", ctx.Err().Error()))
			return
		case err != nil:
			s.logger.Warn("reloading the board failed, keeping the previous one", zap.Error(err))
			continue
		}

		s.print(cmd.OutOrStdout(), b)
	}
}
