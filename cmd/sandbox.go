package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/pipeboard/internal/logger"
	"github.com/spigell/pipeboard/internal/sandbox"
)

const sandboxShutdownTimeout = 5 * time.Second

var sandboxCmd = &cobra.Command{
	Use:   "sandbox",
	Short: "Serve an in-memory careers platform with a sample pipeline",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		runSandbox(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(sandboxCmd)

	sandboxCmd.Flags().StringP("listen", "l", "", "address to listen on (default :8085)")

	viper.BindPFlag("sandbox.listen", sandboxCmd.Flags().Lookup("listen"))
}

func runSandbox(ctx context.Context) {
	l := newLogger()

	config, err := getConfig()
	if err != nil {
		l.Fatal("getting a config", zap.Error(err))
	}

	if config.Sandbox.Token == "" {
		l.Warn("sandbox.token is not set, accepting unauthenticated requests")
	}

	srv := sandbox.New(config.Sandbox.Token, sandbox.DefaultSeed(), logger.Component(l, logger.ComponentSandbox))

	errs := make(chan error, 1)
	go func() {
		errs <- srv.Start(config.Sandbox.Listen)
	}()

	select {
	case err := <-errs:
		if err != nil {
			l.Fatal("serving the sandbox", zap.Error(err))
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), sandboxShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error("stopping the sandbox", zap.Error(err))
		}
		l.Info("sandbox stopped")
	}
}
