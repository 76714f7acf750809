package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"contactrelay/pkg/config"
	"contactrelay/pkg/logger"
)

type Config struct {
	OutputWriter io.Writer
}

func DefaultConfig() Config {
	return Config{OutputWriter: os.Stdout}
}

type runtimeState struct {
	logLevel string
	writer   io.Writer
	logger   *zap.Logger
}

func NewRootCommand(cfg Config) *cobra.Command {
	rt := &runtimeState{writer: cfg.OutputWriter}

	root := &cobra.Command{
		Use:           "contactctl",
		Short:         "Fetch page data and submit contact messages",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if rt.writer == nil {
				rt.writer = os.Stdout
			}
			if rt.logLevel == "" {
				rt.logLevel = config.GetEnv("LOG_LEVEL", "info")
			}
			l, err := logger.NewLoggerWithLevel(rt.logLevel)
			if err != nil {
				return err
			}
			rt.logger = l
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if rt.logger != nil {
				_ = rt.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&rt.logLevel, "log-level", "", "Log level: debug, info, warn, error (env LOG_LEVEL)")

	root.AddCommand(
		newFetchCommand(rt),
		newSubmitCommand(rt),
	)
	return root
}
