package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"Sonicbar/config"
	"Sonicbar/logger"

	"github.com/spf13/cobra"
)

// cfg is loaded once before any subcommand runs.
var cfg *config.Config

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "sonicbar",
	Short: "Sonicbar 是一个终端音乐播放器",
	Long: `Sonicbar 播放本地曲库、在线曲库试听片段和对象存储中的音乐，
可以在终端里交互控制，也可以作为带 WebSocket 推送的控制服务运行。`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		logger.InitLogger(logger.FromAppConfig(cfg))
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 debug/info/warn/error，覆盖 LOG_LEVEL")
}

// Execute executes the root command. SIGINT/SIGTERM cancel the command's
// context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
