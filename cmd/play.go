package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"Sonicbar/core/console"
	"Sonicbar/logger"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

var (
	playPlaylist string
	playQueue    string
	playBucket   string
	playPrefix   string
	playVerbose  bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "交互式播放控制台",
	Long: `打开交互式控制台。输入 help 查看命令，Tab 补全命令名。
可以用 --playlist 载入本地歌单，--queue 载入保存的队列，或 --bucket 播放 MinIO 存储桶中的 mp3。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if !playVerbose {
			// 日志会打断提示符，只让警告和错误上终端
			logger.SetConsoleLevel(logger.WarnLevel)
		}
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		rl, err := readline.NewEx(&readline.Config{
			Prompt:          "♪ ",
			AutoComplete:    console.NewCompleter(),
			InterruptPrompt: "^C",
			EOFPrompt:       "quit",
			HistoryFile:     historyFile(),
		})
		if err != nil {
			return fmt.Errorf("无法打开终端: %w", err)
		}
		defer rl.Close()

		var opts []console.Option
		if a.catalog != nil {
			opts = append(opts, console.WithCatalog(a.catalog))
		}
		if qs, ok := a.queueStore(); ok {
			opts = append(opts, console.WithQueueStore(qs))
		}
		d := console.New(a.player, a.searcher, a.library, rl.Stdout(), opts...)

		if err := startQueue(cmd, a, d); err != nil {
			return err
		}

		snaps, unsubscribe := a.player.Subscribe()
		defer unsubscribe()
		go console.Announce(rl.Stdout(), snaps)

		fmt.Fprintln(rl.Stdout(), "Sonicbar 控制台，输入 help 查看命令")
		return d.Run(ctx, rl)
	},
}

// startQueue applies the --playlist/--queue/--bucket flags.
func startQueue(cmd *cobra.Command, a *app, d *console.Dispatcher) error {
	ctx := cmd.Context()
	switch {
	case playPlaylist != "":
		return d.Execute(ctx, "playlist "+playPlaylist)
	case playQueue != "":
		return d.Execute(ctx, "load "+playQueue)
	case playBucket != "":
		tracks, err := a.loadBucket(ctx, playBucket, playPrefix)
		if err != nil {
			return err
		}
		logger.Info("[Play] 载入存储桶", logger.String("bucket", playBucket), logger.Int("tracks", len(tracks)))
		return a.player.SetQueue(tracks, 0)
	}
	return nil
}

func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "sonicbar")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return ""
	}
	return filepath.Join(dir, "history")
}

func init() {
	playCmd.Flags().StringVar(&playPlaylist, "playlist", "", "启动时播放的本地歌单 ID")
	playCmd.Flags().StringVar(&playQueue, "queue", "", "启动时载入的保存队列")
	playCmd.Flags().StringVar(&playBucket, "bucket", "", "播放 MinIO 存储桶中的 mp3")
	playCmd.Flags().StringVar(&playPrefix, "prefix", "", "与 --bucket 一起使用的对象前缀")
	playCmd.Flags().BoolVarP(&playVerbose, "verbose", "v", false, "在终端显示全部日志")
	rootCmd.AddCommand(playCmd)
}
