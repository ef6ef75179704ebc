package cmd

import (
	"fmt"
	"strings"

	"Sonicbar/core/auth"
	"Sonicbar/logger"
	"Sonicbar/server"

	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动播放控制服务",
	Long: `启动 HTTP 控制服务：REST 接口控制播放器，/ws 推送播放状态。
需要配置 JWT_SECRET 和 CONTROL_PASSWORD_HASH（用 hash-password 生成）。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		deps := server.Deps{
			Player:   a.player,
			Searcher: a.searcher,
			Library:  a.library,
		}
		if a.catalog != nil {
			deps.Catalog = a.catalog
		}
		if qs, ok := a.queueStore(); ok {
			deps.Queues = qs
		}

		h, err := server.NewAPIHandler(cfg, deps)
		if err != nil {
			return err
		}
		if cfg.ControlPasswordHash == "" {
			logger.Warn("[Serve] 未配置控制密码，登录接口不可用")
		}

		addr := cfg.ServerAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		return server.Run(ctx, addr, h)
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "生成控制密码的 bcrypt 哈希",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password := strings.TrimSpace(args[0])
		if password == "" {
			return fmt.Errorf("密码不能为空")
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "监听地址，默认使用 SERVER_ADDR")
	rootCmd.AddCommand(serveCmd, hashPasswordCmd)
}
