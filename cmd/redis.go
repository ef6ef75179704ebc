package cmd

import (
	"fmt"

	"Sonicbar/cache"

	"github.com/spf13/cobra"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Redis连接测试",
	Long:  `测试Redis连接是否成功，并进行基本读写操作。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Redis配置: %s, DB: %d\n", cfg.RedisAddr(), cfg.RedisDB)

		if err := cache.ConnectRedis(cfg); err != nil {
			return fmt.Errorf("无法连接到Redis: %w", err)
		}
		defer cache.CloseRedis()
		fmt.Println("Redis连接成功！")

		if err := cache.TestRedis(cmd.Context()); err != nil {
			return fmt.Errorf("Redis操作测试失败: %w", err)
		}
		fmt.Println("Redis基本操作测试成功！")

		names, err := cache.ListQueues(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("保存的队列: %d 个\n", len(names))
		for _, n := range names {
			fmt.Printf("  %s\n", n)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
