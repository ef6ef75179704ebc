package cmd

import (
	"fmt"

	"Sonicbar/core/utils"
	"Sonicbar/storage"

	"github.com/spf13/cobra"
)

var mediaPrefix string

var mediaCmd = &cobra.Command{
	Use:   "media <bucket>",
	Short: "列出 MinIO 存储桶中的音频",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.NewObjectStore(cfg)
		if err != nil {
			return err
		}
		if store == nil {
			return fmt.Errorf("对象存储未配置 (MINIO_ENDPOINT)")
		}

		objects, err := store.ListAudio(cmd.Context(), args[0], mediaPrefix)
		if err != nil {
			return err
		}
		if len(objects) == 0 {
			fmt.Println("没有找到音频文件")
			return nil
		}
		var total int64
		for i, o := range objects {
			total += o.Size
			fmt.Printf("%3d. %-40s %10s  %s\n", i+1, utils.TruncateText(o.Title(), 40), storage.FormatSize(o.Size), o.Key)
		}
		fmt.Printf("共 %d 个文件，%s\n", len(objects), storage.FormatSize(total))
		return nil
	},
}

func init() {
	mediaCmd.Flags().StringVar(&mediaPrefix, "prefix", "", "只列出该前缀下的对象")
	rootCmd.AddCommand(mediaCmd)
}
