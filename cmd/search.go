package cmd

import (
	"context"
	"fmt"
	"strings"

	"Sonicbar/core/catalog"
	"Sonicbar/core/library"
	"Sonicbar/core/utils"
	"Sonicbar/db"

	"github.com/spf13/cobra"
)

var (
	searchCategory string
	searchCatalog  bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "搜索本地曲库或在线曲库",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		if searchCatalog {
			return searchOnline(cmd.Context(), query)
		}
		return searchLocal(cmd.Context(), query)
	},
}

func searchLocal(ctx context.Context, query string) error {
	category, err := library.ParseCategory(searchCategory)
	if err != nil {
		return err
	}
	repo, err := db.OpenLibrary(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.CloseGormDB()

	results, err := library.New(repo).Search(ctx, query, category)
	if err != nil {
		return err
	}
	if results.Empty() {
		fmt.Printf("没有找到 %q\n", query)
		return nil
	}
	for i, s := range results.Songs {
		fmt.Printf("%2d. %s - %s [%s]\n", i+1, utils.TruncateText(s.Title, 40), s.Artist, utils.FormatTime(float64(s.Duration)))
	}
	for _, a := range results.Artists {
		fmt.Printf("歌手  %s (%s 关注)\n", a.Name, utils.FormatNumber(a.Followers))
	}
	for _, a := range results.Albums {
		fmt.Printf("专辑  %s - %s\n", a.Title, a.Artist)
	}
	for _, p := range results.Playlists {
		fmt.Printf("歌单  %s [%s]\n", p.Name, p.ID)
	}
	return nil
}

func searchOnline(ctx context.Context, query string) error {
	a, cleanup, err := openAuth()
	if err != nil {
		return err
	}
	defer cleanup()
	client := newCatalogClient(a)
	if client == nil {
		return fmt.Errorf("在线曲库未配置 (CATALOG_CLIENT_ID)")
	}

	var types []string
	if searchCategory != "" {
		types = strings.Split(searchCategory, ",")
	}
	result, err := client.Search(ctx, query, types...)
	if err != nil {
		return err
	}
	if result.Tracks != nil {
		for i, t := range result.Tracks.Items {
			preview := ""
			if t.PreviewURL == "" {
				preview = " (无试听)"
			}
			tr := catalog.ToTrack(t)
			fmt.Printf("%2d. %s - %s [%s]%s  %s\n", i+1, utils.TruncateText(tr.Title, 40), tr.Artist,
				utils.MsToMinutesAndSeconds(int64(t.DurationMs)), preview, t.ID)
		}
	}
	if result.Artists != nil {
		for _, a := range result.Artists.Items {
			fmt.Printf("歌手  %s (%s 关注)  %s\n", a.Name, utils.FormatNumber(int64(a.Followers.Total)), a.ID)
		}
	}
	if result.Albums != nil {
		for _, a := range result.Albums.Items {
			fmt.Printf("专辑  %s (%s)  %s\n", a.Name, a.ReleaseDate, a.ID)
		}
	}
	if result.Playlists != nil {
		for _, p := range result.Playlists.Items {
			fmt.Printf("歌单  %s  %s\n", p.Name, p.ID)
		}
	}
	return nil
}

func init() {
	searchCmd.Flags().StringVarP(&searchCategory, "category", "c", "", "本地: songs/artists/albums/playlists；在线: track,artist,album,playlist")
	searchCmd.Flags().BoolVar(&searchCatalog, "catalog", false, "搜索在线曲库")
	rootCmd.AddCommand(searchCmd)
}
