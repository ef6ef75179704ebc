package repository

import "Sonicbar/model"

// SampleLibrary 内置的示例曲库，用于内存模式和首次迁移后的填充
func SampleLibrary() LibrarySeed {
	songs := []model.Track{
		{ID: "s1", Title: "Blinding Lights", Artist: "The Weeknd", Album: "After Hours", AlbumArt: "/images/after-hours.jpg", Duration: 200, URL: "https://example.com/song1.mp3", Source: "local"},
		{ID: "s2", Title: "As It Was", Artist: "Harry Styles", Album: "Harry's House", AlbumArt: "/images/harrys-house.jpg", Duration: 178, URL: "https://example.com/song2.mp3", Source: "local"},
		{ID: "s3", Title: "Heat Waves", Artist: "Glass Animals", Album: "Dreamland", AlbumArt: "/images/dreamland.jpg", Duration: 234, URL: "https://example.com/song3.mp3", Source: "local"},
		{ID: "s4", Title: "Stay", Artist: "The Kid LAROI, Justin Bieber", Album: "Stay - Single", AlbumArt: "/images/stay.jpg", Duration: 201, URL: "https://example.com/song4.mp3", Source: "local"},
		{ID: "s5", Title: "Easy On Me", Artist: "Adele", Album: "30", AlbumArt: "/images/30.jpg", Duration: 224, URL: "https://example.com/song5.mp3", Source: "local"},
	}
	pick := func(idx ...int) []model.Track {
		out := make([]model.Track, 0, len(idx))
		for _, i := range idx {
			out = append(out, songs[i])
		}
		return out
	}

	return LibrarySeed{
		Songs: songs,
		Artists: []model.Artist{
			{ID: "a1", Name: "The Weeknd", Image: "/images/the-weeknd.jpg", Followers: 85600000},
			{ID: "a2", Name: "Taylor Swift", Image: "/images/taylor-swift.jpg", Followers: 92300000},
			{ID: "a3", Name: "Bad Bunny", Image: "/images/bad-bunny.jpg", Followers: 58700000},
		},
		Albums: []model.Album{
			{ID: "al1", Title: "After Hours", Artist: "The Weeknd", Image: "/images/after-hours.jpg", Year: 2020},
			{ID: "al2", Title: "Harry's House", Artist: "Harry Styles", Image: "/images/harrys-house.jpg", Year: 2022},
			{ID: "al3", Title: "Un Verano Sin Ti", Artist: "Bad Bunny", Image: "/images/un-verano-sin-ti.jpg", Year: 2022},
		},
		Playlists: []model.Playlist{
			{ID: "pl1", Name: "Discover Weekly", Description: "Tu mix semanal de música nueva y recomendaciones personalizadas", CoverImage: "/images/discover-weekly.jpg", Songs: pick(2, 3, 4)},
			{ID: "pl2", Name: "Release Radar", Description: "Nuevos lanzamientos de artistas que sigues", CoverImage: "/images/release-radar.jpg", Songs: pick(1, 3)},
			{ID: "pl3", Name: "Daily Mix 1", Description: "Made for You. Refresh everyday", CoverImage: "/images/daily-mix.jpg", Songs: pick(0, 1, 2)},
			{ID: "pl4", Name: "Lo-Fi Beats", Description: "Música Lo-Fi para relajarse y estudiar", CoverImage: "/images/lofi-beats.jpg"},
			{ID: "pl5", Name: "Top 50 Global", Description: "Las 50 canciones más escuchadas en todo el mundo", CoverImage: "/images/top-50.jpg", Songs: pick(0, 1, 2, 3, 4)},
			{ID: "pl6", Name: "Éxitos España", Description: "Las canciones del momento en España", CoverImage: "/images/spain-hits.jpg", Songs: pick(4, 0)},
		},
	}
}
