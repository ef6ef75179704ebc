package storage

import (
	"testing"

	"Sonicbar/config"
)

func TestMediaObject(t *testing.T) {
	o := MediaObject{Bucket: "music", Key: "albums/after hours/Blinding Lights.mp3"}
	if got := o.Locator(); got != "minio://music/albums/after hours/Blinding Lights.mp3" {
		t.Errorf("unexpected locator %q", got)
	}
	if got := o.Title(); got != "Blinding Lights" {
		t.Errorf("unexpected title %q", got)
	}
}

func TestIsAudioKey(t *testing.T) {
	tests := map[string]bool{
		"a/b.mp3":  true,
		"a/b.MP3":  true,
		"a/b.flac": false,
		"cover":    false,
	}
	for key, want := range tests {
		if got := IsAudioKey(key); got != want {
			t.Errorf("IsAudioKey(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{1536, "1.5 KB"},
		{5 << 20, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.in); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewObjectStoreUnconfigured(t *testing.T) {
	store, err := NewObjectStore(&config.Config{})
	if err != nil || store != nil {
		t.Errorf("expected nil store without endpoint, got %v, %v", store, err)
	}
}
