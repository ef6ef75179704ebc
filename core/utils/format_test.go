package utils

import (
	"math"
	"testing"
	"time"
)

func TestSecondsToDuration(t *testing.T) {
	tests := []struct {
		in   float64
		want time.Duration
	}{
		{1.5, 1500 * time.Millisecond},
		{0, 0},
		{-3, 0},
		{math.NaN(), 0},
		{1e12, time.Duration(math.MaxInt64)},
		{math.Inf(1), time.Duration(math.MaxInt64)},
	}
	for _, tt := range tests {
		if got := SecondsToDuration(tt.in); got != tt.want {
			t.Errorf("SecondsToDuration(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0:00"},
		{5, "0:05"},
		{59.9, "0:59"},
		{60, "1:00"},
		{200, "3:20"},
		{3725, "62:05"},
		{-1, "0:00"},
		{math.NaN(), "0:00"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.in); got != tt.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMsToMinutesAndSeconds(t *testing.T) {
	tests := map[int64]string{
		0:      "0:00",
		1499:   "0:01",
		200000: "3:20",
		119999: "2:00",
		-5:     "0:00",
	}
	for in, want := range tests {
		if got := MsToMinutesAndSeconds(in); got != want {
			t.Errorf("MsToMinutesAndSeconds(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestTruncateText(t *testing.T) {
	if got := TruncateText("Blinding Lights", 20); got != "Blinding Lights" {
		t.Errorf("short text changed: %q", got)
	}
	if got := TruncateText("Blinding Lights", 8); got != "Blinding..." {
		t.Errorf("unexpected truncation %q", got)
	}
	if got := TruncateText("Éxitos España", 6); got != "Éxitos..." {
		t.Errorf("truncation should count runes, got %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[int64]string{
		999:        "999",
		1000:       "1K",
		1500:       "1.5K",
		85600000:   "85.6M",
		92300000:   "92.3M",
		2000000000: "2B",
	}
	for in, want := range tests {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestStringToHue(t *testing.T) {
	for _, s := range []string{"", "The Weeknd", "Discover Weekly", "Éxitos España"} {
		h := StringToHue(s)
		if h < 0 || h >= 360 {
			t.Errorf("StringToHue(%q) = %d out of range", s, h)
		}
		if StringToHue(s) != h {
			t.Errorf("StringToHue(%q) not stable", s)
		}
	}
	if StringToHue("a") != 97 {
		t.Errorf("expected hue 97 for \"a\", got %d", StringToHue("a"))
	}
}
