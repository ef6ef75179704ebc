package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// SecondsToDuration converts seconds to a Duration, saturating instead of
// overflowing. NaN and negative input give 0.
func SecondsToDuration(seconds float64) time.Duration {
	if math.IsNaN(seconds) || seconds <= 0 {
		return 0
	}
	ns := seconds * float64(time.Second)
	if ns >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}

// FormatTime renders seconds as m:ss. Negative or NaN input gives "0:00".
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "0:00"
	}
	total := int64(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// MsToMinutesAndSeconds renders milliseconds as m:ss, rounding to the
// nearest second.
func MsToMinutesAndSeconds(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	secs := (ms + 500) / 1000
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// TruncateText cuts text to maxLen runes and appends "..." when it was longer.
func TruncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen < 0 {
		maxLen = 0
	}
	return string(runes[:maxLen]) + "..."
}

// FormatNumber abbreviates counts: 1500 -> 1.5K, 2000000 -> 2M, 85600000 -> 85.6M.
func FormatNumber(n int64) string {
	abs := n
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1_000_000_000:
		return compact(float64(n)/1e9) + "B"
	case abs >= 1_000_000:
		return compact(float64(n)/1e6) + "M"
	case abs >= 1_000:
		return compact(float64(n)/1e3) + "K"
	default:
		return strconv.FormatInt(n, 10)
	}
}

func compact(v float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(v, 'f', 1, 64), ".0")
}

// StringToHue hashes text onto a hue in [0, 360) so the same name always
// gets the same colour.
func StringToHue(text string) int {
	var hash int32
	for _, r := range text {
		hash = int32(r) + ((hash << 5) - hash)
	}
	h := int(hash) % 360
	if h < 0 {
		h += 360
	}
	return h
}

// StringToColor returns the CSS colour for text's hue.
func StringToColor(text string) string {
	return fmt.Sprintf("hsl(%d, 65%%, 35%%)", StringToHue(text))
}
