package model

import "fmt"

// RepeatMode 循环模式
type RepeatMode string

const (
	RepeatOff RepeatMode = "off"
	RepeatAll RepeatMode = "all"
	RepeatOne RepeatMode = "one"
)

var repeatCycle = []RepeatMode{RepeatOff, RepeatAll, RepeatOne}

// Next returns the following mode in the off -> all -> one -> off cycle.
// Unknown values restart the cycle at off.
func (m RepeatMode) Next() RepeatMode {
	for i, mode := range repeatCycle {
		if mode == m {
			return repeatCycle[(i+1)%len(repeatCycle)]
		}
	}
	return RepeatOff
}

// ParseRepeatMode converts user input to a RepeatMode.
func ParseRepeatMode(s string) (RepeatMode, error) {
	switch RepeatMode(s) {
	case RepeatOff, RepeatAll, RepeatOne:
		return RepeatMode(s), nil
	}
	return RepeatOff, fmt.Errorf("unknown repeat mode %q", s)
}

// PlaybackSnapshot 播放器状态快照，供 UI/控制服务只读使用
type PlaybackSnapshot struct {
	SessionID   string     `json:"sessionId,omitempty"`
	Queue       []Track    `json:"queue"`
	QueueIndex  int        `json:"queueIndex"`
	CurrentSong *Track     `json:"currentSong,omitempty"`
	Playing     bool       `json:"playing"`
	CurrentTime float64    `json:"currentTime"` // 已播放秒数
	Volume      float64    `json:"volume"`
	Muted       bool       `json:"muted"`
	Repeat      RepeatMode `json:"repeat"`
	Shuffle     bool       `json:"shuffle"`
	Minimized   bool       `json:"minimized"`
	SidebarOpen bool       `json:"sidebarOpen"`
	LastError   string     `json:"lastError,omitempty"`
}

// Idle reports whether no queue is loaded.
func (s PlaybackSnapshot) Idle() bool {
	return len(s.Queue) == 0
}
