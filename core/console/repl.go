package console

import (
	"context"
	"errors"
	"fmt"
	"io"

	"Sonicbar/logger"
	"Sonicbar/model"

	"github.com/chzyer/readline"
)

// LineReader is the part of *readline.Instance the loop needs.
type LineReader interface {
	Readline() (string, error)
}

// NewCompleter completes command names.
func NewCompleter() *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(commandOrder))
	for _, name := range commandOrder {
		items = append(items, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(items...)
}

// Run reads commands until quit, EOF, or ctx is done. Command errors are
// printed and the loop continues.
func (d *Dispatcher) Run(ctx context.Context, rl LineReader) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := d.Execute(ctx, line); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			logger.Debug("[Console] 命令失败", logger.String("line", line), logger.ErrorField(err))
			fmt.Fprintf(d.out, "错误: %v\n", err)
		}
	}
}

// Announce prints a line whenever the live session changes, until snaps is
// closed.
func Announce(out io.Writer, snaps <-chan model.PlaybackSnapshot) {
	var lastSession, lastErr string
	for snap := range snaps {
		if snap.SessionID != lastSession {
			lastSession = snap.SessionID
			if snap.CurrentSong != nil {
				fmt.Fprintf(out, "\n♪ %s\n", StatusLine(snap))
			}
		}
		if snap.LastError != "" && snap.LastError != lastErr {
			fmt.Fprintf(out, "\n! %s\n", snap.LastError)
		}
		lastErr = snap.LastError
	}
}
