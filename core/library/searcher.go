package library

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"Sonicbar/logger"
)

// ErrSuperseded is returned to a search that a newer one replaced before
// its delay ran out.
var ErrSuperseded = errors.New("search superseded by a newer query")

// DefaultSearchDelay is the pause before a typed query runs.
const DefaultSearchDelay = 300 * time.Millisecond

// Searcher runs queries after a short delay. Starting a new query cancels
// the pending one, so only the last of a burst of keystrokes hits the
// repository.
type Searcher struct {
	lib   *Library
	delay time.Duration

	mu      sync.Mutex
	seq     uint64
	pending context.CancelFunc
}

func NewSearcher(lib *Library, delay time.Duration) *Searcher {
	if delay < 0 {
		delay = 0
	}
	return &Searcher{lib: lib, delay: delay}
}

// Search waits for the delay and then searches. It returns ErrSuperseded if
// another Search started meanwhile. Blank queries return empty results at
// once and still cancel the pending search.
func (s *Searcher) Search(ctx context.Context, query string, category Category) (Results, error) {
	s.mu.Lock()
	if s.pending != nil {
		s.pending()
	}
	s.seq++
	seq := s.seq
	runCtx, cancel := context.WithCancel(ctx)
	s.pending = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.seq == seq {
			s.pending = nil
		}
		s.mu.Unlock()
		cancel()
	}()

	if strings.TrimSpace(query) == "" {
		return Results{}, nil
	}

	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-runCtx.Done():
		if ctx.Err() != nil {
			return Results{}, ctx.Err()
		}
		logger.Debug("[Library] 搜索被新的查询取代", logger.String("query", query))
		return Results{}, ErrSuperseded
	case <-timer.C:
	}

	res, err := s.lib.Search(runCtx, query, category)
	if err != nil {
		if runCtx.Err() != nil && ctx.Err() == nil {
			return Results{}, ErrSuperseded
		}
		return Results{}, err
	}
	return res, nil
}
