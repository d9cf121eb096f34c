// Package gamectx keeps the latest game context reported by the game-side
// feed and hands out per-frame snapshots.
package gamectx

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-faster/jx"

	"github.com/soar/padoverlay/backend/internal/visibility"
)

// Store is safe for concurrent use: feeds write from connection goroutines,
// the frame loop reads once per frame.
type Store struct {
	mu      sync.RWMutex
	ctx     visibility.Context
	updated time.Time
	timeout time.Duration
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

// SetTimeout sets how long a report stays valid. Zero keeps the last
// report forever.
func (s *Store) SetTimeout(d time.Duration) {
	s.mu.Lock()
	s.timeout = d
	s.mu.Unlock()
}

// Set replaces the current context.
func (s *Store) Set(ctx visibility.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.updated = s.now()
	s.mu.Unlock()
}

// Snapshot returns the current context. A report older than the timeout
// reads as the empty context, which no mode allows.
func (s *Store) Snapshot() visibility.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.timeout > 0 && s.now().Sub(s.updated) > s.timeout {
		return visibility.Context{}
	}
	return s.ctx
}

// Decode reads a context object:
//
//	{"online":true,"freeplay":false,"map":"Stadium_P","paused":false,
//	 "cursor":false,"settingsOpen":false}
//
// Missing fields are false/empty, unknown fields are skipped.
func Decode(d *jx.Decoder) (visibility.Context, error) {
	var ctx visibility.Context
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "online":
			ctx.Online, err = d.Bool()
		case "freeplay":
			ctx.Freeplay, err = d.Bool()
		case "map":
			ctx.MapName, err = d.Str()
		case "paused":
			ctx.Paused, err = d.Bool()
		case "cursor":
			ctx.CursorVisible, err = d.Bool()
		case "settingsOpen":
			ctx.SettingsOpen, err = d.Bool()
		default:
			err = d.Skip()
		}
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		return nil
	})
	return ctx, err
}

// Encode writes ctx in the same shape Decode accepts.
func Encode(e *jx.Encoder, ctx visibility.Context) {
	e.ObjStart()
	e.FieldStart("online")
	e.Bool(ctx.Online)
	e.FieldStart("freeplay")
	e.Bool(ctx.Freeplay)
	e.FieldStart("map")
	e.Str(ctx.MapName)
	e.FieldStart("paused")
	e.Bool(ctx.Paused)
	e.FieldStart("cursor")
	e.Bool(ctx.CursorVisible)
	e.FieldStart("settingsOpen")
	e.Bool(ctx.SettingsOpen)
	e.ObjEnd()
}
