package hub

import (
	"context"
	"time"

	"github.com/soar/padoverlay/backend/internal/overlay"
)

const (
	fullSyncInterval = 5 * time.Second
	frameCountSync   = 100 // plans received, changed or not
)

// Publisher sends an encoded message to every client.
type Publisher interface {
	Broadcast(msg []byte)
}

// Broadcaster forwards render plans from the frame loop to the clients.
// Only plans that differ from the previous one are sent; the current plan
// is re-sent as a full sync every 5 seconds and every 100 frames so late
// or lossy clients converge.
type Broadcaster struct {
	out   Publisher
	plans <-chan overlay.RenderPlan
	last  overlay.RenderPlan
	seq   int64
}

func NewBroadcaster(out Publisher, plans <-chan overlay.RenderPlan) *Broadcaster {
	return &Broadcaster{
		out:   out,
		plans: plans,
	}
}

// Run forwards plans until ctx is done or the plan channel closes.
func (b *Broadcaster) Run(ctx context.Context) error {
	ticker := time.NewTicker(fullSyncInterval)
	defer ticker.Stop()

	var sinceFull int64
	started := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case plan, ok := <-b.plans:
			if !ok {
				return nil
			}
			sinceFull++
			changed := !started || !plan.Equal(b.last)
			if changed {
				started = true
				b.last = plan
			}
			full := sinceFull >= frameCountSync
			if full {
				sinceFull = 0
			}
			if changed || full {
				b.send(full)
			}

		case <-ticker.C:
			if started {
				b.send(true)
			}
		}
	}
}

func (b *Broadcaster) send(full bool) {
	b.seq++
	b.out.Broadcast(EncodeFrame(b.seq, full, b.last))
}
