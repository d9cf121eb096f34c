// Package hotkey toggles the overlay from a global keyboard shortcut given
// as a Windows virtual-key code (default F9 = 120).
package hotkey

import (
	"context"

	"github.com/soar/padoverlay/backend/internal/logging"
)

var log = logging.For("hotkey")

// clampVK keeps a virtual-key code inside 1..255.
func clampVK(vk int) int {
	if vk < 1 {
		return 1
	}
	if vk > 255 {
		return 255
	}
	return vk
}

// binding is one registered shortcut.
type binding interface {
	Pressed() <-chan struct{}
	Close()
}

// Listener calls onPress on every press of the configured key.
type Listener struct {
	onPress func()
	keys    chan int
}

func New(onPress func()) *Listener {
	return &Listener{
		onPress: onPress,
		keys:    make(chan int, 1),
	}
}

// SetKey switches to another virtual-key code. Safe from any goroutine.
func (l *Listener) SetKey(vk int) {
	select {
	case <-l.keys:
	default:
	}
	l.keys <- vk
}

// Run registers vk and serves presses until ctx is done. A key that
// cannot be registered is logged and the listener waits for another one.
func (l *Listener) Run(ctx context.Context, vk int) error {
	var b binding
	bind := func(vk int) {
		if b != nil {
			b.Close()
			b = nil
		}
		vk = clampVK(vk)
		nb, err := register(vk)
		if err != nil {
			log.Warnf("hotkey %d: %v", vk, err)
			return
		}
		b = nb
		log.Infof("hotkey registered: vk=%d", vk)
	}
	bind(vk)
	defer func() {
		if b != nil {
			b.Close()
		}
	}()

	for {
		var pressed <-chan struct{}
		if b != nil {
			pressed = b.Pressed()
		}
		select {
		case <-ctx.Done():
			return nil
		case vk := <-l.keys:
			bind(vk)
		case <-pressed:
			l.onPress()
		}
	}
}
