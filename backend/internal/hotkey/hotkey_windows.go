//go:build windows

package hotkey

import (
	"fmt"

	"golang.design/x/hotkey"
)

type winBinding struct {
	hk      *hotkey.Hotkey
	pressed chan struct{}
	done    chan struct{}
}

func register(vk int) (binding, error) {
	hk := hotkey.New(nil, hotkey.Key(vk))
	if err := hk.Register(); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	b := &winBinding{
		hk:      hk,
		pressed: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go b.forward()
	return b, nil
}

func (b *winBinding) forward() {
	for {
		select {
		case <-b.done:
			return
		case _, ok := <-b.hk.Keydown():
			if !ok {
				return
			}
			select {
			case b.pressed <- struct{}{}:
			default:
			}
		}
	}
}

func (b *winBinding) Pressed() <-chan struct{} { return b.pressed }

func (b *winBinding) Close() {
	close(b.done)
	if err := b.hk.Unregister(); err != nil {
		log.Warnf("unregister hotkey: %v", err)
	}
}
