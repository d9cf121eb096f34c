//go:build !windows

package hotkey

import "errors"

// Virtual-key codes only exist on Windows.
func register(int) (binding, error) {
	return nil, errors.New("global hotkeys are only supported on Windows")
}
