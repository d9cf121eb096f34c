//go:build !windows

// Package console deals with how the process was started. Outside
// Windows there is always a console and Go's signal handling is enough.
package console

func IsRunningFromConsole() bool {
	return true
}

func SetupConsoleHandler(shutdown chan struct{}) func() {
	return func() {}
}
