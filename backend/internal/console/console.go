//go:build windows

// Package console deals with how the process was started on Windows:
// from a terminal (keep logging to the console) or by double-click (no
// console; the tray is the only UI). It also installs a Ctrl+C handler
// that keeps working after SDL replaces the default one.
package console

import (
	"path/filepath"
	"strings"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32                  = windows.NewLazySystemDLL("kernel32.dll")
	procGetConsoleWindow      = kernel32.NewProc("GetConsoleWindow")
	procFreeConsole           = kernel32.NewProc("FreeConsole")
	procSetConsoleCtrlHandler = kernel32.NewProc("SetConsoleCtrlHandler")
)

// IsRunningFromConsole reports whether a terminal started the process.
// When Explorer started it, the console window Windows created for it is
// released so no empty window lingers.
func IsRunningFromConsole() bool {
	fromExplorer := strings.EqualFold(parentImage(), "explorer.exe")
	hwnd, _, _ := procGetConsoleWindow.Call()
	if fromExplorer {
		if hwnd != 0 {
			procFreeConsole.Call()
		}
		return false
	}
	return hwnd != 0
}

// parentImage returns the executable name of the parent process, or "".
func parentImage() string {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(snap)

	procs := make(map[uint32]windows.ProcessEntry32)
	var e windows.ProcessEntry32
	e.Size = uint32(unsafe.Sizeof(e))
	for err = windows.Process32First(snap, &e); err == nil; err = windows.Process32Next(snap, &e) {
		procs[e.ProcessID] = e
	}

	self, ok := procs[windows.GetCurrentProcessId()]
	if !ok {
		return ""
	}
	parent, ok := procs[self.ParentProcessID]
	if !ok {
		return ""
	}
	return filepath.Base(windows.UTF16ToString(parent.ExeFile[:]))
}

var (
	handlerOnce sync.Once
	handlerFn   uintptr
	stopOnce    sync.Once
)

// SetupConsoleHandler closes shutdown on Ctrl+C or Ctrl+Break. The
// returned function registers the handler again; call it after SDL
// initialization, which installs its own.
func SetupConsoleHandler(shutdown chan struct{}) func() {
	handlerOnce.Do(func() {
		handlerFn = windows.NewCallback(func(ctrlType uint32) uintptr {
			if ctrlType == windows.CTRL_C_EVENT || ctrlType == windows.CTRL_BREAK_EVENT {
				stopOnce.Do(func() { close(shutdown) })
				return 1
			}
			return 0
		})
	})

	register := func() {
		if ret, _, _ := procSetConsoleCtrlHandler.Call(handlerFn, 1); ret == 0 {
			log.Warn("failed to set console control handler")
		}
	}
	register()
	return register
}
