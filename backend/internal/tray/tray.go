package tray

import (
	_ "embed"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"

	"fyne.io/systray"

	"github.com/soar/padoverlay/backend/internal/logging"
)

var log = logging.For("tray")

//go:embed icon.ico
var icon []byte

// ShutdownFunc is called when "Exit" is clicked
type ShutdownFunc func()

// Commander runs overlay commands such as "toggle" and "reset_pos".
type Commander interface {
	Run(cmd string) (string, error)
}

// Tray manages the system tray icon and menu
type Tray struct {
	url          string
	commands     Commander
	shutdownFunc ShutdownFunc
	once         sync.Once
	shuttingDown atomic.Bool
	menuOpen     *systray.MenuItem
	menuToggle   *systray.MenuItem
	menuReset    *systray.MenuItem
	menuExit     *systray.MenuItem
}

// New creates a new Tray instance
func New(url string, commands Commander, shutdownFn ShutdownFunc) *Tray {
	return &Tray{
		url:          url,
		commands:     commands,
		shutdownFunc: shutdownFn,
	}
}

// Run initializes and runs the system tray (blocks until Quit())
func (t *Tray) Run() {
	systray.Run(func() {
		t.onReady(icon)
	}, func() {
		t.onExit()
	})
}

// Quit removes the tray icon, making Run return.
func (t *Tray) Quit() {
	if t.shuttingDown.CompareAndSwap(false, true) {
		systray.Quit()
	}
}

func (t *Tray) onReady(iconData []byte) {
	if iconData != nil {
		systray.SetIcon(iconData)
	}
	systray.SetTitle("padoverlay")
	systray.SetTooltip("padoverlay - " + t.url)

	t.menuOpen = systray.AddMenuItem("Open Overlay", "Open the overlay page in a browser")
	t.menuToggle = systray.AddMenuItem("Toggle Overlay", "Show or hide the overlay")
	t.menuReset = systray.AddMenuItem("Reset Position", "Move the overlay back to its default place")
	systray.AddSeparator()
	t.menuExit = systray.AddMenuItem("Exit", "Quit application")

	// Handle menu clicks in separate goroutines to prevent blocking
	go t.handleMenuClicks()

	log.Info("system tray initialized")
}

func (t *Tray) run(cmd string) {
	out, err := t.commands.Run(cmd)
	if err != nil {
		log.Warnf("%s: %v", cmd, err)
		return
	}
	log.Info(out)
}

// handleMenuClicks processes menu item clicks without blocking
func (t *Tray) handleMenuClicks() {
	for {
		select {
		case <-t.menuOpen.ClickedCh:
			if !t.shuttingDown.Load() {
				t.openBrowser()
			}
		case <-t.menuToggle.ClickedCh:
			t.run("toggle")
		case <-t.menuReset.ClickedCh:
			t.run("reset_pos")
		case <-t.menuExit.ClickedCh:
			if t.shuttingDown.CompareAndSwap(false, true) {
				t.once.Do(t.shutdownFunc)
				systray.Quit()
				return
			}
		}
	}
}

func (t *Tray) onExit() {
	t.shuttingDown.Store(true)
	log.Info("system tray exiting")
}

func (t *Tray) openBrowser() {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", t.url)
	case "darwin":
		cmd = exec.Command("open", t.url)
	default:
		cmd = exec.Command("xdg-open", t.url)
	}

	if err := cmd.Start(); err != nil {
		log.Warnf("failed to open browser: %v", err)
	}
}
