package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"gopkg.in/Sirupsen/logrus.v0"

	"github.com/soar/padoverlay/backend/internal/config"
	"github.com/soar/padoverlay/backend/internal/console"
	"github.com/soar/padoverlay/backend/internal/frame"
	"github.com/soar/padoverlay/backend/internal/gamectx"
	"github.com/soar/padoverlay/backend/internal/gamepad/sdlreader"
	"github.com/soar/padoverlay/backend/internal/hotkey"
	"github.com/soar/padoverlay/backend/internal/hub"
	"github.com/soar/padoverlay/backend/internal/logging"
	"github.com/soar/padoverlay/backend/internal/posfile"
	"github.com/soar/padoverlay/backend/internal/server"
	"github.com/soar/padoverlay/backend/internal/skin"
	"github.com/soar/padoverlay/backend/internal/tray"
)

// Cross-platform signal handling: use os.Interrupt on all platforms
// On Windows: os.Interrupt is sent when Ctrl+C is pressed
// On Unix: os.Interrupt is equivalent to syscall.SIGINT
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

var log = logging.For("main")

func main() {
	flags := config.Flags()
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	store := config.New()
	if err := store.BindFlags(flags); err != nil {
		log.Fatal(err)
	}
	cfgPath, _ := flags.GetString("config")
	if err := store.ReadFile(cfgPath); err != nil {
		log.Fatal(err)
	}
	logging.Setup(store.String(config.KeyLogLevel))

	dataDir := store.String(config.KeyDataDir)
	if !console.IsRunningFromConsole() {
		// Started by double-click: nobody sees stderr.
		if f, err := openLogFile(dataDir); err == nil {
			defer f.Close()
			logrus.SetOutput(f)
		}
	}

	posPath := posfile.Path(dataDir)
	if store.Bool(config.KeyLoadSaved) {
		loadSavedPosition(store, posPath)
	}

	contexts := gamectx.NewStore()
	skins := skin.NewCache(dataDir)
	loop := frame.New(sdlreader.NewReader(), store, contexts, skins, posfile.NewAutoSaver(posPath))
	h := hub.NewHub(contexts, store)
	broadcaster := hub.NewBroadcaster(h, loop.Plans())

	addr := store.String(config.KeyAddr)
	srv := server.New(h, contexts, store, frontend(), dataDir, addr)

	keys := hotkey.New(func() {
		out, err := store.Run(config.CmdToggle)
		if err != nil {
			log.Warnf("hotkey toggle: %v", err)
			return
		}
		log.Info(out)
	})

	store.OnChange(func(key string) {
		switch key {
		case config.KeySkin:
			log.Infof("skin changed to: %s", store.Snapshot().Skin)
		case config.KeyHotkeyVK, "":
			keys.SetKey(store.Int(config.KeyHotkeyVK))
		}
	})

	sigCtx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	// Ctrl+C through the Windows console handler.
	shutdownRequested := make(chan struct{})
	loop.OnOpen(console.SetupConsoleHandler(shutdownRequested))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return loop.Run(gctx) })
	g.Go(func() error { return broadcaster.Run(gctx) })
	g.Go(func() error { return keys.Run(gctx, store.Int(config.KeyHotkeyVK)) })
	g.Go(func() error {
		if err := store.Watch(gctx); err != nil {
			log.Warnf("config hot reload disabled: %v", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := skin.Watch(gctx, dataDir, skins); err != nil {
			log.Warnf("skin hot reload disabled: %v", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		// Shutdown the HTTP server gracefully
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	url := overlayURL(addr)
	log.Infof("padoverlay started: %s", url)

	// Initialize system tray on Windows only
	if runtime.GOOS == "windows" {
		t := tray.New(url, store, func() {
			log.Info("exit requested from tray")
			cancel()
		})
		go t.Run()
		go func() {
			<-gctx.Done()
			t.Quit()
		}()
	} else {
		log.Info("press Ctrl+C to exit")
	}

	go func() {
		select {
		case <-shutdownRequested:
			log.Info("shutdown requested")
			cancel()
		case <-gctx.Done():
		}
	}()

	if err := g.Wait(); err != nil {
		log.Errorf("stopped with error: %v", err)
		os.Exit(1)
	}
	log.Info("padoverlay stopped")
}

func loadSavedPosition(store *config.Store, path string) {
	def := posfile.Position{
		X:     store.Float(config.KeyX),
		Y:     store.Float(config.KeyY),
		Scale: store.Float(config.KeyScale),
	}
	p, ok := posfile.Load(path, def)
	if !ok {
		return
	}
	for key, v := range map[string]float64{config.KeyX: p.X, config.KeyY: p.Y, config.KeyScale: p.Scale} {
		if err := store.Set(key, v); err != nil {
			log.Warnf("saved position: %v", err)
			return
		}
	}
	log.Info("loaded saved overlay position")
}

func openLogFile(dataDir string) (*os.File, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dataDir, "padoverlay.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func overlayURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
