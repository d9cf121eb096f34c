package server

import (
	"context"
	"io/fs"
	"net/http"
	"path/filepath"
	"regexp"

	"github.com/lxzan/gws"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	"github.com/soar/padoverlay/backend/internal/hub"
	"github.com/soar/padoverlay/backend/internal/logging"
)

var log = logging.For("server")

type Server struct {
	hub        *hub.Hub
	contexts   Contexts
	settings   Settings
	frontendFS fs.FS
	dataDir    string
	addr       string
	httpServer *http.Server
}

func New(h *hub.Hub, contexts Contexts, settings Settings, frontendFS fs.FS, dataDir, addr string) *Server {
	return &Server{
		hub:        h,
		contexts:   contexts,
		settings:   settings,
		frontendFS: frontendFS,
		dataDir:    dataDir,
		addr:       addr,
	}
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/css", css.Minify)
	m.AddFuncRegexp(regexp.MustCompile(`^(application|text)/(x-)?(java|ecma)script$`), js.Minify)
	return m
}

// Handler builds the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	upgrader := gws.NewUpgrader(s.hub, &gws.ServerOption{
		ParallelEnabled:   true,
		Recovery:          gws.Recovery,
		PermessageDeflate: gws.PermessageDeflate{Enabled: true},
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		socket, err := upgrader.Upgrade(w, r)
		if err != nil {
			log.Warnf("WebSocket upgrade failed: %v", err)
			return
		}
		go socket.ReadLoop()
	})

	mux.HandleFunc("/api/context", handleContext(s.contexts))
	mux.HandleFunc("/api/settings", handleSettings(s.settings))
	mux.HandleFunc("/api/command", handleCommand(s.settings))

	// Skin images straight from disk so edits show up on reload.
	skins := http.FileServer(http.Dir(filepath.Join(s.dataDir, "skins")))
	mux.Handle("/skins/", http.StripPrefix("/skins/", skins))

	// Embedded frontend, minified on the way out.
	mux.Handle("/", newMinifier().Middleware(http.FileServer(http.FS(s.frontendFS))))

	return mux
}

func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	log.Infof("HTTP server listening on %s", s.addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		log.Info("shutting down HTTP server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
