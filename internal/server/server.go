package server

import (
	"context"
	"io/fs"
	"net/http"
	"regexp"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"go.uber.org/zap"

	"github.com/soar/MotionControllerView/internal/hub"
	"github.com/soar/MotionControllerView/internal/motion"
)

type Server struct {
	hub         *hub.Hub
	broadcaster *hub.Broadcaster
	registry    *motion.Registry
	frontendFS  fs.FS
	addr        string
	log         *zap.Logger
	httpServer  *http.Server
}

func New(h *hub.Hub, b *hub.Broadcaster, reg *motion.Registry, frontendFS fs.FS, addr string, log *zap.Logger) *Server {
	return &Server{
		hub:         h,
		broadcaster: b,
		registry:    reg,
		frontendFS:  frontendFS,
		addr:        addr,
		log:         log.Named("server"),
	}
}

// Handler builds the routes: WebSocket, controller snapshots and the minified viewer.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", handleWebSocket(s.hub, s.broadcaster, s.registry, s.log))
	mux.HandleFunc("/api/controllers", handleControllers(s.registry, s.log))

	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/css", css.Minify)
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)
	mux.Handle("/", m.Middleware(http.FileServer(http.FS(s.frontendFS))))

	return mux
}

func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	s.log.Info("HTTP server listening", zap.String("addr", s.addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		s.log.Info("shutting down HTTP server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
