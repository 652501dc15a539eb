package server

import (
	"context"
	"io/fs"
	"net/http"
	"regexp"

	"github.com/edaniels/golog"
	"github.com/gorilla/websocket"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	"camdeck/internal/hub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local control surface, any origin
	},
}

// Server hosts the browser UI and the /control websocket endpoint.
type Server struct {
	hub        *hub.Hub
	staticFS   fs.FS
	addr       string
	logger     golog.Logger
	httpServer *http.Server
}

func New(h *hub.Hub, staticFS fs.FS, addr string, logger golog.Logger) *Server {
	return &Server{hub: h, staticFS: staticFS, addr: addr, logger: logger}
}

func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/control", s.handleControl)

	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/css", css.Minify)
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)
	mux.Handle("/", m.Middleware(http.FileServer(http.FS(s.staticFS))))

	s.httpServer = &http.Server{Addr: s.addr, Handler: mux}
	s.logger.Infow("http server listening", "addr", s.addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnw("websocket upgrade failed", "error", err)
		return
	}

	client := hub.NewClient(s.hub, conn, s.logger)
	s.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
