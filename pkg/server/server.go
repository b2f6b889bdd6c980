// Package server hosts a diagram over HTTP. Browsers edit it through a
// websocket and every redraw is pushed back to all connected clients as SVG.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"cdr.dev/slog"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ha1tch/nodegraph/pkg/geom"
	"github.com/ha1tch/nodegraph/pkg/graph"
	"github.com/ha1tch/nodegraph/pkg/interact"
	"github.com/ha1tch/nodegraph/pkg/log"
	"github.com/ha1tch/nodegraph/pkg/metrics"
	"github.com/ha1tch/nodegraph/pkg/render"
	"github.com/ha1tch/nodegraph/pkg/surface"
)

// Command types accepted on the websocket.
const (
	CmdDoubleClick = "dblclick"
	CmdPress       = "press"
	CmdMove        = "move"
	CmdRelease     = "release"
	CmdCancel      = "cancel"
	CmdConnect     = "connect"
	CmdDisconnect  = "disconnect"
	CmdRemove      = "remove"
)

// Message types sent to clients.
const (
	MsgHello = "hello"
	MsgFrame = "frame"
	MsgError = "error"
)

// Command is one client request. Pointer commands use X and Y, edge
// commands use From and To.
type Command struct {
	Type string  `json:"type" validate:"required,oneof=dblclick press move release cancel connect disconnect remove"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	From string  `json:"from,omitempty" validate:"required_if=Type connect,required_if=Type disconnect"`
	To   string  `json:"to,omitempty" validate:"required_if=Type connect,required_if=Type disconnect"`
}

// Message is sent from the server to a client.
type Message struct {
	Type   string `json:"type"`
	Client string `json:"client,omitempty"`
	Frame  int    `json:"frame,omitempty"`
	SVG    string `json:"svg,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Options configures a Server.
type Options struct {
	Width   int
	Height  int
	Graph   graph.Options
	Metrics *metrics.Registry // optional
}

type client struct {
	id   string
	conn conn
	ctrl *interact.Controller
}

// Server owns one diagram shared by every client. A single mutex
// serialises all mutations and redraws.
type Server struct {
	ctx  context.Context
	opts Options

	mu       sync.Mutex
	diagram  *graph.Diagram
	svg      *surface.SVG
	renderer *render.Renderer
	clients  map[string]*client

	upgrader websocket.Upgrader
	validate *validator.Validate
}

// New creates a server around an empty diagram. ctx carries the logger.
func New(ctx context.Context, opts Options) *Server {
	return NewWithDiagram(ctx, graph.New(), opts)
}

// NewWithDiagram creates a server around an existing diagram.
func NewWithDiagram(ctx context.Context, d *graph.Diagram, opts Options) *Server {
	svg := surface.NewSVG(surface.SVGOptions{Width: opts.Width, Height: opts.Height})
	r := render.New(d, svg, opts.Graph)
	r.Metrics = opts.Metrics
	r.Watch()

	return &Server{
		ctx:      log.Named(ctx, "server"),
		opts:     opts,
		diagram:  d,
		svg:      svg,
		renderer: r,
		clients:  make(map[string]*client),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		validate: validator.New(),
	}
}

// Diagram returns the shared diagram. Callers must not mutate it while
// the server is handling requests.
func (s *Server) Diagram() *graph.Diagram {
	return s.diagram
}

// SetOptions restyles the diagram and pushes the new frame to every
// client.
func (s *Server) SetOptions(opts graph.Options) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.opts.Graph = opts
	s.renderer.Options = opts
	for _, c := range s.clients {
		c.ctrl.Options = opts
	}
	s.renderer.MarkDirty()
	if s.renderer.Render(s.ctx) {
		s.broadcast()
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/diagram.svg", s.handleSVG)
	mux.HandleFunc("/diagram.png", s.handlePNG)
	mux.HandleFunc("/ws", s.handleWS)
	if s.opts.Metrics != nil {
		mux.Handle("/metrics", s.opts.Metrics.Handler())
	}
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.renderer.Render(s.ctx)
	doc := s.svg.String()
	s.mu.Unlock()

	w.Header().Set("Content-Type", "image/svg+xml")
	fmt.Fprint(w, doc)
}

func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	raster, err := surface.NewRaster(surface.RasterOptions{Width: s.opts.Width, Height: s.opts.Height})
	if err != nil {
		log.Error(s.ctx, "creating raster", slog.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	render.Draw(s.ctx, raster, s.diagram.Nodes(), s.diagram.Edges(), s.opts.Graph)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "image/png")
	if err := raster.EncodePNG(w); err != nil {
		log.Warn(s.ctx, "writing png", slog.Error(err))
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	wc, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn(s.ctx, "ws upgrade", slog.Error(err))
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: newConn(wc),
	}
	defer s.drop(c)

	if err := s.join(c); err != nil {
		log.Warn(s.ctx, "ws hello", slog.F("client", c.id), slog.Error(err))
		return
	}
	log.Info(s.ctx, "client connected", slog.F("client", c.id), slog.F("remote", r.RemoteAddr))

	for {
		var cmd Command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug(s.ctx, "ws read", slog.F("client", c.id), slog.Error(err))
			}
			return
		}

		if err := s.handle(c, cmd); err != nil {
			if werr := c.conn.WriteJSON(Message{Type: MsgError, Error: err.Error()}); werr != nil {
				log.Debug(s.ctx, "ws write", slog.F("client", c.id), slog.Error(werr))
				return
			}
		}
	}
}

// join registers c and sends it the current frame.
func (s *Server) join(c *client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ctrl = interact.NewController(s.diagram, s.opts.Graph)
	s.clients[c.id] = c
	if s.opts.Metrics != nil {
		s.opts.Metrics.WSClients.Set(float64(len(s.clients)))
	}

	s.renderer.Render(s.ctx)
	return c.conn.WriteJSON(Message{
		Type:   MsgHello,
		Client: c.id,
		Frame:  s.renderer.Frames(),
		SVG:    s.svg.String(),
	})
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	if _, ok := s.clients[c.id]; ok {
		delete(s.clients, c.id)
		log.Info(s.ctx, "client disconnected", slog.F("client", c.id))
	}
	if s.opts.Metrics != nil {
		s.opts.Metrics.WSClients.Set(float64(len(s.clients)))
	}
	s.mu.Unlock()
	c.conn.Close()
}

// handle validates and applies one command, then pushes the new frame to
// every client if the diagram changed.
func (s *Server) handle(c *client, cmd Command) error {
	if err := s.validate.Struct(cmd); err != nil {
		err = fmt.Errorf("invalid command: %w", err)
		s.record(cmd.Type, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := apply(c.ctrl, cmd)
	s.record(cmd.Type, err)
	if err != nil {
		log.Debug(s.ctx, "command failed", slog.F("client", c.id), slog.F("type", cmd.Type), slog.Error(err))
	}
	if s.renderer.Render(s.ctx) {
		s.broadcast()
	}
	return err
}

func (s *Server) record(kind string, err error) {
	if s.opts.Metrics == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	s.opts.Metrics.RecordCommand(kind, err)
}

// broadcast sends the current frame to every client. Callers hold s.mu.
func (s *Server) broadcast() {
	msg := Message{Type: MsgFrame, Frame: s.renderer.Frames(), SVG: s.svg.String()}
	for id, c := range s.clients {
		if err := c.conn.WriteJSON(msg); err != nil {
			log.Debug(s.ctx, "ws broadcast", slog.F("client", id), slog.Error(err))
		}
	}
}

// ErrUnknownCommand is returned for a command type apply does not handle.
var ErrUnknownCommand = errors.New("unknown command")

func apply(ctrl *interact.Controller, cmd Command) error {
	p := geom.Pt(cmd.X, cmd.Y)
	switch cmd.Type {
	case CmdDoubleClick:
		_, _, err := ctrl.DoubleClick(p)
		return err
	case CmdPress:
		ctrl.Press(p)
	case CmdMove:
		return ctrl.Move(p)
	case CmdRelease:
		ctrl.Release()
	case CmdCancel:
		ctrl.Cancel()
	case CmdConnect:
		return ctrl.Connect(cmd.From, cmd.To)
	case CmdDisconnect:
		return ctrl.Disconnect(cmd.From, cmd.To)
	case CmdRemove:
		_, err := ctrl.Remove(p)
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}
	return nil
}
