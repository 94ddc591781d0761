package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	diag "github.com/coreman2200/funtimes-qotd/internal/diagnostics"
	"github.com/coreman2200/funtimes-qotd/internal/render"
	"github.com/coreman2200/funtimes-qotd/internal/tests"
)

// Command is a control request from a /control client.
type Command string

const (
	// CmdNext presses the game button.
	CmdNext Command = "next"
	// CmdClear abandons the running round.
	CmdClear Command = "clear"
	// CmdTest runs a strip test pattern in place of the show.
	CmdTest Command = "test"
)

// Control is one queued control request.
type Control struct {
	Cmd  Command    `json:"cmd"`
	Test tests.Kind `json:"test,omitempty"`
}

const writeWait = 200 * time.Millisecond

// State is the preview and control surface. It sits in front of the LED
// driver, mirrors every frame to /ws clients and queues /control commands
// for the tick loop.
type State struct {
	mu     sync.RWMutex
	wmu    sync.Mutex // serialises websocket writes
	Driver render.Driver
	Name   string // driver name reported to clients
	// Throttle is the minimum gap between frames sent to /ws clients.
	Throttle time.Duration
	lastEmit time.Time

	pixels    int
	rgb       []byte
	frameID   uint64
	startTime time.Time
	seated    int
	prompt    string

	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool

	cmds     chan Control
	upgrader websocket.Upgrader
}

func NewState(pixels int, drv render.Driver) *State {
	return &State{
		Driver:      drv,
		pixels:      pixels,
		rgb:         make([]byte, pixels*3),
		startTime:   time.Now(),
		clients:     map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
		Throttle:    50 * time.Millisecond, // ~20 FPS to previews
		cmds:        make(chan Control, 16),
		upgrader:    websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// Write forwards frame to the driver and broadcasts it to preview clients.
func (s *State) Write(frame []render.Pixel) error {
	s.mu.Lock()
	s.frameID++
	if len(s.rgb) != len(frame)*3 {
		s.rgb = make([]byte, len(frame)*3)
	}
	for i, p := range frame {
		s.rgb[i*3+0] = p.R
		s.rgb[i*3+1] = p.G
		s.rgb[i*3+2] = p.B
	}
	id := s.frameID
	drv := s.Driver
	var buf []byte
	if now := time.Now(); len(s.clients) > 0 && !s.lastEmit.Add(s.Throttle).After(now) {
		s.lastEmit = now
		buf = append(buf, s.rgb...)
	}
	s.mu.Unlock()

	if drv != nil {
		if err := drv.Write(frame); err != nil {
			s.Push(diag.DriverError(id, err))
			return err
		}
	}
	if buf != nil {
		s.broadcastFrame(id, buf)
	}
	return nil
}

// Prompt records the text on display and tells /diag clients about it.
func (s *State) Prompt(text string) error {
	s.mu.Lock()
	s.prompt = text
	s.mu.Unlock()
	s.Push(diag.Diagnostic{Severity: diag.Info, Code: diag.CodePrompt, Summary: text})
	return nil
}

func (s *State) SetSeated(n int) {
	s.mu.Lock()
	s.seated = n
	s.mu.Unlock()
}

// Commands is drained by the tick loop.
func (s *State) Commands() <-chan Control { return s.cmds }

// Enqueue queues cmd without blocking; it reports false when the queue is
// full.
func (s *State) Enqueue(cmd Control) bool {
	select {
	case s.cmds <- cmd:
		return true
	default:
		return false
	}
}

// Handler routes the preview endpoints.
func (s *State) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleFramesWS)
	mux.HandleFunc("/diag", s.HandleDiagWS)
	mux.HandleFunc("/control", s.HandleControlWS)
	mux.HandleFunc("/health", s.HandleHealth)
	return mux
}

func (s *State) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()
	s.sendStatus(conn)
	go s.drain(conn, s.clients)
}

func (s *State) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.diagClients[conn] = true
	s.mu.Unlock()
	s.sendStatus(conn)
	go s.drain(conn, s.diagClients)
}

// drain reads until the client goes away, then forgets it.
func (s *State) drain(conn *websocket.Conn, set map[*websocket.Conn]bool) {
	defer func() {
		s.mu.Lock()
		delete(set, conn)
		s.mu.Unlock()
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *State) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Control
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug().Err(err).Msg("control: bad message")
			continue
		}
		s.applyControl(msg)
		s.sendStatus(conn)
	}
}

func (s *State) applyControl(c Control) {
	switch {
	case c.Cmd == CmdNext, c.Cmd == CmdClear:
	case c.Cmd == CmdTest && tests.Valid(c.Test):
	default:
		s.Push(diag.Diagnostic{
			Severity: diag.Warn, Code: diag.CodeControlUnknown, Summary: "Unknown control command",
			Evidence: map[string]any{"cmd": c.Cmd, "test": c.Test},
		})
		return
	}
	if !s.Enqueue(c) {
		s.Push(diag.Diagnostic{Severity: diag.Warn, Code: diag.CodeControlDropped, Summary: "Control queue full", Detail: string(c.Cmd)})
		return
	}
	log.Info().Str("cmd", string(c.Cmd)).Str("test", string(c.Test)).Msg("control command queued")
	s.Push(diag.Diagnostic{Severity: diag.Info, Code: diag.CodeControl, Summary: "Command queued", Detail: string(c.Cmd)})
}

// Status is what /health reports and what clients receive on connect.
type Status struct {
	FrameID uint64  `json:"frame_id"`
	UptimeS float64 `json:"uptime_s"`
	Pixels  int     `json:"pixels"`
	Seated  int     `json:"seated"`
	Prompt  string  `json:"prompt"`
	Driver  string  `json:"driver,omitempty"`
}

func (s *State) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		FrameID: s.frameID,
		UptimeS: time.Since(s.startTime).Seconds(),
		Pixels:  s.pixels,
		Seated:  s.seated,
		Prompt:  s.prompt,
		Driver:  s.Name,
	}
}

func (s *State) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.Status())
}

func (s *State) sendStatus(conn *websocket.Conn) {
	b, _ := json.Marshal(s.Status())
	s.write(conn, b)
}

type frameMsg struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	RGB     []byte `json:"rgb"`
}

func (s *State) broadcastFrame(id uint64, rgb []byte) {
	b, _ := json.Marshal(frameMsg{T: time.Now().UnixNano(), FrameID: id, RGB: rgb})
	for _, c := range s.snapshot(s.clients) {
		if err := s.write(c, b); err != nil {
			log.Debug().Err(err).Msg("write frame")
		}
	}
}

// Push sends d to every /diag client.
func (s *State) Push(d diag.Diagnostic) {
	b, _ := json.Marshal(d)
	for _, c := range s.snapshot(s.diagClients) {
		_ = s.write(c, b)
	}
}

func (s *State) snapshot(set map[*websocket.Conn]bool) []*websocket.Conn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*websocket.Conn, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

func (s *State) write(c *websocket.Conn, b []byte) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	c.SetWriteDeadline(time.Now().Add(writeWait))
	return c.WriteMessage(websocket.TextMessage, b)
}
