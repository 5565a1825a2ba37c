package admin

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tactimesh/internal/comms"
	"tactimesh/internal/sim"
)

// Server exposes the live tactical picture over HTTP.
type Server struct {
	Eng *sim.Engine
	tpl *template.Template
}

//go:embed templates/index.html
var content embed.FS

func NewServer(eng *sim.Engine) *Server {
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	return &Server{Eng: eng, tpl: tpl}
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/nodes", s.handleNodes)
	mux.HandleFunc("/messages", s.handleMessages)
	mux.HandleFunc("/connectivity", s.handleConnectivity)
	mux.HandleFunc("/geofences", s.handleGeofences)
	mux.HandleFunc("/clock", s.handleClock)
	mux.HandleFunc("/send", s.handleSend)
	mux.HandleFunc("/acknowledge", s.handleAcknowledge)
	mux.HandleFunc("/zoom", s.handleZoom)
	mux.HandleFunc("/recenter", s.handleRecenter)
	mux.Handle("/metrics", promhttp.Handler())
}

// Handler returns the routed mux, exported for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.routes(mux)
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data := struct {
		Mission     string
		CommandNode string
		Clock       string
		Nodes       int
		Links       int
		Pending     int
	}{
		Mission:     s.Eng.MissionName(),
		CommandNode: s.Eng.CommandNode(),
		Clock:       s.Eng.ClockDisplay(),
		Nodes:       len(s.Eng.Nodes()),
		Links:       len(s.Eng.Connectivity()),
		Pending:     s.Eng.PendingReplies(),
	}
	s.tpl.Execute(w, data)
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Eng.Nodes())
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	writeJSON(w, s.Eng.Messages(limit))
}

func (s *Server) handleConnectivity(w http.ResponseWriter, r *http.Request) {
	if node := r.URL.Query().Get("node"); node != "" {
		writeJSON(w, s.Eng.Neighbors(node))
		return
	}
	writeJSON(w, s.Eng.Connectivity())
}

func (s *Server) handleGeofences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Eng.Geofences())
}

func (s *Server) handleClock(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"display": s.Eng.ClockDisplay()})
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Sender    string `json:"sender"`
		Recipient string `json:"recipient"`
		Type      string `json:"type"`
		Priority  int    `json:"priority"`
		Content   string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Type == "" {
		req.Type = string(comms.TypeCommand)
	}
	if req.Priority == 0 {
		req.Priority = comms.PriorityPriority
	}
	msg, err := s.Eng.Send(req.Sender, req.Recipient, comms.Type(req.Type), req.Priority, req.Content)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, msg)
}

func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if !s.Eng.Acknowledge(id) {
		http.Error(w, "unknown message", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	dir := r.URL.Query().Get("dir")
	if dir != "in" && dir != "out" {
		http.Error(w, "dir must be in or out", http.StatusBadRequest)
		return
	}
	scale := s.Eng.Zoom(dir == "in")
	writeJSON(w, map[string]float64{"scale": scale})
}

func (s *Server) handleRecenter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	p, ok := s.Eng.Recenter(r.URL.Query().Get("node"))
	if !ok {
		http.Error(w, "unknown node", http.StatusNotFound)
		return
	}
	writeJSON(w, p)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
