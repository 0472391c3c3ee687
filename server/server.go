// Package server exposes a Planner over HTTP (gorilla/mux) and streams live
// searches over WebSocket (gorilla/websocket).
//
// Routes:
//
//	GET  /healthz
//	GET  /v1/map                 cells, bounds and an ASCII rendering
//	POST /v1/route               {"start":{x,y},"goal":{x,y}}; omitted endpoints use the configured route
//	GET  /v1/route.png           ?sx=&sy=&gx=&gy=
//	GET  /v1/route.geojson       same query
//	GET  /v1/runs                ?limit=
//	GET  /v1/runs/{id}
//	GET  /v1/ws/search           same query; streams events, then the outcome
//
// A route request answers 200 whether or not a route exists (see "found"),
// 422 for an endpoint that is blocked or outside the survey, 503 when the
// search limits are exceeded and 504 on timeout. A request whose client
// disconnected mid-search gets 499 and is not logged as a failure.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/katalvlaran/gridroute/bfs"
	"github.com/katalvlaran/gridroute/export"
	"github.com/katalvlaran/gridroute/gridgraph"
	"github.com/katalvlaran/gridroute/planner"
	"github.com/katalvlaran/gridroute/render"
	"github.com/katalvlaran/gridroute/store"
	"github.com/katalvlaran/gridroute/tracelog"
)

// Server serves one Planner.
type Server struct {
	p   *planner.Planner
	log *log.Logger

	upgrader websocket.Upgrader
	router   *mux.Router
}

// New builds the router. A nil logger discards output.
func New(p *planner.Planner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Server{
		p:   p,
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		router: mux.NewRouter(),
	}
	s.RegisterRoutes(s.router)
	return s
}

// RegisterRoutes mounts every route on router.
func (s *Server) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/healthz", s.health).Methods("GET")
	router.HandleFunc("/v1/map", s.mapInfo).Methods("GET")
	router.HandleFunc("/v1/route", s.route).Methods("POST")
	router.HandleFunc("/v1/route.png", s.routePNG).Methods("GET")
	router.HandleFunc("/v1/route.geojson", s.routeGeoJSON).Methods("GET")
	router.HandleFunc("/v1/runs", s.runs).Methods("GET")
	router.HandleFunc("/v1/runs/{id:[0-9]+}", s.run).Methods("GET")
	router.HandleFunc("/v1/ws/search", s.wsSearch).Methods("GET")
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Printf("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type errorBody struct {
	Error   string           `json:"error"`
	Outcome *planner.Outcome `json:"outcome,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error, o *planner.Outcome) {
	writeJSON(w, status, errorBody{Error: err.Error(), Outcome: o})
}

// StatusClientClosedRequest is the non-standard status (nginx 499) used when
// the request context was cancelled before the search finished.
const StatusClientClosedRequest = 499

// statusFor maps a Plan error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest
	case errors.Is(err, bfs.ErrInvalidEndpoint):
		return http.StatusUnprocessableEntity
	case errors.Is(err, bfs.ErrResourceExhausted):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type mapCell struct {
	X     int                 `json:"x"`
	Y     int                 `json:"y"`
	State gridgraph.CellState `json:"state"`
}

type mapResponse struct {
	Min     gridgraph.Coordinate `json:"min"`
	Max     gridgraph.Coordinate `json:"max"`
	Open    int                  `json:"open"`
	Blocked int                  `json:"blocked"`
	Cells   []mapCell            `json:"cells"`
	ASCII   string               `json:"ascii"`
}

func (s *Server) mapInfo(w http.ResponseWriter, r *http.Request) {
	m := s.p.Map()
	lo, hi, _ := m.Bounds()
	resp := mapResponse{
		Min:     lo,
		Max:     hi,
		Open:    m.OpenCount(),
		Blocked: m.BlockedCount(),
		Cells:   make([]mapCell, 0, m.Len()),
		ASCII:   render.ASCII(m, nil, nil),
	}
	for _, c := range m.Coordinates() {
		resp.Cells = append(resp.Cells, mapCell{X: c.X, Y: c.Y, State: m.State(c)})
	}
	writeJSON(w, http.StatusOK, resp)
}

type routeRequest struct {
	Start *gridgraph.Coordinate `json:"start"`
	Goal  *gridgraph.Coordinate `json:"goal"`
}

// endpoints fills omitted endpoints from the configured route.
func (s *Server) endpoints(req routeRequest) (gridgraph.Coordinate, gridgraph.Coordinate, error) {
	if req.Start != nil && req.Goal != nil {
		return *req.Start, *req.Goal, nil
	}
	start, goal, err := s.p.Endpoints()
	if err != nil {
		return start, goal, err
	}
	if req.Start != nil {
		start = *req.Start
	}
	if req.Goal != nil {
		goal = *req.Goal
	}
	return start, goal, nil
}

// queryRequest reads sx, sy, gx, gy. Each pair is all-or-nothing.
func queryRequest(r *http.Request) (routeRequest, error) {
	var req routeRequest
	pair := func(kx, ky string) (*gridgraph.Coordinate, error) {
		q := r.URL.Query()
		xs, ys := q.Get(kx), q.Get(ky)
		if xs == "" && ys == "" {
			return nil, nil
		}
		x, errX := strconv.Atoi(xs)
		y, errY := strconv.Atoi(ys)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("query %s/%s must be integers", kx, ky)
		}
		c := gridgraph.C(x, y)
		return &c, nil
	}
	var err error
	if req.Start, err = pair("sx", "sy"); err != nil {
		return req, err
	}
	if req.Goal, err = pair("gx", "gy"); err != nil {
		return req, err
	}
	return req, nil
}

// plan runs a search and writes the error response itself when it fails.
func (s *Server) plan(w http.ResponseWriter, r *http.Request, req routeRequest) (*planner.Outcome, bool) {
	start, goal, err := s.endpoints(req)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err, nil)
		return nil, false
	}
	o, err := s.p.Plan(r.Context(), start, goal)
	if err != nil {
		status := statusFor(err)
		switch {
		case status == StatusClientClosedRequest:
			s.log.Printf("route %s -> %s: client went away", start, goal)
		case status >= http.StatusInternalServerError:
			s.log.Printf("route %s -> %s: %v", start, goal, err)
		}
		writeError(w, status, err, o)
		return nil, false
	}
	return o, true
}

func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	o, ok := s.plan(w, r, req)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) routePNG(w http.ResponseWriter, r *http.Request) {
	req, err := queryRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	o, ok := s.plan(w, r, req)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := render.Encode(w, s.p.Map(), o.Path, s.p.RenderOptions()...); err != nil {
		s.log.Printf("route.png: %v", err)
	}
}

func (s *Server) routeGeoJSON(w http.ResponseWriter, r *http.Request) {
	req, err := queryRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	o, ok := s.plan(w, r, req)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	if err := export.WriteGeoJSON(w, export.GeoJSON(s.p.Map(), o.Path)); err != nil {
		s.log.Printf("route.geojson: %v", err)
	}
}

func (s *Server) runs(w http.ResponseWriter, r *http.Request) {
	st := s.p.Store()
	if st == nil {
		http.Error(w, "run history disabled", http.StatusNotFound)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	runs, err := st.Runs(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs, "count": len(runs)})
}

func (s *Server) run(w http.ResponseWriter, r *http.Request) {
	st := s.p.Store()
	if st == nil {
		http.Error(w, "run history disabled", http.StatusNotFound)
		return
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "bad run id", http.StatusBadRequest)
		return
	}
	run, err := st.Run(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err, nil)
	case err != nil:
		writeError(w, http.StatusInternalServerError, err, nil)
	default:
		writeJSON(w, http.StatusOK, run)
	}
}

// Stream message types.
const (
	MsgEvent  = "event"
	MsgResult = "result"
	MsgError  = "error"
)

// StreamMessage is one WebSocket frame of /v1/ws/search.
type StreamMessage struct {
	Type    string           `json:"type"`
	Event   *tracelog.Event  `json:"event,omitempty"`
	Outcome *planner.Outcome `json:"outcome,omitempty"`
	Error   string           `json:"error,omitempty"`
}

func (s *Server) wsSearch(w http.ResponseWriter, r *http.Request) {
	req, err := queryRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	start, goal, err := s.endpoints(req)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err, nil)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	send := func(m StreamMessage) error {
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		return conn.WriteJSON(m)
	}
	o, err := s.p.PlanWatch(r.Context(), start, goal, func(ev tracelog.Event) error {
		return send(StreamMessage{Type: MsgEvent, Event: &ev})
	})
	final := StreamMessage{Type: MsgResult, Outcome: o}
	if err != nil {
		final.Type = MsgError
		final.Error = err.Error()
	}
	if werr := send(final); werr != nil {
		s.log.Printf("ws search: %v", werr)
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"), time.Now().Add(time.Second))
}
