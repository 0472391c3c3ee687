package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gridroute/config"
	"github.com/katalvlaran/gridroute/export"
	"github.com/katalvlaran/gridroute/gridgraph"
	"github.com/katalvlaran/gridroute/planner"
	"github.com/katalvlaran/gridroute/server"
	"github.com/katalvlaran/gridroute/tracelog"
)

func newTestServer(t *testing.T, withStore bool) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = filepath.Join("..", "survey", "testdata")
	cfg.Output.CellPx = 10
	if withStore {
		cfg.Store.Path = filepath.Join(t.TempDir(), "runs.db")
	}
	p, err := planner.New(cfg, nil)
	require.NoError(t, err)
	ts := httptest.NewServer(server.New(p, nil).Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = p.Close()
	})
	return ts
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

//----------------------------------------------------------------------------//
// HTTP Tests
//----------------------------------------------------------------------------//

func TestHealthAndMap(t *testing.T) {
	ts := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/v1/map")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var m struct {
		Min     gridgraph.Coordinate `json:"min"`
		Max     gridgraph.Coordinate `json:"max"`
		Open    int                  `json:"open"`
		Blocked int                  `json:"blocked"`
		Cells   []struct {
			X, Y  int
			State string
		} `json:"cells"`
		ASCII string `json:"ascii"`
	}
	decode(t, resp, &m)
	assert.Equal(t, gridgraph.C(1, 1), m.Min)
	assert.Equal(t, gridgraph.C(3, 3), m.Max)
	assert.Equal(t, 6, m.Open)
	assert.Equal(t, 3, m.Blocked)
	require.Len(t, m.Cells, 9)
	assert.Equal(t, "open", m.Cells[0].State)
	assert.Equal(t, ".##\n.#.\n...\n", m.ASCII)
}

func TestRoute(t *testing.T) {
	ts := newTestServer(t, true)

	for _, body := range []string{"", "{}", `{"start":{"x":1,"y":1},"goal":{"x":3,"y":3}}`} {
		resp := post(t, ts.URL+"/v1/route", body)
		require.Equal(t, http.StatusOK, resp.StatusCode, "body %q", body)
		var o planner.Outcome
		decode(t, resp, &o)
		assert.True(t, o.Found)
		assert.Equal(t, 4, o.Steps)
		assert.Len(t, o.Path, 5)
		assert.NotZero(t, o.RunID)
	}
}

func TestRoute_InvalidEndpoint(t *testing.T) {
	ts := newTestServer(t, false)

	resp := post(t, ts.URL+"/v1/route", `{"goal":{"x":2,"y":1}}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var body struct {
		Error   string           `json:"error"`
		Outcome *planner.Outcome `json:"outcome"`
	}
	decode(t, resp, &body)
	assert.Contains(t, body.Error, "goal is blocked")
	require.NotNil(t, body.Outcome)
	require.NotNil(t, body.Outcome.Suggestions)
	assert.Equal(t, []gridgraph.Coordinate{{X: 1, Y: 1}, {X: 1, Y: 2}, {X: 3, Y: 2}}, body.Outcome.Suggestions.Goal)

	resp = post(t, ts.URL+"/v1/route", `{"goal":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/v1/route")
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	resp.Body.Close()
}

func TestRoute_ClientGone(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = filepath.Join("..", "survey", "testdata")
	p, err := planner.New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	var logs bytes.Buffer
	h := server.New(p, log.New(&logs, "", 0)).Handler()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/v1/route", strings.NewReader("{}")).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, server.StatusClientClosedRequest, rec.Code)
	assert.Contains(t, logs.String(), "client went away")
	assert.NotContains(t, logs.String(), "context canceled")
}

func TestRoutePNGAndGeoJSON(t *testing.T) {
	ts := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/v1/route.png")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	img, err := png.Decode(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())

	resp, err = http.Get(ts.URL + "/v1/route.geojson?sx=1&sy=3&gx=3&gy=3")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var raw json.RawMessage
	decode(t, resp, &raw)
	route, err := export.RouteFromGeoJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, []gridgraph.Coordinate{{X: 1, Y: 3}, {X: 2, Y: 3}, {X: 3, Y: 3}}, route)

	resp, err = http.Get(ts.URL + "/v1/route.png?sx=a&sy=1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/v1/route.geojson?gx=9&gy=9")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()
}

func TestRuns(t *testing.T) {
	ts := newTestServer(t, true)
	post(t, ts.URL+"/v1/route", "").Body.Close()
	post(t, ts.URL+"/v1/route", `{"goal":{"x":2,"y":1}}`).Body.Close()

	resp, err := http.Get(ts.URL + "/v1/runs?limit=10")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Count int `json:"count"`
		Runs  []struct {
			ID    int64  `json:"id"`
			Found bool   `json:"found"`
			Error string `json:"error"`
		} `json:"runs"`
	}
	decode(t, resp, &list)
	require.Equal(t, 2, list.Count)
	assert.Equal(t, int64(2), list.Runs[0].ID)
	assert.NotEmpty(t, list.Runs[0].Error)
	assert.True(t, list.Runs[1].Found)

	resp, err = http.Get(ts.URL + "/v1/runs/1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/v1/runs/999")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/v1/runs?limit=-1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestRuns_Disabled(t *testing.T) {
	ts := newTestServer(t, false)
	resp, err := http.Get(ts.URL + "/v1/runs")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

//----------------------------------------------------------------------------//
// WebSocket Tests
//----------------------------------------------------------------------------//

func dialSearch(t *testing.T, ts *httptest.Server, query string) []server.StreamMessage {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/ws/search" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var msgs []server.StreamMessage
	for {
		var m server.StreamMessage
		if err := conn.ReadJSON(&m); err != nil {
			break
		}
		msgs = append(msgs, m)
		if m.Type != server.MsgEvent {
			break
		}
	}
	return msgs
}

func TestWSSearch(t *testing.T) {
	ts := newTestServer(t, false)
	msgs := dialSearch(t, ts, "")
	require.NotEmpty(t, msgs)

	last := msgs[len(msgs)-1]
	require.Equal(t, server.MsgResult, last.Type)
	require.NotNil(t, last.Outcome)
	assert.True(t, last.Outcome.Found)

	visits := 0
	for _, m := range msgs[:len(msgs)-1] {
		require.Equal(t, server.MsgEvent, m.Type)
		require.NotNil(t, m.Event)
		assert.Equal(t, last.Outcome.TraceID, m.Event.Run)
		if m.Event.Kind == tracelog.KindVisit {
			visits++
		}
	}
	assert.Equal(t, last.Outcome.Visited, visits)
}

func TestWSSearch_InvalidEndpoint(t *testing.T) {
	ts := newTestServer(t, false)
	msgs := dialSearch(t, ts, "?gx=2&gy=1")
	require.Len(t, msgs, 1)
	assert.Equal(t, server.MsgError, msgs[0].Type)
	assert.Contains(t, msgs[0].Error, "invalid endpoint")
	require.NotNil(t, msgs[0].Outcome)
	assert.NotEmpty(t, msgs[0].Outcome.Suggestions.Goal)
}

func TestListenAndServe_Shutdown(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = filepath.Join("..", "survey", "testdata")
	p, err := planner.New(cfg, nil)
	require.NoError(t, err)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.New(p, nil).ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	assert.NoError(t, <-done)
}
