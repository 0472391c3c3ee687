// Package tracelog persists BFS expansion traces as zstd-compressed JSON lines,
// one file per UTC day: <dir>/<prefix>-YYYY-MM-DD.jsonl.zst.
package tracelog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/katalvlaran/gridroute/bfs"
	"github.com/katalvlaran/gridroute/gridgraph"
)

// Event kinds.
const (
	KindEnqueue = "enqueue"
	KindVisit   = "visit"
)

// Event is one search step.
type Event struct {
	Run   string `json:"run"`
	Seq   int    `json:"seq"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Depth int    `json:"depth"`
	Kind  string `json:"kind"`
}

// Writer appends events. Each Write becomes one complete zstd frame, so a
// file is readable while the Writer still holds it. Safe for concurrent use.
type Writer struct {
	baseDir string
	prefix  string
	now     func() time.Time

	mu     sync.Mutex
	curDay string
	f      *os.File
	enc    *zstd.Encoder
	buf    []byte
}

// NewWriter opens nothing until the first write.
func NewWriter(baseDir, prefix string) *Writer {
	return &Writer{baseDir: baseDir, prefix: prefix, now: time.Now}
}

// Close closes the current file and releases the encoder. A later Write
// reopens both.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	err := w.closeLocked()
	if w.enc != nil {
		err = errors.Join(err, w.enc.Close())
		w.enc = nil
	}
	return err
}

// Write appends events as one frame.
func (w *Writer) Write(events ...Event) error {
	if len(events) == 0 {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	day := w.now().UTC().Format("2006-01-02")
	if day != w.curDay {
		if err := w.rotateLocked(day); err != nil {
			return err
		}
	}
	w.buf = w.buf[:0]
	for _, ev := range events {
		b, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		w.buf = append(w.buf, b...)
		w.buf = append(w.buf, '\n')
	}
	_, err := w.f.Write(w.enc.EncodeAll(w.buf, nil))
	return err
}

func (w *Writer) rotateLocked(day string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	path := w.pathForDay(day)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	if w.enc == nil {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			_ = f.Close()
			return err
		}
		w.enc = enc
	}
	w.f = f
	w.curDay = day
	return nil
}

func (w *Writer) closeLocked() error {
	var err error
	if w.f != nil {
		err = w.f.Close()
		w.f = nil
	}
	w.curDay = ""
	return err
}

func (w *Writer) pathForDay(day string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, day))
}

// Recorder collects the events of one search and writes them on Flush.
// A Recorder belongs to a single search and is not safe for concurrent use.
type Recorder struct {
	w      *Writer
	run    string
	seq    int
	events []Event
}

// Recorder starts a trace for run. A nil Writer yields a Recorder that keeps
// events in memory only.
func (w *Writer) Recorder(run string) *Recorder {
	return &Recorder{w: w, run: run}
}

// Run is the trace id.
func (r *Recorder) Run() string { return r.run }

// Enqueue records an enqueue event and returns it.
func (r *Recorder) Enqueue(c gridgraph.Coordinate, depth int) Event {
	return r.add(c, depth, KindEnqueue)
}

// Visit records a visit event and returns it.
func (r *Recorder) Visit(c gridgraph.Coordinate, depth int) Event {
	return r.add(c, depth, KindVisit)
}

func (r *Recorder) add(c gridgraph.Coordinate, depth int, kind string) Event {
	ev := Event{Run: r.run, Seq: r.seq, X: c.X, Y: c.Y, Depth: depth, Kind: kind}
	r.seq++
	r.events = append(r.events, ev)
	return ev
}

// Options returns bfs hooks that feed r. They replace any hooks set earlier
// in the option list.
func (r *Recorder) Options() []bfs.Option {
	return []bfs.Option{
		bfs.WithOnEnqueue(func(c gridgraph.Coordinate, depth int) { r.Enqueue(c, depth) }),
		bfs.WithOnVisit(func(c gridgraph.Coordinate, depth int) error {
			r.Visit(c, depth)
			return nil
		}),
	}
}

// Events returns the collected events.
func (r *Recorder) Events() []Event { return r.events }

// Flush writes the collected events and resets the buffer.
func (r *Recorder) Flush() error {
	if r.w == nil || len(r.events) == 0 {
		r.events = r.events[:0]
		return nil
	}
	err := r.w.Write(r.events...)
	r.events = r.events[:0]
	return err
}

// ReadAll decodes every trace file in dir with the given prefix, oldest day first.
func ReadAll(dir, prefix string) ([]Event, error) {
	files, err := filepath.Glob(filepath.Join(dir, prefix+"-*.jsonl.zst"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	var out []Event
	for _, f := range files {
		evs, err := readFile(f)
		if err != nil {
			return nil, fmt.Errorf("tracelog: %s: %w", filepath.Base(f), err)
		}
		out = append(out, evs...)
	}
	return out, nil
}

// ReadRun is ReadAll filtered to one run.
func ReadRun(dir, prefix, run string) ([]Event, error) {
	all, err := ReadAll(dir, prefix)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, ev := range all {
		if ev.Run == run {
			out = append(out, ev)
		}
	}
	return out, nil
}

func readFile(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []Event
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, sc.Err()
}
