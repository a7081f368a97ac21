package testlog

import (
	"sync"

	"commute-route-service/internal/logx"
)

// Entry is one captured log call.
type Entry struct {
	Level  string
	Msg    string
	Fields []logx.Field
}

// Field returns the value of the named field and whether it was present.
func (e Entry) Field(key string) (any, bool) {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Recorder captures entries written through the loggers it hands out.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// New returns an empty Recorder.
func New() *Recorder { return &Recorder{} }

// Logger returns a logx.Logger bound to r.
func (r *Recorder) Logger() logx.Logger {
	return bound{r: r}
}

// Entries returns a snapshot of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Find returns every entry with the given message.
func (r *Recorder) Find(msg string) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Msg == msg {
			out = append(out, e)
		}
	}
	return out
}

// Has reports whether at least one entry with msg was recorded.
func (r *Recorder) Has(msg string) bool {
	return len(r.Find(msg)) > 0
}

func (r *Recorder) add(level, msg string, fields []logx.Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := append([]logx.Field(nil), fields...)
	r.entries = append(r.entries, Entry{Level: level, Msg: msg, Fields: cp})
}

type bound struct {
	r    *Recorder
	base []logx.Field
}

func (b bound) Debug(msg string, f ...logx.Field) { b.r.add("debug", msg, b.merge(f)) }
func (b bound) Info(msg string, f ...logx.Field)  { b.r.add("info", msg, b.merge(f)) }
func (b bound) Warn(msg string, f ...logx.Field)  { b.r.add("warn", msg, b.merge(f)) }
func (b bound) Error(msg string, f ...logx.Field) { b.r.add("error", msg, b.merge(f)) }

func (b bound) merge(f []logx.Field) []logx.Field {
	out := make([]logx.Field, 0, len(b.base)+len(f))
	out = append(out, b.base...)
	return append(out, f...)
}

func (b bound) With(f ...logx.Field) logx.Logger {
	return bound{r: b.r, base: b.merge(f)}
}

func (b bound) Sync() error { return nil }

var _ logx.Logger = bound{}
