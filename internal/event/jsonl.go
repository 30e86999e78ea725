package event

import (
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/sjson"
)

// JSONLSink writes each event as one JSON object per line:
//
//	{"id":"...","topic":"tokens.reparsed","time":"...","source":"engine","fields":{...}}
//
// Field keys are written in sorted order. Write errors are counted, not
// returned, because Emit cannot fail.
type JSONLSink struct {
	mu     sync.Mutex
	w      io.Writer
	errors int
}

// NewJSONLSink creates a sink writing to w.
func NewJSONLSink(w io.Writer) *JSONLSink {
	return &JSONLSink{w: w}
}

// Emit writes e.
func (s *JSONLSink) Emit(e Event) {
	line, err := Encode(e)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		_, err = io.WriteString(s.w, line+"\n")
	}
	if err != nil {
		s.errors++
	}
}

// Errors returns how many events could not be encoded or written.
func (s *JSONLSink) Errors() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors
}

// Encode renders e as a single-line JSON object.
func Encode(e Event) (string, error) {
	doc := `{}`
	var err error
	set := func(path string, v any) {
		if err == nil {
			doc, err = sjson.Set(doc, path, v)
		}
	}
	set("id", e.ID.String())
	set("topic", string(e.Topic))
	set("time", e.Time.UTC().Format(time.RFC3339Nano))
	if e.Source != "" {
		set("source", e.Source)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		set("fields."+escapePath(k), e.Fields[k])
	}
	return doc, err
}

var pathEscaper = strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`, "|", `\|`, "#", `\#`, "@", `\@`)

func escapePath(k string) string { return pathEscaper.Replace(k) }
