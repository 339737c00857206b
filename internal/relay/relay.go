// Package relay forwards extension events to the host's output.
package relay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/plugfy/plugfy/pkg/extension"
)

// Prefix starts every relayed line.
const Prefix = "Event: "

// Relay writes each event as a single "Event: <json>" line, in call order and
// without buffering. It is safe for extensions that emit from several
// goroutines.
type Relay struct {
	mu     sync.Mutex
	w      io.Writer
	logger *log.Logger
	count  int
	err    error
}

// New returns a Relay writing to w. logger may be nil.
func New(w io.Writer, logger *log.Logger) *Relay {
	return &Relay{w: w, logger: logger}
}

// Emit writes ev. Encoding or write failures are remembered (see Err) but
// never reported back to the extension.
func (r *Relay) Emit(ev extension.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var buf bytes.Buffer
	buf.WriteString(Prefix)
	if err := encode(&buf, ev); err != nil {
		r.fail(fmt.Errorf("encoding event %q: %w", ev.Type, err))
		buf.Truncate(len(Prefix))
		_ = encode(&buf, extension.Event{Type: ev.Type, Message: ev.Message})
	}

	if _, err := r.w.Write(buf.Bytes()); err != nil {
		r.fail(fmt.Errorf("writing event: %w", err))
		return
	}
	r.count++
}

// Sink returns Emit as an extension.EventSink.
func (r *Relay) Sink() extension.EventSink {
	return r.Emit
}

// Count returns the number of events written.
func (r *Relay) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Err returns the first encoding or write failure, if any.
func (r *Relay) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// encode writes ev as one JSON line without HTML escaping, so text such as
// "a<b & c" reaches the output unchanged.
func encode(buf *bytes.Buffer, ev extension.Event) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return enc.Encode(ev)
}

func (r *Relay) fail(err error) {
	if r.err == nil {
		r.err = err
	}
	if r.logger != nil {
		r.logger.Warn("event relay", "err", err)
	}
}
