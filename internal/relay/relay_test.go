package relay

import (
	"bytes"
	"errors"
	"testing"

	"github.com/plugfy/plugfy/pkg/extension"
	"github.com/stretchr/testify/assert"
)

func TestEmit_WritesOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, nil)
	sink := r.Sink()

	sink(extension.Event{Type: "progress", Message: "half", Data: map[string]any{"pct": 50}})
	sink(extension.Event{Type: "progress", Message: "half", Data: map[string]any{"pct": 50}})
	sink(extension.Event{Type: "done"})

	want := `Event: {"type":"progress","message":"half","data":{"pct":50}}` + "\n" +
		`Event: {"type":"progress","message":"half","data":{"pct":50}}` + "\n" +
		`Event: {"type":"done"}` + "\n"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, 3, r.Count())
	assert.NoError(t, r.Err())
}

func TestEmit_UnencodableData(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, nil)

	r.Emit(extension.Event{Type: "bad", Message: "m", Data: map[string]any{"ch": make(chan int)}})

	assert.Equal(t, `Event: {"type":"bad","message":"m"}`+"\n", buf.String())
	assert.Error(t, r.Err())
	assert.Equal(t, 1, r.Count())
}

func TestEmit_KeepsMarkupCharacters(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, nil)

	r.Emit(extension.Event{Type: "log", Message: "a<b & c>d", Data: "<tag>"})

	assert.Equal(t, `Event: {"type":"log","message":"a<b & c>d","data":"<tag>"}`+"\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestEmit_WriteFailure(t *testing.T) {
	r := New(failingWriter{}, nil)
	r.Emit(extension.Event{Type: "x"})
	r.Emit(extension.Event{Type: "y"})

	assert.ErrorContains(t, r.Err(), "closed pipe")
	assert.Equal(t, 0, r.Count())
}
