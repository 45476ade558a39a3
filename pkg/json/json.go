// Package json provides JSON serialization backed by goccy/go-json, with
// pooled buffers for the reports written at the end of a run.
package json

import (
	"bytes"
	"io"
	"sync"

	gojson "github.com/goccy/go-json"
)

var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 4096))
	},
}

func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	// Oversized buffers are left to the GC
	if buf.Cap() > 1<<20 {
		return
	}
	bufferPool.Put(buf)
}

// Marshal encodes v
func Marshal(v interface{}) ([]byte, error) {
	return gojson.Marshal(v)
}

// Unmarshal decodes data into v
func Unmarshal(data []byte, v interface{}) error {
	return gojson.Unmarshal(data, v)
}

// MarshalIndent encodes v with two-space indentation
func MarshalIndent(v interface{}) ([]byte, error) {
	return gojson.MarshalIndent(v, "", "  ")
}

// Encode writes v to w as a single JSON document followed by a newline.
// The document is built in a pooled buffer so a failed encode writes nothing.
func Encode(w io.Writer, v interface{}, indent bool) error {
	buf := getBuffer()
	defer putBuffer(buf)

	enc := gojson.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Decode reads one JSON document from r into v
func Decode(r io.Reader, v interface{}) error {
	return gojson.NewDecoder(r).Decode(v)
}
