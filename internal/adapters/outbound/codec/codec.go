// Package codec reads validator input and writes the one-line canonical
// JSON envelope.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gowebpki/jcs"

	"github.com/abdidvp/skillguard/internal/domain"
)

// Source labels used in EMPTY_INPUT messages.
const StdinSource = "standard input"

// Codec implements domain.RequestDecoder.
type Codec struct{}

// New creates a Codec.
func New() *Codec { return &Codec{} }

// ReadSource reads the file at path, or stdin when path is empty.
func ReadSource(path string, stdin io.Reader) ([]byte, error) {
	if path == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", StdinSource, err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// Decode parses exactly one JSON object. Numbers stay json.Number.
func (c *Codec) Decode(source string, data []byte) (domain.Request, *domain.Entry) {
	if len(bytes.TrimSpace(data)) == 0 {
		e := domain.NewEntry(domain.CodeEmptyInput, "", source)
		return nil, &e
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		e := domain.NewEntry(domain.CodeInvalidJSON, "", err.Error())
		return nil, &e
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		e := domain.NewEntry(domain.CodeInvalidJSON, "", "unexpected data after the top-level object")
		return nil, &e
	}
	obj, ok := v.(map[string]any)
	if !ok {
		e := domain.NewEntry(domain.CodeInvalidJSON, "", "top-level value is "+domain.TypeOf(v))
		return nil, &e
	}
	return domain.Request(obj), nil
}

// DecodeEnvelope parses a previously emitted envelope for display.
func DecodeEnvelope(data []byte) (domain.Envelope, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var env domain.Envelope
	if err := dec.Decode(&env); err != nil {
		return domain.Envelope{}, fmt.Errorf("decoding envelope: %w", err)
	}
	return env, nil
}

// Marshal renders r as RFC 8785 canonical JSON without a trailing newline.
func Marshal(r *domain.Result) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshaling envelope: %w", err)
	}
	canonical, err := jcs.Transform(data)
	if err != nil {
		return nil, fmt.Errorf("canonicalizing envelope: %w", err)
	}
	return canonical, nil
}

// Encode writes r as one canonical line.
func Encode(w io.Writer, r *domain.Result) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing envelope: %w", err)
	}
	return nil
}

// Envelope renders r, or the fixed INTERNAL_ERROR envelope when r cannot
// be encoded. ok is the ok field of the bytes returned.
func Envelope(r *domain.Result) (data []byte, ok bool) {
	data, err := Marshal(r)
	if err != nil {
		return fallback(r.Tool), false
	}
	return data, r.OK()
}

// Emit writes the envelope of r as one line and reports the ok value that
// was written, which is false when encoding fell back. Only write failures
// are returned.
func Emit(w io.Writer, r *domain.Result) (bool, error) {
	data, ok := Envelope(r)
	if _, err := w.Write(append(data, '\n')); err != nil {
		return false, fmt.Errorf("writing envelope: %w", err)
	}
	return ok, nil
}

// fallback is built by hand so it cannot fail; keys are already in
// canonical order.
func fallback(tool string) []byte {
	name, _ := json.Marshal(tool)
	var b bytes.Buffer
	b.WriteString(`{"errors":[{"code":"INTERNAL_ERROR","message":"internal error: envelope encoding failed","path":null,"remediation":null}],"ok":false,"result":{},"tool":`)
	b.Write(name)
	b.WriteString(`,"warnings":[]}`)
	return b.Bytes()
}
