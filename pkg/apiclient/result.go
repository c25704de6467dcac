package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// Kind tags which variant a Result holds.
type Kind int

const (
	KindText Kind = iota
	KindJSON
)

func (k Kind) String() string {
	if k == KindJSON {
		return "json"
	}
	return "text"
}

// Result is a response body that is either raw text or a decoded JSON value.
// Switch on Kind before reading Value.
type Result struct {
	Kind Kind
	// Text is the raw body, set for both variants.
	Text string
	// Value holds the decoded document when Kind is KindJSON. Numbers are
	// json.Number so re-encoding never loses precision.
	Value any
	// Fallback reports that the response declared JSON but the body did not
	// parse, so the raw text was returned instead.
	Fallback    bool
	StatusCode  int
	ContentType string
}

// TextResult builds a text variant.
func TextResult(text string) Result {
	return Result{Kind: KindText, Text: text}
}

// JSONResult decodes raw into a JSON variant.
func JSONResult(raw []byte) (Result, error) {
	v, err := decodeJSON(raw)
	if err != nil {
		return Result{}, err
	}
	return Result{Kind: KindJSON, Text: string(raw), Value: v}, nil
}

// Display renders the result for a human: text verbatim, JSON indented by
// two spaces with the document's key order kept.
func (r Result) Display() string {
	if r.Kind != KindJSON {
		return r.Text
	}
	if s, ok := r.Value.(string); ok {
		return s
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(r.Text), "", "  "); err != nil {
		return r.Text
	}
	return buf.String()
}

// Compact renders the result on a single line, the form used in error messages.
func (r Result) Compact() string {
	if r.Kind != KindJSON {
		return r.Text
	}
	if s, ok := r.Value.(string); ok {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(r.Text)); err != nil {
		return strings.TrimSpace(r.Text)
	}
	return buf.String()
}

var errTrailingData = errors.New("invalid character after top-level value")

// decodeJSON parses exactly one JSON document.
func decodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return v, nil
}
