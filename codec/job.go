package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/kauma/kauma-go/errs"
)

// Testcase is one entry of the job file's "testcases" object: an
// action name plus its raw JSON arguments, left undecoded until the
// dispatcher knows which typed argument shape the action expects.
type Testcase struct {
	ID        string
	Action    string          `json:"action"`
	Arguments json.RawMessage `json:"arguments"`
}

// Reply is one line of the output stream: {"id": ..., "reply": ...}.
type Reply struct {
	ID    string      `json:"id"`
	Reply interface{} `json:"reply"`
}

// ErrorReply is the shape a core error is rendered into inside a
// Reply's "reply" field, per spec.md §7's "diagnostic field" policy.
type ErrorReply struct {
	Error string `json:"error"`
}

// ReadJob parses a job file, preserving the order test cases appear in
// the "testcases" JSON object (a plain map loses that order, and
// spec.md §6 requires replies in encounter order).
func ReadJob(r io.Reader) ([]Testcase, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.New(errs.EncodingError, "codec: read job file: %v", err)
	}

	var envelope struct {
		Testcases json.RawMessage `json:"testcases"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, errs.New(errs.EncodingError, "codec: malformed job file: %v", err)
	}
	if envelope.Testcases == nil {
		return nil, errs.New(errs.EncodingError, "codec: job file has no \"testcases\" object")
	}

	return decodeOrderedTestcases(envelope.Testcases)
}

// decodeOrderedTestcases walks the "testcases" object token by token
// so the encounter order of its keys is preserved, instead of going
// through a map[string]json.RawMessage (whose Go iteration order is
// unspecified).
func decodeOrderedTestcases(raw json.RawMessage) ([]Testcase, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, errs.New(errs.EncodingError, "codec: malformed testcases object: %v", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errs.New(errs.EncodingError, "codec: \"testcases\" must be a JSON object")
	}

	var cases []Testcase
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, errs.New(errs.EncodingError, "codec: malformed testcase key: %v", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errs.New(errs.EncodingError, "codec: testcase key must be a string")
		}

		var body struct {
			Action    string          `json:"action"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := dec.Decode(&body); err != nil {
			return nil, errs.New(errs.EncodingError, "codec: testcase %q: %v", key, err)
		}

		cases = append(cases, Testcase{ID: key, Action: body.Action, Arguments: body.Arguments})
	}

	if _, err := dec.Token(); err != nil {
		return nil, errs.New(errs.EncodingError, "codec: malformed testcases object: %v", err)
	}

	return cases, nil
}

// WriteReply writes one reply-stream line: a compact JSON object
// followed by a newline, matching spec.md §6's "one JSON object per
// line" output shape.
func WriteReply(w io.Writer, reply Reply) error {
	line, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("codec: marshal reply %q: %w", reply.ID, err)
	}
	line = append(line, '\n')
	_, err = w.Write(line)
	return err
}
