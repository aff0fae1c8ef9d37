package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"time"
)

// Encoded is the snapshot carried by a step decoded from JSON: the frame that
// was written plus the original snapshot encoding in Data.
type Encoded struct {
	View Frame
	Data json.RawMessage
}

// Frame returns the decoded frame.
func (e Encoded) Frame() Frame { return e.View }

// Clone returns a deep copy of e.
func (e Encoded) Clone() Snapshot {
	return Encoded{View: e.View.clone(), Data: slices.Clone(e.Data)}
}

type stepJSON struct {
	Index     int             `json:"index"`
	Kind      Kind            `json:"kind"`
	Focus     []string        `json:"focus,omitempty"`
	Payload   Payload         `json:"payload,omitempty"`
	Narrative string          `json:"narrative"`
	Frame     *Frame          `json:"frame,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// MarshalJSON encodes the step with its snapshot written twice: as a frame for
// renderers and as the engine's own encoding under "data".
func (s Step) MarshalJSON() ([]byte, error) {
	out := stepJSON{
		Index:     s.Index,
		Kind:      s.Kind,
		Focus:     s.Focus,
		Payload:   s.Payload,
		Narrative: s.Narrative,
	}
	switch snap := s.Snapshot.(type) {
	case nil:
	case Encoded:
		f := snap.View
		out.Frame = &f
		out.Data = snap.Data
	default:
		f := snap.Frame()
		out.Frame = &f
		data, err := json.Marshal(snap)
		if err != nil {
			return nil, fmt.Errorf("step %d snapshot: %w", s.Index, err)
		}
		out.Data = data
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a step; its snapshot becomes an [Encoded].
func (s *Step) UnmarshalJSON(b []byte) error {
	var in stepJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*s = Step{
		Index:     in.Index,
		Kind:      in.Kind,
		Focus:     in.Focus,
		Payload:   in.Payload,
		Narrative: in.Narrative,
	}
	if in.Frame != nil {
		s.Snapshot = Encoded{View: *in.Frame, Data: in.Data}
	}
	return nil
}

// MarshalJSON encodes the log as a JSON array of steps.
func (l Log) MarshalJSON() ([]byte, error) {
	if l.steps == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.steps)
}

// UnmarshalJSON decodes a JSON array of steps.
func (l *Log) UnmarshalJSON(b []byte) error {
	var steps []Step
	if err := json.Unmarshal(b, &steps); err != nil {
		return err
	}
	*l = Log{steps: steps}
	return nil
}

// Document is the persisted and served form of a completed engine run.
type Document struct {
	ID        string    `json:"id,omitempty"`
	Engine    string    `json:"engine"`
	Operation string    `json:"operation"`
	Result    any       `json:"result,omitempty"`
	Steps     Log       `json:"steps"`
	CreatedAt time.Time `json:"created_at"`
}

// WriteJSON encodes a document as indented JSON and writes it to w.
// The output can be read back with [ReadJSON].
func WriteJSON(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a document from r. Step snapshots are [Encoded] values.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &doc, nil
}

// ExportJSON writes a document to a JSON file at path.
func ExportJSON(doc *Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(doc, f)
}

// ImportJSON reads a document from the JSON file at path.
func ImportJSON(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
