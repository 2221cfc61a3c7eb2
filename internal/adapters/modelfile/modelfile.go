// Package modelfile reads and writes building models as YAML documents.
package modelfile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/okian/platechanges/internal/domain/model"
)

// Sentinel errors for model files.
var (
	ErrInvalidModel = errors.New("invalid model file")
	ErrDuplicateID  = errors.New("duplicate level id")
	ErrMissingName  = errors.New("level name is required")
)

type document struct {
	Levels []levelEntry `yaml:"levels"`
}

type levelEntry struct {
	ID        string  `yaml:"id,omitempty"`
	Name      string  `yaml:"name"`
	Elevation float64 `yaml:"elevation"`
}

// Load reads the model file at path.
func Load(path string) ([]model.Level, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer func() { _ = f.Close() }()

	levels, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return levels, nil
}

// Decode parses a model document. Unknown fields are rejected and levels
// without an id get a fresh uuid.
func Decode(r io.Reader) ([]model.Level, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []model.Level{}, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	seen := make(map[string]struct{}, len(doc.Levels))
	out := make([]model.Level, 0, len(doc.Levels))
	for i, e := range doc.Levels {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: entry %d", ErrMissingName, i)
		}
		if math.IsNaN(e.Elevation) || math.IsInf(e.Elevation, 0) {
			return nil, fmt.Errorf("%w: level %q has non-finite elevation", ErrInvalidModel, name)
		}
		id := strings.TrimSpace(e.ID)
		if id == "" {
			id = uuid.NewString()
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
		seen[id] = struct{}{}
		out = append(out, model.Level{ID: id, Name: name, Elevation: e.Elevation})
	}
	return out, nil
}

// Encode writes levels as a model document.
func Encode(w io.Writer, levels []model.Level) error {
	doc := document{Levels: make([]levelEntry, len(levels))}
	for i, l := range levels {
		doc.Levels[i] = levelEntry{ID: l.ID, Name: l.Name, Elevation: l.Elevation}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	return enc.Close()
}
