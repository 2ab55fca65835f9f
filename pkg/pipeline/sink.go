package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// PublicPrefix is the URL path prefix under which the HTTP layer serves
// the audio directory.
const PublicPrefix = "/tts"

// Sink persists synthesized audio artifacts under a public-servable
// directory and returns their URLs. File names are random UUIDs so
// concurrent requests can never collide. There is no deduplication or
// expiry; files accumulate until cleaned externally.
type Sink struct {
	dir string
	ext string
}

// NewSink creates a sink writing into dir, creating it if needed.
// ext is the file extension of the pipeline's output codec (no dot).
func NewSink(dir, ext string) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("pipeline: create audio dir: %w", err)
	}
	return &Sink{dir: dir, ext: ext}, nil
}

// Store writes the audio bytes under a fresh name and returns the
// servable URL path.
func (s *Sink) Store(audio []byte) (string, error) {
	name := uuid.NewString() + "." + s.ext

	if err := os.WriteFile(filepath.Join(s.dir, name), audio, 0o644); err != nil {
		return "", fmt.Errorf("pipeline: write audio artifact: %w", err)
	}

	return PublicPrefix + "/" + name, nil
}

// Dir returns the directory the sink writes into.
func (s *Sink) Dir() string {
	return s.dir
}
