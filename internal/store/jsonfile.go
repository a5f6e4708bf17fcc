package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/newhook/flagtrack/internal/flag"
	"github.com/newhook/flagtrack/internal/logging"
)

// JSONFile stores flags as a single indented JSON array.
type JSONFile struct {
	path string
}

var _ Backend = (*JSONFile)(nil)

// NewJSONFile returns a backend for the document at path.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Path returns the document path.
func (j *JSONFile) Path() string {
	return j.path
}

// Load reads the document. A missing, empty or malformed document loads as
// an empty collection.
func (j *JSONFile) Load(ctx context.Context) ([]*flag.Flag, error) {
	data, err := os.ReadFile(j.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []*flag.Flag{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", j.path, err)
	}
	return DecodeFlags(ctx, data), nil
}

// Save writes the document to a temporary file and renames it into place.
func (j *JSONFile) Save(_ context.Context, flags []*flag.Flag) error {
	data, err := EncodeFlags(flags)
	if err != nil {
		return err
	}

	dir := filepath.Dir(j.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(j.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, j.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", j.path, err)
	}
	return nil
}

// EncodeFlags renders flags as the on-disk JSON document: UTF-8, two-space
// indentation, non-ASCII text kept literal.
func EncodeFlags(flags []*flag.Flag) ([]byte, error) {
	if flags == nil {
		flags = []*flag.Flag{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(flags); err != nil {
		return nil, fmt.Errorf("failed to encode flags: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeFlags parses a JSON document. A document that is not a JSON array
// is logged and yields an empty collection. Inside the array, each record is
// decoded on its own: null entries and records that do not fit the flag
// shape are logged and skipped, and the rest are kept.
func DecodeFlags(ctx context.Context, data []byte) []*flag.Flag {
	if len(bytes.TrimSpace(data)) == 0 {
		return []*flag.Flag{}
	}
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		logging.WarnContext(ctx, "ignoring malformed flag document", "error", err)
		return []*flag.Flag{}
	}

	out := make([]*flag.Flag, 0, len(records))
	for i, rec := range records {
		if bytes.Equal(bytes.TrimSpace(rec), []byte("null")) {
			continue
		}
		f := new(flag.Flag)
		if err := json.Unmarshal(rec, f); err != nil {
			logging.WarnContext(ctx, "skipping malformed flag record", "index", i, "error", err)
			continue
		}
		out = append(out, f)
	}
	return out
}
