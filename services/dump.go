package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// DumpWriter persists inspection results for reading by hand
type DumpWriter struct {
	Dir    string
	Format string
}

func NewDumpWriter(dir, format string) (*DumpWriter, error) {
	format = strings.ToLower(format)
	switch format {
	case "", FormatJSON:
		format = FormatJSON
	case FormatYAML, "yml":
		format = FormatYAML
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if dir == "" {
		dir = "."
	}
	return &DumpWriter{Dir: dir, Format: format}, nil
}

// Encode renders v in the writer's format
func (d *DumpWriter) Encode(v interface{}) ([]byte, error) {
	if d.Format == FormatYAML {
		return yaml.Marshal(v)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Print writes v to w
func (d *DumpWriter) Print(w io.Writer, v interface{}) error {
	data, err := d.Encode(v)
	if err != nil {
		return fmt.Errorf("failed to encode dump: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// Write stores v as <dir>/<name>.<ext>. The file is replaced atomically.
func (d *DumpWriter) Write(name string, v interface{}) (string, error) {
	data, err := d.Encode(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode dump: %w", err)
	}

	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	path := filepath.Join(d.Dir, sanitizeFileName(name)+"."+d.Format)
	tmp, err := os.CreateTemp(d.Dir, ".dump-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write dump: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to set dump permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close dump: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move dump into place: %w", err)
	}

	slog.Info("Dump written", "path", path, "bytes", len(data))
	return path, nil
}

func sanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, name)
}
