// Package segmentation defines the serialized form of a planar region
// detection result and its JSON encoding.
//
// A [Segmentation] lists the regions in detection order together with the
// unassigned items, the thresholds used, optional fitted planes and the
// region adjacency graph. It is what the CLI writes as JSON, what the HTTP
// API returns and what the pipeline caches.
//
// JSON output is indented and deterministic: identical detections encode to
// identical bytes, which keeps cache keys derived from them stable.
package segmentation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Marshal encodes s as indented JSON.
func Marshal(s Segmentation) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes JSON data and validates the partition.
func Unmarshal(data []byte) (Segmentation, error) {
	return Read(bytes.NewReader(data))
}

// Write encodes s as indented JSON to w.
func Write(s Segmentation, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Read decodes a segmentation from r and validates the partition.
func Read(r io.Reader) (Segmentation, error) {
	var s Segmentation
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Segmentation{}, fmt.Errorf("decode: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Segmentation{}, fmt.Errorf("invalid segmentation: %w", err)
	}
	return s, nil
}

// WriteFile writes s as JSON to path.
func WriteFile(s Segmentation, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(s, f)
}

// ReadFile reads and validates a segmentation from path.
func ReadFile(path string) (Segmentation, error) {
	f, err := os.Open(path)
	if err != nil {
		return Segmentation{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
