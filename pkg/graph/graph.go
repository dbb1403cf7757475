package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/flowpen/pkg/errors"
)

// =============================================================================
// Manifest Serialization API
// =============================================================================

// MarshalManifest converts a manifest to indented JSON bytes.
func MarshalManifest(m Manifest) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeManifestTo(m, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalManifest decodes and validates a manifest.
func UnmarshalManifest(data []byte) (Manifest, error) {
	return readManifestFrom(bytes.NewReader(data))
}

// WriteManifestFile writes a manifest to a JSON file.
// The file is created with 0644 permissions.
func WriteManifestFile(m Manifest, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeManifestTo(m, f)
}

// WriteManifest writes a manifest as JSON to an io.Writer.
func WriteManifest(m Manifest, w io.Writer) error {
	return writeManifestTo(m, w)
}

// ReadManifestFile reads and validates a JSON manifest file.
func ReadManifestFile(path string) (Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readManifestFrom(f)
}

// ReadManifest decodes and validates a JSON manifest from an io.Reader.
func ReadManifest(r io.Reader) (Manifest, error) {
	return readManifestFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeManifestTo(m Manifest, w io.Writer) error {
	if m.Graph.Elements == nil {
		m.Graph.Elements = New(m.ID).Graph.Elements
	}
	if m.Files == nil {
		m.Files = map[string]string{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readManifestFrom(r io.Reader) (Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		if errors.GetCode(err) != "" {
			return Manifest{}, err
		}
		return Manifest{}, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode")
	}
	if err := Validate(m); err != nil {
		return Manifest{}, err
	}
	if m.Graph.Elements == nil {
		m.Graph.Elements = New(m.ID).Graph.Elements
	}
	if m.Files == nil {
		m.Files = map[string]string{}
	}
	return m, nil
}

// Validate checks the manifest id. Element-level consistency (dangling
// wires, missing source lists) is repaired by the engine on restore.
func Validate(m Manifest) error {
	if err := errors.ValidateID("graph", m.ID); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidManifest, err, "invalid manifest id")
	}
	return nil
}
