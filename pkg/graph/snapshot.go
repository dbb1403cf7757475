package graph

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// MarshalSnapshot encodes the manifest as a BSON document with the same
// field names and key order as its JSON form.
func MarshalSnapshot(m Manifest) ([]byte, error) {
	if m.Graph.Elements == nil {
		m.Graph.Elements = New(m.ID).Graph.Elements
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	// Plain JSON is valid relaxed extended JSON; decoding into bson.D keeps
	// key order, which data trees depend on.
	var doc bson.D
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, fmt.Errorf("convert manifest: %w", err)
	}
	out, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return out, nil
}

// UnmarshalSnapshot decodes a BSON snapshot back into a manifest.
func UnmarshalSnapshot(data []byte) (Manifest, error) {
	if err := bson.Raw(data).Validate(); err != nil {
		return Manifest{}, fmt.Errorf("decode snapshot: %w", err)
	}
	js, err := bson.MarshalExtJSON(bson.Raw(data), false, false)
	if err != nil {
		return Manifest{}, fmt.Errorf("convert snapshot: %w", err)
	}
	return UnmarshalManifest(js)
}
