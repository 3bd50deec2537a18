// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
)

// sampleManifest is a representative machine-written record using cbor
// struct tags (the convention for purely-internal types).
type sampleManifest struct {
	Kind    string `cbor:"kind"`
	Author  string `cbor:"author,omitempty"`
	Records int    `cbor:"records"`
}

// sampleDualRecord uses json struct tags (the convention for types
// that serve both JSON and CBOR, relying on fxamacker's fallback).
type sampleDualRecord struct {
	Version int    `json:"version"`
	Name    string `json:"name"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleManifest{
		Kind:    "snapshot",
		Author:  "sysop",
		Records: 42,
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	if len(data) == 0 {
		t.Fatal("Marshal produced empty output")
	}

	var decoded sampleManifest
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded != original {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	manifest := sampleManifest{
		Kind:    "snapshot",
		Author:  "sysop",
		Records: 7,
	}

	first, err := Marshal(manifest)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}

	second, err := Marshal(manifest)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestEncoderDecoderStreamRoundtrip(t *testing.T) {
	manifests := []sampleManifest{
		{Kind: "snapshot", Author: "sysop", Records: 1},
		{Kind: "manifest", Author: "admin", Records: 2},
		{Kind: "snapshot", Records: 0},
	}

	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for _, manifest := range manifests {
		if err := encoder.Encode(manifest); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	decoder := NewDecoder(&buffer)
	for i, want := range manifests {
		var got sampleManifest
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode item %d: %v", i, err)
		}
		if got != want {
			t.Errorf("item %d: got %+v, want %+v", i, got, want)
		}
	}
}

func TestJSONTagFallback(t *testing.T) {
	// Types with json tags (no cbor tags) should encode/decode
	// correctly through our modes, using json tag names as CBOR
	// map keys.
	original := sampleDualRecord{Version: 3, Name: "general"}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sampleDualRecord
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded != original {
		t.Errorf("json-tag roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestOmitemptyRespected(t *testing.T) {
	// A zero-value omitempty field should not appear in output.
	withAuthor := sampleManifest{Kind: "a", Author: "x", Records: 1}
	withoutAuthor := sampleManifest{Kind: "a", Records: 1}

	dataWith, err := Marshal(withAuthor)
	if err != nil {
		t.Fatal(err)
	}
	dataWithout, err := Marshal(withoutAuthor)
	if err != nil {
		t.Fatal(err)
	}

	// The encoding without the author field should be shorter
	// because the omitted field is not present.
	if len(dataWithout) >= len(dataWith) {
		t.Errorf("omitempty not effective: without=%d bytes, with=%d bytes",
			len(dataWithout), len(dataWith))
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var manifest sampleManifest
	err := Unmarshal([]byte{0xFF, 0xFE, 0xFD}, &manifest)
	if err == nil {
		t.Error("Unmarshal should reject invalid CBOR")
	}
}

func TestByteStringRoundtrip(t *testing.T) {
	// Verify that []byte fields encode as CBOR byte strings (major
	// type 2), not text strings. This matters for carrying compressed
	// snapshot payloads and digests.
	type envelope struct {
		Payload []byte `cbor:"payload"`
	}

	original := envelope{Payload: []byte{0x28, 0xb5, 0x2f, 0xfd, 0x00}}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded envelope
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if !bytes.Equal(decoded.Payload, original.Payload) {
		t.Errorf("byte string roundtrip: got %x, want %x", decoded.Payload, original.Payload)
	}
}

func TestDiagnose(t *testing.T) {
	data, err := Marshal(map[string]any{"kind": "snapshot"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}

	if !strings.Contains(notation, `"kind"`) {
		t.Errorf("notation %q does not contain \"kind\"", notation)
	}
	if !strings.Contains(notation, `"snapshot"`) {
		t.Errorf("notation %q does not contain \"snapshot\"", notation)
	}
}

func BenchmarkMarshal(b *testing.B) {
	manifest := sampleManifest{
		Kind:    "snapshot",
		Author:  "sysop",
		Records: 42,
	}

	b.ReportAllocs()
	for b.Loop() {
		Marshal(manifest)
	}
}

func BenchmarkUnmarshal(b *testing.B) {
	manifest := sampleManifest{
		Kind:    "snapshot",
		Author:  "sysop",
		Records: 42,
	}
	data, err := Marshal(manifest)
	if err != nil {
		b.Fatal(err)
	}

	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	for b.Loop() {
		var decoded sampleManifest
		Unmarshal(data, &decoded)
	}
}
