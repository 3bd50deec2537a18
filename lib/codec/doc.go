// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides Telboard's standard CBOR encoding configuration.
//
// Telboard uses two serialization formats with a clear boundary:
//
//   - JSON (with comments, via tidwall/jsonc) for the operator-editable
//     settings file, and YAML for the service configuration and
//     category import files.
//   - CBOR for machine-written artifacts: backup snapshots and their
//     manifests.
//
// This package provides the shared CBOR encoding and decoding modes so
// that every Telboard package encodes identically without duplicating
// configuration. The encoder uses Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Same logical data always produces identical
// bytes, which makes backup digests meaningful: two snapshots of the
// same board state hash identically.
//
// For buffer-oriented operations (backup payloads, manifests):
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (writing a snapshot through a
// compressor):
//
//	encoder := codec.NewEncoder(w)
//	decoder := codec.NewDecoder(r)
//
// # Struct Tag Rules
//
// The struct tag on a type documents its serialization format:
//
//   - `cbor` tag: this type is ONLY ever serialized as CBOR. It will
//     never be marshaled to JSON or interact with CLI tooling.
//     Examples: backup snapshot and manifest types.
//   - `json` tag: this type may be serialized as BOTH JSON and CBOR.
//     fxamacker/cbor v2 reads `json` tags as fallback when `cbor`
//     tags are absent, so a single `json` tag controls field naming
//     and omitempty for both formats. Examples: board schema types,
//     which appear in backup snapshots (CBOR) and in admin --json
//     output (JSON).
//
// Never use both `cbor` and `json` tags on the same field. The tag
// choice documents the contract.
package codec
