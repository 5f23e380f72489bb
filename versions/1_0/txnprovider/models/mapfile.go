/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package models implements the map file batch container (§4.3): a
// deflate-compressed, canonical-JSON document referencing the chunk file that
// carries operation deltas, plus the did_suffix/signed_data skeletons of the
// update operations anchored in the same batch.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/tidwall/gjson"

	"github.com/trustbloc/sidetree-resolver-core/doc/json/canonicalizer"
)

// ChunkEntry points at the chunk file carrying this batch's operation deltas. The wire format
// allows exactly one property on the entry; it is always chunk_file_uri in this protocol version.
type ChunkEntry struct {
	ChunkFileURI string `json:"chunk_file_uri"`
}

// UpdateReference is an update operation's skeleton: enough to locate and verify it without the
// delta, which lives in the chunk file instead.
type UpdateReference struct {
	DidSuffix  string `json:"did_suffix"`
	SignedData string `json:"signed_data"`
}

// Operations carries the update-operation skeletons anchored in this batch. Create, recover and
// deactivate operations are not referenced here.
type Operations struct {
	Update []UpdateReference `json:"update"`
}

// MapFile is the batch container of §4.3.
type MapFile struct {
	Chunks     []ChunkEntry `json:"chunks"`
	Operations *Operations  `json:"operations,omitempty"`
}

// NewMapFile builds a MapFile referencing chunkFileURI, with one update reference per element of
// updates. Operations is omitted from the built shape when updates is empty.
func NewMapFile(chunkFileURI string, updates []UpdateReference) *MapFile {
	mf := &MapFile{
		Chunks: []ChunkEntry{{ChunkFileURI: chunkFileURI}},
	}

	if len(updates) > 0 {
		mf.Operations = &Operations{Update: updates}
	}

	return mf
}

// Compress canonicalizes m and deflate-compresses the result: the wire form ParseMapFile accepts.
func (m *MapFile) Compress() ([]byte, error) {
	canonical, err := canonicalizer.MarshalCanonical(m)
	if err != nil {
		return nil, fmt.Errorf("canonicalize map file: %w", err)
	}

	var buf bytes.Buffer

	w, err := flate.NewWriter(&buf, flate.BestSpeed)
	if err != nil {
		return nil, fmt.Errorf("create map file compressor: %w", err)
	}

	if _, err := w.Write(canonical); err != nil {
		return nil, fmt.Errorf("compress map file: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close map file compressor: %w", err)
	}

	return buf.Bytes(), nil
}

// ParseMapFile decompresses and validates compressed, rejecting anything that does not match the
// property set {chunks, operations?} with each distinct violation carrying its own Code.
func ParseMapFile(compressed []byte) (*MapFile, error) {
	raw, err := decompress(compressed)
	if err != nil {
		return nil, err
	}

	if !gjson.ValidBytes(raw) {
		return nil, newError(CodeNotJSON, "map file content is not valid JSON")
	}

	top := gjson.ParseBytes(raw)

	if err := checkKnownProperties(top, []string{"chunks", "operations"}, CodeHasUnknownProperty,
		"map file"); err != nil {
		return nil, err
	}

	if err := validateChunksShape(top.Get("chunks")); err != nil {
		return nil, err
	}

	if operations := top.Get("operations"); operations.Exists() {
		if err := validateOperationsShape(operations); err != nil {
			return nil, err
		}
	}

	mf := &MapFile{}
	if err := json.Unmarshal(raw, mf); err != nil {
		return nil, newError(CodeNotJSON, "failed to unmarshal map file: "+err.Error())
	}

	if err := checkDuplicateDidSuffix(mf); err != nil {
		return nil, err
	}

	return mf, nil
}

func decompress(compressed []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close() //nolint:errcheck

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, newError(CodeDecompressionFailure, err.Error())
	}

	return raw, nil
}

func checkKnownProperties(value gjson.Result, allowed []string, code Code, what string) error {
	known := make(map[string]bool, len(allowed))
	for _, k := range allowed {
		known[k] = true
	}

	var violation error

	value.ForEach(func(key, _ gjson.Result) bool {
		if !known[key.String()] {
			violation = newError(code, fmt.Sprintf("%s has unknown property '%s'", what, key.String()))
			return false
		}

		return true
	})

	return violation
}

func validateChunksShape(chunks gjson.Result) error {
	if !chunks.IsArray() {
		return newError(CodeChunksNotArray, "chunks property is not an array")
	}

	entries := chunks.Array()
	if len(entries) != 1 {
		return newError(CodeChunksWrongLength,
			fmt.Sprintf("chunks property has %d elements, expected exactly 1", len(entries)))
	}

	entry := entries[0]
	if !entry.IsObject() {
		return newError(CodeChunkEntryWrongShape, "chunk entry is not an object")
	}

	if err := checkKnownProperties(entry, []string{"chunk_file_uri"}, CodeChunkEntryWrongShape,
		"chunk entry"); err != nil {
		return err
	}

	if uri := entry.Get("chunk_file_uri"); !uri.Exists() || uri.Type != gjson.String {
		return newError(CodeChunkEntryWrongShape, "chunk entry missing string chunk_file_uri")
	}

	return nil
}

func validateOperationsShape(operations gjson.Result) error {
	if !operations.IsObject() {
		return newError(CodeOperationsUnknownProp, "operations property is not an object")
	}

	if err := checkKnownProperties(operations, []string{"update"}, CodeOperationsUnknownProp,
		"operations"); err != nil {
		return err
	}

	update := operations.Get("update")
	if !update.Exists() || !update.IsArray() {
		return newError(CodeUpdateNotArray, "operations.update is not an array")
	}

	return nil
}

func checkDuplicateDidSuffix(mf *MapFile) error {
	if mf.Operations == nil {
		return nil
	}

	seen := make(map[string]bool, len(mf.Operations.Update))

	for _, u := range mf.Operations.Update {
		if seen[u.DidSuffix] {
			return newError(CodeMultipleOpsForSameDID,
				fmt.Sprintf("more than one update operation for did suffix '%s'", u.DidSuffix))
		}

		seen[u.DidSuffix] = true
	}

	return nil
}
