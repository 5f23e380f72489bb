/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package models

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/require"
)

func TestMapFile_RoundTrip(t *testing.T) {
	mf := NewMapFile("chunk-file-cid", []UpdateReference{
		{DidSuffix: "suffix-one", SignedData: "signed-data-one"},
		{DidSuffix: "suffix-two", SignedData: "signed-data-two"},
	})

	compressed, err := mf.Compress()
	require.NoError(t, err)

	parsed, err := ParseMapFile(compressed)
	require.NoError(t, err)

	require.Equal(t, mf.Chunks, parsed.Chunks)
	require.NotNil(t, parsed.Operations)
	require.Equal(t, mf.Operations.Update, parsed.Operations.Update)
}

func TestMapFile_RoundTrip_NoOperations(t *testing.T) {
	mf := NewMapFile("chunk-file-cid", nil)

	compressed, err := mf.Compress()
	require.NoError(t, err)

	parsed, err := ParseMapFile(compressed)
	require.NoError(t, err)

	require.Equal(t, mf.Chunks, parsed.Chunks)
	require.Nil(t, parsed.Operations)
}

// TestMapFile_DuplicateDidSuffix covers scenario S6: a map file carrying two update skeletons for
// the same did_suffix is rejected, not silently deduplicated.
func TestMapFile_DuplicateDidSuffix(t *testing.T) {
	mf := NewMapFile("chunk-file-cid", []UpdateReference{
		{DidSuffix: "same-suffix", SignedData: "signed-data-one"},
		{DidSuffix: "same-suffix", SignedData: "signed-data-two"},
	})

	compressed, err := mf.Compress()
	require.NoError(t, err)

	_, err = ParseMapFile(compressed)
	require.Error(t, err)

	var mfErr *Error
	require.ErrorAs(t, err, &mfErr)
	require.Equal(t, CodeMultipleOpsForSameDID, mfErr.Code)
}

func TestParseMapFile_NotCompressed(t *testing.T) {
	_, err := ParseMapFile([]byte("not deflate compressed data"))
	require.Error(t, err)

	var mfErr *Error
	require.ErrorAs(t, err, &mfErr)
	require.Equal(t, CodeDecompressionFailure, mfErr.Code)
}

func TestParseMapFile_UnknownTopLevelProperty(t *testing.T) {
	compressed := compressRaw(t, `{"chunks":[{"chunk_file_uri":"cid"}],"unexpected":true}`)

	_, err := ParseMapFile(compressed)
	require.Error(t, err)

	var mfErr *Error
	require.ErrorAs(t, err, &mfErr)
	require.Equal(t, CodeHasUnknownProperty, mfErr.Code)
}

func TestParseMapFile_ChunksWrongLength(t *testing.T) {
	compressed := compressRaw(t, `{"chunks":[]}`)

	_, err := ParseMapFile(compressed)
	require.Error(t, err)

	var mfErr *Error
	require.ErrorAs(t, err, &mfErr)
	require.Equal(t, CodeChunksWrongLength, mfErr.Code)
}

func TestParseMapFile_UpdateNotArray(t *testing.T) {
	compressed := compressRaw(t, `{"chunks":[{"chunk_file_uri":"cid"}],"operations":{"update":"not-an-array"}}`)

	_, err := ParseMapFile(compressed)
	require.Error(t, err)

	var mfErr *Error
	require.ErrorAs(t, err, &mfErr)
	require.Equal(t, CodeUpdateNotArray, mfErr.Code)
}

// compressRaw deflate-compresses an arbitrary JSON string, bypassing MapFile/Compress, so shapes
// MapFile itself could never marshal can still be fed straight into ParseMapFile.
func compressRaw(t *testing.T, raw string) []byte {
	t.Helper()

	var buf bytes.Buffer

	w, err := flate.NewWriter(&buf, flate.BestSpeed)
	require.NoError(t, err)

	_, err = w.Write([]byte(raw))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return buf.Bytes()
}
