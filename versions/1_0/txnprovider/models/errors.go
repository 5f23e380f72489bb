/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package models

// Code is a machine-readable map file rejection reason (§6, §7): callers switch on Code, not on
// the error text, which is free to change.
type Code string

// The fixed enumeration of map file rejection codes.
const (
	CodeDecompressionFailure     Code = "MapFileDecompressionFailure"
	CodeNotJSON                  Code = "MapFileNotJSON"
	CodeHasUnknownProperty       Code = "MapFileHasUnknownProperty"
	CodeChunksNotArray           Code = "MapFileChunksPropertyNotAnArray"
	CodeChunksWrongLength        Code = "MapFileChunksPropertyDoesNotHaveExactlyOneElement"
	CodeChunkEntryWrongShape     Code = "MapFileChunkEntryWrongShape"
	CodeOperationsUnknownProp    Code = "MapFileOperationsHasUnknownProperty"
	CodeUpdateNotArray           Code = "MapFileUpdateOperationsNotAnArray"
	CodeMultipleOpsForSameDID    Code = "MapFileMultipleOperationsForTheSameDid"
)

// Error is the typed rejection a map file operation returns. Only Code is part of the public
// surface; Msg is context for logs.
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Msg
}

func newError(code Code, msg string) error {
	return &Error{Code: code, Msg: msg}
}
