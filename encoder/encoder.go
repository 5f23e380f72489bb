/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package encoder implements the canonical Sidetree string encoding: unpadded base64url.
package encoder

import "encoding/base64"

// EncodeToString encodes data as unpadded base64url, the encoding used for every
// commitment/reveal string and CID in the protocol.
func EncodeToString(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeString decodes an unpadded base64url string.
func DecodeString(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}
