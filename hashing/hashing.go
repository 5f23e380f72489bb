/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package hashing implements multihash (§4.1): computing a self-describing
// hash over the canonical JSON form of a value, and validating that a
// reveal value's hash matches a previously committed multihash string.
package hashing

import (
	"fmt"

	mh "github.com/multiformats/go-multihash"

	"github.com/trustbloc/sidetree-resolver-core/doc/json/canonicalizer"
	"github.com/trustbloc/sidetree-resolver-core/encoder"
)

// defaultHashSize is used for every supported multihash code: -1 selects the algorithm's own
// default digest length (32 bytes for SHA2-256, 64 bytes for SHA2-512).
const defaultHashSize = -1

// CalculateModelMultihash canonicalizes model, hashes it with the given multihash code, and returns
// the base64url-encoded multihash string. This implements §4.1's
// canonicalize_then_hash_then_encode for the commitment/reveal strings the protocol compares.
func CalculateModelMultihash(model interface{}, multihashCode uint) (string, error) {
	canonical, err := canonicalizer.MarshalCanonical(model)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize model: %w", err)
	}

	return ComputeMultihash(canonical, multihashCode)
}

// ComputeMultihash hashes data with the given multihash code and returns the base64url-encoded
// multihash bytes (algorithm code || length || digest).
func ComputeMultihash(data []byte, multihashCode uint) (string, error) {
	digest, err := mh.Sum(data, int(multihashCode), defaultHashSize)
	if err != nil {
		return "", fmt.Errorf("failed to compute multihash: %w", err)
	}

	return encoder.EncodeToString(digest), nil
}

// IsValidModelMultihash checks that canonicalize_then_hash_then_encode(model) equals encodedMultihash.
func IsValidModelMultihash(model interface{}, encodedMultihash string) error {
	canonical, err := canonicalizer.MarshalCanonical(model)
	if err != nil {
		return fmt.Errorf("failed to canonicalize model: %w", err)
	}

	return IsValidHash(canonical, encodedMultihash)
}

// IsValidHash checks that multihash(content) equals encodedMultihash, using the multihash
// algorithm declared by encodedMultihash's own code (so callers do not need to know in advance
// which algorithm produced it).
func IsValidHash(content []byte, encodedMultihash string) error {
	code, err := GetMultihashCode(encodedMultihash)
	if err != nil {
		return err
	}

	computed, err := ComputeMultihash(content, uint(code))
	if err != nil {
		return err
	}

	if computed != encodedMultihash {
		return fmt.Errorf("hash of content doesn't match the hash value, expected: %s, actual: %s",
			encodedMultihash, computed)
	}

	return nil
}

// GetMultihashCode decodes an encoded multihash string and returns its algorithm code.
func GetMultihashCode(encodedMultihash string) (uint64, error) {
	decoded, err := encoder.DecodeString(encodedMultihash)
	if err != nil {
		return 0, fmt.Errorf("failed to decode multihash string: %w", err)
	}

	info, err := mh.Decode(decoded)
	if err != nil {
		return 0, fmt.Errorf("failed to decode multihash: %w", err)
	}

	return uint64(info.Code), nil
}

// IsComputedUsingMultihashAlgorithms checks that encodedMultihash was produced with one of the
// given multihash codes.
func IsComputedUsingMultihashAlgorithms(encodedMultihash string, codes []uint) bool {
	code, err := GetMultihashCode(encodedMultihash)
	if err != nil {
		return false
	}

	for _, c := range codes {
		if uint64(c) == code {
			return true
		}
	}

	return false
}
