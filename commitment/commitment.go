/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package commitment implements the commit-reveal scheme of spec §3: a
// commitment is the multihash of a reveal value, and a reveal value is itself
// the multihash of the canonicalized public key JWK. Revealing the key
// directly would let anyone derive the *next* commitment in advance from a
// still-unused key; the double hash keeps the key secret until it is
// actually used to reveal the current commitment.
package commitment

import (
	"github.com/trustbloc/sidetree-resolver-core/hashing"
	"github.com/trustbloc/sidetree-resolver-core/jws"
)

// GetRevealValue returns multihash(canonicalize(jwk)) - the value later carried in RevealValue.
func GetRevealValue(jwk *jws.JWK, multihashCode uint) (string, error) {
	return hashing.CalculateModelMultihash(jwk, multihashCode)
}

// GetCommitment returns multihash(canonicalize(reveal_value)) - the value published as the next
// commitment.
func GetCommitment(jwk *jws.JWK, multihashCode uint) (string, error) {
	rv, err := GetRevealValue(jwk, multihashCode)
	if err != nil {
		return "", err
	}

	return hashing.CalculateModelMultihash(rv, multihashCode)
}

// GetCommitmentFromRevealValue returns multihash(canonicalize(revealValue)), using the same
// multihash algorithm revealValue itself was computed with. This lets an operation applier check
// a revealed value against a previously stored commitment without needing the JWK that produced
// it.
func GetCommitmentFromRevealValue(revealValue string) (string, error) {
	code, err := hashing.GetMultihashCode(revealValue)
	if err != nil {
		return "", err
	}

	return hashing.CalculateModelMultihash(revealValue, uint(code))
}
