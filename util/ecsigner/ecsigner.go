/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ecsigner implements client.Signer over an ECDSA private key, for building
// test fixtures and request-builder callers that sign with a plain P-256/secp256k1 key.
package ecsigner

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"math/big"

	"github.com/trustbloc/sidetree-resolver-core/jws"
)

// Signer signs data with an ECDSA private key using the given JWS algorithm and key id.
type Signer struct {
	key *ecdsa.PrivateKey
	alg string
	kid string
}

// New creates a new ECDSA signer.
func New(key *ecdsa.PrivateKey, alg, kid string) *Signer {
	return &Signer{key: key, alg: alg, kid: kid}
}

// Headers returns the compact JWS protected headers this signer produces.
func (s *Signer) Headers() jws.Headers {
	h := jws.Headers{jws.HeaderAlgorithm: s.alg}

	if s.kid != "" {
		h[jws.HeaderKeyID] = s.kid
	}

	return h
}

// Sign signs the signing input and returns the raw (r || s) signature bytes.
func (s *Signer) Sign(data []byte) ([]byte, error) {
	hash := sha256.Sum256(data)

	r, sVal, err := ecdsa.Sign(rand.Reader, s.key, hash[:])
	if err != nil {
		return nil, err
	}

	curveByteSize := (s.key.Curve.Params().BitSize + 7) / 8

	return append(toFixedSize(r, curveByteSize), toFixedSize(sVal, curveByteSize)...), nil
}

func toFixedSize(v *big.Int, size int) []byte {
	b := v.Bytes()
	if len(b) >= size {
		return b[len(b)-size:]
	}

	out := make([]byte, size)
	copy(out[size-len(b):], b)

	return out
}
