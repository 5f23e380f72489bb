/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jws

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/ed25519"
)

// HeaderAlgorithm and HeaderKeyID are the only protected-header members §4.2 permits.
const (
	HeaderAlgorithm = "alg"
	HeaderKeyID     = "kid"
)

// Headers is a compact JWS protected header set.
type Headers map[string]interface{}

// Algorithm returns the "alg" header value.
func (h Headers) Algorithm() (string, bool) {
	v, ok := h[HeaderAlgorithm]
	if !ok {
		return "", false
	}

	s, ok := v.(string)

	return s, ok
}

// KeyID returns the "kid" header value, if present.
func (h Headers) KeyID() (string, bool) {
	v, ok := h[HeaderKeyID]
	if !ok {
		return "", false
	}

	s, ok := v.(string)

	return s, ok
}

// JSONWebSignature is a parsed compact JWS: protected headers, raw payload bytes, and the
// signature, kept around so the caller can re-verify against a specific key.
type JSONWebSignature struct {
	ProtectedHeaders Headers
	Payload          []byte

	protected []byte
	signature []byte
	alg       string
}

// ParseJWS parses (but does not verify) a compact JWS of the form header.payload.signature.
func ParseJWS(compactJWS string) (*JSONWebSignature, error) {
	parts := strings.Split(compactJWS, ".")
	if len(parts) != 3 {
		return nil, errors.New("invalid compact JWS: expected 3 parts")
	}

	protected, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid compact JWS protected header: %w", err)
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid compact JWS payload: %w", err)
	}

	signature, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("invalid compact JWS signature: %w", err)
	}

	headers, err := unmarshalHeaders(protected)
	if err != nil {
		return nil, err
	}

	alg, _ := headers.Algorithm() //nolint:errcheck

	return &JSONWebSignature{
		ProtectedHeaders: headers,
		Payload:          payload,
		protected:        []byte(parts[0]),
		signature:        signature,
		alg:              alg,
	}, nil
}

// Verify verifies the JWS signing input (protectedHeader.payload) against jwk using the
// algorithm declared in the protected header.
func (s *JSONWebSignature) Verify(jwk *JWK) error {
	signingInput := append(append([]byte{}, s.protected...), '.')
	signingInput = append(signingInput, base64.RawURLEncoding.EncodeToString(s.Payload)...)

	pubKeyBytes, err := jwk.PublicKeyBytes()
	if err != nil {
		return fmt.Errorf("failed to read public key for verification: %w", err)
	}

	switch {
	case strings.HasPrefix(s.alg, "ES"):
		return verifyECDSA(jwk, pubKeyBytes, signingInput, s.signature)
	case s.alg == "EdDSA":
		return verifyEdDSA(pubKeyBytes, signingInput, s.signature)
	default:
		return fmt.Errorf("unsupported signature algorithm: %s", s.alg)
	}
}

func verifyEdDSA(pubKeyBytes, signingInput, signature []byte) error {
	if len(pubKeyBytes) != ed25519.PublicKeySize {
		pk, err := parsePKIXEd25519(pubKeyBytes)
		if err != nil {
			return err
		}

		pubKeyBytes = pk
	}

	if !ed25519.Verify(pubKeyBytes, signingInput, signature) {
		return errors.New("ed25519: invalid signature")
	}

	return nil
}

func verifyECDSA(jwk *JWK, pubKeyBytes, signingInput, signature []byte) error {
	var pubKey *ecdsa.PublicKey

	switch k := jwk.Key.(type) {
	case *ecdsa.PublicKey:
		pubKey = k
	case *ecdsa.PrivateKey:
		pubKey = &k.PublicKey
	default:
		return errors.New("ecdsa: unsupported key type for verification")
	}

	curveByteSize := (pubKey.Curve.Params().BitSize + 7) / 8
	if len(signature) != 2*curveByteSize {
		return errors.New("ecdsa: invalid signature length")
	}

	r := new(big.Int).SetBytes(signature[:curveByteSize])
	svalue := new(big.Int).SetBytes(signature[curveByteSize:])

	hash := sha256.Sum256(signingInput)

	if !ecdsa.Verify(pubKey, hash[:], r, svalue) {
		return errors.New("ecdsa: invalid signature")
	}

	_ = pubKeyBytes

	return nil
}

func unmarshalHeaders(protected []byte) (Headers, error) {
	headers, err := unmarshalJSONObject(protected)
	if err != nil {
		return nil, fmt.Errorf("invalid compact JWS protected header: %w", err)
	}

	return headers, nil
}
