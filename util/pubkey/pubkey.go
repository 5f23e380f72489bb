/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package pubkey converts Go standard-library public keys into the JWK
// representation the protocol hashes for commitments and reveal values.
package pubkey

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"fmt"

	"github.com/square/go-jose/v3"

	"github.com/trustbloc/sidetree-resolver-core/jws"
)

// GetPublicKeyJWK converts a public key into its JWK representation.
func GetPublicKeyJWK(pubKey interface{}) (*jws.JWK, error) {
	switch key := pubKey.(type) {
	case *ecdsa.PublicKey:
		return &jws.JWK{
			JSONWebKey: jose.JSONWebKey{Key: key},
			Kty:        "EC",
			Crv:        key.Curve.Params().Name,
		}, nil
	case ed25519.PublicKey:
		return &jws.JWK{
			JSONWebKey: jose.JSONWebKey{Key: key},
			Kty:        "OKP",
			Crv:        "Ed25519",
		}, nil
	default:
		return nil, fmt.Errorf("unsupported public key type: %T", pubKey)
	}
}
