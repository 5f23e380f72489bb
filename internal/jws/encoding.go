/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jws

import (
	"crypto/x509"
	"encoding/json"
	"errors"

	"golang.org/x/crypto/ed25519"
)

func unmarshalJSONObject(raw []byte) (Headers, error) {
	var m map[string]interface{}

	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}

	return Headers(m), nil
}

func parsePKIXEd25519(der []byte) (ed25519.PublicKey, error) {
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, err
	}

	key, ok := pub.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("ed25519: not an Ed25519 public key")
	}

	return key, nil
}
