/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package signutil produces the compact JWS carried in an operation's
// SignedData field: protected-header.payload.signature, where payload is the
// canonicalized signed-data model and the signature comes from the caller's
// Signer.
package signutil

import (
	"encoding/base64"
	"errors"

	"github.com/trustbloc/sidetree-resolver-core/doc/json/canonicalizer"
	"github.com/trustbloc/sidetree-resolver-core/jws"
)

// Signer signs data and describes the protected headers to use.
type Signer interface {
	Sign(data []byte) ([]byte, error)
	Headers() jws.Headers
}

// SignModel canonicalizes model, signs it with signer, and returns the resulting compact JWS.
func SignModel(model interface{}, signer Signer) (string, error) {
	if signer == nil {
		return "", errors.New("signer is required")
	}

	headers := signer.Headers()
	if headers == nil {
		return "", errors.New("signer headers are required")
	}

	protected, err := canonicalizer.MarshalCanonical(headers)
	if err != nil {
		return "", err
	}

	payload, err := canonicalizer.MarshalCanonical(model)
	if err != nil {
		return "", err
	}

	protectedB64 := base64.RawURLEncoding.EncodeToString(protected)
	payloadB64 := base64.RawURLEncoding.EncodeToString(payload)

	signingInput := protectedB64 + "." + payloadB64

	signature, err := signer.Sign([]byte(signingInput))
	if err != nil {
		return "", err
	}

	return signingInput + "." + base64.RawURLEncoding.EncodeToString(signature), nil
}
