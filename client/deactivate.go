/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package client

import (
	"errors"
	"fmt"

	"github.com/trustbloc/sidetree-resolver-core/api/operation"
	"github.com/trustbloc/sidetree-resolver-core/doc/json/canonicalizer"
	"github.com/trustbloc/sidetree-resolver-core/internal/signutil"
	"github.com/trustbloc/sidetree-resolver-core/jws"
	"github.com/trustbloc/sidetree-resolver-core/versions/1_0/model"
)

// Signer signs the subset of request data that must be authenticated with a JWS.
type Signer interface {
	// Sign signs data and returns the signature value.
	Sign(data []byte) ([]byte, error)

	// Headers returns the required JWS protected headers: signing key id and algorithm.
	Headers() jws.Headers
}

// DeactivateRequestInfo is the information required to build a deactivate request.
type DeactivateRequestInfo struct {

	// DidSuffix is the suffix of the document to be deactivated
	DidSuffix string

	// RecoveryKey is the current recovery key
	RecoveryKey *jws.JWK

	// Signer signs the deactivate signed-data model; must be the recovery key
	Signer Signer

	// RevealValue is the reveal value for RecoveryKey
	RevealValue string

	// AnchorFrom defines the earliest time for this operation.
	AnchorFrom int64

	// AnchorUntil defines the expiry time for this operation.
	AnchorUntil int64
}

// NewDeactivateRequest builds the payload for a 'deactivate' request.
func NewDeactivateRequest(info *DeactivateRequestInfo) ([]byte, error) {
	if err := validateDeactivateRequest(info); err != nil {
		return nil, err
	}

	signedDataModel := model.DeactivateSignedDataModel{
		DidSuffix:   info.DidSuffix,
		RecoveryKey: info.RecoveryKey,
		AnchorFrom:  info.AnchorFrom,
		AnchorUntil: info.AnchorUntil,
	}

	signModel, err := signutil.SignModel(signedDataModel, info.Signer)
	if err != nil {
		return nil, err
	}

	schema := &model.DeactivateRequest{
		Operation:   operation.TypeDeactivate,
		DidSuffix:   info.DidSuffix,
		RevealValue: info.RevealValue,
		SignedData:  signModel,
	}

	return canonicalizer.MarshalCanonical(schema)
}

func validateDeactivateRequest(info *DeactivateRequestInfo) error {
	if info.DidSuffix == "" {
		return errors.New("missing did unique suffix")
	}

	if info.RevealValue == "" {
		return errors.New("missing reveal value")
	}

	return validateSigner(info.Signer)
}

func validateSigner(signer Signer) error {
	if signer == nil {
		return errors.New("missing signer")
	}

	if signer.Headers() == nil {
		return errors.New("missing protected headers")
	}

	alg, ok := signer.Headers().Algorithm()
	if !ok || alg == "" {
		return errors.New("algorithm must be present in the protected header")
	}

	allowedHeaders := map[string]bool{
		jws.HeaderAlgorithm: true,
		jws.HeaderKeyID:     true,
	}

	for h := range signer.Headers() {
		if !allowedHeaders[h] {
			return fmt.Errorf("header '%s' is not allowed in the protected headers", h)
		}
	}

	return nil
}
