/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package client

import (
	"errors"

	"github.com/trustbloc/sidetree-resolver-core/api/operation"
	"github.com/trustbloc/sidetree-resolver-core/doc/json/canonicalizer"
	"github.com/trustbloc/sidetree-resolver-core/hashing"
	"github.com/trustbloc/sidetree-resolver-core/internal/signutil"
	"github.com/trustbloc/sidetree-resolver-core/jws"
	"github.com/trustbloc/sidetree-resolver-core/patch"
	"github.com/trustbloc/sidetree-resolver-core/versions/1_0/model"
)

// UpdateRequestInfo is the information required to build an update request.
type UpdateRequestInfo struct {

	// DidSuffix is the suffix of the document to be updated
	DidSuffix string

	// Patches is the set of patch actions to apply
	Patches []patch.Patch

	// UpdateCommitment is the commitment to be used for the next update
	UpdateCommitment string

	// UpdateKey is the update key used for this update
	UpdateKey *jws.JWK

	// MultihashCode is the latest hashing algorithm supported by the protocol
	MultihashCode uint

	// Signer signs the update signed-data model
	Signer Signer

	// RevealValue is the reveal value for UpdateKey
	RevealValue string

	// AnchorFrom defines the earliest time for this operation.
	AnchorFrom int64

	// AnchorUntil defines the expiry time for this operation.
	AnchorUntil int64
}

// NewUpdateRequest builds the payload for an 'update' request.
func NewUpdateRequest(info *UpdateRequestInfo) ([]byte, error) {
	if err := validateUpdateRequest(info); err != nil {
		return nil, err
	}

	delta := &model.DeltaModel{
		UpdateCommitment: info.UpdateCommitment,
		Patches:          info.Patches,
	}

	deltaHash, err := hashing.CalculateModelMultihash(delta, info.MultihashCode)
	if err != nil {
		return nil, err
	}

	signedDataModel := &model.UpdateSignedDataModel{
		DeltaHash:   deltaHash,
		UpdateKey:   info.UpdateKey,
		AnchorFrom:  info.AnchorFrom,
		AnchorUntil: info.AnchorUntil,
	}

	if err := validateCommitment(info.UpdateKey, info.MultihashCode, info.UpdateCommitment); err != nil {
		return nil, err
	}

	signModel, err := signutil.SignModel(signedDataModel, info.Signer)
	if err != nil {
		return nil, err
	}

	schema := &model.UpdateRequest{
		Operation:   operation.TypeUpdate,
		DidSuffix:   info.DidSuffix,
		RevealValue: info.RevealValue,
		Delta:       delta,
		SignedData:  signModel,
	}

	return canonicalizer.MarshalCanonical(schema)
}

func validateUpdateRequest(info *UpdateRequestInfo) error {
	if info.DidSuffix == "" {
		return errors.New("missing did unique suffix")
	}

	if info.RevealValue == "" {
		return errors.New("missing reveal value")
	}

	if len(info.Patches) == 0 {
		return errors.New("missing update information")
	}

	if err := validateUpdateKey(info.UpdateKey); err != nil {
		return err
	}

	return validateSigner(info.Signer)
}

func validateUpdateKey(key *jws.JWK) error {
	if key == nil {
		return errors.New("missing update key")
	}

	return key.Validate()
}
