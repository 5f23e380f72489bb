/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package client

import (
	"errors"
	"fmt"

	"github.com/trustbloc/sidetree-resolver-core/api/operation"
	"github.com/trustbloc/sidetree-resolver-core/commitment"
	"github.com/trustbloc/sidetree-resolver-core/doc/json/canonicalizer"
	"github.com/trustbloc/sidetree-resolver-core/hashing"
	"github.com/trustbloc/sidetree-resolver-core/internal/signutil"
	"github.com/trustbloc/sidetree-resolver-core/jws"
	"github.com/trustbloc/sidetree-resolver-core/patch"
	"github.com/trustbloc/sidetree-resolver-core/versions/1_0/model"
)

// RecoverRequestInfo is the information required to build a recover request.
type RecoverRequestInfo struct {

	// DidSuffix is the suffix of the document to be recovered
	DidSuffix string

	// RecoveryKey is the current recovery public key
	RecoveryKey *jws.JWK

	// OpaqueDocument is opaque document content
	// required if Patches is not specified
	OpaqueDocument string

	// Patches are the document patches used to rebuild the document
	// required if OpaqueDocument is not specified
	Patches []patch.Patch

	// RecoveryCommitment is the commitment to be used for the next recovery
	RecoveryCommitment string

	// UpdateCommitment is the commitment to be used for the next update
	UpdateCommitment string

	// AnchorOrigin signifies the system(s) that know the most recent anchor for this DID (optional)
	AnchorOrigin interface{}

	// AnchorFrom defines the earliest time for this operation.
	AnchorFrom int64

	// AnchorUntil defines the expiry time for this operation.
	AnchorUntil int64

	// MultihashCode is the latest hashing algorithm supported by the protocol
	MultihashCode uint

	// Signer signs the recover signed-data model; must be the recovery key
	Signer Signer

	// RevealValue is the reveal value for RecoveryKey
	RevealValue string
}

// NewRecoverRequest builds the payload for a 'recover' request.
func NewRecoverRequest(info *RecoverRequestInfo) ([]byte, error) {
	if err := validateRecoverRequest(info); err != nil {
		return nil, err
	}

	patches, err := getPatches(info.OpaqueDocument, info.Patches)
	if err != nil {
		return nil, err
	}

	delta := &model.DeltaModel{
		UpdateCommitment: info.UpdateCommitment,
		Patches:          patches,
	}

	deltaHash, err := hashing.CalculateModelMultihash(delta, info.MultihashCode)
	if err != nil {
		return nil, err
	}

	signedDataModel := model.RecoverSignedDataModel{
		DeltaHash:          deltaHash,
		RecoveryKey:        info.RecoveryKey,
		RecoveryCommitment: info.RecoveryCommitment,
		AnchorOrigin:       info.AnchorOrigin,
		AnchorFrom:         info.AnchorFrom,
		AnchorUntil:        info.AnchorUntil,
	}

	if err := validateCommitment(info.RecoveryKey, info.MultihashCode, info.RecoveryCommitment); err != nil {
		return nil, err
	}

	signModel, err := signutil.SignModel(signedDataModel, info.Signer)
	if err != nil {
		return nil, err
	}

	schema := &model.RecoverRequest{
		Operation:   operation.TypeRecover,
		DidSuffix:   info.DidSuffix,
		RevealValue: info.RevealValue,
		Delta:       delta,
		SignedData:  signModel,
	}

	return canonicalizer.MarshalCanonical(schema)
}

func validateRecoverRequest(info *RecoverRequestInfo) error {
	if info.DidSuffix == "" {
		return errors.New("missing did unique suffix")
	}

	if info.RevealValue == "" {
		return errors.New("missing reveal value")
	}

	if info.OpaqueDocument == "" && len(info.Patches) == 0 {
		return errors.New("either opaque document or patches have to be supplied")
	}

	if info.OpaqueDocument != "" && len(info.Patches) > 0 {
		return errors.New("cannot provide both opaque document and patches")
	}

	if err := validateSigner(info.Signer); err != nil {
		return err
	}

	return validateRecoveryKey(info.RecoveryKey)
}

func validateRecoveryKey(key *jws.JWK) error {
	if key == nil {
		return errors.New("missing recovery key")
	}

	return key.Validate()
}

func validateCommitment(jwk *jws.JWK, multihashCode uint, nextCommitment string) error {
	currentCommitment, err := commitment.GetCommitment(jwk, multihashCode)
	if err != nil {
		return fmt.Errorf("calculate current commitment: %s", err.Error())
	}

	if currentCommitment == nextCommitment {
		return errors.New("re-using public keys for commitment is not allowed")
	}

	return nil
}
