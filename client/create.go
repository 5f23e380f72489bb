/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package client builds the JCS-canonicalized operation request payloads a
// caller submits to an anchoring system: create, update, recover, and
// deactivate.
package client

import (
	"errors"
	"fmt"

	"github.com/multiformats/go-multihash"

	"github.com/trustbloc/sidetree-resolver-core/api/operation"
	"github.com/trustbloc/sidetree-resolver-core/doc/json/canonicalizer"
	"github.com/trustbloc/sidetree-resolver-core/hashing"
	"github.com/trustbloc/sidetree-resolver-core/patch"
	"github.com/trustbloc/sidetree-resolver-core/versions/1_0/model"
)

// CreateRequestInfo contains the data needed to build a create payload.
type CreateRequestInfo struct {

	// OpaqueDocument is opaque document content
	// required if Patches is not specified
	OpaqueDocument string

	// Patches are the document patches used to create the initial document
	// required if OpaqueDocument is not specified
	Patches []patch.Patch

	// RecoveryCommitment is the recovery commitment
	// required
	RecoveryCommitment string

	// UpdateCommitment is the update commitment
	// required
	UpdateCommitment string

	// AnchorOrigin signifies the system(s) that know the most recent anchor for this DID (optional)
	AnchorOrigin interface{}

	// Type signifies the type of entity a DID represents (optional)
	Type string

	// MultihashCode is the latest hashing algorithm supported by the protocol
	MultihashCode uint
}

// NewCreateRequest builds the payload for a 'create' request.
func NewCreateRequest(info *CreateRequestInfo) ([]byte, error) {
	if err := validateCreateRequest(info); err != nil {
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

	suffixData := &model.SuffixDataModel{
		DeltaHash:          deltaHash,
		RecoveryCommitment: info.RecoveryCommitment,
		AnchorOrigin:       info.AnchorOrigin,
		Type:               info.Type,
	}

	schema := &model.CreateRequest{
		Operation:  operation.TypeCreate,
		Delta:      delta,
		SuffixData: suffixData,
	}

	return canonicalizer.MarshalCanonical(schema)
}

func getPatches(opaque string, patches []patch.Patch) ([]patch.Patch, error) {
	if opaque != "" {
		return patch.PatchesFromDocument(opaque)
	}

	return patches, nil
}

func validateCreateRequest(info *CreateRequestInfo) error {
	if info.OpaqueDocument == "" && len(info.Patches) == 0 {
		return errors.New("either opaque document or patches have to be supplied")
	}

	if info.OpaqueDocument != "" && len(info.Patches) > 0 {
		return errors.New("cannot provide both opaque document and patches")
	}

	if !multihash.ValidCode(uint64(info.MultihashCode)) {
		return fmt.Errorf("multihash[%d] not supported", info.MultihashCode)
	}

	if !hashing.IsComputedUsingMultihashAlgorithms(info.RecoveryCommitment, []uint{info.MultihashCode}) {
		return errors.New("next recovery commitment is not computed with the specified hash algorithm")
	}

	if !hashing.IsComputedUsingMultihashAlgorithms(info.UpdateCommitment, []uint{info.MultihashCode}) {
		return errors.New("next update commitment is not computed with the specified hash algorithm")
	}

	if info.RecoveryCommitment == info.UpdateCommitment {
		return errors.New("recovery and update commitments cannot be equal, re-using public keys is not allowed")
	}

	return nil
}
