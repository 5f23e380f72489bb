/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package model

import (
	"github.com/trustbloc/sidetree-resolver-core/api/operation"
	"github.com/trustbloc/sidetree-resolver-core/jws"
	"github.com/trustbloc/sidetree-resolver-core/patch"
)

// CreateRequest is the struct for create payload JCS.
type CreateRequest struct {
	// Operation is the request type, always "create"
	Operation operation.Type `json:"type,omitempty"`

	// SuffixData is part of create request
	// Required: true
	SuffixData *SuffixDataModel `json:"suffixData,omitempty"`

	// Delta object
	// Required: true
	Delta *DeltaModel `json:"delta,omitempty"`
}

// SuffixDataModel is part of create request.
type SuffixDataModel struct {

	// DeltaHash is the hash of the delta object (required)
	DeltaHash string `json:"deltaHash,omitempty"`

	// RecoveryCommitment is the commitment hash for the next recovery or deactivate operation (required)
	RecoveryCommitment string `json:"recoveryCommitment,omitempty"`

	// AnchorOrigin signifies the system(s) that know the most recent anchor for this DID (optional)
	AnchorOrigin interface{} `json:"anchorOrigin,omitempty"`

	// Type signifies the type of entity a DID represents (optional)
	Type string `json:"type,omitempty"`
}

// DeltaModel contains patch data used for create, recover and update operations.
type DeltaModel struct {

	// UpdateCommitment is the commitment hash for the next update operation
	UpdateCommitment string `json:"updateCommitment,omitempty"`

	// Patches defines document patches
	Patches []patch.Patch `json:"patches,omitempty"`
}

// UpdateRequest is the struct for update request.
type UpdateRequest struct {
	// Operation defines operation type
	Operation operation.Type `json:"type"`

	// DidSuffix is the suffix of the DID
	DidSuffix string `json:"didSuffix"`

	// RevealValue is the reveal value
	RevealValue string `json:"revealValue"`

	// SignedData is compact JWS signature information
	SignedData string `json:"signedData"`

	// Delta is the encoded delta object
	Delta *DeltaModel `json:"delta"`
}

// DeactivateRequest is the struct for deactivating a document.
type DeactivateRequest struct {
	// Operation defines operation type
	// Required: true
	Operation operation.Type `json:"type"`

	// DidSuffix of the DID
	// Required: true
	DidSuffix string `json:"didSuffix"`

	// RevealValue is the reveal value
	RevealValue string `json:"revealValue"`

	// SignedData is compact JWS signature information
	SignedData string `json:"signedData"`
}

// RecoverRequest is the struct for the document recovery payload.
type RecoverRequest struct {
	// Operation defines operation type
	// Required: true
	Operation operation.Type `json:"type"`

	// DidSuffix is the suffix of the DID
	// Required: true
	DidSuffix string `json:"didSuffix"`

	// RevealValue is the reveal value
	RevealValue string `json:"revealValue"`

	// SignedData is compact JWS signature information
	SignedData string `json:"signedData"`

	// Delta object
	// Required: true
	Delta *DeltaModel `json:"delta"`
}

// UpdateSignedDataModel defines the signed data model for update.
type UpdateSignedDataModel struct {
	// UpdateKey is the current update key
	UpdateKey *jws.JWK `json:"updateKey"`

	// DeltaHash is the hash of the unsigned delta object
	DeltaHash string `json:"deltaHash"`

	// AnchorFrom defines earliest time for this operation.
	AnchorFrom int64 `json:"anchorFrom,omitempty"`

	// AnchorUntil defines expiry time for this operation.
	AnchorUntil int64 `json:"anchorUntil,omitempty"`
}

// RecoverSignedDataModel defines the signed data model for recovery.
type RecoverSignedDataModel struct {

	// DeltaHash is the hash of the unsigned delta object
	DeltaHash string `json:"deltaHash"`

	// RecoveryKey is the current recovery key
	RecoveryKey *jws.JWK `json:"recoveryKey"`

	// RecoveryCommitment is the commitment used for the next recovery/deactivate
	RecoveryCommitment string `json:"recoveryCommitment"`

	// AnchorOrigin signifies the system(s) that know the most recent anchor for this DID (optional)
	AnchorOrigin interface{} `json:"anchorOrigin,omitempty"`

	// AnchorFrom defines earliest time for this operation.
	AnchorFrom int64 `json:"anchorFrom,omitempty"`

	// AnchorUntil defines expiry time for this operation.
	AnchorUntil int64 `json:"anchorUntil,omitempty"`
}

// DeactivateSignedDataModel defines the signed data model for deactivate.
type DeactivateSignedDataModel struct {

	// DidSuffix is the suffix of the DID
	// Required: true
	DidSuffix string `json:"didSuffix"`

	// RecoveryKey is the current recovery key
	RecoveryKey *jws.JWK `json:"recoveryKey"`

	// AnchorFrom defines earliest time for this operation.
	AnchorFrom int64 `json:"anchorFrom,omitempty"`

	// AnchorUntil defines expiry time for this operation.
	AnchorUntil int64 `json:"anchorUntil,omitempty"`
}
