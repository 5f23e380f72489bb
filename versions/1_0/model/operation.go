/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package model holds the wire-level request/operation shapes of protocol
// version 1.0: the JSON bodies accepted from a client and the parsed form an
// operationparser produces from them.
package model

import (
	"github.com/trustbloc/sidetree-resolver-core/api/operation"
)

// Operation is the parsed form of an operation request, before anchoring.
type Operation struct {

	// Type defines operation type
	Type operation.Type

	// UniqueSuffix is the unique suffix of the DID this operation applies to
	UniqueSuffix string

	// OperationRequest is the original operation request
	OperationRequest []byte

	// SignedData is signed data for the operation (compact JWS)
	SignedData string

	// RevealValue is multihash of the JWK revealed by this operation
	RevealValue string

	// Delta is the operation delta model
	Delta *DeltaModel

	// SuffixData is the suffix data model, present only on create operations
	SuffixData *SuffixDataModel

	// AnchorOrigin is the anchor origin carried by create and recover operations
	AnchorOrigin interface{}
}

// GetAnchoredOperation copies the scalar fields of a parsed operation into an
// AnchoredOperation. The caller fills in the anchor key (TransactionTime,
// TransactionNumber, OperationIndex) and CanonicalReference once the operation
// has actually been anchored; until then those fields are zero.
func GetAnchoredOperation(op *Operation) (*operation.AnchoredOperation, error) {
	return &operation.AnchoredOperation{
		Type:             op.Type,
		UniqueSuffix:     op.UniqueSuffix,
		OperationRequest: op.OperationRequest,
		SignedData:       op.SignedData,
		RevealValue:      op.RevealValue,
		AnchorOrigin:     op.AnchorOrigin,
	}, nil
}
