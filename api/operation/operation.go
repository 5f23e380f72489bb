/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package operation defines the wire-level operation kinds and the anchored
// operation record that the resolver and operation store exchange.
package operation

// Type defines the type of operation.
type Type string

const (
	// TypeCreate captures "create" operation type.
	TypeCreate Type = "create"

	// TypeUpdate captures "update" operation type.
	TypeUpdate Type = "update"

	// TypeDeactivate captures "deactivate" operation type.
	TypeDeactivate Type = "deactivate"

	// TypeRecover captures "recover" operation type.
	TypeRecover Type = "recover"
)

// AnchoredOperation is the operation stored in the operation store and consumed by the resolver.
// The triple (TransactionTime, TransactionNumber, OperationIndex) is the anchor key: a total order
// that is the sole tiebreaker between operations that are otherwise indistinguishable (for example
// two operations that reveal the same commitment).
type AnchoredOperation struct {

	// Type is the operation type.
	Type Type `json:"type"`

	// UniqueSuffix is the DID suffix this operation targets (or establishes, for create).
	UniqueSuffix string `json:"uniqueSuffix"`

	// OperationRequest is the original operation request (raw wire bytes).
	OperationRequest []byte `json:"operationRequest,omitempty"`

	// SignedData is the compact JWS carried by update/recover/deactivate operations.
	SignedData string `json:"signedData,omitempty"`

	// RevealValue is the multihash reveal value declared by the operation.
	RevealValue string `json:"revealValue,omitempty"`

	// AnchorOrigin signifies the system(s) that know the most recent anchor for this DID.
	AnchorOrigin interface{} `json:"anchorOrigin,omitempty"`

	// CanonicalReference is the content reference (e.g. chunk/map file CID) this operation was anchored under.
	CanonicalReference string `json:"canonicalReference,omitempty"`

	// TransactionTime is part of the anchor key.
	TransactionTime uint64 `json:"transactionTime"`

	// TransactionNumber is part of the anchor key.
	TransactionNumber uint64 `json:"transactionNumber"`

	// OperationIndex is part of the anchor key: position of this operation within its transaction's batch.
	OperationIndex uint64 `json:"operationIndex"`
}

// Reference is a lightweight pointer to an operation, used by anchor writers that only
// need to record "an operation for this suffix happened" without the full payload.
type Reference struct {
	UniqueSuffix string
	Type         Type
}

// Less reports whether op sorts strictly before other under the anchor key
// (TransactionTime, TransactionNumber, OperationIndex).
func (op *AnchoredOperation) Less(other *AnchoredOperation) bool {
	if op.TransactionTime != other.TransactionTime {
		return op.TransactionTime < other.TransactionTime
	}

	if op.TransactionNumber != other.TransactionNumber {
		return op.TransactionNumber < other.TransactionNumber
	}

	return op.OperationIndex < other.OperationIndex
}
