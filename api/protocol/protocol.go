/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package protocol defines the per-height protocol parameters and the
// collaborator interfaces (parser, applier, composer) that the version
// manager resolves for a given transaction time. The version manager itself
// is an external collaborator (see Client below); this package only defines
// what it hands back.
package protocol

import (
	"github.com/trustbloc/sidetree-resolver-core/api/operation"
	"github.com/trustbloc/sidetree-resolver-core/document"
	"github.com/trustbloc/sidetree-resolver-core/patch"
)

// Protocol defines the parameters that can change between versions of the protocol.
type Protocol struct {
	// GenesisTime is the inclusive lower bound of the transaction time that this protocol version applies to.
	GenesisTime uint64

	// MultihashAlgorithms are multihash codes allowed for commitments, in preference order; index 0 is
	// the algorithm used to compute new commitments under this protocol version.
	MultihashAlgorithms []uint

	// MaxOperationSize is the maximum size (bytes) of an operation request.
	MaxOperationSize uint

	// MaxOperationHashLength is the maximum length of a multihash-encoded commitment/reveal value.
	MaxOperationHashLength uint

	// NonceSize is the expected decoded length of a JWK nonce, in bytes.
	NonceSize uint

	// MaxDeltaSize is the maximum size (bytes) of a canonicalized delta. It also bounds anchor-until
	// relative to anchor-from when anchor-until is not supplied.
	MaxDeltaSize uint

	// SignatureAlgorithms lists JWS "alg" values accepted for signed_data.
	SignatureAlgorithms []string

	// KeyAlgorithms lists JWK "crv" values accepted for signing/recovery/update keys.
	KeyAlgorithms []string

	// MaxOperationsPerBatch bounds operations accepted from a single map file.
	MaxOperationsPerBatch uint
}

// ResolutionModel is the internal, in-progress state the resolver threads through successive
// operation applications. It plays the role of the DID state of §3: the resolver works with a
// ResolutionModel throughout and returns it as the resolution result.
type ResolutionModel struct {
	// Doc is the current document.
	Doc document.Document

	// RecoveryCommitment is the current next-recovery commitment (empty once deactivated).
	RecoveryCommitment string

	// UpdateCommitment is the current next-update commitment (empty once deactivated).
	UpdateCommitment string

	// LastOperationTransactionTime is the anchor key of the last operation successfully applied.
	LastOperationTransactionTime uint64

	// LastOperationTransactionNumber is the anchor key of the last operation successfully applied.
	LastOperationTransactionNumber uint64

	// Deactivated is true once a deactivate operation has been applied; terminal.
	Deactivated bool

	// CreatedTime is the transaction time of the create operation.
	CreatedTime uint64
}

// OperationApplier is the OperationProcessor of spec §4.5: a pure function of a prior
// ResolutionModel and one anchored operation.
type OperationApplier interface {
	// Apply applies op to prior and returns the next ResolutionModel, or an error if op is not
	// semantically valid against prior. Callers (the resolver) treat any error as "skip this op".
	Apply(op *operation.AnchoredOperation, prior *ResolutionModel) (*ResolutionModel, error)
}

// DocumentComposer applies a sequence of patches to a document (§4.4).
type DocumentComposer interface {
	ApplyPatches(doc document.Document, patches []patch.Patch) (document.Document, error)
}

// OperationParser runs the full structural validation of §4.2 against a raw operation request and
// produces the anchorable form of it. It is the submission-time collaborator: every operation must
// pass through it once, before it is ever persisted, so that a forged or malformed request never
// reaches an OperationStore. OperationApplier.Apply re-parses an already-anchored operation without
// re-running these checks; it is not a substitute for this interface.
type OperationParser interface {
	// ParseAndAnchor validates operationRequest and returns the anchorable operation, with the
	// anchor key fields left zero for the caller to fill in once the operation is actually
	// anchored.
	ParseAndAnchor(operationRequest []byte) (*operation.AnchoredOperation, error)
}

// Client is the version manager of spec §6: given a transaction time, it yields the Version
// (bundle of Protocol + parser/applier/composer) in effect at that time. It is an external
// collaborator; the core only calls it, never implements it beyond the Mock used in tests.
type Client interface {
	Get(transactionTime uint64) (Version, error)

	// Current returns the latest known protocol version.
	Current() (Version, error)
}

// Version bundles the protocol parameters for one version with its collaborators: the version
// manager resolves a transaction time to one Version, and every downstream call (apply, compose)
// goes through the collaborators it returns rather than a version-specific import.
type Version interface {
	Protocol() Protocol
	OperationApplier() OperationApplier
	DocumentComposer() DocumentComposer
	OperationParser() OperationParser
}
