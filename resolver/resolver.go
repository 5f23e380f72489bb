/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package resolver implements the Resolver orchestration of §4.7: given a
// DID suffix, it fetches every operation anchored for it from the
// OperationStore, picks the earliest valid Create, and replays recovers,
// deactivates and updates against the commitments they reveal until no
// further operation applies.
package resolver

import (
	"encoding/json"
	"sort"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"

	"github.com/trustbloc/sidetree-resolver-core/api/operation"
	"github.com/trustbloc/sidetree-resolver-core/api/protocol"
	"github.com/trustbloc/sidetree-resolver-core/commitment"
	"github.com/trustbloc/sidetree-resolver-core/document"
	"github.com/trustbloc/sidetree-resolver-core/store"
)

var logger = log.New("sidetree-resolver-core/resolver")

// Resolver reconstructs DidState from the operations an OperationStore has accumulated for a DID.
type Resolver struct {
	store          store.OperationStore
	protocolClient protocol.Client
}

// New creates a Resolver over opStore, resolving operation-kind collaborators per transaction time
// through protocolClient (the version manager).
func New(opStore store.OperationStore, protocolClient protocol.Client) *Resolver {
	return &Resolver{store: opStore, protocolClient: protocolClient}
}

// Resolve rebuilds the current ResolutionModel for didSuffix. It returns (nil, nil) if no valid
// Create exists for this suffix - "not found" is not an error.
func (r *Resolver) Resolve(didSuffix string) (*protocol.ResolutionModel, error) {
	ops, err := r.store.Get(didSuffix)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve[%s]: fetch operations", didSuffix)
	}

	creates, updates, recovers, deactivates := partition(ops)

	state, err := r.applyEarliestValidCreate(creates)
	if err != nil {
		return nil, err
	}

	if state == nil {
		logger.Debugf("resolve[%s]: no valid create operation found", didSuffix)
		return nil, nil
	}

	state, err = r.applyRecoverAndDeactivateOperations(state, append(recovers, deactivates...))
	if err != nil {
		return nil, err
	}

	if state.Deactivated {
		return state, nil
	}

	state, err = r.applyUpdateOperations(state, updates)
	if err != nil {
		return nil, err
	}

	return state, nil
}

func partition(ops []*operation.AnchoredOperation) (creates, updates, recovers, deactivates []*operation.AnchoredOperation) {
	for _, op := range ops {
		switch op.Type {
		case operation.TypeCreate:
			creates = append(creates, op)
		case operation.TypeUpdate:
			updates = append(updates, op)
		case operation.TypeRecover:
			recovers = append(recovers, op)
		case operation.TypeDeactivate:
			deactivates = append(deactivates, op)
		}
	}

	return creates, updates, recovers, deactivates
}

// applyEarliestValidCreate tries every candidate create, earliest anchor key first, and returns
// the state produced by the first one that applies cleanly. An Open Question in §9 is whether a
// later-anchored Create can ever overwrite a successful earlier one; the spec's answer is no, so
// the first success wins outright and the rest of creates is never inspected again.
func (r *Resolver) applyEarliestValidCreate(creates []*operation.AnchoredOperation) (*protocol.ResolutionModel, error) {
	sortByAnchorKey(creates)

	for _, create := range creates {
		version, err := r.protocolClient.Get(create.TransactionTime)
		if err != nil {
			logger.Debugf("resolve: no protocol version for create at %d: %s", create.TransactionTime, err)
			continue
		}

		state, err := version.OperationApplier().Apply(create, nil)
		if err != nil {
			logger.Debugf("resolve: candidate create at (%d,%d,%d) rejected: %s",
				create.TransactionTime, create.TransactionNumber, create.OperationIndex, err)

			continue
		}

		return state, nil
	}

	return nil, nil
}

// applyRecoverAndDeactivateOperations implements §4.7 steps 5-6: bucket recovers and deactivates
// by the commitment they reveal against, then repeatedly consume the bucket matching the current
// recovery commitment until no bucket matches or the DID is deactivated.
func (r *Resolver) applyRecoverAndDeactivateOperations(
	state *protocol.ResolutionModel, ops []*operation.AnchoredOperation,
) (*protocol.ResolutionModel, error) {
	buckets := bucketByRevealedCommitment(ops)

	for {
		bucket, ok := buckets[state.RecoveryCommitment]
		if !ok {
			break
		}

		delete(buckets, state.RecoveryCommitment)

		next, applied, err := r.applyFirstValid(state, bucket)
		if err != nil {
			return nil, err
		}

		if !applied {
			break
		}

		state = next

		if state.Deactivated {
			break
		}
	}

	return state, nil
}

// applyUpdateOperations implements §4.7 steps 7-8, against the update commitment instead of the
// recovery commitment. Only one update per commitment can ever succeed: applying one shifts
// next_update_commitment forward, so the rest of a same-reveal bucket is orphaned exactly like in
// the recover/deactivate loop.
func (r *Resolver) applyUpdateOperations(
	state *protocol.ResolutionModel, ops []*operation.AnchoredOperation,
) (*protocol.ResolutionModel, error) {
	buckets := bucketByRevealedCommitment(ops)

	for {
		bucket, ok := buckets[state.UpdateCommitment]
		if !ok {
			break
		}

		delete(buckets, state.UpdateCommitment)

		next, applied, err := r.applyFirstValid(state, bucket)
		if err != nil {
			return nil, err
		}

		if !applied {
			break
		}

		state = next
	}

	return state, nil
}

// applyFirstValid tries bucket (already sorted by anchor key) against a fresh copy of state each
// time, so a failed speculative attempt never corrupts the state a later candidate in the same
// bucket is tried against.
func (r *Resolver) applyFirstValid(
	state *protocol.ResolutionModel, bucket []*operation.AnchoredOperation,
) (*protocol.ResolutionModel, bool, error) {
	for _, candidate := range bucket {
		version, err := r.protocolClient.Get(candidate.TransactionTime)
		if err != nil {
			continue
		}

		var attempt protocol.ResolutionModel

		if err := copier.Copy(&attempt, state); err != nil {
			return nil, false, errors.Wrap(err, "copy resolution model for speculative apply")
		}

		// the composer mutates Doc in place, so the scalar-field copy above is not enough: clone
		// the document itself or a rejected candidate could leave state.Doc half-patched.
		clonedDoc, err := cloneDocument(state.Doc)
		if err != nil {
			return nil, false, errors.Wrap(err, "clone document for speculative apply")
		}

		attempt.Doc = clonedDoc

		result, err := version.OperationApplier().Apply(candidate, &attempt)
		if err != nil {
			logger.Debugf("resolve: candidate (%d,%d,%d) rejected: %s",
				candidate.TransactionTime, candidate.TransactionNumber, candidate.OperationIndex, err)

			continue
		}

		return result, true, nil
	}

	return nil, false, nil
}

// bucketByRevealedCommitment groups ops by the commitment each one reveals against, sorting every
// bucket by anchor key ascending so the earliest candidate is tried first (testable property 5).
// An op whose reveal value is not itself a well-formed multihash can never match any commitment;
// it is silently dropped rather than erroring the whole resolve.
func bucketByRevealedCommitment(ops []*operation.AnchoredOperation) map[string][]*operation.AnchoredOperation {
	buckets := make(map[string][]*operation.AnchoredOperation)

	for _, op := range ops {
		key, err := commitment.GetCommitmentFromRevealValue(op.RevealValue)
		if err != nil {
			continue
		}

		buckets[key] = append(buckets[key], op)
	}

	for _, bucket := range buckets {
		sortByAnchorKey(bucket)
	}

	return buckets
}

// cloneDocument deep-copies doc via a JSON round trip: cheap, and correct for the plain
// string-keyed JSON values a Document ever holds.
func cloneDocument(doc document.Document) (document.Document, error) {
	if doc == nil {
		return make(document.Document), nil
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	cloned := make(document.Document)
	if err := json.Unmarshal(raw, &cloned); err != nil {
		return nil, err
	}

	return cloned, nil
}

func sortByAnchorKey(ops []*operation.AnchoredOperation) {
	sort.Slice(ops, func(i, j int) bool {
		return ops[i].Less(ops[j])
	})
}
