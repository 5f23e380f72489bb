/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package store defines the OperationStore contract of §4.6 and an
// in-memory reference implementation suitable for tests and small
// deployments.
package store

import (
	"sync"

	"github.com/trustbloc/sidetree-resolver-core/api/operation"
)

// OperationStore is a DidSuffix -> Set<AnchoredOperation> multimap. Put is idempotent by anchor
// key: re-putting an already-stored operation is a no-op. Iteration order from Get is unspecified;
// callers that need the canonical order (the resolver) sort by anchor key themselves.
type OperationStore interface {
	// Put stores batch, skipping any operation already present under the same anchor key.
	Put(batch []*operation.AnchoredOperation) error

	// Get returns every operation stored for didSuffix.
	Get(didSuffix string) ([]*operation.AnchoredOperation, error)

	// DeleteUpdatesEarlierThan removes update operations for didSuffix anchored strictly before
	// transactionTime. Create/recover/deactivate operations are never pruned by this call.
	DeleteUpdatesEarlierThan(didSuffix string, transactionTime uint64) error
}

type anchorKey struct {
	transactionTime   uint64
	transactionNumber uint64
	operationIndex    uint64
}

func keyOf(op *operation.AnchoredOperation) anchorKey {
	return anchorKey{op.TransactionTime, op.TransactionNumber, op.OperationIndex}
}

// MemStore is an in-memory OperationStore.
type MemStore struct {
	mutex sync.RWMutex
	ops   map[string]map[anchorKey]*operation.AnchoredOperation
}

// New creates an empty in-memory operation store.
func New() *MemStore {
	return &MemStore{ops: make(map[string]map[anchorKey]*operation.AnchoredOperation)}
}

// Put stores batch, ignoring operations whose anchor key is already present for their did suffix.
func (s *MemStore) Put(batch []*operation.AnchoredOperation) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, op := range batch {
		bucket, ok := s.ops[op.UniqueSuffix]
		if !ok {
			bucket = make(map[anchorKey]*operation.AnchoredOperation)
			s.ops[op.UniqueSuffix] = bucket
		}

		k := keyOf(op)
		if _, exists := bucket[k]; exists {
			continue
		}

		bucket[k] = op
	}

	return nil
}

// Get returns every operation stored for didSuffix, in no particular order.
func (s *MemStore) Get(didSuffix string) ([]*operation.AnchoredOperation, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	bucket := s.ops[didSuffix]
	out := make([]*operation.AnchoredOperation, 0, len(bucket))

	for _, op := range bucket {
		out = append(out, op)
	}

	return out, nil
}

// DeleteUpdatesEarlierThan removes update operations for didSuffix anchored strictly before
// transactionTime.
func (s *MemStore) DeleteUpdatesEarlierThan(didSuffix string, transactionTime uint64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	bucket, ok := s.ops[didSuffix]
	if !ok {
		return nil
	}

	for key, op := range bucket {
		if op.Type == operation.TypeUpdate && op.TransactionTime < transactionTime {
			delete(bucket, key)
		}
	}

	return nil
}
