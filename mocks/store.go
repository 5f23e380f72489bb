/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mocks

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/trustbloc/sidetree-resolver-core/api/operation"
)

// MockOperationStore is an in-memory store.OperationStore double that can be made to fail on
// demand, for exercising the resolver/observer's error paths.
type MockOperationStore struct {
	mutex    sync.RWMutex
	ops      map[string][]*operation.AnchoredOperation
	PutErr   error
	GetErr   error
	initErr  error
}

// NewMockOperationStore creates a mock store. A non-nil err is returned from Get and Put.
func NewMockOperationStore(err error) *MockOperationStore {
	return &MockOperationStore{
		ops:     make(map[string][]*operation.AnchoredOperation),
		initErr: err,
	}
}

// Put appends batch to each operation's did suffix bucket.
func (m *MockOperationStore) Put(batch []*operation.AnchoredOperation) error {
	if m.initErr != nil {
		return m.initErr
	}

	if m.PutErr != nil {
		return m.PutErr
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, op := range batch {
		m.ops[op.UniqueSuffix] = append(m.ops[op.UniqueSuffix], op)
	}

	return nil
}

// Get returns every operation stored for didSuffix.
func (m *MockOperationStore) Get(didSuffix string) ([]*operation.AnchoredOperation, error) {
	if m.initErr != nil {
		return nil, m.initErr
	}

	if m.GetErr != nil {
		return nil, m.GetErr
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	ops, ok := m.ops[didSuffix]
	if !ok {
		return nil, errors.Errorf("no operations found for did suffix %s", didSuffix)
	}

	out := make([]*operation.AnchoredOperation, len(ops))
	copy(out, ops)

	return out, nil
}

// DeleteUpdatesEarlierThan drops update operations anchored before transactionTime, for pruning
// after checkpointing (§4.6). Create/recover/deactivate operations are never pruned: the resolver
// needs them to reconstruct the commitment chain from genesis.
func (m *MockOperationStore) DeleteUpdatesEarlierThan(didSuffix string, transactionTime uint64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	ops, ok := m.ops[didSuffix]
	if !ok {
		return nil
	}

	kept := make([]*operation.AnchoredOperation, 0, len(ops))

	for _, op := range ops {
		if op.Type == operation.TypeUpdate && op.TransactionTime < transactionTime {
			continue
		}

		kept = append(kept, op)
	}

	m.ops[didSuffix] = kept

	return nil
}

// MockUnpublishedOpsStore mocks the unpublished-operation store a long-form-DID resolver consults
// for operations that have not yet reached the ledger.
type MockUnpublishedOpsStore struct {
	GetErr      error
	AnchoredOps []*operation.AnchoredOperation
}

// Get returns the configured AnchoredOps, ignoring didSuffix (the mock answers the same for every
// DID, since tests set up exactly the operations they need for one DID at a time).
func (m *MockUnpublishedOpsStore) Get(_ string) ([]*operation.AnchoredOperation, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}

	return m.AnchoredOps, nil
}
