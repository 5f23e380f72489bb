/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mocks

import (
	"sync"

	"github.com/trustbloc/sidetree-resolver-core/api/txn"
)

// DefaultNS is the namespace MockAnchorWriter stamps onto every transaction it reads back.
const DefaultNS = "did:sidetree"

// MockAnchorWriter mocks the ledger adapter: WriteAnchor appends an anchor string, Read replays
// them back as SidetreeTxn records in the order they were written.
type MockAnchorWriter struct {
	mutex     sync.RWMutex
	namespace string
	anchors   []string
	err       error
}

// NewMockAnchorWriter creates a mock anchor writer. A non-nil err is returned from every
// WriteAnchor call.
func NewMockAnchorWriter(err error) *MockAnchorWriter {
	return &MockAnchorWriter{err: err, namespace: DefaultNS}
}

// WriteAnchor writes anchor as the next transaction.
func (m *MockAnchorWriter) WriteAnchor(anchor string) error {
	if m.err != nil {
		return m.err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.anchors = append(m.anchors, anchor)

	return nil
}

// Read reads the transaction immediately after sinceTransactionNumber, reporting whether more
// remain beyond it.
func (m *MockAnchorWriter) Read(sinceTransactionNumber int) (bool, *txn.SidetreeTxn) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	index := sinceTransactionNumber + 1
	if index < 0 || index >= len(m.anchors) {
		return false, nil
	}

	more := index+1 < len(m.anchors)

	return more, &txn.SidetreeTxn{
		Namespace:         m.namespace,
		TransactionTime:   uint64(index),
		TransactionNumber: uint64(index),
		AnchorString:      m.anchors[index],
	}
}

// GetAnchors returns every anchor string written so far.
func (m *MockAnchorWriter) GetAnchors() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.anchors
}
