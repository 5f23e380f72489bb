/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mocks

import (
	"sync"

	"github.com/google/uuid"
	"github.com/multiformats/go-multibase"
	"github.com/pkg/errors"
)

// MockCasClient is an in-memory content-addressable store: content is keyed by a
// multibase-prefixed, randomly-generated CID rather than by a true content hash, since exercising
// the observer's ingestion path does not require CAS-grade deduplication.
type MockCasClient struct {
	mutex   sync.RWMutex
	content map[string][]byte
	ReadErr error
}

// NewMockCasClient creates an empty mock CAS.
func NewMockCasClient() *MockCasClient {
	return &MockCasClient{content: make(map[string][]byte)}
}

// Write stores content and returns a freshly minted CID for it.
func (m *MockCasClient) Write(content []byte) (string, error) {
	cid, err := newCID()
	if err != nil {
		return "", err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.content[cid] = content

	return cid, nil
}

// Read returns the content previously stored under cid.
func (m *MockCasClient) Read(cid string) ([]byte, error) {
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	content, ok := m.content[cid]
	if !ok {
		return nil, errors.Errorf("content not found for cid %s", cid)
	}

	return content, nil
}

func newCID() (string, error) {
	cid, err := multibase.Encode(multibase.Base58BTC, []byte(uuid.New().String()))
	if err != nil {
		return "", errors.Wrap(err, "mint cas cid")
	}

	return cid, nil
}
