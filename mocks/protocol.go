/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mocks

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/trustbloc/sidetree-resolver-core/api/protocol"
	"github.com/trustbloc/sidetree-resolver-core/versions/1_0/doccomposer"
	"github.com/trustbloc/sidetree-resolver-core/versions/1_0/operationapplier"
	"github.com/trustbloc/sidetree-resolver-core/versions/1_0/operationparser"
)

// MockVersion is a single protocol.Version: a fixed set of parameters effective from GenesisTime,
// bundled with the protocol-version-1.0 parser, applier and composer built over those parameters.
type MockVersion struct {
	P        protocol.Protocol
	parser   *operationparser.Parser
	applier  *operationapplier.Applier
	composer *doccomposer.DocumentComposer
}

// GetProtocolVersion wraps p as a protocol.Version.
func GetProtocolVersion(p protocol.Protocol) *MockVersion {
	return &MockVersion{
		P:        p,
		parser:   operationparser.New(p),
		applier:  operationapplier.New(p),
		composer: doccomposer.New(),
	}
}

// Protocol returns the wrapped parameters.
func (v *MockVersion) Protocol() protocol.Protocol {
	return v.P
}

// OperationApplier returns the protocol-version-1.0 OperationProcessor for these parameters.
func (v *MockVersion) OperationApplier() protocol.OperationApplier {
	return v.applier
}

// DocumentComposer returns the protocol-version-1.0 DocumentComposer.
func (v *MockVersion) DocumentComposer() protocol.DocumentComposer {
	return v.composer
}

// OperationParser returns the protocol-version-1.0 submission-time validator for these parameters.
func (v *MockVersion) OperationParser() protocol.OperationParser {
	return v.parser
}

// MockProtocolClient mocks the version manager (protocol.Client): Versions may be appended in any
// order; Get orders them by GenesisTime and resolves a transaction time to the latest version not
// newer than it.
type MockProtocolClient struct {
	Versions       []*MockVersion
	CurrentVersion *MockVersion
	Err            error
}

// NewMockProtocolClient creates an empty mock version manager; append Versions and set
// CurrentVersion before use.
func NewMockProtocolClient() *MockProtocolClient {
	return &MockProtocolClient{}
}

// Get returns the Version in effect at transactionTime: the last one whose GenesisTime is <=
// transactionTime.
func (m *MockProtocolClient) Get(transactionTime uint64) (protocol.Version, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	sorted := make([]*MockVersion, len(m.Versions))
	copy(sorted, m.Versions)

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].P.GenesisTime < sorted[j].P.GenesisTime
	})

	var selected *MockVersion

	for _, v := range sorted {
		if v.P.GenesisTime > transactionTime {
			break
		}

		selected = v
	}

	if selected == nil {
		return nil, errors.Errorf("no protocol version found for transaction time %d", transactionTime)
	}

	return selected, nil
}

// Current returns the latest known version.
func (m *MockProtocolClient) Current() (protocol.Version, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	if m.CurrentVersion == nil {
		return nil, fmt.Errorf("no current protocol version set")
	}

	return m.CurrentVersion, nil
}
