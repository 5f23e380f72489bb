/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operationparser

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trustbloc/sidetree-resolver-core/api/operation"
	"github.com/trustbloc/sidetree-resolver-core/hashing"
	"github.com/trustbloc/sidetree-resolver-core/versions/1_0/model"
)

// ParseCreateOperation parses and validates a create operation request.
func (p *Parser) ParseCreateOperation(request []byte, batch bool) (*model.Operation, error) {
	schema, err := p.parseCreateRequest(request)
	if err != nil {
		return nil, err
	}

	if !batch {
		if err := p.anchorOriginValidator.Validate(schema.SuffixData.AnchorOrigin); err != nil {
			return nil, err
		}

		if err := p.ValidateSuffixData(schema.SuffixData); err != nil {
			return nil, err
		}

		if err := p.ValidateDelta(schema.Delta); err != nil {
			return nil, err
		}

		if err := hashing.IsValidModelMultihash(schema.Delta, schema.SuffixData.DeltaHash); err != nil {
			return nil, fmt.Errorf("delta doesn't match delta hash: %s", err.Error())
		}

		if schema.Delta.UpdateCommitment == schema.SuffixData.RecoveryCommitment {
			return nil, errors.New("recovery and update commitments cannot be equal, re-using public keys is not allowed")
		}
	}

	uniqueSuffix, err := hashing.CalculateModelMultihash(schema.SuffixData, p.MultihashAlgorithms[0])
	if err != nil {
		return nil, fmt.Errorf("failed to calculate unique suffix: %s", err.Error())
	}

	return &model.Operation{
		OperationRequest: request,
		Type:             operation.TypeCreate,
		UniqueSuffix:     uniqueSuffix,
		Delta:            schema.Delta,
		SuffixData:       schema.SuffixData,
		AnchorOrigin:     schema.SuffixData.AnchorOrigin,
	}, nil
}

func (p *Parser) parseCreateRequest(payload []byte) (*model.CreateRequest, error) {
	schema := &model.CreateRequest{}

	if err := json.Unmarshal(payload, schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal create request: %s", err.Error())
	}

	if schema.SuffixData == nil {
		return nil, errors.New("missing suffix data")
	}

	if schema.Delta == nil {
		return nil, errors.New("missing delta")
	}

	return schema, nil
}
