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

// ParseUpdateOperation parses and validates an update operation request.
func (p *Parser) ParseUpdateOperation(request []byte, batch bool) (*model.Operation, error) {
	schema, err := p.parseUpdateRequest(request)
	if err != nil {
		return nil, err
	}

	signedData, err := p.parseSignedDataForUpdate(schema.SignedData)
	if err != nil {
		return nil, err
	}

	if !batch {
		until := p.getAnchorUntil(signedData.AnchorFrom, signedData.AnchorUntil)

		if err := p.anchorTimeValidator.Validate(signedData.AnchorFrom, until); err != nil {
			return nil, err
		}

		if err := p.ValidateDelta(schema.Delta); err != nil {
			return nil, err
		}

		if err := hashing.IsValidModelMultihash(schema.Delta, signedData.DeltaHash); err != nil {
			return nil, fmt.Errorf("delta doesn't match delta hash: %s", err.Error())
		}
	}

	if err := hashing.IsValidModelMultihash(signedData.UpdateKey, schema.RevealValue); err != nil {
		return nil, fmt.Errorf("canonicalized update public key hash doesn't match reveal value: %s", err.Error())
	}

	return &model.Operation{
		OperationRequest: request,
		Type:             operation.TypeUpdate,
		UniqueSuffix:     schema.DidSuffix,
		Delta:            schema.Delta,
		SignedData:       schema.SignedData,
		RevealValue:      schema.RevealValue,
	}, nil
}

func (p *Parser) parseUpdateRequest(payload []byte) (*model.UpdateRequest, error) {
	schema := &model.UpdateRequest{}

	if err := json.Unmarshal(payload, schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal update request: %s", err.Error())
	}

	if schema.DidSuffix == "" {
		return nil, errors.New("missing did suffix")
	}

	if schema.SignedData == "" {
		return nil, errors.New("missing signed data")
	}

	if err := p.validateMultihash(schema.RevealValue, "reveal value"); err != nil {
		return nil, err
	}

	return schema, nil
}

func (p *Parser) parseSignedDataForUpdate(compactJWS string) (*model.UpdateSignedDataModel, error) {
	signedData, err := p.parseSignedData(compactJWS)
	if err != nil {
		return nil, err
	}

	schema := &model.UpdateSignedDataModel{}

	if err := json.Unmarshal(signedData.Payload, schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal signed data model for update: %s", err.Error())
	}

	if err := p.validateSignedDataForUpdate(schema); err != nil {
		return nil, fmt.Errorf("validate signed data for update: %s", err.Error())
	}

	return schema, nil
}

func (p *Parser) validateSignedDataForUpdate(signedData *model.UpdateSignedDataModel) error {
	if err := p.validateSigningKey(signedData.UpdateKey); err != nil {
		return err
	}

	return p.validateMultihash(signedData.DeltaHash, "delta hash")
}
