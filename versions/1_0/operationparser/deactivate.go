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

// ParseDeactivateOperation parses and validates a deactivate operation request.
func (p *Parser) ParseDeactivateOperation(request []byte, batch bool) (*model.Operation, error) {
	schema, err := p.parseDeactivateRequest(request)
	if err != nil {
		return nil, err
	}

	signedData, err := p.parseSignedDataForDeactivate(schema.SignedData)
	if err != nil {
		return nil, err
	}

	if !batch && signedData.DidSuffix != schema.DidSuffix {
		return nil, fmt.Errorf("did suffix[%s] in signed data doesn't match operation did suffix[%s]",
			signedData.DidSuffix, schema.DidSuffix)
	}

	if err := hashing.IsValidModelMultihash(signedData.RecoveryKey, schema.RevealValue); err != nil {
		return nil, fmt.Errorf("canonicalized recovery public key hash doesn't match reveal value: %s", err.Error())
	}

	return &model.Operation{
		OperationRequest: request,
		Type:             operation.TypeDeactivate,
		UniqueSuffix:     schema.DidSuffix,
		SignedData:       schema.SignedData,
		RevealValue:      schema.RevealValue,
	}, nil
}

func (p *Parser) parseDeactivateRequest(payload []byte) (*model.DeactivateRequest, error) {
	schema := &model.DeactivateRequest{}

	if err := json.Unmarshal(payload, schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deactivate request: %s", err.Error())
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

func (p *Parser) parseSignedDataForDeactivate(compactJWS string) (*model.DeactivateSignedDataModel, error) {
	signedData, err := p.parseSignedData(compactJWS)
	if err != nil {
		return nil, err
	}

	schema := &model.DeactivateSignedDataModel{}

	if err := json.Unmarshal(signedData.Payload, schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal signed data model for deactivate: %s", err.Error())
	}

	if err := p.validateSigningKey(schema.RecoveryKey); err != nil {
		return nil, fmt.Errorf("validate signed data for deactivate: %s", err.Error())
	}

	return schema, nil
}
