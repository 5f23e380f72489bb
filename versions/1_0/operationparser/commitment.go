/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operationparser

import (
	"fmt"

	"github.com/trustbloc/sidetree-resolver-core/api/operation"
)

// GetCommitment returns the commitment this operation request publishes for the next operation:
// the recovery commitment for recover, the update commitment for update, and nothing for
// deactivate (there is no next operation). Create is not supported: its commitments belong to
// the DID's genesis state, not to "the next operation after a prior one".
func (p *Parser) GetCommitment(operationBuffer []byte) (string, error) {
	op, err := p.Parse(operationBuffer, true)
	if err != nil {
		return "", fmt.Errorf("get commitment - parse operation error: %s", err.Error())
	}

	switch op.Type {
	case operation.TypeRecover:
		signedData, err := p.ParseSignedDataForRecover(op.SignedData)
		if err != nil {
			return "", err
		}

		return signedData.RecoveryCommitment, nil
	case operation.TypeUpdate:
		return op.Delta.UpdateCommitment, nil
	case operation.TypeDeactivate:
		return "", nil
	default:
		return "", fmt.Errorf("operation type '%s' not supported for getting next operation commitment", op.Type)
	}
}

// GetRevealValue returns the reveal value carried by this operation request.
func (p *Parser) GetRevealValue(operationBuffer []byte) (string, error) {
	op, err := p.Parse(operationBuffer, true)
	if err != nil {
		return "", fmt.Errorf("get reveal value - parse operation error: %s", err.Error())
	}

	if op.Type == operation.TypeCreate {
		return "", fmt.Errorf("operation type '%s' not supported for getting operation reveal value", op.Type)
	}

	return op.RevealValue, nil
}
