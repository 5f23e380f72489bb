/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package operationapplier implements the pure, per-operation state
// transition of protocol version 1.0: given a prior ResolutionModel (or nil,
// for create) and one AnchoredOperation, it produces the next
// ResolutionModel. It never talks to a store; the resolver is responsible
// for ordering operations and feeding them through one at a time.
package operationapplier

import (
	"errors"
	"fmt"

	"github.com/trustbloc/sidetree-resolver-core/api/operation"
	"github.com/trustbloc/sidetree-resolver-core/api/protocol"
	"github.com/trustbloc/sidetree-resolver-core/commitment"
	"github.com/trustbloc/sidetree-resolver-core/document"
	"github.com/trustbloc/sidetree-resolver-core/versions/1_0/doccomposer"
	"github.com/trustbloc/sidetree-resolver-core/versions/1_0/model"
	"github.com/trustbloc/sidetree-resolver-core/versions/1_0/operationparser"
)

// Applier applies operations to resolution models using the parsing and document-composition
// rules of protocol version 1.0.
type Applier struct {
	protocol.Protocol

	parser   *operationparser.Parser
	composer *doccomposer.DocumentComposer
}

// New creates an Applier for the given protocol parameters.
func New(p protocol.Protocol) *Applier {
	return &Applier{
		Protocol: p,
		parser:   operationparser.New(p),
		composer: doccomposer.New(),
	}
}

// Apply applies op to prior (nil for create) and returns the resulting resolution model. batch
// re-parsing is used (validation already happened once at submission time) since op has already
// been anchored.
func (a *Applier) Apply(op *operation.AnchoredOperation, prior *protocol.ResolutionModel) (*protocol.ResolutionModel, error) {
	parsed, err := a.parser.Parse(op.OperationRequest, true)
	if err != nil {
		return nil, fmt.Errorf("apply operation: parse: %s", err.Error())
	}

	switch op.Type {
	case operation.TypeCreate:
		return a.applyCreate(parsed, op)
	case operation.TypeRecover:
		return a.applyRecover(parsed, op, prior)
	case operation.TypeUpdate:
		return a.applyUpdate(parsed, op, prior)
	case operation.TypeDeactivate:
		return a.applyDeactivate(parsed, op, prior)
	default:
		return nil, fmt.Errorf("apply operation: operation type '%s' not supported", op.Type)
	}
}

func (a *Applier) applyCreate(
	op *model.Operation, anchored *operation.AnchoredOperation,
) (*protocol.ResolutionModel, error) {
	if op.SuffixData == nil {
		return nil, errors.New("apply create: missing suffix data")
	}

	doc, err := a.composer.ApplyPatches(make(document.Document), op.Delta.Patches)
	if err != nil {
		return nil, fmt.Errorf("apply create: %s", err.Error())
	}

	return &protocol.ResolutionModel{
		Doc:                             doc,
		RecoveryCommitment:              op.SuffixData.RecoveryCommitment,
		UpdateCommitment:                op.Delta.UpdateCommitment,
		LastOperationTransactionTime:    anchored.TransactionTime,
		LastOperationTransactionNumber:  anchored.TransactionNumber,
		CreatedTime:                     anchored.TransactionTime,
	}, nil
}

func (a *Applier) applyRecover(
	op *model.Operation, anchored *operation.AnchoredOperation, prior *protocol.ResolutionModel,
) (*protocol.ResolutionModel, error) {
	if prior == nil {
		return nil, errors.New("apply recover: missing prior state")
	}

	if prior.Deactivated {
		return nil, errors.New("apply recover: document has been deactivated")
	}

	if err := verifyReveal(op.RevealValue, prior.RecoveryCommitment); err != nil {
		return nil, fmt.Errorf("apply recover: %s", err.Error())
	}

	signedData, err := a.parser.ParseSignedDataForRecover(op.SignedData)
	if err != nil {
		return nil, fmt.Errorf("apply recover: %s", err.Error())
	}

	doc, err := a.composer.ApplyPatches(make(document.Document), op.Delta.Patches)
	if err != nil {
		return nil, fmt.Errorf("apply recover: %s", err.Error())
	}

	return &protocol.ResolutionModel{
		Doc:                            doc,
		RecoveryCommitment:             signedData.RecoveryCommitment,
		UpdateCommitment:               op.Delta.UpdateCommitment,
		LastOperationTransactionTime:   anchored.TransactionTime,
		LastOperationTransactionNumber: anchored.TransactionNumber,
		CreatedTime:                    prior.CreatedTime,
	}, nil
}

func (a *Applier) applyUpdate(
	op *model.Operation, anchored *operation.AnchoredOperation, prior *protocol.ResolutionModel,
) (*protocol.ResolutionModel, error) {
	if prior == nil {
		return nil, errors.New("apply update: missing prior state")
	}

	if prior.Deactivated {
		return nil, errors.New("apply update: document has been deactivated")
	}

	if err := verifyReveal(op.RevealValue, prior.UpdateCommitment); err != nil {
		return nil, fmt.Errorf("apply update: %s", err.Error())
	}

	doc, err := a.composer.ApplyPatches(prior.Doc, op.Delta.Patches)
	if err != nil {
		// a structurally valid but semantically empty delta still advances the
		// commitment: otherwise a malformed patch list could permanently lock
		// update progress for a legitimate key holder.
		return &protocol.ResolutionModel{
			Doc:                            prior.Doc,
			RecoveryCommitment:             prior.RecoveryCommitment,
			UpdateCommitment:               op.Delta.UpdateCommitment,
			LastOperationTransactionTime:   anchored.TransactionTime,
			LastOperationTransactionNumber: anchored.TransactionNumber,
			CreatedTime:                    prior.CreatedTime,
		}, nil
	}

	return &protocol.ResolutionModel{
		Doc:                            doc,
		RecoveryCommitment:             prior.RecoveryCommitment,
		UpdateCommitment:               op.Delta.UpdateCommitment,
		LastOperationTransactionTime:   anchored.TransactionTime,
		LastOperationTransactionNumber: anchored.TransactionNumber,
		CreatedTime:                    prior.CreatedTime,
	}, nil
}

func (a *Applier) applyDeactivate(
	op *model.Operation, anchored *operation.AnchoredOperation, prior *protocol.ResolutionModel,
) (*protocol.ResolutionModel, error) {
	if prior == nil {
		return nil, errors.New("apply deactivate: missing prior state")
	}

	if prior.Deactivated {
		return nil, errors.New("apply deactivate: document has already been deactivated")
	}

	if err := verifyReveal(op.RevealValue, prior.RecoveryCommitment); err != nil {
		return nil, fmt.Errorf("apply deactivate: %s", err.Error())
	}

	return &protocol.ResolutionModel{
		Doc:                            prior.Doc,
		RecoveryCommitment:             "",
		UpdateCommitment:               "",
		Deactivated:                    true,
		LastOperationTransactionTime:   anchored.TransactionTime,
		LastOperationTransactionNumber: anchored.TransactionNumber,
		CreatedTime:                    prior.CreatedTime,
	}, nil
}

// verifyReveal checks that revealValue is what was committed to by storedCommitment: the
// commit-reveal scheme's core check, §3.
func verifyReveal(revealValue, storedCommitment string) error {
	if storedCommitment == "" {
		return errors.New("no commitment to reveal against")
	}

	computed, err := commitment.GetCommitmentFromRevealValue(revealValue)
	if err != nil {
		return fmt.Errorf("calculate commitment from reveal value: %s", err.Error())
	}

	if computed != storedCommitment {
		return errors.New("reveal value doesn't match the previously anchored commitment")
	}

	return nil
}
