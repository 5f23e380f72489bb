/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package operationparser parses and validates the operation requests of
// protocol version 1.0: create, update, recover and deactivate.
package operationparser

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trustbloc/sidetree-resolver-core/api/operation"
	"github.com/trustbloc/sidetree-resolver-core/api/protocol"
	"github.com/trustbloc/sidetree-resolver-core/doc/json/canonicalizer"
	"github.com/trustbloc/sidetree-resolver-core/hashing"
	"github.com/trustbloc/sidetree-resolver-core/versions/1_0/model"
	"github.com/trustbloc/sidetree-resolver-core/versions/1_0/operationparser/patchvalidator"
)

// AnchorOriginValidator validates the anchor_origin value carried by create and recover operations.
// The default validator accepts anything; a ledger-specific implementation may restrict it to a
// known set of origins.
type AnchorOriginValidator interface {
	Validate(anchorOrigin interface{}) error
}

// AnchorTimeValidator validates the anchor_from/anchor_until window of a recover or update
// operation against the time the operation is actually anchored.
type AnchorTimeValidator interface {
	Validate(anchorFrom, anchorUntil int64) error
}

type defaultAnchorOriginValidator struct{}

func (defaultAnchorOriginValidator) Validate(interface{}) error { return nil }

type defaultAnchorTimeValidator struct{}

func (defaultAnchorTimeValidator) Validate(int64, int64) error { return nil }

// Option configures a Parser.
type Option func(p *Parser)

// WithAnchorOriginValidator overrides the default (accept-all) anchor origin validator.
func WithAnchorOriginValidator(v AnchorOriginValidator) Option {
	return func(p *Parser) { p.anchorOriginValidator = v }
}

// WithAnchorTimeValidator overrides the default (accept-all) anchor time validator.
func WithAnchorTimeValidator(v AnchorTimeValidator) Option {
	return func(p *Parser) { p.anchorTimeValidator = v }
}

// Parser parses and validates operation requests for protocol version 1.0.
type Parser struct {
	protocol.Protocol

	anchorOriginValidator AnchorOriginValidator
	anchorTimeValidator   AnchorTimeValidator
}

// New creates a Parser bound to the given protocol parameters.
func New(p protocol.Protocol, opts ...Option) *Parser {
	parser := &Parser{
		Protocol:              p,
		anchorOriginValidator: defaultAnchorOriginValidator{},
		anchorTimeValidator:   defaultAnchorTimeValidator{},
	}

	for _, opt := range opts {
		opt(parser)
	}

	return parser
}

// Parse parses an operation request of any type. batch is true when the request has already
// been validated once (e.g. at submission time) and is now being re-parsed out of an anchored
// batch, which skips the checks that only matter pre-anchor: anchor origin/time, suffix data and
// delta validation (size, commitment shape, every patch), the delta_hash binding, commitment
// reuse, and the deactivate did_suffix match.
func (p *Parser) Parse(operationBuffer []byte, batch bool) (*model.Operation, error) {
	opType, err := parseOperationType(operationBuffer)
	if err != nil {
		return nil, err
	}

	switch opType {
	case operation.TypeCreate:
		return p.ParseCreateOperation(operationBuffer, batch)
	case operation.TypeUpdate:
		return p.ParseUpdateOperation(operationBuffer, batch)
	case operation.TypeRecover:
		return p.ParseRecoverOperation(operationBuffer, batch)
	case operation.TypeDeactivate:
		return p.ParseDeactivateOperation(operationBuffer, batch)
	default:
		return nil, fmt.Errorf("operation type [%s] not supported", opType)
	}
}

// ParseAndAnchor runs the full structural validation of an operation request (batch=false: anchor
// origin/time, delta shape and every patch it carries, delta_hash binding, commitment-reuse) and
// converts the result into an operation.AnchoredOperation. This is the submission-time entry
// point: the caller still has to fill in the anchor key (TransactionTime, TransactionNumber,
// OperationIndex) and CanonicalReference once the operation is actually anchored, then persist it
// through an OperationStore. Apply, in contrast, re-parses an already-anchored operation with
// batch=true and never goes through this path.
func (p *Parser) ParseAndAnchor(operationRequest []byte) (*operation.AnchoredOperation, error) {
	parsed, err := p.Parse(operationRequest, false)
	if err != nil {
		return nil, err
	}

	return model.GetAnchoredOperation(parsed)
}

func parseOperationType(operationBuffer []byte) (operation.Type, error) {
	var wrapper struct {
		Type operation.Type `json:"type"`
	}

	if err := json.Unmarshal(operationBuffer, &wrapper); err != nil {
		return "", fmt.Errorf("failed to unmarshal operation type: %s", err.Error())
	}

	if wrapper.Type == "" {
		return "", errors.New("missing operation type")
	}

	return wrapper.Type, nil
}

// ValidateSuffixData validates the suffix data object of a create operation.
func (p *Parser) ValidateSuffixData(suffixData *model.SuffixDataModel) error {
	if suffixData == nil {
		return errors.New("missing suffix data")
	}

	if err := p.validateMultihash(suffixData.DeltaHash, "delta hash"); err != nil {
		return err
	}

	return p.validateMultihash(suffixData.RecoveryCommitment, "recovery commitment")
}

// ValidateDelta validates a delta object: size, commitment shape, and every patch it carries.
func (p *Parser) ValidateDelta(delta *model.DeltaModel) error {
	if delta == nil {
		return errors.New("missing delta")
	}

	if len(delta.Patches) == 0 {
		return errors.New("missing patches")
	}

	canonical, err := canonicalizer.MarshalCanonical(delta)
	if err != nil {
		return fmt.Errorf("failed to canonicalize delta: %s", err.Error())
	}

	if len(canonical) > int(p.MaxDeltaSize) {
		return fmt.Errorf("delta size[%d] exceeds maximum delta size[%d]", len(canonical), p.MaxDeltaSize)
	}

	if err := p.validateMultihash(delta.UpdateCommitment, "update commitment"); err != nil {
		return err
	}

	for _, patchValue := range delta.Patches {
		action, err := patchValue.GetAction()
		if err != nil {
			return err
		}

		validator, err := patchvalidator.ForAction(action)
		if err != nil {
			return err
		}

		if err := validator.Validate(patchValue); err != nil {
			return fmt.Errorf("validate patch[%s]: %s", action, err.Error())
		}
	}

	return nil
}

func (p *Parser) validateMultihash(mhValue, alias string) error {
	if mhValue == "" {
		return fmt.Errorf("missing %s", alias)
	}

	if !hashing.IsComputedUsingMultihashAlgorithms(mhValue, p.MultihashAlgorithms) {
		return fmt.Errorf("%s is not computed with the required hash algorithms: %v", alias, p.MultihashAlgorithms)
	}

	return nil
}
