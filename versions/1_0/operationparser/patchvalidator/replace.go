/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package patchvalidator

import (
	"errors"
	"fmt"

	"github.com/trustbloc/sidetree-resolver-core/document"
	"github.com/trustbloc/sidetree-resolver-core/patch"
)

// NewReplaceValidator creates a new validator for the "replace" patch.
func NewReplaceValidator() *ReplaceValidator {
	return &ReplaceValidator{}
}

// ReplaceValidator implements the validator for the "replace" patch action: value is a whole
// document state, replacing public keys and services outright.
type ReplaceValidator struct{}

// Validate validates the patch.
func (v *ReplaceValidator) Validate(p patch.Patch) error {
	value, err := p.GetValue()
	if err != nil {
		return err
	}

	doc, ok := value.(map[string]interface{})
	if !ok {
		return errors.New("invalid replace document value")
	}

	allowed := map[string]bool{
		document.PublicKeyProperty: true,
		document.ServiceProperty:   true,
	}

	for key := range doc {
		if !allowed[key] {
			return fmt.Errorf("key '%s' is not allowed in replace document", key)
		}
	}

	if err := validatePublicKeys(document.Document(doc).PublicKeys()); err != nil {
		return err
	}

	return validateServices(document.Document(doc).Services())
}
