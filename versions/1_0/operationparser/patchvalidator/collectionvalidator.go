/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package patchvalidator

import (
	"fmt"

	"github.com/trustbloc/sidetree-resolver-core/document"
	"github.com/trustbloc/sidetree-resolver-core/patch"
)

// collectionValidator validates the four patch actions whose value is a non-empty JSON array of
// document elements: add/remove-public-keys and add/remove-services differ only in how the raw
// array is parsed into typed elements and what collection-level rule is then run over them, so
// they share one generic implementation instead of four near-identical structs.
type collectionValidator[T any] struct {
	valueAlias string
	parse      func(arr []interface{}) []T
	validate   func(elements []T) error
}

// Validate validates the patch.
func (v collectionValidator[T]) Validate(p patch.Patch) error {
	value, err := p.GetValue()
	if err != nil {
		return err
	}

	arr, err := getRequiredArray(value)
	if err != nil {
		return fmt.Errorf("invalid %s value: %s", v.valueAlias, err.Error())
	}

	return v.validate(v.parse(arr))
}

// NewAddPublicKeysValidator creates a new validator for the "add-public-keys" patch.
func NewAddPublicKeysValidator() Validator {
	return collectionValidator[document.PublicKey]{
		valueAlias: "add public keys",
		parse:      func(arr []interface{}) []document.PublicKey { return document.ParsePublicKeys(arr) },
		validate:   validatePublicKeys,
	}
}

// NewRemovePublicKeysValidator creates a new validator for the "remove-public-keys" patch.
func NewRemovePublicKeysValidator() Validator {
	return collectionValidator[string]{
		valueAlias: "remove public keys",
		parse:      document.StringArray,
		validate:   validateIds,
	}
}

// NewAddServicesValidator creates a new validator for the "add-services" patch.
func NewAddServicesValidator() Validator {
	return collectionValidator[document.Service]{
		valueAlias: "add services",
		parse:      func(arr []interface{}) []document.Service { return document.ParseServices(arr) },
		validate:   validateServices,
	}
}

// NewRemoveServicesValidator creates a new validator for the "remove-services" patch.
func NewRemoveServicesValidator() Validator {
	return collectionValidator[string]{
		valueAlias: "remove services",
		parse:      document.StringArray,
		validate:   validateIds,
	}
}
