/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package patch defines the document-patch actions a delta carries and the
// constructors used to build them (mirrors the teacher's patch package,
// referenced throughout versions/1_0/model and versions/1_0/client).
package patch

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Action names the five patch actions §4.4 defines.
type Action string

// Supported patch actions.
const (
	Replace           Action = "replace"
	AddPublicKeys     Action = "add-public-keys"
	RemovePublicKeys  Action = "remove-public-keys"
	AddServices       Action = "add-services"
	RemoveServices    Action = "remove-services"
)

const (
	actionKey    = "action"
	documentKey  = "document"
	publicKeysKey = "publicKeys"
	idsKey       = "ids"
	servicesKey  = "services"
)

// Patch is a single document-patch entry: a loosely typed JSON object carrying an "action"
// member and an action-specific value.
type Patch map[string]interface{}

// GetAction returns the patch's action.
func (p Patch) GetAction() (Action, error) {
	raw, ok := p[actionKey]
	if !ok {
		return "", errors.New("patch is missing action element")
	}

	s, ok := raw.(string)
	if !ok {
		return "", errors.New("patch action must be a string")
	}

	return Action(s), nil
}

// GetValue returns the action-specific payload of the patch (the "document", "publicKeys",
// "ids" or "services" member, depending on action).
func (p Patch) GetValue() (interface{}, error) {
	action, err := p.GetAction()
	if err != nil {
		return nil, err
	}

	switch action {
	case Replace:
		return getRequired(p, documentKey)
	case AddPublicKeys:
		return getRequired(p, publicKeysKey)
	case RemovePublicKeys:
		return getRequired(p, idsKey)
	case AddServices:
		return getRequired(p, servicesKey)
	case RemoveServices:
		return getRequired(p, idsKey)
	default:
		return nil, fmt.Errorf("action '%s' is not supported", action)
	}
}

func getRequired(p Patch, key string) (interface{}, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("%s patch is missing key: %s", p[actionKey], key)
	}

	return v, nil
}

// NewReplacePatch creates a "replace" patch from an opaque JSON document.
func NewReplacePatch(doc string) (Patch, error) {
	var value map[string]interface{}

	if err := json.Unmarshal([]byte(doc), &value); err != nil {
		return nil, fmt.Errorf("replace patch: %w", err)
	}

	return Patch{
		actionKey:   string(Replace),
		documentKey: value,
	}, nil
}

// NewAddPublicKeysPatch creates an "add-public-keys" patch from an opaque JSON array.
func NewAddPublicKeysPatch(publicKeys string) (Patch, error) {
	var value []interface{}

	if err := json.Unmarshal([]byte(publicKeys), &value); err != nil {
		return nil, fmt.Errorf("add public keys patch: %w", err)
	}

	return Patch{
		actionKey:     string(AddPublicKeys),
		publicKeysKey: value,
	}, nil
}

// NewRemovePublicKeysPatch creates a "remove-public-keys" patch from an opaque JSON array of ids.
func NewRemovePublicKeysPatch(ids string) (Patch, error) {
	var value []interface{}

	if err := json.Unmarshal([]byte(ids), &value); err != nil {
		return nil, fmt.Errorf("remove public keys patch: %w", err)
	}

	return Patch{
		actionKey: string(RemovePublicKeys),
		idsKey:    value,
	}, nil
}

// NewAddServicesPatch creates an "add-services" patch from an opaque JSON array.
func NewAddServicesPatch(services string) (Patch, error) {
	var value []interface{}

	if err := json.Unmarshal([]byte(services), &value); err != nil {
		return nil, fmt.Errorf("add services patch: %w", err)
	}

	return Patch{
		actionKey:   string(AddServices),
		servicesKey: value,
	}, nil
}

// NewRemoveServicesPatch creates a "remove-services" patch from an opaque JSON array of ids.
func NewRemoveServicesPatch(ids string) (Patch, error) {
	var value []interface{}

	if err := json.Unmarshal([]byte(ids), &value); err != nil {
		return nil, fmt.Errorf("remove services patch: %w", err)
	}

	return Patch{
		actionKey: string(RemoveServices),
		idsKey:    value,
	}, nil
}

// PatchesFromDocument wraps an opaque initial document into the single "replace" patch
// conventionally used by create and recover operations (§4.5 notes "patches conventionally
// begin with replace").
func PatchesFromDocument(doc string) ([]Patch, error) {
	replace, err := NewReplacePatch(doc)
	if err != nil {
		return nil, err
	}

	return []Patch{replace}, nil
}
