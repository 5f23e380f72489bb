/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package doccomposer applies a delta's patch actions to a DID document,
// turning the five actions §4.4 defines into document mutations.
package doccomposer

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/trustbloc/sidetree-resolver-core/document"
	"github.com/trustbloc/sidetree-resolver-core/patch"
)

// documentSchema bounds the shape a "replace" patch's document value must have before it is
// allowed to become document state: only the two top-level arrays the composer understands, each
// made of objects (so a stray string or scalar where an array entry is expected fails fast,
// instead of becoming state that the typed document accessors silently skip).
const documentSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"additionalProperties": true,
	"properties": {
		"publicKeys": {
			"type": "array",
			"items": {"type": "object"}
		},
		"services": {
			"type": "array",
			"items": {"type": "object"}
		}
	}
}`

var documentSchemaLoader = gojsonschema.NewStringLoader(documentSchema)

// DocumentComposer applies patches to build the next document state.
type DocumentComposer struct {
	schema *gojsonschema.Schema
}

// New creates a new DocumentComposer.
func New() *DocumentComposer {
	schema, err := gojsonschema.NewSchema(documentSchemaLoader)
	if err != nil {
		// the schema above is a compile-time constant; a failure here is a programmer error.
		panic(fmt.Sprintf("doccomposer: invalid document schema: %s", err.Error()))
	}

	return &DocumentComposer{schema: schema}
}

// ApplyPatches applies patches, in order, to doc and returns the resulting document.
func (c *DocumentComposer) ApplyPatches(doc document.Document, patches []patch.Patch) (document.Document, error) {
	var err error

	for _, p := range patches {
		doc, err = c.applyPatch(doc, p)
		if err != nil {
			return nil, err
		}
	}

	return doc, nil
}

func (c *DocumentComposer) applyPatch(doc document.Document, p patch.Patch) (document.Document, error) {
	action, err := p.GetAction()
	if err != nil {
		return nil, err
	}

	value, err := p.GetValue()
	if err != nil {
		return nil, err
	}

	switch action {
	case patch.Replace:
		return c.applyReplace(doc, value)
	case patch.AddPublicKeys:
		return applyAddPublicKeys(doc, value)
	case patch.RemovePublicKeys:
		return applyRemovePublicKeys(doc, value)
	case patch.AddServices:
		return applyAddServices(doc, value)
	case patch.RemoveServices:
		return applyRemoveServices(doc, value)
	default:
		return nil, fmt.Errorf("action '%s' is not supported", action)
	}
}

func (c *DocumentComposer) applyReplace(doc document.Document, value interface{}) (document.Document, error) {
	replacement, ok := value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected interface for document: %T", value)
	}

	result, err := c.schema.Validate(gojsonschema.NewGoLoader(replacement))
	if err != nil {
		return nil, fmt.Errorf("validate replace document: %s", err.Error())
	}

	if !result.Valid() {
		return nil, fmt.Errorf("replace document failed schema validation: %v", result.Errors())
	}

	id, hasID := doc[document.IDProperty]

	next := make(document.Document)

	if pk, ok := replacement[document.PublicKeyProperty]; ok {
		next[document.PublicKeyProperty] = pk
	}

	if svc, ok := replacement[document.ServiceProperty]; ok {
		next[document.ServiceProperty] = svc
	}

	if hasID {
		next[document.IDProperty] = id
	}

	return next, nil
}

func applyAddPublicKeys(doc document.Document, value interface{}) (document.Document, error) {
	newKeys := document.ParsePublicKeys(value)

	existing := doc.PublicKeys()

	merged := mergeByID(existing, newKeys, func(k document.PublicKey) string { return k.ID() })

	doc[document.PublicKeyProperty] = toInterfaceSlice(merged)

	return doc, nil
}

func applyRemovePublicKeys(doc document.Document, value interface{}) (document.Document, error) {
	ids, err := stringIDs(value)
	if err != nil {
		return nil, err
	}

	remove := toSet(ids)

	existing := doc.PublicKeys()
	kept := make([]document.PublicKey, 0, len(existing))

	for _, k := range existing {
		if !remove[k.ID()] {
			kept = append(kept, k)
		}
	}

	doc[document.PublicKeyProperty] = toInterfaceSlice(kept)

	return doc, nil
}

func applyAddServices(doc document.Document, value interface{}) (document.Document, error) {
	newServices := document.ParseServices(value)

	existing := doc.Services()

	merged := mergeByID(existing, newServices, func(s document.Service) string { return s.ID() })

	doc[document.ServiceProperty] = toInterfaceSlice(merged)

	return doc, nil
}

func applyRemoveServices(doc document.Document, value interface{}) (document.Document, error) {
	ids, err := stringIDs(value)
	if err != nil {
		return nil, err
	}

	remove := toSet(ids)

	existing := doc.Services()
	kept := make([]document.Service, 0, len(existing))

	for _, s := range existing {
		if !remove[s.ID()] {
			kept = append(kept, s)
		}
	}

	doc[document.ServiceProperty] = toInterfaceSlice(kept)

	return doc, nil
}

func stringIDs(value interface{}) ([]string, error) {
	arr, ok := value.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected interface for ids: %T", value)
	}

	return document.StringArray(arr), nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))

	for _, id := range ids {
		set[id] = true
	}

	return set
}

// mergeByID appends entries whose id is not already present, and replaces entries whose id
// already exists, preserving the original entry's position.
func mergeByID[T any](existing, additions []T, id func(T) string) []T {
	index := make(map[string]int, len(existing))

	for i, e := range existing {
		index[id(e)] = i
	}

	merged := append([]T{}, existing...)

	for _, a := range additions {
		if i, ok := index[id(a)]; ok {
			merged[i] = a

			continue
		}

		merged = append(merged, a)
		index[id(a)] = len(merged) - 1
	}

	return merged
}

func toInterfaceSlice[T any](in []T) []interface{} {
	out := make([]interface{}, len(in))

	for i, v := range in {
		out[i] = v
	}

	return out
}
