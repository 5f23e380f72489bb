/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package doccomposer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/sidetree-resolver-core/document"
	"github.com/trustbloc/sidetree-resolver-core/patch"
)

func replacePatch(t *testing.T, doc string) patch.Patch {
	t.Helper()

	p, err := patch.NewReplacePatch(doc)
	require.NoError(t, err)

	return p
}

func TestApplyPatches_Replace(t *testing.T) {
	c := New()

	patches := []patch.Patch{replacePatch(t, `{
		"publicKeys": [{"id": "key-1", "type": "JsonWebKey2020"}],
		"services": [{"id": "svc-1", "type": "LinkedDomains", "serviceEndpoint": "https://example.com"}]
	}`)}

	doc, err := c.ApplyPatches(make(document.Document), patches)
	require.NoError(t, err)

	require.Len(t, doc.PublicKeys(), 1)
	require.Equal(t, "key-1", doc.PublicKeys()[0].ID())
	require.Len(t, doc.Services(), 1)
	require.Equal(t, "svc-1", doc.Services()[0].ID())
}

func TestApplyPatches_ReplacePreservesID(t *testing.T) {
	c := New()

	doc := document.Document{document.IDProperty: "did:example:123"}

	doc, err := c.ApplyPatches(doc, []patch.Patch{replacePatch(t, `{"publicKeys": [], "services": []}`)})
	require.NoError(t, err)

	require.Equal(t, "did:example:123", doc[document.IDProperty])
}

func TestApplyPatches_ReplaceRejectsNonObjectPublicKeys(t *testing.T) {
	c := New()

	_, err := c.ApplyPatches(make(document.Document),
		[]patch.Patch{replacePatch(t, `{"publicKeys": ["not-an-object"]}`)})
	require.Error(t, err)
}

func TestApplyPatches_AddPublicKeysMergesByID(t *testing.T) {
	c := New()

	doc := document.Document{
		document.PublicKeyProperty: []interface{}{
			map[string]interface{}{"id": "key-1", "type": "old"},
		},
	}

	addKeys, err := patch.NewAddPublicKeysPatch(`[
		{"id": "key-1", "type": "new"},
		{"id": "key-2", "type": "another"}
	]`)
	require.NoError(t, err)

	doc, err = c.ApplyPatches(doc, []patch.Patch{addKeys})
	require.NoError(t, err)

	keys := doc.PublicKeys()
	require.Len(t, keys, 2)
	require.Equal(t, "new", keys[0].Type()) // key-1 replaced in place, not appended
	require.Equal(t, "key-2", keys[1].ID())
}

func TestApplyPatches_RemovePublicKeys(t *testing.T) {
	c := New()

	doc := document.Document{
		document.PublicKeyProperty: []interface{}{
			map[string]interface{}{"id": "key-1"},
			map[string]interface{}{"id": "key-2"},
		},
	}

	removeKeys, err := patch.NewRemovePublicKeysPatch(`["key-1"]`)
	require.NoError(t, err)

	doc, err = c.ApplyPatches(doc, []patch.Patch{removeKeys})
	require.NoError(t, err)

	keys := doc.PublicKeys()
	require.Len(t, keys, 1)
	require.Equal(t, "key-2", keys[0].ID())
}

func TestApplyPatches_AddAndRemoveServices(t *testing.T) {
	c := New()

	addServices, err := patch.NewAddServicesPatch(`[{"id": "svc-1", "serviceEndpoint": "https://a"}]`)
	require.NoError(t, err)

	doc, err := c.ApplyPatches(make(document.Document), []patch.Patch{addServices})
	require.NoError(t, err)
	require.Len(t, doc.Services(), 1)

	removeServices, err := patch.NewRemoveServicesPatch(`["svc-1"]`)
	require.NoError(t, err)

	doc, err = c.ApplyPatches(doc, []patch.Patch{removeServices})
	require.NoError(t, err)
	require.Empty(t, doc.Services())
}

func TestApplyPatches_UnsupportedActionErrors(t *testing.T) {
	c := New()

	_, err := c.ApplyPatches(make(document.Document), []patch.Patch{{"action": "not-a-real-action"}})
	require.Error(t, err)
}

func TestApplyPatches_AppliesInOrder(t *testing.T) {
	c := New()

	replace := replacePatch(t, `{"publicKeys": [{"id": "key-1"}]}`)

	addKeys, err := patch.NewAddPublicKeysPatch(`[{"id": "key-2"}]`)
	require.NoError(t, err)

	doc, err := c.ApplyPatches(make(document.Document), []patch.Patch{replace, addKeys})
	require.NoError(t, err)

	require.Len(t, doc.PublicKeys(), 2)
}
