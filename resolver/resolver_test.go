/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package resolver

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	mh "github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/sidetree-resolver-core/api/operation"
	"github.com/trustbloc/sidetree-resolver-core/api/protocol"
	"github.com/trustbloc/sidetree-resolver-core/client"
	"github.com/trustbloc/sidetree-resolver-core/commitment"
	"github.com/trustbloc/sidetree-resolver-core/jws"
	"github.com/trustbloc/sidetree-resolver-core/mocks"
	"github.com/trustbloc/sidetree-resolver-core/patch"
	"github.com/trustbloc/sidetree-resolver-core/store"
	"github.com/trustbloc/sidetree-resolver-core/util/ecsigner"
	"github.com/trustbloc/sidetree-resolver-core/util/pubkey"
	"github.com/trustbloc/sidetree-resolver-core/versions/1_0/operationparser"
)

const multihashCode = mh.SHA2_256

// keyPair bundles a generated P-256 key with its JWK and commit-reveal values, so every test
// below reads as "the key that will next reveal commitment X" rather than raw byte soup.
type keyPair struct {
	priv   *ecdsa.PrivateKey
	jwk    *jws.JWK
	reveal string
	commit string
}

func newKeyPair(t *testing.T) *keyPair {
	t.Helper()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	jwk, err := pubkey.GetPublicKeyJWK(&priv.PublicKey)
	require.NoError(t, err)

	reveal, err := commitment.GetRevealValue(jwk, multihashCode)
	require.NoError(t, err)

	commit, err := commitment.GetCommitment(jwk, multihashCode)
	require.NoError(t, err)

	return &keyPair{priv: priv, jwk: jwk, reveal: reveal, commit: commit}
}

func testProtocolClient() *mocks.MockProtocolClient {
	pc := mocks.NewMockProtocolClient()

	version := mocks.GetProtocolVersion(protocol.Protocol{
		GenesisTime:            0,
		MultihashAlgorithms:    []uint{multihashCode},
		MaxOperationSize:       4000,
		MaxOperationHashLength: 100,
		NonceSize:              16,
		MaxDeltaSize:           4000,
		SignatureAlgorithms:    []string{"ES256"},
		KeyAlgorithms:          []string{"P-256"},
		MaxOperationsPerBatch:  100,
	})

	pc.Versions = append(pc.Versions, version)
	pc.CurrentVersion = version

	return pc
}

func documentPatch(t *testing.T, serviceEndpoint string) patch.Patch {
	t.Helper()

	p, err := patch.NewReplacePatch(`{
		"publicKeys": [],
		"services": [{"id": "svc", "type": "test", "serviceEndpoint": "` + serviceEndpoint + `"}]
	}`)
	require.NoError(t, err)

	return p
}

// buildCreate returns a create request's raw bytes and the DID suffix the protocol derives for it.
func buildCreate(t *testing.T, recovery, update *keyPair, serviceEndpoint string) ([]byte, string) {
	t.Helper()

	req, err := client.NewCreateRequest(&client.CreateRequestInfo{
		Patches:            []patch.Patch{documentPatch(t, serviceEndpoint)},
		RecoveryCommitment: recovery.commit,
		UpdateCommitment:   update.commit,
		MultihashCode:      multihashCode,
	})
	require.NoError(t, err)

	parser := operationparser.New(testProtocolClient().CurrentVersion.Protocol())

	parsed, err := parser.ParseCreateOperation(req, false)
	require.NoError(t, err)

	return req, parsed.UniqueSuffix
}

func buildUpdate(t *testing.T, didSuffix string, updateKey *keyPair, nextUpdate *keyPair, serviceEndpoint string) []byte {
	t.Helper()

	req, err := client.NewUpdateRequest(&client.UpdateRequestInfo{
		DidSuffix:        didSuffix,
		Patches:          []patch.Patch{documentPatch(t, serviceEndpoint)},
		UpdateCommitment: nextUpdate.commit,
		UpdateKey:        updateKey.jwk,
		MultihashCode:    multihashCode,
		Signer:           ecsigner.New(updateKey.priv, "ES256", "update-key"),
		RevealValue:      updateKey.reveal,
	})
	require.NoError(t, err)

	return req
}

func buildRecover(
	t *testing.T, didSuffix string, recoveryKey, nextRecovery, nextUpdate *keyPair, serviceEndpoint string,
) []byte {
	t.Helper()

	req, err := client.NewRecoverRequest(&client.RecoverRequestInfo{
		DidSuffix:          didSuffix,
		RecoveryKey:        recoveryKey.jwk,
		Patches:            []patch.Patch{documentPatch(t, serviceEndpoint)},
		RecoveryCommitment: nextRecovery.commit,
		UpdateCommitment:   nextUpdate.commit,
		MultihashCode:      multihashCode,
		Signer:             ecsigner.New(recoveryKey.priv, "ES256", "recovery-key"),
		RevealValue:        recoveryKey.reveal,
	})
	require.NoError(t, err)

	return req
}

func buildDeactivate(t *testing.T, didSuffix string, recoveryKey *keyPair) []byte {
	t.Helper()

	req, err := client.NewDeactivateRequest(&client.DeactivateRequestInfo{
		DidSuffix:   didSuffix,
		RecoveryKey: recoveryKey.jwk,
		Signer:      ecsigner.New(recoveryKey.priv, "ES256", "recovery-key"),
		RevealValue: recoveryKey.reveal,
	})
	require.NoError(t, err)

	return req
}

// anchor wraps a raw request as an AnchoredOperation at the given anchor key. revealValue is the
// operation's own top-level reveal value (absent for create).
func anchor(
	opType operation.Type, didSuffix string, req []byte, revealValue string, txnTime, txnNumber, opIndex uint64,
) *operation.AnchoredOperation {
	return &operation.AnchoredOperation{
		Type:              opType,
		UniqueSuffix:      didSuffix,
		OperationRequest:  req,
		RevealValue:       revealValue,
		TransactionTime:   txnTime,
		TransactionNumber: txnNumber,
		OperationIndex:    opIndex,
	}
}

func serviceEndpointOf(t *testing.T, doc map[string]interface{}) string {
	t.Helper()

	services, ok := doc["services"].([]interface{})
	require.True(t, ok)
	require.Len(t, services, 1)

	svc, ok := services[0].(map[string]interface{})
	require.True(t, ok)

	endpoint, _ := svc["serviceEndpoint"].(string)

	return endpoint
}

// TestResolve_CreateOnly covers scenario S1: a lone create resolves to its own document and
// commitments, not deactivated.
func TestResolve_CreateOnly(t *testing.T) {
	recovery := newKeyPair(t)
	update := newKeyPair(t)

	createReq, didSuffix := buildCreate(t, recovery, update, "https://example.com/created")

	opStore := store.New()
	require.NoError(t, opStore.Put([]*operation.AnchoredOperation{
		anchor(operation.TypeCreate, didSuffix, createReq, "", 1, 1, 0),
	}))

	r := New(opStore, testProtocolClient())

	state, err := r.Resolve(didSuffix)
	require.NoError(t, err)
	require.NotNil(t, state)

	require.False(t, state.Deactivated)
	require.Equal(t, recovery.commit, state.RecoveryCommitment)
	require.Equal(t, update.commit, state.UpdateCommitment)
	require.Equal(t, "https://example.com/created", serviceEndpointOf(t, state.Doc))
}

// TestResolve_Unknown covers testable property: resolving a suffix with no operations at all is
// "not found", not an error.
func TestResolve_Unknown(t *testing.T) {
	opStore := store.New()
	r := New(opStore, testProtocolClient())

	state, err := r.Resolve("does-not-exist")
	require.NoError(t, err)
	require.Nil(t, state)
}

// TestResolve_CreateUpdateRecoverUpdate covers scenario S2: create, an update, a recover, then
// an update against the recovered commitment, replayed in anchor order.
func TestResolve_CreateUpdateRecoverUpdate(t *testing.T) {
	recovery1 := newKeyPair(t)
	update1 := newKeyPair(t)
	update2 := newKeyPair(t)
	recovery2 := newKeyPair(t)
	update3 := newKeyPair(t)
	update4 := newKeyPair(t)

	createReq, didSuffix := buildCreate(t, recovery1, update1, "https://example.com/v0")
	update1Req := buildUpdate(t, didSuffix, update1, update2, "https://example.com/v1")
	recoverReq := buildRecover(t, didSuffix, recovery1, recovery2, update3, "https://example.com/v2")
	update3Req := buildUpdate(t, didSuffix, update3, update4, "https://example.com/v3")

	opStore := store.New()
	require.NoError(t, opStore.Put([]*operation.AnchoredOperation{
		anchor(operation.TypeCreate, didSuffix, createReq, "", 1, 1, 0),
		anchor(operation.TypeUpdate, didSuffix, update1Req, update1.reveal, 2, 2, 0),
		anchor(operation.TypeRecover, didSuffix, recoverReq, recovery1.reveal, 3, 3, 0),
		anchor(operation.TypeUpdate, didSuffix, update3Req, update3.reveal, 4, 4, 0),
	}))

	r := New(opStore, testProtocolClient())

	state, err := r.Resolve(didSuffix)
	require.NoError(t, err)
	require.NotNil(t, state)

	require.False(t, state.Deactivated)
	require.Equal(t, recovery2.commit, state.RecoveryCommitment)
	require.Equal(t, update4.commit, state.UpdateCommitment)
	require.Equal(t, "https://example.com/v3", serviceEndpointOf(t, state.Doc))
}

// TestResolve_ThreeRecoversSameReveal covers scenario S3: three recovers anchored out of order,
// all revealing the same commitment. Only the earliest-anchored one may win.
func TestResolve_ThreeRecoversSameReveal(t *testing.T) {
	recovery1 := newKeyPair(t)
	update1 := newKeyPair(t)

	createReq, didSuffix := buildCreate(t, recovery1, update1, "https://example.com/v0")

	nextA := newKeyPair(t)
	nextB := newKeyPair(t)
	nextC := newKeyPair(t)

	recoverA := buildRecover(t, didSuffix, recovery1, nextA, nextA, "https://example.com/recover-a")
	recoverB := buildRecover(t, didSuffix, recovery1, nextB, nextB, "https://example.com/recover-b")
	recoverC := buildRecover(t, didSuffix, recovery1, nextC, nextC, "https://example.com/recover-c")

	opStore := store.New()
	require.NoError(t, opStore.Put([]*operation.AnchoredOperation{
		anchor(operation.TypeCreate, didSuffix, createReq, "", 1, 1, 0),
		// anchored out of order: txn 4, then 2, then 3.
		anchor(operation.TypeRecover, didSuffix, recoverB, recovery1.reveal, 4, 4, 0),
		anchor(operation.TypeRecover, didSuffix, recoverA, recovery1.reveal, 2, 2, 0),
		anchor(operation.TypeRecover, didSuffix, recoverC, recovery1.reveal, 3, 3, 0),
	}))

	r := New(opStore, testProtocolClient())

	state, err := r.Resolve(didSuffix)
	require.NoError(t, err)
	require.NotNil(t, state)

	require.Equal(t, nextA.commit, state.RecoveryCommitment)
	require.Equal(t, "https://example.com/recover-a", serviceEndpointOf(t, state.Doc))
}

// TestResolve_ThreeUpdatesSameReveal covers scenario S4: three updates anchored out of order, all
// revealing the same commitment. Only the earliest-anchored one may win.
func TestResolve_ThreeUpdatesSameReveal(t *testing.T) {
	recovery := newKeyPair(t)
	update := newKeyPair(t)

	createReq, didSuffix := buildCreate(t, recovery, update, "https://example.com/v0")

	nextA := newKeyPair(t)
	nextB := newKeyPair(t)
	nextC := newKeyPair(t)

	updateA := buildUpdate(t, didSuffix, update, nextA, "https://example.com/update-a")
	updateB := buildUpdate(t, didSuffix, update, nextB, "https://example.com/update-b")
	updateC := buildUpdate(t, didSuffix, update, nextC, "https://example.com/update-c")

	opStore := store.New()
	require.NoError(t, opStore.Put([]*operation.AnchoredOperation{
		anchor(operation.TypeCreate, didSuffix, createReq, "", 1, 1, 0),
		anchor(operation.TypeUpdate, didSuffix, updateC, update.reveal, 4, 4, 0),
		anchor(operation.TypeUpdate, didSuffix, updateA, update.reveal, 2, 2, 0),
		anchor(operation.TypeUpdate, didSuffix, updateB, update.reveal, 3, 3, 0),
	}))

	r := New(opStore, testProtocolClient())

	state, err := r.Resolve(didSuffix)
	require.NoError(t, err)
	require.NotNil(t, state)

	require.Equal(t, nextA.commit, state.UpdateCommitment)
	require.Equal(t, "https://example.com/update-a", serviceEndpointOf(t, state.Doc))
}

// TestResolve_Deactivated covers the terminal deactivate path: once deactivated, later updates
// and recovers anchored for the same suffix are ignored, and the commitments are cleared.
func TestResolve_Deactivated(t *testing.T) {
	recovery := newKeyPair(t)
	update := newKeyPair(t)

	createReq, didSuffix := buildCreate(t, recovery, update, "https://example.com/v0")
	deactivateReq := buildDeactivate(t, didSuffix, recovery)

	nextUpdate := newKeyPair(t)
	lateUpdateReq := buildUpdate(t, didSuffix, update, nextUpdate, "https://example.com/too-late")

	opStore := store.New()
	require.NoError(t, opStore.Put([]*operation.AnchoredOperation{
		anchor(operation.TypeCreate, didSuffix, createReq, "", 1, 1, 0),
		anchor(operation.TypeDeactivate, didSuffix, deactivateReq, recovery.reveal, 2, 2, 0),
		anchor(operation.TypeUpdate, didSuffix, lateUpdateReq, update.reveal, 3, 3, 0),
	}))

	r := New(opStore, testProtocolClient())

	state, err := r.Resolve(didSuffix)
	require.NoError(t, err)
	require.NotNil(t, state)

	require.True(t, state.Deactivated)
	require.Empty(t, state.RecoveryCommitment)
	require.Empty(t, state.UpdateCommitment)
	require.Equal(t, "https://example.com/v0", serviceEndpointOf(t, state.Doc))
}

// TestResolve_NoProtocolVersion covers scenario S5: a candidate create anchored before any known
// protocol version is skipped rather than failing the whole resolve; with nothing else to try,
// the DID is reported not found.
func TestResolve_NoProtocolVersion(t *testing.T) {
	recovery := newKeyPair(t)
	update := newKeyPair(t)

	createReq, didSuffix := buildCreate(t, recovery, update, "https://example.com/v0")

	opStore := store.New()
	require.NoError(t, opStore.Put([]*operation.AnchoredOperation{
		anchor(operation.TypeCreate, didSuffix, createReq, "", 1, 1, 0),
	}))

	pc := mocks.NewMockProtocolClient()
	version := mocks.GetProtocolVersion(protocol.Protocol{
		GenesisTime:            100, // create is anchored at time 1, before this version exists.
		MultihashAlgorithms:    []uint{multihashCode},
		MaxOperationSize:       4000,
		MaxOperationHashLength: 100,
		NonceSize:              16,
		MaxDeltaSize:           4000,
		SignatureAlgorithms:    []string{"ES256"},
		KeyAlgorithms:          []string{"P-256"},
		MaxOperationsPerBatch:  100,
	})
	pc.Versions = append(pc.Versions, version)
	pc.CurrentVersion = version

	r := New(opStore, pc)

	state, err := r.Resolve(didSuffix)
	require.NoError(t, err)
	require.Nil(t, state)
}

// TestResolve_InvalidRevealIsIgnored exercises testable invariant: an operation whose reveal value
// does not match the commitment it claims to satisfy is dropped from consideration rather than
// erroring the whole resolve.
func TestResolve_InvalidRevealIsIgnored(t *testing.T) {
	recovery := newKeyPair(t)
	update := newKeyPair(t)
	wrongKey := newKeyPair(t)

	createReq, didSuffix := buildCreate(t, recovery, update, "https://example.com/v0")

	nextUpdate := newKeyPair(t)
	updateReq := buildUpdate(t, didSuffix, update, nextUpdate, "https://example.com/v1")

	opStore := store.New()
	require.NoError(t, opStore.Put([]*operation.AnchoredOperation{
		anchor(operation.TypeCreate, didSuffix, createReq, "", 1, 1, 0),
		// claims to reveal the update commitment but uses the wrong key's reveal value.
		anchor(operation.TypeUpdate, didSuffix, updateReq, wrongKey.reveal, 2, 2, 0),
	}))

	r := New(opStore, testProtocolClient())

	state, err := r.Resolve(didSuffix)
	require.NoError(t, err)
	require.NotNil(t, state)

	require.Equal(t, update.commit, state.UpdateCommitment)
	require.Equal(t, "https://example.com/v0", serviceEndpointOf(t, state.Doc))
}
