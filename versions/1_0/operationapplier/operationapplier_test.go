/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operationapplier

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"testing"

	mh "github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/sidetree-resolver-core/api/operation"
	"github.com/trustbloc/sidetree-resolver-core/api/protocol"
	"github.com/trustbloc/sidetree-resolver-core/client"
	"github.com/trustbloc/sidetree-resolver-core/commitment"
	"github.com/trustbloc/sidetree-resolver-core/jws"
	"github.com/trustbloc/sidetree-resolver-core/patch"
	"github.com/trustbloc/sidetree-resolver-core/util/ecsigner"
	"github.com/trustbloc/sidetree-resolver-core/util/pubkey"
	"github.com/trustbloc/sidetree-resolver-core/versions/1_0/model"
)

const multihashCode = mh.SHA2_256

func testProtocol() protocol.Protocol {
	return protocol.Protocol{
		GenesisTime:            0,
		MultihashAlgorithms:    []uint{multihashCode},
		MaxOperationSize:       4000,
		MaxOperationHashLength: 100,
		NonceSize:              16,
		MaxDeltaSize:           4000,
		SignatureAlgorithms:    []string{"ES256"},
		KeyAlgorithms:          []string{"P-256"},
		MaxOperationsPerBatch:  100,
	}
}

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

func servicePatch(t *testing.T, endpoint string) patch.Patch {
	t.Helper()

	p, err := patch.NewReplacePatch(`{"publicKeys": [], "services": [{"id": "svc", "serviceEndpoint": "` + endpoint + `"}]}`)
	require.NoError(t, err)

	return p
}

func TestApply_Create(t *testing.T) {
	recovery := newKeyPair(t)
	update := newKeyPair(t)

	req, err := client.NewCreateRequest(&client.CreateRequestInfo{
		Patches:            []patch.Patch{servicePatch(t, "https://example.com")},
		RecoveryCommitment: recovery.commit,
		UpdateCommitment:   update.commit,
		MultihashCode:      multihashCode,
	})
	require.NoError(t, err)

	a := New(testProtocol())

	anchored := &operation.AnchoredOperation{
		Type: operation.TypeCreate, OperationRequest: req, TransactionTime: 10, TransactionNumber: 1,
	}

	state, err := a.Apply(anchored, nil)
	require.NoError(t, err)

	require.Equal(t, recovery.commit, state.RecoveryCommitment)
	require.Equal(t, update.commit, state.UpdateCommitment)
	require.Equal(t, uint64(10), state.LastOperationTransactionTime)
	require.Equal(t, uint64(10), state.CreatedTime)
	require.False(t, state.Deactivated)
}

func buildUpdateOp(t *testing.T, updateKey, nextUpdate *keyPair, endpoint string) []byte {
	t.Helper()

	req, err := client.NewUpdateRequest(&client.UpdateRequestInfo{
		DidSuffix:        "suffix",
		Patches:          []patch.Patch{servicePatch(t, endpoint)},
		UpdateCommitment: nextUpdate.commit,
		UpdateKey:        updateKey.jwk,
		MultihashCode:    multihashCode,
		Signer:           ecsigner.New(updateKey.priv, "ES256", "update-key"),
		RevealValue:      updateKey.reveal,
	})
	require.NoError(t, err)

	return req
}

func TestApply_UpdateSuccess(t *testing.T) {
	update := newKeyPair(t)
	nextUpdate := newKeyPair(t)

	req := buildUpdateOp(t, update, nextUpdate, "https://example.com/updated")

	a := New(testProtocol())

	prior := &protocol.ResolutionModel{
		Doc:                make(map[string]interface{}),
		RecoveryCommitment: "recovery-commitment",
		UpdateCommitment:   update.commit,
	}

	anchored := &operation.AnchoredOperation{
		Type: operation.TypeUpdate, OperationRequest: req, RevealValue: update.reveal,
		TransactionTime: 20, TransactionNumber: 1,
	}

	state, err := a.Apply(anchored, prior)
	require.NoError(t, err)

	require.Equal(t, nextUpdate.commit, state.UpdateCommitment)
	require.Equal(t, "recovery-commitment", state.RecoveryCommitment)
	require.Equal(t, uint64(20), state.LastOperationTransactionTime)
}

func TestApply_UpdateWrongRevealIsRejected(t *testing.T) {
	update := newKeyPair(t)
	wrongKey := newKeyPair(t)
	nextUpdate := newKeyPair(t)

	req := buildUpdateOp(t, update, nextUpdate, "https://example.com/updated")

	a := New(testProtocol())

	prior := &protocol.ResolutionModel{
		Doc:                make(map[string]interface{}),
		RecoveryCommitment: "recovery-commitment",
		UpdateCommitment:   update.commit,
	}

	anchored := &operation.AnchoredOperation{
		Type: operation.TypeUpdate, OperationRequest: req, RevealValue: wrongKey.reveal,
		TransactionTime: 20, TransactionNumber: 1,
	}

	_, err := a.Apply(anchored, prior)
	require.Error(t, err)
}

func TestApply_UpdateAgainstDeactivatedIsRejected(t *testing.T) {
	update := newKeyPair(t)
	nextUpdate := newKeyPair(t)

	req := buildUpdateOp(t, update, nextUpdate, "https://example.com/updated")

	a := New(testProtocol())

	prior := &protocol.ResolutionModel{
		Doc:                make(map[string]interface{}),
		UpdateCommitment:   update.commit,
		Deactivated:        true,
	}

	anchored := &operation.AnchoredOperation{
		Type: operation.TypeUpdate, OperationRequest: req, RevealValue: update.reveal,
		TransactionTime: 20, TransactionNumber: 1,
	}

	_, err := a.Apply(anchored, prior)
	require.Error(t, err)
}

func TestApply_RecoverSuccess(t *testing.T) {
	recovery := newKeyPair(t)
	nextRecovery := newKeyPair(t)
	nextUpdate := newKeyPair(t)

	req, err := client.NewRecoverRequest(&client.RecoverRequestInfo{
		DidSuffix:          "suffix",
		RecoveryKey:        recovery.jwk,
		Patches:            []patch.Patch{servicePatch(t, "https://example.com/recovered")},
		RecoveryCommitment: nextRecovery.commit,
		UpdateCommitment:   nextUpdate.commit,
		MultihashCode:      multihashCode,
		Signer:             ecsigner.New(recovery.priv, "ES256", "recovery-key"),
		RevealValue:        recovery.reveal,
	})
	require.NoError(t, err)

	a := New(testProtocol())

	prior := &protocol.ResolutionModel{
		Doc:                make(map[string]interface{}),
		RecoveryCommitment: recovery.commit,
		UpdateCommitment:   "stale-update-commitment",
		CreatedTime:        5,
	}

	anchored := &operation.AnchoredOperation{
		Type: operation.TypeRecover, OperationRequest: req, RevealValue: recovery.reveal,
		TransactionTime: 30, TransactionNumber: 1,
	}

	state, err := a.Apply(anchored, prior)
	require.NoError(t, err)

	require.Equal(t, nextRecovery.commit, state.RecoveryCommitment)
	require.Equal(t, nextUpdate.commit, state.UpdateCommitment)
	require.Equal(t, uint64(5), state.CreatedTime) // preserved across recover
	require.Equal(t, uint64(30), state.LastOperationTransactionTime)
}

func TestApply_DeactivateSuccess(t *testing.T) {
	recovery := newKeyPair(t)

	req, err := client.NewDeactivateRequest(&client.DeactivateRequestInfo{
		DidSuffix:   "suffix",
		RecoveryKey: recovery.jwk,
		Signer:      ecsigner.New(recovery.priv, "ES256", "recovery-key"),
		RevealValue: recovery.reveal,
	})
	require.NoError(t, err)

	a := New(testProtocol())

	prior := &protocol.ResolutionModel{
		Doc:                map[string]interface{}{"id": "did:example:suffix"},
		RecoveryCommitment: recovery.commit,
		UpdateCommitment:   "some-update-commitment",
	}

	anchored := &operation.AnchoredOperation{
		Type: operation.TypeDeactivate, OperationRequest: req, RevealValue: recovery.reveal,
		TransactionTime: 40, TransactionNumber: 1,
	}

	state, err := a.Apply(anchored, prior)
	require.NoError(t, err)

	require.True(t, state.Deactivated)
	require.Empty(t, state.RecoveryCommitment)
	require.Empty(t, state.UpdateCommitment)
	require.Equal(t, "did:example:suffix", state.Doc["id"])
}

func TestApply_DeactivateAgainstAlreadyDeactivatedIsRejected(t *testing.T) {
	recovery := newKeyPair(t)

	req, err := client.NewDeactivateRequest(&client.DeactivateRequestInfo{
		DidSuffix:   "suffix",
		RecoveryKey: recovery.jwk,
		Signer:      ecsigner.New(recovery.priv, "ES256", "recovery-key"),
		RevealValue: recovery.reveal,
	})
	require.NoError(t, err)

	a := New(testProtocol())

	prior := &protocol.ResolutionModel{
		RecoveryCommitment: recovery.commit,
		Deactivated:        true,
	}

	anchored := &operation.AnchoredOperation{
		Type: operation.TypeDeactivate, OperationRequest: req, RevealValue: recovery.reveal,
		TransactionTime: 40, TransactionNumber: 1,
	}

	_, err = a.Apply(anchored, prior)
	require.Error(t, err)
}

func TestApply_UnsupportedOperationTypeErrors(t *testing.T) {
	a := New(testProtocol())

	anchored := &operation.AnchoredOperation{
		Type:             "bogus",
		OperationRequest: []byte(`{"type":"bogus"}`),
	}

	_, err := a.Apply(anchored, nil)
	require.Error(t, err)
}

// TestApply_TrustsAnAlreadyAnchoredForgedDelta documents that Apply re-parses op.OperationRequest
// in batch mode: it is not where a forged delta_hash gets caught. That check runs once, at
// submission time, via operationparser.Parser.ParseAndAnchor, before an operation is ever handed
// to an OperationStore. An operation that reaches Apply is assumed to have already passed through
// that gate; Apply only re-derives the parsed shape needed to compute the next state.
func TestApply_TrustsAnAlreadyAnchoredForgedDelta(t *testing.T) {
	recovery := newKeyPair(t)
	update := newKeyPair(t)

	req, err := client.NewCreateRequest(&client.CreateRequestInfo{
		Patches:            []patch.Patch{servicePatch(t, "https://example.com")},
		RecoveryCommitment: recovery.commit,
		UpdateCommitment:   update.commit,
		MultihashCode:      multihashCode,
	})
	require.NoError(t, err)

	var parsed model.CreateRequest
	require.NoError(t, json.Unmarshal(req, &parsed))
	parsed.Delta.Patches = []patch.Patch{servicePatch(t, "https://attacker.example")}
	tampered, err := json.Marshal(parsed)
	require.NoError(t, err)

	a := New(testProtocol())

	anchored := &operation.AnchoredOperation{
		Type: operation.TypeCreate, OperationRequest: tampered, TransactionTime: 10, TransactionNumber: 1,
	}

	state, err := a.Apply(anchored, nil)
	require.NoError(t, err) // Apply does not re-run the delta_hash check; this is why it must run earlier
	require.Equal(t, "https://attacker.example", state.Doc.Services()[0].ServiceEndpoint())
}
