/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package observer

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/sidetree-resolver-core/api/operation"
	"github.com/trustbloc/sidetree-resolver-core/mocks"
	"github.com/trustbloc/sidetree-resolver-core/versions/1_0/txnprovider/models"
)

// recordingSink is a ReferenceSink that remembers every Put call, for assertions.
type recordingSink struct {
	mutex sync.Mutex
	calls []sinkCall
	err   error
}

type sinkCall struct {
	txnTime, txnNumber uint64
	refs               []operation.Reference
}

func (s *recordingSink) Put(txnTime, txnNumber uint64, refs []operation.Reference) error {
	if s.err != nil {
		return s.err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.calls = append(s.calls, sinkCall{txnTime: txnTime, txnNumber: txnNumber, refs: refs})

	return nil
}

func mapFileWithUpdates(t *testing.T, suffixes ...string) []byte {
	t.Helper()

	var updates []models.UpdateReference
	for _, s := range suffixes {
		updates = append(updates, models.UpdateReference{DidSuffix: s, SignedData: "signed-data-" + s})
	}

	mf := models.NewMapFile("chunk-file-cid", updates)

	compressed, err := mf.Compress()
	require.NoError(t, err)

	return compressed
}

func TestObserver_DrainProcessesEveryPendingTransaction(t *testing.T) {
	ledger := mocks.NewMockAnchorWriter(nil)
	cas := mocks.NewMockCasClient()
	sink := &recordingSink{}

	cidOne, err := cas.Write(mapFileWithUpdates(t, "suffix-one"))
	require.NoError(t, err)

	cidTwo, err := cas.Write(mapFileWithUpdates(t, "suffix-two", "suffix-three"))
	require.NoError(t, err)

	require.NoError(t, ledger.WriteAnchor(cidOne))
	require.NoError(t, ledger.WriteAnchor(cidTwo))

	o := New(&Providers{Ledger: ledger, CAS: cas, Sink: sink})
	o.drain()

	sink.mutex.Lock()
	defer sink.mutex.Unlock()

	require.Len(t, sink.calls, 2)
	require.Len(t, sink.calls[0].refs, 1)
	require.Equal(t, "suffix-one", sink.calls[0].refs[0].UniqueSuffix)
	require.Len(t, sink.calls[1].refs, 2)
	require.Equal(t, "suffix-two", sink.calls[1].refs[0].UniqueSuffix)
	require.Equal(t, "suffix-three", sink.calls[1].refs[1].UniqueSuffix)

	require.Equal(t, 1, o.lastTxnNumber) // advanced past both transactions
}

func TestObserver_DrainIsIdempotentWhenNothingNew(t *testing.T) {
	ledger := mocks.NewMockAnchorWriter(nil)
	cas := mocks.NewMockCasClient()
	sink := &recordingSink{}

	o := New(&Providers{Ledger: ledger, CAS: cas, Sink: sink})
	o.drain()

	require.Empty(t, sink.calls)
	require.Equal(t, -1, o.lastTxnNumber)
}

func TestObserver_DrainStopsOnCasReadError(t *testing.T) {
	ledger := mocks.NewMockAnchorWriter(nil)
	cas := mocks.NewMockCasClient()
	cas.ReadErr = errors.New("cas unavailable")

	sink := &recordingSink{}

	require.NoError(t, ledger.WriteAnchor("missing-cid"))

	o := New(&Providers{Ledger: ledger, CAS: cas, Sink: sink})
	o.drain()

	require.Empty(t, sink.calls)
	require.Equal(t, -1, o.lastTxnNumber)
}

func TestObserver_StartStop(t *testing.T) {
	ledger := mocks.NewMockAnchorWriter(nil)
	cas := mocks.NewMockCasClient()
	sink := &recordingSink{}

	cid, err := cas.Write(mapFileWithUpdates(t, "suffix-one"))
	require.NoError(t, err)
	require.NoError(t, ledger.WriteAnchor(cid))

	o := New(&Providers{Ledger: ledger, CAS: cas, Sink: sink}, WithPollInterval(time.Millisecond))
	o.Start()
	o.Stop()
}
