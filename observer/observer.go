/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package observer wires the out-of-scope ledger adapter and CAS into the
// in-scope MapFile parser, polling the ledger for new transactions and
// turning each one into the update-operation references its map file
// declares (§4.3: the map file only yields update-operation skeletons, not
// full operation requests, so this is as far as ingestion can go without a
// chunk-file reader - out of scope per §1). A caller that does have a
// chunk-file reader hydrates these references into full AnchoredOperations
// and feeds them to store.OperationStore.Put itself.
package observer

import (
	"time"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/pkg/errors"

	"github.com/trustbloc/sidetree-resolver-core/api/cas"
	"github.com/trustbloc/sidetree-resolver-core/api/operation"
	"github.com/trustbloc/sidetree-resolver-core/api/txn"
	"github.com/trustbloc/sidetree-resolver-core/versions/1_0/txnprovider/models"
)

var logger = log.New("sidetree-resolver-core/observer")

const defaultPollInterval = 200 * time.Millisecond

// Ledger is the out-of-scope ledger adapter's read side: Read returns the transaction immediately
// after sinceTransactionNumber, and whether further transactions remain beyond it.
type Ledger interface {
	Read(sinceTransactionNumber int) (bool, *txn.SidetreeTxn)
}

// ReferenceSink receives the update-operation references a map file declared for one transaction.
// A real deployment would hydrate these into AnchoredOperations via a chunk-file reader and call
// store.OperationStore.Put; this package stops at handing them over.
type ReferenceSink interface {
	Put(txnTime, txnNumber uint64, refs []operation.Reference) error
}

// Providers bundles observer's external collaborators.
type Providers struct {
	Ledger Ledger
	CAS    cas.CAS
	Sink   ReferenceSink
}

// Observer polls Ledger for new transactions and feeds the map file they reference through CAS
// and the map file parser.
type Observer struct {
	providers     *Providers
	pollInterval  time.Duration
	lastTxnNumber int
	stopCh        chan struct{}
	doneCh        chan struct{}
}

// Option configures an Observer.
type Option func(*Observer)

// WithPollInterval overrides the default ledger polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(o *Observer) { o.pollInterval = d }
}

// New creates an Observer over providers.
func New(providers *Providers, opts ...Option) *Observer {
	o := &Observer{
		providers:     providers,
		pollInterval:  defaultPollInterval,
		lastTxnNumber: -1,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Start begins polling the ledger in a background goroutine.
func (o *Observer) Start() {
	go o.run()
}

// Stop signals the polling goroutine to exit and waits for it to do so.
func (o *Observer) Stop() {
	close(o.stopCh)
	<-o.doneCh
}

func (o *Observer) run() {
	defer close(o.doneCh)

	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-o.stopCh:
			return
		case <-ticker.C:
			o.drain()
		}
	}
}

// drain processes every transaction the ledger has beyond lastTxnNumber.
func (o *Observer) drain() {
	for {
		more, t := o.providers.Ledger.Read(o.lastTxnNumber)
		if t == nil {
			return
		}

		if err := o.processTxn(t); err != nil {
			logger.Errorf("observer: process transaction %d: %s", t.TransactionNumber, err)
			return
		}

		o.lastTxnNumber = int(t.TransactionNumber)

		if !more {
			return
		}
	}
}

func (o *Observer) processTxn(t *txn.SidetreeTxn) error {
	raw, err := o.providers.CAS.Read(t.AnchorString)
	if err != nil {
		return errors.Wrapf(err, "read map file %s from cas", t.AnchorString)
	}

	mf, err := models.ParseMapFile(raw)
	if err != nil {
		return errors.Wrap(err, "parse map file")
	}

	refs := updateReferences(mf)

	logger.Debugf("observer: transaction %d declares %d update operation(s)", t.TransactionNumber, len(refs))

	if o.providers.Sink == nil || len(refs) == 0 {
		return nil
	}

	return o.providers.Sink.Put(t.TransactionTime, t.TransactionNumber, refs)
}

func updateReferences(mf *models.MapFile) []operation.Reference {
	if mf.Operations == nil {
		return nil
	}

	refs := make([]operation.Reference, 0, len(mf.Operations.Update))

	for _, u := range mf.Operations.Update {
		refs = append(refs, operation.Reference{UniqueSuffix: u.DidSuffix, Type: operation.TypeUpdate})
	}

	return refs
}
