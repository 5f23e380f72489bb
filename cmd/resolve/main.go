/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Command resolve is a tiny CLI front-end: it loads a JSON fixture of raw
// operation requests, each with its anchor key, validates each one through the
// protocol version's OperationParser, puts the results into an in-memory
// OperationStore and resolves one DID suffix against it, printing the
// resulting ResolutionModel. It exists as
// the ambient entrypoint a complete repository ships, not as part of the
// resolution core itself.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	mh "github.com/multiformats/go-multihash"

	"github.com/trustbloc/sidetree-resolver-core/api/operation"
	"github.com/trustbloc/sidetree-resolver-core/api/protocol"
	"github.com/trustbloc/sidetree-resolver-core/mocks"
	"github.com/trustbloc/sidetree-resolver-core/resolver"
	"github.com/trustbloc/sidetree-resolver-core/store"
)

func main() {
	fixturePath := flag.String("fixture", "", "path to a JSON file containing an array of anchored operations")
	didSuffix := flag.String("suffix", "", "DID suffix to resolve")
	flag.Parse()

	if *fixturePath == "" || *didSuffix == "" {
		fmt.Fprintln(os.Stderr, "usage: resolve -fixture <path> -suffix <did-suffix>")
		os.Exit(2)
	}

	if err := run(*fixturePath, *didSuffix); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(fixturePath, didSuffix string) error {
	protocolClient := defaultProtocolClient()

	ops, err := loadFixture(fixturePath, protocolClient)
	if err != nil {
		return fmt.Errorf("load fixture: %w", err)
	}

	opStore := store.New()
	if err := opStore.Put(ops); err != nil {
		return fmt.Errorf("load operations into store: %w", err)
	}

	r := resolver.New(opStore, protocolClient)

	state, err := r.Resolve(didSuffix)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", didSuffix, err)
	}

	if state == nil {
		return fmt.Errorf("did suffix %s not found", didSuffix)
	}

	out, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	fmt.Println(string(out))

	return nil
}

// anchoredFixtureEntry is the on-disk fixture shape: a raw operation request plus the anchor key
// it was given when it was (for fixture purposes) anchored. Unlike an operation.AnchoredOperation,
// it never carries pre-built SignedData/RevealValue/etc. fields directly - those are derived by
// running the request through the protocol version's OperationParser, exactly as a real submission
// path would, so a fixture can't smuggle an operation into the store that never actually passed
// structural validation.
type anchoredFixtureEntry struct {
	OperationRequest  json.RawMessage `json:"operation_request"`
	TransactionTime   uint64          `json:"transaction_time"`
	TransactionNumber uint64          `json:"transaction_number"`
	OperationIndex    uint64          `json:"operation_index"`
}

func loadFixture(path string, protocolClient protocol.Client) ([]*operation.AnchoredOperation, error) {
	raw, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, err
	}

	var entries []anchoredFixtureEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}

	ops := make([]*operation.AnchoredOperation, 0, len(entries))

	for i, entry := range entries {
		version, err := protocolClient.Get(entry.TransactionTime)
		if err != nil {
			return nil, fmt.Errorf("fixture entry %d: %w", i, err)
		}

		anchored, err := version.OperationParser().ParseAndAnchor(entry.OperationRequest)
		if err != nil {
			return nil, fmt.Errorf("fixture entry %d: validate operation request: %w", i, err)
		}

		anchored.TransactionTime = entry.TransactionTime
		anchored.TransactionNumber = entry.TransactionNumber
		anchored.OperationIndex = entry.OperationIndex

		ops = append(ops, anchored)
	}

	return ops, nil
}

// defaultProtocolClient returns a single-version protocol.Client effective from genesis, with
// a fixed parameter set accepting SHA2-256/SHA2-512 and EdDSA/ES256/ES256K keys.
func defaultProtocolClient() protocol.Client {
	pc := mocks.NewMockProtocolClient()

	version := mocks.GetProtocolVersion(protocol.Protocol{
		GenesisTime:            0,
		MultihashAlgorithms:    []uint{mh.SHA2_256, mh.SHA2_512},
		MaxOperationSize:       2000,
		MaxOperationHashLength: 100,
		NonceSize:              16,
		MaxDeltaSize:           2000,
		SignatureAlgorithms:    []string{"EdDSA", "ES256", "ES256K"},
		KeyAlgorithms:          []string{"Ed25519", "P-256", "secp256k1"},
		MaxOperationsPerBatch:  100,
	})

	pc.Versions = append(pc.Versions, version)
	pc.CurrentVersion = version

	return pc
}
