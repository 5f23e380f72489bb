/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jws is the public facade over internal/jws: the JWK and Headers
// types used on the wire (model.UpdateSignedDataModel.UpdateKey and friends)
// without exposing the secp256k1/compact-JWS verification internals.
package jws

import (
	internal "github.com/trustbloc/sidetree-resolver-core/internal/jws"
)

// JWK is the wire representation of a JSON Web Key.
type JWK = internal.JWK

// Headers is a compact JWS protected header set.
type Headers = internal.Headers

// HeaderAlgorithm and HeaderKeyID name the only protected-header members §4.2 permits.
const (
	HeaderAlgorithm = internal.HeaderAlgorithm
	HeaderKeyID     = internal.HeaderKeyID
)
