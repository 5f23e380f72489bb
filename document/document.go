/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package document defines the DID document model the resolver produces and
// the DocumentComposer mutates: public keys, service endpoints, and the
// metadata surfaced alongside a resolution result.
package document

import "encoding/json"

// Document-level and public-key/service property names.
const (
	IDProperty                 = "id"
	TypeProperty                = "type"
	PublicKeyProperty           = "publicKeys"
	ServiceProperty             = "services"
	PurposesProperty            = "purposes"
	PublicKeyJwkProperty        = "publicKeyJwk"
	PublicKeyBase58Property     = "publicKeyBase58"
	ServiceEndpointProperty     = "serviceEndpoint"

	// DocumentMetadata / method-metadata property names.
	PublishedProperty             = "published"
	RecoveryCommitmentProperty    = "recoveryCommitment"
	UpdateCommitmentProperty      = "updateCommitment"
	MethodProperty                = "method"
	DeactivatedProperty           = "deactivated"
	CanonicalIDProperty           = "canonicalId"
	EquivalentIDProperty          = "equivalentId"
	CreatedProperty               = "created"
	UpdatedProperty                = "updated"
	AnchorOriginProperty           = "anchorOrigin"
	PublishedOperationsProperty     = "publishedOperations"
	UnpublishedOperationsProperty   = "unpublishedOperations"
)

// KeyPurpose defines the allowed purposes of a verification method.
type KeyPurpose = string

// Allowed key purposes.
const (
	KeyPurposeAuthentication       KeyPurpose = "authentication"
	KeyPurposeAssertionMethod      KeyPurpose = "assertionMethod"
	KeyPurposeKeyAgreement         KeyPurpose = "keyAgreement"
	KeyPurposeCapabilityDelegation KeyPurpose = "capabilityDelegation"
	KeyPurposeCapabilityInvocation KeyPurpose = "capabilityInvocation"
)

// JWK is the minimal JSON Web Key view the document package needs: enough to
// validate shape without depending on the jws package (avoids an import cycle,
// since jws.JWK verification lives a layer above document composition).
type JWK map[string]interface{}

// Validate checks that the JWK carries the mandatory "kty" member.
func (j JWK) Validate() error {
	if j == nil {
		return errValue("kty")
	}

	if _, ok := j["kty"]; !ok {
		return errValue("kty")
	}

	return nil
}

func errValue(member string) error {
	return &missingMemberError{member: member}
}

type missingMemberError struct {
	member string
}

func (e *missingMemberError) Error() string {
	return "jwk: missing required member '" + e.member + "'"
}

// PublicKey is a verification method entry in the document's publicKeys array.
type PublicKey map[string]interface{}

// ID returns the key's id.
func (pk PublicKey) ID() string {
	return stringValue(pk, IDProperty)
}

// Type returns the key's type.
func (pk PublicKey) Type() string {
	return stringValue(pk, TypeProperty)
}

// Purpose returns the key's purposes array, if any.
func (pk PublicKey) Purpose() []string {
	return stringArrayValue(pk, PurposesProperty)
}

// PublicKeyJwk returns the key's JWK value, if present.
func (pk PublicKey) PublicKeyJwk() JWK {
	raw, ok := pk[PublicKeyJwkProperty]
	if !ok {
		return nil
	}

	switch v := raw.(type) {
	case JWK:
		return v
	case map[string]interface{}:
		return JWK(v)
	default:
		return nil
	}
}

// PublicKeyBase58 returns the key's base58-encoded raw value, if present.
func (pk PublicKey) PublicKeyBase58() string {
	return stringValue(pk, PublicKeyBase58Property)
}

// Service is a service-endpoint entry in the document's services array.
type Service map[string]interface{}

// ID returns the service's id.
func (s Service) ID() string {
	return stringValue(s, IDProperty)
}

// Type returns the service's type.
func (s Service) Type() string {
	return stringValue(s, TypeProperty)
}

// ServiceEndpoint returns the raw serviceEndpoint value (string, []string or []interface{}).
func (s Service) ServiceEndpoint() interface{} {
	return s[ServiceEndpointProperty]
}

// Document is the DID document state the resolver builds and the composer mutates.
type Document map[string]interface{}

// PublicKeys returns the document's typed public keys.
func (d Document) PublicKeys() []PublicKey {
	return ParsePublicKeys(d[PublicKeyProperty])
}

// Services returns the document's typed services.
func (d Document) Services() []Service {
	return ParseServices(d[ServiceProperty])
}

// Bytes marshals the document to JSON.
func (d Document) Bytes() ([]byte, error) {
	return json.Marshal(d)
}

// ParsePublicKeys converts a raw JSON value (typically []interface{} from unmarshalling into
// map[string]interface{}) into typed PublicKey entries.
func ParsePublicKeys(raw interface{}) []PublicKey {
	arr, ok := raw.([]interface{})
	if !ok {
		if typed, ok := raw.([]PublicKey); ok {
			return typed
		}

		return nil
	}

	keys := make([]PublicKey, 0, len(arr))

	for _, entry := range arr {
		if m, ok := entry.(map[string]interface{}); ok {
			keys = append(keys, PublicKey(m))
		} else if pk, ok := entry.(PublicKey); ok {
			keys = append(keys, pk)
		}
	}

	return keys
}

// ParseServices converts a raw JSON value into typed Service entries.
func ParseServices(raw interface{}) []Service {
	arr, ok := raw.([]interface{})
	if !ok {
		if typed, ok := raw.([]Service); ok {
			return typed
		}

		return nil
	}

	services := make([]Service, 0, len(arr))

	for _, entry := range arr {
		if m, ok := entry.(map[string]interface{}); ok {
			services = append(services, Service(m))
		} else if s, ok := entry.(Service); ok {
			services = append(services, s)
		}
	}

	return services
}

// StringArray converts a raw []interface{} of strings into a []string, skipping non-strings.
func StringArray(raw []interface{}) []string {
	out := make([]string, 0, len(raw))

	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}

	return out
}

func stringValue(m map[string]interface{}, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}

	s, _ := v.(string) //nolint:errcheck

	return s
}

func stringArrayValue(m map[string]interface{}, key string) []string {
	v, ok := m[key]
	if !ok {
		return nil
	}

	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}

	return StringArray(arr)
}

// Metadata is a generic string-keyed metadata map (document metadata, or the nested "method" entry).
type Metadata map[string]interface{}

// ResolutionResult is returned by the resolver: the document plus metadata (method metadata nested
// under document.MethodProperty).
type ResolutionResult struct {
	Document         Document `json:"didDocument"`
	DocumentMetadata Metadata `json:"didDocumentMetadata,omitempty"`
}
