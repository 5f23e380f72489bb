/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package canonicalizer implements deterministic JSON marshaling (JCS-style:
// sorted object keys, no insignificant whitespace) so that two semantically
// equal values always hash to the same multihash (§4.1).
package canonicalizer

import (
	"bytes"
	"encoding/json"
	"sort"
)

// MarshalCanonical marshals v to its canonical JSON form: object members sorted
// lexicographically by key, compact (no extra whitespace), matching RFC 8785's
// output shape for the value classes this protocol produces.
func MarshalCanonical(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := encode(&buf, generic); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func encode(buf *bytes.Buffer, v interface{}) error {
	switch val := v.(type) {
	case map[string]interface{}:
		return encodeObject(buf, val)
	case []interface{}:
		return encodeArray(buf, val)
	default:
		enc, err := json.Marshal(val)
		if err != nil {
			return err
		}

		buf.Write(enc)

		return nil
	}
}

func encodeObject(buf *bytes.Buffer, m map[string]interface{}) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	buf.WriteByte('{')

	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyBytes, err := json.Marshal(k)
		if err != nil {
			return err
		}

		buf.Write(keyBytes)
		buf.WriteByte(':')

		if err := encode(buf, m[k]); err != nil {
			return err
		}
	}

	buf.WriteByte('}')

	return nil
}

func encodeArray(buf *bytes.Buffer, arr []interface{}) error {
	buf.WriteByte('[')

	for i, v := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}

		if err := encode(buf, v); err != nil {
			return err
		}
	}

	buf.WriteByte(']')

	return nil
}
