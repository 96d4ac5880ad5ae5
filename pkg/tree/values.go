// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package tree

import (
	"encoding/json"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/unitopo-adapter/pkg/path"
)

// String returns a leaf rendered as a string.
func String(n Node, key string) (string, bool) {
	v, ok := n[key]
	if !ok || v == nil {
		return "", false
	}
	return ScalarString(v), true
}

// StringOr returns a leaf rendered as a string, or def when absent.
func StringOr(n Node, key string, def string) string {
	if s, ok := String(n, key); ok {
		return s
	}
	return def
}

// Bool returns a boolean leaf. The strings "true" and "false" are accepted.
func Bool(n Node, key string) (bool, bool) {
	switch t := n[key].(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(t)
		return b, err == nil
	}
	return false, false
}

// BoolOr returns a boolean leaf, or def when absent.
func BoolOr(n Node, key string, def bool) bool {
	if b, ok := Bool(n, key); ok {
		return b
	}
	return def
}

// Uint returns an unsigned integer leaf. Numeric strings are accepted, as JSON_IETF
// encodes 64 bit integers as strings.
func Uint(n Node, key string) (uint64, bool) {
	switch t := n[key].(type) {
	case string:
		u, err := strconv.ParseUint(t, 10, 64)
		return u, err == nil
	case nil:
		return 0, false
	}
	f, ok := toFloat(n[key])
	if !ok || f < 0 || f != float64(uint64(f)) {
		return 0, false
	}
	return uint64(f), true
}

// Child returns a container.
func Child(n Node, key string) (Node, bool) {
	return AsNode(n[key])
}

// Entries returns the entries of a list, skipping anything that is not a container.
func Entries(n Node, key string) []Node {
	l, _ := AsList(n[key])
	out := make([]Node, 0, len(l))
	for _, e := range l {
		if en, ok := AsNode(e); ok {
			out = append(out, en)
		}
	}
	return out
}

// EmptyLeaf returns the JSON_IETF encoding of a set empty leaf.
func EmptyLeaf() []interface{} {
	return []interface{}{nil}
}

// HasEmpty reports whether the empty leaf key is set.
func HasEmpty(n Node, key string) bool {
	v, ok := n[key]
	if !ok {
		return false
	}
	if b, isBool := v.(bool); isBool {
		return b
	}
	return true
}

// Identity returns the local name of an identityref value, openconfig-policy-types:BGP -> BGP.
func Identity(v string) string {
	return path.StripModule(v)
}

// Decode decodes a node into a struct annotated with json tags.
func Decode(v interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(v); err != nil {
		return errors.NewInvalid("cannot decode %T: %v", out, err)
	}
	return nil
}

// Encode encodes a struct annotated with json tags into a node.
func Encode(v interface{}) (Node, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return NodeFromJSON(data)
}

// MustEncode is like Encode but panics on error. Only for values whose encoding cannot fail.
func MustEncode(v interface{}) Node {
	n, err := Encode(v)
	if err != nil {
		panic(err)
	}
	return n
}
