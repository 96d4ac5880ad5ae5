// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package tree implements schema-light JSON_IETF data trees.
//
// Containers and list entries are Nodes, lists are []interface{} of Nodes, and an
// empty leaf is encoded as [null]. List keys are known through a Schema.
package tree

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/unitopo-adapter/pkg/path"
)

// Node is a container or list entry.
type Node = map[string]interface{}

// AsNode returns v as a Node.
func AsNode(v interface{}) (Node, bool) {
	n, ok := v.(map[string]interface{})
	return n, ok
}

// AsList returns v as a list.
func AsList(v interface{}) ([]interface{}, bool) {
	l, ok := v.([]interface{})
	return l, ok
}

// Get returns the value addressed by id.
func Get(root Node, id path.IID) (interface{}, bool) {
	if root == nil {
		return nil, false
	}
	var cur interface{} = root
	for n := 0; n < id.Len(); n++ {
		node, ok := AsNode(cur)
		if !ok {
			return nil, false
		}
		child, ok := node[id.Name(n)]
		if !ok {
			return nil, false
		}
		keys := id.Keys(n)
		if len(keys) == 0 {
			cur = child
			continue
		}
		list, ok := AsList(child)
		if !ok {
			return nil, false
		}
		_, entry := findEntry(list, keys)
		if entry == nil {
			return nil, false
		}
		cur = entry
	}
	return cur, true
}

// GetNode is like Get but only succeeds for containers and list entries.
func GetNode(root Node, id path.IID) (Node, bool) {
	v, ok := Get(root, id)
	if !ok {
		return nil, false
	}
	return AsNode(v)
}

// Set replaces the value addressed by id, creating missing containers and list entries.
func Set(root Node, id path.IID, value interface{}) error {
	value = Normalize(value)
	if id.IsRoot() {
		n, ok := AsNode(value)
		if !ok {
			return errors.NewInvalid("root value must be a container")
		}
		for k := range root {
			delete(root, k)
		}
		for k, v := range n {
			root[k] = v
		}
		return nil
	}
	parent, err := ensure(root, id.Parent())
	if err != nil {
		return err
	}
	name, keys := id.Last()
	if len(keys) == 0 {
		parent[name] = value
		return nil
	}
	entry, ok := AsNode(value)
	if !ok {
		return errors.NewInvalid("list entry %s must be a container", id)
	}
	for k, v := range keys {
		if _, ok := entry[k]; !ok {
			entry[k] = v
		}
	}
	list, _ := AsList(parent[name])
	if idx, old := findEntry(list, keys); old != nil {
		list[idx] = entry
		return nil
	}
	parent[name] = append(list, entry)
	return nil
}

// Merge merges value into the value addressed by id.
func Merge(root Node, id path.IID, value interface{}, s *Schema) error {
	existing, ok := Get(root, id)
	if !ok {
		return Set(root, id, value)
	}
	value = Normalize(value)
	dst, dstNode := AsNode(existing)
	src, srcNode := AsNode(value)
	if dstNode && srcNode {
		MergeNodes(dst, src, id.Schema(), s)
		return nil
	}
	dl, dstList := AsList(existing)
	sl, srcList := AsList(value)
	if dstList && srcList {
		return Set(root, id, mergeLists(dl, sl, id.Schema(), s))
	}
	return Set(root, id, value)
}

// Delete removes the value addressed by id. It reports whether anything was removed.
func Delete(root Node, id path.IID) bool {
	if root == nil {
		return false
	}
	if id.IsRoot() {
		removed := len(root) > 0
		for k := range root {
			delete(root, k)
		}
		return removed
	}
	parent, ok := GetNode(root, id.Parent())
	if !ok {
		return false
	}
	name, keys := id.Last()
	if len(keys) == 0 {
		_, ok := parent[name]
		delete(parent, name)
		return ok
	}
	list, ok := AsList(parent[name])
	if !ok {
		return false
	}
	idx, entry := findEntry(list, keys)
	if entry == nil {
		return false
	}
	list = append(list[:idx], list[idx+1:]...)
	if len(list) == 0 {
		delete(parent, name)
	} else {
		parent[name] = list
	}
	return true
}

// MergeNodes recursively merges src into dst. schemaPath is the keyless path of dst.
func MergeNodes(dst Node, src Node, schemaPath string, s *Schema) {
	for k, sv := range src {
		childPath := joinSchema(schemaPath, k)
		dv, exists := dst[k]
		if !exists {
			dst[k] = Copy(sv)
			continue
		}
		dn, dOk := AsNode(dv)
		sn, sOk := AsNode(sv)
		if dOk && sOk {
			MergeNodes(dn, sn, childPath, s)
			continue
		}
		dl, dOk := AsList(dv)
		sl, sOk := AsList(sv)
		if dOk && sOk {
			dst[k] = mergeLists(dl, sl, childPath, s)
			continue
		}
		dst[k] = Copy(sv)
	}
}

func mergeLists(dst []interface{}, src []interface{}, schemaPath string, s *Schema) []interface{} {
	keys := s.Keys(schemaPath)
	out := append([]interface{}{}, dst...)
	for _, sv := range src {
		sn, isNode := AsNode(sv)
		if isNode && len(keys) > 0 {
			if _, dn := findEntry(out, EntryKeys(sn, keys)); dn != nil {
				MergeNodes(dn, sn, schemaPath, s)
				continue
			}
		} else if containsEqual(out, sv) {
			continue
		}
		out = append(out, Copy(sv))
	}
	return out
}

func containsEqual(list []interface{}, v interface{}) bool {
	for _, e := range list {
		if Equal(e, v) {
			return true
		}
	}
	return false
}

// ensure walks to id creating containers and list entries as needed.
func ensure(root Node, id path.IID) (Node, error) {
	cur := root
	for n := 0; n < id.Len(); n++ {
		name := id.Name(n)
		keys := id.Keys(n)
		if len(keys) == 0 {
			child, exists := cur[name]
			if !exists {
				c := Node{}
				cur[name] = c
				cur = c
				continue
			}
			c, ok := AsNode(child)
			if !ok {
				return nil, errors.NewInvalid("%s is not a container", id.Parent().Child(name))
			}
			cur = c
			continue
		}
		var list []interface{}
		if child, exists := cur[name]; exists {
			l, ok := AsList(child)
			if !ok {
				return nil, errors.NewInvalid("element %s is not a list", name)
			}
			list = l
		}
		_, entry := findEntry(list, keys)
		if entry == nil {
			entry = Node{}
			for k, v := range keys {
				entry[k] = v
			}
			cur[name] = append(list, entry)
		}
		cur = entry
	}
	return cur, nil
}

func findEntry(list []interface{}, keys map[string]string) (int, Node) {
	for idx, e := range list {
		n, ok := AsNode(e)
		if !ok {
			continue
		}
		if matchKeys(n, keys) {
			return idx, n
		}
	}
	return -1, nil
}

func matchKeys(n Node, keys map[string]string) bool {
	for k, v := range keys {
		ev, ok := n[k]
		if !ok {
			return false
		}
		s := ScalarString(ev)
		if s != v && path.StripModule(s) != path.StripModule(v) {
			return false
		}
	}
	return true
}

// EntryKeys extracts the key values of a list entry.
func EntryKeys(entry Node, keys []string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = ScalarString(entry[k])
	}
	return out
}

// ScalarString renders a leaf value the way it appears in a path key.
func ScalarString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// Copy returns a normalized deep copy of v.
func Copy(v interface{}) interface{} {
	return Normalize(v)
}

// CopyNode returns a deep copy of n.
func CopyNode(n Node) Node {
	if n == nil {
		return nil
	}
	c, _ := AsNode(Normalize(n))
	return c
}

// Normalize deep copies v, converting numbers to float64 and stripping module
// qualifiers from member names.
func Normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(Node, len(t))
		for k, cv := range t {
			out[path.StripModule(k)] = Normalize(cv)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, cv := range t {
			out[i] = Normalize(cv)
		}
		return out
	case []map[string]interface{}:
		out := make([]interface{}, len(t))
		for i, cv := range t {
			out[i] = Normalize(cv)
		}
		return out
	case []string:
		out := make([]interface{}, len(t))
		for i, cv := range t {
			out[i] = cv
		}
		return out
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	}
	if f, ok := toFloat(v); ok {
		return f
	}
	return v
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	}
	return 0, false
}

// Compact removes empty containers and lists.
func Compact(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(Node, len(t))
		for k, cv := range t {
			c := Compact(cv)
			if IsEmpty(c) {
				continue
			}
			out[k] = c
		}
		return out
	case []interface{}:
		out := make([]interface{}, 0, len(t))
		for _, cv := range t {
			if n, ok := AsNode(cv); ok {
				c := Compact(n)
				if IsEmpty(c) {
					continue
				}
				out = append(out, c)
				continue
			}
			out = append(out, cv)
		}
		return out
	}
	return v
}

// IsEmpty reports whether v is nil, an empty container or an empty list.
func IsEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case map[string]interface{}:
		return len(t) == 0
	case []interface{}:
		return len(t) == 0
	}
	return false
}

// Equal reports whether two values hold the same data. Empty containers and lists
// compare equal to missing ones, and list order is not significant.
func Equal(a, b interface{}) bool {
	a, b = Compact(Normalize(a)), Compact(Normalize(b))
	if IsEmpty(a) || IsEmpty(b) {
		return IsEmpty(a) && IsEmpty(b)
	}
	return cmp.Equal(a, b,
		cmpopts.EquateEmpty(),
		cmpopts.SortSlices(func(x, y interface{}) bool {
			return canonical(x) < canonical(y)
		}))
}

// canonical renders v deterministically; encoding/json sorts map keys.
func canonical(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// FromJSON decodes a JSON or JSON_IETF document.
func FromJSON(data []byte) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errors.NewInvalid("invalid JSON: %v", err)
	}
	return Normalize(v), nil
}

// NodeFromJSON decodes a JSON object.
func NodeFromJSON(data []byte) (Node, error) {
	v, err := FromJSON(data)
	if err != nil {
		return nil, err
	}
	n, ok := AsNode(v)
	if !ok {
		return nil, errors.NewInvalid("JSON value is not an object")
	}
	return n, nil
}

// ToJSON encodes v as JSON.
func ToJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func joinSchema(parent string, name string) string {
	if parent == "/" || parent == "" {
		return "/" + name
	}
	return parent + "/" + name
}
