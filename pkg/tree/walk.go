// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package tree

import (
	"sort"

	"github.com/onosproject/unitopo-adapter/pkg/path"
)

// Instances returns the concrete identifiers present in root for a keyless schema identifier.
func Instances(root Node, schemaID path.IID, s *Schema) []path.IID {
	names := make([]string, schemaID.Len())
	for n := range names {
		names[n] = schemaID.Name(n)
	}
	var out []path.IID
	instances(root, path.Root, names, s, &out)
	return out
}

func instances(cur interface{}, prefix path.IID, rest []string, s *Schema, out *[]path.IID) {
	if len(rest) == 0 {
		*out = append(*out, prefix)
		return
	}
	node, ok := AsNode(cur)
	if !ok {
		return
	}
	name := rest[0]
	child, ok := node[name]
	if !ok {
		return
	}
	childID := prefix.Child(name)
	list, isList := AsList(child)
	keys := s.Keys(childID.Schema())
	if !isList || len(keys) == 0 {
		if isList && len(rest) > 1 {
			return
		}
		instances(child, childID, rest[1:], s, out)
		return
	}
	for _, e := range list {
		entry, ok := AsNode(e)
		if !ok {
			continue
		}
		instances(entry, prefix.ListItem(name, EntryKeys(entry, keys)), rest[1:], s, out)
	}
}

// Prune removes the subtree at the relative element names rel, across list entries.
func Prune(v interface{}, rel []string) {
	if len(rel) == 0 {
		return
	}
	switch t := v.(type) {
	case map[string]interface{}:
		if len(rel) == 1 {
			delete(t, rel[0])
			return
		}
		if c, ok := t[rel[0]]; ok {
			if l, isList := AsList(c); isList {
				for _, e := range l {
					Prune(e, rel[1:])
				}
				return
			}
			Prune(c, rel[1:])
		}
	}
}

// Diff returns the identifiers of the leaves that differ between a and b.
func Diff(a, b Node, s *Schema) []path.IID {
	var out []path.IID
	diff(a, b, path.Root, s, &out)
	return out
}

func diff(a, b interface{}, id path.IID, s *Schema, out *[]path.IID) {
	an, aNode := AsNode(a)
	bn, bNode := AsNode(b)
	if (aNode || a == nil) && (bNode || b == nil) && (aNode || bNode) {
		for _, k := range unionNames(an, bn) {
			diff(an[k], bn[k], id.Child(k), s, out)
		}
		return
	}
	keys := s.Keys(id.Schema())
	al, aList := AsList(a)
	bl, bList := AsList(b)
	if len(keys) > 0 && (aList || a == nil) && (bList || b == nil) && (aList || bList) {
		ae := indexEntries(al, keys)
		be := indexEntries(bl, keys)
		for _, k := range unionEntryKeys(ae, be) {
			var ak, bk map[string]string
			var av, bv interface{}
			if e, ok := ae[k]; ok {
				ak, av = e.keys, e.node
			}
			if e, ok := be[k]; ok {
				bk, bv = e.keys, e.node
			}
			if ak == nil {
				ak = bk
			}
			diff(av, bv, id.WithKeys(ak), s, out)
		}
		return
	}
	if !Equal(a, b) {
		*out = append(*out, id)
	}
}

type indexedEntry struct {
	keys map[string]string
	node Node
}

func indexEntries(list []interface{}, keys []string) map[string]indexedEntry {
	out := map[string]indexedEntry{}
	for _, e := range list {
		n, ok := AsNode(e)
		if !ok {
			continue
		}
		k := EntryKeys(n, keys)
		out[path.Root.ListItem("_", k).String()] = indexedEntry{keys: k, node: n}
	}
	return out
}

func unionEntryKeys(a, b map[string]indexedEntry) []string {
	seen := map[string]bool{}
	var out []string
	for k := range a {
		seen[k] = true
		out = append(out, k)
	}
	for k := range b {
		if !seen[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func unionNames(a, b Node) []string {
	seen := map[string]bool{}
	var out []string
	for k := range a {
		seen[k] = true
		out = append(out, k)
	}
	for k := range b {
		if !seen[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
