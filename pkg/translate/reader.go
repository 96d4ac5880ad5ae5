// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package translate

import (
	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
)

// Reader reads the data of one node. A nil node means the node does not exist.
// Children with readers of their own are filled in by the registry.
type Reader interface {
	Read(rc *ReadContext, id path.IID) (tree.Node, error)
}

// ListReader reads a list. AllIDs receives the keyless list identifier and returns the
// keys of every entry; Read is then called once per entry. An entry Read returns nil
// for does not exist, whatever its children hold.
type ListReader interface {
	Reader
	AllIDs(rc *ReadContext, id path.IID) ([]map[string]string, error)
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func(rc *ReadContext, id path.IID) (tree.Node, error)

// Read implements Reader.
func (f ReaderFunc) Read(rc *ReadContext, id path.IID) (tree.Node, error) {
	return f(rc, id)
}

// ListReaderFuncs adapts a pair of functions to ListReader. A nil ReadFunc reads
// entries holding only their keys, for the keys IDs lists.
type ListReaderFuncs struct {
	IDs      func(rc *ReadContext, id path.IID) ([]map[string]string, error)
	ReadFunc func(rc *ReadContext, id path.IID) (tree.Node, error)
}

// AllIDs implements ListReader.
func (l ListReaderFuncs) AllIDs(rc *ReadContext, id path.IID) ([]map[string]string, error) {
	return l.IDs(rc, id)
}

// Read implements ListReader.
func (l ListReaderFuncs) Read(rc *ReadContext, id path.IID) (tree.Node, error) {
	if l.ReadFunc != nil {
		return l.ReadFunc(rc, id)
	}
	name, keys := id.Last()
	all, err := l.IDs(rc, id.Parent().Child(name))
	if err != nil {
		return nil, err
	}
	for _, k := range all {
		if sameKeys(k, keys) {
			return tree.Node{}, nil
		}
	}
	return nil, nil
}

func sameKeys(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}

// compositeReader merges the data of several readers registered at one node.
type compositeReader []Reader

func (c compositeReader) Read(rc *ReadContext, id path.IID) (tree.Node, error) {
	return mergeReads(c, rc, id)
}

// compositeListReader unions the entries of several list readers registered at one list.
type compositeListReader []ListReader

func (c compositeListReader) AllIDs(rc *ReadContext, id path.IID) ([]map[string]string, error) {
	seen := map[string]bool{}
	var out []map[string]string
	for _, lr := range c {
		ids, err := lr.AllIDs(rc, id)
		if err != nil {
			return nil, err
		}
		for _, keys := range ids {
			k := id.WithKeys(keys).String()
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, keys)
		}
	}
	return out, nil
}

func (c compositeListReader) Read(rc *ReadContext, id path.IID) (tree.Node, error) {
	readers := make([]Reader, len(c))
	for i, lr := range c {
		readers[i] = lr
	}
	return mergeReads(readers, rc, id)
}

func mergeReads(readers []Reader, rc *ReadContext, id path.IID) (tree.Node, error) {
	var out tree.Node
	for _, r := range readers {
		n, err := r.Read(rc, id)
		if err != nil {
			return nil, err
		}
		if n == nil {
			continue
		}
		if out == nil {
			out = tree.Node{}
		}
		tree.MergeNodes(out, n, id.Schema(), nil)
	}
	return out, nil
}
