// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package translate

import (
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
)

type readerEntry struct {
	id       path.IID
	name     string
	reader   Reader
	list     bool
	config   bool
	subtree  bool
	subtrees []path.IID
	children []*readerEntry
}

func (e *readerEntry) structural() bool {
	return e.reader == nil
}

// handlesChild reports whether a subtree reader produces the named child itself.
func (e *readerEntry) handlesChild(name string) bool {
	if !e.subtree {
		return false
	}
	if len(e.subtrees) == 0 {
		return true
	}
	for _, s := range e.subtrees {
		if s.Len() > 0 && s.Name(0) == name {
			return true
		}
	}
	return false
}

// ReaderRegistryBuilder collects readers from translation units.
type ReaderRegistryBuilder struct {
	entries map[string]*readerEntry
	order   []*readerEntry
	errs    []error
}

// NewReaderRegistryBuilder creates an empty builder.
func NewReaderRegistryBuilder() *ReaderRegistryBuilder {
	return &ReaderRegistryBuilder{entries: map[string]*readerEntry{}}
}

func (b *ReaderRegistryBuilder) entry(id path.IID) *readerEntry {
	id = id.Wildcard()
	if e, ok := b.entries[id.Schema()]; ok {
		return e
	}
	name, _ := id.Last()
	e := &readerEntry{id: id, name: name}
	b.entries[id.Schema()] = e
	b.order = append(b.order, e)
	return e
}

// AddStructural registers a node that has no data of its own. It exists when any
// of its children exists. Registering it more than once is harmless.
func (b *ReaderRegistryBuilder) AddStructural(id path.IID) {
	e := b.entry(id)
	if e.reader == nil {
		e.config = true
	}
}

// Add registers a reader for configuration data.
func (b *ReaderRegistryBuilder) Add(id path.IID, r Reader) {
	b.add(id, r, true)
}

// AddOper registers a reader for operational data. It is skipped by config-only reads.
func (b *ReaderRegistryBuilder) AddOper(id path.IID, r Reader) {
	b.add(id, r, false)
}

func (b *ReaderRegistryBuilder) add(id path.IID, r Reader, config bool) {
	e := b.entry(id)
	if e.list {
		b.errs = append(b.errs, errors.NewInvalid("%s is registered as a list", e.id))
		return
	}
	if !b.sameKind(e, config) {
		return
	}
	switch existing := e.reader.(type) {
	case nil:
		e.reader = r
	case compositeReader:
		e.reader = append(existing, r)
	default:
		e.reader = compositeReader{existing, r}
	}
	e.config = config
}

// sameKind reports whether a reader of the given kind may join the readers at e. Config
// and operational readers cannot share a node.
func (b *ReaderRegistryBuilder) sameKind(e *readerEntry, config bool) bool {
	if e.reader != nil && e.config != config {
		b.errs = append(b.errs, errors.NewInvalid("%s mixes config and operational readers", e.id))
		return false
	}
	return true
}

// AddList registers a list reader for configuration data.
func (b *ReaderRegistryBuilder) AddList(id path.IID, lr ListReader) {
	b.addList(id, lr, true)
}

// AddOperList registers a list reader for operational data.
func (b *ReaderRegistryBuilder) AddOperList(id path.IID, lr ListReader) {
	b.addList(id, lr, false)
}

func (b *ReaderRegistryBuilder) addList(id path.IID, lr ListReader, config bool) {
	e := b.entry(id)
	if e.reader != nil && !e.list {
		b.errs = append(b.errs, errors.NewInvalid("%s is registered as a container", e.id))
		return
	}
	if !b.sameKind(e, config) {
		return
	}
	switch existing := e.reader.(type) {
	case nil:
		e.reader = lr
	case compositeListReader:
		e.reader = append(existing, lr)
	default:
		e.reader = compositeListReader{existing.(ListReader), lr}
	}
	e.list = true
	e.config = config
}

// SubtreeAdd registers a configuration reader that also produces the listed child
// subtrees, given relative to id. With no subtrees it produces everything below id.
func (b *ReaderRegistryBuilder) SubtreeAdd(id path.IID, subtrees []path.IID, r Reader) {
	b.add(id, r, true)
	e := b.entry(id)
	e.subtree = true
	e.subtrees = append(e.subtrees, subtrees...)
}

// Build checks the registrations and produces the registry.
func (b *ReaderRegistryBuilder) Build() (*ReaderRegistry, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	r := &ReaderRegistry{entries: b.entries}
	for _, e := range b.order {
		e.children = nil
	}
	for _, e := range b.order {
		if e.id.Len() == 1 {
			r.roots = append(r.roots, e)
			continue
		}
		parent, ok := b.entries[e.id.Parent().Schema()]
		if !ok {
			return nil, errors.NewInvalid("reader for %s has no parent reader", e.id)
		}
		parent.children = append(parent.children, e)
	}
	return r, nil
}

// ReaderRegistry reads complete subtrees by composing the registered readers.
type ReaderRegistry struct {
	entries map[string]*readerEntry
	roots   []*readerEntry
}

// Read reads the value at id. Unkeyed lists read every entry. configOnly skips
// operational readers.
func (r *ReaderRegistry) Read(rc *ReadContext, id path.IID, configOnly bool) (interface{}, bool, error) {
	if id.IsRoot() {
		n, err := r.ReadAll(rc, configOnly)
		if err != nil {
			return nil, false, err
		}
		return n, len(n) > 0, nil
	}
	for n := 0; n < id.Len()-1; n++ {
		prefix := prefixOf(id, n+1)
		if e, ok := r.entries[prefix.Schema()]; ok && e.list && prefix.IsKeyless() {
			return nil, false, errors.NewInvalid("keys are required for %s in %s", e.name, id)
		}
	}

	if e, ok := r.entries[id.Schema()]; ok {
		return r.read(rc, e, id, configOnly)
	}

	for p := id.Parent(); !p.IsRoot(); p = p.Parent() {
		if _, ok := r.entries[p.Schema()]; !ok {
			continue
		}
		v, found, err := r.Read(rc, p, configOnly)
		if err != nil || !found {
			return nil, false, err
		}
		node, ok := tree.AsNode(v)
		if !ok {
			return nil, false, nil
		}
		rel, _ := id.TrimPrefix(p)
		v, found = tree.Get(node, rel)
		return v, found, nil
	}
	return nil, false, errors.NewNotFound("no reader registered for %s", id.Schema())
}

// ReadAll reads every registered root.
func (r *ReaderRegistry) ReadAll(rc *ReadContext, configOnly bool) (tree.Node, error) {
	out := tree.Node{}
	for _, e := range r.roots {
		v, found, err := r.read(rc, e, path.Root.Child(e.name), configOnly)
		if err != nil {
			return nil, err
		}
		if found {
			out[e.name] = v
		}
	}
	return out, nil
}

func (r *ReaderRegistry) read(rc *ReadContext, e *readerEntry, id path.IID, configOnly bool) (interface{}, bool, error) {
	if configOnly && !e.config {
		return nil, false, nil
	}
	if err := rc.ctx.Err(); err != nil {
		return nil, false, err
	}

	if e.list && id.IsKeyless() {
		ids, err := e.reader.(ListReader).AllIDs(rc, id)
		if err != nil {
			return nil, false, err
		}
		var entries []interface{}
		for _, keys := range ids {
			v, found, err := r.read(rc, e, id.WithKeys(keys), configOnly)
			if err != nil {
				return nil, false, err
			}
			if found {
				entries = append(entries, v)
			}
		}
		return entries, len(entries) > 0, nil
	}

	var data tree.Node
	if !e.structural() {
		n, err := e.reader.Read(rc, id)
		if err != nil {
			return nil, false, err
		}
		data = n
	}
	if e.list && data == nil {
		return nil, false, nil
	}
	present := data != nil && (e.list || !tree.IsEmpty(tree.Compact(data)))
	if data == nil {
		data = tree.Node{}
	}

	for _, c := range e.children {
		if e.handlesChild(c.name) {
			continue
		}
		v, found, err := r.read(rc, c, id.Child(c.name), configOnly)
		if err != nil {
			return nil, false, err
		}
		if found {
			data[c.name] = v
			present = true
		}
	}
	if !present {
		return nil, false, nil
	}

	if e.list {
		_, keys := id.Last()
		for k, v := range keys {
			if _, ok := data[k]; !ok {
				data[k] = v
			}
		}
	}
	return data, true, nil
}

func prefixOf(id path.IID, n int) path.IID {
	p := id
	for p.Len() > n {
		p = p.Parent()
	}
	return p
}
