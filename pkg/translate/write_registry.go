// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package translate

import (
	"sort"
	"strings"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
)

type writerEntry struct {
	id       path.IID
	writer   Writer
	subtree  bool
	subtrees []path.IID
	after    []string
	before   []string
	seq      int

	// relative element names of descendants owned by other writers, pruned from this
	// writer's data
	owned [][]string
}

// covers reports whether a changed leaf belongs to this writer. Every writer covers its
// whole subtree; which writer receives a descendant's data is decided by owned.
func (e *writerEntry) covers(leaf path.IID) bool {
	return leaf.HasPrefix(e.id)
}

// handles reports whether a subtree writer takes the descendant at rel itself, rather
// than leaving it to the writer registered there.
func (e *writerEntry) handles(rel path.IID) bool {
	if !e.subtree {
		return false
	}
	if len(e.subtrees) == 0 {
		return true
	}
	for _, s := range e.subtrees {
		if s.Len() == 0 || s.Len() > rel.Len() {
			continue
		}
		match := true
		for n := 0; n < s.Len(); n++ {
			if s.Name(n) != rel.Name(n) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// WriterRegistryBuilder collects writers and their ordering constraints.
type WriterRegistryBuilder struct {
	schema  *tree.Schema
	entries map[string]*writerEntry
	order   []*writerEntry
}

// NewWriterRegistryBuilder creates an empty builder. The schema supplies list keys
// of the northbound tree.
func NewWriterRegistryBuilder(s *tree.Schema) *WriterRegistryBuilder {
	return &WriterRegistryBuilder{
		schema:  s,
		entries: map[string]*writerEntry{},
	}
}

func (b *WriterRegistryBuilder) entry(id path.IID, w Writer) *writerEntry {
	id = id.Wildcard()
	if e, ok := b.entries[id.Schema()]; ok {
		if c, isComposite := e.writer.(compositeWriter); isComposite {
			e.writer = append(c, w)
		} else {
			e.writer = compositeWriter{e.writer, w}
		}
		return e
	}
	e := &writerEntry{id: id, writer: w, seq: len(b.order)}
	b.entries[id.Schema()] = e
	b.order = append(b.order, e)
	return e
}

// Add registers a writer. A second writer at the same node runs after the first.
func (b *WriterRegistryBuilder) Add(id path.IID, w Writer) {
	b.entry(id, w)
}

// AddAfter registers a writer that must run after the writers at deps.
func (b *WriterRegistryBuilder) AddAfter(id path.IID, w Writer, deps ...path.IID) {
	e := b.entry(id, w)
	for _, d := range deps {
		e.after = append(e.after, d.Wildcard().Schema())
	}
}

// AddBefore registers a writer that must run before the writers at deps.
func (b *WriterRegistryBuilder) AddBefore(id path.IID, w Writer, deps ...path.IID) {
	e := b.entry(id, w)
	for _, d := range deps {
		e.before = append(e.before, d.Wildcard().Schema())
	}
}

// SubtreeAdd registers a writer that also handles the listed child subtrees, given
// relative to id. With no subtrees it handles everything below id.
func (b *WriterRegistryBuilder) SubtreeAdd(id path.IID, subtrees []path.IID, w Writer) {
	e := b.entry(id, w)
	e.subtree = true
	e.subtrees = append(e.subtrees, subtrees...)
}

// SubtreeAddAfter is SubtreeAdd with ordering constraints.
func (b *WriterRegistryBuilder) SubtreeAddAfter(id path.IID, subtrees []path.IID, w Writer, deps ...path.IID) {
	b.SubtreeAdd(id, subtrees, w)
	e := b.entries[id.Wildcard().Schema()]
	for _, d := range deps {
		e.after = append(e.after, d.Wildcard().Schema())
	}
}

// Build orders the writers. Constraints naming unregistered nodes are ignored; a
// cycle is an error. Unconstrained writers keep their registration order.
func (b *WriterRegistryBuilder) Build() (*WriterRegistry, error) {
	succ := map[*writerEntry][]*writerEntry{}
	indegree := map[*writerEntry]int{}
	edge := func(from, to *writerEntry) {
		succ[from] = append(succ[from], to)
		indegree[to]++
	}
	for _, e := range b.order {
		for _, d := range e.after {
			if dep, ok := b.entries[d]; ok && dep != e {
				edge(dep, e)
			} else if !ok {
				log.Debugf("Ignoring ordering of %s after unregistered %s", e.id, d)
			}
		}
		for _, d := range e.before {
			if dep, ok := b.entries[d]; ok && dep != e {
				edge(e, dep)
			} else if !ok {
				log.Debugf("Ignoring ordering of %s before unregistered %s", e.id, d)
			}
		}
	}

	var ordered []*writerEntry
	ready := []*writerEntry{}
	for _, e := range b.order {
		if indegree[e] == 0 {
			ready = append(ready, e)
		}
	}
	for len(ready) > 0 {
		sort.SliceStable(ready, func(i, j int) bool { return ready[i].seq < ready[j].seq })
		e := ready[0]
		ready = ready[1:]
		ordered = append(ordered, e)
		for _, s := range succ[e] {
			indegree[s]--
			if indegree[s] == 0 {
				ready = append(ready, s)
			}
		}
	}
	if len(ordered) != len(b.order) {
		var cyclic []string
		for _, e := range b.order {
			if indegree[e] > 0 {
				cyclic = append(cyclic, e.id.Schema())
			}
		}
		return nil, errors.NewInvalid("writer ordering cycle between %s", strings.Join(cyclic, ", "))
	}

	for _, e := range b.order {
		e.owned = nil
		for _, o := range b.order {
			if o == e || o.id.Len() <= e.id.Len() || !o.id.HasPrefix(e.id) {
				continue
			}
			rel, _ := o.id.TrimPrefix(e.id)
			if e.handles(rel) {
				continue
			}
			names := make([]string, rel.Len())
			for n := range names {
				names[n] = rel.Name(n)
			}
			e.owned = append(e.owned, names)
		}
	}
	return &WriterRegistry{schema: b.schema, ordered: ordered}, nil
}

// WriterRegistry applies northbound changes through the registered writers.
type WriterRegistry struct {
	schema  *tree.Schema
	ordered []*writerEntry
}

// ModificationType is the kind of change a writer is asked to make.
type ModificationType int

const (
	// Write creates a node
	Write ModificationType = iota
	// Update changes a node
	Update
	// Delete removes a node
	Delete
)

func (t ModificationType) String() string {
	switch t {
	case Write:
		return "write"
	case Update:
		return "update"
	default:
		return "delete"
	}
}

// Modification is one writer invocation.
type Modification struct {
	Type   ModificationType
	ID     path.IID
	Before tree.Node
	After  tree.Node
	entry  *writerEntry
}

func (m *Modification) String() string {
	return m.Type.String() + " " + m.ID.String()
}

func (m *Modification) apply(wc *WriteContext) error {
	switch m.Type {
	case Write:
		return m.entry.writer.Write(wc, m.ID, m.After)
	case Update:
		return m.entry.writer.Update(wc, m.ID, m.Before, m.After)
	default:
		return m.entry.writer.Delete(wc, m.ID, m.Before)
	}
}

func (m *Modification) inverse() *Modification {
	inv := &Modification{ID: m.ID, Before: m.After, After: m.Before, entry: m.entry}
	switch m.Type {
	case Write:
		inv.Type = Delete
	case Delete:
		inv.Type = Write
	default:
		inv.Type = Update
	}
	return inv
}

// Modifications computes the writer invocations for the transition described by wc,
// in execution order: deletes in reverse writer order, then writes and updates.
func (r *WriterRegistry) Modifications(wc *WriteContext) ([]*Modification, error) {
	if err := r.checkHandled(wc.before, wc.after); err != nil {
		return nil, err
	}
	perEntry := make([][]*Modification, len(r.ordered))
	for i, e := range r.ordered {
		perEntry[i] = r.modifications(e, wc.before, wc.after)
	}

	var out []*Modification
	for i := len(perEntry) - 1; i >= 0; i-- {
		for _, m := range perEntry[i] {
			if m.Type == Delete {
				out = append(out, m)
			}
		}
	}
	for _, mods := range perEntry {
		for _, m := range mods {
			if m.Type != Delete {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

// Update runs the writers for the transition described by wc. On failure the returned
// error is an *UpdateFailedError listing the modifications already processed.
func (r *WriterRegistry) Update(wc *WriteContext) ([]*Modification, error) {
	mods, err := r.Modifications(wc)
	if err != nil {
		return nil, err
	}
	var processed []*Modification
	for _, m := range mods {
		log.Debugf("Processing %s", m)
		if err := m.apply(wc); err != nil {
			log.Warnf("Failed to %s: %v", m, err)
			return processed, &UpdateFailedError{Processed: processed, Failed: m, Cause: err}
		}
		processed = append(processed, m)
	}
	return processed, nil
}

// Revert undoes processed modifications in reverse order. wc must describe the
// reverse transition, from the intended data back to the original.
func (r *WriterRegistry) Revert(wc *WriteContext, processed []*Modification) error {
	for i := len(processed) - 1; i >= 0; i-- {
		inv := processed[i].inverse()
		log.Infof("Reverting %s with %s", processed[i], inv)
		if err := inv.apply(wc); err != nil {
			return &RevertFailedError{Failed: processed[i], Cause: err}
		}
	}
	return nil
}

func (r *WriterRegistry) checkHandled(before, after tree.Node) error {
	var unhandled []string
	for _, leaf := range tree.Diff(before, after, r.schema) {
		handled := false
		for _, e := range r.ordered {
			if e.covers(leaf) {
				handled = true
				break
			}
		}
		if !handled {
			unhandled = append(unhandled, leaf.String())
		}
	}
	if len(unhandled) > 0 {
		return errors.NewInvalid("no writer for %s", strings.Join(unhandled, ", "))
	}
	return nil
}

func (r *WriterRegistry) modifications(e *writerEntry, before, after tree.Node) []*Modification {
	ids := map[string]path.IID{}
	for _, root := range []tree.Node{before, after} {
		for _, id := range tree.Instances(root, e.id, r.schema) {
			ids[id.String()] = id
		}
	}
	keys := make([]string, 0, len(ids))
	for k := range ids {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []*Modification
	for _, k := range keys {
		id := ids[k]
		b := r.ownedData(e, before, id)
		a := r.ownedData(e, after, id)
		m := &Modification{ID: id, Before: b, After: a, entry: e}
		switch {
		case b == nil && a == nil:
			continue
		case b == nil:
			m.Type = Write
		case a == nil:
			m.Type = Delete
		case tree.Equal(b, a):
			continue
		default:
			m.Type = Update
		}
		out = append(out, m)
	}
	return out
}

// ownedData returns the data at id without the descendants other writers own.
func (r *WriterRegistry) ownedData(e *writerEntry, root tree.Node, id path.IID) tree.Node {
	n, ok := tree.GetNode(root, id)
	if !ok {
		return nil
	}
	data := tree.CopyNode(n)
	for _, rel := range e.owned {
		tree.Prune(data, rel)
	}
	data, _ = tree.AsNode(tree.Compact(data))
	if len(data) == 0 {
		return nil
	}
	return data
}
