// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package underlay

import (
	"context"
	"sync"

	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
)

// MemoryTransport is an in-process device datastore. Apply is atomic.
type MemoryTransport struct {
	mu     sync.RWMutex
	schema *tree.Schema
	config tree.Node
	oper   tree.Node
}

// NewMemoryTransport creates an empty in-memory device.
func NewMemoryTransport(s *tree.Schema) *MemoryTransport {
	return &MemoryTransport{
		schema: s,
		config: tree.Node{},
		oper:   tree.Node{},
	}
}

func (m *MemoryTransport) root(ds Datastore) tree.Node {
	if ds == Operational {
		return m.oper
	}
	return m.config
}

// Get implements Transport.
func (m *MemoryTransport) Get(ctx context.Context, id path.IID, ds Datastore) (interface{}, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := tree.Get(m.root(ds), id)
	if !ok {
		return nil, false, nil
	}
	return tree.Copy(v), true, nil
}

// Apply implements Transport. Either every op is applied or none is.
func (m *MemoryTransport) Apply(ctx context.Context, ops []Op) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	candidate := tree.CopyNode(m.config)
	if err := ApplyOps(candidate, ops, m.schema); err != nil {
		return err
	}
	m.config = candidate
	return nil
}

// Seed writes data directly into a datastore.
func (m *MemoryTransport) Seed(ds Datastore, id path.IID, data interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return tree.Set(m.root(ds), id, data)
}

// Snapshot returns a copy of a datastore.
func (m *MemoryTransport) Snapshot(ds Datastore) tree.Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return tree.CopyNode(m.root(ds))
}

// Probe implements Prober.
func (m *MemoryTransport) Probe(ctx context.Context) error {
	return ctx.Err()
}

// Close implements Transport.
func (m *MemoryTransport) Close() error {
	return nil
}
