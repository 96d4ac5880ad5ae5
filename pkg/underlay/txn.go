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

type cachedRead struct {
	value interface{}
	found bool
}

// Txn buffers writes against a device until Commit, and caches reads for its lifetime.
// Configuration reads observe the transaction's own pending writes.
type Txn struct {
	ctx       context.Context
	device    string
	transport Transport
	schema    *tree.Schema

	mu    sync.Mutex
	cache map[string]cachedRead
	ops   []Op
}

// NewTxn starts a transaction on a transport.
func NewTxn(ctx context.Context, device string, t Transport, s *tree.Schema) *Txn {
	return &Txn{
		ctx:       ctx,
		device:    device,
		transport: t,
		schema:    s,
		cache:     map[string]cachedRead{},
	}
}

// Read implements Access.
func (t *Txn) Read(id path.IID, ds Datastore) (interface{}, bool, error) {
	value, found, err := t.cached(id, ds)
	if err != nil {
		return nil, false, err
	}

	t.mu.Lock()
	ops := append([]Op{}, t.ops...)
	t.mu.Unlock()
	if ds != Config || len(ops) == 0 {
		return value, found, nil
	}

	sandbox := tree.Node{}
	if found {
		if err := tree.Set(sandbox, id, value); err != nil {
			return nil, false, err
		}
	}
	if err := ApplyOps(sandbox, ops, t.schema); err != nil {
		return nil, false, err
	}
	v, ok := tree.Get(sandbox, id)
	return v, ok, nil
}

// ReadNode implements Access.
func (t *Txn) ReadNode(id path.IID, ds Datastore) (tree.Node, error) {
	v, found, err := t.Read(id, ds)
	if err != nil || !found {
		return nil, err
	}
	n, _ := tree.AsNode(v)
	return n, nil
}

func (t *Txn) cached(id path.IID, ds Datastore) (interface{}, bool, error) {
	t.mu.Lock()
	for p := id; ; p = p.Parent() {
		c, ok := t.cache[cacheKey(p, ds)]
		if ok {
			t.mu.Unlock()
			if !c.found {
				return nil, false, nil
			}
			if p.Equal(id) {
				return tree.Copy(c.value), true, nil
			}
			node, isNode := tree.AsNode(c.value)
			if !isNode {
				break
			}
			rel, _ := id.TrimPrefix(p)
			v, found := tree.Get(node, rel)
			return tree.Copy(v), found, nil
		}
		if p.IsRoot() {
			t.mu.Unlock()
			break
		}
	}

	KpiUnderlayOperations.WithLabelValues(t.device, "get").Inc()
	v, found, err := t.transport.Get(t.ctx, id, ds)
	if err != nil {
		return nil, false, err
	}
	t.mu.Lock()
	t.cache[cacheKey(id, ds)] = cachedRead{value: tree.Copy(v), found: found}
	t.mu.Unlock()
	return v, found, nil
}

func cacheKey(id path.IID, ds Datastore) string {
	return ds.String() + ":" + id.String()
}

// Put implements Access.
func (t *Txn) Put(id path.IID, data interface{}) {
	t.add(Op{Type: OpPut, Path: id, Data: tree.Copy(data)})
}

// Merge implements Access.
func (t *Txn) Merge(id path.IID, data interface{}) {
	t.add(Op{Type: OpMerge, Path: id, Data: tree.Copy(data)})
}

// Delete implements Access.
func (t *Txn) Delete(id path.IID) {
	t.add(Op{Type: OpDelete, Path: id})
}

func (t *Txn) add(op Op) {
	t.mu.Lock()
	defer t.mu.Unlock()
	log.Debugf("Device %s buffered %s %s", t.device, op.Type, op.Path)
	t.ops = append(t.ops, op)
}

// Ops returns the pending writes.
func (t *Txn) Ops() []Op {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Op{}, t.ops...)
}

// Commit sends the pending writes to the device.
func (t *Txn) Commit(ctx context.Context) error {
	t.mu.Lock()
	ops := t.ops
	t.ops = nil
	t.mu.Unlock()
	if len(ops) == 0 {
		return nil
	}
	for _, op := range ops {
		KpiUnderlayOperations.WithLabelValues(t.device, op.Type.String()).Inc()
	}
	log.Infof("Device %s committing %d operations", t.device, len(ops))
	if err := t.transport.Apply(ctx, ops); err != nil {
		return err
	}
	t.mu.Lock()
	t.cache = map[string]cachedRead{}
	t.mu.Unlock()
	return nil
}

// Discard drops the pending writes.
func (t *Txn) Discard() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.ops) > 0 {
		log.Infof("Device %s discarding %d operations", t.device, len(t.ops))
	}
	t.ops = nil
}
