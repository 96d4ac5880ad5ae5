// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package translate composes per-node readers and writers into subtree reads and
// ordered, revertible writes.
package translate

import (
	"context"

	"github.com/onosproject/onos-lib-go/pkg/logging"
	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/underlay"
)

var log = logging.GetLogger("translate")

// ReadContext is passed to every reader taking part in one read request.
type ReadContext struct {
	ctx    context.Context
	access underlay.Access
	cache  map[string]interface{}
}

// NewReadContext creates a read context over an underlay.
func NewReadContext(ctx context.Context, access underlay.Access) *ReadContext {
	return &ReadContext{
		ctx:    ctx,
		access: access,
		cache:  map[string]interface{}{},
	}
}

// Context returns the request context.
func (rc *ReadContext) Context() context.Context {
	return rc.ctx
}

// Underlay returns access to the device.
func (rc *ReadContext) Underlay() underlay.Access {
	return rc.access
}

// Cache is shared by the readers of one request.
func (rc *ReadContext) Cache() map[string]interface{} {
	return rc.cache
}

// WriteContext is passed to every writer taking part in one transaction. It exposes
// the northbound data before and after the transaction.
type WriteContext struct {
	ctx    context.Context
	access underlay.Access
	before tree.Node
	after  tree.Node
	cache  map[string]interface{}
}

// NewWriteContext creates a write context for the transition from before to after.
func NewWriteContext(ctx context.Context, access underlay.Access, before tree.Node, after tree.Node) *WriteContext {
	if before == nil {
		before = tree.Node{}
	}
	if after == nil {
		after = tree.Node{}
	}
	return &WriteContext{
		ctx:    ctx,
		access: access,
		before: before,
		after:  after,
		cache:  map[string]interface{}{},
	}
}

// Context returns the request context.
func (wc *WriteContext) Context() context.Context {
	return wc.ctx
}

// Underlay returns access to the device.
func (wc *WriteContext) Underlay() underlay.Access {
	return wc.access
}

// Cache is shared by the writers of one transaction.
func (wc *WriteContext) Cache() map[string]interface{} {
	return wc.cache
}

// Before returns the complete northbound tree before the transaction.
func (wc *WriteContext) Before() tree.Node {
	return wc.before
}

// After returns the complete northbound tree after the transaction.
func (wc *WriteContext) After() tree.Node {
	return wc.after
}

// ReadBefore returns the northbound value at id before the transaction.
func (wc *WriteContext) ReadBefore(id path.IID) (interface{}, bool) {
	v, ok := tree.Get(wc.before, id)
	if !ok {
		return nil, false
	}
	return tree.Copy(v), true
}

// ReadAfter returns the northbound value at id after the transaction.
func (wc *WriteContext) ReadAfter(id path.IID) (interface{}, bool) {
	v, ok := tree.Get(wc.after, id)
	if !ok {
		return nil, false
	}
	return tree.Copy(v), true
}

// ReadAfterNode returns the northbound container at id after the transaction, or nil.
func (wc *WriteContext) ReadAfterNode(id path.IID) tree.Node {
	v, _ := wc.ReadAfter(id)
	n, _ := tree.AsNode(v)
	return n
}

// ReadBeforeNode returns the northbound container at id before the transaction, or nil.
func (wc *WriteContext) ReadBeforeNode(id path.IID) tree.Node {
	v, _ := wc.ReadBefore(id)
	n, _ := tree.AsNode(v)
	return n
}
