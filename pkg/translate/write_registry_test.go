// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package translate

import (
	"context"
	goerrors "errors"
	"testing"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/underlay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var vrf = path.MustParse("/network-instances/network-instance")

// recordingWriter logs every invocation and optionally fails one of them.
type recordingWriter struct {
	name   string
	calls  *[]string
	failOn string
}

func (w recordingWriter) record(op string, id path.IID) error {
	call := w.name + " " + op + " " + id.String()
	*w.calls = append(*w.calls, call)
	if w.failOn != "" && w.failOn == op {
		return errors.NewInvalid("%s refused", call)
	}
	return nil
}

func (w recordingWriter) Write(wc *WriteContext, id path.IID, data tree.Node) error {
	return w.record("write", id)
}

func (w recordingWriter) Update(wc *WriteContext, id path.IID, before tree.Node, after tree.Node) error {
	return w.record("update", id)
}

func (w recordingWriter) Delete(wc *WriteContext, id path.IID, data tree.Node) error {
	return w.record("delete", id)
}

func newWriteContext(before, after tree.Node) *WriteContext {
	m := underlay.NewMemoryTransport(devSchema)
	return NewWriteContext(context.Background(), underlay.NewTxn(context.Background(), "dev1", m, devSchema), before, after)
}

func interfaceTree(entries ...tree.Node) tree.Node {
	l := make([]interface{}, len(entries))
	for i, e := range entries {
		l[i] = e
	}
	return tree.Node{"interfaces": tree.Node{"interface": l}}
}

func TestWriterOrdering(t *testing.T) {
	var calls []string
	b := NewWriterRegistryBuilder(nbSchema)
	b.AddAfter(ifConfig, recordingWriter{name: "config", calls: &calls}, iface)
	b.Add(iface, recordingWriter{name: "iface", calls: &calls})
	b.AddBefore(vrf, recordingWriter{name: "vrf", calls: &calls}, iface)
	r, err := b.Build()
	require.NoError(t, err)

	after := interfaceTree(tree.Node{"name": "Gi0", "config": tree.Node{"name": "Gi0", "mtu": 1500}})
	after["network-instances"] = tree.Node{"network-instance": []interface{}{
		tree.Node{"name": "blue", "config": tree.Node{"name": "blue"}},
	}}
	mods, err := r.Update(newWriteContext(nil, after))
	require.NoError(t, err)
	assert.Len(t, mods, 3)
	assert.Equal(t, []string{
		"vrf write /network-instances/network-instance[name=blue]",
		"iface write /interfaces/interface[name=Gi0]",
		"config write /interfaces/interface[name=Gi0]/config",
	}, calls)

	calls = nil
	_, err = r.Update(newWriteContext(after, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"config delete /interfaces/interface[name=Gi0]/config",
		"iface delete /interfaces/interface[name=Gi0]",
		"vrf delete /network-instances/network-instance[name=blue]",
	}, calls)
}

func TestWriterOrderingCycle(t *testing.T) {
	var calls []string
	b := NewWriterRegistryBuilder(nbSchema)
	b.AddAfter(iface, recordingWriter{name: "a", calls: &calls}, ifConfig)
	b.AddAfter(ifConfig, recordingWriter{name: "b", calls: &calls}, iface)
	_, err := b.Build()
	assert.True(t, errors.IsInvalid(err))
}

func TestWriterIgnoresUnregisteredDependency(t *testing.T) {
	var calls []string
	b := NewWriterRegistryBuilder(nbSchema)
	b.AddAfter(iface, recordingWriter{name: "a", calls: &calls}, path.MustParse("/system"))
	_, err := b.Build()
	assert.NoError(t, err)
}

func TestWriterOwnsOnlyItsData(t *testing.T) {
	var parentData tree.Node
	b := NewWriterRegistryBuilder(nbSchema)
	b.Add(iface, ReplaceOnUpdate(writeDeleteFuncs{
		write: func(wc *WriteContext, id path.IID, data tree.Node) error {
			parentData = data
			return nil
		},
	}))
	b.Add(ifConfig, NoopWriter{})
	r, err := b.Build()
	require.NoError(t, err)

	before := interfaceTree(tree.Node{"name": "Gi0", "config": tree.Node{"mtu": 1500}})
	after := interfaceTree(tree.Node{"name": "Gi0", "config": tree.Node{"mtu": 9000}})
	mods, err := r.Update(newWriteContext(before, after))
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Equal(t, Update, mods[0].Type)
	assert.Equal(t, "/interfaces/interface[name=Gi0]/config", mods[0].ID.String())
	assert.Nil(t, parentData)
}

func TestSubtreeWriterKeepsListedChildren(t *testing.T) {
	var parentData tree.Node
	b := NewWriterRegistryBuilder(nbSchema)
	b.SubtreeAdd(iface, []path.IID{path.MustParse("/config")}, ReplaceOnUpdate(writeDeleteFuncs{
		write: func(wc *WriteContext, id path.IID, data tree.Node) error {
			parentData = data
			return nil
		},
	}))
	b.Add(ifConfig, NoopWriter{})
	b.Add(ifState, NoopWriter{})
	r, err := b.Build()
	require.NoError(t, err)

	before := interfaceTree(tree.Node{"name": "Gi0", "config": tree.Node{"mtu": 1500}, "state": tree.Node{"mtu": 1500}})
	after := interfaceTree(tree.Node{"name": "Gi0", "config": tree.Node{"mtu": 9000}, "state": tree.Node{"mtu": 9000}})
	mods, err := r.Update(newWriteContext(before, after))
	require.NoError(t, err)
	require.Len(t, mods, 3)
	require.NotNil(t, parentData)
	assert.True(t, tree.Equal(tree.Node{"name": "Gi0", "config": tree.Node{"mtu": 9000}}, parentData), "%v", parentData)
}

func TestUnhandledChange(t *testing.T) {
	b := NewWriterRegistryBuilder(nbSchema)
	b.Add(ifConfig, NoopWriter{})
	r, err := b.Build()
	require.NoError(t, err)

	after := tree.Node{"system": tree.Node{"config": tree.Node{"hostname": "r1"}}}
	_, err = r.Update(newWriteContext(nil, after))
	assert.True(t, errors.IsInvalid(err))
}

func TestUpdateFailureAndRevert(t *testing.T) {
	var calls []string
	b := NewWriterRegistryBuilder(nbSchema)
	b.Add(iface, recordingWriter{name: "iface", calls: &calls})
	b.AddAfter(ifConfig, recordingWriter{name: "config", calls: &calls, failOn: "write"}, iface)
	r, err := b.Build()
	require.NoError(t, err)

	after := interfaceTree(tree.Node{"name": "Gi0", "config": tree.Node{"mtu": 1500}})
	processed, err := r.Update(newWriteContext(nil, after))
	require.Error(t, err)

	var failed *UpdateFailedError
	require.True(t, goerrors.As(err, &failed))
	assert.Equal(t, "write /interfaces/interface[name=Gi0]/config", failed.Failed.String())
	require.Len(t, processed, 1)
	assert.Equal(t, processed, failed.Processed)

	calls = nil
	require.NoError(t, r.Revert(newWriteContext(after, nil), processed))
	assert.Equal(t, []string{"iface delete /interfaces/interface[name=Gi0]"}, calls)
}

func TestRevertFailure(t *testing.T) {
	var calls []string
	b := NewWriterRegistryBuilder(nbSchema)
	b.Add(iface, recordingWriter{name: "iface", calls: &calls, failOn: "delete"})
	r, err := b.Build()
	require.NoError(t, err)

	after := interfaceTree(tree.Node{"name": "Gi0"})
	processed, err := r.Update(newWriteContext(nil, after))
	require.NoError(t, err)

	err = r.Revert(newWriteContext(after, nil), processed)
	var revertErr *RevertFailedError
	require.True(t, goerrors.As(err, &revertErr))
	assert.True(t, errors.IsInvalid(revertErr.Cause))
}

func TestCompositeWriterDeletesInReverse(t *testing.T) {
	var calls []string
	b := NewWriterRegistryBuilder(nbSchema)
	b.Add(iface, recordingWriter{name: "first", calls: &calls})
	b.Add(iface, recordingWriter{name: "second", calls: &calls})
	r, err := b.Build()
	require.NoError(t, err)

	before := interfaceTree(tree.Node{"name": "Gi0"})
	_, err = r.Update(newWriteContext(before, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"second delete /interfaces/interface[name=Gi0]",
		"first delete /interfaces/interface[name=Gi0]",
	}, calls)
}

func TestNoChangeNoModifications(t *testing.T) {
	var calls []string
	b := NewWriterRegistryBuilder(nbSchema)
	b.Add(iface, recordingWriter{name: "iface", calls: &calls})
	r, err := b.Build()
	require.NoError(t, err)

	data := interfaceTree(tree.Node{"name": "Gi0", "description": "x"})
	mods, err := r.Update(newWriteContext(data, tree.CopyNode(data)))
	require.NoError(t, err)
	assert.Empty(t, mods)
	assert.Empty(t, calls)
}

type writeDeleteFuncs struct {
	write  func(wc *WriteContext, id path.IID, data tree.Node) error
	delete func(wc *WriteContext, id path.IID, data tree.Node) error
}

func (f writeDeleteFuncs) Write(wc *WriteContext, id path.IID, data tree.Node) error {
	if f.write == nil {
		return nil
	}
	return f.write(wc, id, data)
}

func (f writeDeleteFuncs) Delete(wc *WriteContext, id path.IID, data tree.Node) error {
	if f.delete == nil {
		return nil
	}
	return f.delete(wc, id, data)
}
