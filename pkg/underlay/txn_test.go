// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package underlay

import (
	"context"
	"errors"
	"testing"

	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = tree.NewSchema().
	AddList("/interface-configurations/interface-configuration", "active", "interface-name")

var ifcGi0 = path.MustParse("/interface-configurations/interface-configuration[active=act][interface-name=Gi0]")

// countingTransport counts Get calls reaching the device and can fail Apply.
type countingTransport struct {
	*MemoryTransport
	gets     int
	applyErr error
}

func (c *countingTransport) Get(ctx context.Context, id path.IID, ds Datastore) (interface{}, bool, error) {
	c.gets++
	return c.MemoryTransport.Get(ctx, id, ds)
}

func (c *countingTransport) Apply(ctx context.Context, ops []Op) error {
	if c.applyErr != nil {
		return c.applyErr
	}
	return c.MemoryTransport.Apply(ctx, ops)
}

func newCountingTransport(t *testing.T) *countingTransport {
	m := NewMemoryTransport(testSchema)
	require.NoError(t, m.Seed(Config, ifcGi0, tree.Node{"description": "core", "shutdown": tree.EmptyLeaf()}))
	return &countingTransport{MemoryTransport: m}
}

func TestTxnReadsAreCached(t *testing.T) {
	ct := newCountingTransport(t)
	txn := NewTxn(context.Background(), "dev1", ct, testSchema)

	n, err := txn.ReadNode(ifcGi0, Config)
	require.NoError(t, err)
	assert.Equal(t, "core", n["description"])

	_, err = txn.ReadNode(ifcGi0, Config)
	require.NoError(t, err)
	v, found, err := txn.Read(ifcGi0.Child("description"), Config)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "core", v)
	assert.Equal(t, 1, ct.gets, "descendant reads are answered from the cached ancestor")

	n["description"] = "mutated"
	again, _ := txn.ReadNode(ifcGi0, Config)
	assert.Equal(t, "core", again["description"], "cached values are copied out")
}

func TestTxnAbsentIsCached(t *testing.T) {
	ct := newCountingTransport(t)
	txn := NewTxn(context.Background(), "dev1", ct, testSchema)
	missing := path.MustParse("/vrfs")

	_, found, err := txn.Read(missing, Config)
	require.NoError(t, err)
	assert.False(t, found)
	_, found, _ = txn.Read(missing.ListItem("vrf", map[string]string{"vrf-name": "a"}), Config)
	assert.False(t, found)
	assert.Equal(t, 1, ct.gets)
}

func TestTxnReadsSeePendingWrites(t *testing.T) {
	ct := newCountingTransport(t)
	txn := NewTxn(context.Background(), "dev1", ct, testSchema)

	txn.Merge(ifcGi0, tree.Node{"description": "edge"})
	n, err := txn.ReadNode(ifcGi0, Config)
	require.NoError(t, err)
	assert.Equal(t, "edge", n["description"])
	assert.True(t, tree.HasEmpty(n, "shutdown"))

	txn.Put(ifcGi0, tree.Node{"description": "edge"})
	n, _ = txn.ReadNode(ifcGi0, Config)
	assert.False(t, tree.HasEmpty(n, "shutdown"), "put replaces the subtree")

	txn.Delete(ifcGi0)
	_, found, _ := txn.Read(ifcGi0, Config)
	assert.False(t, found)

	// nothing reached the device yet
	stored := ct.Snapshot(Config)
	v, _ := tree.Get(stored, ifcGi0.Child("description"))
	assert.Equal(t, "core", v)
}

func TestTxnCommit(t *testing.T) {
	ct := newCountingTransport(t)
	txn := NewTxn(context.Background(), "dev1", ct, testSchema)

	txn.Merge(ifcGi0, tree.Node{"description": "edge"})
	assert.Len(t, txn.Ops(), 1)
	require.NoError(t, txn.Commit(context.Background()))
	assert.Empty(t, txn.Ops())

	v, _ := tree.Get(ct.Snapshot(Config), ifcGi0.Child("description"))
	assert.Equal(t, "edge", v)
}

func TestTxnCommitFailureKeepsDeviceUnchanged(t *testing.T) {
	ct := newCountingTransport(t)
	ct.applyErr = errors.New("device busy")
	txn := NewTxn(context.Background(), "dev1", ct, testSchema)

	txn.Delete(ifcGi0)
	assert.EqualError(t, txn.Commit(context.Background()), "device busy")

	_, ok := tree.Get(ct.Snapshot(Config), ifcGi0)
	assert.True(t, ok)
}

func TestTxnDiscard(t *testing.T) {
	ct := newCountingTransport(t)
	txn := NewTxn(context.Background(), "dev1", ct, testSchema)
	txn.Delete(ifcGi0)
	txn.Discard()
	require.NoError(t, txn.Commit(context.Background()))
	_, ok := tree.Get(ct.Snapshot(Config), ifcGi0)
	assert.True(t, ok)
}

func TestMemoryApplyIsAtomic(t *testing.T) {
	m := NewMemoryTransport(testSchema)
	require.NoError(t, m.Seed(Config, path.MustParse("/a"), "leaf"))

	err := m.Apply(context.Background(), []Op{
		{Type: OpPut, Path: path.MustParse("/b"), Data: "x"},
		{Type: OpPut, Path: path.MustParse("/a/c"), Data: "y"},
	})
	assert.Error(t, err)
	_, ok := tree.Get(m.Snapshot(Config), path.MustParse("/b"))
	assert.False(t, ok)
}

func TestOperationalIsSeparate(t *testing.T) {
	m := NewMemoryTransport(testSchema)
	require.NoError(t, m.Seed(Operational, path.MustParse("/cdp/nodes"), tree.Node{}))
	_, found, err := m.Get(context.Background(), path.MustParse("/cdp/nodes"), Config)
	require.NoError(t, err)
	assert.False(t, found)
	_, found, err = m.Get(context.Background(), path.MustParse("/cdp/nodes"), Operational)
	require.NoError(t, err)
	assert.True(t, found)
}
