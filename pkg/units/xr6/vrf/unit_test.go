// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package vrf

import (
	"context"
	goerrors "errors"
	"testing"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/translate"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/underlay"
	"github.com/onosproject/unitopo-adapter/pkg/unit"
	"github.com/onosproject/unitopo-adapter/pkg/units/oc"
	"github.com/onosproject/unitopo-adapter/pkg/units/xr6"
	"github.com/onosproject/unitopo-adapter/pkg/units/xr6/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ge0 = "GigabitEthernet0/0/0/0"
	ge1 = "GigabitEthernet0/0/0/1"
)

type fixture struct {
	memory  *underlay.MemoryTransport
	schema  *tree.Schema
	readers *translate.ReaderRegistry
	writers *translate.WriterRegistry
}

func newFixture(t *testing.T) *fixture {
	s, readers, writers, err := unit.Handlers([]unit.Unit{interfaces.Unit{}, Unit{}})
	require.NoError(t, err)
	m := underlay.NewMemoryTransport(s)
	require.NoError(t, m.Seed(underlay.Config, xr6.VrfID("blue"), tree.Node{
		"vrf-name":    "blue",
		"create":      tree.EmptyLeaf(),
		"description": "customer blue",
		"afs": tree.Node{"af": []interface{}{
			tree.Node{"af-name": "ipv4", "saf-name": "unicast", "topology-name": "default", "create": tree.EmptyLeaf()},
		}},
	}))
	require.NoError(t, m.Seed(underlay.Config, xr6.InterfaceConfigurationID(ge0), tree.Node{
		"active":         xr6.Active,
		"interface-name": ge0,
		"vrf":            "blue",
	}))
	return &fixture{memory: m, schema: s, readers: readers, writers: writers}
}

func (f *fixture) read(t *testing.T, id path.IID) (interface{}, bool) {
	txn := underlay.NewTxn(context.Background(), "xr1", f.memory, f.schema)
	v, found, err := f.readers.Read(translate.NewReadContext(context.Background(), txn), id, true)
	require.NoError(t, err)
	return v, found
}

func (f *fixture) update(t *testing.T, before tree.Node, after tree.Node) error {
	txn := underlay.NewTxn(context.Background(), "xr1", f.memory, f.schema)
	if _, err := f.writers.Update(translate.NewWriteContext(context.Background(), txn, before, after)); err != nil {
		return err
	}
	return txn.Commit(context.Background())
}

func instance(name string) path.IID {
	return oc.NetworkInstance.WithKeys(map[string]string{"name": name})
}

func member(name string, ifc string) path.IID {
	return instance(name).Child("interfaces").ListItem("interface", map[string]string{"id": ifc})
}

func TestReadInstances(t *testing.T) {
	f := newFixture(t)

	v, found := f.read(t, oc.NetworkInstance)
	require.True(t, found)
	list, _ := tree.AsList(v)
	assert.Len(t, list, 2)

	v, found = f.read(t, instance("default").Child("config"))
	require.True(t, found)
	assert.True(t, tree.Equal(tree.Node{"name": "default", "type": oc.DefaultInstance}, v), "%v", v)

	v, found = f.read(t, instance("blue").Child("config"))
	require.True(t, found)
	assert.True(t, tree.Equal(tree.Node{
		"name":                     "blue",
		"type":                     oc.L3VRF,
		"description":              "customer blue",
		"enabled-address-families": []interface{}{"IPV4"},
	}, v), "%v", v)

	v, found = f.read(t, member("blue", ge0).Child("config"))
	require.True(t, found)
	assert.True(t, tree.Equal(tree.Node{"id": ge0, "interface": ge0}, v), "%v", v)

	_, found = f.read(t, instance("red"))
	assert.False(t, found)
	_, found = f.read(t, member("blue", ge1))
	assert.False(t, found)
}

func TestCreateVrfWithInterface(t *testing.T) {
	f := newFixture(t)
	after := tree.Node{}
	require.NoError(t, tree.Set(after, oc.Interface.WithKeys(map[string]string{"name": ge1}).Child("config"),
		tree.Node{"name": ge1, "type": oc.EthernetCsmacd, "enabled": true}))
	require.NoError(t, tree.Set(after, instance("red").Child("config"), tree.Node{
		"name":                     "red",
		"type":                     "openconfig-network-instance-types:L3VRF",
		"enabled-address-families": []interface{}{"openconfig-types:IPV4", "openconfig-types:IPV6"},
	}))
	require.NoError(t, tree.Set(after, member("red", ge1).Child("config"), tree.Node{"id": ge1, "interface": ge1}))
	require.NoError(t, f.update(t, nil, after))

	snapshot := f.memory.Snapshot(underlay.Config)
	red, ok := tree.GetNode(snapshot, xr6.VrfID("red"))
	require.True(t, ok)
	afs, _ := tree.Child(red, "afs")
	assert.Len(t, tree.Entries(afs, "af"), 2)

	cfg, ok := tree.GetNode(snapshot, xr6.InterfaceConfigurationID(ge1))
	require.True(t, ok)
	assert.Equal(t, "red", cfg["vrf"])

	require.NoError(t, f.update(t, after, nil))
	snapshot = f.memory.Snapshot(underlay.Config)
	_, ok = tree.GetNode(snapshot, xr6.VrfID("red"))
	assert.False(t, ok)
	_, ok = tree.GetNode(snapshot, xr6.InterfaceConfigurationID(ge1))
	assert.False(t, ok)
}

func TestRemoveInterfaceFromVrf(t *testing.T) {
	f := newFixture(t)
	before := tree.Node{}
	require.NoError(t, tree.Set(before, member("blue", ge0).Child("config"), tree.Node{"id": ge0, "interface": ge0}))
	require.NoError(t, f.update(t, before, tree.Node{}))

	cfg, ok := tree.GetNode(f.memory.Snapshot(underlay.Config), xr6.InterfaceConfigurationID(ge0))
	require.True(t, ok)
	assert.NotContains(t, cfg, "vrf")
}

func TestRejectUnknownInterface(t *testing.T) {
	f := newFixture(t)
	after := tree.Node{}
	require.NoError(t, tree.Set(after, member("blue", "GigabitEthernet0/0/0/7").Child("config"), tree.Node{"id": "GigabitEthernet0/0/0/7"}))
	err := f.update(t, nil, after)
	var failed *translate.UpdateFailedError
	require.True(t, goerrors.As(err, &failed))
	assert.True(t, errors.IsInvalid(failed.Cause))
}

func TestRejectUnsupportedType(t *testing.T) {
	f := newFixture(t)
	after := tree.Node{}
	require.NoError(t, tree.Set(after, instance("vsi").Child("config"), tree.Node{"name": "vsi", "type": "L2VSI"}))
	err := f.update(t, nil, after)
	var failed *translate.UpdateFailedError
	require.True(t, goerrors.As(err, &failed))
	assert.True(t, errors.IsNotSupported(failed.Cause))
}
