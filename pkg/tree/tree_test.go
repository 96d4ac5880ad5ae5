// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package tree

import (
	"testing"

	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() *Schema {
	return NewSchema().
		AddList("/interfaces/interface", "name").
		AddList("/interfaces/interface/subinterfaces/subinterface", "index")
}

func sampleTree(t *testing.T) Node {
	n, err := NodeFromJSON([]byte(`{
		"openconfig-interfaces:interfaces": {
			"interface": [
				{"name": "eth0", "config": {"name": "eth0", "mtu": 1500, "enabled": true}},
				{"name": "eth1", "config": {"name": "eth1", "description": "uplink"},
				 "subinterfaces": {"subinterface": [{"index": 0, "config": {"index": 0}}]}}
			]
		}
	}`))
	require.NoError(t, err)
	return n
}

func TestGet(t *testing.T) {
	root := sampleTree(t)

	v, ok := Get(root, path.MustParse("/interfaces/interface[name=eth0]/config/mtu"))
	assert.True(t, ok)
	assert.Equal(t, float64(1500), v)

	cfg, ok := GetNode(root, path.MustParse("/interfaces/interface[name=eth1]/subinterfaces/subinterface[index=0]/config"))
	assert.True(t, ok)
	idx, ok := Uint(cfg, "index")
	assert.True(t, ok)
	assert.Equal(t, uint64(0), idx)

	_, ok = Get(root, path.MustParse("/interfaces/interface[name=eth2]"))
	assert.False(t, ok)

	list, ok := Get(root, path.MustParse("/interfaces/interface"))
	assert.True(t, ok)
	assert.Len(t, list, 2)
}

func TestSetCreatesEntries(t *testing.T) {
	root := Node{}
	id := path.MustParse("/interfaces/interface[name=eth0]/config")
	require.NoError(t, Set(root, id, Node{"name": "eth0", "mtu": uint32(9000)}))

	entry, ok := GetNode(root, path.MustParse("/interfaces/interface[name=eth0]"))
	require.True(t, ok)
	assert.Equal(t, "eth0", entry["name"])

	mtu, ok := Get(root, id.Child("mtu"))
	assert.True(t, ok)
	assert.Equal(t, float64(9000), mtu)

	require.NoError(t, Set(root, path.MustParse("/interfaces/interface[name=eth0]"), Node{"config": Node{"mtu": 1}}))
	entry, _ = GetNode(root, path.MustParse("/interfaces/interface[name=eth0]"))
	assert.Equal(t, "eth0", entry["name"], "key leaves are filled in")
	list, _ := Get(root, path.MustParse("/interfaces/interface"))
	assert.Len(t, list, 1)
}

func TestSetThroughLeafFails(t *testing.T) {
	root := Node{"a": "leaf"}
	assert.Error(t, Set(root, path.MustParse("/a/b"), "x"))
}

func TestMerge(t *testing.T) {
	root := sampleTree(t)
	s := testSchema()

	err := Merge(root, path.MustParse("/interfaces"), Node{
		"interface": []interface{}{
			Node{"name": "eth0", "config": Node{"description": "core"}},
			Node{"name": "eth2", "config": Node{"name": "eth2"}},
		},
	}, s)
	require.NoError(t, err)

	cfg, _ := GetNode(root, path.MustParse("/interfaces/interface[name=eth0]/config"))
	assert.Equal(t, "core", cfg["description"])
	assert.Equal(t, float64(1500), cfg["mtu"])

	list, _ := Get(root, path.MustParse("/interfaces/interface"))
	assert.Len(t, list, 3)
}

func TestDelete(t *testing.T) {
	root := sampleTree(t)
	assert.True(t, Delete(root, path.MustParse("/interfaces/interface[name=eth0]")))
	assert.False(t, Delete(root, path.MustParse("/interfaces/interface[name=eth0]")))
	assert.True(t, Delete(root, path.MustParse("/interfaces/interface[name=eth1]/config/description")))

	_, ok := Get(root, path.MustParse("/interfaces/interface[name=eth1]/config/description"))
	assert.False(t, ok)

	assert.True(t, Delete(root, path.MustParse("/interfaces/interface[name=eth1]")))
	_, ok = Get(root, path.MustParse("/interfaces/interface"))
	assert.False(t, ok, "empty lists are removed")
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Node{"a": 1, "b": Node{}}, Node{"a": float64(1)}))
	assert.True(t, Equal(
		Node{"l": []interface{}{Node{"k": "1"}, Node{"k": "2"}}},
		Node{"l": []interface{}{Node{"k": "2"}, Node{"k": "1"}}}))
	assert.False(t, Equal(Node{"a": 1}, Node{"a": 2}))
	assert.True(t, Equal(nil, Node{}))
}

func TestInstances(t *testing.T) {
	root := sampleTree(t)
	ids := Instances(root, path.MustParse("/interfaces/interface/config"), testSchema())
	require.Len(t, ids, 2)
	assert.Equal(t, "/interfaces/interface[name=eth0]/config", ids[0].String())
	assert.Equal(t, "/interfaces/interface[name=eth1]/config", ids[1].String())

	subs := Instances(root, path.MustParse("/interfaces/interface/subinterfaces/subinterface"), testSchema())
	require.Len(t, subs, 1)
	assert.Equal(t, "/interfaces/interface[name=eth1]/subinterfaces/subinterface[index=0]", subs[0].String())
}

func TestPrune(t *testing.T) {
	root := sampleTree(t)
	ifaces, _ := GetNode(root, path.MustParse("/interfaces"))
	Prune(ifaces, []string{"interface", "subinterfaces"})

	_, ok := Get(root, path.MustParse("/interfaces/interface[name=eth1]/subinterfaces"))
	assert.False(t, ok)
	_, ok = Get(root, path.MustParse("/interfaces/interface[name=eth1]/config"))
	assert.True(t, ok)
}

func TestDiff(t *testing.T) {
	before := sampleTree(t)
	after := CopyNode(before)
	require.NoError(t, Set(after, path.MustParse("/interfaces/interface[name=eth0]/config/mtu"), 9000))
	Delete(after, path.MustParse("/interfaces/interface[name=eth1]/subinterfaces"))

	changes := Diff(before, after, testSchema())
	var rendered []string
	for _, c := range changes {
		rendered = append(rendered, c.String())
	}
	assert.ElementsMatch(t, []string{
		"/interfaces/interface[name=eth0]/config/mtu",
		"/interfaces/interface[name=eth1]/subinterfaces/subinterface[index=0]/config/index",
		"/interfaces/interface[name=eth1]/subinterfaces/subinterface[index=0]/index",
	}, rendered)

	assert.Empty(t, Diff(before, CopyNode(before), testSchema()))
}

func TestScalarString(t *testing.T) {
	assert.Equal(t, "4294967295", ScalarString(float64(4294967295)))
	assert.Equal(t, "true", ScalarString(true))
	assert.Equal(t, "10", ScalarString(uint32(10)))
}
