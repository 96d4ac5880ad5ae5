// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package cdp

import (
	"context"
	"testing"

	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/translate"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/underlay"
	"github.com/onosproject/unitopo-adapter/pkg/unit"
	"github.com/onosproject/unitopo-adapter/pkg/units/oc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func read(t *testing.T, id path.IID, configOnly bool) (interface{}, bool) {
	s, readers, _, err := unit.Handlers([]unit.Unit{Unit{}})
	require.NoError(t, err)
	m := underlay.NewMemoryTransport(s)
	require.NoError(t, m.Seed(underlay.Operational, node.WithKeys(map[string]string{"node-name": "0/0/CPU0"}), tree.Node{
		"node-name": "0/0/CPU0",
		"interfaces": tree.Node{"interface": []interface{}{
			tree.Node{"interface-name": "GigabitEthernet0/0/0/0"},
			tree.Node{"interface-name": "GigabitEthernet0/0/0/1"},
		}},
		"neighbors": tree.Node{"summaries": tree.Node{"summary": []interface{}{
			tree.Node{
				"interface-name": "GigabitEthernet0/0/0/0",
				"device-id":      "core1",
				"cdp-neighbor": []interface{}{
					tree.Node{"port-id": "GigabitEthernet0/0/0/5", "platform": "cisco ASR9K"},
				},
			},
		}}},
	}))
	txn := underlay.NewTxn(context.Background(), "xr1", m, s)
	v, found, err := readers.Read(translate.NewReadContext(context.Background(), txn), id, configOnly)
	require.NoError(t, err)
	return v, found
}

func cdpInterface(name string) path.IID {
	return oc.CDPInterface.WithKeys(map[string]string{"name": name})
}

func TestReadInterfaces(t *testing.T) {
	v, found := read(t, oc.CDPInterfaces, true)
	require.True(t, found)
	ifcs, _ := tree.AsNode(v)
	assert.Len(t, tree.Entries(ifcs, "interface"), 2)

	v, found = read(t, cdpInterface("GigabitEthernet0/0/0/1").Child("config"), true)
	require.True(t, found)
	assert.True(t, tree.Equal(tree.Node{"name": "GigabitEthernet0/0/0/1", "enabled": true}, v), "%v", v)

	_, found = read(t, cdpInterface("GigabitEthernet0/0/0/9"), false)
	assert.False(t, found)
}

func TestReadNeighbors(t *testing.T) {
	id := cdpInterface("GigabitEthernet0/0/0/0").Child("neighbors").ListItem("neighbor", map[string]string{"id": "core1"})

	_, found := read(t, id, true)
	assert.False(t, found)

	v, found := read(t, id.Child("state"), false)
	require.True(t, found)
	assert.True(t, tree.Equal(tree.Node{"id": "core1", "port-id": "GigabitEthernet0/0/0/5", "platform": "cisco ASR9K"}, v), "%v", v)

	v, found = read(t, cdpInterface("GigabitEthernet0/0/0/1"), false)
	require.True(t, found)
	ifc, _ := tree.AsNode(v)
	_, ok := ifc["neighbors"]
	assert.False(t, ok)
}
