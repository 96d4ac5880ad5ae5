// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package lr

import (
	"context"
	"testing"

	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/translate"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/underlay"
	"github.com/onosproject/unitopo-adapter/pkg/unit"
	"github.com/onosproject/unitopo-adapter/pkg/units/oc"
	"github.com/onosproject/unitopo-adapter/pkg/units/xr6"
	"github.com/onosproject/unitopo-adapter/pkg/units/xr6/vrf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReader(t *testing.T) func(id path.IID, configOnly bool) (interface{}, bool) {
	s, readers, _, err := unit.Handlers([]unit.Unit{vrf.Unit{}, Unit{}})
	require.NoError(t, err)
	m := underlay.NewMemoryTransport(s)
	require.NoError(t, m.Seed(underlay.Config, xr6.VrfID("blue"), tree.Node{"vrf-name": "blue", "create": tree.EmptyLeaf()}))
	require.NoError(t, m.Seed(underlay.Config, routerStatic, tree.Node{
		"default-vrf": tree.Node{"address-family": tree.Node{"vrfipv4": tree.Node{"vrf-unicast": tree.Node{
			"vrf-prefixes": tree.Node{"vrf-prefix": []interface{}{
				tree.Node{
					"prefix":        "10.1.0.0",
					"prefix-length": float64(16),
					"vrf-route": tree.Node{"vrf-next-hop-table": tree.Node{
						"vrf-next-hop-interface-name": []interface{}{
							tree.Node{"interface-name": "GigabitEthernet0/0/0/1"},
						},
						"vrf-next-hop-interface-name-next-hop-address": []interface{}{
							tree.Node{"interface-name": "GigabitEthernet0/0/0/2", "next-hop-address": "192.168.2.1"},
						},
						"vrf-next-hop-next-hop-address": []interface{}{
							tree.Node{"next-hop-address": "192.168.1.1", "load-metric": float64(5)},
						},
					}},
				},
			}},
		}}}},
		"vrfs": tree.Node{"vrf": []interface{}{
			tree.Node{"vrf-name": "blue", "address-family": tree.Node{"vrfipv6": tree.Node{"vrf-multicast": tree.Node{
				"vrf-prefixes": tree.Node{"vrf-prefix": []interface{}{
					tree.Node{"prefix": "2001:db8::", "prefix-length": float64(32)},
				}},
			}}}},
		}},
	}))
	return func(id path.IID, configOnly bool) (interface{}, bool) {
		txn := underlay.NewTxn(context.Background(), "xr1", m, s)
		v, found, err := readers.Read(translate.NewReadContext(context.Background(), txn), id, configOnly)
		require.NoError(t, err)
		return v, found
	}
}

func static(ni string, prefix string) path.IID {
	return oc.NetworkInstance.WithKeys(map[string]string{"name": ni}).Child("protocols").
		ListItem("protocol", oc.ProtocolKeys("openconfig-policy-types:STATIC", ProtocolName)).
		Child("static-routes").ListItem("static", map[string]string{"prefix": prefix})
}

func nextHopID(index string) path.IID {
	return static("default", "10.1.0.0/16").Child("next-hops").ListItem("next-hop", map[string]string{"index": index})
}

func TestListStaticRoutes(t *testing.T) {
	read := newReader(t)

	v, found := read(oc.NetworkInstance.WithKeys(map[string]string{"name": "default"}).Child("protocols"), true)
	require.True(t, found)
	protocols, _ := tree.AsNode(v)
	require.Len(t, tree.Entries(protocols, "protocol"), 1)

	v, found = read(static("default", "10.1.0.0/16").Parent(), true)
	require.True(t, found)
	routes, _ := tree.AsNode(v)
	require.Len(t, tree.Entries(routes, "static"), 1)

	v, found = read(static("default", "10.1.0.0/16").Child("next-hops"), true)
	require.True(t, found)
	hops, _ := tree.AsNode(v)
	var indexes []string
	for _, h := range tree.Entries(hops, "next-hop") {
		indexes = append(indexes, tree.StringOr(h, "index", ""))
	}
	assert.Equal(t, []string{"GigabitEthernet0/0/0/1", "192.168.2.1 GigabitEthernet0/0/0/2", "192.168.1.1"}, indexes)

	v, found = read(static("blue", "2001:db8::/32").Child("config"), true)
	require.True(t, found)
	assert.True(t, tree.Equal(tree.Node{"prefix": "2001:db8::/32"}, v), "%v", v)

	_, found = read(static("default", "10.2.0.0/16"), true)
	assert.False(t, found)
}

func TestReadNextHops(t *testing.T) {
	read := newReader(t)

	v, found := read(nextHopID("192.168.1.1").Child("config"), true)
	require.True(t, found)
	assert.True(t, tree.Equal(tree.Node{"index": "192.168.1.1", "next-hop": "192.168.1.1", "metric": float64(5)}, v), "%v", v)

	v, found = read(nextHopID("GigabitEthernet0/0/0/1").Child("interface-ref").Child("config"), true)
	require.True(t, found)
	assert.True(t, tree.Equal(tree.Node{"interface": "GigabitEthernet0/0/0/1"}, v), "%v", v)

	_, found = read(nextHopID("192.168.1.1").Child("interface-ref"), true)
	assert.False(t, found)

	v, found = read(nextHopID("192.168.2.1 GigabitEthernet0/0/0/2").Child("state"), false)
	require.True(t, found)
	assert.True(t, tree.Equal(tree.Node{"index": "192.168.2.1 GigabitEthernet0/0/0/2", "next-hop": "192.168.2.1"}, v), "%v", v)
}
