// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package ospf

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
	xrvrf "github.com/onosproject/unitopo-adapter/pkg/units/xr6/vrf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	memory  *underlay.MemoryTransport
	schema  *tree.Schema
	readers *translate.ReaderRegistry
	writers *translate.WriterRegistry
}

func newFixture(t *testing.T) *fixture {
	s, readers, writers, err := unit.Handlers([]unit.Unit{xrvrf.Unit{}, Unit{}})
	require.NoError(t, err)
	m := underlay.NewMemoryTransport(s)
	require.NoError(t, m.Seed(underlay.Config, xr6.VrfID("blue"), tree.Node{"vrf-name": "blue", "create": tree.EmptyLeaf()}))
	require.NoError(t, m.Seed(underlay.Config, processID("100"), tree.Node{
		"process-name": "100",
		"start":        tree.EmptyLeaf(),
		"default-vrf": tree.Node{
			"router-id": "1.1.1.1",
			"area-addresses": tree.Node{
				"area-area-id": []interface{}{
					tree.Node{
						"area-id": float64(0),
						"running": tree.EmptyLeaf(),
						"name-scopes": tree.Node{"name-scope": []interface{}{
							tree.Node{"interface-name": "ge0", "running": tree.EmptyLeaf(), "cost": float64(10)},
						}},
					},
				},
				"area-address": []interface{}{
					tree.Node{"address": "0.0.0.1", "running": tree.EmptyLeaf()},
				},
			},
			"max-metric": tree.Node{"max-metric-on-startup": tree.Node{
				"include-stub": true,
				"external-lsa": false,
				"summary-lsa":  true,
			}},
		},
		"vrfs": tree.Node{"vrf": []interface{}{
			tree.Node{"vrf-name": "blue", "vrf-start": tree.EmptyLeaf(), "router-id": "2.2.2.2"},
		}},
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

func protocol(ni string) path.IID {
	return oc.NetworkInstance.WithKeys(map[string]string{"name": ni}).Child("protocols").
		ListItem("protocol", oc.ProtocolKeys("openconfig-policy-types:OSPF", "100"))
}

func global(ni string) path.IID {
	return protocol(ni).Child("ospfv2").Child("global").Child("config")
}

func area(ni string, identifier string) path.IID {
	return protocol(ni).Child("ospfv2").Child("areas").ListItem("area", map[string]string{"identifier": identifier})
}

func TestReadProcess(t *testing.T) {
	f := newFixture(t)

	v, found := f.read(t, oc.NetworkInstance.WithKeys(map[string]string{"name": "default"}).Child("protocols"))
	require.True(t, found)
	protocols, _ := tree.AsNode(v)
	require.Len(t, tree.Entries(protocols, "protocol"), 1)

	v, found = f.read(t, global("default"))
	require.True(t, found)
	assert.True(t, tree.Equal(tree.Node{"router-id": "1.1.1.1"}, v), "%v", v)

	v, found = f.read(t, global("blue"))
	require.True(t, found)
	assert.True(t, tree.Equal(tree.Node{"router-id": "2.2.2.2"}, v), "%v", v)

	v, found = f.read(t, protocol("default").Child("ospfv2").Child("global").Child("timers").Child("max-metric").Child("config"))
	require.True(t, found)
	assert.True(t, tree.Equal(tree.Node{"include": []interface{}{"MAX_METRIC_INCLUDE_STUB", "MAX_METRIC_SUMMARY_LSA"}}, v), "%v", v)

	v, found = f.read(t, protocol("default").Child("ospfv2").Child("areas"))
	require.True(t, found)
	areas, _ := tree.AsNode(v)
	assert.Len(t, tree.Entries(areas, "area"), 2)

	v, found = f.read(t, area("default", "0").Child("config"))
	require.True(t, found)
	assert.True(t, tree.Equal(tree.Node{"identifier": float64(0)}, v), "%v", v)

	v, found = f.read(t, area("default", "0").Child("interfaces").ListItem("interface", map[string]string{"id": "ge0"}).Child("config"))
	require.True(t, found)
	assert.True(t, tree.Equal(tree.Node{"id": "ge0", "metric": float64(10)}, v), "%v", v)

	_, found = f.read(t, area("blue", "0"))
	assert.False(t, found)

	_, found = f.read(t, protocol("red"))
	assert.False(t, found)
}

func TestWriteVrfArea(t *testing.T) {
	f := newFixture(t)
	before := tree.Node{}
	require.NoError(t, tree.Set(before, global("blue"), tree.Node{"router-id": "2.2.2.2"}))
	after := tree.CopyNode(before)
	require.NoError(t, tree.Set(after, area("blue", "0.0.0.5").Child("config"), tree.Node{"identifier": "0.0.0.5"}))
	require.NoError(t, tree.Set(after, area("blue", "0.0.0.5").Child("interfaces").
		ListItem("interface", map[string]string{"id": "ge0"}).Child("config"), tree.Node{"id": "ge0", "metric": float64(5)}))
	require.NoError(t, f.update(t, before, after))

	aid, err := areaID("100", "blue", "0.0.0.5")
	require.NoError(t, err)
	n, ok := tree.GetNode(f.memory.Snapshot(underlay.Config), aid)
	require.True(t, ok)
	assert.Equal(t, "0.0.0.5", n["address"])

	v, found := f.read(t, area("blue", "0.0.0.5").Child("interfaces").ListItem("interface", map[string]string{"id": "ge0"}).Child("config"))
	require.True(t, found)
	assert.True(t, tree.Equal(tree.Node{"id": "ge0", "metric": float64(5)}, v), "%v", v)

	require.NoError(t, f.update(t, after, before))
	_, found = f.read(t, area("blue", "0.0.0.5"))
	assert.False(t, found)
}

func TestRejectBadArea(t *testing.T) {
	f := newFixture(t)
	before := tree.Node{}
	require.NoError(t, tree.Set(before, global("default"), tree.Node{"router-id": "1.1.1.1"}))
	after := tree.CopyNode(before)
	require.NoError(t, tree.Set(after, area("default", "backbone").Child("config"), tree.Node{"identifier": "backbone"}))
	err := f.update(t, before, after)
	var failed *translate.UpdateFailedError
	require.True(t, goerrors.As(err, &failed))
	assert.True(t, errors.IsInvalid(failed.Cause))
}

func TestUpdateMaxMetric(t *testing.T) {
	f := newFixture(t)
	id := protocol("default").Child("ospfv2").Child("global").Child("timers").Child("max-metric").Child("config")
	before := tree.Node{}
	require.NoError(t, tree.Set(before, id, tree.Node{"include": []interface{}{"MAX_METRIC_INCLUDE_STUB", "MAX_METRIC_SUMMARY_LSA"}}))
	after := tree.Node{}
	require.NoError(t, tree.Set(after, id, tree.Node{"include": []interface{}{"openconfig-ospf-types:MAX_METRIC_INCLUDE_TYPE2_EXTERNAL"}}))
	require.NoError(t, f.update(t, before, after))

	mm, ok := tree.GetNode(f.memory.Snapshot(underlay.Config), vrfID("100", "default").Append(maxMetricRel))
	require.True(t, ok)
	assert.Equal(t, false, mm["include-stub"])
	assert.Equal(t, true, mm["external-lsa"])
	assert.Equal(t, false, mm["summary-lsa"])
}

func TestDeleteDefaultKeepsVrfs(t *testing.T) {
	f := newFixture(t)
	before := tree.Node{}
	require.NoError(t, tree.Set(before, global("default"), tree.Node{"router-id": "1.1.1.1"}))
	require.NoError(t, f.update(t, before, tree.Node{}))

	config := f.memory.Snapshot(underlay.Config)
	_, ok := tree.Get(config, vrfID("100", "default"))
	assert.False(t, ok)
	_, ok = tree.Get(config, vrfID("100", "blue"))
	assert.True(t, ok)
}
