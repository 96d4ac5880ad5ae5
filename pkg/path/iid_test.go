// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package path

import (
	"testing"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	gpb "github.com/openconfig/gnmi/proto/gnmi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndString(t *testing.T) {
	id, err := Parse("/interfaces/interface[name=GigabitEthernet0/0/0/0]/config")
	require.NoError(t, err)
	assert.Equal(t, 3, id.Len())
	assert.Equal(t, "/interfaces/interface[name=GigabitEthernet0/0/0/0]/config", id.String())
	assert.Equal(t, "/interfaces/interface/config", id.Schema())

	name, ok := id.Key("interface", "name")
	assert.True(t, ok)
	assert.Equal(t, "GigabitEthernet0/0/0/0", name)

	_, ok = id.Key("subinterface", "index")
	assert.False(t, ok)
}

func TestParseSortsKeysAndStripsModules(t *testing.T) {
	id, err := Parse("/openconfig-network-instance:network-instances/network-instance[name=default]/protocols/protocol[name=1][identifier=openconfig-policy-types:BGP]")
	require.NoError(t, err)
	assert.Equal(t, "/network-instances/network-instance[name=default]/protocols/protocol[identifier=openconfig-policy-types:BGP][name=1]", id.String())
	assert.Equal(t, "openconfig-policy-types:BGP", id.KeyOr("protocol", "identifier", ""))
	assert.Equal(t, "BGP", StripModule(id.KeyOr("protocol", "identifier", "")))
}

func TestParseRoot(t *testing.T) {
	id, err := Parse("/")
	require.NoError(t, err)
	assert.True(t, id.IsRoot())
	assert.Equal(t, "/", id.String())
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse("/interfaces/interface[name=eth0")
	assert.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestChildAndParent(t *testing.T) {
	base := MustParse("/interfaces")
	item := base.ListItem("interface", map[string]string{"name": "eth0"})
	cfg := item.Child("config")

	assert.Equal(t, "/interfaces/interface[name=eth0]/config", cfg.String())
	assert.True(t, cfg.Parent().Equal(item))
	assert.Equal(t, "/interfaces", base.String(), "base must not be mutated")

	other := item.Child("state")
	assert.Equal(t, "/interfaces/interface[name=eth0]/config", cfg.String())
	assert.Equal(t, "/interfaces/interface[name=eth0]/state", other.String())
}

func TestHasPrefix(t *testing.T) {
	id := MustParse("/interfaces/interface[name=eth0]/config/description")
	assert.True(t, id.HasPrefix(MustParse("/interfaces/interface")))
	assert.True(t, id.HasPrefix(MustParse("/interfaces/interface[name=eth0]")))
	assert.False(t, id.HasPrefix(MustParse("/interfaces/interface[name=eth1]")))
	assert.False(t, id.HasPrefix(MustParse("/network-instances")))

	rel, ok := id.TrimPrefix(MustParse("/interfaces/interface[name=eth0]"))
	assert.True(t, ok)
	assert.Equal(t, "/config/description", rel.String())
}

func TestWildcardAndWithKeys(t *testing.T) {
	id := MustParse("/a/b[k=1]/c[x=2]")
	assert.Equal(t, "/a/b/c", id.Wildcard().String())
	assert.True(t, id.Wildcard().IsKeyless())
	assert.Equal(t, "/a/b[k=1]/c[x=3]", id.WithKeys(map[string]string{"x": "3"}).String())
}

func TestGNMIRoundTrip(t *testing.T) {
	prefix := &gpb.Path{Elem: []*gpb.PathElem{{Name: "openconfig-interfaces:interfaces"}}}
	p := &gpb.Path{Elem: []*gpb.PathElem{{Name: "interface", Key: map[string]string{"name": "eth0"}}}}
	id := FromGNMI(prefix, p)
	assert.Equal(t, "/interfaces/interface[name=eth0]", id.String())

	out := id.GNMI()
	require.Len(t, out.Elem, 2)
	assert.Equal(t, "eth0", out.Elem[1].Key["name"])
	out.Elem[1].Key["name"] = "changed"
	assert.Equal(t, "/interfaces/interface[name=eth0]", id.String())
}

func TestEscapedKeys(t *testing.T) {
	id := MustParse("/").ListItem("prefix", map[string]string{"p": "a]b"})
	assert.Equal(t, `/prefix[p=a\]b]`, id.String())
}
