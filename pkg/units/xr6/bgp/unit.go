// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package bgp translates the OpenConfig BGP protocol for IOS XR 5 and 6.
package bgp

import (
	"strconv"

	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/translate"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/underlay"
	"github.com/onosproject/unitopo-adapter/pkg/unit"
	"github.com/onosproject/unitopo-adapter/pkg/units/networkinstance"
	"github.com/onosproject/unitopo-adapter/pkg/units/oc"
	"github.com/onosproject/unitopo-adapter/pkg/units/xr6"
	gpb "github.com/openconfig/gnmi/proto/gnmi"
)

// InstanceName is the only BGP instance the unit manages
const InstanceName = "default"

// device configuration
var (
	instanceCfg    = path.MustParse("/bgp/instance")
	instanceAs     = instanceCfg.Child("instance-as")
	fourByteAs     = instanceAs.Child("four-byte-as")
	vrfCfg         = fourByteAs.Child("vrfs").Child("vrf")
	neighborCfg    = fourByteAs.Child("default-vrf").Child("bgp-entity").Child("neighbors").Child("neighbor")
	vrfNeighborCfg = vrfCfg.Child("vrf-neighbors").Child("vrf-neighbor")
)

// device operational state
var (
	instanceOper    = path.MustParse("/bgp/instances/instance")
	neighborOper    = instanceOper.Child("instance-active").Child("default-vrf").Child("neighbors").Child("neighbor")
	vrfOper         = instanceOper.Child("instance-active").Child("vrfs").Child("vrf")
	vrfNeighborOper = vrfOper.Child("neighbors").Child("neighbor")
)

// Unit is the IOS XR BGP translation unit
type Unit struct{}

func (Unit) String() string {
	return "XR 6 (2015-07-30) BGP translate unit"
}

// Devices implements unit.Unit
func (Unit) Devices() []unit.Device {
	return xr6.Devices
}

// Models implements unit.Unit
func (Unit) Models() []*gpb.ModelData {
	return []*gpb.ModelData{
		oc.Model("openconfig-network-instance", "0.10.0"),
		oc.Model("openconfig-bgp", "4.0.1"),
	}
}

// UnderlayModels implements unit.Unit
func (Unit) UnderlayModels() []*gpb.ModelData {
	return []*gpb.ModelData{
		xr6.Model("Cisco-IOS-XR-ipv4-bgp-cfg", "2015-08-27"),
		xr6.Model("Cisco-IOS-XR-ipv4-bgp-oper", "2015-08-27"),
	}
}

// Schema implements unit.Unit
func (Unit) Schema(s *tree.Schema) {
	oc.Schema(s)
	s.AddList(instanceCfg.Schema(), "instance-name").
		AddList(instanceAs.Schema(), "as").
		AddList(fourByteAs.Schema(), "as").
		AddList(vrfCfg.Schema(), "vrf-name").
		AddList(neighborCfg.Schema(), "neighbor-address").
		AddList(vrfNeighborCfg.Schema(), "neighbor-address").
		AddList(instanceOper.Schema(), "instance-name").
		AddList(neighborOper.Schema(), "neighbor-address").
		AddList(vrfOper.Schema(), "vrf-name").
		AddList(vrfNeighborOper.Schema(), "neighbor-address")
}

// ProvideHandlers implements unit.Unit
func (Unit) ProvideHandlers(rb *translate.ReaderRegistryBuilder, wb *translate.WriterRegistryBuilder) {
	networkinstance.Provide(rb, wb)
	rb.AddList(oc.Protocol, networkinstance.Protocols(oc.BGP, protocolNames))
	rb.AddStructural(oc.BGPRoot)
	rb.AddStructural(oc.BGPGlobal)
	rb.Add(oc.BGPGlobalConfig, translate.ReaderFunc(readGlobalConfig))
	rb.AddStructural(oc.BGPNeighbors)
	rb.AddList(oc.BGPNeighbor, neighborReader)
	rb.Add(oc.BGPNeighborConfig, translate.ReaderFunc(readNeighborConfig))
	rb.AddOper(oc.BGPNeighborState, translate.ReaderFunc(readNeighborState))

	wb.AddAfter(oc.BGPGlobalConfig, globalConfigWriter{}, oc.NetworkInstanceConfig, oc.ProtocolConfig)
	wb.AddAfter(oc.BGPNeighborConfig, translate.ReplaceOnUpdate(neighborConfigWriter{}), oc.BGPGlobalConfig)
}

// ToXxYy splits a four byte AS number into its high and low halves.
func ToXxYy(as uint64) (uint64, uint64) {
	return as >> 16, as & 0xFFFF
}

// FromXxYy joins the halves of a four byte AS number.
func FromXxYy(xx uint64, yy uint64) uint64 {
	return xx<<16 | yy
}

func instanceID() path.IID {
	return instanceCfg.WithKeys(map[string]string{"instance-name": InstanceName}).
		ListItem("instance-as", map[string]string{"as": "0"})
}

func fourByteAsID(as uint64) path.IID {
	return instanceID().ListItem("four-byte-as", map[string]string{"as": strconv.FormatUint(as, 10)})
}

// process returns the four byte AS container of the instance, or nil.
func process(access underlay.Access) (tree.Node, error) {
	n, err := access.ReadNode(instanceID(), underlay.Config)
	if err != nil || n == nil {
		return nil, err
	}
	entries := tree.Entries(n, "four-byte-as")
	if len(entries) == 0 {
		return nil, nil
	}
	return entries[0], nil
}

// vrfOf returns the configuration of the network instance within the process.
func vrfOf(p tree.Node, ni string) tree.Node {
	if oc.IsDefault(ni) {
		n, _ := tree.Child(p, "default-vrf")
		return n
	}
	vrfs, _ := tree.Child(p, "vrfs")
	for _, v := range tree.Entries(vrfs, "vrf") {
		if tree.StringOr(v, "vrf-name", "") == ni {
			return v
		}
	}
	return nil
}

func protocolNames(rc *translate.ReadContext, ni string) ([]string, error) {
	p, err := process(rc.Underlay())
	if err != nil || p == nil {
		return nil, err
	}
	if oc.IsDefault(ni) || vrfOf(p, ni) != nil {
		return []string{InstanceName}, nil
	}
	return nil, nil
}
