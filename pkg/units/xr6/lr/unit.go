// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package lr reads the static routes of IOS XR 5 and 6 as the OpenConfig STATIC protocol.
package lr

import (
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

// ProtocolName is the name of the single static protocol entry of a network instance
const ProtocolName = "default"

var (
	routerStatic = path.MustParse("/router-static")
	staticVrf    = routerStatic.Child("vrfs").Child("vrf")

	// relative to an address family
	families = []string{"vrfipv4", "vrfipv6"}
	casts    = []string{"vrf-unicast", "vrf-multicast"}

	// relative to a prefix
	nextHopTable = path.MustParse("/vrf-route/vrf-next-hop-table")

	interfaceRef       = oc.NextHop.Child("interface-ref")
	interfaceRefConfig = interfaceRef.Child("config")
)

// Unit is the IOS XR local routing translation unit
type Unit struct{}

func (Unit) String() string {
	return "XR 6 (2015-07-30) Local Routes translate unit"
}

// Devices implements unit.Unit
func (Unit) Devices() []unit.Device {
	return xr6.Devices
}

// Models implements unit.Unit
func (Unit) Models() []*gpb.ModelData {
	return []*gpb.ModelData{
		oc.Model("openconfig-network-instance", "0.10.0"),
		oc.Model("openconfig-local-routing", "1.0.1"),
	}
}

// UnderlayModels implements unit.Unit
func (Unit) UnderlayModels() []*gpb.ModelData {
	return []*gpb.ModelData{xr6.Model("Cisco-IOS-XR-ip-static-cfg", "2015-09-10")}
}

// Schema implements unit.Unit
func (Unit) Schema(s *tree.Schema) {
	oc.Schema(s)
	s.AddList(staticVrf.Schema(), "vrf-name")
	for _, vrf := range []path.IID{routerStatic.Child("default-vrf"), staticVrf} {
		for _, family := range families {
			for _, cast := range casts {
				prefix := vrf.Child("address-family").Child(family).Child(cast).Child("vrf-prefixes").Child("vrf-prefix")
				table := prefix.Append(nextHopTable)
				s.AddList(prefix.Schema(), "prefix", "prefix-length").
					AddList(table.Child("vrf-next-hop-interface-name").Schema(), "interface-name").
					AddList(table.Child("vrf-next-hop-interface-name-next-hop-address").Schema(), "interface-name", "next-hop-address").
					AddList(table.Child("vrf-next-hop-next-hop-address").Schema(), "next-hop-address")
			}
		}
	}
}

// ProvideHandlers implements unit.Unit. Static routes are read only.
func (Unit) ProvideHandlers(rb *translate.ReaderRegistryBuilder, wb *translate.WriterRegistryBuilder) {
	networkinstance.Provide(rb, wb)
	rb.AddList(oc.Protocol, networkinstance.Protocols(oc.Static, protocolNames))
	rb.AddStructural(oc.StaticRoutes)
	rb.AddList(oc.StaticRoute, staticReader)
	rb.Add(oc.StaticConfig, translate.ReaderFunc(readStatic))
	rb.AddOper(oc.StaticState, translate.ReaderFunc(readStatic))
	rb.AddStructural(oc.NextHops)
	rb.AddList(oc.NextHop, nextHopReader)
	rb.Add(oc.NextHopConfig, translate.ReaderFunc(readNextHopConfig))
	rb.AddOper(oc.NextHopState, translate.ReaderFunc(readNextHopConfig))
	rb.AddStructural(interfaceRef)
	rb.Add(interfaceRefConfig, translate.ReaderFunc(readInterfaceRef))
}

// addressFamily returns the static address family configuration of a network instance, or nil.
func addressFamily(access underlay.Access, ni string) (tree.Node, error) {
	rs, err := access.ReadNode(routerStatic, underlay.Config)
	if err != nil || rs == nil {
		return nil, err
	}
	if oc.IsDefault(ni) {
		vrf, _ := tree.Child(rs, "default-vrf")
		af, _ := tree.Child(vrf, "address-family")
		return af, nil
	}
	vrfs, _ := tree.Child(rs, "vrfs")
	for _, vrf := range tree.Entries(vrfs, "vrf") {
		if tree.StringOr(vrf, "vrf-name", "") == ni {
			af, _ := tree.Child(vrf, "address-family")
			return af, nil
		}
	}
	return nil, nil
}

func protocolNames(rc *translate.ReadContext, ni string) ([]string, error) {
	af, err := addressFamily(rc.Underlay(), ni)
	if err != nil || af == nil {
		return nil, err
	}
	return []string{ProtocolName}, nil
}
