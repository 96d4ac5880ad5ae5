// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package oc holds the OpenConfig identifiers and list keys shared by the translation units.
package oc

import (
	"net"
	"strings"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	gpb "github.com/openconfig/gnmi/proto/gnmi"
)

const organization = "OpenConfig working group"

// DefaultNetworkInstance is the name of the global routing instance
const DefaultNetworkInstance = "default"

// Network instance types
const (
	DefaultInstance = "DEFAULT_INSTANCE"
	L3VRF           = "L3VRF"
)

// Protocol identifiers
const (
	BGP    = "BGP"
	OSPF   = "OSPF"
	Static = "STATIC"
)

// Interface types
const (
	EthernetCsmacd   = "ethernetCsmacd"
	SoftwareLoopback = "softwareLoopback"
	Ieee8023adLag    = "ieee8023adLag"
	Other            = "other"
)

// interfaces
var (
	Interfaces         = path.MustParse("/interfaces")
	Interface          = Interfaces.Child("interface")
	InterfaceConfig    = Interface.Child("config")
	InterfaceState     = Interface.Child("state")
	Subinterfaces      = Interface.Child("subinterfaces")
	Subinterface       = Subinterfaces.Child("subinterface")
	SubinterfaceConfig = Subinterface.Child("config")
	SubinterfaceState  = Subinterface.Child("state")
	Vlan               = Subinterface.Child("vlan")
	VlanConfig         = Vlan.Child("config")
	IPv4               = Subinterface.Child("ipv4")
	IPv4Addresses      = IPv4.Child("addresses")
	IPv4Address        = IPv4Addresses.Child("address")
	IPv4AddressConfig  = IPv4Address.Child("config")
	IPv6               = Subinterface.Child("ipv6")
	IPv6Addresses      = IPv6.Child("addresses")
	IPv6Address        = IPv6Addresses.Child("address")
	IPv6AddressConfig  = IPv6Address.Child("config")
	Aggregation        = Interface.Child("aggregation")
	AggregationConfig  = Aggregation.Child("config")
)

// network instances
var (
	NetworkInstances      = path.MustParse("/network-instances")
	NetworkInstance       = NetworkInstances.Child("network-instance")
	NetworkInstanceConfig = NetworkInstance.Child("config")
	NIInterfaces          = NetworkInstance.Child("interfaces")
	NIInterface           = NIInterfaces.Child("interface")
	NIInterfaceConfig     = NIInterface.Child("config")
	Protocols             = NetworkInstance.Child("protocols")
	Protocol              = Protocols.Child("protocol")
	ProtocolConfig        = Protocol.Child("config")
)

// bgp
var (
	BGPRoot           = Protocol.Child("bgp")
	BGPGlobal         = BGPRoot.Child("global")
	BGPGlobalConfig   = BGPGlobal.Child("config")
	BGPNeighbors      = BGPRoot.Child("neighbors")
	BGPNeighbor       = BGPNeighbors.Child("neighbor")
	BGPNeighborConfig = BGPNeighbor.Child("config")
	BGPNeighborState  = BGPNeighbor.Child("state")
)

// ospfv2
var (
	OSPFRoot                = Protocol.Child("ospfv2")
	OSPFGlobal              = OSPFRoot.Child("global")
	OSPFGlobalConfig        = OSPFGlobal.Child("config")
	OSPFTimers              = OSPFGlobal.Child("timers")
	OSPFMaxMetric           = OSPFTimers.Child("max-metric")
	OSPFMaxMetricConfig     = OSPFMaxMetric.Child("config")
	OSPFAreas               = OSPFRoot.Child("areas")
	OSPFArea                = OSPFAreas.Child("area")
	OSPFAreaConfig          = OSPFArea.Child("config")
	OSPFAreaInterfaces      = OSPFArea.Child("interfaces")
	OSPFAreaInterface       = OSPFAreaInterfaces.Child("interface")
	OSPFAreaInterfaceConfig = OSPFAreaInterface.Child("config")
)

// local routing
var (
	StaticRoutes  = Protocol.Child("static-routes")
	StaticRoute   = StaticRoutes.Child("static")
	StaticConfig  = StaticRoute.Child("config")
	StaticState   = StaticRoute.Child("state")
	NextHops      = StaticRoute.Child("next-hops")
	NextHop       = NextHops.Child("next-hop")
	NextHopConfig = NextHop.Child("config")
	NextHopState  = NextHop.Child("state")
)

// routing policy
var (
	RoutingPolicy         = path.MustParse("/routing-policy")
	DefinedSets           = RoutingPolicy.Child("defined-sets")
	BGPDefinedSets        = DefinedSets.Child("bgp-defined-sets")
	ExtCommunitySets      = BGPDefinedSets.Child("ext-community-sets")
	ExtCommunitySet       = ExtCommunitySets.Child("ext-community-set")
	ExtCommunitySetConfig = ExtCommunitySet.Child("config")
)

// cdp, platform and bfd
var (
	CDP               = path.MustParse("/cdp")
	CDPInterfaces     = CDP.Child("interfaces")
	CDPInterface      = CDPInterfaces.Child("interface")
	CDPInterfaceState = CDPInterface.Child("state")
	CDPNeighbors      = CDPInterface.Child("neighbors")
	CDPNeighbor       = CDPNeighbors.Child("neighbor")
	CDPNeighborState  = CDPNeighbor.Child("state")

	Components     = path.MustParse("/components")
	Component      = Components.Child("component")
	ComponentState = Component.Child("state")

	BFD                = path.MustParse("/bfd")
	BFDInterfaces      = BFD.Child("interfaces")
	BFDInterface       = BFDInterfaces.Child("interface")
	BFDInterfaceConfig = BFDInterface.Child("config")
)

// Schema adds the keys of the OpenConfig lists used by the units.
func Schema(s *tree.Schema) {
	s.AddList(Interface.Schema(), "name").
		AddList(Subinterface.Schema(), "index").
		AddList(IPv4Address.Schema(), "ip").
		AddList(IPv6Address.Schema(), "ip").
		AddList(NetworkInstance.Schema(), "name").
		AddList(NIInterface.Schema(), "id").
		AddList(Protocol.Schema(), "identifier", "name").
		AddList(BGPNeighbor.Schema(), "neighbor-address").
		AddList(OSPFArea.Schema(), "identifier").
		AddList(OSPFAreaInterface.Schema(), "id").
		AddList(StaticRoute.Schema(), "prefix").
		AddList(NextHop.Schema(), "index").
		AddList(CDPInterface.Schema(), "name").
		AddList(CDPNeighbor.Schema(), "id").
		AddList(Component.Schema(), "name").
		AddList(BFDInterface.Schema(), "id").
		AddList(ExtCommunitySet.Schema(), "ext-community-set-name")
}

// Model describes an OpenConfig model for capabilities.
func Model(name string, version string) *gpb.ModelData {
	return &gpb.ModelData{Name: name, Organization: organization, Version: version}
}

// InterfaceName returns the interface key of an identifier.
func InterfaceName(id path.IID) string {
	name, _ := id.Key("interface", "name")
	return name
}

// SubinterfaceIndex returns the subinterface key of an identifier, 0 when absent.
func SubinterfaceIndex(id path.IID) uint64 {
	v, ok := id.Key("subinterface", "index")
	if !ok {
		return 0
	}
	n, _ := tree.Uint(tree.Node{"index": v}, "index")
	return n
}

// NetworkInstanceName returns the network instance key of an identifier.
func NetworkInstanceName(id path.IID) string {
	name, _ := id.Key("network-instance", "name")
	return name
}

// ProtocolKey returns the protocol identifier, without module prefix, and name.
func ProtocolKey(id path.IID) (string, string) {
	identifier, _ := id.Key("protocol", "identifier")
	name, _ := id.Key("protocol", "name")
	return tree.Identity(identifier), name
}

// ProtocolID trims id to its protocol list entry.
func ProtocolID(id path.IID) path.IID {
	for p := id; !p.IsRoot(); p = p.Parent() {
		if name, _ := p.Last(); name == "protocol" {
			return p
		}
	}
	return id
}

// IsProtocol reports whether id lies below a protocol with the given identifier.
func IsProtocol(id path.IID, identifier string) bool {
	p, _ := ProtocolKey(id)
	return strings.EqualFold(p, identifier)
}

// ProtocolKeys returns the keys of a protocol list entry.
func ProtocolKeys(identifier string, name string) map[string]string {
	return map[string]string{"identifier": identifier, "name": name}
}

// IsDefault reports whether name is the global network instance.
func IsDefault(name string) bool {
	return name == DefaultNetworkInstance
}

// Netmask renders an IPv4 prefix length as a dotted netmask.
func Netmask(prefixLength uint64) (string, error) {
	if prefixLength > 32 {
		return "", errors.NewInvalid("bad ipv4 prefix length %d", prefixLength)
	}
	return net.IP(net.CIDRMask(int(prefixLength), 32)).String(), nil
}

// PrefixLength counts the leading ones of a dotted netmask.
func PrefixLength(netmask string) (uint64, error) {
	ip := net.ParseIP(netmask).To4()
	if ip == nil {
		return 0, errors.NewInvalid("bad netmask %s", netmask)
	}
	ones, bits := net.IPMask(ip).Size()
	if bits == 0 {
		return 0, errors.NewInvalid("non contiguous netmask %s", netmask)
	}
	return uint64(ones), nil
}
