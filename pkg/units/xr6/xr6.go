// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package xr6 holds the IOS XR device paths shared by the XR 5 and 6 translation units.
package xr6

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/underlay"
	"github.com/onosproject/unitopo-adapter/pkg/unit"
	"github.com/onosproject/unitopo-adapter/pkg/units/oc"
	gpb "github.com/openconfig/gnmi/proto/gnmi"
)

// DeviceType is the type IOS XR devices are mounted with
const DeviceType = "ios xr"

// Active is the only interface configuration set supported
const Active = "act"

// Devices are the IOS XR releases the units handle
var Devices = []unit.Device{
	{Type: DeviceType, Version: "5.*"},
	{Type: DeviceType, Version: "6.*"},
}

var (
	// InterfaceConfigurations is the interface configuration of the device
	InterfaceConfigurations = path.MustParse("/interface-configurations")
	// InterfaceConfiguration is one interface configuration, keyed by active and interface-name
	InterfaceConfiguration = InterfaceConfigurations.Child("interface-configuration")
	// DataNodes holds the operational interface properties
	DataNodes = path.MustParse("/interface-properties/data-nodes")
	// DataNode is one data node
	DataNode = DataNodes.Child("data-node")
	// OperInterface is the operational view of an interface
	OperInterface = DataNode.Child("system-view").Child("interfaces").Child("interface")
	// Vrfs is the VRF configuration of the device
	Vrfs = path.MustParse("/vrfs")
	// Vrf is one VRF, keyed by vrf-name
	Vrf = Vrfs.Child("vrf")
)

var subinterfaceName = regexp.MustCompile(`^(.+)\.([0-9]+)$`)

// Model describes a Cisco IOS XR model.
func Model(name string, version string) *gpb.ModelData {
	return &gpb.ModelData{Name: name, Organization: "Cisco Systems, Inc.", Version: version}
}

// Schema adds the keys of the device lists the interface handling relies on.
func Schema(s *tree.Schema) {
	s.AddList(InterfaceConfiguration.Schema(), "active", "interface-name").
		AddList(DataNode.Schema(), "data-node-name").
		AddList(OperInterface.Schema(), "interface-name").
		AddList(Vrf.Schema(), "vrf-name")
}

// VrfID addresses the configuration of a VRF.
func VrfID(name string) path.IID {
	return Vrf.WithKeys(map[string]string{"vrf-name": name})
}

// VrfNames returns the names of the VRFs configured on the device.
func VrfNames(access underlay.Access) ([]string, error) {
	n, err := access.ReadNode(Vrfs, underlay.Config)
	if err != nil || n == nil {
		return nil, err
	}
	var names []string
	for _, vrf := range tree.Entries(n, "vrf") {
		if name, ok := tree.String(vrf, "vrf-name"); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// InterfaceConfigurationID addresses the active configuration of an interface.
func InterfaceConfigurationID(name string) path.IID {
	return InterfaceConfiguration.WithKeys(map[string]string{"active": Active, "interface-name": name})
}

// IsSubinterface reports whether name is a subinterface name such as GigabitEthernet0/0/0/0.100.
func IsSubinterface(name string) bool {
	return subinterfaceName.MatchString(name)
}

// SplitSubinterface returns the parent interface and index of a subinterface name.
func SplitSubinterface(name string) (string, uint64, bool) {
	m := subinterfaceName.FindStringSubmatch(name)
	if m == nil {
		return "", 0, false
	}
	idx, err := strconv.ParseUint(m[2], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return m[1], idx, true
}

// SubinterfaceName returns the device name of a subinterface. Index 0 is the interface itself.
func SubinterfaceName(ifc string, index uint64) string {
	if index == 0 {
		return ifc
	}
	return fmt.Sprintf("%s.%d", ifc, index)
}

// InterfaceType derives the OpenConfig interface type from an interface name.
func InterfaceType(name string) string {
	switch {
	case hasAnyPrefix(name, "MgmtEth", "FastEther", "GigabitEthernet", "TenGigE", "HundredGigE"):
		return oc.EthernetCsmacd
	case hasAnyPrefix(name, "Loopback"):
		return oc.SoftwareLoopback
	case hasAnyPrefix(name, "Bundle-Ether"):
		return oc.Ieee8023adLag
	}
	return oc.Other
}

// IsVirtual reports whether the interface only exists in configuration.
func IsVirtual(name string) bool {
	return hasAnyPrefix(name, "Loopback", "null")
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// InterfaceNames returns the names of every interface and subinterface the device reports.
func InterfaceNames(access underlay.Access) ([]string, error) {
	n, err := access.ReadNode(DataNodes, underlay.Operational)
	if err != nil || n == nil {
		return nil, err
	}
	var names []string
	for _, dn := range tree.Entries(n, "data-node") {
		view, _ := tree.Child(dn, "system-view")
		ifcs, _ := tree.Child(view, "interfaces")
		for _, ifc := range tree.Entries(ifcs, "interface") {
			if name, ok := tree.String(ifc, "interface-name"); ok {
				names = append(names, name)
			}
		}
	}
	return names, nil
}

// OperProperties returns the operational properties of an interface, or nil.
func OperProperties(access underlay.Access, name string) (tree.Node, error) {
	n, err := access.ReadNode(DataNodes, underlay.Operational)
	if err != nil || n == nil {
		return nil, err
	}
	for _, dn := range tree.Entries(n, "data-node") {
		view, _ := tree.Child(dn, "system-view")
		ifcs, _ := tree.Child(view, "interfaces")
		for _, ifc := range tree.Entries(ifcs, "interface") {
			if tree.StringOr(ifc, "interface-name", "") == name {
				return ifc, nil
			}
		}
	}
	return nil, nil
}

// InterfaceExists reports whether the device reports the interface.
func InterfaceExists(access underlay.Access, name string) (bool, error) {
	names, err := InterfaceNames(access)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ReadInterfaceConfiguration returns the configuration of an existing interface. Interfaces
// that are up but unconfigured get a default configuration; unknown interfaces return nil.
func ReadInterfaceConfiguration(access underlay.Access, name string) (tree.Node, error) {
	exists, err := InterfaceExists(access, name)
	if err != nil || !exists {
		return nil, err
	}
	cfg, err := access.ReadNode(InterfaceConfigurationID(name), underlay.Config)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return tree.Node{"active": Active, "interface-name": name}, nil
	}
	return cfg, nil
}
