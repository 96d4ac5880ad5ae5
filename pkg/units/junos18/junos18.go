// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package junos18 holds the Junos device paths shared by the Junos 18 translation units.
package junos18

import (
	"strings"

	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/underlay"
	"github.com/onosproject/unitopo-adapter/pkg/unit"
	"github.com/onosproject/unitopo-adapter/pkg/units/oc"
	gpb "github.com/openconfig/gnmi/proto/gnmi"
)

// DeviceType is the type Junos devices are mounted with
const DeviceType = "junos"

// Devices are the Junos releases the units handle
var Devices = []unit.Device{{Type: DeviceType, Version: "18.*"}}

var (
	// Interfaces is the interface configuration of the device
	Interfaces = path.MustParse("/configuration/interfaces")
	// Interface is one interface, keyed by name
	Interface = Interfaces.Child("interface")
	// Unit is a logical unit of an interface, keyed by name
	Unit = Interface.Child("unit")
	// Address is an inet address of a unit, keyed by name in ip/prefix-length form
	Address = Unit.Child("family").Child("inet").Child("address")
)

var ethernetPrefixes = []string{"em", "et", "fe", "fxp", "ge", "xe"}

// Model describes a Juniper model.
func Model(name string, version string) *gpb.ModelData {
	return &gpb.ModelData{Name: name, Organization: "Juniper Networks, Inc.", Version: version}
}

// Schema adds the keys of the device interface lists.
func Schema(s *tree.Schema) {
	s.AddList(Interface.Schema(), "name").
		AddList(Unit.Schema(), "name").
		AddList(Address.Schema(), "name")
}

// InterfaceID addresses the configuration of an interface.
func InterfaceID(name string) path.IID {
	return Interface.WithKeys(map[string]string{"name": name})
}

// UnitID addresses a logical unit of an interface.
func UnitID(name string, index string) path.IID {
	return InterfaceID(name).ListItem("unit", map[string]string{"name": index})
}

// InterfaceType derives the OpenConfig interface type from an interface name.
func InterfaceType(name string) string {
	for _, p := range ethernetPrefixes {
		if strings.HasPrefix(name, p) {
			return oc.EthernetCsmacd
		}
	}
	switch {
	case strings.HasPrefix(name, "lo"):
		return oc.SoftwareLoopback
	case strings.HasPrefix(name, "ae"):
		return oc.Ieee8023adLag
	}
	return oc.Other
}

// IsAggregate reports whether name is an aggregated ethernet interface.
func IsAggregate(name string) bool {
	return strings.HasPrefix(name, "ae")
}

// ReadInterfaces returns the configured interfaces.
func ReadInterfaces(access underlay.Access) ([]tree.Node, error) {
	n, err := access.ReadNode(Interfaces, underlay.Config)
	if err != nil || n == nil {
		return nil, err
	}
	return tree.Entries(n, "interface"), nil
}

// ReadInterface returns the configuration of one interface, or nil.
func ReadInterface(access underlay.Access, name string) (tree.Node, error) {
	return access.ReadNode(InterfaceID(name), underlay.Config)
}
