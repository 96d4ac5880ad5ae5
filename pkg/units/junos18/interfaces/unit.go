// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package interfaces translates OpenConfig interfaces for Junos 18.
package interfaces

import (
	"github.com/onosproject/onos-lib-go/pkg/logging"
	"github.com/onosproject/unitopo-adapter/pkg/translate"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/unit"
	"github.com/onosproject/unitopo-adapter/pkg/units/junos18"
	"github.com/onosproject/unitopo-adapter/pkg/units/oc"
	gpb "github.com/openconfig/gnmi/proto/gnmi"
)

var log = logging.GetLogger("units", "junos18", "interfaces")

// Unit is the Junos interface translation unit
type Unit struct{}

func (Unit) String() string {
	return "Junos 18.2 interface translate unit"
}

// Devices implements unit.Unit
func (Unit) Devices() []unit.Device {
	return junos18.Devices
}

// Models implements unit.Unit
func (Unit) Models() []*gpb.ModelData {
	return []*gpb.ModelData{
		oc.Model("openconfig-interfaces", "2.3.0"),
		oc.Model("openconfig-if-ip", "2.3.0"),
		oc.Model("openconfig-vlan", "2.0.0"),
	}
}

// UnderlayModels implements unit.Unit
func (Unit) UnderlayModels() []*gpb.ModelData {
	return []*gpb.ModelData{junos18.Model("junos-conf-interfaces", "2018-01-01")}
}

// Schema implements unit.Unit
func (Unit) Schema(s *tree.Schema) {
	oc.Schema(s)
	junos18.Schema(s)
}

// ProvideHandlers implements unit.Unit
func (Unit) ProvideHandlers(rb *translate.ReaderRegistryBuilder, wb *translate.WriterRegistryBuilder) {
	rb.AddStructural(oc.Interfaces)
	rb.AddList(oc.Interface, interfaceReader)
	rb.Add(oc.InterfaceConfig, translate.ReaderFunc(readInterfaceConfig))
	rb.AddStructural(oc.Subinterfaces)
	rb.AddList(oc.Subinterface, subinterfaceReader)
	rb.Add(oc.SubinterfaceConfig, translate.ReaderFunc(readSubinterfaceConfig))
	rb.AddStructural(oc.Vlan)
	rb.Add(oc.VlanConfig, translate.ReaderFunc(readVlanConfig))
	rb.AddStructural(oc.IPv4)
	rb.AddStructural(oc.IPv4Addresses)
	rb.AddList(oc.IPv4Address, addressReader)
	rb.Add(oc.IPv4AddressConfig, translate.ReaderFunc(readAddressConfig))

	wb.Add(oc.Interface, translate.NoopWriter{})
	wb.Add(oc.InterfaceConfig, interfaceConfigWriter{})
	wb.Add(oc.Subinterface, translate.NoopWriter{})
	wb.AddAfter(oc.SubinterfaceConfig, subinterfaceConfigWriter{}, oc.InterfaceConfig)
	wb.AddAfter(oc.VlanConfig, vlanConfigWriter{}, oc.SubinterfaceConfig)
	wb.Add(oc.IPv4Address, translate.NoopWriter{})
	wb.AddAfter(oc.IPv4AddressConfig, translate.ReplaceOnUpdate(addressConfigWriter{}), oc.SubinterfaceConfig)
}
