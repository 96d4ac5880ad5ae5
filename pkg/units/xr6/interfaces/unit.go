// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package interfaces translates OpenConfig interfaces for IOS XR 5 and 6.
package interfaces

import (
	"github.com/onosproject/onos-lib-go/pkg/logging"
	"github.com/onosproject/unitopo-adapter/pkg/translate"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/unit"
	"github.com/onosproject/unitopo-adapter/pkg/units/oc"
	"github.com/onosproject/unitopo-adapter/pkg/units/xr6"
	gpb "github.com/openconfig/gnmi/proto/gnmi"
)

var log = logging.GetLogger("units", "xr6", "interfaces")

// Unit is the IOS XR interface translation unit
type Unit struct{}

func (Unit) String() string {
	return "XR 6 (2015-07-30) interface translate unit"
}

// Devices implements unit.Unit
func (Unit) Devices() []unit.Device {
	return xr6.Devices
}

// Models implements unit.Unit
func (Unit) Models() []*gpb.ModelData {
	return []*gpb.ModelData{
		oc.Model("openconfig-interfaces", "2.3.0"),
		oc.Model("openconfig-if-ip", "2.3.0"),
		oc.Model("openconfig-if-aggregate", "2.3.0"),
	}
}

// UnderlayModels implements unit.Unit
func (Unit) UnderlayModels() []*gpb.ModelData {
	return []*gpb.ModelData{
		xr6.Model("Cisco-IOS-XR-ifmgr-cfg", "2015-07-30"),
		xr6.Model("Cisco-IOS-XR-ifmgr-oper", "2015-07-30"),
		xr6.Model("Cisco-IOS-XR-ipv4-io-cfg", "2015-07-30"),
	}
}

// Schema implements unit.Unit
func (Unit) Schema(s *tree.Schema) {
	oc.Schema(s)
	xr6.Schema(s)
}

// ProvideHandlers implements unit.Unit
func (Unit) ProvideHandlers(rb *translate.ReaderRegistryBuilder, wb *translate.WriterRegistryBuilder) {
	rb.AddStructural(oc.Interfaces)
	rb.AddList(oc.Interface, interfaceReader)
	rb.Add(oc.InterfaceConfig, translate.ReaderFunc(readInterfaceConfig))
	rb.AddOper(oc.InterfaceState, translate.ReaderFunc(readInterfaceState))
	rb.AddStructural(oc.Subinterfaces)
	rb.AddList(oc.Subinterface, subinterfaceReader)
	rb.Add(oc.SubinterfaceConfig, translate.ReaderFunc(readSubinterfaceConfig))
	rb.AddStructural(oc.IPv4)
	rb.AddStructural(oc.IPv4Addresses)
	rb.AddList(oc.IPv4Address, addressReader)
	rb.Add(oc.IPv4AddressConfig, translate.ReaderFunc(readAddressConfig))
	rb.AddStructural(oc.Aggregation)
	rb.Add(oc.AggregationConfig, translate.ReaderFunc(readAggregationConfig))

	wb.Add(oc.Interface, translate.NoopWriter{})
	wb.Add(oc.InterfaceConfig, interfaceConfigWriter{})
	wb.Add(oc.Subinterface, translate.NoopWriter{})
	wb.AddAfter(oc.SubinterfaceConfig, subinterfaceConfigWriter{}, oc.InterfaceConfig)
	wb.Add(oc.IPv4Address, translate.NoopWriter{})
	wb.AddAfter(oc.IPv4AddressConfig, addressConfigWriter{}, oc.SubinterfaceConfig, oc.NIInterfaceConfig)
	wb.AddAfter(oc.AggregationConfig, aggregationConfigWriter{}, oc.InterfaceConfig)
}
