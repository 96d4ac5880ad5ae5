// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package ip6 translates OpenConfig IPv6 subinterface addresses for IOS XR 5 and 6.
package ip6

import (
	"github.com/onosproject/onos-lib-go/pkg/logging"
	"github.com/onosproject/unitopo-adapter/pkg/translate"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/unit"
	"github.com/onosproject/unitopo-adapter/pkg/units/oc"
	"github.com/onosproject/unitopo-adapter/pkg/units/xr6"
	gpb "github.com/openconfig/gnmi/proto/gnmi"
)

var log = logging.GetLogger("units", "xr6", "ip6")

// Unit is the IOS XR IPv6 address translation unit. It extends the interface unit.
type Unit struct{}

func (Unit) String() string {
	return "XR 6 (2015-07-30) IPv6 translate unit"
}

// Devices implements unit.Unit
func (Unit) Devices() []unit.Device {
	return xr6.Devices
}

// Models implements unit.Unit
func (Unit) Models() []*gpb.ModelData {
	return []*gpb.ModelData{oc.Model("openconfig-if-ip", "2.3.0")}
}

// UnderlayModels implements unit.Unit
func (Unit) UnderlayModels() []*gpb.ModelData {
	return []*gpb.ModelData{xr6.Model("Cisco-IOS-XR-ipv6-ma-cfg", "2015-07-30")}
}

// Schema implements unit.Unit
func (Unit) Schema(s *tree.Schema) {
	oc.Schema(s)
	xr6.Schema(s)
	s.AddList(xr6.InterfaceConfiguration.Append(regularAddress).Schema(), "address")
}

// ProvideHandlers implements unit.Unit
func (Unit) ProvideHandlers(rb *translate.ReaderRegistryBuilder, wb *translate.WriterRegistryBuilder) {
	rb.AddList(oc.Subinterface, subinterfaceReader)
	rb.AddStructural(oc.IPv6)
	rb.AddStructural(oc.IPv6Addresses)
	rb.AddList(oc.IPv6Address, addressReader)
	rb.Add(oc.IPv6AddressConfig, translate.ReaderFunc(readAddressConfig))

	wb.Add(oc.IPv6Address, translate.NoopWriter{})
	wb.AddAfter(oc.IPv6AddressConfig, translate.ReplaceOnUpdate(addressConfigWriter{}), oc.SubinterfaceConfig)
}
