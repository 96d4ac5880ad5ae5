// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package ospf translates the OpenConfig OSPFv2 protocol for IOS XR 5 and 6.
package ospf

import (
	"net"
	"strconv"

	"github.com/onosproject/onos-lib-go/pkg/errors"
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

// device configuration
var (
	processes    = path.MustParse("/ospf/processes")
	process      = processes.Child("process")
	defaultVrf   = process.Child("default-vrf")
	vrf          = process.Child("vrfs").Child("vrf")
	areaIDs      = []path.IID{defaultVrf.Child("area-addresses").Child("area-area-id"), vrf.Child("area-addresses").Child("area-area-id")}
	areaAddrs    = []path.IID{defaultVrf.Child("area-addresses").Child("area-address"), vrf.Child("area-addresses").Child("area-address")}
	maxMetricRel = path.MustParse("/max-metric/max-metric-on-startup")
)

// max metric inclusions, openconfig identity to device leaf
var includes = [][2]string{
	{"MAX_METRIC_INCLUDE_STUB", "include-stub"},
	{"MAX_METRIC_INCLUDE_TYPE2_EXTERNAL", "external-lsa"},
	{"MAX_METRIC_SUMMARY_LSA", "summary-lsa"},
}

// Unit is the IOS XR OSPFv2 translation unit
type Unit struct{}

func (Unit) String() string {
	return "XR 6 (2015-07-30) OSPF translate unit"
}

// Devices implements unit.Unit
func (Unit) Devices() []unit.Device {
	return xr6.Devices
}

// Models implements unit.Unit
func (Unit) Models() []*gpb.ModelData {
	return []*gpb.ModelData{
		oc.Model("openconfig-network-instance", "0.10.0"),
		oc.Model("openconfig-ospfv2", "0.1.2"),
	}
}

// UnderlayModels implements unit.Unit
func (Unit) UnderlayModels() []*gpb.ModelData {
	return []*gpb.ModelData{xr6.Model("Cisco-IOS-XR-ipv4-ospf-cfg", "2015-11-09")}
}

// Schema implements unit.Unit
func (Unit) Schema(s *tree.Schema) {
	oc.Schema(s)
	s.AddList(process.Schema(), "process-name").
		AddList(vrf.Schema(), "vrf-name")
	for i := range areaIDs {
		s.AddList(areaIDs[i].Schema(), "area-id").
			AddList(areaAddrs[i].Schema(), "address").
			AddList(areaIDs[i].Child("name-scopes").Child("name-scope").Schema(), "interface-name").
			AddList(areaAddrs[i].Child("name-scopes").Child("name-scope").Schema(), "interface-name")
	}
}

// ProvideHandlers implements unit.Unit
func (Unit) ProvideHandlers(rb *translate.ReaderRegistryBuilder, wb *translate.WriterRegistryBuilder) {
	networkinstance.Provide(rb, wb)
	rb.AddList(oc.Protocol, networkinstance.Protocols(oc.OSPF, processNames))
	rb.AddStructural(oc.OSPFRoot)
	rb.AddStructural(oc.OSPFGlobal)
	rb.Add(oc.OSPFGlobalConfig, translate.ReaderFunc(readGlobalConfig))
	rb.AddStructural(oc.OSPFTimers)
	rb.AddStructural(oc.OSPFMaxMetric)
	rb.Add(oc.OSPFMaxMetricConfig, translate.ReaderFunc(readMaxMetricConfig))
	rb.AddStructural(oc.OSPFAreas)
	rb.AddList(oc.OSPFArea, areaReader)
	rb.Add(oc.OSPFAreaConfig, translate.ReaderFunc(readAreaConfig))
	rb.AddStructural(oc.OSPFAreaInterfaces)
	rb.AddList(oc.OSPFAreaInterface, areaInterfaceReader)
	rb.Add(oc.OSPFAreaInterfaceConfig, translate.ReaderFunc(readAreaInterfaceConfig))

	wb.AddAfter(oc.OSPFGlobalConfig, globalConfigWriter{}, oc.NetworkInstanceConfig, oc.ProtocolConfig)
	wb.AddAfter(oc.OSPFMaxMetricConfig, translate.ReplaceOnUpdate(maxMetricConfigWriter{}), oc.OSPFGlobalConfig)
	wb.AddAfter(oc.OSPFAreaConfig, translate.ReplaceOnUpdate(areaConfigWriter{}), oc.OSPFGlobalConfig)
	wb.AddAfter(oc.OSPFAreaInterfaceConfig, translate.ReplaceOnUpdate(areaInterfaceConfigWriter{}), oc.OSPFAreaConfig, oc.InterfaceConfig)
}

func processID(name string) path.IID {
	return process.WithKeys(map[string]string{"process-name": name})
}

// vrfID addresses the part of a process that runs in a network instance.
func vrfID(processName string, ni string) path.IID {
	if oc.IsDefault(ni) {
		return processID(processName).Child("default-vrf")
	}
	return processID(processName).Child("vrfs").ListItem("vrf", map[string]string{"vrf-name": ni})
}

// areaID addresses an area within a network instance. Dotted quad identifiers use the
// area-address list, numeric ones area-area-id.
func areaID(processName string, ni string, identifier string) (path.IID, error) {
	base := vrfID(processName, ni).Child("area-addresses")
	if ip := net.ParseIP(identifier); ip != nil && ip.To4() != nil {
		return base.ListItem("area-address", map[string]string{"address": identifier}), nil
	}
	if _, err := strconv.ParseUint(identifier, 10, 32); err != nil {
		return path.IID{}, errors.NewInvalid("bad ospf area identifier %s", identifier)
	}
	return base.ListItem("area-area-id", map[string]string{"area-id": identifier}), nil
}

func processNames(rc *translate.ReadContext, ni string) ([]string, error) {
	n, err := rc.Underlay().ReadNode(processes, underlay.Config)
	if err != nil || n == nil {
		return nil, err
	}
	var names []string
	for _, p := range tree.Entries(n, "process") {
		name := tree.StringOr(p, "process-name", "")
		if vrfOf(p, ni) != nil || (oc.IsDefault(ni) && tree.HasEmpty(p, "start")) {
			names = append(names, name)
		}
	}
	return names, nil
}

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
