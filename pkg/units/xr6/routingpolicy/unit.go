// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package routingpolicy translates OpenConfig BGP extended community sets to the route
// targets of IOS XR VRFs.
package routingpolicy

import (
	"github.com/onosproject/onos-lib-go/pkg/logging"
	"github.com/onosproject/unitopo-adapter/pkg/translate"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/unit"
	"github.com/onosproject/unitopo-adapter/pkg/units/oc"
	"github.com/onosproject/unitopo-adapter/pkg/units/xr6"
	gpb "github.com/openconfig/gnmi/proto/gnmi"
)

var log = logging.GetLogger("units", "xr6", "routingpolicy")

// Unit is the IOS XR routing policy translation unit
type Unit struct{}

func (Unit) String() string {
	return "XR 6 (2015-07-30) routing policy translate unit"
}

// Devices implements unit.Unit
func (Unit) Devices() []unit.Device {
	return xr6.Devices
}

// Models implements unit.Unit
func (Unit) Models() []*gpb.ModelData {
	return []*gpb.ModelData{
		oc.Model("openconfig-routing-policy", "2.0.1"),
		oc.Model("openconfig-bgp-policy", "4.0.1"),
	}
}

// UnderlayModels implements unit.Unit
func (Unit) UnderlayModels() []*gpb.ModelData {
	return []*gpb.ModelData{xr6.Model("Cisco-IOS-XR-ipv4-bgp-cfg", "2015-08-27")}
}

// Schema implements unit.Unit
func (Unit) Schema(s *tree.Schema) {
	oc.Schema(s)
	xr6.Schema(s)
	s.AddList(xr6.Vrf.Child("afs").Child("af").Schema(), "af-name", "saf-name", "topology-name")
	for _, d := range []direction{importTargets, exportTargets} {
		targets := d.routeTargets()
		s.AddList(targets.Schema(), "type").
			AddList(targets.Child("as-or-four-byte-as").Schema(), "as-xx", "as", "as-index", "stitching-rt")
	}
}

// ProvideHandlers implements unit.Unit
func (Unit) ProvideHandlers(rb *translate.ReaderRegistryBuilder, wb *translate.WriterRegistryBuilder) {
	rb.AddStructural(oc.RoutingPolicy)
	rb.AddStructural(oc.DefinedSets)
	rb.AddStructural(oc.BGPDefinedSets)
	rb.AddStructural(oc.ExtCommunitySets)
	rb.AddList(oc.ExtCommunitySet, setReader)
	rb.Add(oc.ExtCommunitySetConfig, translate.ReaderFunc(readSetConfig))

	wb.Add(oc.ExtCommunitySet, translate.NoopWriter{})
	wb.AddAfter(oc.ExtCommunitySetConfig, translate.ReplaceOnUpdate(setConfigWriter{}), oc.NetworkInstanceConfig)
}
