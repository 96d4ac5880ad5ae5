// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package cdp reports the CDP interfaces and neighbors of IOS XR 5 and 6 devices.
package cdp

import (
	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/translate"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/underlay"
	"github.com/onosproject/unitopo-adapter/pkg/unit"
	"github.com/onosproject/unitopo-adapter/pkg/units/oc"
	"github.com/onosproject/unitopo-adapter/pkg/units/xr6"
	gpb "github.com/openconfig/gnmi/proto/gnmi"
)

// device operational state
var (
	nodes     = path.MustParse("/cdp/nodes")
	node      = nodes.Child("node")
	operIfc   = node.Child("interfaces").Child("interface")
	summary   = node.Child("neighbors").Child("summaries").Child("summary")
	ifcConfig = oc.CDPInterface.Child("config")
)

// Unit is the IOS XR CDP translation unit
type Unit struct{}

func (Unit) String() string {
	return "XR 6 (2015-07-30) CDP translate unit"
}

// Devices implements unit.Unit
func (Unit) Devices() []unit.Device {
	return xr6.Devices
}

// Models implements unit.Unit
func (Unit) Models() []*gpb.ModelData {
	return []*gpb.ModelData{{Name: "frinx-cdp", Organization: "FRINX s.r.o.", Version: "2017-10-24"}}
}

// UnderlayModels implements unit.Unit
func (Unit) UnderlayModels() []*gpb.ModelData {
	return []*gpb.ModelData{
		xr6.Model("Cisco-IOS-XR-cdp-cfg", "2015-07-30"),
		xr6.Model("Cisco-IOS-XR-cdp-oper", "2015-07-30"),
	}
}

// Schema implements unit.Unit
func (Unit) Schema(s *tree.Schema) {
	oc.Schema(s)
	s.AddList(node.Schema(), "node-name").
		AddList(operIfc.Schema(), "interface-name").
		AddList(summary.Schema(), "interface-name", "device-id")
}

// ProvideHandlers implements unit.Unit. CDP is read only.
func (Unit) ProvideHandlers(rb *translate.ReaderRegistryBuilder, wb *translate.WriterRegistryBuilder) {
	rb.AddStructural(oc.CDP)
	rb.AddStructural(oc.CDPInterfaces)
	rb.AddList(oc.CDPInterface, interfaceReader)
	rb.Add(ifcConfig, translate.ReaderFunc(readInterface))
	rb.AddOper(oc.CDPInterfaceState, translate.ReaderFunc(readInterface))
	rb.AddStructural(oc.CDPNeighbors)
	rb.AddOperList(oc.CDPNeighbor, neighborReader)
	rb.AddOper(oc.CDPNeighborState, translate.ReaderFunc(readNeighborState))
}

func operNodes(access underlay.Access) ([]tree.Node, error) {
	n, err := access.ReadNode(nodes, underlay.Operational)
	if err != nil || n == nil {
		return nil, err
	}
	return tree.Entries(n, "node"), nil
}

// interfaceNames lists the interfaces CDP runs on, across all nodes.
func interfaceNames(access underlay.Access) ([]string, error) {
	ns, err := operNodes(access)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, n := range ns {
		ifcs, _ := tree.Child(n, "interfaces")
		for _, ifc := range tree.Entries(ifcs, "interface") {
			if name, ok := tree.String(ifc, "interface-name"); ok {
				names = append(names, name)
			}
		}
	}
	return names, nil
}

// summaries returns the neighbor summaries seen on an interface.
func summaries(access underlay.Access, ifc string) ([]tree.Node, error) {
	ns, err := operNodes(access)
	if err != nil {
		return nil, err
	}
	var out []tree.Node
	for _, n := range ns {
		neighbors, _ := tree.Child(n, "neighbors")
		list, _ := tree.Child(neighbors, "summaries")
		for _, s := range tree.Entries(list, "summary") {
			if tree.StringOr(s, "interface-name", "") == ifc {
				out = append(out, s)
			}
		}
	}
	return out, nil
}

var interfaceReader = translate.ListReaderFuncs{
	IDs: func(rc *translate.ReadContext, id path.IID) ([]map[string]string, error) {
		names, err := interfaceNames(rc.Underlay())
		if err != nil {
			return nil, err
		}
		keys := make([]map[string]string, 0, len(names))
		for _, name := range names {
			keys = append(keys, map[string]string{"name": name})
		}
		return keys, nil
	},
	ReadFunc: readInterface,
}

func readInterface(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	names, err := interfaceNames(rc.Underlay())
	if err != nil {
		return nil, err
	}
	want := oc.InterfaceName(id)
	for _, name := range names {
		if name == want {
			return tree.Node{"name": name, "enabled": true}, nil
		}
	}
	return nil, nil
}

var neighborReader = translate.ListReaderFuncs{
	IDs: func(rc *translate.ReadContext, id path.IID) ([]map[string]string, error) {
		ss, err := summaries(rc.Underlay(), oc.InterfaceName(id))
		if err != nil {
			return nil, err
		}
		keys := make([]map[string]string, 0, len(ss))
		for _, s := range ss {
			keys = append(keys, map[string]string{"id": tree.StringOr(s, "device-id", "")})
		}
		return keys, nil
	},
	ReadFunc: func(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
		s, err := findSummary(rc, id)
		if err != nil || s == nil {
			return nil, err
		}
		return tree.Node{"id": s["device-id"]}, nil
	},
}

func findSummary(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	ss, err := summaries(rc.Underlay(), oc.InterfaceName(id))
	if err != nil {
		return nil, err
	}
	want, _ := id.Key("neighbor", "id")
	for _, s := range ss {
		if tree.StringOr(s, "device-id", "") == want {
			return s, nil
		}
	}
	return nil, nil
}

func readNeighborState(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	s, err := findSummary(rc, id)
	if err != nil || s == nil {
		return nil, err
	}
	out := tree.Node{"id": s["device-id"]}
	if details := tree.Entries(s, "cdp-neighbor"); len(details) > 0 {
		if port, ok := tree.String(details[0], "port-id"); ok {
			out["port-id"] = port
		}
		if platform, ok := tree.String(details[0], "platform"); ok {
			out["platform"] = platform
		}
	}
	return out, nil
}
