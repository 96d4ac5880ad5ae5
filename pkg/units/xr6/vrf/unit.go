// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package vrf translates OpenConfig network instances to IOS XR VRFs.
package vrf

import (
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/onos-lib-go/pkg/logging"
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

var log = logging.GetLogger("units", "xr6", "vrf")

// address families, openconfig to device
var families = [][2]string{
	{"IPV4", "ipv4"},
	{"IPV6", "ipv6"},
}

func deviceFamily(family string) (string, bool) {
	for _, f := range families {
		if f[0] == family {
			return f[1], true
		}
	}
	return "", false
}

// Unit is the IOS XR network instance translation unit
type Unit struct{}

func (Unit) String() string {
	return "XR 6 (2015-07-30) network-instance translate unit"
}

// Devices implements unit.Unit
func (Unit) Devices() []unit.Device {
	return xr6.Devices
}

// Models implements unit.Unit
func (Unit) Models() []*gpb.ModelData {
	return []*gpb.ModelData{oc.Model("openconfig-network-instance", "0.10.0")}
}

// UnderlayModels implements unit.Unit
func (Unit) UnderlayModels() []*gpb.ModelData {
	return []*gpb.ModelData{
		xr6.Model("Cisco-IOS-XR-infra-rsi-cfg", "2015-07-30"),
		xr6.Model("Cisco-IOS-XR-ifmgr-cfg", "2015-07-30"),
	}
}

// Schema implements unit.Unit
func (Unit) Schema(s *tree.Schema) {
	oc.Schema(s)
	xr6.Schema(s)
	s.AddList(xr6.Vrf.Child("afs").Child("af").Schema(), "af-name", "saf-name", "topology-name")
}

// ProvideHandlers implements unit.Unit
func (Unit) ProvideHandlers(rb *translate.ReaderRegistryBuilder, wb *translate.WriterRegistryBuilder) {
	networkinstance.Provide(rb, wb)
	rb.AddList(oc.NetworkInstance, instanceReader)
	rb.Add(oc.NetworkInstanceConfig, translate.ReaderFunc(readInstanceConfig))
	rb.AddList(oc.NIInterface, interfaceReader)
	rb.Add(oc.NIInterfaceConfig, translate.ReaderFunc(readInterfaceConfig))

	wb.Add(oc.NetworkInstanceConfig, instanceConfigWriter{})
	wb.Add(oc.NIInterface, translate.NoopWriter{})
	wb.AddAfter(oc.NIInterfaceConfig, interfaceConfigWriter{}, oc.NetworkInstanceConfig, oc.InterfaceConfig, oc.SubinterfaceConfig)
}

// instanceNames lists the default instance followed by the VRFs.
func instanceNames(access underlay.Access) ([]string, error) {
	vrfs, err := xr6.VrfNames(access)
	if err != nil {
		return nil, err
	}
	return append([]string{oc.DefaultNetworkInstance}, vrfs...), nil
}

func vrf(access underlay.Access, name string) (tree.Node, error) {
	return access.ReadNode(xr6.VrfID(name), underlay.Config)
}

var instanceReader = translate.ListReaderFuncs{
	IDs: func(rc *translate.ReadContext, id path.IID) ([]map[string]string, error) {
		names, err := instanceNames(rc.Underlay())
		if err != nil {
			return nil, err
		}
		keys := make([]map[string]string, 0, len(names))
		for _, name := range names {
			keys = append(keys, map[string]string{"name": name})
		}
		return keys, nil
	},
	ReadFunc: func(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
		name := oc.NetworkInstanceName(id)
		if oc.IsDefault(name) {
			return tree.Node{"name": name}, nil
		}
		v, err := vrf(rc.Underlay(), name)
		if err != nil || v == nil {
			return nil, err
		}
		return tree.Node{"name": name}, nil
	},
}

func readInstanceConfig(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	name := oc.NetworkInstanceName(id)
	if oc.IsDefault(name) {
		return tree.Node{"name": name, "type": oc.DefaultInstance}, nil
	}
	v, err := vrf(rc.Underlay(), name)
	if err != nil || v == nil {
		return nil, err
	}
	out := tree.Node{"name": name, "type": oc.L3VRF}
	if d, ok := tree.String(v, "description"); ok {
		out["description"] = d
	}
	afs, _ := tree.Child(v, "afs")
	var enabled []interface{}
	for _, af := range tree.Entries(afs, "af") {
		for _, f := range families {
			if tree.StringOr(af, "af-name", "") == f[1] {
				enabled = append(enabled, f[0])
			}
		}
	}
	if len(enabled) > 0 {
		out["enabled-address-families"] = enabled
	}
	return out, nil
}

type instanceConfigWriter struct{}

func (w instanceConfigWriter) Write(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	name := oc.NetworkInstanceName(id)
	switch tree.Identity(tree.StringOr(data, "type", "")) {
	case oc.DefaultInstance:
		if !oc.IsDefault(name) {
			return errors.NewInvalid("the default instance must be named %s, not %s", oc.DefaultNetworkInstance, name)
		}
		return nil
	case oc.L3VRF:
		if oc.IsDefault(name) {
			return errors.NewInvalid("network instance %s is reserved for the default instance", name)
		}
	default:
		return errors.NewNotSupported("network instance type %s is not supported", tree.StringOr(data, "type", ""))
	}

	existing, err := vrf(wc.Underlay(), name)
	if err != nil {
		return err
	}
	out := w.vrfData(name, existing, data)
	log.Debugf("Writing vrf %s", name)
	wc.Underlay().Put(xr6.VrfID(name), out)
	return nil
}

func (instanceConfigWriter) vrfData(name string, existing tree.Node, data tree.Node) tree.Node {
	out := tree.Node{"vrf-name": name, "create": tree.EmptyLeaf()}
	if d, ok := tree.String(data, "description"); ok {
		out["description"] = d
	}
	oldAfs, _ := tree.Child(existing, "afs")
	var afs []interface{}
	list, _ := tree.AsList(data["enabled-address-families"])
	for _, f := range list {
		s, _ := f.(string)
		dev, ok := deviceFamily(tree.Identity(s))
		if !ok {
			continue
		}
		af := tree.Node{"af-name": dev, "saf-name": "unicast", "topology-name": "default", "create": tree.EmptyLeaf()}
		for _, old := range tree.Entries(oldAfs, "af") {
			if tree.StringOr(old, "af-name", "") == dev && tree.StringOr(old, "saf-name", "") == "unicast" {
				af = tree.CopyNode(old)
			}
		}
		afs = append(afs, af)
	}
	if len(afs) > 0 {
		out["afs"] = tree.Node{"af": afs}
	}
	return out
}

func (w instanceConfigWriter) Update(wc *translate.WriteContext, id path.IID, before tree.Node, after tree.Node) error {
	if tree.Identity(tree.StringOr(before, "type", "")) != tree.Identity(tree.StringOr(after, "type", "")) {
		return errors.NewInvalid("changing the type of network instance %s is not permitted", oc.NetworkInstanceName(id))
	}
	return w.Write(wc, id, after)
}

func (instanceConfigWriter) Delete(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	if tree.Identity(tree.StringOr(data, "type", "")) != oc.L3VRF {
		return nil
	}
	wc.Underlay().Delete(xr6.VrfID(oc.NetworkInstanceName(id)))
	return nil
}

// vrfInterfaces returns the interfaces assigned to a VRF.
func vrfInterfaces(access underlay.Access, name string) ([]string, error) {
	if oc.IsDefault(name) {
		return nil, nil
	}
	n, err := access.ReadNode(xr6.InterfaceConfigurations, underlay.Config)
	if err != nil || n == nil {
		return nil, err
	}
	var out []string
	for _, cfg := range tree.Entries(n, "interface-configuration") {
		if tree.StringOr(cfg, "vrf", "") == name {
			out = append(out, tree.StringOr(cfg, "interface-name", ""))
		}
	}
	return out, nil
}

func hasInterface(access underlay.Access, name string, ifc string) (bool, error) {
	ifcs, err := vrfInterfaces(access, name)
	if err != nil {
		return false, err
	}
	for _, i := range ifcs {
		if i == ifc {
			return true, nil
		}
	}
	return false, nil
}

var interfaceReader = translate.ListReaderFuncs{
	IDs: func(rc *translate.ReadContext, id path.IID) ([]map[string]string, error) {
		ifcs, err := vrfInterfaces(rc.Underlay(), oc.NetworkInstanceName(id))
		if err != nil {
			return nil, err
		}
		keys := make([]map[string]string, 0, len(ifcs))
		for _, ifc := range ifcs {
			keys = append(keys, map[string]string{"id": ifc})
		}
		return keys, nil
	},
	ReadFunc: func(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
		ifc, _ := id.Key("interface", "id")
		ok, err := hasInterface(rc.Underlay(), oc.NetworkInstanceName(id), ifc)
		if err != nil || !ok {
			return nil, err
		}
		return tree.Node{"id": ifc}, nil
	},
}

func readInterfaceConfig(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	ifc, _ := id.Key("interface", "id")
	ok, err := hasInterface(rc.Underlay(), oc.NetworkInstanceName(id), ifc)
	if err != nil || !ok {
		return nil, err
	}
	out := tree.Node{"id": ifc, "interface": ifc}
	if parent, idx, isSub := xr6.SplitSubinterface(ifc); isSub {
		out["interface"] = parent
		out["subinterface"] = float64(idx)
	}
	return out, nil
}

type interfaceConfigWriter struct{}

func (interfaceConfigWriter) Write(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	name := oc.NetworkInstanceName(id)
	if oc.IsDefault(name) {
		return nil
	}
	ifc, _ := id.Key("interface", "id")
	parent := ifc
	if p, _, ok := xr6.SplitSubinterface(ifc); ok {
		parent = p
	}
	if _, ok := wc.ReadAfter(oc.Interface.WithKeys(map[string]string{"name": parent})); !ok {
		return errors.NewInvalid("interface %s does not exist, cannot add it to vrf %s", ifc, name)
	}
	wc.Underlay().Merge(xr6.InterfaceConfigurationID(ifc), tree.Node{
		"active":         xr6.Active,
		"interface-name": ifc,
		"vrf":            name,
	})
	return nil
}

func (w interfaceConfigWriter) Update(wc *translate.WriteContext, id path.IID, before tree.Node, after tree.Node) error {
	return w.Write(wc, id, after)
}

func (interfaceConfigWriter) Delete(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	if oc.IsDefault(oc.NetworkInstanceName(id)) {
		return nil
	}
	ifc, _ := id.Key("interface", "id")
	wc.Underlay().Delete(xr6.InterfaceConfigurationID(ifc).Child("vrf"))
	return nil
}
