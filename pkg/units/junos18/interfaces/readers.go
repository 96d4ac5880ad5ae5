// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package interfaces

import (
	"strconv"
	"strings"

	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/translate"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/units/junos18"
	"github.com/onosproject/unitopo-adapter/pkg/units/oc"
)

var interfaceReader = translate.ListReaderFuncs{
	IDs: func(rc *translate.ReadContext, id path.IID) ([]map[string]string, error) {
		ifcs, err := junos18.ReadInterfaces(rc.Underlay())
		if err != nil {
			return nil, err
		}
		keys := make([]map[string]string, 0, len(ifcs))
		for _, ifc := range ifcs {
			keys = append(keys, map[string]string{"name": tree.StringOr(ifc, "name", "")})
		}
		return keys, nil
	},
	ReadFunc: func(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
		ifc, err := junos18.ReadInterface(rc.Underlay(), oc.InterfaceName(id))
		if err != nil || ifc == nil {
			return nil, err
		}
		return tree.Node{"name": oc.InterfaceName(id)}, nil
	},
}

func readInterfaceConfig(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	name := oc.InterfaceName(id)
	ifc, err := junos18.ReadInterface(rc.Underlay(), name)
	if err != nil || ifc == nil {
		return nil, err
	}
	out := tree.Node{
		"name":    name,
		"type":    junos18.InterfaceType(name),
		"enabled": !tree.HasEmpty(ifc, "disable"),
	}
	if d, ok := tree.String(ifc, "description"); ok {
		out["description"] = d
	}
	if mtu, ok := tree.Uint(ifc, "mtu"); ok {
		out["mtu"] = float64(mtu)
	}
	return out, nil
}

// findUnit returns the logical unit a subinterface identifier addresses, or nil.
func findUnit(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	ifc, err := junos18.ReadInterface(rc.Underlay(), oc.InterfaceName(id))
	if err != nil || ifc == nil {
		return nil, err
	}
	index, _ := id.Key("subinterface", "index")
	for _, u := range tree.Entries(ifc, "unit") {
		if tree.ScalarString(u["name"]) == index {
			return u, nil
		}
	}
	return nil, nil
}

func indexValue(index string) interface{} {
	if n, err := strconv.ParseUint(index, 10, 32); err == nil {
		return float64(n)
	}
	return index
}

var subinterfaceReader = translate.ListReaderFuncs{
	IDs: func(rc *translate.ReadContext, id path.IID) ([]map[string]string, error) {
		ifc, err := junos18.ReadInterface(rc.Underlay(), oc.InterfaceName(id))
		if err != nil || ifc == nil {
			return nil, err
		}
		var keys []map[string]string
		for _, u := range tree.Entries(ifc, "unit") {
			keys = append(keys, map[string]string{"index": tree.ScalarString(u["name"])})
		}
		return keys, nil
	},
	ReadFunc: func(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
		u, err := findUnit(rc, id)
		if err != nil || u == nil {
			return nil, err
		}
		return tree.Node{"index": indexValue(tree.ScalarString(u["name"]))}, nil
	},
}

func readSubinterfaceConfig(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	u, err := findUnit(rc, id)
	if err != nil || u == nil {
		return nil, err
	}
	out := tree.Node{
		"index":   indexValue(tree.ScalarString(u["name"])),
		"enabled": !tree.HasEmpty(u, "disable"),
	}
	if d, ok := tree.String(u, "description"); ok {
		out["description"] = d
	}
	return out, nil
}

func readVlanConfig(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	u, err := findUnit(rc, id)
	if err != nil || u == nil {
		return nil, err
	}
	vid, ok := tree.Uint(u, "vlan-id")
	if !ok {
		return nil, nil
	}
	return tree.Node{"vlan-id": float64(vid)}, nil
}

// splitAddress splits an ip/prefix-length address name.
func splitAddress(name string) (string, uint64, bool) {
	i := strings.LastIndex(name, "/")
	if i < 0 {
		return "", 0, false
	}
	length, err := strconv.ParseUint(name[i+1:], 10, 8)
	if err != nil {
		return "", 0, false
	}
	return name[:i], length, true
}

func addresses(u tree.Node) []tree.Node {
	family, _ := tree.Child(u, "family")
	inet, _ := tree.Child(family, "inet")
	return tree.Entries(inet, "address")
}

func findAddress(rc *translate.ReadContext, id path.IID) (string, uint64, error) {
	u, err := findUnit(rc, id)
	if err != nil || u == nil {
		return "", 0, err
	}
	want, _ := id.Key("address", "ip")
	for _, a := range addresses(u) {
		if ip, length, ok := splitAddress(tree.StringOr(a, "name", "")); ok && ip == want {
			return ip, length, nil
		}
	}
	return "", 0, nil
}

var addressReader = translate.ListReaderFuncs{
	IDs: func(rc *translate.ReadContext, id path.IID) ([]map[string]string, error) {
		u, err := findUnit(rc, id)
		if err != nil || u == nil {
			return nil, err
		}
		var keys []map[string]string
		for _, a := range addresses(u) {
			if ip, _, ok := splitAddress(tree.StringOr(a, "name", "")); ok {
				keys = append(keys, map[string]string{"ip": ip})
			}
		}
		return keys, nil
	},
	ReadFunc: func(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
		ip, _, err := findAddress(rc, id)
		if err != nil || ip == "" {
			return nil, err
		}
		return tree.Node{"ip": ip}, nil
	},
}

func readAddressConfig(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	ip, length, err := findAddress(rc, id)
	if err != nil || ip == "" {
		return nil, err
	}
	return tree.Node{"ip": ip, "prefix-length": float64(length)}, nil
}
