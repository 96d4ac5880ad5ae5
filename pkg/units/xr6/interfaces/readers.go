// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package interfaces

import (
	"strconv"

	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/translate"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/underlay"
	"github.com/onosproject/unitopo-adapter/pkg/units/oc"
	"github.com/onosproject/unitopo-adapter/pkg/units/xr6"
)

// relative paths inside an interface configuration
var (
	primaryAddress = path.MustParse("/ipv4-network/addresses/primary")
	minimumActive  = path.MustParse("/bundle/minimum-active")
)

var interfaceReader = translate.ListReaderFuncs{
	IDs: func(rc *translate.ReadContext, id path.IID) ([]map[string]string, error) {
		names, err := xr6.InterfaceNames(rc.Underlay())
		if err != nil {
			return nil, err
		}
		var keys []map[string]string
		for _, name := range names {
			if !xr6.IsSubinterface(name) {
				keys = append(keys, map[string]string{"name": name})
			}
		}
		return keys, nil
	},
	ReadFunc: func(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
		name := oc.InterfaceName(id)
		exists, err := xr6.InterfaceExists(rc.Underlay(), name)
		if err != nil || !exists {
			return nil, err
		}
		return tree.Node{"name": name}, nil
	},
}

func readInterfaceConfig(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	name := oc.InterfaceName(id)
	cfg, err := xr6.ReadInterfaceConfiguration(rc.Underlay(), name)
	if err != nil || cfg == nil {
		return nil, err
	}
	out := tree.Node{
		"name":    name,
		"type":    xr6.InterfaceType(name),
		"enabled": !tree.HasEmpty(cfg, "shutdown"),
	}
	if d, ok := tree.String(cfg, "description"); ok {
		out["description"] = d
	}
	return out, nil
}

func readInterfaceState(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	name := oc.InterfaceName(id)
	cfg, err := xr6.ReadInterfaceConfiguration(rc.Underlay(), name)
	if err != nil || cfg == nil {
		return nil, err
	}
	props, err := xr6.OperProperties(rc.Underlay(), name)
	if err != nil || props == nil {
		return nil, err
	}
	state := tree.StringOr(props, "actual-state", "")
	out := tree.Node{
		"name":         name,
		"type":         xr6.InterfaceType(name),
		"enabled":      !tree.HasEmpty(cfg, "shutdown"),
		"ifindex":      float64(0),
		"last-change":  float64(0),
		"admin-status": adminStatus(state),
		"oper-status":  operStatus(state),
	}
	if d, ok := tree.String(cfg, "description"); ok {
		out["description"] = d
	}
	if mtu, ok := tree.Uint(props, "mtu"); ok {
		out["mtu"] = float64(mtu)
	}
	return out, nil
}

func adminStatus(state string) string {
	switch state {
	case "im-state-up", "im-state-operational":
		return "UP"
	}
	return "DOWN"
}

func operStatus(state string) string {
	switch state {
	case "im-state-up", "im-state-operational":
		return "UP"
	case "im-state-down", "im-state-admin-down", "im-state-not-operational":
		return "DOWN"
	case "im-state-not-ready":
		return "DORMANT"
	}
	return "UNKNOWN"
}

// subinterfaceIndexes lists the subinterfaces of an interface. Index 0 stands for the
// interface itself and exists once it has an address.
func subinterfaceIndexes(access underlay.Access, ifc string) ([]uint64, error) {
	cfg, err := xr6.ReadInterfaceConfiguration(access, ifc)
	if err != nil || cfg == nil {
		return nil, err
	}
	var out []uint64
	if _, ok := tree.GetNode(cfg, primaryAddress); ok {
		out = append(out, 0)
	}
	names, err := xr6.InterfaceNames(access)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if parent, idx, ok := xr6.SplitSubinterface(name); ok && parent == ifc {
			out = append(out, idx)
		}
	}
	return out, nil
}

var subinterfaceReader = translate.ListReaderFuncs{
	IDs: func(rc *translate.ReadContext, id path.IID) ([]map[string]string, error) {
		idxs, err := subinterfaceIndexes(rc.Underlay(), oc.InterfaceName(id))
		if err != nil {
			return nil, err
		}
		keys := make([]map[string]string, 0, len(idxs))
		for _, idx := range idxs {
			keys = append(keys, map[string]string{"index": strconv.FormatUint(idx, 10)})
		}
		return keys, nil
	},
	ReadFunc: func(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
		idxs, err := subinterfaceIndexes(rc.Underlay(), oc.InterfaceName(id))
		if err != nil {
			return nil, err
		}
		want := oc.SubinterfaceIndex(id)
		for _, idx := range idxs {
			if idx == want {
				return tree.Node{"index": float64(idx)}, nil
			}
		}
		return nil, nil
	},
}

func readSubinterfaceConfig(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	idx := oc.SubinterfaceIndex(id)
	if idx == 0 {
		return tree.Node{"index": float64(0)}, nil
	}
	cfg, err := xr6.ReadInterfaceConfiguration(rc.Underlay(), xr6.SubinterfaceName(oc.InterfaceName(id), idx))
	if err != nil || cfg == nil {
		return nil, err
	}
	out := tree.Node{
		"index":   float64(idx),
		"enabled": !tree.HasEmpty(cfg, "shutdown"),
	}
	if d, ok := tree.String(cfg, "description"); ok {
		out["description"] = d
	}
	return out, nil
}

func primary(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	name := xr6.SubinterfaceName(oc.InterfaceName(id), oc.SubinterfaceIndex(id))
	cfg, err := xr6.ReadInterfaceConfiguration(rc.Underlay(), name)
	if err != nil || cfg == nil {
		return nil, err
	}
	p, _ := tree.GetNode(cfg, primaryAddress)
	return p, nil
}

var addressReader = translate.ListReaderFuncs{
	IDs: func(rc *translate.ReadContext, id path.IID) ([]map[string]string, error) {
		p, err := primary(rc, id)
		if err != nil || p == nil {
			return nil, err
		}
		if addr, ok := tree.String(p, "address"); ok {
			return []map[string]string{{"ip": addr}}, nil
		}
		return nil, nil
	},
	ReadFunc: func(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
		p, err := primary(rc, id)
		if err != nil || p == nil {
			return nil, err
		}
		ip, _ := id.Key("address", "ip")
		if tree.StringOr(p, "address", "") != ip {
			return nil, nil
		}
		return tree.Node{"ip": ip}, nil
	},
}

func readAddressConfig(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	p, err := primary(rc, id)
	if err != nil || p == nil {
		return nil, err
	}
	ip, _ := id.Key("address", "ip")
	if tree.StringOr(p, "address", "") != ip {
		return nil, nil
	}
	length, err := oc.PrefixLength(tree.StringOr(p, "netmask", ""))
	if err != nil {
		return nil, err
	}
	return tree.Node{"ip": ip, "prefix-length": float64(length)}, nil
}

func readAggregationConfig(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	name := oc.InterfaceName(id)
	if xr6.InterfaceType(name) != oc.Ieee8023adLag {
		return nil, nil
	}
	cfg, err := xr6.ReadInterfaceConfiguration(rc.Underlay(), name)
	if err != nil || cfg == nil {
		return nil, err
	}
	ma, _ := tree.GetNode(cfg, minimumActive)
	links, ok := tree.Uint(ma, "links")
	if !ok {
		return nil, nil
	}
	return tree.Node{"min-links": float64(links)}, nil
}
