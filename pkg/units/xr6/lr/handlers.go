// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package lr

import (
	"fmt"

	"github.com/onosproject/onos-lib-go/pkg/logging"
	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/translate"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/units/oc"
)

var log = logging.GetLogger("units", "xr6", "lr")

// nextHop is one entry of a prefix next hop table
type nextHop struct {
	address string
	ifc     string
	metric  interface{}
}

// index renders the next hop list key: the address, the interface or both separated by a space.
func (h nextHop) index() string {
	switch {
	case h.address != "" && h.ifc != "":
		return h.address + " " + h.ifc
	case h.address != "":
		return h.address
	}
	return h.ifc
}

func prefixes(af tree.Node) []tree.Node {
	var out []tree.Node
	for _, family := range families {
		f, _ := tree.Child(af, family)
		for _, cast := range casts {
			c, _ := tree.Child(f, cast)
			list, _ := tree.Child(c, "vrf-prefixes")
			out = append(out, tree.Entries(list, "vrf-prefix")...)
		}
	}
	return out
}

func prefixString(p tree.Node) string {
	return fmt.Sprintf("%s/%s", tree.StringOr(p, "prefix", ""), tree.ScalarString(p["prefix-length"]))
}

func findPrefix(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	if !oc.IsProtocol(id, oc.Static) {
		return nil, nil
	}
	af, err := addressFamily(rc.Underlay(), oc.NetworkInstanceName(id))
	if err != nil || af == nil {
		return nil, err
	}
	want, _ := id.Key("static", "prefix")
	for _, p := range prefixes(af) {
		if prefixString(p) == want {
			return p, nil
		}
	}
	return nil, nil
}

var staticReader = translate.ListReaderFuncs{
	IDs: func(rc *translate.ReadContext, id path.IID) ([]map[string]string, error) {
		if !oc.IsProtocol(id, oc.Static) {
			return nil, nil
		}
		af, err := addressFamily(rc.Underlay(), oc.NetworkInstanceName(id))
		if err != nil || af == nil {
			return nil, err
		}
		var keys []map[string]string
		for _, p := range prefixes(af) {
			keys = append(keys, map[string]string{"prefix": prefixString(p)})
		}
		return keys, nil
	},
	ReadFunc: func(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
		return readStatic(rc, id)
	},
}

func readStatic(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	p, err := findPrefix(rc, id)
	if err != nil || p == nil {
		return nil, err
	}
	return tree.Node{"prefix": prefixString(p)}, nil
}

// nextHops lists the interface only hops first, then interface and address, then address only.
func nextHops(p tree.Node) []nextHop {
	table, _ := tree.GetNode(p, nextHopTable)
	var out []nextHop
	for _, h := range tree.Entries(table, "vrf-next-hop-interface-name") {
		out = append(out, nextHop{ifc: tree.StringOr(h, "interface-name", ""), metric: h["load-metric"]})
	}
	for _, h := range tree.Entries(table, "vrf-next-hop-interface-name-next-hop-address") {
		out = append(out, nextHop{
			address: tree.StringOr(h, "next-hop-address", ""),
			ifc:     tree.StringOr(h, "interface-name", ""),
			metric:  h["load-metric"],
		})
	}
	for _, h := range tree.Entries(table, "vrf-next-hop-next-hop-address") {
		out = append(out, nextHop{address: tree.StringOr(h, "next-hop-address", ""), metric: h["load-metric"]})
	}
	return out
}

func findNextHop(rc *translate.ReadContext, id path.IID) (*nextHop, error) {
	p, err := findPrefix(rc, id)
	if err != nil || p == nil {
		return nil, err
	}
	index, _ := id.Key("next-hop", "index")
	for _, h := range nextHops(p) {
		if h.index() == index {
			h := h
			return &h, nil
		}
	}
	log.Debugf("No next hop %s for %s", index, id)
	return nil, nil
}

var nextHopReader = translate.ListReaderFuncs{
	IDs: func(rc *translate.ReadContext, id path.IID) ([]map[string]string, error) {
		p, err := findPrefix(rc, id)
		if err != nil || p == nil {
			return nil, err
		}
		var keys []map[string]string
		for _, h := range nextHops(p) {
			keys = append(keys, map[string]string{"index": h.index()})
		}
		return keys, nil
	},
	ReadFunc: func(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
		h, err := findNextHop(rc, id)
		if err != nil || h == nil {
			return nil, err
		}
		return tree.Node{"index": h.index()}, nil
	},
}

func readNextHopConfig(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	h, err := findNextHop(rc, id)
	if err != nil || h == nil {
		return nil, err
	}
	out := tree.Node{"index": h.index()}
	if h.address != "" {
		out["next-hop"] = h.address
	}
	if metric, ok := tree.Uint(tree.Node{"metric": h.metric}, "metric"); ok {
		out["metric"] = float64(metric)
	}
	return out, nil
}

func readInterfaceRef(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	h, err := findNextHop(rc, id)
	if err != nil || h == nil || h.ifc == "" {
		return nil, err
	}
	return tree.Node{"interface": h.ifc}, nil
}
