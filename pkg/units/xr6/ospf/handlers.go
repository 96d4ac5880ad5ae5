// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package ospf

import (
	"sort"
	"strconv"

	"github.com/onosproject/onos-lib-go/pkg/logging"
	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/translate"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/underlay"
	"github.com/onosproject/unitopo-adapter/pkg/units/oc"
)

var log = logging.GetLogger("units", "xr6", "ospf")

// readVrf returns the process configuration for the network instance of id, or nil.
func readVrf(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	if !oc.IsProtocol(id, oc.OSPF) {
		return nil, nil
	}
	_, name := oc.ProtocolKey(id)
	return rc.Underlay().ReadNode(vrfID(name, oc.NetworkInstanceName(id)), underlay.Config)
}

func readGlobalConfig(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	v, err := readVrf(rc, id)
	if err != nil || v == nil {
		return nil, err
	}
	out := tree.Node{}
	if rid, ok := tree.String(v, "router-id"); ok {
		out["router-id"] = rid
	}
	return out, nil
}

func readMaxMetricConfig(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	v, err := readVrf(rc, id)
	if err != nil || v == nil {
		return nil, err
	}
	mm, ok := tree.GetNode(v, maxMetricRel)
	if !ok {
		return nil, nil
	}
	var include []interface{}
	for _, i := range includes {
		if tree.BoolOr(mm, i[1], false) {
			include = append(include, i[0])
		}
	}
	if len(include) == 0 {
		return nil, nil
	}
	return tree.Node{"include": include}, nil
}

// areas returns the areas of a network instance keyed by their identifier.
func areas(v tree.Node) map[string]tree.Node {
	out := map[string]tree.Node{}
	addrs, _ := tree.Child(v, "area-addresses")
	for _, a := range tree.Entries(addrs, "area-area-id") {
		out[tree.ScalarString(a["area-id"])] = a
	}
	for _, a := range tree.Entries(addrs, "area-address") {
		out[tree.StringOr(a, "address", "")] = a
	}
	return out
}

func findArea(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	v, err := readVrf(rc, id)
	if err != nil || v == nil {
		return nil, err
	}
	identifier, _ := id.Key("area", "identifier")
	return areas(v)[identifier], nil
}

// identifierValue renders an area identifier the way the northbound model types it.
func identifierValue(identifier string) interface{} {
	if n, err := strconv.ParseUint(identifier, 10, 32); err == nil {
		return float64(n)
	}
	return identifier
}

var areaReader = translate.ListReaderFuncs{
	IDs: func(rc *translate.ReadContext, id path.IID) ([]map[string]string, error) {
		v, err := readVrf(rc, id)
		if err != nil || v == nil {
			return nil, err
		}
		found := areas(v)
		identifiers := make([]string, 0, len(found))
		for identifier := range found {
			identifiers = append(identifiers, identifier)
		}
		sort.Strings(identifiers)
		keys := make([]map[string]string, 0, len(identifiers))
		for _, identifier := range identifiers {
			keys = append(keys, map[string]string{"identifier": identifier})
		}
		return keys, nil
	},
	ReadFunc: func(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
		a, err := findArea(rc, id)
		if err != nil || a == nil {
			return nil, err
		}
		identifier, _ := id.Key("area", "identifier")
		return tree.Node{"identifier": identifierValue(identifier)}, nil
	},
}

func readAreaConfig(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	a, err := findArea(rc, id)
	if err != nil || a == nil {
		return nil, err
	}
	identifier, _ := id.Key("area", "identifier")
	return tree.Node{"identifier": identifierValue(identifier)}, nil
}

func nameScopes(a tree.Node) []tree.Node {
	scopes, _ := tree.Child(a, "name-scopes")
	return tree.Entries(scopes, "name-scope")
}

func findNameScope(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	a, err := findArea(rc, id)
	if err != nil || a == nil {
		return nil, err
	}
	ifc, _ := id.Key("interface", "id")
	for _, s := range nameScopes(a) {
		if tree.StringOr(s, "interface-name", "") == ifc {
			return s, nil
		}
	}
	return nil, nil
}

var areaInterfaceReader = translate.ListReaderFuncs{
	IDs: func(rc *translate.ReadContext, id path.IID) ([]map[string]string, error) {
		a, err := findArea(rc, id)
		if err != nil || a == nil {
			return nil, err
		}
		var keys []map[string]string
		for _, s := range nameScopes(a) {
			keys = append(keys, map[string]string{"id": tree.StringOr(s, "interface-name", "")})
		}
		return keys, nil
	},
	ReadFunc: func(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
		s, err := findNameScope(rc, id)
		if err != nil || s == nil {
			return nil, err
		}
		return tree.Node{"id": s["interface-name"]}, nil
	},
}

func readAreaInterfaceConfig(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	s, err := findNameScope(rc, id)
	if err != nil || s == nil {
		return nil, err
	}
	out := tree.Node{"id": s["interface-name"]}
	if cost, ok := tree.Uint(s, "cost"); ok {
		out["metric"] = float64(cost)
	}
	return out, nil
}

type globalConfigWriter struct{}

func (globalConfigWriter) Write(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	_, name := oc.ProtocolKey(id)
	ni := oc.NetworkInstanceName(id)
	wc.Underlay().Merge(processID(name), tree.Node{"process-name": name, "start": tree.EmptyLeaf()})
	v := tree.Node{}
	if !oc.IsDefault(ni) {
		v["vrf-name"] = ni
		v["vrf-start"] = tree.EmptyLeaf()
	}
	if rid, ok := tree.String(data, "router-id"); ok {
		v["router-id"] = rid
	}
	if len(v) > 0 {
		log.Debugf("Configuring ospf process %s in %s", name, ni)
		wc.Underlay().Merge(vrfID(name, ni), v)
	}
	return nil
}

func (w globalConfigWriter) Update(wc *translate.WriteContext, id path.IID, before tree.Node, after tree.Node) error {
	if _, ok := tree.String(after, "router-id"); !ok {
		_, name := oc.ProtocolKey(id)
		wc.Underlay().Delete(vrfID(name, oc.NetworkInstanceName(id)).Child("router-id"))
	}
	return w.Write(wc, id, after)
}

func (globalConfigWriter) Delete(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	_, name := oc.ProtocolKey(id)
	ni := oc.NetworkInstanceName(id)
	if oc.IsDefault(ni) {
		p, err := wc.Underlay().ReadNode(processID(name), underlay.Config)
		if err != nil {
			return err
		}
		vrfs, _ := tree.Child(p, "vrfs")
		if len(tree.Entries(vrfs, "vrf")) == 0 {
			wc.Underlay().Delete(processID(name))
			return nil
		}
	}
	wc.Underlay().Delete(vrfID(name, ni))
	return nil
}

type maxMetricConfigWriter struct{}

// maxMetricConfig is the northbound max-metric timer config
type maxMetricConfig struct {
	Include []string `json:"include"`
}

func maxMetricID(id path.IID) path.IID {
	_, name := oc.ProtocolKey(id)
	return vrfID(name, oc.NetworkInstanceName(id)).Append(maxMetricRel)
}

func (maxMetricConfigWriter) Write(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	var cfg maxMetricConfig
	if err := tree.Decode(data, &cfg); err != nil {
		return err
	}
	mm := tree.Node{}
	for _, i := range includes {
		mm[i[1]] = false
	}
	for _, s := range cfg.Include {
		for _, i := range includes {
			if tree.Identity(s) == i[0] {
				mm[i[1]] = true
			}
		}
	}
	wc.Underlay().Merge(maxMetricID(id), mm)
	return nil
}

func (maxMetricConfigWriter) Delete(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	wc.Underlay().Delete(maxMetricID(id))
	return nil
}

type areaConfigWriter struct{}

func deviceArea(id path.IID) (path.IID, error) {
	_, name := oc.ProtocolKey(id)
	identifier, _ := id.Key("area", "identifier")
	return areaID(name, oc.NetworkInstanceName(id), identifier)
}

func (areaConfigWriter) Write(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	aid, err := deviceArea(id)
	if err != nil {
		return err
	}
	_, keys := aid.Last()
	a := tree.Node{"running": tree.EmptyLeaf()}
	for k, v := range keys {
		a[k] = identifierValue(v)
	}
	wc.Underlay().Merge(aid, a)
	return nil
}

func (areaConfigWriter) Delete(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	aid, err := deviceArea(id)
	if err != nil {
		return err
	}
	wc.Underlay().Delete(aid)
	return nil
}

type areaInterfaceConfigWriter struct{}

func nameScopeID(id path.IID) (path.IID, string, error) {
	aid, err := deviceArea(id)
	if err != nil {
		return path.IID{}, "", err
	}
	ifc, _ := id.Key("interface", "id")
	return aid.Child("name-scopes").ListItem("name-scope", map[string]string{"interface-name": ifc}), ifc, nil
}

func (areaInterfaceConfigWriter) Write(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	sid, ifc, err := nameScopeID(id)
	if err != nil {
		return err
	}
	s := tree.Node{"interface-name": ifc, "running": tree.EmptyLeaf()}
	if metric, ok := tree.Uint(data, "metric"); ok {
		s["cost"] = float64(metric)
	}
	wc.Underlay().Merge(sid, s)
	return nil
}

func (areaInterfaceConfigWriter) Delete(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	sid, _, err := nameScopeID(id)
	if err != nil {
		return err
	}
	wc.Underlay().Delete(sid)
	return nil
}
