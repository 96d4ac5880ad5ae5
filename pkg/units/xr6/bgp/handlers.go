// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package bgp

import (
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/onos-lib-go/pkg/logging"
	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/translate"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/underlay"
	"github.com/onosproject/unitopo-adapter/pkg/units/oc"
)

var log = logging.GetLogger("units", "xr6", "bgp")

// session states, device to openconfig
var sessionStates = map[string]string{
	"bgp-st-idle":         "IDLE",
	"bgp-st-connect":      "CONNECT",
	"bgp-st-active":       "ACTIVE",
	"bgp-st-open-sent":    "OPENSENT",
	"bgp-st-open-confirm": "OPENCONFIRM",
	"bgp-st-estab":        "ESTABLISHED",
}

func routerID(vrf tree.Node, ni string) (string, bool) {
	var global tree.Node
	if oc.IsDefault(ni) {
		global, _ = tree.Child(vrf, "global")
	} else {
		global, _ = tree.Child(vrf, "vrf-global")
	}
	return tree.String(global, "router-id")
}

func neighbors(vrf tree.Node, ni string) []tree.Node {
	if oc.IsDefault(ni) {
		entity, _ := tree.Child(vrf, "bgp-entity")
		list, _ := tree.Child(entity, "neighbors")
		return tree.Entries(list, "neighbor")
	}
	list, _ := tree.Child(vrf, "vrf-neighbors")
	return tree.Entries(list, "vrf-neighbor")
}

// locate returns the process and the network instance configuration within it, or nils
// when id does not address a configured BGP protocol.
func locate(access underlay.Access, id path.IID) (tree.Node, tree.Node, error) {
	if !oc.IsProtocol(id, oc.BGP) {
		return nil, nil, nil
	}
	p, err := process(access)
	if err != nil || p == nil {
		return nil, nil, err
	}
	vrf := vrfOf(p, oc.NetworkInstanceName(id))
	if vrf == nil && !oc.IsDefault(oc.NetworkInstanceName(id)) {
		return nil, nil, nil
	}
	return p, vrf, nil
}

func readGlobalConfig(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	p, vrf, err := locate(rc.Underlay(), id)
	if err != nil || p == nil {
		return nil, err
	}
	out := tree.Node{}
	if as, ok := tree.Uint(p, "as"); ok {
		out["as"] = float64(as)
	}
	if rid, ok := routerID(vrf, oc.NetworkInstanceName(id)); ok {
		out["router-id"] = rid
	}
	return out, nil
}

func findNeighbor(access underlay.Access, id path.IID) (tree.Node, error) {
	_, vrf, err := locate(access, id)
	if err != nil || vrf == nil {
		return nil, err
	}
	addr, _ := id.Key("neighbor", "neighbor-address")
	for _, n := range neighbors(vrf, oc.NetworkInstanceName(id)) {
		if tree.StringOr(n, "neighbor-address", "") == addr {
			return n, nil
		}
	}
	return nil, nil
}

var neighborReader = translate.ListReaderFuncs{
	IDs: func(rc *translate.ReadContext, id path.IID) ([]map[string]string, error) {
		_, vrf, err := locate(rc.Underlay(), id)
		if err != nil || vrf == nil {
			return nil, err
		}
		var keys []map[string]string
		for _, n := range neighbors(vrf, oc.NetworkInstanceName(id)) {
			if addr, ok := tree.String(n, "neighbor-address"); ok {
				keys = append(keys, map[string]string{"neighbor-address": addr})
			}
		}
		return keys, nil
	},
	ReadFunc: func(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
		n, err := findNeighbor(rc.Underlay(), id)
		if err != nil || n == nil {
			return nil, err
		}
		return tree.Node{"neighbor-address": n["neighbor-address"]}, nil
	},
}

func readNeighborConfig(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	n, err := findNeighbor(rc.Underlay(), id)
	if err != nil || n == nil {
		return nil, err
	}
	out := tree.Node{"neighbor-address": n["neighbor-address"]}
	remote, _ := tree.Child(n, "remote-as")
	xx, okXx := tree.Uint(remote, "as-xx")
	yy, okYy := tree.Uint(remote, "as-yy")
	if okXx && okYy {
		out["peer-as"] = float64(FromXxYy(xx, yy))
	}
	if d, ok := tree.String(n, "description"); ok {
		out["description"] = d
	}
	return out, nil
}

func readNeighborState(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	if !oc.IsProtocol(id, oc.BGP) {
		return nil, nil
	}
	addr, _ := id.Key("neighbor", "neighbor-address")
	ni := oc.NetworkInstanceName(id)
	active := instanceOper.WithKeys(map[string]string{"instance-name": InstanceName}).Child("instance-active")
	keys := map[string]string{"neighbor-address": addr}
	operID := active.Child("default-vrf").Child("neighbors").ListItem("neighbor", keys)
	if !oc.IsDefault(ni) {
		operID = active.Child("vrfs").ListItem("vrf", map[string]string{"vrf-name": ni}).
			Child("neighbors").ListItem("neighbor", keys)
	}
	n, err := rc.Underlay().ReadNode(operID, underlay.Operational)
	if err != nil || n == nil {
		return nil, err
	}
	out := tree.Node{"neighbor-address": addr}
	if s, ok := sessionStates[tree.StringOr(n, "connection-state", "")]; ok {
		out["session-state"] = s
	}
	if as, ok := tree.Uint(n, "remote-as"); ok {
		out["peer-as"] = float64(as)
	}
	return out, nil
}

// globalConfig is the northbound bgp/global/config
type globalConfig struct {
	As       *uint64 `json:"as"`
	RouterID *string `json:"router-id"`
}

func decodeGlobal(data tree.Node) (globalConfig, error) {
	var cfg globalConfig
	if err := tree.Decode(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.As == nil {
		return cfg, errors.NewInvalid("bgp global as must be configured")
	}
	return cfg, nil
}

func globalAs(data tree.Node) (uint64, error) {
	cfg, err := decodeGlobal(data)
	if err != nil {
		return 0, err
	}
	return *cfg.As, nil
}

type globalConfigWriter struct{}

func (globalConfigWriter) Write(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	cfg, err := decodeGlobal(data)
	if err != nil {
		return err
	}
	as := *cfg.As
	ni := oc.NetworkInstanceName(id)
	target := fourByteAsID(as)
	wc.Underlay().Merge(target, tree.Node{"as": float64(as), "bgp-running": tree.EmptyLeaf()})
	if oc.IsDefault(ni) {
		if cfg.RouterID != nil {
			wc.Underlay().Merge(target.Child("default-vrf").Child("global"), tree.Node{"router-id": *cfg.RouterID})
		}
		return nil
	}
	vrf := tree.Node{"vrf-name": ni, "vrf-global": tree.Node{"exists": tree.EmptyLeaf()}}
	if cfg.RouterID != nil {
		vrf["vrf-global"].(tree.Node)["router-id"] = *cfg.RouterID
	}
	log.Debugf("Enabling bgp %d in vrf %s", as, ni)
	wc.Underlay().Merge(target.Child("vrfs").ListItem("vrf", map[string]string{"vrf-name": ni}), vrf)
	return nil
}

func (w globalConfigWriter) Update(wc *translate.WriteContext, id path.IID, before tree.Node, after tree.Node) error {
	asBefore, _ := globalAs(before)
	cfg, err := decodeGlobal(after)
	if err != nil {
		return err
	}
	asAfter := *cfg.As
	if asBefore != asAfter {
		return errors.NewInvalid("changing the bgp as from %d to %d is not permitted", asBefore, asAfter)
	}
	if cfg.RouterID == nil {
		if oc.IsDefault(oc.NetworkInstanceName(id)) {
			wc.Underlay().Delete(fourByteAsID(asAfter).Child("default-vrf").Child("global").Child("router-id"))
		} else {
			wc.Underlay().Delete(fourByteAsID(asAfter).Child("vrfs").
				ListItem("vrf", map[string]string{"vrf-name": oc.NetworkInstanceName(id)}).
				Child("vrf-global").Child("router-id"))
		}
	}
	return w.Write(wc, id, after)
}

func (globalConfigWriter) Delete(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	ni := oc.NetworkInstanceName(id)
	if oc.IsDefault(ni) {
		wc.Underlay().Delete(instanceCfg.Parent())
		return nil
	}
	as, err := globalAs(data)
	if err != nil {
		return err
	}
	wc.Underlay().Delete(fourByteAsID(as).Child("vrfs").ListItem("vrf", map[string]string{"vrf-name": ni}))
	return nil
}

type neighborConfigWriter struct{}

// neighborConfig is the northbound neighbor config
type neighborConfig struct {
	PeerAs      *uint64 `json:"peer-as"`
	Description *string `json:"description"`
}

// neighborID addresses a neighbor of the process running as.
func neighborID(as uint64, ni string, addr string) path.IID {
	keys := map[string]string{"neighbor-address": addr}
	if oc.IsDefault(ni) {
		return fourByteAsID(as).Child("default-vrf").Child("bgp-entity").Child("neighbors").ListItem("neighbor", keys)
	}
	return fourByteAsID(as).Child("vrfs").ListItem("vrf", map[string]string{"vrf-name": ni}).
		Child("vrf-neighbors").ListItem("vrf-neighbor", keys)
}

func globalConfigID(id path.IID) path.IID {
	return oc.ProtocolID(id).Child("bgp").Child("global").Child("config")
}

func (neighborConfigWriter) Write(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	as, err := globalAs(wc.ReadAfterNode(globalConfigID(id)))
	if err != nil {
		return err
	}
	addr, _ := id.Key("neighbor", "neighbor-address")
	var cfg neighborConfig
	if err := tree.Decode(data, &cfg); err != nil {
		return err
	}
	if cfg.PeerAs == nil {
		return errors.NewInvalid("neighbor %s has no peer-as", addr)
	}
	xx, yy := ToXxYy(*cfg.PeerAs)
	n := tree.Node{
		"neighbor-address": addr,
		"remote-as":        tree.Node{"as-xx": float64(xx), "as-yy": float64(yy)},
	}
	if cfg.Description != nil {
		n["description"] = *cfg.Description
	}
	wc.Underlay().Merge(neighborID(as, oc.NetworkInstanceName(id), addr), n)
	return nil
}

func (neighborConfigWriter) Delete(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	as, err := globalAs(wc.ReadBeforeNode(globalConfigID(id)))
	if err != nil {
		return err
	}
	addr, _ := id.Key("neighbor", "neighbor-address")
	wc.Underlay().Delete(neighborID(as, oc.NetworkInstanceName(id), addr))
	return nil
}
