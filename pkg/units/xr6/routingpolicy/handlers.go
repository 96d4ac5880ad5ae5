// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package routingpolicy

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/translate"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/underlay"
	"github.com/onosproject/unitopo-adapter/pkg/units/oc"
	"github.com/onosproject/unitopo-adapter/pkg/units/xr6"
)

type direction string

const (
	importTargets direction = "import"
	exportTargets direction = "export"
)

func (d direction) container() string {
	return string(d) + "-route-targets"
}

// routeTargets is the schema of the route target list of a VRF address family.
func (d direction) routeTargets() path.IID {
	return xr6.Vrf.Child("afs").Child("af").Child("bgp").Child(d.container()).Child("route-targets").Child("route-target")
}

var setNamePattern = regexp.MustCompile(`^(.+)-route-target-(import|export)-set$`)

// setName names the extended community set holding the route targets of a VRF.
func setName(vrf string, d direction) string {
	return fmt.Sprintf("%s-route-target-%s-set", vrf, d)
}

// parseSetName returns the VRF and direction of a set name.
func parseSetName(name string) (string, direction, error) {
	m := setNamePattern.FindStringSubmatch(name)
	if m == nil {
		return "", "", errors.NewInvalid("invalid ext community %s, expected <vrf>-route-target-import-set or <vrf>-route-target-export-set", name)
	}
	return m[1], direction(m[2]), nil
}

// route target types read as AS based
var asTypes = map[string]bool{"as": true, "four-byte-as": true}

var ipv4Unicast = map[string]string{"af-name": "ipv4", "saf-name": "unicast", "topology-name": "default"}

func afBGP(vrf string) path.IID {
	return xr6.VrfID(vrf).Child("afs").ListItem("af", ipv4Unicast).Child("bgp")
}

func routeTargetID(vrf string, d direction) path.IID {
	return afBGP(vrf).Child(d.container()).Child("route-targets").ListItem("route-target", map[string]string{"type": "as"})
}

type target struct {
	as    uint64
	index uint64
}

func (t target) String() string {
	return fmt.Sprintf("%d:%d", t.as, t.index)
}

func (t target) keys() map[string]string {
	return map[string]string{
		"as-xx":        "0",
		"as":           strconv.FormatUint(t.as, 10),
		"as-index":     strconv.FormatUint(t.index, 10),
		"stitching-rt": "0",
	}
}

func (t target) node() tree.Node {
	return tree.Node{"as-xx": float64(0), "as": float64(t.as), "as-index": float64(t.index), "stitching-rt": float64(0)}
}

func parseTarget(member string) (target, error) {
	parts := strings.SplitN(member, ":", 2)
	if len(parts) != 2 {
		return target{}, errors.NewInvalid("route target %s is not <as>:<index>", member)
	}
	as, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return target{}, errors.NewInvalid("bad route target as in %s", member)
	}
	index, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return target{}, errors.NewInvalid("bad route target index in %s", member)
	}
	return target{as: as, index: index}, nil
}

// members lists the AS based route targets of one direction of an address family.
func members(bgp tree.Node, d direction) []interface{} {
	c, _ := tree.Child(bgp, d.container())
	rts, _ := tree.Child(c, "route-targets")
	var out []interface{}
	for _, rt := range tree.Entries(rts, "route-target") {
		if !asTypes[tree.StringOr(rt, "type", "")] {
			continue
		}
		for _, e := range tree.Entries(rt, "as-or-four-byte-as") {
			as, _ := tree.Uint(e, "as")
			index, _ := tree.Uint(e, "as-index")
			out = append(out, target{as: as, index: index}.String())
		}
	}
	return out
}

// extCommunitySets derives the extended community sets from the IPv4 route targets of
// every VRF.
func extCommunitySets(access underlay.Access) ([]tree.Node, error) {
	vrfs, err := access.ReadNode(xr6.Vrfs, underlay.Config)
	if err != nil || vrfs == nil {
		return nil, err
	}
	var out []tree.Node
	for _, vrf := range tree.Entries(vrfs, "vrf") {
		name := tree.StringOr(vrf, "vrf-name", "")
		afs, _ := tree.Child(vrf, "afs")
		for _, af := range tree.Entries(afs, "af") {
			if tree.StringOr(af, "af-name", "") != "ipv4" {
				continue
			}
			bgp, _ := tree.Child(af, "bgp")
			for _, d := range []direction{exportTargets, importTargets} {
				if m := members(bgp, d); len(m) > 0 {
					out = append(out, tree.Node{"ext-community-set-name": setName(name, d), "ext-community-member": m})
				}
			}
		}
	}
	return out, nil
}

func findSet(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	sets, err := extCommunitySets(rc.Underlay())
	if err != nil {
		return nil, err
	}
	name, _ := id.Key("ext-community-set", "ext-community-set-name")
	for _, s := range sets {
		if tree.StringOr(s, "ext-community-set-name", "") == name {
			return s, nil
		}
	}
	return nil, nil
}

var setReader = translate.ListReaderFuncs{
	IDs: func(rc *translate.ReadContext, id path.IID) ([]map[string]string, error) {
		sets, err := extCommunitySets(rc.Underlay())
		if err != nil {
			return nil, err
		}
		keys := make([]map[string]string, 0, len(sets))
		for _, s := range sets {
			keys = append(keys, map[string]string{"ext-community-set-name": tree.StringOr(s, "ext-community-set-name", "")})
		}
		return keys, nil
	},
	ReadFunc: func(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
		s, err := findSet(rc, id)
		if err != nil || s == nil {
			return nil, err
		}
		return tree.Node{"ext-community-set-name": s["ext-community-set-name"]}, nil
	},
}

func readSetConfig(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	return findSet(rc, id)
}

// setConfig is the northbound ext-community-set config
type setConfig struct {
	Name    string   `json:"ext-community-set-name"`
	Members []string `json:"ext-community-member"`
}

func decodeSet(id path.IID, data tree.Node) (string, direction, []target, error) {
	var cfg setConfig
	if err := tree.Decode(data, &cfg); err != nil {
		return "", "", nil, err
	}
	if cfg.Name == "" {
		cfg.Name, _ = id.Key("ext-community-set", "ext-community-set-name")
	}
	vrf, d, err := parseSetName(cfg.Name)
	if err != nil {
		return "", "", nil, err
	}
	targets := make([]target, 0, len(cfg.Members))
	for _, m := range cfg.Members {
		t, err := parseTarget(m)
		if err != nil {
			return "", "", nil, err
		}
		targets = append(targets, t)
	}
	return vrf, d, targets, nil
}

type setConfigWriter struct{}

func (setConfigWriter) Write(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	vrf, d, targets, err := decodeSet(id, data)
	if err != nil {
		return err
	}
	ni := wc.ReadAfterNode(oc.NetworkInstance.WithKeys(map[string]string{"name": vrf}).Child("config"))
	families, _ := tree.AsList(ni["enabled-address-families"])
	if len(families) == 0 {
		return errors.NewInvalid("no enabled address family for vrf %s", vrf)
	}
	ipv4 := false
	for _, f := range families {
		if s, _ := f.(string); tree.Identity(s) == "IPV4" {
			ipv4 = true
		}
	}
	if !ipv4 {
		return errors.NewInvalid("IPV4 is not among the enabled address families of vrf %s", vrf)
	}
	entries := make([]interface{}, 0, len(targets))
	for _, t := range targets {
		entries = append(entries, t.node())
	}
	log.Debugf("Setting %s route targets %v of vrf %s", d, targets, vrf)
	wc.Underlay().Merge(routeTargetID(vrf, d), tree.Node{"type": "as", "as-or-four-byte-as": entries})
	return nil
}

func (setConfigWriter) Delete(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	vrf, d, targets, err := decodeSet(id, data)
	if err != nil {
		return err
	}
	for _, t := range targets {
		wc.Underlay().Delete(routeTargetID(vrf, d).ListItem("as-or-four-byte-as", t.keys()))
	}
	return nil
}
