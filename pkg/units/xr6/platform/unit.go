// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package platform reports the line cards of IOS XR 5 and 6 inventories as OpenConfig components.
package platform

import (
	"regexp"

	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/translate"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/underlay"
	"github.com/onosproject/unitopo-adapter/pkg/unit"
	"github.com/onosproject/unitopo-adapter/pkg/units/oc"
	"github.com/onosproject/unitopo-adapter/pkg/units/xr6"
	gpb "github.com/openconfig/gnmi/proto/gnmi"
)

// LineCard is the component type of every component the unit reports
const LineCard = "openconfig-platform-types:LINECARD"

var (
	racks = path.MustParse("/inventory/racks")
	rack  = racks.Child("rack")
	slot  = rack.Child("slots").Child("slot")
	card  = slot.Child("cards").Child("card")

	lineCard = regexp.MustCompile(`.*Line Card.*`)
)

// inventory leaves, openconfig to device
var stateLeaves = [][2]string{
	{"description", "description"},
	{"serial-no", "serial-number"},
	{"version", "hardware-revision"},
	{"part-no", "model-name"},
	{"mfg-name", "manufacturer-name"},
}

// Unit is the IOS XR platform translation unit
type Unit struct{}

func (Unit) String() string {
	return "XR 6 (2015-07-30) platform translate unit"
}

// Devices implements unit.Unit
func (Unit) Devices() []unit.Device {
	return xr6.Devices
}

// Models implements unit.Unit
func (Unit) Models() []*gpb.ModelData {
	return []*gpb.ModelData{
		oc.Model("openconfig-platform", "0.5.0"),
		oc.Model("openconfig-platform-types", "0.5.0"),
	}
}

// UnderlayModels implements unit.Unit
func (Unit) UnderlayModels() []*gpb.ModelData {
	return []*gpb.ModelData{xr6.Model("Cisco-IOS-XR-invmgr-oper", "2015-11-09")}
}

// Schema implements unit.Unit
func (Unit) Schema(s *tree.Schema) {
	oc.Schema(s)
	s.AddList(rack.Schema(), "name").
		AddList(slot.Schema(), "name").
		AddList(card.Schema(), "name")
}

// ProvideHandlers implements unit.Unit. The inventory is read only.
func (Unit) ProvideHandlers(rb *translate.ReaderRegistryBuilder, wb *translate.WriterRegistryBuilder) {
	rb.AddStructural(oc.Components)
	rb.AddOperList(oc.Component, componentReader)
	rb.AddOper(oc.ComponentState, translate.ReaderFunc(readComponentState))
}

// cards returns the basic info of every card in the inventory.
func cards(access underlay.Access) ([]tree.Node, error) {
	n, err := access.ReadNode(racks, underlay.Operational)
	if err != nil || n == nil {
		return nil, err
	}
	var out []tree.Node
	for _, r := range tree.Entries(n, "rack") {
		slots, _ := tree.Child(r, "slots")
		for _, s := range tree.Entries(slots, "slot") {
			cs, _ := tree.Child(s, "cards")
			for _, c := range tree.Entries(cs, "card") {
				attrs, _ := tree.Child(c, "basic-attributes")
				if info, ok := tree.Child(attrs, "basic-info"); ok {
					out = append(out, info)
				}
			}
		}
	}
	return out, nil
}

// lineCards keeps the cards whose description names a line card.
func lineCards(access underlay.Access) ([]tree.Node, error) {
	all, err := cards(access)
	if err != nil {
		return nil, err
	}
	var out []tree.Node
	for _, info := range all {
		name, hasName := tree.String(info, "name")
		description, hasDescription := tree.String(info, "description")
		if hasName && name != "" && hasDescription && lineCard.MatchString(description) {
			out = append(out, info)
		}
	}
	return out, nil
}

func findCard(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	infos, err := lineCards(rc.Underlay())
	if err != nil {
		return nil, err
	}
	want, _ := id.Key("component", "name")
	var found tree.Node
	for _, info := range infos {
		if tree.StringOr(info, "name", "") == want {
			found = info
		}
	}
	return found, nil
}

var componentReader = translate.ListReaderFuncs{
	IDs: func(rc *translate.ReadContext, id path.IID) ([]map[string]string, error) {
		infos, err := lineCards(rc.Underlay())
		if err != nil {
			return nil, err
		}
		keys := make([]map[string]string, 0, len(infos))
		for _, info := range infos {
			keys = append(keys, map[string]string{"name": tree.StringOr(info, "name", "")})
		}
		return keys, nil
	},
	ReadFunc: func(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
		info, err := findCard(rc, id)
		if err != nil || info == nil {
			return nil, err
		}
		return tree.Node{"name": info["name"]}, nil
	},
}

func readComponentState(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	info, err := findCard(rc, id)
	if err != nil || info == nil {
		return nil, err
	}
	out := tree.Node{"name": info["name"], "id": info["name"], "type": LineCard}
	for _, l := range stateLeaves {
		if v, ok := tree.String(info, l[1]); ok {
			out[l[0]] = v
		}
	}
	return out, nil
}
