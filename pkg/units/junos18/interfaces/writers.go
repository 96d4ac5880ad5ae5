// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package interfaces

import (
	"fmt"
	"strconv"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/translate"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/underlay"
	"github.com/onosproject/unitopo-adapter/pkg/units/junos18"
	"github.com/onosproject/unitopo-adapter/pkg/units/oc"
)

// setEnabled sets or clears the disable leaf. A missing enabled leaf disables.
func setEnabled(n tree.Node, data tree.Node) {
	if tree.BoolOr(data, "enabled", false) {
		delete(n, "disable")
	} else {
		n["disable"] = tree.EmptyLeaf()
	}
}

func setDescription(n tree.Node, data tree.Node) {
	if d, ok := tree.String(data, "description"); ok {
		n["description"] = d
	} else {
		delete(n, "description")
	}
}

// checkType rejects a type the interface name cannot have. Other fits every name.
func checkType(name string, data tree.Node) error {
	t, ok := tree.String(data, "type")
	if !ok {
		return errors.NewInvalid("interface %s has no type", name)
	}
	if t = tree.Identity(t); t != oc.Other && t != junos18.InterfaceType(name) {
		return errors.NewInvalid("type %s does not match interface name %s", t, name)
	}
	return nil
}

type interfaceConfigWriter struct{}

// Write preserves the units and options of an existing interface.
func (interfaceConfigWriter) Write(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	name := oc.InterfaceName(id)
	if err := checkType(name, data); err != nil {
		return err
	}
	ifc, err := junos18.ReadInterface(wc.Underlay(), name)
	if err != nil {
		return err
	}
	ifc = tree.CopyNode(ifc)
	if ifc == nil {
		ifc = tree.Node{}
	}
	ifc["name"] = name
	setDescription(ifc, data)
	setEnabled(ifc, data)
	if mtu, ok := tree.Uint(data, "mtu"); ok {
		ifc["mtu"] = float64(mtu)
	} else {
		delete(ifc, "mtu")
	}
	log.Debugf("Configuring interface %s", name)
	wc.Underlay().Put(junos18.InterfaceID(name), ifc)
	return nil
}

func (w interfaceConfigWriter) Update(wc *translate.WriteContext, id path.IID, before tree.Node, after tree.Node) error {
	return w.Write(wc, id, after)
}

func (interfaceConfigWriter) Delete(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	wc.Underlay().Delete(junos18.InterfaceID(oc.InterfaceName(id)))
	return nil
}

func unitID(id path.IID) path.IID {
	return junos18.UnitID(oc.InterfaceName(id), strconv.FormatUint(oc.SubinterfaceIndex(id), 10))
}

type subinterfaceConfigWriter struct{}

func (subinterfaceConfigWriter) Write(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	uid := unitID(id)
	u, err := wc.Underlay().ReadNode(uid, underlay.Config)
	if err != nil {
		return err
	}
	u = tree.CopyNode(u)
	if u == nil {
		u = tree.Node{}
	}
	u["name"] = strconv.FormatUint(oc.SubinterfaceIndex(id), 10)
	setDescription(u, data)
	setEnabled(u, data)
	wc.Underlay().Put(uid, u)
	return nil
}

func (w subinterfaceConfigWriter) Update(wc *translate.WriteContext, id path.IID, before tree.Node, after tree.Node) error {
	return w.Write(wc, id, after)
}

func (subinterfaceConfigWriter) Delete(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	wc.Underlay().Delete(unitID(id))
	return nil
}

type vlanConfigWriter struct{}

func (vlanConfigWriter) Write(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	vid, ok := tree.Uint(data, "vlan-id")
	if !ok || vid == 0 || vid > 4094 {
		return errors.NewInvalid("bad vlan-id for %s", id)
	}
	wc.Underlay().Merge(unitID(id), tree.Node{"vlan-id": float64(vid)})
	return nil
}

func (w vlanConfigWriter) Update(wc *translate.WriteContext, id path.IID, before tree.Node, after tree.Node) error {
	return w.Write(wc, id, after)
}

func (vlanConfigWriter) Delete(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	wc.Underlay().Delete(unitID(id).Child("vlan-id"))
	return nil
}

type addressConfigWriter struct{}

func addressID(id path.IID, data tree.Node) (path.IID, string, error) {
	ip, _ := id.Key("address", "ip")
	length, ok := tree.Uint(data, "prefix-length")
	if !ok || length > 32 {
		return path.IID{}, "", errors.NewInvalid("bad prefix length for %s", ip)
	}
	name := fmt.Sprintf("%s/%d", ip, length)
	return unitID(id).Child("family").Child("inet").ListItem("address", map[string]string{"name": name}), name, nil
}

func (addressConfigWriter) Write(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	aid, name, err := addressID(id, data)
	if err != nil {
		return err
	}
	wc.Underlay().Merge(aid, tree.Node{"name": name})
	return nil
}

func (addressConfigWriter) Delete(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	aid, _, err := addressID(id, data)
	if err != nil {
		return err
	}
	wc.Underlay().Delete(aid)
	return nil
}
