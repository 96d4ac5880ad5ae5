// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package interfaces

import (
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/translate"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/underlay"
	"github.com/onosproject/unitopo-adapter/pkg/units/oc"
	"github.com/onosproject/unitopo-adapter/pkg/units/xr6"
)

// existing returns the device configuration of an interface, or a bare entry.
func existing(access underlay.Access, name string) (tree.Node, error) {
	cfg, err := access.ReadNode(xr6.InterfaceConfigurationID(name), underlay.Config)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = tree.Node{"active": xr6.Active, "interface-name": name}
	}
	return tree.CopyNode(cfg), nil
}

// applyCommon sets the description and shutdown leaves. A missing enabled leaf
// shuts the interface down.
func applyCommon(cfg tree.Node, data tree.Node) {
	if d, ok := tree.String(data, "description"); ok {
		cfg["description"] = d
	} else {
		delete(cfg, "description")
	}
	if tree.BoolOr(data, "enabled", false) {
		delete(cfg, "shutdown")
	} else {
		cfg["shutdown"] = tree.EmptyLeaf()
	}
}

func checkType(name string, data tree.Node) error {
	t, ok := tree.String(data, "type")
	if !ok {
		return nil
	}
	if want := xr6.InterfaceType(name); tree.Identity(t) != want {
		return errors.NewInvalid("interface %s has type %s, cannot be configured as %s", name, want, tree.Identity(t))
	}
	return nil
}

type interfaceConfigWriter struct{}

func (interfaceConfigWriter) Write(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	name := oc.InterfaceName(id)
	if err := checkType(name, data); err != nil {
		return err
	}
	cfg := tree.Node{"active": xr6.Active, "interface-name": name}
	applyCommon(cfg, data)
	if xr6.IsVirtual(name) {
		cfg["interface-virtual"] = tree.EmptyLeaf()
	}
	wc.Underlay().Put(xr6.InterfaceConfigurationID(name), cfg)
	return nil
}

func (interfaceConfigWriter) Update(wc *translate.WriteContext, id path.IID, before tree.Node, after tree.Node) error {
	name := oc.InterfaceName(id)
	if tree.Identity(tree.StringOr(before, "type", "")) != tree.Identity(tree.StringOr(after, "type", "")) {
		return errors.NewInvalid("changing the type of interface %s is not permitted", name)
	}
	if err := checkType(name, after); err != nil {
		return err
	}
	cfg, err := existing(wc.Underlay(), name)
	if err != nil {
		return err
	}
	applyCommon(cfg, after)
	wc.Underlay().Put(xr6.InterfaceConfigurationID(name), cfg)
	return nil
}

func (interfaceConfigWriter) Delete(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	wc.Underlay().Delete(xr6.InterfaceConfigurationID(oc.InterfaceName(id)))
	return nil
}

type subinterfaceConfigWriter struct{}

func (subinterfaceConfigWriter) Write(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	idx := oc.SubinterfaceIndex(id)
	if idx == 0 {
		return nil
	}
	name := xr6.SubinterfaceName(oc.InterfaceName(id), idx)
	cfg := tree.Node{
		"active":                      xr6.Active,
		"interface-name":              name,
		"interface-mode-non-physical": "default",
	}
	applyCommon(cfg, data)
	wc.Underlay().Put(xr6.InterfaceConfigurationID(name), cfg)
	return nil
}

func (subinterfaceConfigWriter) Update(wc *translate.WriteContext, id path.IID, before tree.Node, after tree.Node) error {
	idx := oc.SubinterfaceIndex(id)
	if idx == 0 {
		return nil
	}
	name := xr6.SubinterfaceName(oc.InterfaceName(id), idx)
	cfg, err := existing(wc.Underlay(), name)
	if err != nil {
		return err
	}
	cfg["interface-mode-non-physical"] = "default"
	applyCommon(cfg, after)
	wc.Underlay().Put(xr6.InterfaceConfigurationID(name), cfg)
	return nil
}

func (subinterfaceConfigWriter) Delete(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	idx := oc.SubinterfaceIndex(id)
	if idx == 0 {
		return nil
	}
	wc.Underlay().Delete(xr6.InterfaceConfigurationID(xr6.SubinterfaceName(oc.InterfaceName(id), idx)))
	return nil
}

type addressConfigWriter struct{}

func (addressConfigWriter) primaryID(id path.IID) path.IID {
	name := xr6.SubinterfaceName(oc.InterfaceName(id), oc.SubinterfaceIndex(id))
	return xr6.InterfaceConfigurationID(name).Append(primaryAddress)
}

// addressConfig is the northbound address config
type addressConfig struct {
	IP           *string `json:"ip"`
	PrefixLength *uint64 `json:"prefix-length"`
}

func (w addressConfigWriter) Write(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	var cfg addressConfig
	if err := tree.Decode(data, &cfg); err != nil {
		return err
	}
	if cfg.IP == nil {
		return errors.NewInvalid("address %s has no ip", id)
	}
	if cfg.PrefixLength == nil {
		return errors.NewInvalid("address %s has no prefix-length", id)
	}
	ip, length := *cfg.IP, *cfg.PrefixLength
	mask, err := oc.Netmask(length)
	if err != nil {
		return err
	}
	log.Debugf("Setting primary address %s/%d on %s", ip, length, oc.InterfaceName(id))
	wc.Underlay().Merge(w.primaryID(id), tree.Node{"address": ip, "netmask": mask})
	return nil
}

func (w addressConfigWriter) Update(wc *translate.WriteContext, id path.IID, before tree.Node, after tree.Node) error {
	return w.Write(wc, id, after)
}

func (w addressConfigWriter) Delete(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	wc.Underlay().Delete(w.primaryID(id))
	return nil
}

type aggregationConfigWriter struct{}

func (aggregationConfigWriter) Write(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	name := oc.InterfaceName(id)
	if xr6.InterfaceType(name) != oc.Ieee8023adLag {
		return errors.NewInvalid("cannot configure aggregation on non LAG interface %s", name)
	}
	target := xr6.InterfaceConfigurationID(name).Append(minimumActive)
	links, ok := tree.Uint(data, "min-links")
	if !ok {
		wc.Underlay().Delete(target)
		return nil
	}
	wc.Underlay().Merge(target, tree.Node{"links": float64(links)})
	return nil
}

func (w aggregationConfigWriter) Update(wc *translate.WriteContext, id path.IID, before tree.Node, after tree.Node) error {
	return w.Write(wc, id, after)
}

func (aggregationConfigWriter) Delete(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	wc.Underlay().Delete(xr6.InterfaceConfigurationID(oc.InterfaceName(id)).Append(minimumActive))
	return nil
}
