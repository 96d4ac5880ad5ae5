// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package bfd translates OpenConfig BFD for the aggregated ethernet interfaces of Junos 18.
package bfd

import (
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/translate"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/unit"
	"github.com/onosproject/unitopo-adapter/pkg/units/junos18"
	"github.com/onosproject/unitopo-adapter/pkg/units/oc"
	gpb "github.com/openconfig/gnmi/proto/gnmi"
)

// relative to an interface
var liveness = path.MustParse("/aggregated-ether-options/bfd-liveness-detection")

// Unit is the Junos BFD translation unit
type Unit struct{}

func (Unit) String() string {
	return "Junos 18.2 BFD translate unit"
}

// Devices implements unit.Unit
func (Unit) Devices() []unit.Device {
	return junos18.Devices
}

// Models implements unit.Unit
func (Unit) Models() []*gpb.ModelData {
	return []*gpb.ModelData{
		oc.Model("openconfig-bfd", "0.1.0"),
		{Name: "frinx-bfd-extension", Organization: "FRINX s.r.o.", Version: "2018-10-05"},
	}
}

// UnderlayModels implements unit.Unit
func (Unit) UnderlayModels() []*gpb.ModelData {
	return []*gpb.ModelData{junos18.Model("junos-conf-interfaces", "2018-01-01")}
}

// Schema implements unit.Unit
func (Unit) Schema(s *tree.Schema) {
	oc.Schema(s)
	junos18.Schema(s)
}

// ProvideHandlers implements unit.Unit
func (Unit) ProvideHandlers(rb *translate.ReaderRegistryBuilder, wb *translate.WriterRegistryBuilder) {
	rb.AddStructural(oc.BFD)
	rb.AddStructural(oc.BFDInterfaces)
	rb.AddList(oc.BFDInterface, interfaceReader)
	rb.Add(oc.BFDInterfaceConfig, translate.ReaderFunc(readConfig))

	wb.Add(oc.BFDInterface, translate.NoopWriter{})
	wb.AddAfter(oc.BFDInterfaceConfig, configWriter{}, oc.InterfaceConfig)
}

func bfdID(name string) path.IID {
	return junos18.InterfaceID(name).Append(liveness)
}

func interfaceName(id path.IID) string {
	name, _ := id.Key("interface", "id")
	return name
}

var interfaceReader = translate.ListReaderFuncs{
	IDs: func(rc *translate.ReadContext, id path.IID) ([]map[string]string, error) {
		ifcs, err := junos18.ReadInterfaces(rc.Underlay())
		if err != nil {
			return nil, err
		}
		var keys []map[string]string
		for _, ifc := range ifcs {
			name := tree.StringOr(ifc, "name", "")
			if _, ok := tree.GetNode(ifc, liveness); ok && junos18.IsAggregate(name) {
				keys = append(keys, map[string]string{"id": name})
			}
		}
		return keys, nil
	},
	ReadFunc: func(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
		cfg, err := readConfig(rc, id)
		if err != nil || cfg == nil {
			return nil, err
		}
		return tree.Node{"id": interfaceName(id)}, nil
	},
}

func readConfig(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	name := interfaceName(id)
	if !junos18.IsAggregate(name) {
		return nil, nil
	}
	ifc, err := junos18.ReadInterface(rc.Underlay(), name)
	if err != nil || ifc == nil {
		return nil, err
	}
	l, ok := tree.GetNode(ifc, liveness)
	if !ok {
		return nil, nil
	}
	out := tree.Node{"id": name}
	if a, ok := tree.String(l, "local-address"); ok {
		out["local-address"] = a
	}
	if a, ok := tree.String(l, "neighbor"); ok {
		out["remote-address"] = a
	}
	if m, ok := tree.Uint(l, "minimum-interval"); ok {
		out["desired-minimum-tx-interval"] = float64(m)
	}
	if m, ok := tree.Uint(l, "multiplier"); ok {
		out["detection-multiplier"] = float64(m)
	}
	return out, nil
}

type configWriter struct{}

func (configWriter) liveness(id path.IID, data tree.Node) (path.IID, tree.Node, error) {
	name := interfaceName(id)
	if !junos18.IsAggregate(name) {
		return path.IID{}, nil, errors.NewInvalid("bfd configuration is not supported for interface %s", name)
	}
	l := tree.Node{}
	if a, ok := tree.String(data, "local-address"); ok {
		l["local-address"] = a
	}
	if a, ok := tree.String(data, "remote-address"); ok {
		l["neighbor"] = a
	}
	if m, ok := tree.Uint(data, "desired-minimum-tx-interval"); ok {
		l["minimum-interval"] = float64(m)
	}
	if m, ok := tree.Uint(data, "detection-multiplier"); ok {
		l["multiplier"] = tree.ScalarString(float64(m))
	}
	return bfdID(name), l, nil
}

func (w configWriter) Write(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	target, l, err := w.liveness(id, data)
	if err != nil {
		return err
	}
	wc.Underlay().Put(target, l)
	return nil
}

func (w configWriter) Update(wc *translate.WriteContext, id path.IID, before tree.Node, after tree.Node) error {
	target, l, err := w.liveness(id, after)
	if err != nil {
		return err
	}
	wc.Underlay().Merge(target, l)
	return nil
}

func (w configWriter) Delete(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	target, _, err := w.liveness(id, data)
	if err != nil {
		return err
	}
	wc.Underlay().Delete(target)
	return nil
}
