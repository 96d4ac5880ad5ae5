// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package direct passes OpenConfig interfaces and network instances through to devices
// that speak OpenConfig natively.
package direct

import (
	"github.com/onosproject/onos-lib-go/pkg/logging"
	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/translate"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/underlay"
	"github.com/onosproject/unitopo-adapter/pkg/unit"
	"github.com/onosproject/unitopo-adapter/pkg/units/oc"
	gpb "github.com/openconfig/gnmi/proto/gnmi"
)

var log = logging.GetLogger("units", "direct")

// DeviceType is the type OpenConfig native devices are mounted with
const DeviceType = "openconfig"

// Roots are the top level containers passed through unchanged
var Roots = []path.IID{oc.Interfaces, oc.NetworkInstances}

// Unit is the pass through translation unit
type Unit struct{}

func (Unit) String() string {
	return "Direct translate unit"
}

// Devices implements unit.Unit
func (Unit) Devices() []unit.Device {
	return []unit.Device{{Type: DeviceType, Version: "*"}}
}

// Models implements unit.Unit
func (Unit) Models() []*gpb.ModelData {
	return []*gpb.ModelData{
		oc.Model("openconfig-interfaces", "2.3.0"),
		oc.Model("openconfig-if-ip", "2.3.0"),
		oc.Model("openconfig-network-instance", "0.10.0"),
		oc.Model("openconfig-local-routing", "1.0.1"),
	}
}

// UnderlayModels implements unit.Unit. The device speaks the same models.
func (u Unit) UnderlayModels() []*gpb.ModelData {
	return u.Models()
}

// Schema implements unit.Unit
func (Unit) Schema(s *tree.Schema) {
	oc.Schema(s)
}

// ProvideHandlers implements unit.Unit
func (Unit) ProvideHandlers(rb *translate.ReaderRegistryBuilder, wb *translate.WriterRegistryBuilder) {
	for _, root := range Roots {
		rb.SubtreeAdd(root, nil, translate.ReaderFunc(readThrough))
		wb.SubtreeAdd(root, nil, writeThrough{})
	}
}

func readThrough(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	return rc.Underlay().ReadNode(id, underlay.Config)
}

type writeThrough struct{}

func (writeThrough) Write(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	log.Debugf("Writing %s", id)
	wc.Underlay().Put(id, data)
	return nil
}

func (w writeThrough) Update(wc *translate.WriteContext, id path.IID, before tree.Node, after tree.Node) error {
	return w.Write(wc, id, after)
}

func (writeThrough) Delete(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	wc.Underlay().Delete(id)
	return nil
}
