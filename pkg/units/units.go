// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package units lists the translation units shipped with the adapter.
package units

import (
	"github.com/onosproject/unitopo-adapter/pkg/unit"
	"github.com/onosproject/unitopo-adapter/pkg/units/direct"
	junosbfd "github.com/onosproject/unitopo-adapter/pkg/units/junos18/bfd"
	junosinterfaces "github.com/onosproject/unitopo-adapter/pkg/units/junos18/interfaces"
	"github.com/onosproject/unitopo-adapter/pkg/units/xr6/bgp"
	"github.com/onosproject/unitopo-adapter/pkg/units/xr6/cdp"
	xrinterfaces "github.com/onosproject/unitopo-adapter/pkg/units/xr6/interfaces"
	"github.com/onosproject/unitopo-adapter/pkg/units/xr6/ip6"
	"github.com/onosproject/unitopo-adapter/pkg/units/xr6/lr"
	"github.com/onosproject/unitopo-adapter/pkg/units/xr6/ospf"
	"github.com/onosproject/unitopo-adapter/pkg/units/xr6/platform"
	"github.com/onosproject/unitopo-adapter/pkg/units/xr6/routingpolicy"
	"github.com/onosproject/unitopo-adapter/pkg/units/xr6/vrf"
)

// All returns every unit, in registration order
func All() []unit.Unit {
	return []unit.Unit{
		xrinterfaces.Unit{},
		ip6.Unit{},
		vrf.Unit{},
		bgp.Unit{},
		routingpolicy.Unit{},
		ospf.Unit{},
		lr.Unit{},
		cdp.Unit{},
		platform.Unit{},
		junosinterfaces.Unit{},
		junosbfd.Unit{},
		direct.Unit{},
	}
}

// RegisterAll registers every unit with the collector. Units registered before a
// failure are unregistered again.
func RegisterAll(c *unit.Collector) ([]*unit.Registration, error) {
	var regs []*unit.Registration
	for _, u := range All() {
		r, err := c.Register(u)
		if err != nil {
			for _, done := range regs {
				done.Close()
			}
			return nil, err
		}
		regs = append(regs, r)
	}
	return regs, nil
}
