// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package unit defines translation units and the collector that selects them per device.
package unit

import (
	gopath "path"
	"strings"
	"sync"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/onos-lib-go/pkg/logging"
	"github.com/onosproject/unitopo-adapter/pkg/translate"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	gpb "github.com/openconfig/gnmi/proto/gnmi"
)

var log = logging.GetLogger("unit")

// Device selects the devices a unit applies to. Version is a glob.
type Device struct {
	Type    string
	Version string
}

func (d Device) String() string {
	return d.Type + " " + d.Version
}

// Matches reports whether the device type and version are covered.
func (d Device) Matches(deviceType string, version string) bool {
	if d.Type != "*" && !strings.EqualFold(d.Type, deviceType) {
		return false
	}
	ok, err := gopath.Match(d.Version, version)
	if err != nil {
		log.Warnf("Bad version pattern %s: %v", d.Version, err)
		return false
	}
	return ok
}

// Unit translates a slice of the northbound model for a family of devices.
type Unit interface {
	String() string
	// Devices lists the device types and versions the unit handles.
	Devices() []Device
	// Models are the northbound models the unit implements.
	Models() []*gpb.ModelData
	// UnderlayModels are the device models the unit talks to.
	UnderlayModels() []*gpb.ModelData
	// Schema adds the list keys of the unit's northbound and device trees.
	Schema(s *tree.Schema)
	// ProvideHandlers registers the unit's readers and writers.
	ProvideHandlers(rb *translate.ReaderRegistryBuilder, wb *translate.WriterRegistryBuilder)
}

// Collector holds the registered units.
type Collector struct {
	mu    sync.RWMutex
	units []Unit
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Registration is the handle of a registered unit.
type Registration struct {
	c *Collector
	u Unit
}

// Close unregisters the unit. Devices mounted later no longer use it.
func (r *Registration) Close() {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	for i, u := range r.c.units {
		if u == r.u {
			r.c.units = append(r.c.units[:i], r.c.units[i+1:]...)
			log.Infof("Unregistered unit %s", u)
			return
		}
	}
}

// Register adds a unit.
func (c *Collector) Register(u Unit) (*Registration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.units {
		if existing == u || existing.String() == u.String() {
			return nil, errors.NewAlreadyExists("unit %s is already registered", u)
		}
	}
	c.units = append(c.units, u)
	log.Infof("Registered unit %s for %v", u, u.Devices())
	return &Registration{c: c, u: u}, nil
}

// Units returns every registered unit in registration order.
func (c *Collector) Units() []Unit {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Unit(nil), c.units...)
}

// UnitsFor returns the units handling a device type and version, in registration order.
func (c *Collector) UnitsFor(deviceType string, version string) []Unit {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Unit
	for _, u := range c.units {
		for _, d := range u.Devices() {
			if d.Matches(deviceType, version) {
				out = append(out, u)
				break
			}
		}
	}
	return out
}

// SchemaOf merges the list keys of units.
func SchemaOf(units []Unit) (*tree.Schema, error) {
	s := tree.NewSchema()
	for _, u := range units {
		us := tree.NewSchema()
		u.Schema(us)
		if err := s.Merge(us); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Handlers builds the schema and registries of a set of units.
func Handlers(units []Unit) (*tree.Schema, *translate.ReaderRegistry, *translate.WriterRegistry, error) {
	s, err := SchemaOf(units)
	if err != nil {
		return nil, nil, nil, err
	}
	rb := translate.NewReaderRegistryBuilder()
	wb := translate.NewWriterRegistryBuilder(s)
	for _, u := range units {
		u.ProvideHandlers(rb, wb)
	}
	readers, err := rb.Build()
	if err != nil {
		return nil, nil, nil, err
	}
	writers, err := wb.Build()
	if err != nil {
		return nil, nil, nil, err
	}
	return s, readers, writers, nil
}

// Models returns the distinct northbound models of units.
func Models(units []Unit) []*gpb.ModelData {
	seen := map[string]bool{}
	var out []*gpb.ModelData
	for _, u := range units {
		for _, m := range u.Models() {
			if seen[m.Name] {
				continue
			}
			seen[m.Name] = true
			out = append(out, m)
		}
	}
	return out
}
