// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package mount

import (
	"context"
	"sort"
	"sync"

	topoapi "github.com/onosproject/onos-api/go/onos/topo"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/unitopo-adapter/pkg/config"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/underlay"
	"github.com/onosproject/unitopo-adapter/pkg/unit"
	"golang.org/x/sync/errgroup"
)

// TransportFactory creates the transport of a device
type TransportFactory func(d config.Device, s *tree.Schema) (underlay.Transport, error)

// Manager owns the mounts of every inventoried device
type Manager struct {
	collector    *unit.Collector
	mountOpts    []MountOption
	caPath       string
	keyPath      string
	certPath     string
	topoEndpoint string

	mu     sync.RWMutex
	mounts map[string]*Mount

	// used for ease of mocking
	transportFactory TransportFactory
	topoClientFunc   func(ctx context.Context, mgr *Manager) (topoapi.TopoClient, error)
}

// ManagerOption is for options passed when creating a new manager
type ManagerOption func(mgr *Manager)

// WithMountOptions sets the options of every mount the manager creates
func WithMountOptions(opts ...MountOption) ManagerOption {
	return func(mgr *Manager) {
		mgr.mountOpts = append(mgr.mountOpts, opts...)
	}
}

// WithTopoEndpoint specifies the onos-topo endpoint to use
func WithTopoEndpoint(topoEndpoint string) ManagerOption {
	return func(mgr *Manager) {
		mgr.topoEndpoint = topoEndpoint
	}
}

// WithCertPaths defines certificate paths
func WithCertPaths(caPath string, keyPath string, certPath string) ManagerOption {
	return func(mgr *Manager) {
		mgr.caPath = caPath
		mgr.keyPath = keyPath
		mgr.certPath = certPath
	}
}

// WithTransportFactory replaces the way device transports are created
func WithTransportFactory(f TransportFactory) ManagerOption {
	return func(mgr *Manager) {
		mgr.transportFactory = f
	}
}

// NewManager creates a manager selecting units from collector
func NewManager(collector *unit.Collector, opts ...ManagerOption) *Manager {
	mgr := &Manager{
		collector:        collector,
		mounts:           map[string]*Mount{},
		transportFactory: NewTransport,
		topoClientFunc:   getTopoClient,
	}
	for _, opt := range opts {
		opt(mgr)
	}
	return mgr
}

// NewTransport creates the transport named by the device configuration
func NewTransport(d config.Device, s *tree.Schema) (underlay.Transport, error) {
	switch d.Transport {
	case config.TransportGNMI, "":
		return underlay.NewGNMITransport(d.ID, underlay.ClientOptions{
			Address:  d.Address,
			Target:   d.Target,
			Secure:   !d.Insecure,
			Username: d.Username,
			Password: d.Password,
			Timeout:  d.RequestTimeout(),
		}), nil
	case config.TransportRESTCONF:
		return underlay.NewRESTCONFTransport(d.ID, d.Address, d.Username, d.Password, d.RequestTimeout(), s), nil
	case config.TransportMemory:
		return underlay.NewMemoryTransport(s), nil
	}
	return nil, errors.NewInvalid("device %s has unknown transport %s", d.ID, d.Transport)
}

// Add mounts a device. Its address is looked up in onos-topo when not configured.
func (mgr *Manager) Add(ctx context.Context, d config.Device) (*Mount, error) {
	mgr.mu.RLock()
	_, exists := mgr.mounts[d.ID]
	mgr.mu.RUnlock()
	if exists {
		return nil, errors.NewAlreadyExists("device %s is already mounted", d.ID)
	}

	units := mgr.collector.UnitsFor(d.Type, d.Version)
	if len(units) == 0 {
		return nil, errors.NewNotSupported("no translation units for %s %s", d.Type, d.Version)
	}
	s, err := unit.SchemaOf(units)
	if err != nil {
		return nil, err
	}
	d, err = resolveDevice(ctx, mgr, d)
	if err != nil {
		return nil, err
	}
	t, err := mgr.transportFactory(d, s)
	if err != nil {
		return nil, err
	}
	m, err := NewMount(d, t, units, mgr.mountOpts...)
	if err != nil {
		_ = t.Close()
		return nil, err
	}

	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	if _, ok := mgr.mounts[d.ID]; ok {
		_ = t.Close()
		return nil, errors.NewAlreadyExists("device %s is already mounted", d.ID)
	}
	mgr.mounts[d.ID] = m
	log.Infof("Mounted %s (%s %s) with units %v", d.ID, d.Type, d.Version, units)
	return m, nil
}

// Get returns the mount of a device
func (mgr *Manager) Get(id string) (*Mount, error) {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	m, ok := mgr.mounts[id]
	if !ok {
		return nil, errors.NewNotFound("device %s is not mounted", id)
	}
	return m, nil
}

// IDs returns the mounted devices, sorted
func (mgr *Manager) IDs() []string {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	ids := make([]string, 0, len(mgr.mounts))
	for id := range mgr.mounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Mounts returns every mount, sorted by device
func (mgr *Manager) Mounts() []*Mount {
	var out []*Mount
	for _, id := range mgr.IDs() {
		if m, err := mgr.Get(id); err == nil {
			out = append(out, m)
		}
	}
	return out
}

// Start starts every mount concurrently. It returns the first reconcile failure; the
// other mounts are started regardless.
func (mgr *Manager) Start(ctx context.Context) error {
	var g errgroup.Group
	for _, m := range mgr.Mounts() {
		m := m
		g.Go(func() error {
			return m.Start(ctx)
		})
	}
	return g.Wait()
}

// Close closes every mount
func (mgr *Manager) Close() error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	var first error
	for id, m := range mgr.mounts {
		if err := m.Close(); err != nil {
			log.Warnf("Closing %s: %v", id, err)
			if first == nil {
				first = err
			}
		}
	}
	mgr.mounts = map[string]*Mount{}
	return first
}
