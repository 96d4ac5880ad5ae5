// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package mount

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/onos-lib-go/pkg/logging"
	"github.com/onosproject/unitopo-adapter/pkg/config"
	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/store"
	"github.com/onosproject/unitopo-adapter/pkg/translate"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/underlay"
	"github.com/onosproject/unitopo-adapter/pkg/unit"
)

var log = logging.GetLogger("mount")

// WithRetryInterval sets the pause between reconcile attempts
func WithRetryInterval(interval time.Duration) MountOption {
	return func(m *Mount) {
		m.retryInterval = interval
	}
}

// WithCommitTimeout bounds each commit
func WithCommitTimeout(timeout time.Duration) MountOption {
	return func(m *Mount) {
		m.commitTimeout = timeout
	}
}

// WithReconcile sets whether Start reads the device configuration
func WithReconcile(reconcile bool) MountOption {
	return func(m *Mount) {
		m.reconcile = reconcile
	}
}

// WithRevisionStore sets the store receiving commit revisions
func WithRevisionStore(s store.RevisionStore) MountOption {
	return func(m *Mount) {
		m.revisions = s
	}
}

// NewMount creates a mount serving a device with units over a transport
func NewMount(device config.Device, t underlay.Transport, units []unit.Unit, opts ...MountOption) (*Mount, error) {
	if len(units) == 0 {
		return nil, errors.NewNotSupported("no translation units for %s %s", device.Type, device.Version)
	}
	s, readers, writers, err := unit.Handlers(units)
	if err != nil {
		return nil, err
	}
	m := &Mount{
		device:        device,
		transport:     t,
		units:         units,
		schema:        s,
		readers:       readers,
		writers:       writers,
		revisions:     store.NewMemoryStore(),
		retryInterval: DefaultRetryInterval,
		commitTimeout: DefaultCommitTimeout,
		reconcile:     true,
		requests:      make(chan *commitRequest, 1),
		done:          make(chan struct{}),
		cache:         map[string]interface{}{},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.commitFunc = m.commit
	return m, nil
}

// ID returns the device identifier
func (m *Mount) ID() string {
	return m.device.ID
}

// Device returns the device descriptor
func (m *Mount) Device() config.Device {
	return m.device
}

// Units returns the translation units serving the device
func (m *Mount) Units() []unit.Unit {
	return m.units
}

// Schema returns the list keys of the device's northbound and underlay trees
func (m *Mount) Schema() *tree.Schema {
	return m.schema
}

// Start reconciles with the device, retrying as configured, then starts the commit loop.
// The loop runs even when reconciliation fails.
func (m *Mount) Start(ctx context.Context) error {
	log.Infof("Mount %s starting (type=%s, version=%s, reconcile=%v, retryInterval=%s, commitTimeout=%s)",
		m.device.ID,
		m.device.Type,
		m.device.Version,
		m.reconcile,
		m.retryInterval,
		m.commitTimeout)
	go m.Loop()

	if !m.reconcile {
		m.CacheUpdate(CacheModelConfig, m.device.ID, tree.Node{})
		return nil
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(m.retryInterval), DefaultReconcileRetries), ctx)
	err := backoff.RetryNotify(func() error {
		err := m.Reconcile(ctx)
		if errors.IsInvalid(err) || errors.IsNotSupported(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b, func(err error, next time.Duration) {
		log.Warnf("Mount %s reconcile failed, retrying in %s: %v", m.device.ID, next, err)
	})
	if err != nil {
		log.Errorf("Mount %s could not reconcile: %v", m.device.ID, err)
	}
	return err
}

// Reconcile reads the configuration from the device and makes it the committed snapshot
func (m *Mount) Reconcile(ctx context.Context) error {
	if p, ok := m.transport.(underlay.Prober); ok {
		if err := p.Probe(ctx); err != nil {
			return err
		}
	}
	txn := underlay.NewTxn(ctx, m.device.ID, m.transport, m.schema)
	n, err := m.readers.ReadAll(translate.NewReadContext(ctx, txn), true)
	if err != nil {
		return err
	}
	m.CacheUpdate(CacheModelConfig, m.device.ID, n)
	log.Infof("Mount %s reconciled", m.device.ID)
	return nil
}

// Read reads the northbound data at id from the device
func (m *Mount) Read(ctx context.Context, id path.IID, configOnly bool) (interface{}, bool, error) {
	KpiReadTotal.WithLabelValues(m.device.ID).Inc()
	txn := underlay.NewTxn(ctx, m.device.ID, m.transport, m.schema)
	return m.readers.Read(translate.NewReadContext(ctx, txn), id, configOnly)
}

// Config returns a copy of the committed northbound configuration
func (m *Mount) Config() tree.Node {
	v, ok := m.cached(CacheModelConfig, m.device.ID)
	if !ok {
		return tree.Node{}
	}
	n, _ := tree.AsNode(tree.Copy(v))
	if n == nil {
		return tree.Node{}
	}
	return n
}

// Revision returns the revision of the last successful commit, zero if none
func (m *Mount) Revision(ctx context.Context) (uint64, error) {
	return m.revisions.Get(ctx, m.device.ID)
}

// Commit makes after the device configuration. Commits are applied one at a time in
// the order they are requested.
func (m *Mount) Commit(ctx context.Context, after tree.Node) error {
	req := &commitRequest{ctx: ctx, after: tree.CopyNode(after), result: make(chan error, 1)}
	if err := m.enqueue(ctx, req); err != nil {
		return err
	}
	select {
	case err := <-req.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Apply commits the result of change. The change runs in the commit loop against the
// configuration committed by every earlier request, so concurrent edits are not lost.
func (m *Mount) Apply(ctx context.Context, change Change) error {
	req := &commitRequest{ctx: ctx, change: change, result: make(chan error, 1)}
	if err := m.enqueue(ctx, req); err != nil {
		return err
	}
	select {
	case err := <-req.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mount) enqueue(ctx context.Context, req *commitRequest) error {
	select {
	case <-m.done:
		return errors.NewUnavailable("device %s is closed", m.device.ID)
	default:
	}
	atomic.AddInt32(&m.busy, 1)
	select {
	case m.requests <- req:
		return nil
	case <-m.done:
		atomic.AddInt32(&m.busy, -1)
		return errors.NewUnavailable("device %s is closed", m.device.ID)
	case <-ctx.Done():
		atomic.AddInt32(&m.busy, -1)
		return ctx.Err()
	}
}

func (m *Mount) complete() {
	atomic.AddInt32(&m.busy, -1)
}

func (m *Mount) isIdle() bool {
	return atomic.LoadInt32(&m.busy) == 0
}

// Loop runs the commit requests until the mount is closed.
func (m *Mount) Loop() {
	log.Infof("Starting commit loop for %s", m.device.ID)
	for {
		select {
		case req := <-m.requests:
			req.result <- m.process(req)
			m.complete()
		case <-m.done:
			log.Infof("Commit loop for %s stopped", m.device.ID)
			return
		}
	}
}

func (m *Mount) process(req *commitRequest) error {
	if err := req.ctx.Err(); err != nil {
		return err
	}
	after := req.after
	if req.change != nil {
		var err error
		if after, err = req.change(m.Config()); err != nil {
			return err
		}
		if after == nil {
			after = tree.Node{}
		}
	}
	return m.commitFunc(req.ctx, after)
}

// commit runs the writers for the change from the snapshot to after, and reverts what
// they did if the device rejects the result.
func (m *Mount) commit(ctx context.Context, after tree.Node) error {
	id := m.device.ID
	if m.CacheCheck(CacheModelConfig, id, after) {
		log.Infof("Device %s configuration has not changed", id)
		return nil
	}
	before := m.Config()

	tStart := time.Now()
	KpiCommitTotal.WithLabelValues(id).Inc()
	defer func() {
		KpiCommitDuration.WithLabelValues(id).Observe(time.Since(tStart).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, m.commitTimeout)
	defer cancel()

	txn := underlay.NewTxn(ctx, id, m.transport, m.schema)
	processed, err := m.writers.Update(translate.NewWriteContext(ctx, txn, before, after))
	if err != nil {
		txn.Discard()
		KpiCommitFailures.WithLabelValues(id).Inc()
		log.Warnf("Device %s commit failed in the writers, nothing was sent: %v", id, err)
		return err
	}

	if err := txn.Commit(ctx); err != nil {
		KpiCommitFailures.WithLabelValues(id).Inc()
		log.Warnf("Device %s rejected commit, reverting %d modifications: %v", id, len(processed), err)
		if rerr := m.revert(ctx, before, after, processed); rerr != nil {
			rerr.Original = err
			log.Errorf("Device %s revert failed: %v", id, rerr)
			return rerr
		}
		return err
	}

	m.CacheUpdate(CacheModelConfig, id, after)
	rev, err := m.revisions.Next(ctx, id)
	if err != nil {
		log.Warnf("Device %s committed but revision not stored: %v", id, err)
		return nil
	}
	log.Infof("Device %s committed revision %d", id, rev)
	return nil
}

func (m *Mount) revert(ctx context.Context, before, after tree.Node, processed []*translate.Modification) *translate.RevertFailedError {
	txn := underlay.NewTxn(ctx, m.device.ID, m.transport, m.schema)
	err := m.writers.Revert(translate.NewWriteContext(ctx, txn, after, before), processed)
	if err != nil {
		txn.Discard()
		if rf, ok := err.(*translate.RevertFailedError); ok {
			return rf
		}
		return &translate.RevertFailedError{Cause: err}
	}
	if err := txn.Commit(ctx); err != nil {
		return &translate.RevertFailedError{Cause: err}
	}
	return nil
}

// Close stops the commit loop and closes the transport
func (m *Mount) Close() error {
	var err error
	m.once.Do(func() {
		close(m.done)
		err = m.transport.Close()
	})
	return err
}
