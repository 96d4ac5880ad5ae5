// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package mount implements the per-device translation context.
package mount

import (
	"context"
	"sync"
	"time"

	"github.com/onosproject/unitopo-adapter/pkg/config"
	"github.com/onosproject/unitopo-adapter/pkg/store"
	"github.com/onosproject/unitopo-adapter/pkg/translate"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/underlay"
	"github.com/onosproject/unitopo-adapter/pkg/unit"
)

const (
	// DefaultCommitTimeout is the default timeout of a commit, revert included
	DefaultCommitTimeout = time.Second * 30

	// DefaultRetryInterval is the default pause between attempts to reconcile with a device
	DefaultRetryInterval = 5 * time.Second

	// DefaultReconcileRetries bounds the reconcile attempts made by Start
	DefaultReconcileRetries = 5
)

// Mount is one device together with the translation units that serve it.
type Mount struct {
	device    config.Device
	transport underlay.Transport
	units     []unit.Unit
	schema    *tree.Schema
	readers   *translate.ReaderRegistry
	writers   *translate.WriterRegistry
	revisions store.RevisionStore

	retryInterval time.Duration
	commitTimeout time.Duration
	reconcile     bool

	requests chan *commitRequest
	done     chan struct{}
	once     sync.Once

	// Busy indicator, primarily used for unit testing. The channel length in and of itself
	// is not sufficient, as it does not include the commit that is currently running.
	// >0 if the mount has commits pending and/or in-progress
	busy int32

	// used for ease of mocking
	commitFunc func(ctx context.Context, after tree.Node) error

	// cache of previously committed configuration
	mu    sync.RWMutex
	cache map[string]interface{}
}

// Change edits a copy of the committed configuration, returning the configuration to commit
type Change func(config tree.Node) (tree.Node, error)

// commitRequest holds the configuration of one commit request. When change is set, after
// is computed from the committed configuration once the request reaches the loop.
type commitRequest struct {
	ctx    context.Context
	after  tree.Node
	change Change
	result chan error
}

// MountOption is for options passed when creating a new mount
type MountOption func(m *Mount) // nolint
