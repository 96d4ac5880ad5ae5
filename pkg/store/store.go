// SPDX-FileCopyrightText: 2022-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

// Package store keeps the configuration revision of every mounted device.
package store

import (
	"context"
	"encoding/binary"
	"io"
	"sync"
	"time"

	"github.com/atomix/atomix-go-client/pkg/atomix"
	"github.com/atomix/atomix-go-client/pkg/atomix/counter"
	_map "github.com/atomix/atomix-go-client/pkg/atomix/map"
	atomixerrors "github.com/atomix/atomix-go-framework/pkg/atomix/errors"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/onos-lib-go/pkg/logging"
)

var log = logging.GetLogger("store")

const (
	// RevisionCounter is the name of the atomix counter ordering commits across devices
	RevisionCounter = "unitopo-adapter-revision-counter"

	// RevisionMap is the name of the atomix map holding the revision of every device
	RevisionMap = "unitopo-adapter-revision-map"
)

// RevisionStore stores the revision of the last commit to each device
type RevisionStore interface {
	io.Closer

	// Next allocates a new revision and records it for the device
	Next(ctx context.Context, deviceID string) (uint64, error)

	// Get returns the device revision; zero when the device was never committed to
	Get(ctx context.Context, deviceID string) (uint64, error)
}

// NewAtomixStore returns a new persistent RevisionStore
func NewAtomixStore(ctx context.Context, atomixClient atomix.Client) (RevisionStore, error) {
	revisions, err := atomixClient.GetCounter(ctx, RevisionCounter)
	if err != nil {
		log.Warnf("Error creating atomix counter: %v", err)
		return nil, err
	}
	if _, err := revisions.Get(ctx); err != nil {
		log.Warnf("Error querying atomix counter: %v", err)
		return nil, err
	}
	devices, err := atomixClient.GetMap(ctx, RevisionMap)
	if err != nil {
		log.Warnf("Error creating atomix map: %v", err)
		return nil, err
	}

	return &AtomixStore{
		revisions: revisions,
		devices:   devices,
	}, nil
}

// AtomixStore is the atomix implementation of RevisionStore
type AtomixStore struct {
	revisions counter.Counter
	devices   _map.Map
}

func uint64ToBytes(i uint64) []byte {
	value := make([]byte, 8)
	binary.LittleEndian.PutUint64(value, i)
	return value
}

func bytesToUint64(value []byte) uint64 {
	if len(value) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(value)
}

// Next allocates a new revision from the shared counter
func (s *AtomixStore) Next(ctx context.Context, deviceID string) (uint64, error) {
	if deviceID == "" {
		return 0, errors.NewInvalid("ID cannot be empty")
	}
	rev, err := s.revisions.Increment(ctx, 1)
	if err != nil {
		log.Errorf("Error incrementing revision counter: %v", err)
		return 0, err
	}
	if _, err = s.devices.Put(ctx, deviceID, uint64ToBytes(uint64(rev))); err != nil {
		log.Errorf("Error storing revision of %s: %v", deviceID, err)
		return 0, err
	}
	log.Debugf("Device %s at revision %d", deviceID, rev)
	return uint64(rev), nil
}

// Get gets the revision of the given device
func (s *AtomixStore) Get(ctx context.Context, deviceID string) (uint64, error) {
	if deviceID == "" {
		return 0, errors.NewInvalid("ID cannot be empty")
	}
	entry, err := s.devices.Get(ctx, deviceID)
	if entry != nil && err == nil {
		return bytesToUint64(entry.Value), nil
	}
	if atomixerrors.IsNotFound(err) {
		return 0, nil
	}
	log.Errorf("Error getting from revision map: %v", err)
	return 0, err
}

// Close closes the store
func (s *AtomixStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.revisions.Close(ctx)
	if err != nil {
		return err
	}
	return s.devices.Close(ctx)
}

// NewMemoryStore returns a RevisionStore that lives as long as the process
func NewMemoryStore() RevisionStore {
	return &MemoryStore{devices: map[string]uint64{}}
}

// MemoryStore is the in-memory implementation of RevisionStore
type MemoryStore struct {
	mu      sync.Mutex
	last    uint64
	devices map[string]uint64
}

// Next allocates a new revision
func (s *MemoryStore) Next(ctx context.Context, deviceID string) (uint64, error) {
	if deviceID == "" {
		return 0, errors.NewInvalid("ID cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last++
	s.devices[deviceID] = s.last
	return s.last, nil
}

// Get gets the revision of the given device
func (s *MemoryStore) Get(ctx context.Context, deviceID string) (uint64, error) {
	if deviceID == "" {
		return 0, errors.NewInvalid("ID cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.devices[deviceID], nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
