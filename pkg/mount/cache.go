// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package mount

import (
	"github.com/onosproject/unitopo-adapter/pkg/tree"
)

// Cache kinds
const (
	CacheModelConfig = "config"
)

func cacheKey(kind string, id string) string {
	return kind + "/" + id
}

// CacheCheck reports whether value equals what was last committed for id
func (m *Mount) CacheCheck(kind string, id string, value interface{}) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cached, okay := m.cache[cacheKey(kind, id)]
	if !okay {
		return false
	}
	return tree.Equal(cached, value)
}

// CacheUpdate records value as committed for id
func (m *Mount) CacheUpdate(kind string, id string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[cacheKey(kind, id)] = tree.Copy(value)
}

// CacheInvalidate forgets everything committed. The next commit always runs the writers.
func (m *Mount) CacheInvalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	log.Infof("Device %s cache invalidated", m.device.ID)
	m.cache = map[string]interface{}{}
}

func (m *Mount) cached(kind string, id string) (interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.cache[cacheKey(kind, id)]
	return v, ok
}
