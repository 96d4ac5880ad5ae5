// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package mount

import (
	"context"
	goerrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/unitopo-adapter/pkg/config"
	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/translate"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/underlay"
	"github.com/onosproject/unitopo-adapter/pkg/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDevice = config.Device{ID: "dev1", Type: "test", Version: "1.0", Transport: config.TransportMemory}

func TestReconcile(t *testing.T) {
	m, ft := newTestMount(t, 0)
	require.NoError(t, ft.Seed(underlay.Config, portList.WithKeys(map[string]string{"id": "eth0"}), tree.Node{"descr": "uplink"}))
	require.NoError(t, m.Start(context.Background()))
	defer m.Close()

	assert.True(t, tree.Equal(interfacesConfig(map[string]string{"eth0": "uplink"}), m.Config()))
}

func TestCommit(t *testing.T) {
	m, ft := newTestMount(t, 0)
	require.NoError(t, m.Start(context.Background()))
	defer m.Close()

	after := interfacesConfig(map[string]string{"eth0": "uplink", "eth1": "downlink"})
	require.NoError(t, m.Commit(context.Background(), after))
	assert.True(t, tree.Equal(after, m.Config()))

	v, found, err := ft.Get(context.Background(), portList.WithKeys(map[string]string{"id": "eth1"}), underlay.Config)
	require.NoError(t, err)
	require.True(t, found)
	n, _ := tree.AsNode(v)
	assert.Equal(t, "downlink", n["descr"])

	rev, err := m.Revision(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), rev)

	v, found, err = m.Read(context.Background(), path.MustParse("/interfaces/interface[name=eth0]/config/description"), true)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "uplink", v)

	// an unchanged configuration does not reach the device
	require.NoError(t, m.Commit(context.Background(), tree.CopyNode(after)))
	assert.Len(t, ft.applied, 1)

	require.NoError(t, m.Commit(context.Background(), interfacesConfig(map[string]string{"eth0": "uplink"})))
	_, found, err = ft.Get(context.Background(), portList.WithKeys(map[string]string{"id": "eth1"}), underlay.Config)
	require.NoError(t, err)
	assert.False(t, found)

	rev, err = m.Revision(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), rev)
}

func TestCommitWriterFailure(t *testing.T) {
	m, ft := newTestMount(t, 0)
	require.NoError(t, m.Start(context.Background()))
	defer m.Close()

	after := interfacesConfig(map[string]string{"eth0": "uplink"})
	after["system"] = tree.Node{"config": tree.Node{"hostname": "r1"}}
	err := m.Commit(context.Background(), after)
	assert.True(t, errors.IsInvalid(err))
	assert.Empty(t, ft.applied)
	assert.Empty(t, m.Config())
}

func TestCommitRevertedWhenDeviceRejects(t *testing.T) {
	m, ft := newTestMount(t, 0)
	require.NoError(t, m.Start(context.Background()))
	defer m.Close()

	before := interfacesConfig(map[string]string{"eth0": "uplink"})
	require.NoError(t, m.Commit(context.Background(), before))

	ft.failures = 1
	err := m.Commit(context.Background(), interfacesConfig(map[string]string{"eth0": "core", "eth1": "downlink"}))
	assert.True(t, goerrors.Is(err, errRefused))
	assert.True(t, tree.Equal(before, m.Config()))

	// the revert restored eth0 and removed eth1
	require.Len(t, ft.applied, 2)
	v, _, err := ft.Get(context.Background(), portList.WithKeys(map[string]string{"id": "eth0"}), underlay.Config)
	require.NoError(t, err)
	n, _ := tree.AsNode(v)
	assert.Equal(t, "uplink", n["descr"])
	_, found, err := ft.Get(context.Background(), portList.WithKeys(map[string]string{"id": "eth1"}), underlay.Config)
	require.NoError(t, err)
	assert.False(t, found)

	rev, err := m.Revision(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), rev)
}

func TestRevertFailure(t *testing.T) {
	m, ft := newTestMount(t, 0)
	require.NoError(t, m.Start(context.Background()))
	defer m.Close()

	ft.failures = 2
	err := m.Commit(context.Background(), interfacesConfig(map[string]string{"eth0": "uplink"}))
	var revertErr *translate.RevertFailedError
	require.True(t, goerrors.As(err, &revertErr))
	assert.True(t, goerrors.Is(revertErr.Original, errRefused))
	assert.True(t, goerrors.Is(revertErr.Cause, errRefused))
}

func TestCommitsAreSerialized(t *testing.T) {
	m, _ := newTestMount(t, 0)
	require.NoError(t, m.Start(context.Background()))
	defer m.Close()

	var mu sync.Mutex
	running := 0
	maxRunning := 0
	m.commitFunc = func(ctx context.Context, after tree.Node) error {
		mu.Lock()
		running++
		if running > maxRunning {
			maxRunning = running
		}
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		mu.Lock()
		running--
		mu.Unlock()
		return nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, m.Commit(context.Background(), tree.Node{}))
		}()
	}
	wg.Wait()
	waitForIdle(t, m, 5*time.Second)
	assert.Equal(t, 1, maxRunning)
}

func TestConcurrentApplyKeepsEveryChange(t *testing.T) {
	m, ft := newTestMount(t, 0)
	require.NoError(t, m.Start(context.Background()))
	defer m.Close()

	names := []string{"eth0", "eth1", "eth2", "eth3", "eth4"}
	var wg sync.WaitGroup
	for _, name := range names {
		name := name
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, m.Apply(context.Background(), func(after tree.Node) (tree.Node, error) {
				id := iface.WithKeys(map[string]string{"name": name}).Child("config")
				return after, tree.Set(after, id, tree.Node{"name": name, "description": name})
			}))
		}()
	}
	wg.Wait()
	waitForIdle(t, m, 5*time.Second)

	want := map[string]string{}
	for _, name := range names {
		want[name] = name
		_, found, err := ft.Get(context.Background(), portList.WithKeys(map[string]string{"id": name}), underlay.Config)
		require.NoError(t, err)
		assert.True(t, found, name)
	}
	assert.True(t, tree.Equal(interfacesConfig(want), m.Config()), "%v", m.Config())
}

func TestApplySeesEarlierCommit(t *testing.T) {
	m, _ := newTestMount(t, 0)
	require.NoError(t, m.Start(context.Background()))
	defer m.Close()

	require.NoError(t, m.Commit(context.Background(), interfacesConfig(map[string]string{"eth1": "first"})))
	require.NoError(t, m.Apply(context.Background(), func(after tree.Node) (tree.Node, error) {
		return after, tree.Set(after, iface.WithKeys(map[string]string{"name": "eth2"}).Child("config"),
			tree.Node{"name": "eth2", "description": "second"})
	}))
	assert.True(t, tree.Equal(interfacesConfig(map[string]string{"eth1": "first", "eth2": "second"}), m.Config()), "%v", m.Config())

	err := m.Apply(context.Background(), func(after tree.Node) (tree.Node, error) {
		return nil, errors.NewInvalid("rejected")
	})
	assert.True(t, errors.IsInvalid(err))
	n, ok := tree.GetNode(m.Config(), ifaces)
	require.True(t, ok)
	assert.Len(t, tree.Entries(n, "interface"), 2)
}

func TestCommitAfterClose(t *testing.T) {
	m, _ := newTestMount(t, 0, WithReconcile(false))
	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.Close())

	err := m.Commit(context.Background(), interfacesConfig(map[string]string{"eth0": "uplink"}))
	assert.True(t, errors.IsUnavailable(err))
	assert.True(t, m.isIdle())
}

func TestStartRetriesReconcile(t *testing.T) {
	m, ft := newTestMount(t, 0, WithRetryInterval(10*time.Millisecond))
	defer m.Close()
	probe := &failingProbe{flakyTransport: ft, failures: 2}
	m.transport = probe

	require.NoError(t, m.Start(context.Background()))
	assert.Equal(t, 0, probe.failures)
}

func TestNoUnits(t *testing.T) {
	_, err := NewMount(testDevice, underlay.NewMemoryTransport(nil), []unit.Unit{})
	assert.True(t, errors.IsNotSupported(err))
}

func TestCacheInvalidate(t *testing.T) {
	m, ft := newTestMount(t, 0)
	require.NoError(t, m.Start(context.Background()))
	defer m.Close()

	after := interfacesConfig(map[string]string{"eth0": "uplink"})
	require.NoError(t, m.Commit(context.Background(), after))
	m.CacheInvalidate()
	assert.Empty(t, m.Config())

	// everything is rewritten
	require.NoError(t, m.Commit(context.Background(), after))
	assert.Len(t, ft.applied, 2)
}

type failingProbe struct {
	*flakyTransport
	failures int
}

func (p *failingProbe) Probe(ctx context.Context) error {
	if p.failures > 0 {
		p.failures--
		return errors.NewUnavailable("device unreachable")
	}
	return nil
}
