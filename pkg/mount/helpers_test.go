// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// nolint deadcode unused
package mount

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/translate"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/underlay"
	"github.com/onosproject/unitopo-adapter/pkg/unit"
	gpb "github.com/openconfig/gnmi/proto/gnmi"
)

var (
	ifaces     = path.MustParse("/interfaces")
	iface      = path.MustParse("/interfaces/interface")
	ifaceCfg   = path.MustParse("/interfaces/interface/config")
	portList   = path.MustParse("/ports/port")
	errRefused = errors.New("refused")
)

// portUnit maps /interfaces/interface/config onto a device list /ports/port[id]
type portUnit struct{}

func (portUnit) String() string {
	return "test-ports"
}

func (portUnit) Devices() []unit.Device {
	return []unit.Device{{Type: "test", Version: "1.*"}}
}

func (portUnit) Models() []*gpb.ModelData {
	return []*gpb.ModelData{{Name: "openconfig-interfaces", Organization: "OpenConfig working group", Version: "2.4.3"}}
}

func (portUnit) UnderlayModels() []*gpb.ModelData {
	return nil
}

func (portUnit) Schema(s *tree.Schema) {
	s.AddList(iface.Schema(), "name")
	s.AddList(portList.Schema(), "id")
}

func portID(id path.IID) path.IID {
	name, _ := id.Key("interface", "name")
	return portList.WithKeys(map[string]string{"id": name})
}

func (portUnit) ProvideHandlers(rb *translate.ReaderRegistryBuilder, wb *translate.WriterRegistryBuilder) {
	rb.AddStructural(ifaces)
	rb.AddList(iface, translate.ListReaderFuncs{
		IDs: func(rc *translate.ReadContext, id path.IID) ([]map[string]string, error) {
			v, _, err := rc.Underlay().Read(portList, underlay.Config)
			if err != nil {
				return nil, err
			}
			l, _ := tree.AsList(v)
			var out []map[string]string
			for _, e := range l {
				n, _ := tree.AsNode(e)
				out = append(out, map[string]string{"name": tree.StringOr(n, "id", "")})
			}
			return out, nil
		},
	})
	rb.Add(ifaceCfg, translate.ReaderFunc(func(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
		n, err := rc.Underlay().ReadNode(portID(id), underlay.Config)
		if err != nil || n == nil {
			return nil, err
		}
		name, _ := id.Key("interface", "name")
		out := tree.Node{"name": name}
		if d, ok := tree.String(n, "descr"); ok {
			out["description"] = d
		}
		return out, nil
	}))

	wb.Add(iface, translate.NoopWriter{})
	wb.AddAfter(ifaceCfg, portWriter{}, iface)
}

type portWriter struct{}

func (portWriter) Write(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	port := tree.Node{}
	if d, ok := tree.String(data, "description"); ok {
		port["descr"] = d
	}
	wc.Underlay().Put(portID(id), port)
	return nil
}

func (w portWriter) Update(wc *translate.WriteContext, id path.IID, before tree.Node, after tree.Node) error {
	return w.Write(wc, id, after)
}

func (portWriter) Delete(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	wc.Underlay().Delete(portID(id))
	return nil
}

// flakyTransport fails a number of Apply calls before passing them to the device
type flakyTransport struct {
	*underlay.MemoryTransport
	mu       sync.Mutex
	failures int
	applied  [][]underlay.Op
}

func (f *flakyTransport) Apply(ctx context.Context, ops []underlay.Op) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errRefused
	}
	f.applied = append(f.applied, ops)
	return f.MemoryTransport.Apply(ctx, ops)
}

func newTestMount(t *testing.T, failures int, opts ...MountOption) (*Mount, *flakyTransport) {
	s, _, _, err := unit.Handlers([]unit.Unit{portUnit{}})
	if err != nil {
		t.Fatal(err)
	}
	ft := &flakyTransport{MemoryTransport: underlay.NewMemoryTransport(s), failures: failures}
	m, err := NewMount(testDevice, ft, []unit.Unit{portUnit{}}, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return m, ft
}

// Wait for the mount to be idle. Used in unit tests to perform asserts
// when a predictable state is reached.
func waitForIdle(t *testing.T, m *Mount, timeout time.Duration) {
	elapsed := 0 * time.Second
	for {
		if m.isIdle() {
			return
		}
		time.Sleep(100 * time.Millisecond)
		elapsed += 100 * time.Millisecond
		if elapsed > timeout {
			t.Fatal("waitForIdle failed to complete")
		}
	}
}

func interfacesConfig(descriptions map[string]string) tree.Node {
	var l []interface{}
	for name, d := range descriptions {
		l = append(l, tree.Node{"name": name, "config": tree.Node{"name": name, "description": d}})
	}
	return tree.Node{"interfaces": tree.Node{"interface": l}}
}
