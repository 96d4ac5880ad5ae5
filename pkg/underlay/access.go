// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package underlay implements access to the device's own data tree.
package underlay

import (
	"context"
	"io"

	"github.com/onosproject/onos-lib-go/pkg/logging"
	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
)

var log = logging.GetLogger("underlay")

// Datastore selects the configuration or the operational view of a device.
type Datastore int

const (
	// Config is the configuration datastore
	Config Datastore = iota
	// Operational is the operational datastore
	Operational
)

func (d Datastore) String() string {
	if d == Operational {
		return "operational"
	}
	return "config"
}

// OpType is the kind of a buffered write
type OpType int

const (
	// OpPut replaces the addressed subtree
	OpPut OpType = iota
	// OpMerge merges into the addressed subtree
	OpMerge
	// OpDelete removes the addressed subtree
	OpDelete
)

func (o OpType) String() string {
	switch o {
	case OpPut:
		return "put"
	case OpMerge:
		return "merge"
	default:
		return "delete"
	}
}

// Op is one buffered write against the device configuration.
type Op struct {
	Type OpType
	Path path.IID
	Data interface{}
}

// Access is what translation handlers use to reach the device.
type Access interface {
	// Read returns the value at id, and whether it exists.
	Read(id path.IID, ds Datastore) (interface{}, bool, error)
	// ReadNode returns the container at id, or nil when absent.
	ReadNode(id path.IID, ds Datastore) (tree.Node, error)
	Put(id path.IID, data interface{})
	Merge(id path.IID, data interface{})
	Delete(id path.IID)
}

// Transport is a session with one device.
type Transport interface {
	io.Closer
	Get(ctx context.Context, id path.IID, ds Datastore) (interface{}, bool, error)
	Apply(ctx context.Context, ops []Op) error
}

// Prober is implemented by transports that can check the device is reachable.
type Prober interface {
	Probe(ctx context.Context) error
}

// ApplyOps applies ops in order to an in-memory tree.
func ApplyOps(root tree.Node, ops []Op, s *tree.Schema) error {
	for _, op := range ops {
		var err error
		switch op.Type {
		case OpPut:
			err = tree.Set(root, op.Path, op.Data)
		case OpMerge:
			err = tree.Merge(root, op.Path, op.Data, s)
		case OpDelete:
			tree.Delete(root, op.Path)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
