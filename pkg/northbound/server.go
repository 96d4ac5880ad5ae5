// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package northbound serves the mounted devices over gNMI.
package northbound

import (
	"context"
	"time"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/onos-lib-go/pkg/logging"
	"github.com/onosproject/unitopo-adapter/pkg/mount"
	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/underlay"
	"github.com/onosproject/unitopo-adapter/pkg/unit"
	gpb "github.com/openconfig/gnmi/proto/gnmi"
	"google.golang.org/grpc"
)

var log = logging.GetLogger("northbound")

// GNMIVersion is the gNMI protocol version served
const GNMIVersion = "0.7.0"

// Server implements the gNMI service over the mounts of a manager
type Server struct {
	gpb.UnimplementedGNMIServer
	mgr *mount.Manager
}

// NewServer creates a gNMI server
func NewServer(mgr *mount.Manager) *Server {
	return &Server{mgr: mgr}
}

// Register registers the server with a gRPC server
func (s *Server) Register(g *grpc.Server) {
	gpb.RegisterGNMIServer(g, s)
}

// Capabilities returns the models of every mounted device
func (s *Server) Capabilities(ctx context.Context, req *gpb.CapabilityRequest) (*gpb.CapabilityResponse, error) {
	var units []unit.Unit
	for _, m := range s.mgr.Mounts() {
		units = append(units, m.Units()...)
	}
	return &gpb.CapabilityResponse{
		SupportedModels:    unit.Models(units),
		SupportedEncodings: []gpb.Encoding{gpb.Encoding_JSON_IETF, gpb.Encoding_JSON},
		GNMIVersion:        GNMIVersion,
	}, nil
}

// Get reads paths from one device
func (s *Server) Get(ctx context.Context, req *gpb.GetRequest) (*gpb.GetResponse, error) {
	resp, err := s.get(ctx, req)
	if err != nil {
		log.Warnf("Get failed: %v", err)
		return nil, errors.Status(err).Err()
	}
	return resp, nil
}

func (s *Server) get(ctx context.Context, req *gpb.GetRequest) (*gpb.GetResponse, error) {
	encoding := req.GetEncoding()
	if encoding != gpb.Encoding_JSON_IETF && encoding != gpb.Encoding_JSON {
		return nil, errors.NewNotSupported("encoding %s is not supported", encoding)
	}
	configOnly := req.GetType() == gpb.GetRequest_CONFIG

	paths := req.GetPath()
	if len(paths) == 0 {
		paths = []*gpb.Path{{}}
	}
	resp := &gpb.GetResponse{}
	for _, p := range paths {
		m, err := s.mountFor(req.GetPrefix(), p)
		if err != nil {
			return nil, err
		}
		id := path.FromGNMI(req.GetPrefix(), p)
		log.Debugf("Get %s from %s (configOnly=%v)", id, m.ID(), configOnly)
		v, found, err := m.Read(ctx, id, configOnly)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, errors.NewNotFound("%s not found on %s", id, m.ID())
		}
		val, err := underlay.EncodeTypedValue(v, encoding)
		if err != nil {
			return nil, err
		}
		resp.Notification = append(resp.Notification, &gpb.Notification{
			Timestamp: time.Now().UnixNano(),
			Prefix:    req.GetPrefix(),
			Update:    []*gpb.Update{{Path: p, Val: val}},
		})
	}
	return resp, nil
}

// Set applies deletes, replaces and updates to one device as a single commit
func (s *Server) Set(ctx context.Context, req *gpb.SetRequest) (*gpb.SetResponse, error) {
	resp, err := s.set(ctx, req)
	if err != nil {
		log.Warnf("Set failed: %v", err)
		return nil, errors.Status(err).Err()
	}
	return resp, nil
}

func (s *Server) set(ctx context.Context, req *gpb.SetRequest) (*gpb.SetResponse, error) {
	prefix := req.GetPrefix()
	var m *mount.Mount
	use := func(p *gpb.Path) error {
		pm, err := s.mountFor(prefix, p)
		if err != nil {
			return err
		}
		if m != nil && m != pm {
			return errors.NewInvalid("a set request cannot span devices %s and %s", m.ID(), pm.ID())
		}
		m = pm
		return nil
	}
	for _, p := range req.GetDelete() {
		if err := use(p); err != nil {
			return nil, err
		}
	}
	for _, u := range append(append([]*gpb.Update{}, req.GetReplace()...), req.GetUpdate()...) {
		if err := use(u.GetPath()); err != nil {
			return nil, err
		}
	}
	if m == nil {
		return nil, errors.NewInvalid("empty set request")
	}

	type edit struct {
		id    path.IID
		value interface{}
	}
	decode := func(updates []*gpb.Update, op gpb.UpdateResult_Operation, results []*gpb.UpdateResult) ([]edit, []*gpb.UpdateResult, error) {
		var edits []edit
		for _, u := range updates {
			v, err := underlay.DecodeTypedValue(u.GetVal())
			if err != nil {
				return nil, nil, err
			}
			edits = append(edits, edit{id: path.FromGNMI(prefix, u.GetPath()), value: v})
			results = append(results, &gpb.UpdateResult{Path: u.GetPath(), Op: op})
		}
		return edits, results, nil
	}

	var results []*gpb.UpdateResult
	var deletes []path.IID
	for _, p := range req.GetDelete() {
		deletes = append(deletes, path.FromGNMI(prefix, p))
		results = append(results, &gpb.UpdateResult{Path: p, Op: gpb.UpdateResult_DELETE})
	}
	replaces, results, err := decode(req.GetReplace(), gpb.UpdateResult_REPLACE, results)
	if err != nil {
		return nil, err
	}
	updates, results, err := decode(req.GetUpdate(), gpb.UpdateResult_UPDATE, results)
	if err != nil {
		return nil, err
	}

	log.Infof("Set on %s: %d deletes, %d replaces, %d updates", m.ID(), len(deletes), len(replaces), len(updates))
	err = m.Apply(ctx, func(after tree.Node) (tree.Node, error) {
		for _, id := range deletes {
			if id.IsRoot() {
				after = tree.Node{}
			} else {
				tree.Delete(after, id)
			}
		}
		for _, e := range replaces {
			if err := tree.Set(after, e.id, e.value); err != nil {
				return nil, err
			}
		}
		for _, e := range updates {
			if err := tree.Merge(after, e.id, e.value, m.Schema()); err != nil {
				return nil, err
			}
		}
		return after, nil
	})
	if err != nil {
		return nil, err
	}
	return &gpb.SetResponse{
		Prefix:    prefix,
		Response:  results,
		Timestamp: time.Now().UnixNano(),
	}, nil
}

// mountFor picks the device a path is addressed to. The path target wins over the
// prefix target; with neither, the only mounted device is used.
func (s *Server) mountFor(prefix *gpb.Path, p *gpb.Path) (*mount.Mount, error) {
	target := p.GetTarget()
	if target == "" {
		target = prefix.GetTarget()
	}
	if target != "" {
		return s.mgr.Get(target)
	}
	ids := s.mgr.IDs()
	if len(ids) == 1 {
		return s.mgr.Get(ids[0])
	}
	return nil, errors.NewInvalid("a target is required with %d mounted devices", len(ids))
}
