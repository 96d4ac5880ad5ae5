// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package underlay

import (
	"context"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	gpb "github.com/openconfig/gnmi/proto/gnmi"
	pkgerrors "github.com/pkg/errors"
)

// GnmiClientFactory is used to create the underlying gNMI clients. Overridden by tests
var GnmiClientFactory = newClient

func newClient(opts ClientOptions) Client {
	return &client{opts: opts}
}

// GNMITransport reaches a device over gNMI. One SetRequest carries a whole commit,
// so Apply is atomic on conforming targets.
type GNMITransport struct {
	device string
	target string
	client Client
}

// NewGNMITransport allocates a gNMI transport for a device
func NewGNMITransport(device string, opts ClientOptions) *GNMITransport {
	return NewGNMITransportWithClient(device, opts.Target, GnmiClientFactory(opts))
}

// NewGNMITransportWithClient allocates a gNMI transport using an existing client
func NewGNMITransportWithClient(device string, target string, c Client) *GNMITransport {
	return &GNMITransport{
		device: device,
		target: target,
		client: c,
	}
}

func (g *GNMITransport) targeted(id path.IID) *gpb.Path {
	p := id.GNMI()
	p.Target = g.target
	return p
}

// Get implements Transport.
func (g *GNMITransport) Get(ctx context.Context, id path.IID, ds Datastore) (interface{}, bool, error) {
	dataType := gpb.GetRequest_CONFIG
	if ds == Operational {
		dataType = gpb.GetRequest_STATE
	}
	resp, err := g.client.Get(ctx, &gpb.GetRequest{
		Path:     []*gpb.Path{g.targeted(id)},
		Type:     dataType,
		Encoding: gpb.Encoding_JSON_IETF,
	})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, pkgerrors.Wrapf(err, "device %s get %s", g.device, id)
	}
	for _, n := range resp.GetNotification() {
		for _, u := range n.GetUpdate() {
			v, err := DecodeTypedValue(u.GetVal())
			if err != nil {
				return nil, false, pkgerrors.Wrapf(err, "device %s get %s", g.device, id)
			}
			if tree.IsEmpty(v) {
				return nil, false, nil
			}
			return v, true, nil
		}
	}
	return nil, false, nil
}

// Apply implements Transport.
func (g *GNMITransport) Apply(ctx context.Context, ops []Op) error {
	req := &gpb.SetRequest{}
	for _, op := range ops {
		switch op.Type {
		case OpDelete:
			req.Delete = append(req.Delete, g.targeted(op.Path))
		case OpPut, OpMerge:
			val, err := EncodeTypedValue(op.Data, gpb.Encoding_JSON_IETF)
			if err != nil {
				return err
			}
			u := &gpb.Update{Path: g.targeted(op.Path), Val: val}
			if op.Type == OpPut {
				req.Replace = append(req.Replace, u)
			} else {
				req.Update = append(req.Update, u)
			}
		}
	}

	_, err := g.client.Set(ctx, req)
	if err != nil {
		code := 500
		if st := errors.Status(err); st != nil {
			code = int(st.Code())
		}
		return &TransportError{
			Endpoint:   g.target,
			StatusCode: code,
			Status:     err.Error(),
			Operation:  "SET",
		}
	}
	return nil
}

// Probe implements Prober by asking the device for its capabilities.
func (g *GNMITransport) Probe(ctx context.Context) error {
	resp, err := g.client.Capabilities(ctx, &gpb.CapabilityRequest{})
	if err != nil {
		return err
	}
	log.Infof("Device %s supports %d models (gNMI %s)", g.device, len(resp.GetSupportedModels()), resp.GetGNMIVersion())
	return nil
}

// Close implements Transport.
func (g *GNMITransport) Close() error {
	return g.client.Close()
}

// DecodeTypedValue converts a gNMI value to tree data.
func DecodeTypedValue(tv *gpb.TypedValue) (interface{}, error) {
	switch v := tv.GetValue().(type) {
	case *gpb.TypedValue_JsonIetfVal:
		return tree.FromJSON(v.JsonIetfVal)
	case *gpb.TypedValue_JsonVal:
		return tree.FromJSON(v.JsonVal)
	case *gpb.TypedValue_StringVal:
		return v.StringVal, nil
	case *gpb.TypedValue_BoolVal:
		return v.BoolVal, nil
	case *gpb.TypedValue_UintVal:
		return float64(v.UintVal), nil
	case *gpb.TypedValue_IntVal:
		return float64(v.IntVal), nil
	case *gpb.TypedValue_FloatVal:
		return float64(v.FloatVal), nil
	case *gpb.TypedValue_LeaflistVal:
		var out []interface{}
		for _, e := range v.LeaflistVal.GetElement() {
			ev, err := DecodeTypedValue(e)
			if err != nil {
				return nil, err
			}
			out = append(out, ev)
		}
		return out, nil
	case nil:
		return nil, nil
	}
	return nil, errors.NewNotSupported("unsupported value encoding %T", tv.GetValue())
}

// EncodeTypedValue converts tree data to a JSON_IETF or JSON gNMI value.
func EncodeTypedValue(v interface{}, encoding gpb.Encoding) (*gpb.TypedValue, error) {
	data, err := tree.ToJSON(v)
	if err != nil {
		return nil, err
	}
	if encoding == gpb.Encoding_JSON {
		return &gpb.TypedValue{Value: &gpb.TypedValue_JsonVal{JsonVal: data}}, nil
	}
	return &gpb.TypedValue{Value: &gpb.TypedValue_JsonIetfVal{JsonIetfVal: data}}, nil
}
