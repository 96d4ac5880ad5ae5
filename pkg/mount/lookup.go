// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package mount

import (
	"context"
	"fmt"

	topoapi "github.com/onosproject/onos-api/go/onos/topo"
	"github.com/onosproject/onos-lib-go/pkg/certs"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/onos-lib-go/pkg/grpc/retry"
	"github.com/onosproject/unitopo-adapter/pkg/config"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
)

// Functions here to ease in looking up devices that the inventory lists without an address

func getTopoClient(ctx context.Context, mgr *Manager) (topoapi.TopoClient, error) {
	opts, err := certs.HandleCertPaths(mgr.caPath, mgr.keyPath, mgr.certPath, true)
	if err != nil {
		log.Warn(err)
		return nil, err
	}
	opts = append(opts,
		grpc.WithStreamInterceptor(retry.RetryingStreamClientInterceptor(retry.WithRetryOn(codes.Unavailable, codes.Unknown))),
		grpc.WithUnaryInterceptor(retry.RetryingUnaryClientInterceptor(retry.WithRetryOn(codes.Unavailable, codes.Unknown))))

	conn, err := grpc.DialContext(ctx, mgr.topoEndpoint, opts...)
	if err != nil {
		log.Warn(err)
		return nil, err
	}
	client := topoapi.CreateTopoClient(conn)
	return client, nil
}

func lookupControllerInfo(ctx context.Context, mgr *Manager, deviceID string) (*topoapi.ControllerInfo, error) {
	topoClient, err := mgr.topoClientFunc(ctx, mgr)
	if err != nil {
		return nil, errors.FromGRPC(err)
	}

	getResponse, err := topoClient.Get(ctx, &topoapi.GetRequest{
		ID: topoapi.ID(deviceID),
	})
	if err != nil {
		return nil, errors.FromGRPC(err)
	}
	log.Debugf("topo response object: %v", getResponse.Object)

	controllerInfo := &topoapi.ControllerInfo{}
	err = getResponse.Object.GetAspect(controllerInfo)
	if err != nil {
		return nil, errors.FromGRPC(err)
	}
	log.Debugf("device %s address %v port %v", deviceID, controllerInfo.ControlEndpoint.Address, controllerInfo.ControlEndpoint.Port)

	return controllerInfo, nil
}

// resolveDevice fills in the address and credentials of a device from onos-topo
func resolveDevice(ctx context.Context, mgr *Manager, d config.Device) (config.Device, error) {
	if d.Address != "" || d.Transport == config.TransportMemory {
		return d, nil
	}
	if mgr.topoEndpoint == "" {
		return d, errors.NewInvalid("device %s has no address and no topo endpoint is configured", d.ID)
	}
	info, err := lookupControllerInfo(ctx, mgr, d.ID)
	if err != nil {
		return d, err
	}
	switch d.Transport {
	case config.TransportRESTCONF:
		scheme := "https"
		if d.Insecure {
			scheme = "http"
		}
		d.Address = fmt.Sprintf("%s://%s:%d/restconf", scheme, info.ControlEndpoint.Address, info.ControlEndpoint.Port)
	default:
		d.Address = fmt.Sprintf("%s:%d", info.ControlEndpoint.Address, info.ControlEndpoint.Port)
	}
	if d.Username == "" {
		d.Username = info.Username
		d.Password = info.Password
	}
	log.Infof("Device %s resolved to %s", d.ID, d.Address)
	return d, nil
}
