// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package underlay

import (
	"context"
	"crypto/tls"
	"io"
	"math"
	"sync"
	"time"

	"github.com/onosproject/onos-lib-go/pkg/certs"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	baseClient "github.com/openconfig/gnmi/client"
	gclient "github.com/openconfig/gnmi/client/gnmi"
	gpb "github.com/openconfig/gnmi/proto/gnmi"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

// Client gNMI client interface
type Client interface {
	io.Closer
	Capabilities(ctx context.Context, r *gpb.CapabilityRequest) (*gpb.CapabilityResponse, error)
	Get(ctx context.Context, r *gpb.GetRequest) (*gpb.GetResponse, error)
	Set(ctx context.Context, r *gpb.SetRequest) (*gpb.SetResponse, error)
}

// ClientOptions describes how to reach a gNMI device
type ClientOptions struct {
	Address  string
	Target   string
	Secure   bool
	Username string
	Password string
	Timeout  time.Duration
}

// client gnmi client, dialed on first use
type client struct {
	mu     sync.Mutex
	client *gclient.Client
	opts   ClientOptions
}

func getClientCredentials(useSecure bool) (*tls.Config, error) {
	if useSecure {
		cert, err := tls.X509KeyPair([]byte(certs.DefaultClientCrt), []byte(certs.DefaultClientKey))
		if err != nil {
			return nil, err
		}
		return &tls.Config{
			Certificates:       []tls.Certificate{cert},
			InsecureSkipVerify: true,
		}, nil
	}
	return nil, nil
}

func (c *client) getDestination() (baseClient.Destination, error) {
	creds, err := getClientCredentials(c.opts.Secure)
	if err != nil {
		return baseClient.Destination{}, err
	}

	dest := baseClient.Destination{
		Addrs:   []string{c.opts.Address},
		Target:  c.opts.Target,
		TLS:     creds,
		Timeout: c.opts.Timeout,
	}
	if c.opts.Username != "" {
		dest.Credentials = &baseClient.Credentials{
			Username: c.opts.Username,
			Password: c.opts.Password,
		}
	}
	return dest, nil
}

func (c *client) getGNMIClient(ctx context.Context) (*gclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client, nil
	}

	dest, err := c.getDestination()
	if err != nil {
		return nil, err
	}

	opts := []grpc.DialOption{grpc.WithBlock(), grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(math.MaxInt32))}
	if c.opts.Secure {
		opts = append(opts, grpc.WithTransportCredentials(credentials.NewTLS(dest.TLS)))
	} else {
		opts = append(opts, grpc.WithInsecure())
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()
	log.Infof("Dialing gNMI device %s (target=%s)", c.opts.Address, c.opts.Target)
	conn, err := grpc.DialContext(dialCtx, c.opts.Address, opts...)
	if err != nil {
		return nil, errors.NewUnavailable("unable to dial %s: %v", c.opts.Address, err)
	}
	gc, err := gclient.NewFromConn(ctx, conn, dest)
	if err != nil {
		_ = conn.Close()
		return nil, errors.NewUnavailable("unable to create gNMI client for %s: %v", c.opts.Address, err)
	}
	c.client = gc
	return gc, nil
}

// Capabilities returns the capabilities of the target
func (c *client) Capabilities(ctx context.Context, req *gpb.CapabilityRequest) (*gpb.CapabilityResponse, error) {
	gc, err := c.getGNMIClient(ctx)
	if err != nil {
		return nil, err
	}
	capResponse, err := gc.Capabilities(ctx, req)
	return capResponse, errors.FromGRPC(err)
}

// Get calls gnmi Get RPC
func (c *client) Get(ctx context.Context, req *gpb.GetRequest) (*gpb.GetResponse, error) {
	gc, err := c.getGNMIClient(ctx)
	if err != nil {
		return nil, err
	}
	getResponse, err := gc.Get(ctx, req)
	return getResponse, errors.FromGRPC(err)
}

// Set calls gnmi Set RPC
func (c *client) Set(ctx context.Context, req *gpb.SetRequest) (*gpb.SetResponse, error) {
	gc, err := c.getGNMIClient(ctx)
	if err != nil {
		return nil, err
	}
	log.Debugf("Sending set request %v", req)
	setResponse, err := gc.Set(ctx, req)
	log.Debugf("gnmi set operation finished, result is %v", setResponse)
	return setResponse, errors.FromGRPC(err)
}

// Close closes the gnmi client
func (c *client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}
