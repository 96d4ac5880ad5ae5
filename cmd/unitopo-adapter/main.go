// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// The unitopo-adapter serves the OpenConfig view of the devices in its inventory
// over gNMI, translating to the device native models with translation units.
package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atomix/atomix-go-client/pkg/atomix"
	"github.com/onosproject/onos-lib-go/pkg/logging"
	"github.com/onosproject/unitopo-adapter/pkg/config"
	"github.com/onosproject/unitopo-adapter/pkg/mount"
	"github.com/onosproject/unitopo-adapter/pkg/northbound"
	"github.com/onosproject/unitopo-adapter/pkg/store"
	"github.com/onosproject/unitopo-adapter/pkg/unit"
	"github.com/onosproject/unitopo-adapter/pkg/units"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

var log = logging.GetLogger("main")

func main() {
	configFile := flag.String("config", "/etc/unitopo-adapter/inventory.yaml", "device inventory file")
	address := flag.String("address", "", "gNMI listen address, overrides the inventory")
	metricsAddress := flag.String("metricsAddress", ":9090", "prometheus metrics listen address")
	caPath := flag.String("caPath", "", "path to CA certificate")
	keyPath := flag.String("keyPath", "", "path to client private key")
	certPath := flag.String("certPath", "", "path to client certificate")
	topoEndpoint := flag.String("topoEndpoint", "onos-topo:5150", "topology service endpoint")
	useAtomix := flag.Bool("atomix", false, "keep device revisions in atomix")
	commitTimeout := flag.Duration("commitTimeout", mount.DefaultCommitTimeout, "bound on a single commit")
	flag.Parse()

	log.Info("Starting unitopo-adapter")

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Cannot load inventory: %v", err)
	}
	listen := cfg.Northbound.Address
	if *address != "" {
		listen = *address
	}
	if listen == "" {
		listen = ":5150"
	}

	collector := unit.NewCollector()
	if _, err := units.RegisterAll(collector); err != nil {
		log.Fatalf("Cannot register units: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mountOpts := []mount.MountOption{
		mount.WithRetryInterval(cfg.Retry()),
		mount.WithCommitTimeout(*commitTimeout),
	}
	if *useAtomix {
		atomixClient := atomix.NewClient(atomix.WithClientID(os.Getenv("POD_NAME")))
		revisions, err := store.NewAtomixStore(ctx, atomixClient)
		if err != nil {
			log.Fatalf("Cannot create revision store: %v", err)
		}
		defer revisions.Close()
		mountOpts = append(mountOpts, mount.WithRevisionStore(revisions))
	}

	mgr := mount.NewManager(collector,
		mount.WithMountOptions(mountOpts...),
		mount.WithTopoEndpoint(*topoEndpoint),
		mount.WithCertPaths(*caPath, *keyPath, *certPath))
	defer mgr.Close()

	for _, d := range cfg.Devices {
		if _, err := mgr.Add(ctx, d); err != nil {
			log.Warnf("Device %s not mounted: %v", d.ID, err)
		}
	}
	go func() {
		if err := mgr.Start(ctx); err != nil {
			log.Warnf("Some devices failed to reconcile: %v", err)
		}
	}()

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		log.Infof("Serving metrics on %s", *metricsAddress)
		if err := http.ListenAndServe(*metricsAddress, nil); err != nil {
			log.Errorf("Metrics server stopped: %v", err)
		}
	}()

	var grpcOpts []grpc.ServerOption
	if *certPath != "" && *keyPath != "" {
		creds, err := credentials.NewServerTLSFromFile(*certPath, *keyPath)
		if err != nil {
			log.Fatalf("Cannot load server certificate: %v", err)
		}
		grpcOpts = append(grpcOpts, grpc.Creds(creds))
	}
	server := grpc.NewServer(grpcOpts...)
	northbound.NewServer(mgr).Register(server)

	lis, err := net.Listen("tcp", listen)
	if err != nil {
		log.Fatalf("Cannot listen on %s: %v", listen, err)
	}
	go func() {
		log.Infof("Serving gNMI on %s", listen)
		if err := server.Serve(lis); err != nil {
			log.Errorf("gNMI server stopped: %v", err)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	log.Info("Shutting down")
	cancel()

	stopped := make(chan struct{})
	go func() {
		server.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		server.Stop()
	}
}
