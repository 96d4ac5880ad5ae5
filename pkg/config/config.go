// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package config loads the device inventory of the adapter.
package config

import (
	"io/ioutil"
	"time"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/onos-lib-go/pkg/logging"
	pkgerrors "github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

var log = logging.GetLogger("config")

// Transport names
const (
	TransportGNMI     = "gnmi"
	TransportRESTCONF = "restconf"
	TransportMemory   = "memory"
)

const (
	// DefaultTimeout bounds a single request to a device
	DefaultTimeout = 10 * time.Second

	// DefaultRetryInterval is the pause between attempts to reach a device
	DefaultRetryInterval = 5 * time.Second
)

// Device describes one mounted device
type Device struct {
	ID        string `yaml:"id"`
	Type      string `yaml:"type"`
	Version   string `yaml:"version"`
	Transport string `yaml:"transport"`
	// Address is host:port for gnmi, a base URL for restconf. When empty it is
	// looked up in onos-topo.
	Address  string `yaml:"address"`
	Target   string `yaml:"target"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Insecure bool   `yaml:"insecure"`
	Timeout  string `yaml:"timeout"`
}

// RequestTimeout returns the parsed timeout, or DefaultTimeout.
func (d Device) RequestTimeout() time.Duration {
	if d.Timeout == "" {
		return DefaultTimeout
	}
	t, err := time.ParseDuration(d.Timeout)
	if err != nil {
		return DefaultTimeout
	}
	return t
}

// Northbound configures the gNMI server
type Northbound struct {
	Address string `yaml:"address"`
}

// Config is the adapter inventory
type Config struct {
	Devices       []Device   `yaml:"devices"`
	Northbound    Northbound `yaml:"northbound"`
	RetryInterval string     `yaml:"retryInterval"`
}

// Retry returns the parsed retry interval, or DefaultRetryInterval.
func (c *Config) Retry() time.Duration {
	if c.RetryInterval == "" {
		return DefaultRetryInterval
	}
	t, err := time.ParseDuration(c.RetryInterval)
	if err != nil {
		return DefaultRetryInterval
	}
	return t
}

// Parse decodes and validates an inventory
func Parse(data []byte) (*Config, error) {
	c := &Config{}
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return nil, errors.NewInvalid("malformed inventory: %v", err)
	}
	for i := range c.Devices {
		if c.Devices[i].Transport == "" {
			c.Devices[i].Transport = TransportGNMI
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads and validates an inventory file
func Load(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "reading inventory %s", path)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	log.Infof("Loaded %d devices from %s", len(c.Devices), path)
	return c, nil
}

// Validate checks the inventory for mistakes
func (c *Config) Validate() error {
	if c.RetryInterval != "" {
		if _, err := time.ParseDuration(c.RetryInterval); err != nil {
			return errors.NewInvalid("bad retryInterval %s", c.RetryInterval)
		}
	}
	seen := map[string]bool{}
	for _, d := range c.Devices {
		if d.ID == "" {
			return errors.NewInvalid("device with no id")
		}
		if seen[d.ID] {
			return errors.NewInvalid("device %s is listed twice", d.ID)
		}
		seen[d.ID] = true
		if d.Type == "" || d.Version == "" {
			return errors.NewInvalid("device %s needs a type and a version", d.ID)
		}
		switch d.Transport {
		case TransportGNMI, TransportRESTCONF, TransportMemory:
		default:
			return errors.NewInvalid("device %s has unknown transport %s", d.ID, d.Transport)
		}
		if d.Timeout != "" {
			if _, err := time.ParseDuration(d.Timeout); err != nil {
				return errors.NewInvalid("device %s has bad timeout %s", d.ID, d.Timeout)
			}
		}
	}
	return nil
}
