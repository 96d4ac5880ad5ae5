// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package ip6

import (
	"regexp"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/translate"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/underlay"
	"github.com/onosproject/unitopo-adapter/pkg/units/oc"
	"github.com/onosproject/unitopo-adapter/pkg/units/xr6"
)

// LinkLocalPrefixLength is reported for the link local address
const LinkLocalPrefixLength = 64

// relative paths inside an interface configuration
var (
	addressesPath  = path.MustParse("/ipv6-network/addresses")
	linkLocal      = addressesPath.Child("link-local-address")
	regularAddress = addressesPath.Child("regular-addresses").Child("regular-address")
)

var linkLocalPattern = regexp.MustCompile(`^[Ff][Ee][89AaBb]`)

// IsLinkLocal reports whether ip lies in fe80::/10.
func IsLinkLocal(ip string) bool {
	return linkLocalPattern.MatchString(ip)
}

type address struct {
	ip     string
	length uint64
}

// interfaceAddresses returns the IPv6 addresses configured on an interface, link local first.
// Only subinterface 0, the interface itself, carries addresses.
func interfaceAddresses(access underlay.Access, name string) ([]address, error) {
	cfg, err := xr6.ReadInterfaceConfiguration(access, name)
	if err != nil || cfg == nil {
		return nil, err
	}
	var out []address
	if ll, ok := tree.GetNode(cfg, linkLocal); ok {
		if ip, ok := tree.String(ll, "address"); ok {
			out = append(out, address{ip: ip, length: LinkLocalPrefixLength})
		}
	}
	regular, _ := tree.GetNode(cfg, regularAddress.Parent())
	for _, r := range tree.Entries(regular, "regular-address") {
		ip, ok := tree.String(r, "address")
		if !ok {
			continue
		}
		length, _ := tree.Uint(r, "prefix-length")
		out = append(out, address{ip: ip, length: length})
	}
	return out, nil
}

func find(rc *translate.ReadContext, id path.IID) (*address, error) {
	if oc.SubinterfaceIndex(id) != 0 {
		return nil, nil
	}
	addrs, err := interfaceAddresses(rc.Underlay(), oc.InterfaceName(id))
	if err != nil {
		return nil, err
	}
	ip, _ := id.Key("address", "ip")
	for _, a := range addrs {
		if a.ip == ip {
			return &a, nil
		}
	}
	return nil, nil
}

// subinterfaceReader reports subinterface 0 once the interface has an IPv6 address.
var subinterfaceReader = translate.ListReaderFuncs{
	IDs: func(rc *translate.ReadContext, id path.IID) ([]map[string]string, error) {
		addrs, err := interfaceAddresses(rc.Underlay(), oc.InterfaceName(id))
		if err != nil || len(addrs) == 0 {
			return nil, err
		}
		return []map[string]string{{"index": "0"}}, nil
	},
	ReadFunc: func(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
		if oc.SubinterfaceIndex(id) != 0 {
			return nil, nil
		}
		addrs, err := interfaceAddresses(rc.Underlay(), oc.InterfaceName(id))
		if err != nil || len(addrs) == 0 {
			return nil, err
		}
		return tree.Node{"index": float64(0)}, nil
	},
}

var addressReader = translate.ListReaderFuncs{
	IDs: func(rc *translate.ReadContext, id path.IID) ([]map[string]string, error) {
		if oc.SubinterfaceIndex(id) != 0 {
			return nil, nil
		}
		addrs, err := interfaceAddresses(rc.Underlay(), oc.InterfaceName(id))
		if err != nil {
			return nil, err
		}
		keys := make([]map[string]string, 0, len(addrs))
		for _, a := range addrs {
			keys = append(keys, map[string]string{"ip": a.ip})
		}
		return keys, nil
	},
	ReadFunc: func(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
		a, err := find(rc, id)
		if err != nil || a == nil {
			return nil, err
		}
		return tree.Node{"ip": a.ip}, nil
	},
}

func readAddressConfig(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	a, err := find(rc, id)
	if err != nil || a == nil {
		return nil, err
	}
	return tree.Node{"ip": a.ip, "prefix-length": float64(a.length)}, nil
}

// addressConfig is the northbound address config
type addressConfig struct {
	IP           *string `json:"ip"`
	PrefixLength *uint64 `json:"prefix-length"`
}

type addressConfigWriter struct{}

func (addressConfigWriter) configID(id path.IID) path.IID {
	return xr6.InterfaceConfigurationID(oc.InterfaceName(id))
}

func regularID(base path.IID, ip string) path.IID {
	return base.Append(regularAddress.Parent()).ListItem("regular-address", map[string]string{"address": ip})
}

func (w addressConfigWriter) Write(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	if idx := oc.SubinterfaceIndex(id); idx != 0 {
		return errors.NewInvalid("unable to manage ipv6 addresses of subinterface %d", idx)
	}
	var cfg addressConfig
	if err := tree.Decode(data, &cfg); err != nil {
		return err
	}
	if cfg.IP == nil {
		return errors.NewInvalid("address %s has no ip", id)
	}
	base := w.configID(id)
	if IsLinkLocal(*cfg.IP) {
		log.Debugf("Setting link local address %s on %s", *cfg.IP, oc.InterfaceName(id))
		wc.Underlay().Merge(base.Append(linkLocal), tree.Node{"address": *cfg.IP, "zone": "0"})
		return nil
	}
	if cfg.PrefixLength == nil {
		return errors.NewInvalid("address %s has no prefix-length", id)
	}
	if *cfg.PrefixLength > 128 {
		return errors.NewInvalid("bad ipv6 prefix length %d", *cfg.PrefixLength)
	}
	log.Debugf("Setting address %s/%d on %s", *cfg.IP, *cfg.PrefixLength, oc.InterfaceName(id))
	wc.Underlay().Merge(regularID(base, *cfg.IP), tree.Node{"address": *cfg.IP, "prefix-length": float64(*cfg.PrefixLength)})
	return nil
}

func (w addressConfigWriter) Delete(wc *translate.WriteContext, id path.IID, data tree.Node) error {
	ip, ok := tree.String(data, "ip")
	if !ok {
		return nil
	}
	base := w.configID(id)
	if IsLinkLocal(ip) {
		wc.Underlay().Delete(base.Append(linkLocal))
		return nil
	}
	wc.Underlay().Delete(regularID(base, ip))
	return nil
}
