// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package networkinstance registers the network instance handlers shared by every platform.
package networkinstance

import (
	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/translate"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/onosproject/unitopo-adapter/pkg/units/oc"
)

// Provide registers the structural nodes of /network-instances, the protocol config
// reader and the writers that have nothing to send to a device. Platform units call it
// from ProvideHandlers; calling it more than once is harmless.
func Provide(rb *translate.ReaderRegistryBuilder, wb *translate.WriterRegistryBuilder) {
	rb.AddStructural(oc.NetworkInstances)
	rb.AddList(oc.NetworkInstance, none)
	rb.AddStructural(oc.Protocols)
	rb.AddList(oc.Protocol, none)
	rb.Add(oc.ProtocolConfig, translate.ReaderFunc(readProtocolConfig))
	rb.AddStructural(oc.NIInterfaces)

	wb.Add(oc.NetworkInstance, translate.NoopWriter{})
	wb.Add(oc.Protocol, translate.NoopWriter{})
	wb.AddAfter(oc.ProtocolConfig, translate.NoopWriter{}, oc.NetworkInstanceConfig)
}

// none lists nothing and reads nothing. It anchors lists whose entries come from other units.
var none = translate.ListReaderFuncs{
	IDs: func(rc *translate.ReadContext, id path.IID) ([]map[string]string, error) {
		return nil, nil
	},
	ReadFunc: func(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
		return nil, nil
	},
}

func readProtocolConfig(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
	identifier, name := oc.ProtocolKey(id)
	return tree.Node{"identifier": identifier, "name": name}, nil
}

// ProtocolNames returns the names of the protocol instances running in a network instance.
type ProtocolNames func(rc *translate.ReadContext, networkInstance string) ([]string, error)

// Protocols lists the protocol entries of one protocol identifier.
func Protocols(identifier string, names ProtocolNames) translate.ListReader {
	return translate.ListReaderFuncs{
		IDs: func(rc *translate.ReadContext, id path.IID) ([]map[string]string, error) {
			found, err := names(rc, oc.NetworkInstanceName(id))
			if err != nil {
				return nil, err
			}
			keys := make([]map[string]string, 0, len(found))
			for _, name := range found {
				keys = append(keys, oc.ProtocolKeys(identifier, name))
			}
			return keys, nil
		},
		ReadFunc: func(rc *translate.ReadContext, id path.IID) (tree.Node, error) {
			if !oc.IsProtocol(id, identifier) {
				return nil, nil
			}
			found, err := names(rc, oc.NetworkInstanceName(id))
			if err != nil {
				return nil, err
			}
			_, want := oc.ProtocolKey(id)
			for _, name := range found {
				if name == want {
					return tree.Node{}, nil
				}
			}
			return nil, nil
		},
	}
}
