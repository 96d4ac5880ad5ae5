// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package path implements instance identifiers, keyed paths locating nodes in a data tree.
package path

import (
	"sort"
	"strings"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	gpb "github.com/openconfig/gnmi/proto/gnmi"
	"github.com/openconfig/ygot/ygot"
)

// IID is an instance identifier. It is immutable; every operation returns a new IID.
type IID struct {
	elems []*gpb.PathElem
}

// Root is the empty identifier, addressing the root of a tree.
var Root = IID{}

// Parse parses a gNMI string path such as /interfaces/interface[name=eth0]/config.
func Parse(s string) (IID, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "/" {
		return Root, nil
	}
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	p, err := ygot.StringToStructuredPath(s)
	if err != nil {
		return Root, errors.NewInvalid("malformed path %s: %v", s, err)
	}
	return FromGNMI(nil, p), nil
}

// MustParse is like Parse but panics on error. Intended for package-level identifiers.
func MustParse(s string) IID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// FromGNMI builds an identifier from an optional prefix and a path.
func FromGNMI(prefix *gpb.Path, p *gpb.Path) IID {
	var elems []*gpb.PathElem
	for _, src := range []*gpb.Path{prefix, p} {
		if src == nil {
			continue
		}
		for _, e := range src.GetElem() {
			elems = append(elems, copyElem(e))
		}
	}
	return IID{elems: elems}
}

// GNMI returns the identifier as a gNMI path.
func (i IID) GNMI() *gpb.Path {
	elems := make([]*gpb.PathElem, len(i.elems))
	for n, e := range i.elems {
		elems[n] = copyElem(e)
	}
	return &gpb.Path{Elem: elems}
}

// String renders the canonical form, with keys sorted by name.
func (i IID) String() string {
	if len(i.elems) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, e := range i.elems {
		b.WriteString("/")
		b.WriteString(e.Name)
		for _, k := range sortedKeys(e.Key) {
			b.WriteString("[")
			b.WriteString(k)
			b.WriteString("=")
			b.WriteString(escapeKey(e.Key[k]))
			b.WriteString("]")
		}
	}
	return b.String()
}

// Schema renders the identifier without keys; registries are keyed by it.
func (i IID) Schema() string {
	if len(i.elems) == 0 {
		return "/"
	}
	names := make([]string, len(i.elems))
	for n, e := range i.elems {
		names[n] = e.Name
	}
	return "/" + strings.Join(names, "/")
}

// Wildcard returns the identifier with every key removed.
func (i IID) Wildcard() IID {
	elems := make([]*gpb.PathElem, len(i.elems))
	for n, e := range i.elems {
		elems[n] = &gpb.PathElem{Name: e.Name}
	}
	return IID{elems: elems}
}

// Len returns the number of elements.
func (i IID) Len() int {
	return len(i.elems)
}

// IsRoot reports whether the identifier addresses the tree root.
func (i IID) IsRoot() bool {
	return len(i.elems) == 0
}

// Name returns the name of the n-th element.
func (i IID) Name(n int) string {
	return i.elems[n].Name
}

// Keys returns a copy of the keys of the n-th element.
func (i IID) Keys(n int) map[string]string {
	return copyKeys(i.elems[n].Key)
}

// Last returns the name and keys of the last element.
func (i IID) Last() (string, map[string]string) {
	if len(i.elems) == 0 {
		return "", nil
	}
	e := i.elems[len(i.elems)-1]
	return e.Name, copyKeys(e.Key)
}

// IsKeyless reports whether the last element carries no keys.
func (i IID) IsKeyless() bool {
	if len(i.elems) == 0 {
		return true
	}
	return len(i.elems[len(i.elems)-1].Key) == 0
}

// Parent returns the identifier without its last element.
func (i IID) Parent() IID {
	if len(i.elems) == 0 {
		return Root
	}
	return IID{elems: i.elems[:len(i.elems)-1:len(i.elems)-1]}
}

// Child returns the identifier extended with a container element.
func (i IID) Child(name string) IID {
	return i.ListItem(name, nil)
}

// ListItem returns the identifier extended with a keyed list element.
func (i IID) ListItem(name string, keys map[string]string) IID {
	elems := make([]*gpb.PathElem, len(i.elems), len(i.elems)+1)
	copy(elems, i.elems)
	return IID{elems: append(elems, &gpb.PathElem{Name: name, Key: copyKeys(keys)})}
}

// WithKeys returns the identifier with the keys of its last element replaced.
func (i IID) WithKeys(keys map[string]string) IID {
	if len(i.elems) == 0 {
		return i
	}
	name, _ := i.Last()
	return i.Parent().ListItem(name, keys)
}

// Append returns the identifier extended with a relative identifier.
func (i IID) Append(rel IID) IID {
	elems := make([]*gpb.PathElem, 0, len(i.elems)+len(rel.elems))
	elems = append(elems, i.elems...)
	elems = append(elems, rel.elems...)
	return IID{elems: elems}
}

// Key returns the value of key in the first element named list.
func (i IID) Key(list string, key string) (string, bool) {
	for _, e := range i.elems {
		if e.Name == list {
			v, ok := e.Key[key]
			return v, ok
		}
	}
	return "", false
}

// KeyOr is like Key but returns def when the key is absent.
func (i IID) KeyOr(list string, key string, def string) string {
	if v, ok := i.Key(list, key); ok {
		return v
	}
	return def
}

// HasPrefix reports whether p is a prefix of i. Keyless elements of p match any keys.
func (i IID) HasPrefix(p IID) bool {
	if len(p.elems) > len(i.elems) {
		return false
	}
	for n, pe := range p.elems {
		ie := i.elems[n]
		if pe.Name != ie.Name {
			return false
		}
		for k, v := range pe.Key {
			if ie.Key[k] != v {
				return false
			}
		}
	}
	return true
}

// TrimPrefix returns the part of i below p. The second result is false when p is not a prefix.
func (i IID) TrimPrefix(p IID) (IID, bool) {
	if !i.HasPrefix(p) {
		return Root, false
	}
	return IID{elems: i.elems[len(p.elems):]}, true
}

// Equal reports whether both identifiers address the same node.
func (i IID) Equal(o IID) bool {
	if len(i.elems) != len(o.elems) {
		return false
	}
	for n := range i.elems {
		a, b := i.elems[n], o.elems[n]
		if a.Name != b.Name || len(a.Key) != len(b.Key) {
			return false
		}
		for k, v := range a.Key {
			if bv, ok := b.Key[k]; !ok || bv != v {
				return false
			}
		}
	}
	return true
}

func copyElem(e *gpb.PathElem) *gpb.PathElem {
	return &gpb.PathElem{Name: stripModule(e.GetName()), Key: copyKeys(e.GetKey())}
}

func copyKeys(keys map[string]string) map[string]string {
	if len(keys) == 0 {
		return nil
	}
	c := make(map[string]string, len(keys))
	for k, v := range keys {
		c[stripModule(k)] = v
	}
	return c
}

func sortedKeys(keys map[string]string) []string {
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func escapeKey(v string) string {
	return strings.NewReplacer(`\`, `\\`, `]`, `\]`).Replace(v)
}

// stripModule removes an RFC 7951 module qualifier, openconfig-interfaces:interfaces -> interfaces.
// Values that merely contain colons, such as IPv6 addresses, are returned unchanged.
func stripModule(name string) string {
	idx := strings.Index(name, ":")
	if idx <= 0 || idx == len(name)-1 || strings.Contains(name[idx+1:], ":") {
		return name
	}
	if c := name[0]; !(c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
		return name
	}
	return name[idx+1:]
}

// StripModule removes an RFC 7951 module qualifier from a name or identity value.
func StripModule(name string) string {
	return stripModule(name)
}
