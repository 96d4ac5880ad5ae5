// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package tree

import (
	"sort"
	"strings"

	"github.com/onosproject/onos-lib-go/pkg/errors"
)

// Schema records the keys of every list, indexed by keyless schema path.
type Schema struct {
	lists map[string][]string
}

// NewSchema creates an empty schema.
func NewSchema() *Schema {
	return &Schema{lists: map[string][]string{}}
}

// AddList declares a list and its key leaves.
func (s *Schema) AddList(schemaPath string, keys ...string) *Schema {
	s.lists[schemaPath] = append([]string{}, keys...)
	return s
}

// Keys returns the key leaves of a list, or nil when schemaPath is not a list.
func (s *Schema) Keys(schemaPath string) []string {
	if s == nil {
		return nil
	}
	return s.lists[schemaPath]
}

// IsList reports whether schemaPath is a declared list.
func (s *Schema) IsList(schemaPath string) bool {
	if s == nil {
		return false
	}
	_, ok := s.lists[schemaPath]
	return ok
}

// Lists returns the declared list paths in sorted order.
func (s *Schema) Lists() []string {
	paths := make([]string, 0, len(s.lists))
	for p := range s.lists {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Merge adds the lists of o. The same list declared with different keys is an error.
func (s *Schema) Merge(o *Schema) error {
	if o == nil {
		return nil
	}
	for p, keys := range o.lists {
		if existing, ok := s.lists[p]; ok && strings.Join(existing, ",") != strings.Join(keys, ",") {
			return errors.NewInvalid("list %s declared with keys %v and %v", p, existing, keys)
		}
		s.lists[p] = keys
	}
	return nil
}
