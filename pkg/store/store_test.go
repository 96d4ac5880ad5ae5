// SPDX-FileCopyrightText: 2022-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"testing"

	"github.com/atomix/atomix-go-client/pkg/atomix/test"
	"github.com/atomix/atomix-go-client/pkg/atomix/test/rsm"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func getAtomixStore(t *testing.T) (*test.Test, RevisionStore) {
	testAtomix := test.NewTest(
		rsm.NewProtocol(),
		test.WithReplicas(1),
		test.WithPartitions(1))
	assert.NoError(t, testAtomix.Start())

	client, err := testAtomix.NewClient("node-1")
	assert.NoError(t, err)

	revisionStore, err := NewAtomixStore(context.Background(), client)
	assert.NoError(t, err)

	return testAtomix, revisionStore
}

func checkRevisions(t *testing.T, s RevisionStore) {
	ctx := context.Background()

	rev, err := s.Get(ctx, "xr1")
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), rev)

	first, err := s.Next(ctx, "xr1")
	assert.NoError(t, err)
	second, err := s.Next(ctx, "junos1")
	assert.NoError(t, err)
	assert.Greater(t, second, first)

	rev, err = s.Get(ctx, "xr1")
	assert.NoError(t, err)
	assert.Equal(t, first, rev)

	rev, err = s.Get(ctx, "junos1")
	assert.NoError(t, err)
	assert.Equal(t, second, rev)

	_, err = s.Next(ctx, "")
	assert.True(t, errors.IsInvalid(err))
	_, err = s.Get(ctx, "")
	assert.True(t, errors.IsInvalid(err))
}

func TestAtomixStore(t *testing.T) {
	testAtomix, s := getAtomixStore(t)
	checkRevisions(t, s)
	assert.NoError(t, s.Close())
	assert.NoError(t, testAtomix.Stop())
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	checkRevisions(t, s)
	assert.NoError(t, s.Close())
}
