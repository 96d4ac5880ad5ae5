// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package underlay

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/onosproject/unitopo-adapter/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	uri    string
	body   string
}

func newRestconfServer(t *testing.T, status int, response string) (*httptest.Server, *[]recordedRequest) {
	var requests []recordedRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{method: r.Method, uri: r.URL.RequestURI(), body: string(body)})
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "u", user)
		assert.Equal(t, "p", pass)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	return ts, &requests
}

func TestRestconfGet(t *testing.T) {
	ts, requests := newRestconfServer(t, http.StatusOK,
		`{"Cisco-IOS-XR-ifmgr-cfg:interface-configuration": [{"active": "act", "interface-name": "Gi0/0/0/0", "description": "core"}]}`)
	defer ts.Close()

	r := NewRESTCONFTransport("dev1", ts.URL+"/restconf", "u", "p", time.Second, testSchema)
	id := ifcGi0.WithKeys(map[string]string{"active": "act", "interface-name": "Gi0/0/0/0"})
	v, found, err := r.Get(context.Background(), id, Config)
	require.NoError(t, err)
	assert.True(t, found)
	n, _ := tree.AsNode(v)
	assert.Equal(t, "core", n["description"])

	require.Len(t, *requests, 1)
	assert.Equal(t, http.MethodGet, (*requests)[0].method)
	assert.Equal(t, "/restconf/data/interface-configurations/interface-configuration=act,Gi0%2F0%2F0%2F0?content=config", (*requests)[0].uri)
}

func TestRestconfGetNotFound(t *testing.T) {
	ts, _ := newRestconfServer(t, http.StatusNotFound, "")
	defer ts.Close()

	r := NewRESTCONFTransport("dev1", ts.URL+"/restconf", "u", "p", time.Second, testSchema)
	_, found, err := r.Get(context.Background(), ifcGi0, Operational)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestRestconfApply(t *testing.T) {
	ts, requests := newRestconfServer(t, http.StatusNoContent, "")
	defer ts.Close()

	r := NewRESTCONFTransport("dev1", ts.URL+"/restconf", "u", "p", time.Second, testSchema)
	err := r.Apply(context.Background(), []Op{
		{Type: OpPut, Path: ifcGi0, Data: tree.Node{"description": "x"}},
		{Type: OpMerge, Path: ifcGi0.Child("mtus"), Data: tree.Node{"mtu": []interface{}{}}},
		{Type: OpDelete, Path: ifcGi0},
	})
	require.NoError(t, err)
	require.Len(t, *requests, 3)
	assert.Equal(t, http.MethodPut, (*requests)[0].method)
	assert.JSONEq(t, `{"interface-configuration":[{"description":"x"}]}`, (*requests)[0].body)
	assert.Equal(t, http.MethodPatch, (*requests)[1].method)
	assert.JSONEq(t, `{"mtus":{"mtu":[]}}`, (*requests)[1].body)
	assert.Equal(t, http.MethodDelete, (*requests)[2].method)
}

// TestRestconfApplyError tests that the transport properly handles an HTTP error
func TestRestconfApplyError(t *testing.T) {
	ts, requests := newRestconfServer(t, http.StatusForbidden, "")
	defer ts.Close()

	r := NewRESTCONFTransport("dev1", ts.URL+"/restconf", "u", "p", time.Second, testSchema)
	err := r.Apply(context.Background(), []Op{
		{Type: OpPut, Path: ifcGi0, Data: tree.Node{"description": "x"}},
		{Type: OpDelete, Path: ifcGi0},
	})
	assert.Error(t, err)
	transportError := err.(*TransportError)
	assert.NotNil(t, transportError)
	assert.Equal(t, http.StatusForbidden, transportError.StatusCode)
	assert.Len(t, *requests, 1, "processing stops at the first failure")
}
