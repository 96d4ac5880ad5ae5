// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package underlay

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
	pkgerrors "github.com/pkg/errors"
)

const yangDataJSON = "application/yang-data+json"

// RESTCONFTransport reaches a device over RESTCONF. Operations are sent one request
// at a time, so a failed Apply may leave earlier operations applied.
type RESTCONFTransport struct {
	device   string
	endpoint string
	username string
	password string
	schema   *tree.Schema
	client   *http.Client
}

// NewRESTCONFTransport allocates a RESTCONF transport. endpoint is the RESTCONF root,
// such as https://10.0.0.1/restconf.
func NewRESTCONFTransport(device string, endpoint string, username string, password string, timeout time.Duration, s *tree.Schema) *RESTCONFTransport {
	if timeout == 0 {
		timeout = time.Second * 10
	}
	return &RESTCONFTransport{
		device:   device,
		endpoint: strings.TrimSuffix(endpoint, "/"),
		username: username,
		password: password,
		schema:   s,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// resourceURL renders id as an RFC 8040 data resource, list keys in schema order.
func (r *RESTCONFTransport) resourceURL(id path.IID) string {
	var b strings.Builder
	b.WriteString(r.endpoint)
	b.WriteString("/data")
	for n := 0; n < id.Len(); n++ {
		b.WriteString("/")
		b.WriteString(id.Name(n))
		keys := id.Keys(n)
		if len(keys) == 0 {
			continue
		}
		order := r.schema.Keys(prefixOf(id, n+1).Schema())
		if len(order) == 0 {
			for k := range keys {
				order = append(order, k)
			}
			sort.Strings(order)
		}
		values := make([]string, 0, len(order))
		for _, k := range order {
			values = append(values, url.PathEscape(keys[k]))
		}
		b.WriteString("=")
		b.WriteString(strings.Join(values, ","))
	}
	return b.String()
}

func prefixOf(id path.IID, n int) path.IID {
	p := id
	for p.Len() > n {
		p = p.Parent()
	}
	return p
}

func (r *RESTCONFTransport) do(ctx context.Context, method string, endpoint string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	if r.username != "" {
		req.SetBasicAuth(r.username, r.password)
	}
	req.Header.Add("Accept", yangDataJSON)
	if body != nil {
		req.Header.Add("Content-Type", yangDataJSON)
	}
	return r.client.Do(req)
}

// Get implements Transport.
func (r *RESTCONFTransport) Get(ctx context.Context, id path.IID, ds Datastore) (interface{}, bool, error) {
	endpoint := r.resourceURL(id)
	if ds == Operational {
		endpoint += "?content=nonconfig"
	} else {
		endpoint += "?content=config"
	}

	resp, err := r.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, pkgerrors.Wrapf(err, "device %s get %s", r.device, id)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if (resp.StatusCode < 200) || (resp.StatusCode >= 300) {
		return nil, false, &TransportError{Operation: http.MethodGet, Endpoint: endpoint, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, pkgerrors.Wrapf(err, "device %s get %s", r.device, id)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, false, nil
	}
	body, err := tree.NodeFromJSON(data)
	if err != nil {
		return nil, false, err
	}
	v := unwrapResource(id, body)
	return v, v != nil, nil
}

// unwrapResource strips the top-level member RESTCONF wraps a resource in. A list
// entry comes back as a single element array.
func unwrapResource(id path.IID, body tree.Node) interface{} {
	if id.IsRoot() {
		return body
	}
	name, keys := id.Last()
	v, ok := body[name]
	if !ok {
		return nil
	}
	if len(keys) > 0 {
		if l, isList := tree.AsList(v); isList {
			if len(l) == 0 {
				return nil
			}
			return l[0]
		}
	}
	return v
}

func wrapResource(id path.IID, data interface{}) tree.Node {
	if id.IsRoot() {
		n, _ := tree.AsNode(data)
		return n
	}
	name, keys := id.Last()
	if len(keys) > 0 {
		return tree.Node{name: []interface{}{data}}
	}
	return tree.Node{name: data}
}

// Apply implements Transport.
func (r *RESTCONFTransport) Apply(ctx context.Context, ops []Op) error {
	for _, op := range ops {
		endpoint := r.resourceURL(op.Path)
		var method string
		var body []byte
		switch op.Type {
		case OpPut:
			method = http.MethodPut
		case OpMerge:
			method = http.MethodPatch
		case OpDelete:
			method = http.MethodDelete
		}
		if op.Type != OpDelete {
			var err error
			body, err = tree.ToJSON(wrapResource(op.Path, op.Data))
			if err != nil {
				return err
			}
		}

		log.Infof("RESTCONF %s endpoint=%s", method, endpoint)
		resp, err := r.do(ctx, method, endpoint, body)
		if err != nil {
			return pkgerrors.Wrapf(err, "device %s %s %s", r.device, method, op.Path)
		}
		_ = resp.Body.Close()

		if op.Type == OpDelete && resp.StatusCode == http.StatusNotFound {
			continue
		}
		if (resp.StatusCode < 200) || (resp.StatusCode >= 300) {
			return &TransportError{Operation: method, Endpoint: endpoint, StatusCode: resp.StatusCode, Status: resp.Status}
		}
	}
	return nil
}

// Probe implements Prober using the RFC 8040 yang-library-version resource.
func (r *RESTCONFTransport) Probe(ctx context.Context) error {
	endpoint := r.endpoint + "/yang-library-version"
	resp, err := r.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return pkgerrors.Wrapf(err, "device %s probe", r.device)
	}
	defer resp.Body.Close()
	if (resp.StatusCode < 200) || (resp.StatusCode >= 300) {
		return &TransportError{Operation: http.MethodGet, Endpoint: endpoint, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return nil
}

// Close implements Transport.
func (r *RESTCONFTransport) Close() error {
	r.client.CloseIdleConnections()
	return nil
}
