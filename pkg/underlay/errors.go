// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package underlay

import (
	"fmt"
)

// TransportError is returned for failed device requests. It makes it easier to
// detect a nonfatal error, such as a 404.
type TransportError struct {
	Endpoint   string
	StatusCode int
	Status     string
	Operation  string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("Transport Error op=%s endpoint=%s code=%d status=%s", e.Operation, e.Endpoint, e.StatusCode, e.Status)
}
