// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package underlay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// KpiUnderlayOperations counts operations sent to devices, by device and operation
	KpiUnderlayOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unitopo_underlay_operations_total",
		Help: "The total number of operations sent to devices",
	}, []string{"device", "operation"})
)
