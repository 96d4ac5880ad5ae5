// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package mount

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// KpiCommitTotal counts commits that reached the writers
	KpiCommitTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unitopo_commits_total",
		Help: "The total number of commits translated for a device",
	}, []string{"device"})

	// KpiCommitFailures counts commits that failed, reverted or not
	KpiCommitFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unitopo_commit_failures_total",
		Help: "The total number of failed commits for a device",
	}, []string{"device"})

	// KpiCommitDuration is the time taken by commits
	KpiCommitDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "unitopo_commit_duration_seconds",
		Help: "The duration of commits for a device",
	}, []string{"device"})

	// KpiReadTotal counts northbound reads
	KpiReadTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unitopo_reads_total",
		Help: "The total number of reads translated for a device",
	}, []string{"device"})
)
