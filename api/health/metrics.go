// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package health

import "github.com/prometheus/client_golang/prometheus"

type healthMetrics struct {
	// failingChecks keeps track of the number of check failing
	failingChecks *prometheus.GaugeVec
}

func newMetrics(registerer prometheus.Registerer) (*healthMetrics, error) {
	m := &healthMetrics{
		failingChecks: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "health_checks_failing",
				Help: "number of currently failing health checks",
			},
			[]string{"tag"},
		),
	}
	if err := registerer.Register(m.failingChecks); err != nil {
		return nil, err
	}
	m.failingChecks.WithLabelValues(AllTag).Set(0)
	m.failingChecks.WithLabelValues(ApplicationTag).Set(0)
	return m, nil
}
