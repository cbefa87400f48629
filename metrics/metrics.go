// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/assetrules"
	"github.com/luxfi/assetrules/admin"
	"github.com/luxfi/assetrules/components/events"
	"github.com/luxfi/assetrules/fee"
	"github.com/luxfi/assetrules/mint"
)

var (
	_ fee.Observer   = (*Metrics)(nil)
	_ mint.Observer  = (*Metrics)(nil)
	_ admin.Observer = (*Metrics)(nil)
)

const (
	opLabel     = "op"
	resultLabel = "result"
	kindLabel   = "kind"
	assetLabel  = "asset"

	resultOK    = "ok"
	resultError = "error"
)

// Metrics counts entry point calls and the value moved by the rule layers.
type Metrics struct {
	calls       *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	fees        prometheus.Counter
	feeCount    prometheus.Counter
	minted      prometheus.Counter
	withdrawals *prometheus.CounterVec
}

func New(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calls_total",
				Help: "Number of entry point calls",
			},
			[]string{opLabel, resultLabel},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rejections_total",
				Help: "Number of failed entry point calls by error kind",
			},
			[]string{opLabel, kindLabel},
		),
		fees: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fees_collected",
			Help: "Sum of fees routed to token owners",
		}),
		feeCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fee_transfers_total",
			Help: "Number of transfers that paid a fee",
		}),
		minted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tokens_minted",
			Help: "Number of collection ids minted",
		}),
		withdrawals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "withdrawals_total",
				Help: "Number of owner withdrawals by asset kind",
			},
			[]string{assetLabel},
		),
	}

	err := errors.Join(
		registerer.Register(m.calls),
		registerer.Register(m.rejections),
		registerer.Register(m.fees),
		registerer.Register(m.feeCount),
		registerer.Register(m.minted),
		registerer.Register(m.withdrawals),
	)
	return m, err
}

// Observe records the outcome of one call to op.
func (m *Metrics) Observe(op string, err error) {
	if err == nil {
		m.calls.WithLabelValues(op, resultOK).Inc()
		return
	}
	m.calls.WithLabelValues(op, resultError).Inc()
	m.rejections.WithLabelValues(op, assetrules.KindOf(err).String()).Inc()
}

func (m *Metrics) FeeCollected(tax *uint256.Int) {
	f, _ := new(big.Float).SetInt(tax.ToBig()).Float64()
	m.fees.Add(f)
	m.feeCount.Inc()
}

func (m *Metrics) TokensMinted(n uint64) {
	m.minted.Add(float64(n))
}

func (m *Metrics) Withdrawn(asset events.Asset) {
	m.withdrawals.WithLabelValues(asset.String()).Inc()
}
