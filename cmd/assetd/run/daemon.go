// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package run

import (
	"context"
	"errors"
	"net"

	"github.com/holiman/uint256"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/assetrules/api"
	"github.com/luxfi/assetrules/api/admin"
	"github.com/luxfi/assetrules/api/health"
	"github.com/luxfi/assetrules/api/server"
	"github.com/luxfi/assetrules/components/events"
	"github.com/luxfi/assetrules/config"
	"github.com/luxfi/assetrules/host"
	"github.com/luxfi/assetrules/metrics"
)

// Endpoints served under /ext.
const (
	RPCEndpoint    = "rpc"
	HealthEndpoint = "health"
)

// Daemon is a host serving its contracts over HTTP.
type Daemon struct {
	log     log.Logger
	journal *events.Journal
	server  *server.Server
}

// New opens the event journal and binds the API listener. Nothing is served
// until Run.
func New(c config.Config, logger log.Logger) (*Daemon, error) {
	minimum, err := c.Minimum()
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	err = errors.Join(
		registry.Register(collectors.NewGoCollector()),
		registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})),
	)
	if err != nil {
		return nil, err
	}
	m, err := metrics.New(registry)
	if err != nil {
		return nil, err
	}

	journal, err := events.OpenJournal(c.JournalDir, logger)
	if err != nil {
		return nil, err
	}
	d, err := newDaemon(c, logger, journal, registry, m, minimum)
	if err != nil {
		return nil, errors.Join(err, journal.Close())
	}
	return d, nil
}

func newDaemon(
	c config.Config,
	logger log.Logger,
	journal *events.Journal,
	registry *prometheus.Registry,
	m *metrics.Metrics,
	minimum *uint256.Int,
) (*Daemon, error) {
	h := host.New(memdb.New(), journal, host.BankConfig{MinimumBalance: minimum}, logger)
	b := api.NewBackend(api.Config{
		Log:       logger,
		Host:      h,
		EventLog:  journal,
		Metrics:   m,
		CacheSize: c.AttributeCacheSize,
		Faucet:    c.FaucetEnabled,
	})
	handler, err := api.NewHandler(
		api.NewHostService(b),
		api.NewTokenService(b),
		api.NewCollectionService(b),
		admin.NewService(b),
	)
	if err != nil {
		return nil, err
	}

	checks, err := health.New(logger, registry)
	if err != nil {
		return nil, err
	}
	err = errors.Join(
		checks.Register("host", h, health.ApplicationTag),
		checks.Register("journal", journal, health.ApplicationTag),
	)
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", c.Address())
	if err != nil {
		return nil, err
	}
	s, err := server.New(
		logger,
		listener,
		c.AllowedOrigins,
		c.ShutdownTimeout,
		registry,
		registry,
		server.HTTPConfig{ReadHeaderTimeout: c.ReadHeaderTimeout},
	)
	if err != nil {
		return nil, errors.Join(err, listener.Close())
	}
	err = errors.Join(
		s.AddRoute(handler, RPCEndpoint),
		s.AddRoute(checks, HealthEndpoint),
	)
	if err != nil {
		return nil, errors.Join(err, listener.Close())
	}
	return &Daemon{
		log:     logger,
		journal: journal,
		server:  s,
	}, nil
}

// Addr is the address the API listens on.
func (d *Daemon) Addr() net.Addr {
	return d.server.Addr()
}

// Run serves the API until ctx is done, then shuts the server down and
// closes the journal.
func (d *Daemon) Run(ctx context.Context) error {
	d.log.Info("serving API",
		log.Stringer("addr", d.Addr()),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(d.server.Dispatch)
	g.Go(func() error {
		<-ctx.Done()
		d.log.Info("shutting down API")
		return d.server.Shutdown()
	})
	err := g.Wait()
	return errors.Join(err, d.journal.Close())
}
