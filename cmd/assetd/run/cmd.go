// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package run

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/luxfi/log"
	"github.com/spf13/cobra"

	"github.com/luxfi/assetrules/config"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "assetd",
		Short: "Serves token and collection contracts over JSON-RPC",
		RunE:  runFunc,
	}
	config.AddFlags(c.Flags())
	return c
}

func runFunc(c *cobra.Command, _ []string) error {
	v, err := config.NewViper(c.Flags())
	if err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	d, err := New(cfg, log.NewLogger("assetd"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return d.Run(ctx)
}
