// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is catalogctl, a command-line client that reads and manages
// the local category cache directly, without going through the daemon.
package main

import (
	"os"

	"localmarket/internal/app"
	"localmarket/internal/config"
)

func main() {
	open := func() (*app.App, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		return app.New(cfg, nil, app.NewLogger(cfg, os.Stderr))
	}
	if err := newRootCmd(open).Execute(); err != nil {
		os.Exit(1)
	}
}
