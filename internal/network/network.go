// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package network provides the online/offline signal consulted before any
// remote fetch.
package network

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Connection types reported by Info.
const (
	ConnectionNone    = "none"
	ConnectionUnknown = "unknown"
	ConnectionHTTP    = "http"
)

// Info is a snapshot of connectivity.
type Info struct {
	IsOnline       bool   `json:"isOnline"`
	ConnectionType string `json:"connectionType,omitempty"`
}

// Probe reports whether the remote category source is likely reachable.
type Probe interface {
	IsOnline(ctx context.Context) bool
	Info(ctx context.Context) Info
}

// Static is a Probe with a fixed answer.
type Static bool

// IsOnline implements Probe.
func (s Static) IsOnline(context.Context) bool { return bool(s) }

// Info implements Probe.
func (s Static) Info(context.Context) Info {
	if s {
		return Info{IsOnline: true, ConnectionType: ConnectionUnknown}
	}
	return Info{IsOnline: false, ConnectionType: ConnectionNone}
}

// Func adapts an ordinary function to the Probe interface.
type Func func(ctx context.Context) bool

// IsOnline implements Probe.
func (f Func) IsOnline(ctx context.Context) bool { return f(ctx) }

// Info implements Probe.
func (f Func) Info(ctx context.Context) Info {
	if f(ctx) {
		return Info{IsOnline: true, ConnectionType: ConnectionUnknown}
	}
	return Info{IsOnline: false, ConnectionType: ConnectionNone}
}

// HTTP probes connectivity with a HEAD request. Any response, whatever its
// status, counts as online; only a transport failure counts as offline.
type HTTP struct {
	url          string
	assumeOnline bool
	client       *http.Client
	logger       *slog.Logger
}

// NewHTTP creates an HTTP probe against url. When url is empty no request
// is made and the probe answers assumeOnline.
func NewHTTP(url string, timeout time.Duration, assumeOnline bool) *HTTP {
	return &HTTP{
		url:          url,
		assumeOnline: assumeOnline,
		client:       &http.Client{Timeout: timeout},
		logger:       slog.Default(),
	}
}

// IsOnline implements Probe.
func (p *HTTP) IsOnline(ctx context.Context) bool {
	return p.Info(ctx).IsOnline
}

// Info implements Probe.
func (p *HTTP) Info(ctx context.Context) Info {
	if p.url == "" {
		return Static(p.assumeOnline).Info(ctx)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		p.logger.Warn("network probe request invalid", "url", p.url, "error", err)
		return Static(p.assumeOnline).Info(ctx)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("network probe failed, treating as offline", "url", p.url, "error", err)
		return Info{IsOnline: false, ConnectionType: ConnectionNone}
	}
	resp.Body.Close()
	return Info{IsOnline: true, ConnectionType: ConnectionHTTP}
}
