package server

import (
	"context"
	"net"
	"net/http"
	"time"
)

// NewHTTPServer wraps handler in an http.Server whose request contexts are
// cancelled when Shutdown starts, so long-lived streams end instead of
// holding the shutdown open.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	baseCtx, cancel := context.WithCancel(context.Background())
	hs := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	hs.RegisterOnShutdown(cancel)
	return hs
}
