package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/npl-portal/auth"
	"github.com/jrsteele09/npl-portal/backend"
	"github.com/jrsteele09/npl-portal/internal/config"
	"github.com/jrsteele09/npl-portal/notifications"
	"github.com/jrsteele09/npl-portal/server"
	"github.com/jrsteele09/npl-portal/sessions"
	"github.com/jrsteele09/npl-portal/token"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("Failed to load .env file")
	}

	for {
		err := run()
		if err == nil {
			break
		}
		if errors.Is(err, errShutdown) {
			log.Err(err).Msg("Server did not shut down cleanly")
			break
		}
		log.Err(err).Msg("Error running server")
		time.Sleep(1 * time.Second)
	}
	log.Info().Msg("Server stopped")
}

// errShutdown marks a failed graceful shutdown; the process exits rather than restarting
var errShutdown = errors.New("shutdown")

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c)
	displayAppname(c.GetAppName())

	ctx := context.Background()
	store, closeStore, err := sessions.Open(ctx, sessions.Options{
		Medium: c.GetSessionStore(),
		Dir:    c.GetSessionDir(),
		DSN:    c.GetSessionDSN(),
		Secret: c.GetTokenSecret(),
	})
	if err != nil {
		return fmt.Errorf("sessions.Open: %w", err)
	}
	defer closeStore()

	provider, err := newProvider(ctx, c)
	if err != nil {
		return err
	}

	gate := auth.NewGate(store, provider, auth.WithMaxAge(c.GetSessionMaxAge()))
	api := backend.NewClient(backend.Options{
		BaseURL:        c.GetBackendURL(),
		Timeout:        c.GetAPITimeout(),
		OnUnauthorized: gate.Invalidate,
	})
	feeds := notifications.NewRegistry(api, c.GetNotificationPollInterval(),
		notifications.WithSessionCheck(gate.Verify))

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go feeds.SweepEvery(sweepCtx, c.GetNotificationPollInterval())

	handler, err := server.New(c, gate, api, feeds)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := server.NewHTTPServer(c.GetPort(), handler)
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(httpServer) }()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func newProvider(ctx context.Context, c config.Config) (auth.Provider, error) {
	switch c.GetAuthProvider() {
	case config.AuthProviderRemote:
		provider, err := auth.NewRemoteProvider(ctx, auth.RemoteConfig{
			Issuer:       c.GetOIDCIssuer(),
			ClientID:     c.GetOIDCClientID(),
			ClientSecret: c.GetOIDCClientSecret(),
		})
		if err != nil {
			return nil, fmt.Errorf("auth.NewRemoteProvider: %w", err)
		}
		log.Info().Str("issuer", c.GetOIDCIssuer()).Msg("Using remote identity provider")
		return provider, nil
	default:
		issuer := token.NewIssuer(c.GetTokenSecret(), c.GetTokenIssuer(), c.GetTokenTTL())
		provider, err := auth.NewStaticDemoProvider(issuer)
		if err != nil {
			return nil, fmt.Errorf("auth.NewStaticDemoProvider: %w", err)
		}
		log.Warn().Msg("Using demo credentials; do not run this configuration in production")
		return provider, nil
	}
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("%w: server.Shutdown: %w", errShutdown, err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
