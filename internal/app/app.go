// Package app wires the session core, the API client and the dashboard shell
// from configuration. Both the server binary and the CLI build on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jrsteele09/notate-dashboard/apiclient"
	"github.com/jrsteele09/notate-dashboard/internal/config"
	"github.com/jrsteele09/notate-dashboard/server"
	"github.com/jrsteele09/notate-dashboard/session"
	"github.com/jrsteele09/notate-dashboard/token"
	"github.com/jrsteele09/notate-dashboard/token/jwt"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	Config  config.Config
	Store   token.Store
	API     *apiclient.Client
	Events  *server.EventHub
	Session *session.Service

	closeStore func() error
}

// New builds the process wide session. The event hub is the default
// navigator; opts are applied after it and may replace it.
func New(c config.Config, opts ...session.Option) (*App, error) {
	store, closeStore, err := token.NewStoreFromConfig(c)
	if err != nil {
		return nil, fmt.Errorf("[app New] failed to create token store: %w", err)
	}

	api := apiclient.New(c.GetAPIURL(), store,
		apiclient.WithTimeout(c.GetRequestTimeout()),
		apiclient.WithCache(apiclient.NewCache(c.GetCacheTTL())),
	)
	events := server.NewEventHub()

	sessionOpts := append([]session.Option{
		session.WithCacheClearer(api.Cache()),
		session.WithNavigator(events),
	}, opts...)

	return &App{
		Config:     c,
		Store:      store,
		API:        api,
		Events:     events,
		Session:    session.New(store, jwt.NewDecoder(), sessionOpts...),
		closeStore: closeStore,
	}, nil
}

// Close drops the session subscription and releases the token store
func (a *App) Close() error {
	a.Session.Close()
	return a.closeStore()
}

// Serve resolves the session, then runs the dashboard shell until ctx is done
func (a *App) Serve(ctx context.Context) error {
	st := a.Session.Start(ctx)
	log.Info().Bool("authenticated", st.Authenticated()).Str("role", st.Role().String()).Msg("session resolved")

	shell := server.New(a.Config, a.Session, a.API, a.Events)
	httpServer := &http.Server{Addr: a.Config.GetPort(), Handler: shell}
	// open event streams would otherwise hold Shutdown until its timeout
	httpServer.RegisterOnShutdown(shell.Close)

	errCh := make(chan error, 1)
	go func() {
		errCh <- listenAndServe(httpServer)
	}()

	select {
	case err := <-errCh:
		shell.Close()
		return err
	case <-ctx.Done():
	}
	return shutdown(httpServer)
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
