package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jrsteele09/notate-dashboard/internal/app"
	"github.com/jrsteele09/notate-dashboard/internal/config"
	"github.com/jrsteele09/notate-dashboard/internal/devbackend"
	"github.com/jrsteele09/notate-dashboard/token/jwt"
	fakeuserrepo "github.com/jrsteele09/notate-dashboard/users/repofake"
	"github.com/rs/zerolog/log"
)

func main() {
	c := config.Load()
	app.SetupLogging(c, nil)

	repo := fakeuserrepo.NewFakeUserRepo()
	if err := devbackend.Seed(repo); err != nil {
		log.Fatal().Err(err).Msg("seed dev users")
	}
	log.Info().Str("password", devbackend.SeedPassword).Msg("dev users share one password")

	backend := devbackend.New(repo, jwt.NewHMACSigner(c.GetDevJWTSecret()), c.GetDevTokenExpiry())
	srv := &http.Server{Addr: c.GetDevBackendPort(), Handler: backend}

	go func() {
		log.Info().Msgf("Dev backend listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("dev backend stopped")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Err(err).Msg("dev backend shutdown")
	}
}
