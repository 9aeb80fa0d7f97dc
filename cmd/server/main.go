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
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"github.com/simaris-dev/simaris-auth/internal/config"
	"github.com/simaris-dev/simaris-auth/server"
	"github.com/simaris-dev/simaris-auth/session"
	sessionmemory "github.com/simaris-dev/simaris-auth/session/memoryrepo"
	sessionredis "github.com/simaris-dev/simaris-auth/session/redisrepo"
	"github.com/simaris-dev/simaris-auth/sso"
	"github.com/simaris-dev/simaris-auth/users"
	usermemory "github.com/simaris-dev/simaris-auth/users/memoryrepo"
	usersql "github.com/simaris-dev/simaris-auth/users/sqlrepo"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config.Validate: %w", err)
	}

	displayAppname(cfg.AppName)

	userRepo, cleanup, err := newUserRepo(cfg)
	if err != nil {
		return fmt.Errorf("newUserRepo: %w", err)
	}
	defer cleanup()

	sessionRepo := newSessionRepo(cfg)

	ssoClient := sso.NewClient(sso.Options{
		APIURL:             cfg.SSOAPIURL,
		ClientID:           cfg.SSOClientID,
		Timeout:            cfg.SSOTimeout,
		InsecureSkipVerify: cfg.SSOInsecureSkipVerify,
		Logger:             log.Logger,
	})

	srv, err := server.New(cfg, userRepo, sessionRepo, ssoClient)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: cfg.Port, Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

func newUserRepo(cfg config.Config) (users.Repo, func(), error) {
	if cfg.DatabasePath == "" {
		log.Info().Msg("no DATABASE_PATH configured, using in-memory user store")
		return usermemory.New(), func() {}, nil
	}

	repo, err := usersql.Open(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	return repo, func() { repo.Close() }, nil
}

func newSessionRepo(cfg config.Config) session.Repo {
	if cfg.RedisAddr == "" {
		log.Info().Msg("no REDIS_ADDR configured, using in-memory session store")
		return sessionmemory.New()
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return sessionredis.New(client)
}

func listenAndServe(server *http.Server) {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
