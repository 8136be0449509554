package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"ipsec-confgen/internal/auth"
	"ipsec-confgen/internal/server"
	"ipsec-confgen/internal/util"
	"ipsec-confgen/internal/version"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		addr            string
		listenInterface string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generator over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts, true)
			if err != nil {
				return err
			}
			defer a.close()

			if addr != "" {
				a.cfg.Listen = addr
			}
			if listenInterface != "" {
				a.cfg.ListenInterface = listenInterface
			}
			return serve(a)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address; overrides the configuration file")
	cmd.Flags().StringVar(&listenInterface, "interface", "", "Bind to the first IPv4 address of this interface")
	return cmd
}

func serve(a *app) error {
	listenAddr, err := util.ResolveListenAddress(a.cfg.Listen, a.cfg.ListenInterface, nil)
	if err != nil {
		a.logger.WithError(err).Warn("Falling back to configured listen address")
	}

	authManager, err := auth.NewManager(a.cfg.Auth.TokenHash)
	if err != nil {
		return fmt.Errorf("auth.token_hash: %w", err)
	}
	if !authManager.Enabled() {
		a.logger.Warn("HTTP API authentication is disabled; set auth.token_hash to require a bearer token")
	}

	srv, err := server.New(a.service, a.index, authManager, a.logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         listenAddr,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.WithFields(log.Fields{
			"addr":    listenAddr,
			"storage": a.cfg.StorageDir,
			"index":   a.cfg.IndexPath,
			"version": version.Current().Short(),
		}).Info("ipsec-confgen listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-sigCh:
	}
	a.logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		a.logger.WithError(err).Warn("Graceful shutdown failed")
		return err
	}
	return nil
}
