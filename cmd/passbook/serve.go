package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/passbook/internal/api"
	"github.com/Veraticus/passbook/internal/certs"
	"github.com/Veraticus/passbook/internal/model"
	"github.com/Veraticus/passbook/internal/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve classification and reports over HTTP",
		Long: `Start the HTTP API. POST a payment export to /v1/classify or /v1/report;
GET /v1/catalog shows the loaded catalog and /metrics exposes Prometheus metrics.

With --tls the server uses a self-signed certificate kept in serve.cert_dir,
generated on first use and renewed before it expires.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default :8080)")
	cmd.Flags().Bool("tls", false, "Serve HTTPS with a self-signed certificate")
	cmd.Flags().String("cert-dir", "", "Directory for the generated certificate")
	_ = viper.BindPFlag("serve.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("serve.tls", cmd.Flags().Lookup("tls"))
	_ = viper.BindPFlag("serve.cert_dir", cmd.Flags().Lookup("cert-dir"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	sess, err := newSession()
	if err != nil {
		return err
	}

	reportOpts := report.DefaultOptions()
	reportOpts.Rates = sess.settings.Rates()
	reportOpts.Passes = sess.passOptions(model.CategoryTermPass, "", false)

	cfg := api.Config{
		Addr:         sess.settings.ServeAddr,
		Version:      version,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	if sess.settings.ServeTLS {
		cert, err := loadCertificate(certs.NewFileManager(sess.settings.CertDir, sess.settings.TLSHosts...))
		if err != nil {
			return err
		}
		cfg.TLSCertificate = &cert
	}

	server := api.NewServer(cfg, api.Dependencies{
		Catalog:    sess.catalog,
		Filter:     sess.filter,
		Clock:      sess.clock,
		Classifier: sess.settings.ClassifierOptions(),
		Report:     reportOpts,
	})

	errChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP API listening", "addr", sess.settings.ServeAddr, "tls", cfg.TLSCertificate != nil)
		errChan <- server.Start()
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Info("Shutting down HTTP API")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func loadCertificate(m certs.Manager) (tls.Certificate, error) {
	cert, err := m.GetOrCreateCertificate()
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to prepare TLS certificate: %w", err)
	}
	return cert, nil
}
