package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"primis/internal/app"
	"primis/internal/mockapi"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("PRIMIS_DEV")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "devserver",
		Short:         "Serve an in-memory Primis backend",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := app.NewLogger(app.LogConfig{
				Level:  v.GetString("log-level"),
				Format: v.GetString("log-format"),
			}, os.Stderr)

			srv := mockapi.New(mockapi.Config{
				Secret:   v.GetString("secret"),
				TokenTTL: v.GetDuration("token-ttl"),
				Log:      log,
			})
			if err := srv.Seed(); err != nil {
				return fmt.Errorf("seed: %w", err)
			}

			httpSrv := &http.Server{
				Addr:              v.GetString("addr"),
				Handler:           srv.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				log.WithField("addr", httpSrv.Addr).Info("devserver listening")
				errc <- httpSrv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		},
	}

	f := cmd.Flags()
	f.String("addr", ":8000", "listen address")
	f.String("secret", "", "HS256 signing secret (default: a fixed development secret)")
	f.Duration("token-ttl", 30*time.Minute, "access token lifetime")
	f.String("log-level", "info", "log level")
	f.String("log-format", "text", "log format: text or json")
	_ = v.BindPFlags(f)
	return cmd
}
