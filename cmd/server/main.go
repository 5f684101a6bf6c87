package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "quizboard/docs"
	"quizboard/internal/app"
	"quizboard/internal/config"
	"quizboard/internal/logger"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const releaseVersion = "1.0.0"

// @title			Quizboard API
// @version		1.0
// @description	Rooms, quizzes and the host and buzzer commands of a quizboard game.
// @host			localhost:8080
// @BasePath		/v1
func main() {
	cobra.CheckErr(newCmd().Execute())
}

func newCmd() *cobra.Command {
	v := config.NewViper()

	cmd := &cobra.Command{
		Use:           "quizboard",
		Short:         "Multiplayer quiz board server with rooms, buzzers and live state sync.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			logger.Setup(cfg.LogLevel)
			return serve(cmd.Context(), cfg)
		},
	}

	config.BindFlags(cmd.Flags(), v)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("quizboard v{{.Version}}\n")

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("public_url", cfg.PublicURL).
			Str("host_username", cfg.HostUsername).
			Dur("buzz_window", cfg.Game.BuzzWindow).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	a.Hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("server exited")
	return nil
}
