package website

import (
	"context"
	"errors"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"sync"
	"time"

	"git.campusqa.org/campusqa/campusqa/src/auth"
	"git.campusqa.org/campusqa/campusqa/src/config"
	"git.campusqa.org/campusqa/campusqa/src/db"
	"git.campusqa.org/campusqa/campusqa/src/jobs"
	"git.campusqa.org/campusqa/campusqa/src/logging"
	"git.campusqa.org/campusqa/campusqa/src/moderation"
	"git.campusqa.org/campusqa/campusqa/src/qaurl"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var WebsiteCommand = &cobra.Command{
	Use:   "campusqa",
	Short: "Run the campus Q&A server",
	Run: func(cmd *cobra.Command, args []string) {
		defer logging.LogPanics(nil)
		logging.Info().Str("env", string(config.Config.Env)).Msg("Starting campus Q&A")

		qaurl.SetGlobalBaseUrl(config.Config.BaseUrl)

		var wg sync.WaitGroup

		conn := db.NewConnPool()
		gate := moderation.NewGateFromConfig(config.Config.Moderation)

		logging.Info().
			Object("login_policy", auth.NewLoginPolicy(config.Config.Auth)).
			Int("moderator_emails", len(config.Config.Moderation.ModeratorEmails)).
			Str("moderation_failure_policy", string(config.Config.Moderation.FailurePolicy)).
			Msg("Loaded access config")

		// Start background jobs
		wg.Add(1)
		backgroundJobs := jobs.Jobs{
			auth.PeriodicallyDeleteExpiredSessions(conn),
		}

		// Create HTTP server
		wg.Add(1)
		server := http.Server{
			Addr:    config.Config.Addr,
			Handler: NewWebsiteRoutes(conn, gate),
		}
		go func() {
			logging.Info().Str("addr", config.Config.Addr).Msg("Serving the API")
			serverErr := server.ListenAndServe()
			if !errors.Is(serverErr, http.ErrServerClosed) {
				logging.Error().Err(serverErr).Msg("Server shut down unexpectedly")
			}
			// The wg.Done() happens in the shutdown logic below.
		}()

		// The private server uses the default mux, which already has the pprof
		// routes from the import above.
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			// Not shut down gracefully.
			err := http.ListenAndServe(config.Config.PrivateAddr, nil)
			logging.Warn().Err(err).Msg("Private server stopped")
		}()

		// Wait for SIGINT in the background and trigger graceful shutdown
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt)
		go func() {
			<-signals // First SIGINT (start shutdown)
			logging.Info().Msg("Shutting down")

			const timeout = 10 * time.Second

			go func() {
				logging.Info().Msg("Shutting down background jobs...")
				unfinished := backgroundJobs.CancelAndWait(timeout)
				if len(unfinished) == 0 {
					logging.Info().Msg("Background jobs closed gracefully")
				} else {
					logging.Warn().Strs("Unfinished", unfinished).Msg("Background jobs did not finish by the deadline")
				}
				wg.Done()
			}()

			go func() {
				timeoutCtx, cancel := context.WithTimeout(context.Background(), timeout)
				defer cancel()
				err := server.Shutdown(timeoutCtx)
				if err != nil {
					logging.Warn().Err(err).Msg("Server did not shut down gracefully")
				}
				wg.Done()
			}()

			<-signals // Second SIGINT (force quit)
			logging.Warn().Strs("Unfinished background jobs", backgroundJobs.ListUnfinished()).Msg("Forcibly killed the server")
			os.Exit(1)
		}()

		wg.Wait()
		conn.Close()
	},
}
