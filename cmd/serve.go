package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/corpusforge/datagen/internal/ingest"
	"github.com/corpusforge/datagen/internal/model"
	"github.com/corpusforge/datagen/internal/pipeline"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP processing API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		runner := initPipeline()

		r := chi.NewRouter()
		r.Use(chimiddleware.RequestID)
		r.Use(chimiddleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type"},
		}))

		r.Get("/health", healthHandler(runner))

		r.Post("/process/text", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Content     string `json:"content"`
				DatasetName string `json:"dataset_name"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
			if body.Content == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "content is required"})
				return
			}
			in := ingest.Input{Text: body.Content, Type: model.SourceText}
			writeResult(w, runner.Run(req.Context(), in, body.DatasetName))
		})

		r.Post("/process/web", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				URL         string `json:"url"`
				DatasetName string `json:"dataset_name"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
			if body.URL == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "url is required"})
				return
			}
			in := ingest.Input{Text: body.URL, Type: model.SourceWeb}
			writeResult(w, runner.Run(req.Context(), in, body.DatasetName))
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// healthHandler reports liveness plus pipeline dependency readiness.
func healthHandler(runner *pipeline.Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":               "ok",
			"generator_configured": runner.GeneratorConfigured(),
		})
	}
}

// writeResult maps the run envelope to a status code: failures are 422 so
// clients can distinguish pipeline outcomes from transport errors.
func writeResult(w http.ResponseWriter, result *model.RunResult) {
	runnerStatus := http.StatusOK
	if !result.Success {
		runnerStatus = http.StatusUnprocessableEntity
	}
	writeJSON(w, runnerStatus, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
