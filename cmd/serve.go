package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/ror-cli/internal/model"
)

const (
	maxRequestBytes   = 1 << 20
	maxReconcileRows  = 500
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve lookups and row reconciliation over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		return startServer(ctx, buildRouter(env, cfg.Server.CORSOrigins), resolvePort(servePort, cfg.Server.Port))
	},
}

// resolvePort prefers the flag value over the configured port.
func resolvePort(flagPort, cfgPort int) int {
	if flagPort != 0 {
		return flagPort
	}
	return cfgPort
}

func buildRouter(env *pipelineEnv, origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/resolve", handleResolve(env))
		r.Post("/reconcile", handleReconcile(env))
	})
	return r
}

func handleResolve(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(r.URL.Query().Get("affiliation"))
		if name == "" {
			writeError(w, http.StatusBadRequest, "affiliation is required")
			return
		}
		writeJSON(w, http.StatusOK, env.Resolver.Resolve(r.Context(), name))
	}
}

type reconcileRequest struct {
	Rows   []map[string]string `json:"rows"`
	Lookup bool                `json:"lookup"`
}

type reconcileResponse struct {
	Records []model.SoftwareOrgRecord `json:"records"`
	Skipped int                       `json:"skipped"`
}

func handleReconcile(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reconcileRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if len(req.Rows) > maxReconcileRows {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d rows per request", maxReconcileRows))
			return
		}

		resp := reconcileResponse{Records: []model.SoftwareOrgRecord{}}
		for _, fields := range req.Rows {
			if r.Context().Err() != nil {
				return
			}
			rec, ok := env.Pipeline.ReconcileRow(r.Context(), rowFromMap(fields), req.Lookup)
			if !ok {
				resp.Skipped++
				continue
			}
			resp.Records = append(resp.Records, rec)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// rowFromMap binds a JSON object to a Row with columns in sorted order.
func rowFromMap(fields map[string]string) model.Row {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)

	values := make([]string, len(names))
	for i, n := range names {
		values[i] = fields[n]
	}
	return model.NewRow(model.NewHeader(names), values)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("serve: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// startServer serves handler on port until ctx is cancelled, then shuts
// down gracefully.
func startServer(ctx context.Context, handler http.Handler, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return eris.Wrap(srv.Shutdown(shutdownCtx), "server shutdown")
	})
	return g.Wait()
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
