package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-engine/internal/lifecycle"
	"github.com/sells-group/lead-engine/internal/model"
	"github.com/sells-group/lead-engine/internal/scorer"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a read-only HTTP API over the lead pool",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg.Server.Port = resolvePort(servePort, cfg.Server.Port)
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		env, err := initEngine(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		return startServer(ctx, buildRouter(env.Manager), cfg.Server.Port)
	},
}

func resolvePort(flagPort, cfgPort int) int {
	if flagPort != 0 {
		return flagPort
	}
	return cfgPort
}

// buildRouter exposes the pool summary and lead lookups. Nothing here writes
// to the pool.
func buildRouter(mgr *lifecycle.Manager) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/summary", func(w http.ResponseWriter, req *http.Request) {
			top, err := intParam(req, "top", lifecycle.DefaultTopN)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			s, err := mgr.Summary(req.Context(), top)
			if err != nil {
				serverError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, s)
		})

		r.Get("/leads", func(w http.ResponseWriter, req *http.Request) {
			f, err := leadFilter(req)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			leads, err := mgr.Leads(req.Context(), f)
			if err != nil {
				serverError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"count": len(leads), "leads": leads})
		})

		r.Get("/leads/{id}", func(w http.ResponseWriter, req *http.Request) {
			lead, err := mgr.Get(req.Context(), chi.URLParam(req, "id"))
			if errors.Is(err, lifecycle.ErrNotFound) {
				writeError(w, http.StatusNotFound, "lead not found")
				return
			}
			if err != nil {
				serverError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, lead)
		})
	})

	return r
}

func leadFilter(req *http.Request) (lifecycle.Filter, error) {
	var f lifecycle.Filter
	if c := req.URL.Query().Get("category"); c != "" {
		if _, ok := scorer.LookupCategory(model.Category(c)); !ok {
			return f, fmt.Errorf("unknown category %q", c)
		}
		f.Category = model.Category(c)
	}
	var err error
	if f.MinScore, err = intParam(req, "min_score", 0); err != nil {
		return f, err
	}
	if f.Limit, err = intParam(req, "limit", 0); err != nil {
		return f, err
	}
	return f, nil
}

func intParam(req *http.Request, name string, def int) (int, error) {
	raw := req.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func serverError(w http.ResponseWriter, err error) {
	zap.L().Error("api request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func startServer(ctx context.Context, h http.Handler, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("starting server", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "server listen")
	}
	return nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
