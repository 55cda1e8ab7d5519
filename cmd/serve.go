package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/edgar-service/internal/service"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP host exposing every operation",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		svc, err := newService()
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(svc),
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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter builds the operation routes: one POST endpoint per operation
// taking primitive parameters as JSON and returning the envelope.
func newRouter(svc *service.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	type idReq struct {
		Identifier string `json:"identifier"`
		Accession  string `json:"accession_number"`
	}

	r.Post("/v1/company/cik", handle(func(ctx *http.Request, req idReq) service.Result {
		return svc.GetCIKByTicker(ctx.Context(), req.Identifier)
	}))
	r.Post("/v1/company/info", handle(func(ctx *http.Request, req idReq) service.Result {
		return svc.GetCompanyInfo(ctx.Context(), req.Identifier)
	}))
	r.Post("/v1/company/search", handle(func(ctx *http.Request, req struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}) service.Result {
		return svc.SearchCompanies(ctx.Context(), req.Query, req.Limit)
	}))
	r.Post("/v1/company/facts", handle(func(ctx *http.Request, req idReq) service.Result {
		return svc.GetCompanyFacts(ctx.Context(), req.Identifier)
	}))

	r.Post("/v1/filings/recent", handle(func(ctx *http.Request, req struct {
		Identifier string `json:"identifier"`
		FormType   string `json:"form_type"`
		Days       int    `json:"days"`
		Limit      int    `json:"limit"`
	}) service.Result {
		return svc.GetRecentFilings(ctx.Context(), req.Identifier, req.FormType, req.Days, req.Limit)
	}))
	r.Post("/v1/filings/content", handle(func(ctx *http.Request, req idReq) service.Result {
		return svc.GetFilingContent(ctx.Context(), req.Identifier, req.Accession)
	}))
	r.Post("/v1/filings/sections", handle(func(ctx *http.Request, req struct {
		idReq
		FormType string `json:"form_type"`
	}) service.Result {
		return svc.GetFilingSections(ctx.Context(), req.Identifier, req.Accession, req.FormType)
	}))
	r.Post("/v1/filings/events", handle(func(ctx *http.Request, req idReq) service.Result {
		return svc.AnalyzeEightK(ctx.Context(), req.Identifier, req.Accession)
	}))
	r.Post("/v1/filings/recommend", handle(func(ctx *http.Request, req struct {
		FormType string `json:"form_type"`
	}) service.Result {
		return svc.GetRecommendedTools(req.FormType)
	}))

	r.Post("/v1/financials/statements", handle(func(ctx *http.Request, req struct {
		idReq
		StatementType string `json:"statement_type"`
	}) service.Result {
		return svc.GetFinancialStatements(ctx.Context(), req.Identifier, req.Accession, req.StatementType)
	}))
	r.Post("/v1/financials/segments", handle(func(ctx *http.Request, req struct {
		idReq
		SegmentType string `json:"segment_type"`
	}) service.Result {
		return svc.GetSegmentData(ctx.Context(), req.Identifier, req.Accession, req.SegmentType)
	}))
	r.Post("/v1/financials/metrics", handle(func(ctx *http.Request, req struct {
		idReq
		Metrics []string `json:"metrics"`
	}) service.Result {
		return svc.GetKeyMetrics(ctx.Context(), req.Identifier, req.Accession, req.Metrics)
	}))
	r.Post("/v1/financials/compare", handle(func(ctx *http.Request, req struct {
		Identifier string `json:"identifier"`
		Metric     string `json:"metric"`
		StartYear  int    `json:"start_year"`
		EndYear    int    `json:"end_year"`
	}) service.Result {
		return svc.ComparePeriods(ctx.Context(), req.Identifier, req.Metric, req.StartYear, req.EndYear)
	}))
	r.Post("/v1/financials/discover", handle(func(ctx *http.Request, req struct {
		Identifier string `json:"identifier"`
		SearchTerm string `json:"search_term"`
	}) service.Result {
		return svc.DiscoverMetrics(ctx.Context(), req.Identifier, req.SearchTerm)
	}))
	r.Post("/v1/financials/concepts", handle(func(ctx *http.Request, req struct {
		idReq
		Concepts []string `json:"concepts"`
	}) service.Result {
		return svc.GetXBRLConcepts(ctx.Context(), req.Identifier, req.Accession, req.Concepts)
	}))
	r.Post("/v1/financials/concepts/discover", handle(func(ctx *http.Request, req struct {
		idReq
		Namespace string `json:"namespace"`
	}) service.Result {
		return svc.DiscoverXBRLConcepts(ctx.Context(), req.Identifier, req.Accession, req.Namespace)
	}))

	r.Post("/v1/insider/transactions", handle(func(ctx *http.Request, req struct {
		Identifier string   `json:"identifier"`
		FormTypes  []string `json:"form_types"`
		Days       int      `json:"days"`
		Limit      int      `json:"limit"`
	}) service.Result {
		return svc.GetInsiderTransactions(ctx.Context(), req.Identifier, req.FormTypes, req.Days, req.Limit)
	}))
	r.Post("/v1/insider/summary", handle(func(ctx *http.Request, req struct {
		Identifier string `json:"identifier"`
		Days       int    `json:"days"`
	}) service.Result {
		return svc.GetInsiderSummary(ctx.Context(), req.Identifier, req.Days)
	}))
	r.Post("/v1/insider/form4", handle(func(ctx *http.Request, req idReq) service.Result {
		return svc.GetForm4Details(ctx.Context(), req.Identifier, req.Accession)
	}))
	r.Post("/v1/insider/analyze", handle(func(ctx *http.Request, req struct {
		Identifier string `json:"identifier"`
		Days       int    `json:"days"`
		Limit      int    `json:"limit"`
	}) service.Result {
		return svc.AnalyzeInsiderTransactions(ctx.Context(), req.Identifier, req.Days, req.Limit)
	}))
	r.Post("/v1/insider/sentiment", handle(func(ctx *http.Request, req struct {
		Identifier string `json:"identifier"`
		Months     int    `json:"months"`
	}) service.Result {
		return svc.GetInsiderSentiment(ctx.Context(), req.Identifier, req.Months)
	}))

	return r
}

// handle decodes the request body into the parameter struct, runs the
// operation, and writes the envelope. Failure envelopes map to HTTP
// status by error kind; the body always carries the full envelope.
func handle[T any](fn func(*http.Request, T) service.Result) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req T
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, service.Result{
					Error:     "invalid request body",
					ErrorKind: service.KindValidation,
				})
				return
			}
		}

		res := fn(r, req)
		writeJSON(w, statusFor(res), res)
	}
}

func statusFor(res service.Result) int {
	if res.Success {
		return http.StatusOK
	}
	switch res.ErrorKind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindUpstream:
		return http.StatusBadGateway
	case service.KindMalformed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestID tags every request with a UUID for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		start := time.Now()
		next.ServeHTTP(w, r)
		zap.L().Info("request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
