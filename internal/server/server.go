package server

import (
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "log/slog"
    "net/http"
    "strings"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "github.com/go-chi/cors"
    "github.com/go-playground/validator/v10"
    "github.com/google/uuid"

    "shipquote/internal/job"
    "shipquote/internal/rate"
    "shipquote/internal/shipment"
)

type Server struct {
    jobs     *job.Store
    pricer   *rate.Pricer
    validate *validator.Validate
}

// New wires the HTTP API: submit/poll rating endpoints, liveness and
// metrics, with request ID, logging and CORS middleware.
func New(jobs *job.Store, pricer *rate.Pricer, allowedOrigins []string) http.Handler {
    s := &Server{
        jobs:     jobs,
        pricer:   pricer,
        validate: validator.New(),
    }
    if len(allowedOrigins) == 0 {
        allowedOrigins = []string{"*"}
    }
    m := newMetrics()

    r := chi.NewRouter()
    // Observability: Request ID and basic logger
    r.Use(requestIDMiddleware)
    r.Use(middleware.Logger)
    r.Use(m.instrument)
    r.Use(cors.Handler(cors.Options{
        AllowedOrigins: allowedOrigins,
        AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
        AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
        MaxAge:         300,
    }))
    r.Get("/healthz", s.handleHealth)
    r.Post("/rate", s.handleSubmitRate)
    r.Get("/rate/{id}", s.handlePollRate)
    r.Handle("/metrics", m.handler())
    return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
    w.WriteHeader(http.StatusOK)
    w.Write([]byte("ok"))
}

// Rating submission
type RateRequest struct {
    Services         []string     `json:"services"`
    ExcludedServices []string     `json:"excluded_services"`
    Details          *RateDetails `json:"details" validate:"required"`
}

type RateDetails struct {
    PackagingType       string            `json:"packaging_type" validate:"required,oneof=package pallet"`
    Destination         *rate.Destination `json:"destination" validate:"required"`
    PackagingProperties *Packaging        `json:"packaging_properties" validate:"required"`
}

// Packaging nests the item list under a key matching packaging_type.
type Packaging struct {
    Packages []shipment.Item `json:"packages"`
    Pallets  []shipment.Item `json:"pallets"`
}

type RateSubmitResponse struct {
    RequestID string `json:"request_id"`
}

func (s *Server) handleSubmitRate(w http.ResponseWriter, r *http.Request) {
    body, err := io.ReadAll(r.Body)
    if err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "read_error", "read error")
        return
    }
    var req RateRequest
    if err := json.Unmarshal(body, &req); err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
        return
    }
    if err := s.validate.Struct(&req); err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", validationMessage(err))
        return
    }

    kind := shipment.Kind(req.Details.PackagingType)
    items, err := itemsFor(req.Details.PackagingProperties, kind)
    if err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", err.Error())
        return
    }

    dest := *req.Details.Destination
    include, exclude := req.Services, req.ExcludedServices
    compute := func() (quotes []rate.Quote, err error) {
        // The pipeline is pure and must not fail; anything unexpected is
        // recorded and surfaced as a generic unavailability.
        defer func() {
            if rec := recover(); rec != nil {
                err = fmt.Errorf("rating pipeline: %v", rec)
            }
        }()
        return s.pricer.Price(items, kind, dest, include, exclude), nil
    }

    id := s.jobs.Submit(json.RawMessage(body), compute)
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusAccepted)
    json.NewEncoder(w).Encode(RateSubmitResponse{RequestID: id.String()})
}

// itemsFor selects the item list matching the declared packaging type.
// A structurally absent section is invalid input; item-level gaps are
// defaulted later by the analyzer instead.
func itemsFor(p *Packaging, kind shipment.Kind) ([]shipment.Item, error) {
    if kind == shipment.KindPallet {
        if len(p.Pallets) == 0 {
            return nil, errors.New("packaging_properties.pallets required for packaging_type pallet")
        }
        return p.Pallets, nil
    }
    if len(p.Packages) == 0 {
        return nil, errors.New("packaging_properties.packages required for packaging_type package")
    }
    return p.Packages, nil
}

// Rating poll
type RateStatus struct {
    Done     bool `json:"done"`
    Total    int  `json:"total"`
    Complete int  `json:"complete"`
}

type RatePollResponse struct {
    Status RateStatus   `json:"status"`
    Rates  []rate.Quote `json:"rates"`
}

func (s *Server) handlePollRate(w http.ResponseWriter, r *http.Request) {
    id, err := uuid.Parse(chi.URLParam(r, "id"))
    if err != nil {
        // Identifiers are opaque; anything unparseable is simply unknown.
        writeErrorJSON(w, http.StatusNotFound, "resource_not_found", "rate request not found")
        return
    }
    view, err := s.jobs.Poll(id)
    if err != nil {
        if errors.Is(err, job.ErrNotFound) {
            writeErrorJSON(w, http.StatusNotFound, "resource_not_found", "rate request not found")
            return
        }
        writeErrorJSON(w, http.StatusInternalServerError, "internal_error", "internal error")
        return
    }
    if view.Err != nil {
        slog.Error("rating computation failed", "request_id", id, "error", view.Err)
        writeErrorJSON(w, http.StatusInternalServerError, "computation_unavailable",
            "rates are temporarily unavailable; please contact support for a manual quote")
        return
    }
    rates := view.Rates
    if rates == nil {
        rates = []rate.Quote{}
    }
    resp := RatePollResponse{
        Status: RateStatus{Done: view.Done, Total: view.Total, Complete: view.Complete},
        Rates:  rates,
    }
    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(resp)
}

// validationMessage flattens a validator error into a single
// caller-facing line naming the first offending field.
func validationMessage(err error) string {
    var verrs validator.ValidationErrors
    if errors.As(err, &verrs) && len(verrs) > 0 {
        f := verrs[0]
        return fmt.Sprintf("%s failed %s validation", strings.ToLower(f.Namespace()), f.Tag())
    }
    return "invalid request"
}

// writeErrorJSON writes a standardized JSON error response:
// {"error": {"code": string, "message": string}}
func writeErrorJSON(w http.ResponseWriter, status int, code string, message string) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    _ = json.NewEncoder(w).Encode(map[string]any{
        "error": map[string]string{
            "code":    code,
            "message": message,
        },
    })
}

// requestIDMiddleware ensures X-Request-ID is set on the response.
// If provided in the request header, it is propagated; otherwise a UUID is generated.
func requestIDMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
        if rid == "" {
            rid = uuid.New().String()
        }
        w.Header().Set("X-Request-ID", rid)
        next.ServeHTTP(w, r)
    })
}
