// Package adminapi is the authenticated administrative HTTP surface
// SPEC_FULL.md C.4 adds: POST /explain renders a query's plan text
// without executing it, GET /metrics exposes the Prometheus registry.
// Neither accepts a parsed query string — /explain takes an
// already-structured filter/ordering payload, so this is tooling around
// the core, not a second query surface (spec's Non-goals: "no SQL
// surface, no parsed query string").
package adminapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/internal/obslog"
	"github.com/corestash/queryplan/internal/qmetrics"
	"github.com/corestash/queryplan/model"
	"github.com/corestash/queryplan/ordering"
	"github.com/corestash/queryplan/scoring"
)

// ExplainFunc renders plan text for one record type's engine, erasing
// QueryEngine[S]'s type parameter behind a closure the embedder supplies
// per type.
type ExplainFunc func(f filter.Filter, requested *ordering.List, hints scoring.Hints) (string, error)

// Server is the admin HTTP surface for one process's set of QueryEngines.
type Server struct {
	explainers map[string]ExplainFunc
	metrics    *qmetrics.Registry
	logger     obslog.Logger
	secret     []byte
}

// NewServer builds a Server authenticating bearer tokens against secret
// with HS256.
func NewServer(secret []byte, metrics *qmetrics.Registry, logger obslog.Logger) *Server {
	if logger == nil {
		logger = obslog.NewNopLogger()
	}
	return &Server{explainers: make(map[string]ExplainFunc), metrics: metrics, logger: logger, secret: secret}
}

// Register wires typeName's explain function into the /explain endpoint.
func (s *Server) Register(typeName string, fn ExplainFunc) {
	s.explainers[typeName] = fn
}

// Handler returns the mux, every route wrapped in bearer-token auth.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/explain", s.authenticate(http.HandlerFunc(s.handleExplain)))
	mux.Handle("/metrics", s.authenticate(promhttp.HandlerFor(s.metrics.Gatherer(), promhttp.HandlerOpts{})))
	return mux
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		_, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("adminapi: unexpected signing method %v", t.Header["alg"])
			}
			return s.secret, nil
		})
		if err != nil {
			s.logger.Warn("admin auth rejected", obslog.Err(err))
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type explainRequest struct {
	TypeName string     `json:"typeName"`
	Filter   filterDTO  `json:"filter"`
	Ordering []entryDTO `json:"ordering"`
	Hints    hintsDTO   `json:"hints"`
}

type hintsDTO struct {
	ConsumeSlice bool `json:"consumeSlice"`
}

type entryDTO struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

type explainResponse struct {
	Plan string `json:"plan"`
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req explainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request: "+err.Error(), http.StatusBadRequest)
		return
	}

	fn, ok := s.explainers[req.TypeName]
	if !ok {
		http.Error(w, fmt.Sprintf("unknown record type %q", req.TypeName), http.StatusNotFound)
		return
	}

	f := req.Filter.toFilter()
	ord := ordering.Of(req.TypeName, entriesFromDTO(req.Ordering)...)
	hints := scoring.Hints{ConsumeSlice: req.Hints.ConsumeSlice}

	plan, err := fn(f, ord, hints)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(explainResponse{Plan: plan})
}

func entriesFromDTO(dtos []entryDTO) []model.OrderingEntry {
	entries := make([]model.OrderingEntry, len(dtos))
	for i, d := range dtos {
		entries[i] = model.OrderingEntry{Property: model.ParsePropertyPath(d.Property), Direction: parseDirection(d.Direction)}
	}
	return entries
}

func parseDirection(s string) model.Direction {
	switch s {
	case "+", "asc", "ASC":
		return model.Ascending
	case "-", "desc", "DESC":
		return model.Descending
	default:
		return model.Unspecified
	}
}

// filterDTO is the JSON wire shape for filter.Filter: the AST's fields
// are unexported (by design — it's a closed tagged union, spec Design
// Notes "match on sum type"), so an admin client builds this shape
// instead of marshaling a Filter directly.
type filterDTO struct {
	Kind        string      `json:"kind"` // "open","closed","and","or","property"
	Path        string      `json:"path,omitempty"`
	Op          string      `json:"op,omitempty"`
	Placeholder string      `json:"placeholder,omitempty"`
	Value       any         `json:"value,omitempty"`
	Children    []filterDTO `json:"children,omitempty"`
}

func (d filterDTO) toFilter() filter.Filter {
	switch d.Kind {
	case "closed":
		return filter.Closed()
	case "and":
		return filter.And(childFilters(d.Children)...)
	case "or":
		return filter.Or(childFilters(d.Children)...)
	case "property":
		path := model.ParsePropertyPath(d.Path)
		op := parseOp(d.Op)
		if op == filter.EXISTS {
			return filter.Exists(path)
		}
		if d.Placeholder != "" {
			return filter.PropertyParam(path, op, d.Placeholder)
		}
		return filter.PropertyConst(path, op, d.Value)
	default:
		return filter.Open()
	}
}

func childFilters(dtos []filterDTO) []filter.Filter {
	out := make([]filter.Filter, len(dtos))
	for i, c := range dtos {
		out[i] = c.toFilter()
	}
	return out
}

func parseOp(s string) filter.Op {
	switch s {
	case "=":
		return filter.EQ
	case "!=":
		return filter.NE
	case "<":
		return filter.LT
	case "<=":
		return filter.LE
	case ">":
		return filter.GT
	case ">=":
		return filter.GE
	default:
		return filter.EXISTS
	}
}
