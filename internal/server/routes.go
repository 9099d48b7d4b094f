package server

import (
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lazypower/decay/internal/decay"
	"github.com/lazypower/decay/internal/store"
)

// number marshals a float as a JSON number, or as a string for the
// values JSON cannot carry.
type number float64

func (n number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte(strconv.Quote(decay.FormatNumber(f))), nil
	}
	return []byte(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

type calculationResponse struct {
	RunID         string `json:"run_id"`
	InitialAmount number `json:"initialAmount"`
	DecayRate     number `json:"decayRate"`
	ElapsedTime   number `json:"elapsedTime"`
	DecayedAmount number `json:"decayedAmount"`
	HalfLife      number `json:"halfLife"`
	Strict        bool   `json:"strict"`
	CreatedAt     int64  `json:"created_at"`
}

func toResponse(c *store.Calculation) calculationResponse {
	return calculationResponse{
		RunID:         c.RunID,
		InitialAmount: number(c.Result.InitialAmount),
		DecayRate:     number(c.Result.DecayRate),
		ElapsedTime:   number(c.Result.ElapsedTime),
		DecayedAmount: number(c.Result.DecayedAmount),
		HalfLife:      number(decay.HalfLife(c.Result.DecayRate)),
		Strict:        c.Strict,
		CreatedAt:     c.CreatedAt,
	}
}

func (s *Server) handleDecay(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := s.defaults
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{"initial", &p.InitialAmount},
		{"rate", &p.DecayRate},
		{"time", &p.ElapsedTime},
	} {
		raw := q.Get(f.key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s: %q", f.key, raw))
			return
		}
		*f.dst = v
	}

	strict, _ := strconv.ParseBool(q.Get("strict"))

	var res decay.Result
	if strict {
		var err error
		res, err = p.EvaluateStrict()
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	} else {
		res = p.Evaluate()
	}

	calc, err := s.db.RecordCalculation(res, strict)
	if err != nil {
		// The result is still valid; history is best-effort.
		log.Printf("decay: record calculation: %v", err)
		calc = &store.Calculation{Result: res, Strict: strict}
	}

	writeJSON(w, http.StatusOK, toResponse(calc))
}

func (s *Server) handleListCalculations(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit: %q", raw))
			return
		}
		limit = n
	}

	calcs, err := s.db.RecentCalculations(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]calculationResponse, 0, len(calcs))
	for i := range calcs {
		out = append(out, toResponse(&calcs[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"calculations": out})
}

func (s *Server) handleGetCalculation(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	calc, err := s.db.GetCalculation(runID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if calc == nil {
		writeError(w, http.StatusNotFound, "calculation "+runID+" not found")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(calc))
}
