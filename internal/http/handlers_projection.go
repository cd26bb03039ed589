package http

import (
	"encoding/json"
	"math"
	"net/http"
	"strings"
)

type historicalPointJSON struct {
	Date  string      `json:"date"`
	Value json.Number `json:"value"`
}

type forecastPointJSON struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

type projectionResponse struct {
	Historical         []historicalPointJSON `json:"historical"`
	Projected          []forecastPointJSON   `json:"projected"`
	CurrentMonthActual *json.Number          `json:"current_month_actual"`
}

func (s *Server) handleProjections(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	category := strings.TrimSpace(r.PathValue("category"))
	if category == "" {
		writeError(w, http.StatusBadRequest, "Invalid request", "category is required")
		return
	}

	result, err := s.projections.Projections(r.Context(), userID, category)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := projectionResponse{
		Historical: make([]historicalPointJSON, len(result.Historical)),
		Projected:  make([]forecastPointJSON, len(result.Projected)),
	}
	for i, p := range result.Historical {
		resp.Historical[i] = historicalPointJSON{
			Date:  p.Period.String(),
			Value: json.Number(p.Total.String()),
		}
	}
	for i, p := range result.Projected {
		resp.Projected[i] = forecastPointJSON{
			Date:  p.Period.String(),
			Value: round2(p.Value),
			Lower: round2(p.Lower),
			Upper: round2(p.Upper),
		}
	}
	if result.CurrentMonthActual != nil {
		actual := json.Number(result.CurrentMonthActual.String())
		resp.CurrentMonthActual = &actual
	}

	writeJSON(w, http.StatusOK, resp)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
