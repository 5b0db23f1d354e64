// Package handlers provides HTTP request handlers for the interactions
// API endpoints: interaction checks, drug search, prescription
// verification, health and stats, with input validation and response
// formatting.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/giygas/interactions-api/drugdata"
	"github.com/giygas/interactions-api/interactions"
	"github.com/giygas/interactions-api/interfaces"
	"github.com/giygas/interactions-api/llm"
	"github.com/giygas/interactions-api/logging"
	"github.com/giygas/interactions-api/metrics"
	"github.com/giygas/interactions-api/scheduler"
	"github.com/giygas/interactions-api/validation"
	"github.com/giygas/interactions-api/verification"
)

// RespondWithJSON writes a JSON response
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]interface{}{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	RespondWithJSON(w, code, errorResponse)
}

// Root returns the API liveness message
func Root() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		RespondWithJSON(w, http.StatusOK, map[string]string{
			"status": "Drug Interaction API is running.",
		})
	}
}

// StatsResponse reports the sizes of the loaded datasets
type StatsResponse struct {
	TotalDrugs        int               `json:"total_drugs"`
	TotalInteractions int               `json:"total_interactions"`
	DatabaseInfo      map[string]string `json:"database_info"`
}

// Stats returns counts of loaded drugs and interactions
func Stats(dataStore interfaces.DataStore, interactionsFile, synonymsFile string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index := dataStore.GetSynonymIndex()
		table := dataStore.GetInteractionTable()

		RespondWithJSON(w, http.StatusOK, StatsResponse{
			TotalDrugs:        index.DrugCount(),
			TotalInteractions: table.Count(),
			DatabaseInfo: map[string]string{
				"interaction_file": interactionsFile,
				"synonyms_file":    synonymsFile,
			},
		})
	}
}

// CheckInteractionsRequest is the interaction-check request body
type CheckInteractionsRequest struct {
	Drugs []string `json:"drugs"`
}

// CheckInteractions runs the pairwise interaction check
func CheckInteractions(resolver *interactions.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CheckInteractionsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		if len(req.Drugs) < 2 {
			RespondWithError(w, http.StatusBadRequest, "Please provide at least two drugs to check.")
			return
		}

		for _, name := range req.Drugs {
			if err := validation.ValidateDrugName(name); err != nil {
				RespondWithError(w, http.StatusBadRequest, err.Error())
				return
			}
		}

		result, err := resolver.Check(req.Drugs)
		if err != nil {
			switch {
			case errors.Is(err, interactions.ErrTooFewDrugs):
				RespondWithError(w, http.StatusBadRequest, "Please provide at least two drugs to check.")
			case errors.Is(err, interactions.ErrNotEnoughResolved):
				RespondWithError(w, http.StatusNotFound, "Could not identify at least two of the provided drugs in the database.")
			default:
				logging.Error("Interaction check failed", "error", err)
				RespondWithError(w, http.StatusInternalServerError, "Interaction check failed")
			}
			return
		}

		RespondWithJSON(w, http.StatusOK, result)
	}
}

// SearchDrugResponse is the drug-search response payload
type SearchDrugResponse struct {
	Found          bool                   `json:"found"`
	SearchTerm     string                 `json:"search_term"`
	PrimaryName    string                 `json:"primary_name,omitempty"`
	DrugID         string                 `json:"drug_id,omitempty"`
	PartialMatches []drugdata.SearchMatch `json:"partial_matches,omitempty"`
	Message        string                 `json:"message,omitempty"`
}

// SearchDrug resolves a name exactly or lists partial matches
func SearchDrug(dataStore interfaces.DataStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if err := validation.ValidateDrugName(name); err != nil {
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		index := dataStore.GetSynonymIndex()

		if id, ok := index.Resolve(name); ok {
			RespondWithJSON(w, http.StatusOK, SearchDrugResponse{
				Found:       true,
				SearchTerm:  name,
				PrimaryName: index.PrimaryName(id),
				DrugID:      id,
			})
			return
		}

		matches := index.Search(name)
		if len(matches) > 0 {
			RespondWithJSON(w, http.StatusOK, SearchDrugResponse{
				Found:          false,
				SearchTerm:     name,
				PartialMatches: matches,
				Message:        "Found partial matches",
			})
			return
		}

		RespondWithJSON(w, http.StatusOK, SearchDrugResponse{
			Found:      false,
			SearchTerm: name,
			Message:    "No matches found",
		})
	}
}

// VerifyPrescription runs the AI-assisted prescription check
func VerifyPrescription(svc *verification.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verification.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		start := time.Now()
		result, err := svc.Verify(r.Context(), &req)
		metrics.ObserveAICall("verify", start, err)
		if err != nil {
			switch {
			case errors.Is(err, verification.ErrNoDrugs):
				RespondWithError(w, http.StatusBadRequest, "Please provide at least one drug.")
			case errors.Is(err, llm.ErrNotConfigured):
				RespondWithError(w, http.StatusServiceUnavailable, "AI service unavailable: credentials not configured")
			default:
				logging.Error("Prescription verification failed", "error", err)
				RespondWithError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}

		RespondWithJSON(w, http.StatusOK, result)
	}
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	LastUpdate    string         `json:"last_update"`
	DataAgeHours  float64        `json:"data_age_hours"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Data          map[string]any `json:"data"`
	System        map[string]any `json:"system"`
}

// HealthCheck returns server health information
func HealthCheck(dataStore interfaces.DataStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		uptime := time.Since(dataStore.GetServerStartTime())

		index := dataStore.GetSynonymIndex()
		table := dataStore.GetInteractionTable()
		lastUpdate := dataStore.GetLastUpdated()
		dataAge := time.Since(lastUpdate)

		var healthStatus string
		var httpStatus int
		switch {
		case index.DrugCount() == 0 || table.Count() == 0:
			healthStatus = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
		case dataAge > 48*time.Hour:
			healthStatus = "degraded"
			httpStatus = http.StatusOK
		default:
			healthStatus = "healthy"
			httpStatus = http.StatusOK
		}

		response := HealthResponse{
			Status:        healthStatus,
			LastUpdate:    lastUpdate.Format(time.RFC3339),
			DataAgeHours:  dataAge.Hours(),
			UptimeSeconds: uptime.Seconds(),
			Data: map[string]any{
				"api_version":  "1.0",
				"drugs":        index.DrugCount(),
				"interactions": table.Count(),
				"is_updating":  dataStore.IsUpdating(),
				"next_update":  scheduler.CalculateNextUpdate().Format(time.RFC3339),
			},
			System: map[string]any{
				"goroutines": runtime.NumGoroutine(),
				"memory": map[string]any{
					"alloc_mb":       int(m.Alloc / 1024 / 1024),
					"total_alloc_mb": int(m.TotalAlloc / 1024 / 1024),
					"sys_mb":         int(m.Sys / 1024 / 1024),
					"num_gc":         m.NumGC,
				},
			},
		}

		RespondWithJSON(w, httpStatus, response)
	}
}
