package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/micasillero/courier/internal/database"
	apperrors "github.com/micasillero/courier/internal/errors"
	"github.com/micasillero/courier/internal/quote"
	quotemodel "github.com/micasillero/courier/internal/quote/model"
	"github.com/micasillero/courier/internal/search"
	"github.com/micasillero/courier/internal/tariff"
	"github.com/micasillero/courier/internal/tariff/model"
)

// Router exposes the tariff catalog, search and quotation endpoints.
type Router struct {
	db       *gorm.DB
	tariffs  *tariff.Store
	catalog  *tariff.SiblingCatalog
	quotes   *quote.Service
	searcher search.Searcher
}

func NewRouter(db *gorm.DB, tariffs *tariff.Store, catalog *tariff.SiblingCatalog, quotes *quote.Service, searcher search.Searcher) *Router {
	return &Router{
		db:       db,
		tariffs:  tariffs,
		catalog:  catalog,
		quotes:   quotes,
		searcher: searcher,
	}
}

// Register attaches all routes to the mux.
func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/tariffs", rt.HandleListTariffs)
	mux.HandleFunc("GET /api/tariffs/{code}", rt.HandleGetTariff)
	mux.HandleFunc("GET /api/tariffs/{code}/siblings", rt.HandleGetSiblings)
	mux.HandleFunc("GET /api/search", rt.HandleSearch)
	mux.HandleFunc("POST /api/quotes", rt.HandleCreateQuote)
	mux.HandleFunc("GET /api/quotes/{quoteID}", rt.HandleGetQuote)
	mux.HandleFunc("GET /api/health", rt.HandleHealth)
}

// HandleListTariffs handles GET /api/tariffs requests
// Optional query filters: codeStartsWith, category, offset, limit
func (rt *Router) HandleListTariffs(w http.ResponseWriter, r *http.Request) {
	var filter model.TariffItemFilter

	if codeStartsWith := r.URL.Query().Get("codeStartsWith"); codeStartsWith != "" {
		filter.CodeStartsWith = &codeStartsWith
	}

	if categoryStr := r.URL.Query().Get("category"); categoryStr != "" {
		category := model.CourierCategory(categoryStr)
		switch category {
		case model.CourierCategoryAllowed, model.CourierCategoryRestricted, model.CourierCategoryProhibited:
			filter.Category = &category
		default:
			http.Error(w, "invalid 'category' query parameter", http.StatusBadRequest)
			return
		}
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			http.Error(w, "invalid 'limit' query parameter, must be an integer", http.StatusBadRequest)
			return
		}
		filter.Limit = &limit
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			http.Error(w, "invalid 'offset' query parameter, must be an integer", http.StatusBadRequest)
			return
		}
		filter.Offset = &offset
	}

	result, err := rt.tariffs.List(r.Context(), filter)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to list tariff items: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleGetTariff handles GET /api/tariffs/{code} requests
func (rt *Router) HandleGetTariff(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		http.Error(w, "missing code in path", http.StatusBadRequest)
		return
	}

	item, err := rt.tariffs.GetByCode(r.Context(), code)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to get tariff item: %v", err), http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.Error(w, fmt.Sprintf("tariff item %s not found", code), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// HandleGetSiblings handles GET /api/tariffs/{code}/siblings requests.
// The response includes the exclusion terms derived for residual categories.
func (rt *Router) HandleGetSiblings(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		http.Error(w, "missing code in path", http.StatusBadRequest)
		return
	}

	item, err := rt.tariffs.GetByCode(r.Context(), code)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to get tariff item: %v", err), http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.Error(w, fmt.Sprintf("tariff item %s not found", code), http.StatusNotFound)
		return
	}

	siblings, err := rt.catalog.Siblings(r.Context(), item)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to get siblings: %v", err), http.StatusInternalServerError)
		return
	}

	resp := struct {
		Code           string             `json:"code"`
		IsResidual     bool               `json:"isResidual"`
		Siblings       []model.TariffItem `json:"siblings"`
		ExclusionTerms []string           `json:"exclusionTerms"`
	}{
		Code:           item.Code,
		IsResidual:     tariff.IsResidualDescription(item.SpecificDescription()),
		Siblings:       siblings,
		ExclusionTerms: tariff.ExclusionTerms(item, siblings),
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleSearch handles GET /api/search?q= requests
func (rt *Router) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "missing required query parameter: q", http.StatusBadRequest)
		return
	}

	hits, err := rt.searcher.Search(r.Context(), query, 0)
	if err != nil {
		http.Error(w, fmt.Sprintf("search failed: %v", err), http.StatusInternalServerError)
		return
	}
	if hits == nil {
		hits = []search.Hit{}
	}

	writeJSON(w, http.StatusOK, struct {
		Query string       `json:"query"`
		Hits  []search.Hit `json:"hits"`
	}{Query: query, Hits: hits})
}

// HandleCreateQuote handles POST /api/quotes requests
func (rt *Router) HandleCreateQuote(w http.ResponseWriter, r *http.Request) {
	var req quotemodel.CreateQuotationDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	quotation, err := rt.quotes.CreateQuotation(r.Context(), &req)
	if err != nil {
		status := http.StatusInternalServerError
		var invalid *apperrors.InvalidInputError
		switch {
		case errors.As(err, &invalid):
			status = http.StatusBadRequest
		case apperrors.IsMissingConfiguration(err):
			status = http.StatusServiceUnavailable
		}
		http.Error(w, fmt.Sprintf("failed to create quotation: %v", err), status)
		return
	}

	writeJSON(w, http.StatusCreated, quotation)
}

// HandleGetQuote handles GET /api/quotes/{quoteID} requests
func (rt *Router) HandleGetQuote(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("quoteID")
	if idStr == "" {
		http.Error(w, "missing quoteID in path", http.StatusBadRequest)
		return
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid quoteID: %v", err), http.StatusBadRequest)
		return
	}

	quotation, err := rt.quotes.GetQuotation(r.Context(), id)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to get quotation: %v", err), http.StatusInternalServerError)
		return
	}
	if quotation == nil {
		http.Error(w, fmt.Sprintf("quotation %s not found", id), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, quotation)
}

// HandleHealth handles GET /api/health requests
func (rt *Router) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := database.HealthCheck(rt.db); err != nil {
		http.Error(w, fmt.Sprintf("unhealthy: %v", err), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
	}
}
