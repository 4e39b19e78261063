package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/playmatch/internal/domain/model"
	"github.com/okian/playmatch/pkg/logger"
)

const msgFamilyNotFound = "Family not found"

// RecommendDependencies defines the interface for recommendation operations.
type RecommendDependencies interface {
	Recommend(ctx context.Context, familyID string) (Recommendation, error)
}

// RecommendHandler handles recommendation requests.
type RecommendHandler struct {
	deps   RecommendDependencies
	prefix string
	logger logger.Logger
}

// recommendResponse is the 200 body.
type recommendResponse struct {
	Success bool `json:"success"`
	Recommendation
}

// NewRecommendHandler creates a handler serving POST {prefix}{family_id}.
func NewRecommendHandler(deps RecommendDependencies, prefix string, l logger.Logger) *RecommendHandler {
	return &RecommendHandler{deps: deps, prefix: prefix, logger: l}
}

// HandleRecommend handles POST {prefix}/family/{family_id} requests.
func (h *RecommendHandler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommend"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after the family prefix
	familyID := strings.TrimPrefix(r.URL.Path, h.prefix)
	if familyID == "" || strings.Contains(familyID, "/") {
		writeError(w, http.StatusBadRequest, "family_id is required")
		return
	}

	res, err := h.deps.Recommend(r.Context(), familyID)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, msgFamilyNotFound)
			return
		}
		h.logger.Error(r.Context(), "recommendation failed",
			logger.String("familyID", familyID),
			logger.String("requestID", RequestIDFrom(r.Context())),
			logger.Error(WrapKind(op, ErrInternal, err)),
		)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Debug(r.Context(), "recommendation served",
		logger.String("familyID", familyID),
		logger.String("requestID", RequestIDFrom(r.Context())),
		logger.Bool("assigned", res.Assigned()),
	)
	if res.SchoolIDs == nil {
		res.SchoolIDs = []string{}
	}
	if res.Recommendations == nil {
		res.Recommendations = []model.School{}
	}
	writeJSON(w, http.StatusOK, recommendResponse{Success: true, Recommendation: res})
}
