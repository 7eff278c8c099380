package rest

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"freshCart/business/recommend"
	"freshCart/domain"
	"freshCart/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	RecommendationHandler struct {
		validate *validator.Validate
		service  RecommendationService
		feedback FeedbackService
		recorder InteractionRecorder
	}

	RecommendationService interface {
		GetRecommendations(ctx context.Context, opts recommend.Options) ([]domain.RecommendationCandidate, error)
	}

	FeedbackService interface {
		PersistBatch(ctx context.Context, userID uint, cands []domain.RecommendationCandidate, reqContext map[string]any) (int64, error)
		MarkShown(ctx context.Context, userID uint, productID uint64, strategy domain.StrategyKind) error
		MarkClicked(ctx context.Context, userID uint, productID uint64, strategy domain.StrategyKind) error
		MarkPurchased(ctx context.Context, userID uint, productID uint64, strategy domain.StrategyKind) error
	}

	InteractionRecorder interface {
		Record(ctx context.Context, userID uint, productID uint64, actionKind string, metadata map[string]any) recommend.RecordResult
	}

	RecommendQuery struct {
		Strategy          string `query:"strategy"`
		ProductID         uint64 `query:"product_id"`
		N                 int    `query:"n"`
		IncludeOutOfStock bool   `query:"include_out_of_stock"`
		Exclude           string `query:"exclude"`
	}

	InteractionRequest struct {
		ProductID  uint64         `json:"product_id" validate:"required"`
		Action     string         `json:"action" validate:"required,oneof=view add_to_cart purchase"`
		SessionID  string         `json:"session_id"`
		DeviceType string         `json:"device_type"`
		Source     string         `json:"source"`
		DurationMs int64          `json:"duration_ms"`
		Metadata   map[string]any `json:"metadata"`
	}

	FeedbackRequest struct {
		ProductID uint64 `json:"product_id" validate:"required"`
		Strategy  string `json:"strategy"`
		EventType string `json:"event_type" validate:"required,oneof=shown clicked purchased"`
	}
)

func NewRecommendationHandler(service RecommendationService, feedback FeedbackService, recorder InteractionRecorder) *RecommendationHandler {
	return &RecommendationHandler{
		validate: validator.New(),
		service:  service,
		feedback: feedback,
		recorder: recorder,
	}
}

// GET /api/v1/recommendations?strategy=also_viewed&product_id=42&n=10
func (h *RecommendationHandler) Recommend(c echo.Context) error {
	uidVal := c.Get("user_id")
	userID, ok := uidVal.(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var q RecommendQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if q.N <= 0 {
		q.N = 10
	}

	opts := recommend.Options{
		UserID:            userID,
		ProductID:         q.ProductID,
		Strategy:          domain.StrategyKind(q.Strategy),
		Limit:             q.N,
		IncludeOutOfStock: q.IncludeOutOfStock,
		ExcludeProductIDs: parseIDList(q.Exclude),
	}

	recs, err := h.service.GetRecommendations(c.Request().Context(), opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	// Persist the batch so shown/clicked/purchased feedback can close
	// the loop. A persistence failure must not fail the response.
	if len(recs) > 0 {
		if _, err := h.feedback.PersistBatch(c.Request().Context(), userID, recs, requestContext(q)); err != nil {
			logger.Warn("failed to persist recommendation batch", "user_id", userID, err)
		}
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(recs))
}

// POST /api/v1/interactions
func (h *RecommendationHandler) RecordInteraction(c echo.Context) error {
	uidVal := c.Get("user_id")
	userID, ok := uidVal.(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req InteractionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	metadata := map[string]any{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	if req.SessionID != "" {
		metadata["session_id"] = req.SessionID
	}
	if req.DeviceType != "" {
		metadata["device_type"] = req.DeviceType
	}
	if req.Source != "" {
		metadata["source"] = req.Source
	}
	if req.DurationMs > 0 {
		metadata["duration_ms"] = req.DurationMs
	}

	result := h.recorder.Record(c.Request().Context(), userID, req.ProductID, req.Action, metadata)
	if !result.OK {
		// Soft failure by design: the interaction is lost but the
		// caller's flow is not.
		logger.Debug("interaction dropped", "user_id", userID, "reason", result.Reason)
	}

	return c.JSON(http.StatusAccepted, fres.Response.StatusOK("interaction accepted"))
}

// POST /api/v1/recommendations/feedback
func (h *RecommendationHandler) Feedback(c echo.Context) error {
	uidVal := c.Get("user_id")
	userID, ok := uidVal.(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req FeedbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx := c.Request().Context()
	strategy := domain.StrategyKind(req.Strategy)

	var err error
	switch req.EventType {
	case "shown":
		err = h.feedback.MarkShown(ctx, userID, req.ProductID, strategy)
	case "clicked":
		err = h.feedback.MarkClicked(ctx, userID, req.ProductID, strategy)
	case "purchased":
		err = h.feedback.MarkPurchased(ctx, userID, req.ProductID, strategy)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated("feedback recorded"))
}

func parseIDList(raw string) []uint64 {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]uint64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	return ids
}

func requestContext(q RecommendQuery) map[string]any {
	ctx := map[string]any{}
	if q.Strategy != "" {
		ctx["strategy"] = q.Strategy
	}
	if q.ProductID != 0 {
		ctx["product_id"] = q.ProductID
	}
	return ctx
}
