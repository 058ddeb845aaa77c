// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package autotile

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianTile/services/autotile/problems"
	"github.com/AleutianAI/AleutianTile/services/autotile/solver"
)

// Handlers serves the autotile HTTP API.
type Handlers struct {
	svc *Service
}

// NewHandlers creates handlers for svc.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// HandleSolve handles POST /v1/autotile/solve.
//
// Description:
//
//	Solves one scenario and returns the ranked tile sizes.
//
// Request Body:
//
//	SolveRequest
//
// Response:
//
//	200 OK: SolveResult
//	400 Bad Request: Malformed body or invalid scenario
//	422 Unprocessable Entity: No feasible tiling found
//	500 Internal Server Error: Processing error
func (h *Handlers) HandleSolve(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleSolve")

	var req SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	res, err := h.svc.Solve(c.Request.Context(), req.Scenario)
	if err != nil {
		status, code := errorStatus(err)
		logger.Error("Solve failed", "error", err, "code", code)
		c.JSON(status, ErrorResponse{
			Error: err.Error(),
			Code:  code,
		})
		return
	}

	c.JSON(http.StatusOK, res)
}

// HandleBatch handles POST /v1/autotile/batch.
//
// Description:
//
//	Solves several scenarios concurrently. Per-scenario failures are
//	reported inside the response; the request itself succeeds.
//
// Request Body:
//
//	BatchRequest
//
// Response:
//
//	200 OK: BatchResponse
//	400 Bad Request: Malformed body, empty or oversized batch
func (h *Handlers) HandleBatch(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleBatch")

	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	items, err := h.svc.SolveBatch(c.Request.Context(), req.Scenarios)
	if err != nil {
		status, code := errorStatus(err)
		logger.Error("Batch failed", "error", err, "code", code)
		c.JSON(status, ErrorResponse{
			Error: err.Error(),
			Code:  code,
		})
		return
	}

	resp := BatchResponse{Results: items}
	for _, item := range items {
		if item.Result != nil {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}
	logger.Info("Batch solved", "succeeded", resp.Succeeded, "failed", resp.Failed)
	c.JSON(http.StatusOK, resp)
}

// HandleHealth handles GET /v1/autotile/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:       "healthy",
		Version:      ServiceVersion,
		CacheEnabled: h.svc.CacheEnabled(),
	})
}

// errorStatus maps a service error to an HTTP status and error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrNilScenario),
		errors.Is(err, problems.ErrInvalidScenario),
		errors.Is(err, problems.ErrUnknownAxis),
		errors.Is(err, problems.ErrDuplicateName),
		errors.Is(err, problems.ErrParseScenario):
		return http.StatusBadRequest, "INVALID_SCENARIO"
	case errors.Is(err, solver.ErrInvalidConfig):
		return http.StatusBadRequest, "INVALID_CONFIG"
	case errors.Is(err, ErrEmptyBatch):
		return http.StatusBadRequest, "EMPTY_BATCH"
	case errors.Is(err, ErrBatchTooLarge):
		return http.StatusBadRequest, "BATCH_TOO_LARGE"
	case errors.Is(err, solver.ErrNoSolution):
		return http.StatusUnprocessableEntity, "NO_SOLUTION"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "TIMEOUT"
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout, "CANCELLED"
	default:
		return http.StatusInternalServerError, "SOLVE_FAILED"
	}
}

// errorCode returns only the code half of errorStatus.
func errorCode(err error) string {
	_, code := errorStatus(err)
	return code
}

// getOrCreateRequestID gets or creates a request ID.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
