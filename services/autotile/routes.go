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
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the /v1/autotile endpoints.
//
// Description:
//
//	The router group should already carry any middleware. metrics may be
//	nil, in which case /metrics is not registered.
//
// Endpoints:
//
//	POST /v1/autotile/solve  - Solve one scenario
//	POST /v1/autotile/batch  - Solve several scenarios
//	GET  /v1/autotile/health - Health check
//	GET  /v1/autotile/metrics - Prometheus metrics
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers, metrics http.Handler) {
	at := rg.Group("/autotile")
	{
		at.POST("/solve", h.HandleSolve)
		at.POST("/batch", h.HandleBatch)
		at.GET("/health", h.HandleHealth)
		if metrics != nil {
			at.GET("/metrics", gin.WrapH(metrics))
		}
	}
}
