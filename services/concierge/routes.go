// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package concierge

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all concierge routes with the router group.
//
// Description:
//
//	Registers the /v1 endpoints with the given Gin router group. The group
//	should already have any required middleware applied.
//
// Endpoints:
//
//	POST /v1/chat - Run one conversation turn
//	GET  /v1/profile/:session_id - Accumulated preference profile
//	GET  /v1/analytics - Intent/session/turn aggregates
//	GET  /v1/health - Health check
//
// Example:
//
//	service, _ := concierge.NewService(cfg, backends, logger)
//	handlers := concierge.NewHandlers(service)
//
//	v1 := router.Group("/v1")
//	concierge.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	rg.POST("/chat", handlers.HandleChat)
	rg.GET("/profile/:session_id", handlers.HandleProfile)
	rg.GET("/analytics", handlers.HandleAnalytics)
	rg.GET("/health", handlers.HandleHealth)
}
