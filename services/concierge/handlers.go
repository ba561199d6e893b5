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
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/concierge/services/concierge/convlog"
	"github.com/AleutianAI/concierge/services/concierge/dialogue"
)

// ErrorResponse is the JSON error envelope for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ChatRequest is the body of POST /v1/chat. SessionID is optional; omitting
// it starts a new conversation and the response carries the assigned ID.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatResponse is the body of a successful POST /v1/chat.
type ChatResponse struct {
	SessionID string             `json:"session_id"`
	Messages  []dialogue.Message `json:"messages"`
}

// AnalyticsResponse is the body of GET /v1/analytics.
type AnalyticsResponse struct {
	SinceDays int `json:"since_days"`
	Analytics
}

// Handlers holds the HTTP handlers for the concierge service.
type Handlers struct {
	service *Service
}

// NewHandlers creates handlers backed by the given service.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// getOrCreateRequestID returns the inbound X-Request-ID or mints one.
func getOrCreateRequestID(c *gin.Context) string {
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}

// HandleChat handles POST /v1/chat.
//
// Description:
//
//	Runs one conversation turn: classify the message, search or generate,
//	and return the assistant messages. A missing session_id starts a new
//	session whose ID is returned for the client to reuse.
//
// Response:
//
//	200 OK: ChatResponse
//	400 Bad Request: empty message body or blank message text
func (h *Handlers) HandleChat(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleChat")

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body: " + err.Error(),
			Code:  "INVALID_BODY",
		})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "message is required",
			Code:  "MISSING_PARAMETER",
		})
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	messages, err := h.service.HandleTurn(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		// Only input validation errors reach here; every runtime failure
		// inside a turn degrades to fallback messaging instead.
		logger.Error("turn rejected", "session_id", req.SessionID, "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_SESSION",
		})
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		SessionID: req.SessionID,
		Messages:  messages,
	})
}

// HandleProfile handles GET /v1/profile/:session_id.
//
// Response:
//
//	200 OK: convlog.Profile
//	404 Not Found: session has no profile
func (h *Handlers) HandleProfile(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleProfile")

	sessionID := c.Param("session_id")
	profile, err := h.service.GetProfile(c.Request.Context(), sessionID)
	if errors.Is(err, convlog.ErrProfileNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "no profile for session " + sessionID,
			Code:  "PROFILE_NOT_FOUND",
		})
		return
	}
	if err != nil {
		logger.Error("profile lookup failed", "session_id", sessionID, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "profile lookup failed",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// HandleAnalytics handles GET /v1/analytics.
//
// Query Parameters:
//
//	since_days: trailing window in days, default 7 (optional)
//
// Response:
//
//	200 OK: AnalyticsResponse
//	400 Bad Request: non-numeric since_days
func (h *Handlers) HandleAnalytics(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleAnalytics")

	sinceDays := 7
	if raw := c.Query("since_days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "since_days must be a positive integer",
				Code:  "INVALID_PARAMETER",
			})
			return
		}
		sinceDays = v
	}

	analytics, err := h.service.GetAnalytics(c.Request.Context(), sinceDays)
	if err != nil {
		logger.Error("analytics aggregation failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "analytics aggregation failed",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, AnalyticsResponse{
		SinceDays: sinceDays,
		Analytics: analytics,
	})
}

// HandleHealth handles GET /v1/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "concierge"})
}
