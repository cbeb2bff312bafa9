// Package server exposes the HTTP surface: the Slack events and
// interactions webhooks, the programmatic minutes intake, and the
// health and metrics endpoints.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/minuted/internal/config"
	"github.com/fyrsmithlabs/minuted/internal/logging"
	"github.com/fyrsmithlabs/minuted/internal/meeting"
	"github.com/fyrsmithlabs/minuted/internal/orchestrator"
	"github.com/fyrsmithlabs/minuted/internal/slack"
)

// maxBodyBytes caps inbound webhook and intake bodies.
const maxBodyBytes = 1 << 20

// pipeline is the orchestrator surface the server drives.
type pipeline interface {
	PresentProposal(ctx context.Context, req orchestrator.PresentRequest) (orchestrator.PresentResult, error)
	HandleApprovalEvent(ctx context.Context, ev slack.ApprovalEvent) orchestrator.EventResult
}

// Server is the HTTP server.
type Server struct {
	cfg      config.ServerConfig
	echo     *echo.Echo
	pipeline pipeline
	names    map[string]string
	logger   *logging.Logger
}

// HealthResponse is the JSON response for the /health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// minutesRequest is the body of POST /api/minutes.
type minutesRequest struct {
	Transcript  string           `json:"transcript"`
	Channel     string           `json:"channel"`
	ProjectID   string           `json:"project_id"`
	MeetingDate string           `json:"meeting_date"`
	Actions     []meeting.Action `json:"actions,omitempty"`
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

// NewServer creates the HTTP server and registers all routes.
// metricsHandler may be nil; the /metrics route is then omitted.
func NewServer(cfg config.ServerConfig, p pipeline, projects []config.ProjectConfig, metricsHandler http.Handler, logger *logging.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%d", maxBodyBytes)))

	names := make(map[string]string, len(projects))
	for _, pr := range projects {
		names[pr.ID] = pr.Name
	}

	s := &Server{
		cfg:      cfg,
		echo:     e,
		pipeline: p,
		names:    names,
		logger:   logger,
	}

	e.GET("/health", s.handleHealth)
	e.POST("/slack/events", s.handleSlackEvents)
	e.POST("/slack/interactions", s.handleSlackInteractions)
	e.POST("/api/minutes", s.handleMinutes)
	if metricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(metricsHandler))
	}

	return s
}

// requestContext carries the middleware request id into the logging
// context, minting one when the header is absent.
func requestContext(c echo.Context) context.Context {
	ctx := logging.WithRequestID(c.Request().Context(), c.Response().Header().Get(echo.HeaderXRequestID))
	return logging.EnsureRequestID(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Service: "minuted"})
}

// handleSlackEvents answers the url_verification handshake and
// acknowledges every other event. Event bodies are not acted on here;
// approvals arrive on the interactions endpoint.
func (s *Server) handleSlackEvents(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "unreadable body"})
	}

	if challenge := slack.ParseEventChallenge(body); challenge != "" {
		return c.JSON(http.StatusOK, map[string]string{"challenge": challenge})
	}
	return c.NoContent(http.StatusOK)
}

// handleSlackInteractions decodes the form-encoded interaction payload
// and routes the approval click through the pipeline. Slack requires a
// 200 within its deadline, so handler errors are reported in the body
// rather than the status where possible.
func (s *Server) handleSlackInteractions(c echo.Context) error {
	raw := c.FormValue("payload")
	if strings.TrimSpace(raw) == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "missing payload"})
	}

	ev, err := slack.ParseInteraction([]byte(raw))
	if err != nil {
		s.logger.Warn(requestContext(c), "bad interaction payload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	res := s.pipeline.HandleApprovalEvent(requestContext(c), ev)
	return c.JSON(http.StatusOK, res)
}

// handleMinutes is the programmatic intake for transcripts arriving
// out-of-band.
func (s *Server) handleMinutes(c echo.Context) error {
	var req minutesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid json body"})
	}
	if strings.TrimSpace(req.Transcript) == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "transcript is required"})
	}
	if req.ProjectID == "" || req.Channel == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "project_id and channel are required"})
	}

	name, ok := s.names[req.ProjectID]
	if !ok || name == "" {
		name = req.ProjectID
	}

	res, err := s.pipeline.PresentProposal(requestContext(c), orchestrator.PresentRequest{
		Transcript:         req.Transcript,
		Channel:            req.Channel,
		ProjectID:          req.ProjectID,
		ProjectName:        name,
		MeetingDate:        req.MeetingDate,
		PrecomputedActions: req.Actions,
	})
	if err != nil {
		s.logger.Error(requestContext(c), "presenting proposal failed", zap.Error(err))
		return c.JSON(http.StatusBadGateway, errorResponse{Error: "failed to present proposal"})
	}
	return c.JSON(http.StatusOK, res)
}

// Start runs the server until ctx is cancelled, then shuts down
// gracefully within the configured timeout. Returns
// http.ErrServerClosed on graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)

	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server start: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout.Duration())
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return http.ErrServerClosed
	}
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
