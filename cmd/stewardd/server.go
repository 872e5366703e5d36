package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stewardbot/steward/alerts"
	"github.com/stewardbot/steward/configstore"
	"github.com/stewardbot/steward/engine"
)

// eventShell is the HTTP surface of the daemon: the bot-shell adapter
// pushes normalized message events here, and operators manage group
// configuration, denylist terms, and recurring alerts.
type eventShell struct {
	echo   *echo.Echo
	engine *engine.Engine
	alerts alerts.Store
	logger *slog.Logger
	listen string
}

func newEventShell(listen string, eng *engine.Engine, alertStore alerts.Store) (*eventShell, error) {
	e := echo.New()
	e.HideBanner = true

	s := &eventShell{
		echo:   e,
		engine: eng,
		alerts: alertStore,
		logger: eng.Logger.With("component", "event-shell"),
		listen: listen,
	}

	e.GET("/_health", s.handleHealthCheck)

	e.POST("/v1/events/message", s.handleMessageEvent)

	e.GET("/v1/groups/:groupID/config", s.handleGetConfig)
	e.PUT("/v1/groups/:groupID/config", s.handlePutConfig)

	e.GET("/v1/groups/:groupID/terms", s.handleListTerms)
	e.POST("/v1/groups/:groupID/terms", s.handleAddTerm)
	e.DELETE("/v1/groups/:groupID/terms", s.handleRemoveTerm)

	e.POST("/v1/terms", s.handleAddGlobalTerm)
	e.DELETE("/v1/terms", s.handleRemoveGlobalTerm)

	e.POST("/v1/groups/:groupID/alert", s.handleSetAlert)
	e.DELETE("/v1/groups/:groupID/alert", s.handleDeleteAlert)

	return s, nil
}

func (s *eventShell) Run(ctx context.Context) {
	if err := s.echo.Start(s.listen); err != nil && err != http.ErrServerClosed {
		s.logger.Error("event shell exited", "err", err)
	}
}

func (s *eventShell) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

type HealthStatus struct {
	Status string `json:"status"`
}

func (s *eventShell) handleHealthCheck(c echo.Context) error {
	return c.JSON(200, HealthStatus{Status: "ok"})
}

type messageEventBody struct {
	Kind      string `json:"kind"`
	GroupID   int64  `json:"group_id"`
	UserID    int64  `json:"user_id"`
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
	MediaRef  string `json:"media_ref"`
}

// handleMessageEvent runs one inbound message through the moderation
// pipeline. Processing is synchronous, and an accepted event is always
// answered 200: once the escalation decision has been applied, a retry
// of the same event would double-count the violation.
func (s *eventShell) handleMessageEvent(c echo.Context) error {
	var body messageEventBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(400, fmt.Sprintf("invalid body: %s", err))
	}
	if body.GroupID == 0 || body.UserID == 0 {
		return echo.NewHTTPError(400, "group_id and user_id are required")
	}

	evt := engine.MessageEvent{
		GroupID:   body.GroupID,
		UserID:    body.UserID,
		MessageID: body.MessageID,
		Text:      body.Text,
		MediaRef:  body.MediaRef,
	}

	ctx := c.Request().Context()
	var err error
	switch body.Kind {
	case "text":
		err = s.engine.ProcessText(ctx, evt)
	case "image":
		err = s.engine.ProcessImage(ctx, evt)
	case "video":
		err = s.engine.ProcessVideo(ctx, evt)
	default:
		return echo.NewHTTPError(400, fmt.Sprintf("unknown event kind: %q", body.Kind))
	}
	if err != nil {
		// the engine absorbs infra failures itself, so an error here means
		// the moderation actions landed but the user-facing notification
		// did not go out
		s.logger.Error("escalation notification failed", "err", err, "kind", body.Kind, "group", evt.GroupID)
	}
	return c.NoContent(200)
}

func groupIDParam(c echo.Context) (int64, error) {
	var id int64
	if err := echo.PathParamsBinder(c).Int64("groupID", &id).BindError(); err != nil || id == 0 {
		return 0, echo.NewHTTPError(400, "invalid group ID")
	}
	return id, nil
}

func (s *eventShell) handleGetConfig(c echo.Context) error {
	groupID, err := groupIDParam(c)
	if err != nil {
		return err
	}
	cfg, err := s.engine.Configs.Get(c.Request().Context(), groupID)
	if err != nil {
		return echo.NewHTTPError(500, "failed to load config")
	}
	return c.JSON(200, cfg)
}

func (s *eventShell) handlePutConfig(c echo.Context) error {
	groupID, err := groupIDParam(c)
	if err != nil {
		return err
	}
	var cfg configstore.GroupConfig
	if err := c.Bind(&cfg); err != nil {
		return echo.NewHTTPError(400, fmt.Sprintf("invalid body: %s", err))
	}
	cfg.GroupID = groupID
	if err := s.engine.Configs.Put(c.Request().Context(), &cfg); err != nil {
		return echo.NewHTTPError(500, "failed to store config")
	}
	return c.JSON(200, cfg)
}

type termBody struct {
	Term string `json:"term"`
}

func (s *eventShell) handleListTerms(c echo.Context) error {
	groupID, err := groupIDParam(c)
	if err != nil {
		return err
	}
	terms, err := s.engine.Terms.GroupTerms(c.Request().Context(), groupID)
	if err != nil {
		return echo.NewHTTPError(500, "failed to list terms")
	}
	return c.JSON(200, map[string][]string{"terms": terms})
}

func (s *eventShell) handleAddTerm(c echo.Context) error {
	groupID, err := groupIDParam(c)
	if err != nil {
		return err
	}
	var body termBody
	if err := c.Bind(&body); err != nil || body.Term == "" {
		return echo.NewHTTPError(400, "term is required")
	}
	if err := s.engine.Terms.AddTerm(c.Request().Context(), groupID, body.Term); err != nil {
		return echo.NewHTTPError(500, "failed to add term")
	}
	return c.NoContent(200)
}

func (s *eventShell) handleRemoveTerm(c echo.Context) error {
	groupID, err := groupIDParam(c)
	if err != nil {
		return err
	}
	var body termBody
	if err := c.Bind(&body); err != nil || body.Term == "" {
		return echo.NewHTTPError(400, "term is required")
	}
	if err := s.engine.Terms.RemoveTerm(c.Request().Context(), groupID, body.Term); err != nil {
		return echo.NewHTTPError(500, "failed to remove term")
	}
	return c.NoContent(200)
}

func (s *eventShell) handleAddGlobalTerm(c echo.Context) error {
	var body termBody
	if err := c.Bind(&body); err != nil || body.Term == "" {
		return echo.NewHTTPError(400, "term is required")
	}
	ctx := c.Request().Context()
	if err := s.engine.Terms.AddGlobalTerm(ctx, body.Term); err != nil {
		return echo.NewHTTPError(500, "failed to add term")
	}
	if err := s.engine.Terms.ReloadGlobal(ctx); err != nil {
		return echo.NewHTTPError(500, "failed to reload global terms")
	}
	return c.NoContent(200)
}

func (s *eventShell) handleRemoveGlobalTerm(c echo.Context) error {
	var body termBody
	if err := c.Bind(&body); err != nil || body.Term == "" {
		return echo.NewHTTPError(400, "term is required")
	}
	ctx := c.Request().Context()
	if err := s.engine.Terms.RemoveGlobalTerm(ctx, body.Term); err != nil {
		return echo.NewHTTPError(500, "failed to remove term")
	}
	if err := s.engine.Terms.ReloadGlobal(ctx); err != nil {
		return echo.NewHTTPError(500, "failed to reload global terms")
	}
	return c.NoContent(200)
}

type alertBody struct {
	Message         string `json:"message"`
	IntervalMinutes int64  `json:"interval_minutes"`
}

func (s *eventShell) handleSetAlert(c echo.Context) error {
	groupID, err := groupIDParam(c)
	if err != nil {
		return err
	}
	var body alertBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(400, fmt.Sprintf("invalid body: %s", err))
	}
	if body.Message == "" || body.IntervalMinutes < 1 {
		return echo.NewHTTPError(400, "message and an interval of at least one minute are required")
	}
	// a re-set alert starts a fresh record and is due on the next tick
	alert := alerts.Alert{
		GroupID:         groupID,
		Message:         body.Message,
		IntervalMinutes: body.IntervalMinutes,
	}
	if err := s.alerts.Upsert(c.Request().Context(), &alert); err != nil {
		return echo.NewHTTPError(500, "failed to store alert")
	}
	return c.JSON(200, alert)
}

func (s *eventShell) handleDeleteAlert(c echo.Context) error {
	groupID, err := groupIDParam(c)
	if err != nil {
		return err
	}
	if err := s.alerts.Delete(c.Request().Context(), groupID); err != nil {
		return echo.NewHTTPError(500, "failed to delete alert")
	}
	return c.NoContent(200)
}
