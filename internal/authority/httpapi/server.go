// Package httpapi exposes the timer authority over HTTP and provides a
// client that satisfies timer.Authority.
package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/antopolskiy/taskt/internal/board"
	"github.com/antopolskiy/taskt/internal/timer"
)

// Backend is the authority served by the API.
type Backend interface {
	timer.Authority
	CreateTask(content string) board.Task
	Tasks() []board.Task
}

type pauseResponse struct {
	Task *board.Task `json:"task"`
}

type createTaskRequest struct {
	Content string `json:"content"`
}

// NewServer returns an Echo instance with middleware and all routes.
func NewServer(svc Backend, logger *log.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))
	Register(e, svc, logger)
	return e
}

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, svc Backend, logger *log.Logger) {
	e.POST("/api/timer/start", startTimer(svc, logger))
	e.POST("/api/timer/pause", pauseTimer(svc, logger))
	e.GET("/api/timer/elapsed", queryElapsed(svc))
	e.PUT("/api/timer/task", syncTask(svc))
	e.GET("/api/tasks", listTasks(svc))
	e.POST("/api/tasks", createTask(svc))
	e.GET("/healthz", healthz())
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func startTimer(svc Backend, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var t board.Task
		if err := c.Bind(&t); err != nil {
			return c.String(http.StatusBadRequest, "invalid task body")
		}
		if t.ID == "" {
			return c.String(http.StatusBadRequest, "task id is required")
		}
		started, err := svc.StartTimer(c.Request().Context(), t)
		if err != nil {
			logger.WithError(err).WithField("task_id", t.ID).Error("start timer")
			return c.String(http.StatusInternalServerError, err.Error())
		}
		logger.WithField("task_id", started.ID).Info("timer started")
		return c.JSON(http.StatusOK, started)
	}
}

func pauseTimer(svc Backend, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		paused, err := svc.PauseTimer(c.Request().Context())
		if err != nil {
			logger.WithError(err).Error("pause timer")
			return c.String(http.StatusInternalServerError, err.Error())
		}
		if paused != nil {
			logger.WithFields(log.Fields{"task_id": paused.ID, "time_spent_ms": paused.TimeSpentMs}).Info("timer paused")
		}
		return c.JSON(http.StatusOK, pauseResponse{Task: paused})
	}
}

func queryElapsed(svc Backend) echo.HandlerFunc {
	return func(c echo.Context) error {
		e, ok, err := svc.QueryElapsed(c.Request().Context())
		if err != nil {
			return c.String(http.StatusInternalServerError, err.Error())
		}
		if !ok {
			return c.NoContent(http.StatusNoContent)
		}
		return c.JSON(http.StatusOK, e)
	}
}

func syncTask(svc Backend) echo.HandlerFunc {
	return func(c echo.Context) error {
		var t board.Task
		if err := c.Bind(&t); err != nil || t.ID == "" {
			return c.String(http.StatusBadRequest, "invalid task body")
		}
		if err := svc.SyncTask(c.Request().Context(), t); err != nil {
			return c.String(http.StatusInternalServerError, err.Error())
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func listTasks(svc Backend) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, svc.Tasks())
	}
}

func createTask(svc Backend) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req createTaskRequest
		if err := c.Bind(&req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		content := strings.TrimSpace(req.Content)
		if content == "" {
			return c.String(http.StatusBadRequest, "content is required")
		}
		return c.JSON(http.StatusCreated, svc.CreateTask(content))
	}
}

func requestLogger(logger *log.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			entry := logger.WithFields(log.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.Round(time.Microsecond).String(),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Debug("request")
			return nil
		},
	})
}
