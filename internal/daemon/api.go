package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/theirongolddev/edumetrics/internal/cache"
	"github.com/theirongolddev/edumetrics/internal/metrics"
	"github.com/theirongolddev/edumetrics/internal/model"
	"github.com/theirongolddev/edumetrics/internal/pipeline"
)

// Caller identity headers, set by the gateway in front of the daemon.
const (
	HeaderUserID       = "X-User-ID"
	HeaderUserRole     = "X-User-Role"
	HeaderUniversityID = "X-University-ID"
	HeaderRequestID    = "X-Request-ID"
)

type reportFunc func(ctx context.Context, req pipeline.Request) any

// Router builds the gin engine serving the API.
func (s *Service) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), instrument())

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.GET("/status", s.handleStatus)
		v1.GET("/events", s.handleEvents)
		v1.GET("/stream", s.handleStream)
	}

	e := s.engine
	analytics := v1.Group("/analytics")
	{
		analytics.GET("/costs", s.report("costs", func(ctx context.Context, req pipeline.Request) any { return e.Costs(ctx, req) }))
		analytics.GET("/usage", s.report("usage", func(ctx context.Context, req pipeline.Request) any { return e.Usage(ctx, req) }))
		analytics.GET("/trend", s.report("trend", func(ctx context.Context, req pipeline.Request) any { return e.Trend(ctx, req) }))
		analytics.GET("/hourly", s.report("hourly", func(ctx context.Context, req pipeline.Request) any { return e.Hourly(ctx, req) }))
		analytics.GET("/engagement", s.report("engagement", func(ctx context.Context, req pipeline.Request) any { return e.Engagement(ctx, req) }))
		analytics.GET("/quality", s.report("quality", func(ctx context.Context, req pipeline.Request) any { return e.Quality(ctx, req) }))
		analytics.GET("/faq", s.report("faq", func(ctx context.Context, req pipeline.Request) any { return e.FAQ(ctx, req) }))
		analytics.GET("/modules", s.report("modules", func(ctx context.Context, req pipeline.Request) any { return e.CompareModules(ctx, req) }))
		analytics.GET("/top/students", s.report("top-students", func(ctx context.Context, req pipeline.Request) any { return e.TopStudents(ctx, req) }))
		analytics.GET("/top/modules", s.report("top-modules", func(ctx context.Context, req pipeline.Request) any { return e.TopModules(ctx, req) }))
		analytics.GET("/dashboard", s.report("dashboard", func(ctx context.Context, req pipeline.Request) any { return e.Dashboard(ctx, req) }))
		analytics.GET("/today-cost", s.report("today-cost", func(ctx context.Context, req pipeline.Request) any { return e.TodayCost(ctx, req) }))
	}
	return r
}

// requestID tags each request with an ID, reusing the caller's when present.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("requestID", id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// instrument records request metrics and a debug log line per request.
func instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
		metrics.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
		log.WithFields(log.Fields{
			"request_id": c.GetString("requestID"),
			"method":     c.Request.Method,
			"route":      route,
			"status":     status,
			"latency":    elapsed,
		}).Debug("request")
	}
}

func (s *Service) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok\n")
}

func (s *Service) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(c *gin.Context) {
	c.JSON(http.StatusOK, s.recentEvents())
}

func (s *Service) handleStream(c *gin.Context) {
	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	// Send current snapshot immediately.
	c.SSEvent("snapshot", Event{
		Type:      "snapshot",
		Timestamp: s.now(),
		Snapshot:  s.snapshotStatus().Summary,
	})
	c.Writer.Flush()

	c.Stream(func(io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev := <-ch:
			c.SSEvent(ev.Type, ev)
			return true
		}
	})
}

// report wraps an engine call with request parsing and the report cache.
func (s *Service) report(name string, fn reportFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		req := s.parseRequest(c)
		key := cache.Key(name, requestKey(req)...)

		data, err := s.reports.Get(ctx, key)
		switch {
		case err == nil:
			c.Header("X-Cache", "hit")
			c.Data(http.StatusOK, "application/json; charset=utf-8", data)
			return
		case !errors.Is(err, cache.ErrMiss):
			log.WithError(err).WithField("report", name).Warn("report cache read failed")
		}

		data, err = json.Marshal(fn(ctx, req))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if err := s.reports.Set(ctx, key, data); err != nil {
			log.WithError(err).WithField("report", name).Warn("report cache write failed")
		}
		c.Header("X-Cache", "miss")
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
	}
}

// parseRequest reads caller identity from headers and scope, period and
// limit from the query string. Malformed values are treated as unset.
func (s *Service) parseRequest(c *gin.Context) pipeline.Request {
	loc := s.engine.Location()
	req := pipeline.Request{
		Caller: model.Caller{
			UserID:       parseID(c.GetHeader(HeaderUserID)),
			Role:         model.Role(strings.TrimSpace(c.GetHeader(HeaderUserRole))),
			UniversityID: parseID(c.GetHeader(HeaderUniversityID)),
		},
		Filter: model.ScopeFilter{
			ModuleID:     parseID(c.Query("moduleId")),
			CourseID:     parseID(c.Query("courseId")),
			UniversityID: parseID(c.Query("universityId")),
		},
		Start: pipeline.ParseBound(c.Query("from"), loc, false),
		End:   pipeline.ParseBound(c.Query("to"), loc, true),
		Limit: int(parseID(c.Query("limit"))),
	}
	if req.Start == nil {
		req.Start = pipeline.DaysBack(s.now(), int(parseID(c.Query("days"))))
	}
	return req
}

// requestKey lists every request field that changes a report's content.
func requestKey(req pipeline.Request) []string {
	bound := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return strconv.FormatInt(t.UnixMilli(), 10)
	}
	return []string{
		string(req.Caller.Role),
		strconv.FormatInt(req.Caller.UserID, 10),
		strconv.FormatInt(req.Caller.UniversityID, 10),
		strconv.FormatInt(req.Filter.ModuleID, 10),
		strconv.FormatInt(req.Filter.CourseID, 10),
		strconv.FormatInt(req.Filter.UniversityID, 10),
		bound(req.Start),
		bound(req.End),
		strconv.Itoa(req.Limit),
	}
}

// parseID parses a positive integer, returning 0 for anything else.
func parseID(v string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
