package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bakkerme/reddit-proxy/internal/aggregator"
	"github.com/bakkerme/reddit-proxy/internal/filter"
	"github.com/bakkerme/reddit-proxy/internal/render"
	"github.com/bakkerme/reddit-proxy/internal/sources/reddit"
)

type filtersPayload struct {
	Limit    int     `json:"limit"`
	Hours    float64 `json:"hours"`
	Keywords string  `json:"keywords"`
}

type singleResponse struct {
	Success bool           `json:"success"`
	Posts   []reddit.Post  `json:"posts"`
	Total   int            `json:"total"`
	Source  string         `json:"source"`
	Filters filtersPayload `json:"filters"`
}

type multipleRequest struct {
	Sources  []string `json:"sources"`
	Keywords string   `json:"keywords"`
	Limit    *int     `json:"limit"`
	Hours    *float64 `json:"hours"`
	MinScore int      `json:"minScore"`
	Rule     string   `json:"rule"`
	Render   string   `json:"render"`
}

type multipleResponse struct {
	Success bool                     `json:"success"`
	Posts   []reddit.Post            `json:"posts"`
	Total   int                      `json:"total"`
	Sources []string                 `json:"sources"`
	Errors  []aggregator.SourceError `json:"errors"`
	Filters filtersPayload           `json:"filters"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "Reddit Backend API is running",
	})
}

func (s *Server) handleSingleSource(c echo.Context) error {
	source := c.Param("source")
	if unescaped, err := url.PathUnescape(source); err == nil {
		source = unescaped
	}
	limit := queryInt(c, "limit", s.defaults.Limit)
	hours := queryFloat(c, "hours", s.defaults.Hours)
	keywords := c.QueryParam("keywords")
	renderHTML := c.QueryParam("render") == "html"

	criteria := filter.Criteria{
		Keywords: filter.ParseKeywords(keywords),
		Hours:    &hours,
		MinScore: queryInt(c, "minScore", 0),
	}
	if ruleSrc := c.QueryParam("rule"); ruleSrc != "" {
		rule, err := filter.CompileRule(ruleSrc)
		if err != nil {
			return writeInvalidRequest(c, err.Error())
		}
		criteria.Rule = rule
	}

	subreddit, posts, err := s.aggregator.FetchOne(c.Request().Context(), source, limit, criteria, time.Now().UTC())
	if err != nil {
		return s.writeFetchError(c, err)
	}
	if renderHTML {
		s.renderBodies(posts)
	}

	return c.JSON(http.StatusOK, singleResponse{
		Success: true,
		Posts:   posts,
		Total:   len(posts),
		Source:  subreddit,
		Filters: filtersPayload{Limit: limit, Hours: hours, Keywords: keywords},
	})
}

func (s *Server) handleMultipleSources(c echo.Context) error {
	var req multipleRequest
	if err := c.Bind(&req); err != nil || len(req.Sources) == 0 {
		return writeInvalidRequest(c, "sources array is required")
	}

	limit := valueOrDefault(req.Limit, s.defaults.Limit)
	hours := valueOrDefault(req.Hours, s.defaults.Hours)

	criteria := filter.Criteria{
		Keywords: filter.ParseKeywords(req.Keywords),
		Hours:    &hours,
		MinScore: req.MinScore,
	}
	if req.Rule != "" {
		rule, err := filter.CompileRule(req.Rule)
		if err != nil {
			return writeInvalidRequest(c, err.Error())
		}
		criteria.Rule = rule
	}

	result, err := s.aggregator.FetchAll(c.Request().Context(), req.Sources, limit, criteria, time.Now().UTC())
	if err != nil {
		return s.writeFetchError(c, err)
	}
	if req.Render == "html" {
		s.renderBodies(result.Posts)
	}

	return c.JSON(http.StatusOK, multipleResponse{
		Success: true,
		Posts:   result.Posts,
		Total:   len(result.Posts),
		Sources: req.Sources,
		Errors:  result.Errors,
		Filters: filtersPayload{Limit: limit, Hours: hours, Keywords: req.Keywords},
	})
}

// renderBodies fills BodyHTML from the markdown self-text. A post whose body
// fails to render keeps an empty BodyHTML; the batch is never aborted.
func (s *Server) renderBodies(posts []reddit.Post) {
	for i := range posts {
		html, err := render.HTML(posts[i].BodyText)
		if err != nil {
			s.logger.Warn("Markdown rendering failed", slog.String("post_id", posts[i].ID), slog.String("error", err.Error()))
			continue
		}
		posts[i].BodyHTML = html
	}
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func queryFloat(c echo.Context, name string, fallback float64) float64 {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func valueOrDefault[T any](ptr *T, fallback T) T {
	if ptr == nil {
		return fallback
	}
	return *ptr
}
