package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jgoulah/energyviz/internal/aggregate"
	"github.com/jgoulah/energyviz/internal/render"
	"github.com/jgoulah/energyviz/pkg/models"
)

// health handles GET /health
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// listDates handles GET /api/v1/dates
func (s *Server) listDates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"dates":         s.dates,
		"count":         s.dates.Len(),
		"default_range": s.describeRange(s.defaultRange),
	})
}

// listFilters handles GET /api/v1/filters
func (s *Server) listFilters(c *gin.Context) {
	raw := s.cache.Get(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"consumption_locations": models.Distinct(raw.Consumption, models.FieldLocation),
		"generation_locations":  models.Distinct(raw.Generation, models.FieldLocation),
		"sectors":               models.Distinct(raw.Consumption, models.FieldSector),
		"sources":               models.Distinct(raw.Generation, models.FieldSource),
	})
}

// series handles GET /api/v1/series
func (s *Server) series(c *gin.Context) {
	data, ok := s.aggregate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, data)
}

// dashboard handles GET /
func (s *Server) dashboard(c *gin.Context) {
	data, ok := s.aggregate(c)
	if !ok {
		return
	}
	page, err := render.HTML(data)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "RENDER_ERROR", err.Error())
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// refresh handles POST /api/v1/refresh
func (s *Server) refresh(c *gin.Context) {
	results := s.cache.Refresh(c.Request.Context())

	type collectionResult struct {
		Collection models.Collection `json:"collection"`
		Count      int               `json:"count"`
		Applied    bool              `json:"applied"`
		Error      string            `json:"error,omitempty"`
	}
	out := make([]collectionResult, 0, len(results))
	for _, r := range results {
		res := collectionResult{Collection: r.Collection, Count: r.Count, Applied: r.Applied}
		if r.Err != nil {
			res.Error = r.Err.Error()
		}
		out = append(out, res)
	}
	c.JSON(http.StatusOK, gin.H{"results": out})
}

func (s *Server) aggregate(c *gin.Context) (aggregate.SeriesData, bool) {
	raw := s.cache.Get(c.Request.Context())
	st, err := s.stateFromQuery(c, raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return aggregate.SeriesData{}, false
	}
	return aggregate.Aggregate(raw, st), true
}
