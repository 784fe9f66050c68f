package server

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jgoulah/energyviz/internal/aggregate"
	"github.com/jgoulah/energyviz/internal/dateindex"
	"github.com/jgoulah/energyviz/internal/filter"
	"github.com/jgoulah/energyviz/pkg/models"
)

// stateFromQuery builds a filter state for the request. Selections start as
// "all" for the given records and are narrowed by the query.
func (s *Server) stateFromQuery(c *gin.Context, raw aggregate.Records) (*filter.State, error) {
	st := filter.New(s.dates, s.defaultRange)
	st.FilterByLocation = s.filterByLocation
	for _, col := range models.Collections {
		st.Observe(col, raw.Get(col))
	}

	r := st.Range
	bounds := []struct {
		dateParam  string
		indexParam string
		target     *int
	}{
		{"start", "start_index", &r.Start},
		{"end", "end_index", &r.End},
	}
	for _, b := range bounds {
		date, hasDate := c.GetQuery(b.dateParam)
		index, hasIndex := c.GetQuery(b.indexParam)
		if hasDate && hasIndex {
			return nil, fmt.Errorf("%s and %s are mutually exclusive", b.dateParam, b.indexParam)
		}
		switch {
		case hasDate && date != "":
			i, err := s.dayPosition(date)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", b.dateParam, err)
			}
			*b.target = i
		case hasIndex && index != "":
			i, err := s.indexPosition(index)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", b.indexParam, err)
			}
			*b.target = i
		}
	}
	if s.dates.Len() > 0 && !s.dates.Valid(r) {
		start, end := s.dates.Bounds(r)
		return nil, fmt.Errorf("range start %s is after end %s", start, end)
	}
	st.SetRange(r)

	if v, ok := c.GetQuery("show"); ok {
		st.ShowConsumption, st.ShowGeneration = false, false
		for _, name := range splitList(v) {
			col, err := models.ParseCollection(name)
			if err != nil {
				return nil, fmt.Errorf("show: %w", err)
			}
			if !st.Visible(col) {
				st.ToggleSeries(col)
			}
		}
	}

	narrow := map[string]*filter.Selection{
		"consumption_locations": &st.ConsumptionLocations,
		"generation_locations":  &st.GenerationLocations,
		"sectors":               &st.Sectors,
		"sources":               &st.Sources,
	}
	for param, sel := range narrow {
		if v, ok := c.GetQuery(param); ok {
			sel.Set(splitList(v))
		}
	}

	return st, nil
}

// dayPosition resolves a YYYY-MM-DD day to its index
func (s *Server) dayPosition(v string) (int, error) {
	if _, err := time.Parse(models.DayLayout, v); err != nil {
		return 0, fmt.Errorf("%q is not a YYYY-MM-DD date", v)
	}
	i := s.dates.Find(v)
	if i < 0 {
		first, last := s.dates.Bounds(s.dates.Full())
		return 0, fmt.Errorf("%s is not between %s and %s", v, first, last)
	}
	return i, nil
}

// indexPosition checks a raw index into the date index
func (s *Server) indexPosition(v string) (int, error) {
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", v)
	}
	if i < 0 || i >= s.dates.Len() {
		return 0, fmt.Errorf("index %d out of range [0, %d]", i, s.dates.Len()-1)
	}
	return i, nil
}

func splitList(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// rangeResponse is the wire form of a range with its days
type rangeResponse struct {
	dateindex.Range
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (s *Server) describeRange(r dateindex.Range) rangeResponse {
	start, end := s.dates.Bounds(r)
	return rangeResponse{Range: r, StartDate: start, EndDate: end}
}
