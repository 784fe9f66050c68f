// Package demo generates synthetic consumption and generation records for
// trying the dashboards without a backend.
package demo

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/jgoulah/energyviz/internal/dateindex"
	"github.com/jgoulah/energyviz/pkg/models"
)

type system struct {
	id       string
	capacity float64
}

type consumer struct {
	id       string
	minPrice float64
	maxPrice float64
}

type generationSite struct {
	country string
	sources map[string][]system
}

type consumptionSite struct {
	city    string
	sectors map[string][]consumer
}

var generationSites = []generationSite{
	{"USA", map[string][]system{
		"wind":    {{"SYS-USA-WIND-1", 100}, {"SYS-USA-WIND-2", 100}},
		"solar":   {{"SYS-USA-SOLAR-1", 80}, {"SYS-USA-SOLAR-2", 85}, {"SYS-USA-SOLAR-3", 90}},
		"biomass": {{"SYS-USA-BIO-1", 70}},
	}},
	{"UK", map[string][]system{
		"wind":  {{"SYS-UK-WIND-1", 90}, {"SYS-UK-WIND-2", 85}, {"SYS-UK-WIND-3", 80}},
		"solar": {{"SYS-UK-SOLAR-1", 75}, {"SYS-UK-SOLAR-2", 70}},
	}},
	{"Australia", map[string][]system{
		"wind":    {{"SYS-AUS-WIND-1", 95}},
		"solar":   {{"SYS-AUS-SOLAR-1", 100}, {"SYS-AUS-SOLAR-2", 90}},
		"biomass": {{"SYS-AUS-BIO-1", 60}},
	}},
}

var consumptionSites = []consumptionSite{
	{"New York", map[string][]consumer{
		"residential": {{"CON-USA-RES-1", 0.10, 0.20}, {"CON-USA-RES-2", 0.10, 0.20}},
		"industrial":  {{"CON-USA-IND-1", 0.12, 0.25}},
	}},
	{"Texas", map[string][]consumer{
		"commercial":  {{"CON-USA-COM-1", 0.15, 0.30}},
		"residential": {{"CON-USA-RES-3", 0.10, 0.20}},
	}},
	{"London", map[string][]consumer{
		"residential": {{"CON-UK-RES-1", 0.10, 0.20}},
		"commercial":  {{"CON-UK-COM-1", 0.15, 0.30}},
	}},
	{"Manchester", map[string][]consumer{
		"industrial": {{"CON-UK-IND-1", 0.12, 0.25}},
	}},
	{"Sydney", map[string][]consumer{
		"residential": {{"CON-AUS-RES-1", 0.10, 0.20}},
		"commercial":  {{"CON-AUS-COM-1", 0.15, 0.30}},
	}},
	{"Melbourne", map[string][]consumer{
		"industrial": {{"CON-AUS-IND-1", 0.12, 0.25}},
	}},
}

// Map iteration order is random; these keep output reproducible for a seed
var (
	sourceOrder = []string{"wind", "solar", "biomass"}
	sectorOrder = []string{"residential", "commercial", "industrial"}
)

// Generator produces one record per system or consumer per day
type Generator struct {
	rng   *rand.Rand
	start time.Time
}

// New creates a generator. The same seed yields the same energy values.
func New(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Generate returns both collections for every day of dates. Capacities grow
// month over month from the first day; inactive units report near zero.
func (g *Generator) Generate(dates dateindex.Index) (consumption, generation []models.EnergyRecord, err error) {
	if dates.Len() == 0 {
		return []models.EnergyRecord{}, []models.EnergyRecord{}, nil
	}
	g.start, err = time.Parse(models.DayLayout, dates.At(0))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing first day: %w", err)
	}

	base := make(map[string]float64)
	for _, site := range consumptionSites {
		for _, sector := range sectorOrder {
			for _, c := range site.sectors[sector] {
				base[c.id] = float64(30 + g.rng.IntN(41))
			}
		}
	}

	for _, day := range dates {
		d, err := time.Parse(models.DayLayout, day)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing day %s: %w", day, err)
		}
		ts := day + "T23:59:00"
		months := g.monthIndex(d)

		for _, site := range generationSites {
			for _, source := range sourceOrder {
				systems := site.sources[source]
				active := g.activeSet(len(systems))
				for i, s := range systems {
					capacity := s.capacity + months*0.02*s.capacity
					factor := g.uniform(0, 0.1)
					if active[i] {
						factor = g.uniform(0.85, 1.0)
					}
					generation = append(generation, models.EnergyRecord{
						ID:        uuid.NewString(),
						Timestamp: ts,
						EnergyKWh: round(factor*capacity, 2),
						Location:  site.country,
						Source:    source,
						SystemID:  s.id,
					})
				}
			}
		}

		for _, site := range consumptionSites {
			for _, sector := range sectorOrder {
				consumers := site.sectors[sector]
				active := g.activeSet(len(consumers))
				for i, c := range consumers {
					rec := models.EnergyRecord{
						ID:         uuid.NewString(),
						Timestamp:  ts,
						Location:   site.city,
						Sector:     sector,
						ConsumerID: c.id,
					}
					if active[i] {
						capacity := base[c.id] + months*0.01*base[c.id]
						rec.EnergyKWh = round(g.uniform(0.8, 1.0)*capacity, 2)
						rec.Price = round(g.uniform(c.minPrice, c.maxPrice), 4)
						rec.Total = round(rec.EnergyKWh*rec.Price, 2)
					}
					consumption = append(consumption, rec)
				}
			}
		}
	}
	return consumption, generation, nil
}

func (g *Generator) monthIndex(d time.Time) float64 {
	return float64((d.Year()-g.start.Year())*12 + int(d.Month()) - int(g.start.Month()))
}

// activeSet marks a random non-empty subset of n units as active
func (g *Generator) activeSet(n int) []bool {
	active := make([]bool, n)
	if n == 0 {
		return active
	}
	k := 1 + g.rng.IntN(n)
	for _, i := range g.rng.Perm(n)[:k] {
		active[i] = true
	}
	return active
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func round(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}
