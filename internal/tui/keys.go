package tui

import (
	"github.com/mum4k/termdash/keyboard"

	"github.com/jgoulah/energyviz/internal/dashboard"
	"github.com/jgoulah/energyviz/internal/filter"
	"github.com/jgoulah/energyviz/pkg/models"
)

// Action is what the run loop must do after a key press
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionRefetch
)

// HandleKey applies a key press to the view. State changes go through the
// view so its change callback schedules the redraw.
func HandleKey(k keyboard.Key, v *dashboard.View) Action {
	switch k {
	case 'q', 'Q':
		return ActionQuit
	case 'r', 'R':
		return ActionRefetch
	case 'c':
		v.Update(func(s *filter.State) { s.ToggleSeries(models.Consumption) })
	case 'g':
		v.Update(func(s *filter.State) { s.ToggleSeries(models.Generation) })
	case keyboard.KeyArrowLeft:
		v.Update(func(s *filter.State) { s.MoveStart(-1) })
	case keyboard.KeyArrowRight:
		v.Update(func(s *filter.State) { s.MoveStart(1) })
	case '[':
		v.Update(func(s *filter.State) { s.MoveEnd(-1) })
	case ']':
		v.Update(func(s *filter.State) { s.MoveEnd(1) })
	case keyboard.KeyEsc:
		v.Update(func(s *filter.State) { s.ResetRange() })
	case 'a':
		v.Update(func(s *filter.State) { s.ConsumptionLocations.ToggleAll() })
	case 'A':
		v.Update(func(s *filter.State) { s.GenerationLocations.ToggleAll() })
	default:
		if k >= '1' && k <= '9' {
			n := int(k - '1')
			v.Update(func(s *filter.State) {
				known := s.ConsumptionLocations.Known()
				if n < len(known) {
					s.ConsumptionLocations.Toggle(known[n])
				}
			})
		}
	}
	return ActionNone
}
