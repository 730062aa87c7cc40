package wizard

import (
	"fmt"
	"slices"

	"github.com/iliyamo/event-booking-wizard/internal/model"
)

const (
	// SeatCount is the number of seats on the map, ids 1..SeatCount.
	SeatCount = 100
	// SeatsPerRow lays the map out as 10 rows of 10.
	SeatsPerRow = 10
)

// SeatMap partitions seats into occupied, selected and available.
// Selected keeps the order in which seats were picked.
type SeatMap struct {
	Occupied []int `json:"occupied"`
	Selected []int `json:"selected"`
	Limit    int   `json:"limit"`
}

// NewSeatMap builds a map with the given occupied seats.  Ids outside the
// grid are ignored.
func NewSeatMap(occupied []int) *SeatMap {
	occ := make([]int, 0, len(occupied))
	for _, id := range occupied {
		if id >= 1 && id <= SeatCount && !slices.Contains(occ, id) {
			occ = append(occ, id)
		}
	}
	slices.Sort(occ)
	return &SeatMap{Occupied: occ, Selected: []int{}}
}

// SetLimit sets the selection ceiling, dropping the most recent picks
// when the selection is already larger.
func (m *SeatMap) SetLimit(n int) {
	m.Limit = max(n, 0)
	if len(m.Selected) > m.Limit {
		m.Selected = m.Selected[:m.Limit]
	}
}

// SetOccupied replaces the occupied set and drops any selected seat that
// became occupied.  It returns the dropped seat ids.
func (m *SeatMap) SetOccupied(occupied []int) []int {
	fresh := NewSeatMap(occupied)
	m.Occupied = fresh.Occupied
	var dropped []int
	kept := m.Selected[:0]
	for _, id := range m.Selected {
		if m.IsOccupied(id) {
			dropped = append(dropped, id)
			continue
		}
		kept = append(kept, id)
	}
	m.Selected = kept
	return dropped
}

// IsOccupied reports whether id is sold.
func (m *SeatMap) IsOccupied(id int) bool {
	_, found := slices.BinarySearch(m.Occupied, id)
	return found
}

// SelectSeat toggles id.  It returns true when the seat is now selected.
// Deselecting is always allowed.
func (m *SeatMap) SelectSeat(id int) (bool, error) {
	if id < 1 || id > SeatCount {
		return false, ErrSeatOutOfRange
	}
	if i := slices.Index(m.Selected, id); i >= 0 {
		m.Selected = slices.Delete(m.Selected, i, i+1)
		return false, nil
	}
	if m.IsOccupied(id) {
		return false, ErrSeatOccupied
	}
	if len(m.Selected) >= m.Limit {
		return false, ErrSelectionFull
	}
	m.Selected = append(m.Selected, id)
	return true, nil
}

// State returns the state of id.
func (m *SeatMap) State(id int) model.SeatState {
	switch {
	case m.IsOccupied(id):
		return model.SeatOccupied
	case slices.Contains(m.Selected, id):
		return model.SeatSelected
	}
	return model.SeatAvailable
}

// SelectedSorted returns the selected ids in ascending order.
func (m *SeatMap) SelectedSorted() []int {
	out := slices.Clone(m.Selected)
	slices.Sort(out)
	return out
}

// View renders every seat of the grid.
func (m *SeatMap) View() []model.SeatView {
	out := make([]model.SeatView, 0, SeatCount)
	for id := 1; id <= SeatCount; id++ {
		out = append(out, model.SeatView{
			ID:     id,
			Row:    (id - 1) / SeatsPerRow,
			Column: (id - 1) % SeatsPerRow,
			Label:  SeatLabel(id),
			State:  m.State(id),
		})
	}
	return out
}

// SeatLabel converts a seat id to its row letter and number, 1 -> "A1",
// 23 -> "C3".
func SeatLabel(id int) string {
	if id < 1 || id > SeatCount {
		return ""
	}
	row := (id - 1) / SeatsPerRow
	return fmt.Sprintf("%c%d", 'A'+row, (id-1)%SeatsPerRow+1)
}
