package model

// SeatState is the mutually exclusive state of a seat on the map.
type SeatState string

const (
    SeatAvailable SeatState = "available"
    SeatOccupied  SeatState = "occupied"
    SeatSelected  SeatState = "selected"
)

// SeatView is a single cell of a rendered seat map.  Row and Column are
// zero-based positions in the grid; Label is the human readable form
// such as "C7".
type SeatView struct {
    ID     int       `json:"id"`
    Row    int       `json:"row"`
    Column int       `json:"column"`
    Label  string    `json:"label"`
    State  SeatState `json:"state"`
}
