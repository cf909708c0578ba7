package room

// Color is a seat color on the board.
type Color string

// Seat colors in seat order.
const (
	Red    Color = "red"
	Green  Color = "green"
	Yellow Color = "yellow"
	Blue   Color = "blue"
)

// Colors lists seat colors by position. players[i] plays Colors[i]; the
// binding is positional only, so a player who leaves and rejoins may get a
// different color.
var Colors = [...]Color{Red, Green, Yellow, Blue}

// MaxSeats is the largest room capacity the board supports.
const MaxSeats = len(Colors)

// ColorAt returns the color for seat index i.
//
// Postcondition: Returns ("", false) when i is outside [0, MaxSeats).
func ColorAt(i int) (Color, bool) {
	if i < 0 || i >= MaxSeats {
		return "", false
	}
	return Colors[i], true
}
