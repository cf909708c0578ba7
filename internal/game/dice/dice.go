// Package dice provides the randomness abstraction and the pity-adjusted
// six-sided die used for board game turns.
package dice

// Faces is the number of faces on the game die. A throw of Faces is a "hit".
const Faces = 6

// DefaultPityThreshold is the number of consecutive misses after which the
// next throw is forced to Faces.
const DefaultPityThreshold = 5

// Source is the randomness provider for dice throws.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Outcome is the result of one throw under the pity rule.
type Outcome struct {
	// Value is the face shown, in [1, Faces].
	Value int
	// Forced is true when the pity rule produced Value instead of the Source.
	Forced bool
	// Misses is the consecutive non-Faces count after this throw.
	Misses int
}

// Throw rolls one die for a player who has already missed misses times in a row.
//
// When misses has reached threshold the throw is forced to Faces without
// consulting src. Otherwise the value is drawn uniformly from [1, Faces];
// a Faces resets the streak and anything else extends it.
//
// Precondition: src must be non-nil; threshold must be >= 1; misses must be >= 0.
// Postcondition: Outcome.Misses <= threshold and Outcome.Misses == 0 iff Value == Faces.
func Throw(src Source, misses, threshold int) Outcome {
	if misses >= threshold {
		return Outcome{Value: Faces, Forced: true}
	}
	v := src.Intn(Faces) + 1
	if v == Faces {
		return Outcome{Value: v}
	}
	return Outcome{Value: v, Misses: misses + 1}
}
