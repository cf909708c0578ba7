package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/ludo/internal/game/dice"
)

// neverSix always returns a value that maps to a face below six.
type neverSix struct{ val int }

func (n neverSix) Intn(k int) int { return n.val % (k - 1) }

// panicSource fails the test if the pity rule consults it.
type panicSource struct{}

func (panicSource) Intn(int) int { panic("source must not be consulted") }

func TestThrow_HitResetsStreak(t *testing.T) {
	out := dice.Throw(dice.NewSequenceSource(5), 3, dice.DefaultPityThreshold)
	assert.Equal(t, 6, out.Value)
	assert.False(t, out.Forced)
	assert.Equal(t, 0, out.Misses)
}

func TestThrow_MissExtendsStreak(t *testing.T) {
	out := dice.Throw(dice.NewSequenceSource(1), 2, dice.DefaultPityThreshold)
	assert.Equal(t, 2, out.Value)
	assert.False(t, out.Forced)
	assert.Equal(t, 3, out.Misses)
}

func TestThrow_ForcedAtThreshold(t *testing.T) {
	out := dice.Throw(panicSource{}, 5, dice.DefaultPityThreshold)
	assert.Equal(t, dice.Faces, out.Value)
	assert.True(t, out.Forced)
	assert.Equal(t, 0, out.Misses)
}

// TestThrow_PityScenario drives five synthetic misses and expects the sixth throw to be six.
func TestThrow_PityScenario(t *testing.T) {
	src := neverSix{val: 2}
	misses := 0
	for i := 0; i < 5; i++ {
		out := dice.Throw(src, misses, dice.DefaultPityThreshold)
		require.Less(t, out.Value, dice.Faces)
		require.False(t, out.Forced)
		misses = out.Misses
	}
	require.Equal(t, 5, misses)

	out := dice.Throw(src, misses, dice.DefaultPityThreshold)
	assert.Equal(t, 6, out.Value)
	assert.True(t, out.Forced)
	assert.Equal(t, 0, out.Misses)
}

func TestCryptoSource_Range(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 200; i++ {
		v := src.Intn(dice.Faces)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, dice.Faces)
	}
}

func TestCryptoSource_PanicsOnNonPositive(t *testing.T) {
	assert.Panics(t, func() { dice.NewCryptoSource().Intn(0) })
}

func TestSequenceSource_Cycles(t *testing.T) {
	src := dice.NewSequenceSource(0, 7)
	assert.Equal(t, 0, src.Intn(6))
	assert.Equal(t, 1, src.Intn(6))
	assert.Equal(t, 0, src.Intn(6))
}

func TestLoggedRoller_LogsEachRoll(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := dice.NewLoggedRoller(dice.NewSequenceSource(0), 0, zap.New(core))
	assert.Equal(t, dice.DefaultPityThreshold, r.Threshold())

	out := r.Roll(1, zap.String("conn_id", "c1"))
	assert.Equal(t, 1, out.Value)
	assert.Equal(t, 2, out.Misses)

	entries := logs.FilterMessage("dice roll").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "c1", ctx["conn_id"])
	assert.Equal(t, int64(1), ctx["value"])
	assert.Equal(t, false, ctx["forced"])
}

// Property: with any source, no player ever accumulates more than threshold
// consecutive misses, and the throw after threshold misses is always six.
func TestPropertyFairnessBound(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		threshold := rapid.IntRange(1, 10).Draw(rt, "threshold")
		draws := rapid.SliceOfN(rapid.IntRange(0, 5), 1, 200).Draw(rt, "draws")
		src := dice.NewSequenceSource(draws...)

		misses := 0
		for i := 0; i < len(draws)*2; i++ {
			out := dice.Throw(src, misses, threshold)
			if out.Value < 1 || out.Value > dice.Faces {
				rt.Fatalf("value %d out of range", out.Value)
			}
			if misses >= threshold && out.Value != dice.Faces {
				rt.Fatalf("throw after %d misses was %d, want %d", misses, out.Value, dice.Faces)
			}
			if out.Misses > threshold {
				rt.Fatalf("streak %d exceeds threshold %d", out.Misses, threshold)
			}
			if (out.Value == dice.Faces) != (out.Misses == 0) {
				rt.Fatalf("streak %d inconsistent with value %d", out.Misses, out.Value)
			}
			misses = out.Misses
		}
	})
}
