package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/piwi3910/guillocut/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(name string, w, h float64) model.Item {
	return model.Item{ID: name, Name: name, Width: w, Height: h}
}

func TestPack_RotatesItemToFit(t *testing.T) {
	result, err := Pack(model.Input{
		BinWidth:  40,
		BinHeight: 30,
		Items:     []model.Item{item("test", 30, 40)},
	}, model.DefaultPackConfig())

	require.NoError(t, err)
	require.Len(t, result.Bins, 1)
	require.Len(t, result.Bins[0].Placements, 1)

	p := result.Bins[0].Placements[0]
	assert.Equal(t, 1, p.Bin)
	assert.Equal(t, "test", p.Item.Name)
	assert.Equal(t, 40.0, p.Width)
	assert.Equal(t, 30.0, p.Height)
	assert.Equal(t, 0.0, p.X)
	assert.Equal(t, 0.0, p.Y)
	assert.True(t, p.Rotated)
	// The input item keeps its declared dimensions.
	assert.Equal(t, 30.0, p.Item.Width)
	assert.Equal(t, 40.0, p.Item.Height)
}

func TestPack_SmallerItemFirstThenBelow(t *testing.T) {
	result, err := Pack(model.Input{
		BinWidth:  40,
		BinHeight: 30,
		Items: []model.Item{
			item("test", 20, 20),
			item("test2", 15, 5),
		},
	}, model.DefaultPackConfig())

	require.NoError(t, err)
	require.Len(t, result.Bins, 1)
	placements := result.Bins[0].Placements
	require.Len(t, placements, 2)

	assert.Equal(t, "test2", placements[0].Item.Name)
	assert.Equal(t, model.Rect{X: 0, Y: 0, Width: 15, Height: 5}, placements[0].Rect())
	assert.Equal(t, "test", placements[1].Item.Name)
	assert.Equal(t, model.Rect{X: 0, Y: 5, Width: 20, Height: 20}, placements[1].Rect())
}

func TestPack_KerfOffsetsNextItem(t *testing.T) {
	cfg := model.DefaultPackConfig()
	cfg.KerfSize = 2

	result, err := Pack(model.Input{
		BinWidth:  30,
		BinHeight: 30,
		Items: []model.Item{
			item("test", 20, 20),
			item("kerfed offcut", 5, 5),
		},
	}, cfg)

	require.NoError(t, err)
	require.Len(t, result.Bins, 1)
	placements := result.Bins[0].Placements
	require.Len(t, placements, 2)

	assert.Equal(t, "kerfed offcut", placements[0].Item.Name)
	assert.Equal(t, model.Rect{X: 0, Y: 0, Width: 5, Height: 5}, placements[0].Rect())
	assert.Equal(t, "test", placements[1].Item.Name)
	assert.Equal(t, model.Rect{X: 0, Y: 7, Width: 20, Height: 20}, placements[1].Rect())
}

func TestPack_RotationToggle(t *testing.T) {
	in := model.Input{
		BinWidth:  80,
		BinHeight: 40,
		Items: []model.Item{
			item("40x20", 40, 20),
			item("40x20", 40, 20),
		},
	}
	cfg := model.PackConfig{
		KerfSize:          2,
		SortStrategy:      model.SortArea,
		SplitStrategy:     model.SplitShortAxis,
		SelectionStrategy: model.SelectBestAreaFit,
	}

	rotated, err := Pack(in, cfg)
	require.NoError(t, err)
	assert.Len(t, rotated.Bins, 1, "rotating the second piece fits it beside the first")

	cfg.NoRotation = true
	fixed, err := Pack(in, cfg)
	require.NoError(t, err)
	assert.Len(t, fixed.Bins, 2)
	for _, b := range fixed.Bins {
		for _, p := range b.Placements {
			assert.False(t, p.Rotated)
		}
	}
}

func TestPack_ItemRotationFlagIsHonoured(t *testing.T) {
	a := item("a", 40, 20)
	b := item("b", 40, 20)
	b.LockRotation = true

	cfg := model.DefaultPackConfig()
	cfg.KerfSize = 2
	result, err := Pack(model.Input{BinWidth: 80, BinHeight: 40, Items: []model.Item{a, b}}, cfg)

	require.NoError(t, err)
	assert.Len(t, result.Bins, 2)
}

func TestPack_TwoSquaresInSmallBin(t *testing.T) {
	// 20 + 20 exceeds the 30 wide bin, so the second square opens a new bin.
	// Containment wins over placing the pair at (0,0) and (20,0).
	result, err := Pack(model.Input{
		BinWidth:  30,
		BinHeight: 30,
		Items: []model.Item{
			item("test2", 20, 20),
			item("test", 20, 20),
		},
	}, model.DefaultPackConfig())

	require.NoError(t, err)
	require.Len(t, result.Bins, 2)
	assert.Equal(t, "test2", result.Bins[0].Placements[0].Item.Name)
	assert.Equal(t, "test", result.Bins[1].Placements[0].Item.Name)
	assert.Equal(t, 2, result.Bins[1].Placements[0].Bin)
	assert.Equal(t, 0.0, result.Bins[1].Placements[0].X)
	assert.Equal(t, 0.0, result.Bins[1].Placements[0].Y)
}

func TestPack_TwoSquaresSideBySide(t *testing.T) {
	result, err := Pack(model.Input{
		BinWidth:  40,
		BinHeight: 30,
		Items: []model.Item{
			item("test2", 20, 20),
			item("test", 20, 20),
		},
	}, model.DefaultPackConfig())

	require.NoError(t, err)
	require.Len(t, result.Bins, 1)
	placements := result.Bins[0].Placements
	require.Len(t, placements, 2)
	assert.Equal(t, model.Rect{X: 0, Y: 0, Width: 20, Height: 20}, placements[0].Rect())
	assert.Equal(t, model.Rect{X: 20, Y: 0, Width: 20, Height: 20}, placements[1].Rect())
}

func TestPack_OversizedItemFailsWholeRun(t *testing.T) {
	result, err := Pack(model.Input{
		BinWidth:  30,
		BinHeight: 30,
		Items: []model.Item{
			item("fine", 10, 10),
			item("huge", 40, 40),
		},
	}, model.DefaultPackConfig())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOversizedItem)
	assert.Contains(t, err.Error(), "exceeds bin dimensions")
	assert.Contains(t, err.Error(), "huge")
	assert.Empty(t, result.Bins, "no partial output")

	var oe *OversizedItemError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, 1, oe.Index)
	assert.False(t, oe.Malformed)
}

func TestPack_OversizedWhenRotationDisabled(t *testing.T) {
	in := model.Input{BinWidth: 40, BinHeight: 30, Items: []model.Item{item("tall", 30, 40)}}

	cfg := model.DefaultPackConfig()
	cfg.NoRotation = true
	_, err := Pack(in, cfg)
	assert.ErrorIs(t, err, ErrOversizedItem)

	locked := item("tall", 30, 40)
	locked.LockRotation = true
	_, err = Pack(model.Input{BinWidth: 40, BinHeight: 30, Items: []model.Item{locked}}, model.DefaultPackConfig())
	assert.ErrorIs(t, err, ErrOversizedItem)
}

func TestPack_MalformedItemRejected(t *testing.T) {
	for _, it := range []model.Item{item("zero", 0, 10), item("negative", 10, -1)} {
		_, err := Pack(model.Input{BinWidth: 30, BinHeight: 30, Items: []model.Item{it}}, model.DefaultPackConfig())
		require.Error(t, err, it.Name)
		assert.ErrorIs(t, err, ErrOversizedItem)

		var oe *OversizedItemError
		require.ErrorAs(t, err, &oe)
		assert.True(t, oe.Malformed)
	}
}

func TestPack_InvalidBin(t *testing.T) {
	_, err := Pack(model.Input{BinWidth: 0, BinHeight: 30}, model.DefaultPackConfig())
	assert.ErrorIs(t, err, ErrInvalidBin)
}

func TestPack_InvalidConfig(t *testing.T) {
	in := model.Input{BinWidth: 30, BinHeight: 30, Items: []model.Item{item("a", 10, 10)}}

	cfg := model.DefaultPackConfig()
	cfg.KerfSize = -1
	_, err := Pack(in, cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg = model.DefaultPackConfig()
	cfg.SortStrategy = "volume"
	_, err = Pack(in, cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestPack_ZeroValueConfigUsesDefaultStrategies(t *testing.T) {
	in := model.Input{BinWidth: 40, BinHeight: 30, Items: []model.Item{item("a", 10, 10)}}
	result, err := Pack(in, model.PackConfig{})
	require.NoError(t, err)
	assert.Len(t, result.Bins, 1)
}

func TestPack_ZeroValueItemAndConfigRotate(t *testing.T) {
	in := model.Input{BinWidth: 40, BinHeight: 30, Items: []model.Item{{Name: "test", Width: 30, Height: 40}}}

	for _, cfg := range []model.PackConfig{{}, {KerfSize: 2}, model.DefaultPackConfig()} {
		result, err := Pack(in, cfg)
		require.NoError(t, err, cfg.String())
		require.Len(t, result.Bins, 1)
		require.Len(t, result.Bins[0].Placements, 1)

		p := result.Bins[0].Placements[0]
		assert.True(t, p.Rotated)
		assert.Equal(t, model.Rect{X: 0, Y: 0, Width: 40, Height: 30}, p.Rect())
	}
}

func TestPack_NonFiniteValuesRejected(t *testing.T) {
	inf := math.Inf(1)
	square := []model.Item{item("a", 10, 10), item("b", 10, 10)}

	tests := []struct {
		name string
		in   model.Input
		kerf float64
		want error
	}{
		{"NaN kerf", model.Input{BinWidth: 30, BinHeight: 30, Items: square}, math.NaN(), ErrInvalidConfig},
		{"infinite kerf", model.Input{BinWidth: 30, BinHeight: 30, Items: square}, inf, ErrInvalidConfig},
		{"negative infinite kerf", model.Input{BinWidth: 30, BinHeight: 30, Items: square}, math.Inf(-1), ErrInvalidConfig},
		{"NaN bin", model.Input{BinWidth: math.NaN(), BinHeight: 30, Items: square}, 0, ErrInvalidBin},
		{"infinite bin", model.Input{BinWidth: inf, BinHeight: 30, Items: square}, 0, ErrInvalidBin},
		{"infinite item", model.Input{BinWidth: 30, BinHeight: 30, Items: []model.Item{item("wide", inf, 10)}}, 0, ErrOversizedItem},
		{"NaN item", model.Input{BinWidth: 30, BinHeight: 30, Items: []model.Item{item("odd", 10, math.NaN())}}, 0, ErrOversizedItem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := model.DefaultPackConfig()
			cfg.KerfSize = tt.kerf
			_, err := Pack(tt.in, cfg)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("infinite bin and item", func(t *testing.T) {
		in := model.Input{BinWidth: inf, BinHeight: 30, Items: []model.Item{item("wide", inf, 10)}}
		_, err := Pack(in, model.DefaultPackConfig())
		assert.ErrorIs(t, err, ErrInvalidBin)
	})
}

func TestPack_AlternateStrategySpellings(t *testing.T) {
	cfg := model.PackConfig{
		SortStrategy:      "LongSide",
		SortDirection:     "DESC",
		SplitStrategy:     "LongAxisSplit",
		SelectionStrategy: "BEST_SHORT_SIDE_FIT",
	}
	in := model.Input{BinWidth: 100, BinHeight: 100, Items: []model.Item{item("a", 10, 50), item("b", 60, 20)}}

	result, err := Pack(in, cfg)
	require.NoError(t, err)
	assert.Equal(t, "b", result.Bins[0].Placements[0].Item.Name)
}

func TestPack_EmptyInput(t *testing.T) {
	result, err := Pack(model.Input{BinWidth: 30, BinHeight: 30}, model.DefaultPackConfig())
	require.NoError(t, err)
	assert.Empty(t, result.Bins)
	assert.Equal(t, 0, result.PlacementCount())
}

func TestPack_FreeRectsReportedPerBin(t *testing.T) {
	result, err := Pack(model.Input{
		BinWidth:  100,
		BinHeight: 50,
		Items:     []model.Item{item("a", 40, 50)},
	}, model.DefaultPackConfig())

	require.NoError(t, err)
	require.Len(t, result.Bins, 1)
	assert.Equal(t, []model.Rect{{X: 40, Y: 0, Width: 60, Height: 50}}, result.Bins[0].FreeRects)
}

func TestPack_InputItemsNotReordered(t *testing.T) {
	items := []model.Item{item("big", 20, 20), item("small", 5, 5)}
	_, err := Pack(model.Input{BinWidth: 30, BinHeight: 30, Items: items}, model.DefaultPackConfig())
	require.NoError(t, err)
	assert.Equal(t, "big", items[0].Name)
	assert.Equal(t, "small", items[1].Name)
}

func TestPack_Deterministic(t *testing.T) {
	in := model.Input{BinWidth: 1220, BinHeight: 610, Items: randomItems(rand.New(rand.NewSource(7)), 60, 600)}
	cfg := model.DefaultPackConfig()
	cfg.KerfSize = 3

	first, err := Pack(in, cfg)
	require.NoError(t, err)
	second, err := Pack(in, cfg)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

// randomItems draws integer-sized items so that kerf arithmetic stays exact.
func randomItems(rng *rand.Rand, n int, maxSide int) []model.Item {
	items := make([]model.Item, n)
	for i := range items {
		w := float64(1 + rng.Intn(maxSide))
		h := float64(1 + rng.Intn(maxSide))
		items[i] = item(fmt.Sprintf("p%d", i), w, h)
		items[i].LockRotation = rng.Intn(5) == 0
	}
	return items
}

func allConfigs() []model.PackConfig {
	var out []model.PackConfig
	for _, sortBy := range model.SortStrategies() {
		for _, dir := range []model.SortDirection{model.SortAsc, model.SortDesc} {
			for _, split := range model.SplitStrategies() {
				for _, sel := range model.SelectionStrategies() {
					for _, kerf := range []float64{0, 3} {
						for _, rot := range []bool{true, false} {
							out = append(out, model.PackConfig{
								KerfSize:          kerf,
								SortStrategy:      sortBy,
								SortDirection:     dir,
								SplitStrategy:     split,
								SelectionStrategy: sel,
								NoRotation:        !rot,
							})
						}
					}
				}
			}
		}
	}
	return out
}

// separated reports whether a and b are at least gap apart along some axis.
func separated(a, b model.Rect, gap float64) bool {
	return a.Right()+gap <= b.X || b.Right()+gap <= a.X ||
		a.Bottom()+gap <= b.Y || b.Bottom()+gap <= a.Y
}

func TestPack_GeometricInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const binW, binH = 300.0, 200.0

	for _, cfg := range allConfigs() {
		items := randomItems(rng, 40, 150)
		// Keep every item placeable regardless of rotation settings.
		for i := range items {
			if items[i].Height > binH {
				items[i].Height = binH
			}
		}

		result, err := Pack(model.Input{BinWidth: binW, BinHeight: binH, Items: items}, cfg)
		require.NoError(t, err, cfg.String())

		seen := map[string]int{}
		for bi, b := range result.Bins {
			assert.Equal(t, bi+1, b.Index, cfg.String())
			for i, p := range b.Placements {
				seen[p.Item.ID]++
				assert.Equal(t, b.Index, p.Bin)

				// Containment
				assert.GreaterOrEqual(t, p.X, 0.0)
				assert.GreaterOrEqual(t, p.Y, 0.0)
				assert.LessOrEqual(t, p.X+p.Width, binW, cfg.String())
				assert.LessOrEqual(t, p.Y+p.Height, binH, cfg.String())

				// Orientation integrity
				normal := p.Width == p.Item.Width && p.Height == p.Item.Height
				swapped := p.Width == p.Item.Height && p.Height == p.Item.Width
				assert.True(t, normal || swapped, cfg.String())
				if cfg.NoRotation || p.Item.LockRotation {
					assert.True(t, normal, cfg.String())
					assert.False(t, p.Rotated)
				}

				// No overlap, kerf spacing
				for _, q := range b.Placements[i+1:] {
					assert.False(t, p.Rect().Intersects(q.Rect()), "%s: %v overlaps %v", cfg, p.Rect(), q.Rect())
					assert.True(t, separated(p.Rect(), q.Rect(), cfg.KerfSize), "%s: %v too close to %v", cfg, p.Rect(), q.Rect())
				}

				// Free space never overlaps placed items
				for _, fr := range b.FreeRects {
					assert.False(t, fr.Intersects(p.Rect()), cfg.String())
				}
			}

			for i, fr := range b.FreeRects {
				assert.True(t, model.Rect{Width: binW, Height: binH}.Contains(fr), cfg.String())
				for _, other := range b.FreeRects[i+1:] {
					assert.False(t, fr.Intersects(other), cfg.String())
				}
			}
			assert.LessOrEqual(t, b.UsedArea(), b.TotalArea())
		}

		assert.Len(t, seen, len(items), cfg.String())
		for id, n := range seen {
			assert.Equal(t, 1, n, "%s: item %s placed %d times", cfg, id, n)
		}
	}
}
