package fifo

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelbook/internal/core/id"
	"fuelbook/internal/core/types"
)

// memRepo is an in-memory layer repository for engine tests.
type memRepo struct {
	layers  map[id.ID]*Layer
	updates int
}

func newMemRepo() *memRepo {
	return &memRepo{layers: make(map[id.ID]*Layer)}
}

func (r *memRepo) MaxSequence(_ context.Context, tankID id.ID) (int, error) {
	max := 0
	for _, l := range r.layers {
		if l.TankID == tankID && l.Sequence > max {
			max = l.Sequence
		}
	}
	return max, nil
}

func (r *memRepo) Create(_ context.Context, layer *Layer) error {
	cp := *layer
	r.layers[layer.ID] = &cp
	return nil
}

func (r *memRepo) GetActiveForUpdate(_ context.Context, tankID id.ID) ([]*Layer, error) {
	var out []*Layer
	for _, l := range r.layers {
		if l.TankID == tankID && !l.Exhausted() {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (r *memRepo) Update(_ context.Context, layer *Layer) error {
	r.updates++
	r.layers[layer.ID] = layer
	return nil
}

func (r *memRepo) GetByTank(_ context.Context, tankID id.ID) ([]*Layer, error) {
	var out []*Layer
	for _, l := range r.layers {
		if l.TankID == tankID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func seedLayer(t *testing.T, repo *memRepo, engine *Engine, tankID id.ID, volume, cost string) *Layer {
	t.Helper()
	l, err := engine.NewLayer(context.Background(), tankID, id.New(),
		types.MustVolume(volume), types.MustMoney(cost), time.Now())
	require.NoError(t, err)
	return repo.layers[l.ID]
}

func TestNewLayerAssignsGapFreeSequence(t *testing.T) {
	repo := newMemRepo()
	engine := NewEngine(repo, types.SystemClock{})
	tankID := id.New()

	a := seedLayer(t, repo, engine, tankID, "500", "1000")
	b := seedLayer(t, repo, engine, tankID, "800", "1100")

	assert.Equal(t, 1, a.Sequence)
	assert.Equal(t, 2, b.Sequence)
	assert.Equal(t, StatusActive, a.Status)
	assert.True(t, a.RemainingVolume.Equal(a.OriginalVolume))
	assert.True(t, a.OriginalValue.Equal(types.MustMoney("500000")))

	// Another tank starts over at 1.
	other := seedLayer(t, repo, engine, id.New(), "100", "900")
	assert.Equal(t, 1, other.Sequence)
}

func TestNewLayerRejectsBadInputs(t *testing.T) {
	engine := NewEngine(newMemRepo(), types.SystemClock{})

	_, err := engine.NewLayer(context.Background(), id.New(), id.New(),
		types.MustVolume("0"), types.MustMoney("10"), time.Now())
	assert.Error(t, err)

	_, err = engine.NewLayer(context.Background(), id.New(), id.New(),
		types.MustVolume("10"), types.MustMoney("-1"), time.Now())
	assert.Error(t, err)
}

func TestConsumeTwoLayerScenario(t *testing.T) {
	repo := newMemRepo()
	engine := NewEngine(repo, types.SystemClock{})
	tankID := id.New()

	a := seedLayer(t, repo, engine, tankID, "500", "1000")
	b := seedLayer(t, repo, engine, tankID, "800", "1100")

	res, err := engine.Consume(context.Background(), tankID, types.MustVolume("600"))
	require.NoError(t, err)

	require.Len(t, res.Trace, 2)
	assert.Equal(t, 1, res.Trace[0].LayerSequence)
	assert.True(t, res.Trace[0].VolumeConsumed.Equal(types.MustVolume("500")))
	assert.True(t, res.Trace[0].Cost.Equal(types.MustMoney("500000")))
	assert.Equal(t, 2, res.Trace[1].LayerSequence)
	assert.True(t, res.Trace[1].VolumeConsumed.Equal(types.MustVolume("100")))
	assert.True(t, res.Trace[1].Cost.Equal(types.MustMoney("110000")))

	assert.True(t, res.TotalCOGS.Equal(types.MustMoney("610000")))
	assert.False(t, res.Incomplete)

	assert.Equal(t, StatusDepleted, a.Status)
	assert.True(t, a.RemainingVolume.IsZero())
	assert.Equal(t, StatusActive, b.Status)
	assert.True(t, b.RemainingVolume.Equal(types.MustVolume("700")))
	assert.True(t, b.RemainingValue.Equal(types.MustMoney("770000")))
	assert.True(t, b.ConsumedValue.Equal(types.MustMoney("110000")))

	// Opening 500*1000 + 800*1100 = 1380000; closing 700*1100 = 770000.
	assert.True(t, res.OpeningInventoryValue.Equal(types.MustMoney("1380000")))
	assert.True(t, res.ClosingInventoryValue.Equal(types.MustMoney("770000")))
}

func TestConsumeDrainsLowestSequenceFirstRegardlessOfCost(t *testing.T) {
	repo := newMemRepo()
	engine := NewEngine(repo, types.SystemClock{})
	tankID := id.New()

	// The cheaper layer is newer; strict FIFO must still drain the older,
	// more expensive one first.
	expensive := seedLayer(t, repo, engine, tankID, "100", "2000")
	cheap := seedLayer(t, repo, engine, tankID, "100", "500")

	res, err := engine.Consume(context.Background(), tankID, types.MustVolume("50"))
	require.NoError(t, err)

	require.Len(t, res.Trace, 1)
	assert.Equal(t, expensive.ID, res.Trace[0].LayerID)
	assert.True(t, res.TotalCOGS.Equal(types.MustMoney("100000")))
	assert.True(t, cheap.RemainingVolume.Equal(types.MustVolume("100")))
}

func TestConsumeTraceSumsToRequestedVolume(t *testing.T) {
	repo := newMemRepo()
	engine := NewEngine(repo, types.SystemClock{})
	tankID := id.New()

	seedLayer(t, repo, engine, tankID, "123.456", "987.6543")
	seedLayer(t, repo, engine, tankID, "250.001", "1001.0001")
	seedLayer(t, repo, engine, tankID, "78.9", "950")

	requested := types.MustVolume("300.123")
	res, err := engine.Consume(context.Background(), tankID, requested)
	require.NoError(t, err)
	require.False(t, res.Incomplete)

	sum := types.Zero()
	for _, entry := range res.Trace {
		sum = types.RoundVolume(sum.Add(entry.VolumeConsumed))
	}
	assert.True(t, sum.Equal(requested), "trace sum %s != requested %s", sum, requested)
}

func TestConsumeZeroOrNegativeIsNoop(t *testing.T) {
	repo := newMemRepo()
	engine := NewEngine(repo, types.SystemClock{})
	tankID := id.New()
	seedLayer(t, repo, engine, tankID, "100", "1000")

	for _, v := range []string{"0", "-5"} {
		res, err := engine.Consume(context.Background(), tankID, types.MustVolume(v))
		require.NoError(t, err)
		assert.True(t, res.TotalCOGS.IsZero())
		assert.Empty(t, res.Trace)
		assert.Equal(t, 0, repo.updates)
	}
}

func TestConsumeShortfallIsNonFatal(t *testing.T) {
	repo := newMemRepo()
	engine := NewEngine(repo, types.SystemClock{})
	tankID := id.New()
	seedLayer(t, repo, engine, tankID, "200", "1000")

	res, err := engine.Consume(context.Background(), tankID, types.MustVolume("350"))
	require.NoError(t, err)

	assert.True(t, res.Incomplete)
	assert.True(t, res.Shortfall.Equal(types.MustVolume("150")))
	assert.True(t, res.TotalCOGS.Equal(types.MustMoney("200000")))
	require.Len(t, res.Trace, 1)
	assert.True(t, res.ClosingInventoryValue.IsZero())
}

func TestDepletionEpsilon(t *testing.T) {
	repo := newMemRepo()
	engine := NewEngine(repo, types.SystemClock{})

	// Leaving exactly 0.001 L depletes the layer.
	tankA := id.New()
	la := seedLayer(t, repo, engine, tankA, "100", "1000")
	_, err := engine.Consume(context.Background(), tankA, types.MustVolume("99.999"))
	require.NoError(t, err)
	assert.Equal(t, StatusDepleted, la.Status)

	// Leaving 0.002 L does not.
	tankB := id.New()
	lb := seedLayer(t, repo, engine, tankB, "100", "1000")
	_, err = engine.Consume(context.Background(), tankB, types.MustVolume("99.998"))
	require.NoError(t, err)
	assert.Equal(t, StatusActive, lb.Status)
}

func TestRoundingIsIdempotent(t *testing.T) {
	m := types.MustMoney("610000.1234")
	assert.True(t, types.RoundMoney(m).Equal(m))

	v := types.MustVolume("120.123")
	assert.True(t, types.RoundVolume(v).Equal(v))
}
