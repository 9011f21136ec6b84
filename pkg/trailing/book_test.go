package trailing

import (
	"fmt"
	"sync"
	"testing"

	"github.com/raykavin/volguard/pkg/core"
	"github.com/stretchr/testify/require"
)

func TestBook_Lifecycle(t *testing.T) {
	rec := &recorder{}
	book := NewBook(NewEngine(rec))

	_, err := book.Open(Params{Instrument: "A", EntryPrice: 100, Side: core.PositionSideLong, Amount: 1, Quantity: 1})
	require.NoError(t, err)
	_, err = book.Open(Params{Instrument: "B", EntryPrice: 50, Side: core.PositionSideShort, Mode: ModeAbsolute, Amount: 2, Quantity: 4})
	require.NoError(t, err)

	_, err = book.Open(Params{Instrument: "A", EntryPrice: 100, Side: core.PositionSideLong, Amount: 1, Quantity: 1})
	require.ErrorIs(t, err, core.ErrPositionExists)

	require.Equal(t, []string{"A", "B"}, book.Instruments())

	result, err := book.Update("A", 110, nil)
	require.NoError(t, err)
	require.True(t, result.Moved)

	result, err = book.Update("A", 108, nil)
	require.NoError(t, err)
	require.True(t, result.Triggered)

	_, err = book.Close("B", 45)
	require.NoError(t, err)

	summary := book.Summary()
	require.Equal(t, 2, summary.Trades())
	require.Equal(t, 1, summary.Triggered)
	require.Equal(t, 1, summary.Closed)
	require.InDelta(t, 28.0, summary.Profit(), 1e-9)

	// a finished instrument can be reopened
	_, err = book.Open(Params{Instrument: "A", EntryPrice: 120, Side: core.PositionSideLong, Amount: 1, Quantity: 1})
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B"}, book.Instruments())

	book.Remove("B")
	require.Equal(t, []string{"A"}, book.Instruments())

	_, err = book.Update("B", 1, nil)
	require.ErrorIs(t, err, core.ErrPositionNotFound)
}

func TestBook_Overrides(t *testing.T) {
	book := NewBook(NewEngine(nil))
	_, err := book.Open(Params{Instrument: "O", EntryPrice: 100, Side: core.PositionSideLong, Amount: 1, Quantity: 1})
	require.NoError(t, err)

	move, err := book.ForceMove("O", 97)
	require.NoError(t, err)
	require.False(t, move.Applied)

	move, err = book.MoveToBreakeven("O", 0)
	require.NoError(t, err)
	require.True(t, move.Applied)

	status, err := book.Status("O")
	require.NoError(t, err)
	require.InDelta(t, 100.0, status.CurrentStop, 1e-9)
	require.Equal(t, 1, status.Modifications)
	require.Len(t, book.Statuses(), 1)
}

func TestBook_ConcurrentInstruments(t *testing.T) {
	var mu sync.Mutex
	calls := map[string]int{}
	book := NewBook(NewEngine(core.StopModifierFunc(func(instrument string, _ float64) {
		mu.Lock()
		calls[instrument]++
		mu.Unlock()
	})))

	const instruments, ticks = 8, 200
	for i := 0; i < instruments; i++ {
		_, err := book.Open(Params{
			Instrument: fmt.Sprintf("I%d", i), EntryPrice: 100, Side: core.PositionSideLong,
			Mode: ModeAbsolute, Amount: 1, Quantity: 1,
		})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < instruments; i++ {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			for j := 1; j <= ticks; j++ {
				_, _ = book.Update(name, 100+float64(j), nil)
			}
		}(fmt.Sprintf("I%d", i))
	}
	wg.Wait()

	for i := 0; i < instruments; i++ {
		name := fmt.Sprintf("I%d", i)
		status, err := book.Status(name)
		require.NoError(t, err)
		require.True(t, status.Active)
		require.Equal(t, ticks, status.Modifications)
		require.Equal(t, ticks, calls[name])
		require.InDelta(t, 299.0, status.CurrentStop, 1e-9)
	}
}
