package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJournal(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		now = now.Add(time.Minute)
		return now
	}

	journal, err := FromMemory(WithClock(clock))
	require.NoError(t, err)
	defer journal.Close()

	journal.ModifyStop("AAPL", 254.8)
	journal.ModifyStop("TSLA", 170)
	journal.ModifyStop("AAPL", 256)
	require.Empty(t, journal.Err())

	events, err := journal.Events()
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, "AAPL", events[0].Instrument)
	require.Equal(t, 254.8, events[0].Stop)
	require.True(t, events[0].Time.Before(events[2].Time))
	require.NotEmpty(t, events[0].ID)

	aapl, err := journal.Events(ForInstrument("AAPL"))
	require.NoError(t, err)
	require.Len(t, aapl, 2)
	require.Equal(t, 256.0, aapl[1].Stop)
}

func TestJournal_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	journal, err := FromFile(path)
	require.NoError(t, err)
	_, err = journal.Record("SPY", 480)
	require.NoError(t, err)
	require.NoError(t, journal.Close())

	reopened, err := FromFile(path)
	require.NoError(t, err)
	defer reopened.Close()

	events, err := reopened.Events()
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "SPY", events[0].Instrument)
}
