package preset

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leandrodaf/synthsync/sdk/contracts"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "presets.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testSnapshot() contracts.Snapshot {
	return contracts.Snapshot{
		Version: contracts.SnapshotVersion,
		Values:  map[string]float64{"cutoff": 0.8, "resonance": 0.2},
		Modulations: []contracts.ConnectionState{
			{Source: "lfo1", Destination: "cutoff", Amount: 0.5},
		},
		MidiLearn: []contracts.MidiMapping{
			{Controller: 74, Name: "cutoff", Min: 0, Max: 1},
		},
	}
}

func TestStore_SaveLoad(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "Warm Pad", testSnapshot()))

	got, err := s.Load(ctx, "Warm Pad")
	require.NoError(t, err)
	assert.Equal(t, testSnapshot(), got)
}

func TestStore_SaveReplacesAndKeepsCreatedAt(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return clock }
	require.NoError(t, s.Save(ctx, "bass", testSnapshot()))

	clock = clock.Add(time.Hour)
	replacement := testSnapshot()
	replacement.Values["cutoff"] = 0.1
	require.NoError(t, s.Save(ctx, "bass", replacement))

	got, err := s.Load(ctx, "bass")
	require.NoError(t, err)
	assert.Equal(t, 0.1, got.Values["cutoff"])

	infos, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, clock.Add(-time.Hour), infos[0].CreatedAt)
	assert.Equal(t, clock, infos[0].UpdatedAt)
	assert.Equal(t, contracts.SnapshotVersion, infos[0].Version)
}

func TestStore_NamesAreNormalized(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// "é" as e + combining acute accent, with surrounding whitespace.
	require.NoError(t, s.Save(ctx, "  Cafe\u0301 ", testSnapshot()))

	_, err := s.Load(ctx, "Caf\u00e9")
	require.NoError(t, err)

	infos, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "Caf\u00e9", infos[0].Name)
}

func TestStore_ListOrdered(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	infos, err := s.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, infos)
	assert.Empty(t, infos)

	for _, name := range []string{"lead", "arp", "keys"} {
		require.NoError(t, s.Save(ctx, name, testSnapshot()))
	}
	infos, err = s.List(ctx)
	require.NoError(t, err)

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	assert.Equal(t, []string{"arp", "keys", "lead"}, names)
}

func TestStore_Delete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "lead", testSnapshot()))
	require.NoError(t, s.Delete(ctx, "lead"))

	_, err := s.Load(ctx, "lead")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "lead"), ErrNotFound)
}

func TestStore_InvalidNames(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "   \t"},
		{"invalid utf8", "\xff\xfe"},
		{"too long", string(make([]rune, MaxNameLength+1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, s.Save(ctx, tt.input, testSnapshot()), ErrInvalidName)
		})
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "init", testSnapshot()))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Load(ctx, "init")
	assert.NoError(t, err)
}
