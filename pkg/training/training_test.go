package training

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/draft-season/pkg/state"
)

func testManager() *Manager {
	return NewManager(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
}

func trainableState() *state.GameState {
	gs := state.NewGameState("train")
	gs.CurrentMonth = 4
	return gs
}

func TestExecute_Tiers(t *testing.T) {
	tests := []struct {
		name        string
		intensity   int
		focuses     []string
		wantTier    string
		wantChanges map[string]int
		wantStamina int // delta
	}{
		{
			name:        "recovery restores stamina, no gains",
			intensity:   15,
			focuses:     []string{"batting"},
			wantTier:    TierRecovery,
			wantChanges: map[string]int{},
			wantStamina: 10,
		},
		{
			name:        "light single focus",
			intensity:   35,
			focuses:     []string{"speed"},
			wantTier:    TierLight,
			wantChanges: map[string]int{"speed": 2},
			wantStamina: 4,
		},
		{
			name:        "standard single focus",
			intensity:   60,
			focuses:     []string{"batting"},
			wantTier:    TierStandard,
			wantChanges: map[string]int{"batting": 4},
			wantStamina: -6,
		},
		{
			name:        "focused two skills lose one point each",
			intensity:   80,
			focuses:     []string{"batting", "defense"},
			wantTier:    TierFocused,
			wantChanges: map[string]int{"batting": 5, "defense": 5},
			wantStamina: -12,
		},
		{
			name:        "high intensity three skills",
			intensity:   95,
			focuses:     []string{"batting", "speed", "defense"},
			wantTier:    TierHighIntensity,
			wantChanges: map[string]int{"batting": 6, "speed": 6, "defense": 6},
			wantStamina: -20,
		},
		{
			name:        "max intensity solo focus earns bonus",
			intensity:   95,
			focuses:     []string{"batting"},
			wantTier:    TierHighIntensity,
			wantChanges: map[string]int{"batting": 9},
			wantStamina: -20,
		},
		{
			name:        "empty focus list trains everything",
			intensity:   60,
			focuses:     nil,
			wantTier:    TierStandard,
			wantChanges: map[string]int{"batting": 2, "defense": 2, "speed": 2},
			wantStamina: -6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testManager()
			gs := trainableState()
			before := gs.Stats.Snapshot()

			out, err := m.Execute(gs, tt.intensity, tt.focuses)
			require.NoError(t, err)

			assert.Equal(t, tt.wantTier, out.Tier)
			assert.Equal(t, tt.wantStamina, out.StaminaChange)
			assert.Equal(t, before.Stamina+tt.wantStamina, gs.Stats.Stamina)
			for stat, delta := range tt.wantChanges {
				assert.Equal(t, before.Get(stat)+delta, gs.Stats.Get(stat), "stat %s", stat)
			}
			assert.Equal(t, 1, gs.TrainingCountThisMonth)
			require.Len(t, gs.TrainingHistory, 1)
			assert.Equal(t, tt.wantTier, gs.TrainingHistory[0].Tier)
			assert.NotEmpty(t, out.Summary)
			assert.NotEmpty(t, out.ConversationNote)
		})
	}
}

func TestExecute_MonthClosed(t *testing.T) {
	m := testManager()
	for _, month := range []int{3, 5, 8, 9} {
		gs := state.NewGameState("closed")
		gs.CurrentMonth = month

		_, err := m.Execute(gs, 50, []string{"batting"})
		var rej *state.Rejection
		require.ErrorAs(t, err, &rej, "month %d", month)
		assert.Equal(t, 0, gs.TrainingCountThisMonth)
		assert.Empty(t, gs.TrainingHistory)
	}
}

func TestExecute_MonthlyCap(t *testing.T) {
	m := testManager()
	gs := trainableState()
	gs.Stats.Stamina = 100

	for i := 0; i < 5; i++ {
		_, err := m.Execute(gs, 30, []string{"batting"})
		require.NoError(t, err, "session %d", i+1)
	}
	_, err := m.Execute(gs, 30, []string{"batting"})
	var rej *state.Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, 5, gs.TrainingCountThisMonth)

	// July allows one fewer session.
	gs2 := state.NewGameState("july")
	gs2.CurrentMonth = 7
	gs2.Stats.Stamina = 100
	for i := 0; i < 4; i++ {
		_, err := m.Execute(gs2, 30, []string{"batting"})
		require.NoError(t, err)
	}
	_, err = m.Execute(gs2, 30, []string{"batting"})
	require.ErrorAs(t, err, &rej)
}

func TestExecute_StaminaFloor(t *testing.T) {
	m := testManager()
	gs := trainableState()
	gs.Stats.Stamina = 15

	_, err := m.Execute(gs, 60, []string{"batting"})
	var rej *state.Rejection
	require.ErrorAs(t, err, &rej)

	// Recovery is still allowed when exhausted.
	out, err := m.Execute(gs, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, TierRecovery, out.Tier)
	assert.Equal(t, 25, gs.Stats.Stamina)
}

func TestExecute_InvalidInput(t *testing.T) {
	m := testManager()
	var rej *state.Rejection

	_, err := m.Execute(trainableState(), 0, nil)
	require.ErrorAs(t, err, &rej)

	_, err = m.Execute(trainableState(), 101, nil)
	require.ErrorAs(t, err, &rej)

	_, err = m.Execute(trainableState(), 50, []string{"charisma"})
	require.ErrorAs(t, err, &rej)
}

func TestNormalizeFocuses(t *testing.T) {
	fs, err := normalizeFocuses([]string{" Batting ", "SPEED", "batting"})
	require.NoError(t, err)
	assert.Equal(t, []string{"batting", "speed"}, fs)
}
