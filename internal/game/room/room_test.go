package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNew_OwnerIsOnlyPlayer(t *testing.T) {
	r := New("P1")

	assert.Empty(t, r.ID())
	assert.Equal(t, "P1", r.OwnerID())
	assert.False(t, r.Started())
	assert.Equal(t, 1, r.PlayerCount())
	assert.True(t, r.IsPlayerInRoom("P1"))
	assert.True(t, r.IsOwner("P1"))

	p := r.Players()["P1"]
	assert.False(t, p.Ready)
	assert.False(t, p.FleetSet)
}

func TestAddPlayer_StartsWithFlagsCleared(t *testing.T) {
	r := New("P1")
	r.AddPlayer("P2")

	require.True(t, r.IsPlayerInRoom("P2"))
	assert.Equal(t, 2, r.PlayerCount())
	assert.False(t, r.IsOwner("P2"))

	p := r.Players()["P2"]
	assert.False(t, p.Ready)
	assert.False(t, p.FleetSet)
}

func TestMarkFleetSet(t *testing.T) {
	r := New("P1")
	r.AddPlayer("P2")

	assert.False(t, r.IsPlayerFleetSet("P1"))
	r.MarkFleetSet("P1")
	assert.True(t, r.IsPlayerFleetSet("P1"))
	assert.False(t, r.IsPlayerFleetSet("P2"))
}

func TestAllFleetsSet(t *testing.T) {
	r := New("P1")
	r.AddPlayer("P2")

	assert.False(t, r.AllFleetsSet())
	r.MarkFleetSet("P1")
	assert.False(t, r.AllFleetsSet())
	r.MarkFleetSet("P2")
	assert.True(t, r.AllFleetsSet())
}

func TestAllFleetsSet_VacuouslyTrueWhenEmpty(t *testing.T) {
	r := Rehydrate("r1", "P1", false, nil)
	assert.True(t, r.AllFleetsSet())
	assert.True(t, r.AllPlayersReady())
}

func TestUnmarkAllFleetSets_ClearsReadinessToo(t *testing.T) {
	r := New("P1")
	r.AddPlayer("P2")
	r.MarkFleetSet("P1")
	r.MarkFleetSet("P2")
	r.ToggleReady("P1")
	r.ToggleReady("P2")
	require.True(t, r.AllPlayersReady())

	r.UnmarkAllFleetSets()

	for pid, p := range r.Players() {
		assert.False(t, p.Ready, "player %s should not be ready", pid)
		assert.False(t, p.FleetSet, "player %s should not have fleet set", pid)
	}
}

func TestToggleReady_ReturnsPreviousValue(t *testing.T) {
	r := New("P1")

	prev := r.ToggleReady("P1")
	assert.False(t, prev)
	assert.True(t, r.Players()["P1"].Ready)

	prev = r.ToggleReady("P1")
	assert.True(t, prev)
	assert.False(t, r.Players()["P1"].Ready)
}

func TestAllPlayersReady(t *testing.T) {
	r := New("P1")
	r.AddPlayer("P2")

	assert.False(t, r.AllPlayersReady())
	r.ToggleReady("P1")
	assert.False(t, r.AllPlayersReady())
	r.ToggleReady("P2")
	assert.True(t, r.AllPlayersReady())
}

func TestMarkStarted(t *testing.T) {
	r := New("P1")
	assert.False(t, r.Started())
	r.MarkStarted()
	assert.True(t, r.Started())
}

func TestRehydrate_CopiesPlayerMap(t *testing.T) {
	players := map[string]Player{
		"P1": {Ready: true, FleetSet: true},
	}
	r := Rehydrate("r1", "P1", true, players)

	players["P1"] = Player{}
	players["P2"] = Player{}

	assert.Equal(t, 1, r.PlayerCount())
	assert.True(t, r.Players()["P1"].Ready)
}

func TestPlayers_ReturnsCopy(t *testing.T) {
	r := New("P1")
	snapshot := r.Players()
	snapshot["P2"] = Player{}

	assert.Equal(t, 1, r.PlayerCount())
	assert.False(t, r.IsPlayerInRoom("P2"))
}

func TestPlayerIDs(t *testing.T) {
	r := New("P1")
	r.AddPlayer("P2")
	assert.ElementsMatch(t, []string{"P1", "P2"}, r.PlayerIDs())
}

func TestPropertyToggleReadyIsInvolution(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ready := rapid.Bool().Draw(t, "ready")
		fleet := rapid.Bool().Draw(t, "fleet")
		r := Rehydrate("r1", "P1", false, map[string]Player{
			"P1": {Ready: ready, FleetSet: fleet},
		})

		first := r.ToggleReady("P1")
		second := r.ToggleReady("P1")

		if first != ready {
			t.Fatalf("first toggle returned %v, want previous value %v", first, ready)
		}
		if second == first {
			t.Fatalf("second toggle returned %v, want flipped value", second)
		}
		if got := r.Players()["P1"].Ready; got != ready {
			t.Fatalf("double toggle left ready=%v, want original %v", got, ready)
		}
	})
}
