package visual

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register_ReturnsStableHash(t *testing.T) {
	r := NewRegistry()
	state := State{Appearance: DefaultAppearance()}
	h1 := r.Register("player-1", state)
	h2 := r.Register("player-1", state)
	assert.Equal(t, h1, h2)
}

func TestRegistry_Lookup_ReturnsRegisteredState(t *testing.T) {
	r := NewRegistry()
	state := State{Appearance: DefaultAppearance(), Equipment: EquippedVisuals{MainHand: "sword"}}
	h := r.Register("player-1", state)

	got, ok := r.Lookup(h)
	require.True(t, ok)
	assert.Equal(t, state, got)
}

func TestRegistry_Lookup_UnknownHashMisses(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Lookup("deadbeefcafe")
	assert.False(t, ok)
}

func TestRegistry_HasChanged(t *testing.T) {
	r := NewRegistry()
	state := State{Appearance: DefaultAppearance()}
	h := r.Register("player-1", state)
	assert.False(t, r.HasChanged("player-1", h))

	changed := State{Appearance: DefaultAppearance(), Equipment: EquippedVisuals{Head: "helm"}}
	assert.True(t, r.HasChanged("player-1", changed.Hash()))
}

func TestRegistry_ObserverNeedsFull_FirstSightTrue(t *testing.T) {
	r := NewRegistry()
	state := State{Appearance: DefaultAppearance()}
	h := r.Register("npc-1", state)
	assert.True(t, r.ObserverNeedsFull("observer-1", h))
}

func TestRegistry_MarkSeen_SubsequentSightFalse(t *testing.T) {
	r := NewRegistry()
	state := State{Appearance: DefaultAppearance()}
	h := r.Register("npc-1", state)
	r.MarkSeen("observer-1", h)
	assert.False(t, r.ObserverNeedsFull("observer-1", h))
}

func TestRegistry_VisualForObserver_FirstSightSendsFull(t *testing.T) {
	r := NewRegistry()
	state := State{Appearance: DefaultAppearance()}

	hash, full := r.VisualForObserver("observer-1", "npc-1", state)
	require.NotNil(t, full)
	assert.Equal(t, state, *full)
	assert.Equal(t, state.Hash(), hash)
}

func TestRegistry_VisualForObserver_RepeatSightOmitsFull(t *testing.T) {
	r := NewRegistry()
	state := State{Appearance: DefaultAppearance()}

	r.VisualForObserver("observer-1", "npc-1", state)
	_, full := r.VisualForObserver("observer-1", "npc-1", state)
	assert.Nil(t, full)
}

func TestRegistry_VisualForObserver_HashChangeResendsFull(t *testing.T) {
	r := NewRegistry()
	state := State{Appearance: DefaultAppearance()}
	r.VisualForObserver("observer-1", "npc-1", state)

	changed := State{Appearance: DefaultAppearance(), Equipment: EquippedVisuals{MainHand: "axe"}}
	_, full := r.VisualForObserver("observer-1", "npc-1", changed)
	require.NotNil(t, full)
	assert.Equal(t, changed, *full)
}

func TestRegistry_CacheEviction_BoundsSize(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < MaxCacheSize+100; i++ {
		state := State{Appearance: DefaultAppearance(), Equipment: EquippedVisuals{MainHand: fmt.Sprintf("weapon-%d", i)}}
		r.Register(fmt.Sprintf("entity-%d", i), state)
	}
	assert.Equal(t, MaxCacheSize, r.Stats().CacheSize)
}

func TestRegistry_ObserverSeenSet_HalvesOnOverflow(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < MaxObserverCacheSize+1; i++ {
		r.MarkSeen("observer-1", fmt.Sprintf("hash-%d", i))
	}
	r.mu.Lock()
	size := len(r.observers["observer-1"])
	r.mu.Unlock()
	assert.LessOrEqual(t, size, MaxObserverCacheSize)
	assert.Greater(t, size, 0)
}

func TestRegistry_RemoveObserver_ClearsSeenSet(t *testing.T) {
	r := NewRegistry()
	r.MarkSeen("observer-1", "hash-1")
	r.RemoveObserver("observer-1")
	assert.True(t, r.ObserverNeedsFull("observer-1", "hash-1"))
}

func TestRegistry_RemoveEntity_KeepsCachedState(t *testing.T) {
	r := NewRegistry()
	state := State{Appearance: DefaultAppearance()}
	h := r.Register("npc-1", state)
	r.RemoveEntity("npc-1")

	_, ok := r.EntityHash("npc-1")
	assert.False(t, ok)

	_, cached := r.Lookup(h)
	assert.True(t, cached)
}
