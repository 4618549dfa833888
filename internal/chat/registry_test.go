package chat

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryFindOrCreateRoomReturnsSameInstance(t *testing.T) {
	registry := NewRegistry()

	first := registry.FindOrCreateRoom("lobby")
	second := registry.FindOrCreateRoom("lobby")
	require.Same(t, first, second)
	require.Equal(t, "lobby", first.Name())

	other := registry.FindOrCreateRoom("kitchen")
	require.NotSame(t, first, other)
	require.Equal(t, 2, registry.RoomCount())
}

func TestRegistryConcurrentFindOrCreateRoom(t *testing.T) {
	const callers = 32

	registry := NewRegistry()
	rooms := make(chan *Room, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rooms <- registry.FindOrCreateRoom("lobby")
		}()
	}
	wg.Wait()
	close(rooms)

	first := <-rooms
	for room := range rooms {
		require.Same(t, first, room)
	}
	require.Equal(t, 1, registry.RoomCount())
}
