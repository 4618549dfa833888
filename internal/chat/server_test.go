package chat

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// startServer serves on an ephemeral port and returns the dialable address.
func startServer(t *testing.T) (string, *Registry) {
	t.Helper()

	registry := NewRegistry()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := NewServer(listener.Addr().String(), registry, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() {
		served <- server.Serve(ctx, listener)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-served:
			require.ErrorIs(t, err, context.Canceled)
		case <-time.After(3 * time.Second):
			t.Error("server did not stop after cancellation")
		}
	})

	return listener.Addr().String(), registry
}

func nextDelivery(t *testing.T, receiver *ReceiverClient) Delivery {
	t.Helper()

	type result struct {
		delivery Delivery
		err      error
	}
	results := make(chan result, 1)
	go func() {
		delivery, err := receiver.Next()
		results <- result{delivery, err}
	}()

	select {
	case r := <-results:
		require.NoError(t, r.err)
		return r.delivery
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for a delivery")
		return Delivery{}
	}
}

func TestServerEndToEndDelivery(t *testing.T) {
	addr, _ := startServer(t)

	bob, err := DialReceiver(addr, "bob", "lobby")
	require.NoError(t, err)
	defer bob.Close()

	carol, err := DialReceiver(addr, "carol", "lobby")
	require.NoError(t, err)
	defer carol.Close()

	alice, err := DialSender(addr, "alice")
	require.NoError(t, err)
	defer alice.Close()

	require.NoError(t, alice.Join("lobby"))
	require.NoError(t, alice.SendAll("hi everyone"))

	want := Delivery{Room: "lobby", Sender: "alice", Text: "hi everyone"}
	require.Equal(t, want, nextDelivery(t, bob))
	require.Equal(t, want, nextDelivery(t, carol))
}

func TestServerDeliveryOrderPerSender(t *testing.T) {
	addr, _ := startServer(t)

	bob, err := DialReceiver(addr, "bob", "lobby")
	require.NoError(t, err)
	defer bob.Close()

	alice, err := DialSender(addr, "alice")
	require.NoError(t, err)
	defer alice.Close()

	require.NoError(t, alice.Join("lobby"))

	texts := []string{"first", "second", "third"}
	for _, text := range texts {
		require.NoError(t, alice.SendAll(text))
	}

	for _, text := range texts {
		require.Equal(t, text, nextDelivery(t, bob).Text)
	}
}

func TestServerSenderErrorsSurfaceReason(t *testing.T) {
	addr, _ := startServer(t)

	alice, err := DialSender(addr, "alice")
	require.NoError(t, err)
	defer alice.Close()

	err = alice.SendAll("hi")
	require.ErrorContains(t, err, "not in a room")

	// A rejected command does not end the session.
	require.NoError(t, alice.Join("lobby"))
	require.NoError(t, alice.SendAll("hi"))
	require.NoError(t, alice.Quit())
}

func TestServerRoomsAreIndependent(t *testing.T) {
	addr, registry := startServer(t)

	bob, err := DialReceiver(addr, "bob", "kitchen")
	require.NoError(t, err)
	defer bob.Close()

	alice, err := DialSender(addr, "alice")
	require.NoError(t, err)
	defer alice.Close()

	require.NoError(t, alice.Join("lobby"))
	require.NoError(t, alice.SendAll("lobby only"))

	require.NoError(t, alice.Leave())
	require.NoError(t, alice.Join("kitchen"))
	require.NoError(t, alice.SendAll("kitchen only"))

	delivery := nextDelivery(t, bob)
	require.Equal(t, Delivery{Room: "kitchen", Sender: "alice", Text: "kitchen only"}, delivery)
	require.Equal(t, 2, registry.RoomCount())
}
