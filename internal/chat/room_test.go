package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRoomBroadcastFansOutToAllMembers(t *testing.T) {
	room := NewRoom("lobby")

	bob := NewUser("bob")
	carol := NewUser("carol")
	room.AddMember(bob)
	room.AddMember(carol)

	room.Broadcast("alice", "hello everyone")

	for _, member := range []*User{bob, carol} {
		msg, ok := member.Mailbox.DequeueTimeout(time.Second)
		require.True(t, ok, "%s should have one delivery", member.Username)
		require.Equal(t, TagDelivery, msg.Tag)
		require.Equal(t, "lobby:alice:hello everyone", msg.Data)
		require.Zero(t, member.Mailbox.Len(), "exactly one delivery per member")
	}
}

func TestRoomBroadcastIncludesSenderWhenMember(t *testing.T) {
	room := NewRoom("lobby")

	alice := NewUser("alice")
	room.AddMember(alice)

	room.Broadcast("alice", "talking to myself")

	msg, ok := alice.Mailbox.DequeueTimeout(time.Second)
	require.True(t, ok)
	require.Equal(t, "lobby:alice:talking to myself", msg.Data)
}

func TestRoomRemoveMemberStopsDelivery(t *testing.T) {
	room := NewRoom("lobby")

	bob := NewUser("bob")
	room.AddMember(bob)
	require.Equal(t, 1, room.MemberCount())

	room.RemoveMember(bob)
	require.Zero(t, room.MemberCount())

	room.Broadcast("alice", "anyone there?")
	require.Zero(t, bob.Mailbox.Len())
}

func TestRoomRemoveMemberUnknownUserIsNoOp(t *testing.T) {
	room := NewRoom("lobby")
	room.RemoveMember(NewUser("stranger"))
	require.Zero(t, room.MemberCount())
}
