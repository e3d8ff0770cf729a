package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type captureBroadcaster struct {
	userIDs  []string
	payloads [][]byte
}

func (c *captureBroadcaster) BroadcastTo(userID string, message []byte) {
	c.userIDs = append(c.userIDs, userID)
	c.payloads = append(c.payloads, message)
}

func TestEventService_RecordAndFetch(t *testing.T) {
	db := newTestDB(t)
	hub := &captureBroadcaster{}
	svc := NewEventService(db, hub)
	ctx := context.Background()

	require.NoError(t, svc.RecordEvent(ctx, "u1", "todo.create", "info", "Created todo"))
	require.NoError(t, svc.RecordEvent(ctx, "u1", "todo.delete", "info", "Deleted todo"))
	require.NoError(t, svc.RecordEvent(ctx, "u2", "user.login", "info", "Logged in"))

	events, err := svc.GetRecentEvents(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, events, 2, "events must be scoped to their user")
	for _, event := range events {
		require.Equal(t, "u1", event.UserID)
	}

	require.Equal(t, []string{"u1", "u1", "u2"}, hub.userIDs)
	require.Contains(t, string(hub.payloads[0]), "todo.create")
}

func TestEventService_NewestFirstWithinSameSecond(t *testing.T) {
	svc := NewEventService(newTestDB(t), nil)
	ctx := context.Background()

	// A register/login/create burst lands within one created_at second;
	// the ordering must still reflect insertion order, newest first.
	require.NoError(t, svc.RecordEvent(ctx, "u1", "user.register", "info", "Account created"))
	require.NoError(t, svc.RecordEvent(ctx, "u1", "user.login", "info", "Logged in"))
	require.NoError(t, svc.RecordEvent(ctx, "u1", "todo.create", "info", "Created todo"))

	events, err := svc.GetRecentEvents(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, "todo.create", events[0].Type)
	require.Equal(t, "user.login", events[1].Type)
	require.Equal(t, "user.register", events[2].Type)
}

func TestEventService_LimitApplies(t *testing.T) {
	svc := NewEventService(newTestDB(t), nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.RecordEvent(ctx, "u1", "user.login", "info", "Logged in"))
	}

	events, err := svc.GetRecentEvents(ctx, "u1", 3)
	require.NoError(t, err)
	require.Len(t, events, 3)
}
