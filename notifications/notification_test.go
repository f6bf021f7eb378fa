package notifications_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jrsteele09/npl-portal/notifications"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalNotification(t *testing.T) {
	t.Run("backend record", func(t *testing.T) {
		var n notifications.Notification
		require.NoError(t, json.Unmarshal([]byte(`{
			"id": "6f1d",
			"recipient_id": "agent_id",
			"recipient_type": "agent",
			"notification_type": "promise_due",
			"title": "Promise to Pay Due Today",
			"message": "Follow up",
			"is_read": false,
			"sent_at": "2024-01-15T10:30:00.000000",
			"read_at": null
		}`), &n))

		require.Equal(t, "6f1d", n.ID)
		require.Equal(t, notifications.TypePromiseDue, n.Type)
		require.False(t, n.IsRead)
		require.Nil(t, n.ReadAt)
		require.True(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC).Equal(n.SentAt))
	})

	t.Run("numeric id and unknown type", func(t *testing.T) {
		var n notifications.Notification
		require.NoError(t, json.Unmarshal([]byte(`{"id": 1718000000001, "notification_type": "birthday", "sent_at": "2024-01-15T10:30:00Z"}`), &n))
		require.Equal(t, "1718000000001", n.ID)
		require.Equal(t, notifications.TypeOther, n.Type)
	})

	t.Run("invariant repaired on decode", func(t *testing.T) {
		var readNoStamp notifications.Notification
		require.NoError(t, json.Unmarshal([]byte(`{"id":"a","is_read":true,"sent_at":"2024-01-15T10:30:00Z"}`), &readNoStamp))
		require.True(t, readNoStamp.IsRead)
		require.NotNil(t, readNoStamp.ReadAt)

		var stampNotRead notifications.Notification
		require.NoError(t, json.Unmarshal([]byte(`{"id":"b","is_read":false,"sent_at":"2024-01-15T10:30:00Z","read_at":"2024-01-16T08:00:00Z"}`), &stampNotRead))
		require.True(t, stampNotRead.IsRead)
		require.NotNil(t, stampNotRead.ReadAt)
	})

	t.Run("round trip through our own encoding", func(t *testing.T) {
		in := notifications.Samples(time.Now())[0]
		in.MarkRead(time.Now())
		data, err := json.Marshal(in)
		require.NoError(t, err)

		var out notifications.Notification
		require.NoError(t, json.Unmarshal(data, &out))
		require.Equal(t, in.ID, out.ID)
		require.True(t, out.IsRead)
		require.True(t, in.ReadAt.Equal(*out.ReadAt))
	})
}

func TestMarkReadIdempotent(t *testing.T) {
	first := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	n := notifications.Notification{ID: "x", SentAt: first.Add(-time.Hour)}

	n.MarkRead(first)
	require.True(t, n.IsRead)
	require.True(t, first.Equal(*n.ReadAt))
	once := n

	n.MarkRead(first.Add(time.Hour))
	require.Equal(t, once.IsRead, n.IsRead)
	require.True(t, once.ReadAt.Equal(*n.ReadAt))
}

func TestInvariantHoldsForEveryTransition(t *testing.T) {
	now := time.Now()
	cases := []notifications.Notification{
		{ID: "unread"},
		{ID: "read", IsRead: true, ReadAt: &now},
		{ID: "flag only", IsRead: true},
		{ID: "stamp only", ReadAt: &now},
	}
	for _, n := range cases {
		n.Normalize()
		require.Equal(t, n.IsRead, n.ReadAt != nil, n.ID)
		n.MarkRead(now)
		require.True(t, n.IsRead, n.ID)
		require.NotNil(t, n.ReadAt, n.ID)
	}
}

func TestSamples(t *testing.T) {
	now := time.Now()
	samples := notifications.Samples(now)
	require.Len(t, samples, 3)

	require.Equal(t, notifications.TypePaymentDue, samples[0].Type)
	require.Equal(t, "Payment Overdue Alert", samples[0].Title)
	require.Contains(t, samples[0].Message, "STM10001")
	require.Equal(t, notifications.TypePromiseDue, samples[1].Type)
	require.Equal(t, notifications.TypeEscalation, samples[2].Type)
	require.Contains(t, samples[2].Message, "Elite Recovery Services")

	ids := map[string]bool{}
	for _, s := range samples {
		require.False(t, s.IsRead)
		require.Nil(t, s.ReadAt)
		require.Equal(t, "demo_user", s.RecipientID)
		require.Equal(t, "agent", s.RecipientType)
		ids[s.ID] = true
	}
	require.Len(t, ids, 3)
}

func TestFilter(t *testing.T) {
	require.Equal(t, notifications.FilterUnread, notifications.ParseFilter("unread"))
	require.Equal(t, notifications.FilterAll, notifications.ParseFilter("all"))
	require.Equal(t, notifications.FilterAll, notifications.ParseFilter(""))
	require.Equal(t, notifications.FilterAll, notifications.ParseFilter("UNREAD!"))
	require.True(t, notifications.FilterUnread.UnreadOnly())
	require.False(t, notifications.FilterAll.UnreadOnly())
	require.Equal(t, "No unread notifications", notifications.FilterUnread.EmptyMessage())
	require.Equal(t, "No notifications found", notifications.FilterAll.EmptyMessage())
}
