package backend_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/npl-portal/backend"
	apperrors "github.com/jrsteele09/npl-portal/internal/errors"
	"github.com/jrsteele09/npl-portal/notifications"
	"github.com/jrsteele09/npl-portal/reports"
	"github.com/jrsteele09/npl-portal/sessions"
	"github.com/stretchr/testify/require"
)

func withSession(token string) context.Context {
	s := sessions.Session{User: sessions.User{ID: "agent_id", Username: "agent"}, Token: token}
	return sessions.WithHandle(context.Background(), sessions.NewHandle("key", &s))
}

func newClient(t *testing.T, handler http.HandlerFunc, opts ...func(*backend.Options)) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	o := backend.Options{BaseURL: srv.URL + "/"}
	for _, opt := range opts {
		opt(&o)
	}
	return backend.NewClient(o)
}

func TestRequestConstruction(t *testing.T) {
	t.Run("bearer token from session", func(t *testing.T) {
		var gotPath, gotAuth string
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`{"total_loans": 10, "total_npl_loans": 3}`))
		})

		stats, err := client.DashboardStats(withSession("tok-123"))
		require.NoError(t, err)
		require.Equal(t, "/api/dashboard/stats", gotPath)
		require.Equal(t, "Bearer tok-123", gotAuth)
		require.Equal(t, 10, stats.TotalLoans)
	})

	t.Run("no session no header", func(t *testing.T) {
		var sawAuth atomic.Bool
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, present := r.Header["Authorization"]
			sawAuth.Store(present)
			_, _ = w.Write([]byte(`{}`))
		})

		_, err := client.DashboardStats(context.Background())
		require.NoError(t, err)
		require.False(t, sawAuth.Load())

		_, err = client.DashboardStats(sessions.WithHandle(context.Background(), sessions.NewHandle("k", nil)))
		require.NoError(t, err)
		require.False(t, sawAuth.Load())
	})

	t.Run("list params", func(t *testing.T) {
		var queries []string
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			queries = append(queries, r.URL.Path+"?"+r.URL.RawQuery)
			_, _ = w.Write([]byte(`[]`))
		})
		ctx := withSession("t")

		_, err := client.Members(ctx, backend.MemberListParams{Limit: 50, Search: "Wanjiku"})
		require.NoError(t, err)
		_, err = client.Loans(ctx, backend.LoanListParams{Skip: 50, Limit: 25, Status: backend.LoanNonPerforming, MemberSearch: "STM1"})
		require.NoError(t, err)
		_, err = client.Loans(ctx, backend.LoanListParams{})
		require.NoError(t, err)
		_, err = client.Notifications(ctx, true)
		require.NoError(t, err)
		_, err = client.Notifications(ctx, false)
		require.NoError(t, err)

		require.Equal(t, []string{
			"/api/members?limit=50&search=Wanjiku",
			"/api/loans?limit=25&member_search=STM1&skip=50&status=non_performing",
			"/api/loans?",
			"/api/notifications?unread_only=true",
			"/api/notifications?",
		}, queries)
	})

	t.Run("mark read uses PUT", func(t *testing.T) {
		var method, path string
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			method, path = r.Method, r.URL.Path
			_, _ = w.Write([]byte(`{"message":"Notification marked as read"}`))
		})

		require.NoError(t, client.MarkNotificationRead(withSession("t"), "n-1"))
		require.Equal(t, http.MethodPut, method)
		require.Equal(t, "/api/notifications/n-1/read", path)
	})

	t.Run("create posts json", func(t *testing.T) {
		var body map[string]any
		var contentType string
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			contentType = r.Header.Get("Content-Type")
			data, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(data, &body)
			_, _ = w.Write([]byte(`{"id":"m-1","member_number":"STM10001","first_name":"Jane","last_name":"Wanjiku","registration_date":"2023-04-01T00:00:00","created_at":"2024-01-15T10:30:00.123456"}`))
		})

		member, err := client.CreateMember(withSession("t"), backend.MemberCreate{MemberNumber: "STM10001", FirstName: "Jane", LastName: "Wanjiku"})
		require.NoError(t, err)
		require.Equal(t, "application/json", contentType)
		require.Equal(t, "STM10001", body["member_number"])
		require.Equal(t, "Jane Wanjiku", member.FullName())
		require.Equal(t, 2023, member.RegistrationDate.Year())
	})
}

func TestUnauthorized(t *testing.T) {
	var invalidated atomic.Int32
	var handleInCallback bool
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Could not validate credentials"}`, http.StatusUnauthorized)
	}, func(o *backend.Options) {
		o.OnUnauthorized = func(ctx context.Context) {
			invalidated.Add(1)
			_, handleInCallback = sessions.HandleFrom(ctx)
		}
	})

	_, err := client.DashboardStats(withSession("stale"))
	require.Error(t, err, "the caller still sees a failure")
	require.True(t, apperrors.IsUnauthorized(err))
	require.Equal(t, int32(1), invalidated.Load())
	require.True(t, handleInCallback)

	var se *apperrors.ServerError
	require.ErrorAs(t, err, &se)
	require.Contains(t, se.Body, "Could not validate credentials")
}

func TestServerError(t *testing.T) {
	var invalidated atomic.Int32
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Notification not found", http.StatusNotFound)
	}, func(o *backend.Options) {
		o.OnUnauthorized = func(context.Context) { invalidated.Add(1) }
	})

	err := client.MarkNotificationRead(withSession("t"), "gone")
	var se *apperrors.ServerError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusNotFound, se.Status)
	require.Equal(t, "Notification not found", se.Body)
	require.False(t, apperrors.IsUnauthorized(err))
	require.Zero(t, invalidated.Load())
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, func(o *backend.Options) {
		o.Timeout = 50 * time.Millisecond
	})
	defer close(release)

	start := time.Now()
	_, err := client.DashboardStats(withSession("t"))
	require.ErrorIs(t, err, apperrors.ErrTimeout)
	require.NotErrorIs(t, err, apperrors.ErrUnreachable)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	var calls atomic.Int32
	client := backend.NewClient(backend.Options{
		BaseURL:        baseURL,
		OnUnauthorized: func(context.Context) { calls.Add(1) },
	})

	_, err := client.DashboardStats(withSession("t"))
	require.ErrorIs(t, err, apperrors.ErrUnreachable)
	require.NotErrorIs(t, err, apperrors.ErrTimeout)
	require.Zero(t, calls.Load())
}

func TestNoRetry(t *testing.T) {
	var hits atomic.Int32
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})

	_, err := client.Members(withSession("t"), backend.MemberListParams{})
	require.Error(t, err)
	require.Equal(t, int32(1), hits.Load())
}

func TestNotificationsDecoding(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id":"a","recipient_id":"agent_id","recipient_type":"agent","notification_type":"payment_due","title":"Payment Overdue Alert","message":"m","is_read":false,"sent_at":"2024-01-15T10:30:00","read_at":null},
			{"id":"b","recipient_id":"agent_id","recipient_type":"agent","notification_type":"escalation","title":"Escalated","message":"m","is_read":true,"sent_at":"2024-01-14T10:30:00","read_at":"2024-01-14T12:00:00"}
		]`))
	})

	items, err := client.Notifications(withSession("t"), false)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, notifications.TypePaymentDue, items[0].Type)
	require.Nil(t, items[0].ReadAt)
	require.True(t, items[1].IsRead)
	require.NotNil(t, items[1].ReadAt)
}

func TestReportsKeepKeyOrder(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/reports/npl-summary":
			_, _ = w.Write([]byte(`[{"_id":"BR002","total_loans":5,"total_outstanding":100,"total_arrears":20,"avg_days_arrears":95}]`))
		case "/api/reports/collection-performance":
			_, _ = w.Write([]byte(`[{"_id":"kept","count":3,"total_amount":1500}]`))
		default:
			http.NotFound(w, r)
		}
	})
	ctx := withSession("t")

	npl, err := client.Report(ctx, reports.KindNPL)
	require.NoError(t, err)
	require.Equal(t, []string{"_id", "total_loans", "total_outstanding", "total_arrears", "avg_days_arrears"}, npl[0].Keys())

	collection, err := client.Report(ctx, reports.KindCollection)
	require.NoError(t, err)
	csv, err := reports.ExportCSV(collection)
	require.NoError(t, err)
	require.Equal(t, "_id,count,total_amount\nkept,3,1500", csv)
}

func TestDashboardStatsPercentages(t *testing.T) {
	require.Zero(t, backend.DashboardStats{}.NPLPercentage())
	require.Zero(t, backend.DashboardStats{}.ArrearsPercentage())

	stats := backend.DashboardStats{TotalLoans: 200, TotalNPLLoans: 30, TotalOutstandingAmount: 1000, TotalArrearsAmount: 250}
	require.InDelta(t, 15.0, stats.NPLPercentage(), 1e-9)
	require.InDelta(t, 25.0, stats.ArrearsPercentage(), 1e-9)
}

func TestLoanAccountHelpers(t *testing.T) {
	var loan backend.LoanAccount
	require.NoError(t, json.Unmarshal([]byte(`{
		"id":"l-1","loan_number":"LN12345","status":"non_performing",
		"outstanding_balance":200000,"arrears_amount":50000,
		"disbursement_date":"2023-01-01T00:00:00","maturity_date":"2025-01-01T00:00:00",
		"last_payment_date":null,"created_at":"2023-01-01T00:00:00"
	}`), &loan))
	require.True(t, loan.NonPerforming())
	require.InDelta(t, 25.0, loan.ArrearsPercentage(), 1e-9)
	require.Nil(t, loan.LastPaymentDate)
	require.Zero(t, backend.LoanAccount{}.ArrearsPercentage())
}
