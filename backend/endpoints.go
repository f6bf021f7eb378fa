package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/npl-portal/notifications"
	"github.com/jrsteele09/npl-portal/reports"
)

func (c *Client) DashboardStats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	err := c.get(ctx, "/dashboard/stats", nil, &stats)
	return stats, err
}

func (c *Client) Members(ctx context.Context, params MemberListParams) ([]Member, error) {
	q := url.Values{}
	setInt(q, "skip", params.Skip)
	setInt(q, "limit", params.Limit)
	setString(q, "search", params.Search)

	var members []Member
	err := c.get(ctx, "/members", q, &members)
	return members, err
}

func (c *Client) Member(ctx context.Context, id string) (Member, error) {
	var member Member
	err := c.get(ctx, "/members/"+url.PathEscape(id), nil, &member)
	return member, err
}

func (c *Client) CreateMember(ctx context.Context, in MemberCreate) (Member, error) {
	var member Member
	err := c.do(ctx, http.MethodPost, "/members", in, &member)
	return member, err
}

func (c *Client) Loans(ctx context.Context, params LoanListParams) ([]LoanAccount, error) {
	q := url.Values{}
	setInt(q, "skip", params.Skip)
	setInt(q, "limit", params.Limit)
	setString(q, "status", params.Status)
	setString(q, "member_search", params.MemberSearch)

	var loans []LoanAccount
	err := c.get(ctx, "/loans", q, &loans)
	return loans, err
}

func (c *Client) Loan(ctx context.Context, id string) (LoanAccount, error) {
	var loan LoanAccount
	err := c.get(ctx, "/loans/"+url.PathEscape(id), nil, &loan)
	return loan, err
}

func (c *Client) MemberLoans(ctx context.Context, memberID string) ([]LoanAccount, error) {
	var loans []LoanAccount
	err := c.get(ctx, "/loans/member/"+url.PathEscape(memberID), nil, &loans)
	return loans, err
}

func (c *Client) CreateLoan(ctx context.Context, in LoanCreate) (LoanAccount, error) {
	var loan LoanAccount
	err := c.do(ctx, http.MethodPost, "/loans", in, &loan)
	return loan, err
}

// Notifications implements notifications.Source
func (c *Client) Notifications(ctx context.Context, unreadOnly bool) ([]notifications.Notification, error) {
	q := url.Values{}
	if unreadOnly {
		q.Set("unread_only", "true")
	}

	var items []notifications.Notification
	if err := c.get(ctx, "/notifications", q, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkNotificationRead implements notifications.Source
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/notifications/"+url.PathEscape(id)+"/read", nil, nil)
}

// NPLSummary returns the per-branch NPL rows in the backend's key order
func (c *Client) NPLSummary(ctx context.Context) ([]reports.Record, error) {
	var records []reports.Record
	err := c.get(ctx, "/reports/npl-summary", nil, &records)
	return records, err
}

// CollectionPerformance returns the promise-to-pay buckets in the backend's key order
func (c *Client) CollectionPerformance(ctx context.Context) ([]reports.Record, error) {
	var records []reports.Record
	err := c.get(ctx, "/reports/collection-performance", nil, &records)
	return records, err
}

// Report fetches the records behind a report kind
func (c *Client) Report(ctx context.Context, kind reports.Kind) ([]reports.Record, error) {
	if kind == reports.KindCollection {
		return c.CollectionPerformance(ctx)
	}
	return c.NPLSummary(ctx)
}

func setInt(q url.Values, key string, v int) {
	if v > 0 {
		q.Set(key, strconv.Itoa(v))
	}
}

func setString(q url.Values, key, v string) {
	if v != "" {
		q.Set(key, v)
	}
}

var _ notifications.Source = (*Client)(nil)
