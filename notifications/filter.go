package notifications

// Filter selects which notifications the feed fetches
type Filter string

const (
	FilterAll    Filter = "all"
	FilterUnread Filter = "unread"
)

// ParseFilter defaults to FilterAll for anything unrecognised
func ParseFilter(s string) Filter {
	if Filter(s) == FilterUnread {
		return FilterUnread
	}
	return FilterAll
}

func (f Filter) UnreadOnly() bool {
	return f == FilterUnread
}

// EmptyMessage is shown when the feed has no items
func (f Filter) EmptyMessage() string {
	if f == FilterUnread {
		return "No unread notifications"
	}
	return "No notifications found"
}

func UnreadCount(items []Notification) int {
	count := 0
	for _, n := range items {
		if !n.IsRead {
			count++
		}
	}
	return count
}
