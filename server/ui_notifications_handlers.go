package server

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/jrsteele09/npl-portal/internal/errors"
	"github.com/jrsteele09/npl-portal/notifications"
	"github.com/rs/zerolog/log"
)

// NotificationsView is the content of the notifications page and its list partial
type NotificationsView struct {
	Items       []notifications.Notification
	Filter      notifications.Filter
	Filters     []notifications.Filter
	UnreadCount int
	Loading     bool
	Error       string
}

func newNotificationsView(snap notifications.Snapshot, errorMsg string) NotificationsView {
	return NotificationsView{
		Items:       snap.Items,
		Filter:      snap.Filter,
		Filters:     []notifications.Filter{notifications.FilterAll, notifications.FilterUnread},
		UnreadCount: snap.UnreadCount,
		Loading:     snap.Loading,
		Error:       errorMsg,
	}
}

func (v NotificationsView) EmptyMessage() string {
	return v.Filter.EmptyMessage()
}

// NotificationsHandler renders the feed (GET /notifications?filter=all|unread)
func (s *Server) NotificationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		feed := s.feeds.Feed(sessionKey(r))
		filter := notifications.ParseFilter(r.URL.Query().Get("filter"))

		errorMsg := r.URL.Query().Get("error")
		if err := feed.SetFilter(r.Context(), filter); err != nil {
			msg, handled := s.backendFailure(w, r, err)
			if handled {
				return
			}
			errorMsg = msg
		}

		view := newNotificationsView(feed.Snapshot(), errorMsg)
		if isHTMXRequest(r) {
			s.renderPartial(w, pageNotifications, partialNotificationList, view)
			return
		}

		data := s.newPageData(r, RouteNotifications, "Notifications")
		data.Content = view
		s.render(w, http.StatusOK, pageNotifications, data)
	}
}

// MarkNotificationReadHandler marks one notification as read (POST /notifications/{id}/read)
func (s *Server) MarkNotificationReadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		feed := s.feeds.Feed(sessionKey(r))
		err := feed.MarkRead(r.Context(), r.PathValue("id"))
		s.notificationActionResponse(w, r, feed, err)
	}
}

// MarkAllNotificationsReadHandler marks every unread notification as read (POST /notifications/read-all)
func (s *Server) MarkAllNotificationsReadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		feed := s.feeds.Feed(sessionKey(r))
		err := feed.MarkAllRead(r.Context())
		s.notificationActionResponse(w, r, feed, err)
	}
}

// AddSampleNotificationsHandler adds the demo notifications to the local feed (POST /notifications/samples)
func (s *Server) AddSampleNotificationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		feed := s.feeds.Feed(sessionKey(r))
		feed.AddSamples(notifications.NowTimeFunc())
		s.notificationActionResponse(w, r, feed, nil)
	}
}

// ClearNotificationsHandler empties the local feed (POST /notifications/clear)
func (s *Server) ClearNotificationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		feed := s.feeds.Feed(sessionKey(r))
		feed.Clear()
		s.notificationActionResponse(w, r, feed, nil)
	}
}

// notificationActionResponse answers a feed action: htmx requests get the
// refreshed list, plain form posts go back to the page.
func (s *Server) notificationActionResponse(w http.ResponseWriter, r *http.Request, feed *notifications.Feed, err error) {
	var errorMsg string
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			errorMsg = notFoundMsg
		} else {
			msg, handled := s.backendFailure(w, r, err)
			if handled {
				return
			}
			errorMsg = msg
		}
	}

	snap := feed.Snapshot()
	if isHTMXRequest(r) {
		s.renderPartial(w, pageNotifications, partialNotificationList, newNotificationsView(snap, errorMsg))
		return
	}

	target := RouteNotifications + "?filter=" + string(snap.Filter)
	if errorMsg != "" {
		redirectWithError(w, r, target, errorMsg)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// NotificationStreamHandler is the live feed (GET /notifications/stream). The
// connection mounts the session's feed, so polling runs only while a
// notifications view is open. Each change is sent as a "notifications" event
// carrying the rendered list. The stream ends with a "redirect" event as soon
// as the session expires, is logged out or is rejected by the backend.
func (s *Server) NotificationStreamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
			return
		}

		key := sessionKey(r)
		feed := s.feeds.Feed(key)

		rejected := false
		defer func() {
			if rejected {
				s.endStreamSession(r, key, feed)
			}
		}()
		updates, stop := feed.Watch()
		defer stop()
		feed.Mount(r.Context())
		defer feed.Unmount()

		var expiry <-chan time.Time
		if session, ok := currentSession(r); ok && !session.ExpiresAt.IsZero() {
			timer := time.NewTimer(time.Until(session.ExpiresAt) + time.Millisecond)
			defer timer.Stop()
			expiry = timer.C
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for {
			snap := feed.Snapshot()
			if reason := s.streamEndReason(r, key, snap); reason != nil {
				log.Info().Err(reason).Msg("Ending notification stream")
				rejected = true
				_ = writeEvent(w, "redirect", RouteLogin)
				flusher.Flush()
				return
			}

			var buf bytes.Buffer
			view := newNotificationsView(snap, "")
			if snap.Err != nil {
				view.Error = backendErrorMessage(snap.Err)
			}
			if err := s.pages[pageNotifications].ExecuteTemplate(&buf, partialNotificationList, view); err != nil {
				log.Err(err).Msg("Failed to render notification list")
				return
			}
			if err := writeEvent(w, "notifications", buf.String()); err != nil {
				return
			}
			flusher.Flush()

			select {
			case <-r.Context().Done():
				return
			case <-updates:
			case <-expiry:
				expiry = nil
			}
		}
	}
}

// streamEndReason returns why the stream's session can no longer be served,
// or nil while it can.
func (s *Server) streamEndReason(r *http.Request, key string, snap notifications.Snapshot) error {
	switch {
	case sessionInvalidated(r):
		return apperrors.ErrSessionNotFound
	case apperrors.IsUnauthorized(snap.Err):
		return snap.Err
	case snap.Closed:
		if snap.Err != nil {
			return snap.Err
		}
		return apperrors.ErrSessionNotFound
	}
	return s.gate.Verify(r.Context(), key)
}

// endStreamSession drops the stream's feed and whatever is left of its session
func (s *Server) endStreamSession(r *http.Request, key string, feed *notifications.Feed) {
	s.feeds.Release(key, feed)
	if err := s.gate.Logout(context.WithoutCancel(r.Context()), key); err != nil {
		log.Err(err).Msg("Failed to clear session")
	}
}

// writeEvent writes one server-sent event; multi-line data becomes one data field per line
func writeEvent(w http.ResponseWriter, event, data string) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "event: %s\n", event)
	scanner := bufio.NewScanner(bytes.NewBufferString(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		fmt.Fprintf(&buf, "data: %s\n", scanner.Text())
	}
	buf.WriteString("\n")
	_, err := w.Write(buf.Bytes())
	return err
}
