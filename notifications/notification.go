package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/npl-portal/internal/utils"
)

// Type classifies a notification. Unknown wire values decode as TypeOther.
type Type string

const (
	TypePaymentDue Type = "payment_due"
	TypePromiseDue Type = "promise_due"
	TypeEscalation Type = "escalation"
	TypeOther      Type = "other"
)

func ParseType(s string) Type {
	switch t := Type(s); t {
	case TypePaymentDue, TypePromiseDue, TypeEscalation:
		return t
	}
	return TypeOther
}

// Label is the type as displayed, e.g. "payment due"
func (t Type) Label() string {
	switch t {
	case TypePaymentDue:
		return "payment due"
	case TypePromiseDue:
		return "promise due"
	case TypeEscalation:
		return "escalation"
	}
	return "other"
}

// Notification is a message for an agent. ReadAt is set if and only if IsRead.
type Notification struct {
	ID            string     `json:"id"`
	RecipientID   string     `json:"recipient_id"`
	RecipientType string     `json:"recipient_type"`
	Type          Type       `json:"notification_type"`
	Title         string     `json:"title"`
	Message       string     `json:"message"`
	IsRead        bool       `json:"is_read"`
	SentAt        time.Time  `json:"sent_at"`
	ReadAt        *time.Time `json:"read_at"`
}

type wireNotification struct {
	ID            json.RawMessage  `json:"id"`
	RecipientID   string           `json:"recipient_id"`
	RecipientType string           `json:"recipient_type"`
	Type          string           `json:"notification_type"`
	Title         string           `json:"title"`
	Message       string           `json:"message"`
	IsRead        bool             `json:"is_read"`
	SentAt        utils.Timestamp  `json:"sent_at"`
	ReadAt        *utils.Timestamp `json:"read_at"`
}

// UnmarshalJSON accepts string or numeric ids and the backend's timestamp
// forms, and normalises the read invariant.
func (n *Notification) UnmarshalJSON(data []byte) error {
	var w wireNotification
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	id, err := decodeID(w.ID)
	if err != nil {
		return err
	}

	*n = Notification{
		ID:            id,
		RecipientID:   w.RecipientID,
		RecipientType: w.RecipientType,
		Type:          ParseType(w.Type),
		Title:         w.Title,
		Message:       w.Message,
		IsRead:        w.IsRead,
		SentAt:        w.SentAt.Time,
	}
	if w.ReadAt != nil && !w.ReadAt.IsZero() {
		n.ReadAt = utils.Ptr(w.ReadAt.Time)
	}
	n.Normalize()
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return "", err
	}
	return num.String(), nil
}

// MarkRead stamps the notification as read. Marking twice keeps the first stamp.
func (n *Notification) MarkRead(now time.Time) {
	if n.IsRead {
		return
	}
	n.IsRead = true
	n.ReadAt = utils.TimePtr(now)
}

// Normalize repairs records that break the read invariant. A read timestamp
// is taken as proof of reading; a read flag without a stamp borrows SentAt.
func (n *Notification) Normalize() {
	switch {
	case n.ReadAt != nil && !n.IsRead:
		n.IsRead = true
	case n.IsRead && n.ReadAt == nil:
		n.ReadAt = utils.TimePtr(n.SentAt)
	}
}

// Samples synthesises the demo notifications shown by "Generate Sample Notifications"
func Samples(now time.Time) []Notification {
	sample := func(t Type, title, message string) Notification {
		return Notification{
			ID:            uuid.NewString(),
			RecipientID:   "demo_user",
			RecipientType: "agent",
			Type:          t,
			Title:         title,
			Message:       message,
			SentAt:        now,
		}
	}
	return []Notification{
		sample(TypePaymentDue, "Payment Overdue Alert",
			"Member STM10001 has a payment overdue by 15 days. Outstanding: KES 125,000"),
		sample(TypePromiseDue, "Promise to Pay Due Today",
			"Member STM10002 promised to pay KES 50,000 today. Follow up required."),
		sample(TypeEscalation, "Case Escalated to External Partner",
			"Loan LN12345 has been escalated to Elite Recovery Services for collection."),
	}
}
