package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ModerationAction string

const (
	ModerationActionSubmit    ModerationAction = "submit"
	ModerationActionApprove   ModerationAction = "approve"
	ModerationActionReject    ModerationAction = "reject"
	ModerationActionFeature   ModerationAction = "feature"
	ModerationActionUnfeature ModerationAction = "unfeature"
	ModerationActionBan       ModerationAction = "ban"
	ModerationActionDelete    ModerationAction = "delete"
)

// ModerationState is derived from listing flags plus the event log. The
// listing row has no rejected flag; rejection only exists as an event.
type ModerationState string

const (
	ModerationStateDraft    ModerationState = "draft"
	ModerationStatePending  ModerationState = "pending"
	ModerationStateRejected ModerationState = "rejected"
	ModerationStateApproved ModerationState = "approved"
	ModerationStateFeatured ModerationState = "featured"
	ModerationStateDeleted  ModerationState = "deleted"
)

type EventDetail map[string]any

func (d EventDetail) Value() (driver.Value, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d)
}

func (d *EventDetail) Scan(value any) error {
	if value == nil {
		*d = EventDetail{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("expected []byte for event detail, got %T", value)
	}
	return json.Unmarshal(raw, d)
}

// ModerationEvent is an append-only audit record.
type ModerationEvent struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	Action    ModerationAction `db:"action" json:"action"`
	ActorID   uuid.UUID        `db:"actor_id" json:"actor_id"`
	TargetID  uuid.UUID        `db:"target_id" json:"target_id"`
	Detail    EventDetail      `db:"detail" json:"detail,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// DeriveModerationState combines the listing flags with the most recent
// audit event. latest may be nil.
func DeriveModerationState(l Listing, latest *ModerationEvent) ModerationState {
	switch {
	case l.DeletedAt != nil:
		return ModerationStateDeleted
	case l.IsApproved && l.IsFeatured:
		return ModerationStateFeatured
	case l.IsApproved:
		return ModerationStateApproved
	case latest != nil && latest.Action == ModerationActionReject:
		return ModerationStateRejected
	}
	return ModerationStatePending
}
