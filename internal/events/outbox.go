package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Event describes a billing event to store in the outbox.
type Event struct {
	CenterID  snowflake.ID
	Type      string
	Payload   map[string]any
	DedupeKey string
}

// OutboxRow is the persisted form of an Event.
type OutboxRow struct {
	ID        snowflake.ID      `gorm:"primaryKey"`
	CenterID  snowflake.ID      `gorm:"not null;uniqueIndex:ux_billing_events_dedupe,priority:1"`
	EventType string            `gorm:"type:text;not null"`
	Payload   datatypes.JSONMap `gorm:"type:jsonb;not null"`
	DedupeKey *string           `gorm:"type:text;uniqueIndex:ux_billing_events_dedupe,priority:2"`
	Published bool              `gorm:"not null;default:false"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (OutboxRow) TableName() string { return "billing_events" }

// Outbox inserts billing events into the billing_events table. Delivery is a
// consumer concern; duplicate dedupe keys no-op.
type Outbox struct {
	db    *gorm.DB
	genID *snowflake.Node
}

func NewOutbox(db *gorm.DB, genID *snowflake.Node) *Outbox {
	return &Outbox{db: db, genID: genID}
}

// Publish stores an event using the default database connection.
func (o *Outbox) Publish(ctx context.Context, event Event) error {
	return o.publish(ctx, o.db, event)
}

// PublishTx stores an event using an existing transaction.
func (o *Outbox) PublishTx(ctx context.Context, tx *gorm.DB, event Event) error {
	if tx == nil {
		return errors.New("missing_transaction")
	}
	return o.publish(ctx, tx, event)
}

func (o *Outbox) publish(ctx context.Context, db *gorm.DB, event Event) error {
	if o == nil || db == nil || o.genID == nil {
		return errors.New("outbox_unavailable")
	}
	if event.CenterID == 0 {
		return errors.New("invalid_center_id")
	}
	name := strings.TrimSpace(event.Type)
	if name == "" {
		return errors.New("missing_event_type")
	}

	payload := datatypes.JSONMap{}
	for key, value := range event.Payload {
		if strings.TrimSpace(key) == "" {
			continue
		}
		payload[key] = value
	}

	row := OutboxRow{
		ID:        o.genID.Generate(),
		CenterID:  event.CenterID,
		EventType: name,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	if dedupe := strings.TrimSpace(event.DedupeKey); dedupe != "" {
		row.DedupeKey = &dedupe
	}

	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "center_id"},
			{Name: "dedupe_key"},
		},
		DoNothing: true,
	}).Create(&row).Error
}

// Module provides the outbox writer.
var Module = fx.Module("events",
	fx.Provide(NewOutbox),
)
