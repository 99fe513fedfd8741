package workers

import (
	"context"
	"log"
	"time"

	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/metrics"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/models"
	"gorm.io/gorm"
)

type OutboxBatch struct{ Events []models.Outbox }

// FetchOutboxBatch claims the next batch of unprocessed events.
// FOR UPDATE SKIP LOCKED lets multiple workers run without stepping on each
// other; events are marked processed in the same statement.
func FetchOutboxBatch(ctx context.Context, db *gorm.DB, limit int) (OutboxBatch, error) {
	var evts []models.Outbox
	tx := db.WithContext(ctx).Raw(`
		WITH cte AS (
		  SELECT * FROM outboxes
		  WHERE processed = false
		  ORDER BY id ASC
		  LIMIT ?
		  FOR UPDATE SKIP LOCKED
		)
		UPDATE outboxes SET processed = true
		FROM cte
		WHERE outboxes.id = cte.id
		RETURNING cte.*`, limit).Scan(&evts)
	return OutboxBatch{Events: evts}, tx.Error
}

// PutDLQ inserts a failed outbox event into the DLQ table.
func PutDLQ(db *gorm.DB, ob models.Outbox, msg string) {
	metrics.DLQEvents.Inc()
	dlq := models.DLQ{
		OutboxID:   ob.ID,
		EntityType: ob.EntityType,
		EntityID:   ob.EntityID.String(),
		Op:         ob.Op,
		ErrorMsg:   msg,
		Payload:    ob.Payload,
		CreatedAt:  time.Now(),
		Resolved:   false,
	}
	if err := db.Create(&dlq).Error; err != nil {
		log.Printf("failed to insert into DLQ: %v", err)
	} else {
		log.Printf("DLQ record created for outbox_id=%d", ob.ID)
	}
}
