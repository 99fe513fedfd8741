// Package outbox writes change events in the same transaction as the rows
// they describe. The sync worker and the leak monitor both consume the table.
package outbox

import (
	"encoding/json"
	"log"

	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Add inserts one event into the outbox. Call with the enclosing
// transaction handle so the event commits or rolls back with the row.
func Add(tx *gorm.DB, entityType string, entityID uuid.UUID, op string, payload any) error {
	data, _ := json.Marshal(payload)

	event := models.Outbox{
		EntityType: entityType,
		EntityID:   entityID,
		Op:         op,
		Payload:    datatypes.JSON(data),
	}

	if err := tx.Create(&event).Error; err != nil {
		log.Printf("failed to create outbox event for %s %s: %v", entityType, entityID, err)
		return err
	}
	return nil
}
