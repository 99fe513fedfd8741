package db

import (
	"log"

	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/models"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.Registrant{},
		&models.Team{},
		&models.Registration{},
		&models.QRCode{},
		&models.Event{},
		&models.SupportTicket{},
		&models.Admin{},
		&models.Outbox{},
		&models.DLQ{},
	)
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Println("database migrated successfully")
}
