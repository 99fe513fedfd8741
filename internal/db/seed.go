package db

import (
	"log"

	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed inserts the event catalogue, the shared payment codes and a default
// admin. Safe to run on every boot; it skips when data already exists.
func Seed(db *gorm.DB) {
	var count int64
	db.Model(&models.Event{}).Count(&count)
	if count > 0 {
		log.Println("data already exists, skipping seed.")
		return
	}

	db.Transaction(func(tx *gorm.DB) error {
		events := []models.Event{
			{Slug: "hackathon", Name: "24h Hackathon", Fee: 500, Open: true},
			{Slug: "ctf", Name: "Capture The Flag", Fee: 300, Open: true},
			{Slug: "robo-race", Name: "Robo Race", Fee: 400, Open: true},
			{Slug: "paper-presentation", Name: "Paper Presentation", Fee: 200, Open: true},
		}
		if err := tx.Create(&events).Error; err != nil {
			return err
		}

		codes := []models.QRCode{
			{Label: "UPI-A-300", ImageRef: "qr/a-300.png", Amount: 300, Active: true, DailyCap: 50},
			{Label: "UPI-B-300", ImageRef: "qr/b-300.png", Amount: 300, Active: true, DailyCap: 50},
			{Label: "UPI-A-500", ImageRef: "qr/a-500.png", Amount: 500, Active: true, DailyCap: 50},
			{Label: "UPI-A-800", ImageRef: "qr/a-800.png", Amount: 800, Active: true, DailyCap: 50},
			{Label: "UPI-A-1600", ImageRef: "qr/a-1600.png", Amount: 1600, Active: true, DailyCap: 30},
		}
		if err := tx.Create(&codes).Error; err != nil {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		admin := models.Admin{Username: "admin", PasswordHash: string(hash), Active: true}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}

		log.Println("seed data inserted successfully.")
		return nil
	})
}
