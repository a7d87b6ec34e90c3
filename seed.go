package main

import (
	"log"
	"os"

	"design-request-server/database"
	"design-request-server/models"
	"design-request-server/utils"
)

// SeedUsers creates the initial accounts on an empty database. The admin
// password comes from SEED_ADMIN_PASSWORD; without it, seeding is skipped.
func SeedUsers() {
	var count int64
	if err := database.DB.Model(&models.User{}).Count(&count).Error; err != nil {
		log.Printf("❌ Seed check failed: %v", err)
		return
	}
	if count > 0 {
		return
	}

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		log.Println("⚠️ SEED_ADMIN_PASSWORD not set, skipping initial account seeding")
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		log.Printf("❌ Seed password hashing failed: %v", err)
		return
	}

	users := []models.User{
		{FullName: "Dashboard Admin", Email: "admin@designhub.local", PasswordHash: hash, Role: models.RoleAdmin, IsActive: true},
		{FullName: "Lead Producer", Email: "producer@designhub.local", PasswordHash: hash, Role: models.RoleProducer, IsActive: true},
		{FullName: "Studio Designer", Email: "designer@designhub.local", PasswordHash: hash, Role: models.RoleDesigner, IsActive: true},
		{FullName: "Marketing Requester", Email: "requester@designhub.local", PasswordHash: hash, Role: models.RoleRequester, IsActive: true},
	}

	for _, user := range users {
		if err := database.DB.Create(&user).Error; err != nil {
			log.Printf("❌ Failed to seed user %s: %v", user.Email, err)
			continue
		}
		log.Printf("✅ Seeded %s account: %s", user.Role, user.Email)
	}
}
