package database

import (
	"log"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/Sk4rKr0w/wildlife-spotter-sub000/models"
)

var DB *gorm.DB

func Connect(dsn string) {
	var err error
	// TranslateError surfaces unique-constraint violations as
	// gorm.ErrDuplicatedKey so handlers can answer 409 instead of 500.
	DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("Failed to connect to database!", err)
	}

	if err := DB.AutoMigrate(&models.StoredImage{}, &models.User{}, &models.Sighting{}); err != nil {
		log.Fatal("Auto migrate failed!", err)
	}

	log.Println("Database connection established")
}
