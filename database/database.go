package database

import (
	"fmt"
	"log"

	"ctfcore/config"
	"ctfcore/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Configuration keys the scoring engine reads from the config table.
const (
	ConfigKeyCTFName      = "ctf_name"
	ConfigKeyStart        = "start"
	ConfigKeyEnd          = "end"
	ConfigKeyViewAfterCTF = "view_after_ctf"
	ConfigKeyMaxTries     = "max_tries"
	ConfigKeyVerifyEmails = "verify_emails"
)

// InitDB initializes the database connection, migrates the models and
// populates the config table with default values if needed
func InitDB() {
	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=disable TimeZone=UTC",
		config.PostgresHost, config.PostgresPort, config.PostgresUser, config.PostgresDB, config.PostgresPassword)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect database: ", err)
	}

	err = DB.AutoMigrate(
		&models.Config{},
		&models.Team{},
		&models.Challenge{},
		&models.FlagMatcher{},
		&models.FileRef{},
		&models.Tag{},
		&models.Solve{},
		&models.WrongAttempt{},
		&models.Award{},
	)
	if err != nil {
		log.Fatal("failed to migrate database: ", err)
	}

	Populate()
}

// Populate seeds the config table with default values if needed
func Populate() {
	defaults := map[string]string{
		ConfigKeyCTFName:      "CTF",
		ConfigKeyStart:        "0",
		ConfigKeyEnd:          "0",
		ConfigKeyViewAfterCTF: "0",
		ConfigKeyMaxTries:     "0",
		ConfigKeyVerifyEmails: "0",
	}

	for key, value := range defaults {
		var count int64
		DB.Model(&models.Config{}).Where("key = ?", key).Count(&count)
		if count == 0 {
			DB.Create(&models.Config{Key: key, Value: value})
			log.Println("Default config created: ", key)
		}
	}
}
