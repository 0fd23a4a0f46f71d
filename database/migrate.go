package database

import (
	"epif/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func MigrateDatabase(db *gorm.DB, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.Assessment{},
	)

	if err != nil {
		log.WithError(err).Error("Error during migration")
		return err
	}

	log.Info("Database migrations completed successfully")
	return nil
}
