package sqlite

import (
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/voltpass/vpc-backend/internal/model"
	"github.com/voltpass/vpc-backend/internal/utils/config"
	"github.com/voltpass/vpc-backend/internal/utils/logger"
)

// New opens the order registry database and migrates the schema. The file is
// the complete durable state of the registry; nothing else needs to survive a
// restart.
func New(appConfig *config.AppConfig, logger *logger.Logger) *gorm.DB {
	if dir := filepath.Dir(appConfig.Sqlite.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Fatal("failed to create sqlite data dir", map[string]string{
				"dir":   dir,
				"error": err.Error(),
			})
		}
	}

	db, err := gorm.Open(sqlite.Open(appConfig.Sqlite.Path), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to open sqlite database", map[string]string{
			"path":  appConfig.Sqlite.Path,
			"error": err.Error(),
		})
	}

	if err := db.AutoMigrate(&model.Order{}); err != nil {
		logger.Fatal("failed to migrate order schema", map[string]string{
			"error": err.Error(),
		})
	}

	return db
}
