package db

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/suPer8Hu/diy-assistant/internal/models"
	"github.com/suPer8Hu/diy-assistant/internal/project"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens a gorm connection for the given driver ("sqlite" or "mysql").
func Connect(driver, dsn string) (*gorm.DB, error) {
	dialector, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if isSQLite(driver) {
		// sqlite allows a single writer; one connection keeps transactions from
		// tripping over "database is locked".
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return gdb, nil
}

func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch {
	case isSQLite(driver):
		return sqlite.Open(SQLiteDSN(dsn)), nil
	case strings.EqualFold(driver, "mysql"):
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER=%q", driver)
	}
}

// SQLiteDSN turns on foreign key enforcement unless the DSN already sets pragmas.
func SQLiteDSN(dsn string) string {
	if dsn == "" {
		dsn = "diy_projects.db"
	}
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&project.Project{},
		&project.Step{},
		&project.Material{},
	)
}

func isSQLite(driver string) bool {
	d := strings.ToLower(strings.TrimSpace(driver))
	return d == "" || d == "sqlite" || d == "sqlite3"
}
