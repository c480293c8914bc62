package database

import (
	"log/slog"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func GetDatabase(dsn string, debug bool) (*gorm.DB, error) {
	conf := &gorm.Config{}

	if !debug {
		conf.Logger = logger.Default.LogMode(logger.Silent)
	} else {
		conf.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(sqlite.Open(dsn), conf)

	if err != nil {
		slog.Error("db open error", slog.Any("error", err))
		return nil, err
	}

	return db, nil
}
