package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edtools/wingbot/internal/model"
)

type DatabaseManager struct {
	db     *gorm.DB
	logger *slog.Logger
}

func New(db *gorm.DB) *DatabaseManager {
	m := &DatabaseManager{
		db:     db,
		logger: slog.With("logger", "dbm"),
	}

	return m
}

func (mm *DatabaseManager) Create(s any) error {
	if mm == nil || mm.db == nil {
		return nil
	}

	err := mm.db.Create(s).Error

	if err != nil {
		mm.logger.Error("error create object", slog.Any("error", err))
	}

	return err
}

func (mm *DatabaseManager) Save(s any) error {
	if mm == nil || mm.db == nil {
		return nil
	}

	err := mm.db.Save(s).Error

	if err != nil {
		mm.logger.Error("error saving object", slog.Any("error", err))
	}

	return err
}

// ForceSave upserts, overwriting every column on key conflict.
func (mm *DatabaseManager) ForceSave(s any) error {
	if mm == nil || mm.db == nil {
		return nil
	}

	err := mm.db.Clauses(clause.OnConflict{UpdateAll: true}).Save(s).Error

	if err != nil {
		mm.logger.Error("error saving object", slog.Any("error", err))
	}

	return err
}

func (mm *DatabaseManager) ProjectQuery() *ProjectQuery {
	return NewProjectQuery(mm.db)
}

func (mm *DatabaseManager) ParticipantQuery() *ParticipantQuery {
	return NewParticipantQuery(mm.db)
}

func (mm *DatabaseManager) PositionQuery() *PositionQuery {
	return NewPositionQuery(mm.db)
}

func (mm *DatabaseManager) ClearPositions() error {
	if mm == nil || mm.db == nil {
		return nil
	}

	return mm.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.SystemPosition{}).Error
}

func (mm *DatabaseManager) Migrate() error {
	if mm == nil || mm.db == nil {
		return fmt.Errorf("no database")
	}

	// Migrate the schema
	if err := mm.db.AutoMigrate(
		&model.Project{},
		&model.Participant{},
		&model.SystemPosition{},
	); err != nil {
		return err
	}

	return nil
}
