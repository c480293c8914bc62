package database

import (
	"gorm.io/gorm"

	"github.com/edtools/wingbot/internal/model"
)

type ParticipantQuery struct {
	Query[model.Participant]
	projectID uint
	userID    string
}

func NewParticipantQuery(db *gorm.DB) *ParticipantQuery {
	return &ParticipantQuery{
		Query: Query[model.Participant]{
			db:    db,
			order: "joined_at ASC, id ASC",
		},
	}
}

func (q *ParticipantQuery) Project(id uint) *ParticipantQuery {
	q.projectID = id
	return q
}

func (q *ParticipantQuery) User(id string) *ParticipantQuery {
	q.userID = id
	return q
}

func (q *ParticipantQuery) where() *gorm.DB {
	tx := q.db

	if q.projectID != 0 {
		tx = tx.Where("colonization_data_id = ?", q.projectID)
	}

	if q.userID != "" {
		tx = tx.Where("user_id = ?", q.userID)
	}

	return tx
}

func (q *ParticipantQuery) Get() []*model.Participant {
	return q.get(q.where().Model(&model.Participant{}))
}

func (q *ParticipantQuery) One() *model.Participant {
	return q.one(q.where().Model(&model.Participant{}))
}

func (q *ParticipantQuery) Count() int64 {
	return q.count(q.where().Model(&model.Participant{}))
}

func (q *ParticipantQuery) Delete() error {
	return q.where().Delete(&model.Participant{}).Error
}
