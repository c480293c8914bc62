package database

import (
	"strings"

	"gorm.io/gorm"

	"github.com/edtools/wingbot/internal/model"
)

type PositionQuery struct {
	Query[model.SystemPosition]
	name string
}

func NewPositionQuery(db *gorm.DB) *PositionQuery {
	return &PositionQuery{
		Query: Query[model.SystemPosition]{
			db:    db,
			order: "name ASC",
		},
	}
}

func (q *PositionQuery) Order(s string) *PositionQuery {
	q.order = s
	return q
}

func (q *PositionQuery) Limit(n int) *PositionQuery {
	q.limit = n
	return q
}

func (q *PositionQuery) Name(name string) *PositionQuery {
	q.name = strings.ToLower(name)
	return q
}

func (q *PositionQuery) where() *gorm.DB {
	tx := q.db

	if q.name != "" {
		tx = tx.Where("name = ?", q.name)
	}

	return tx
}

func (q *PositionQuery) Get() []*model.SystemPosition {
	return q.get(q.where().Model(&model.SystemPosition{}))
}

func (q *PositionQuery) One() *model.SystemPosition {
	return q.one(q.where().Model(&model.SystemPosition{}))
}

func (q *PositionQuery) Count() int64 {
	return q.count(q.where().Model(&model.SystemPosition{}))
}

func (q *PositionQuery) Delete() error {
	return q.where().Delete(&model.SystemPosition{}).Error
}
