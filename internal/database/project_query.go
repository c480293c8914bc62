package database

import (
	"strings"

	"gorm.io/gorm"

	"github.com/edtools/wingbot/internal/model"
)

type ProjectQuery struct {
	Query[model.Project]
	id            uint
	name          string
	nameLike      string
	architectLike string
	systemLike    string
	active        bool
	full          bool
}

func NewProjectQuery(db *gorm.DB) *ProjectQuery {
	return &ProjectQuery{
		Query: Query[model.Project]{
			db:     db,
			limit:  0,
			offset: 0,
			order:  "time_left ASC, is_primary_port DESC, id ASC",
		},
	}
}

func (q *ProjectQuery) Order(s string) *ProjectQuery {
	q.order = s
	return q
}

func (q *ProjectQuery) Limit(n int) *ProjectQuery {
	q.limit = n
	return q
}

func (q *ProjectQuery) Offset(n int) *ProjectQuery {
	q.offset = n
	return q
}

// Page sets limit and offset for a 1-based page number.
func (q *ProjectQuery) Page(page, size int) *ProjectQuery {
	if page < 1 {
		page = 1
	}

	q.limit = size
	q.offset = (page - 1) * size

	return q
}

func (q *ProjectQuery) Id(id uint) *ProjectQuery {
	q.id = id
	return q
}

// Name matches the normalized project name exactly.
func (q *ProjectQuery) Name(name string) *ProjectQuery {
	q.name = model.NormalizeProjectName(name)
	return q
}

func (q *ProjectQuery) NameLike(s string) *ProjectQuery {
	q.nameLike = s
	return q
}

func (q *ProjectQuery) ArchitectLike(s string) *ProjectQuery {
	q.architectLike = s
	return q
}

func (q *ProjectQuery) SystemLike(s string) *ProjectQuery {
	q.systemLike = s
	return q
}

func (q *ProjectQuery) Active() *ProjectQuery {
	q.active = true
	return q
}

func (q *ProjectQuery) Full() *ProjectQuery {
	q.full = true
	return q
}

func sub(s string) string {
	return "%" + strings.ToLower(s) + "%"
}

func (q *ProjectQuery) where() *gorm.DB {
	tx := q.db

	if q.id != 0 {
		tx = tx.Where("id = ?", q.id)
	}

	if q.name != "" {
		tx = tx.Where("project_name = ?", q.name)
	}

	if q.nameLike != "" {
		tx = tx.Where("LOWER(project_name) LIKE ?", sub(q.nameLike))
	}

	if q.architectLike != "" {
		tx = tx.Where("LOWER(architect) LIKE ?", sub(q.architectLike))
	}

	if q.systemLike != "" {
		tx = tx.Where("LOWER(system_name) LIKE ?", sub(q.systemLike))
	}

	if q.active {
		tx = tx.Where("is_completed = ?", false)
	}

	if q.full {
		tx = tx.Preload("Participants")
	}

	return tx
}

func (q *ProjectQuery) Get() []*model.Project {
	return q.get(q.where().Model(&model.Project{}))
}

func (q *ProjectQuery) One() *model.Project {
	return q.one(q.where().Model(&model.Project{}))
}

func (q *ProjectQuery) Count() int64 {
	return q.count(q.where().Model(&model.Project{}))
}

func (q *ProjectQuery) Update(updates map[string]any) error {
	return q.updateOrError(q.where().Model(&model.Project{}), updates)
}

func (q *ProjectQuery) Delete() error {
	return q.where().Delete(&model.Project{}).Error
}
