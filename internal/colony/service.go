// Package colony owns the colonization project records: creation,
// progress tracking, participants, filtered listings.
package colony

import (
	"context"
	"log/slog"
	"time"

	"github.com/edtools/wingbot/internal/callbacks"
	"github.com/edtools/wingbot/internal/database"
	"github.com/edtools/wingbot/internal/model"
	"github.com/edtools/wingbot/internal/syscache"
	"github.com/edtools/wingbot/pkg/duration"
	"github.com/edtools/wingbot/pkg/space"
)

const DefaultPageSize = 10

type Service struct {
	dbm      *database.DatabaseManager
	cache    *syscache.SystemCache
	logger   *slog.Logger
	changeCb *callbacks.Callback[*model.WebProject]
	deleteCb *callbacks.Callback[uint]
}

func New(dbm *database.DatabaseManager, cache *syscache.SystemCache) *Service {
	return &Service{
		dbm:      dbm,
		cache:    cache,
		logger:   slog.With("logger", "colony"),
		changeCb: callbacks.New[*model.WebProject](),
		deleteCb: callbacks.New[uint](),
	}
}

func (s *Service) ChangeCallback() *callbacks.Callback[*model.WebProject] {
	return s.changeCb
}

func (s *Service) DeleteCallback() *callbacks.Callback[uint] {
	return s.deleteCb
}

// Add stores a new project. The submitter is enrolled as its first
// participant. The system is geocoded best-effort, a failed lookup
// leaves the position unknown.
func (s *Service) Add(ctx context.Context, p *model.Project) error {
	if p == nil {
		return model.Invalid("project", "empty")
	}

	p.ProjectName = model.NormalizeProjectName(p.ProjectName)

	if p.ProjectName == "" {
		return model.Invalid("project_name", "required")
	}

	if p.SystemName == "" {
		return model.Invalid("system_name", "required")
	}

	if p.Progress < 0 || p.Progress > 100 {
		return model.Invalid("progress", "must be 0..100")
	}

	if s.dbm.ProjectQuery().Name(p.ProjectName).One() != nil {
		return model.ErrConflict
	}

	if p.Pos() == nil {
		if rec := s.cache.Get(ctx, p.SystemName); rec != nil {
			p.SetPos(rec.Pos())
		}
	}

	if p.Progress >= 100 {
		p.IsCompleted = true
		p.TimeLeft = duration.Infinite
	}

	if err := s.dbm.Create(p); err != nil {
		return err
	}

	if p.AddedBy != "" {
		_ = s.dbm.Create(&model.Participant{
			ColonizationDataID: p.ID,
			UserID:             p.AddedBy,
			JoinedAt:           time.Now(),
		})
	}

	s.logger.Info("project added", slog.String("name", p.ProjectName), slog.String("system", p.SystemName))
	s.changeCb.Notify(p.ToWeb())

	return nil
}

func (s *Service) Get(id uint) *model.Project {
	return s.dbm.ProjectQuery().Id(id).One()
}

func (s *Service) GetByName(name string) *model.Project {
	return s.dbm.ProjectQuery().Name(name).One()
}

type ListFilter struct {
	Page        int
	PageSize    int
	Name        string
	Architect   string
	System      string
	Origin      *space.Point
	MaxDistance float64
}

func (f ListFilter) page() (int, int) {
	page := f.Page
	if page < 1 {
		page = 1
	}

	size := f.PageSize
	if size < 1 {
		size = DefaultPageSize
	}

	return page, size
}

func (f ListFilter) spatial() bool {
	return f.Origin != nil
}

func (s *Service) activeQuery(f ListFilter) *database.ProjectQuery {
	return s.dbm.ProjectQuery().
		Active().
		NameLike(f.Name).
		ArchitectLike(f.Architect).
		SystemLike(f.System)
}

// ListActive returns one page of active projects. Without an origin the
// order is shortest time left first, primary ports winning ties. With an
// origin proximity takes over and rows without coordinates are dropped.
func (s *Service) ListActive(f ListFilter) []*model.Project {
	page, size := f.page()

	if !f.spatial() {
		return s.activeQuery(f).Page(page, size).Get()
	}

	res := s.spatialList(f)

	lo := (page - 1) * size
	if lo >= len(res) {
		return nil
	}

	hi := lo + size
	if hi > len(res) {
		hi = len(res)
	}

	return res[lo:hi]
}

func (s *Service) spatialList(f ListFilter) []*model.Project {
	res := s.activeQuery(f).Get()

	if f.MaxDistance > 0 {
		res = space.WithinRadius(res, *f.Origin, f.MaxDistance)
	} else {
		withPos := make([]*model.Project, 0, len(res))

		for _, p := range res {
			if p.Pos() != nil {
				withPos = append(withPos, p)
			}
		}

		res = withPos
	}

	space.SortByDistance(res, *f.Origin)

	return res
}

// CountActive is the total the pagination of ListActive runs over.
func (s *Service) CountActive(f ListFilter) int64 {
	if !f.spatial() {
		return s.activeQuery(f).Count()
	}

	return int64(len(s.spatialList(f)))
}

// UpdateProgress sets the completion percentage. Reaching 100 marks the
// project completed and its time left becomes infinite.
func (s *Service) UpdateProgress(id uint, progress int) error {
	if progress < 0 || progress > 100 {
		return model.Invalid("progress", "must be 0..100")
	}

	updates := map[string]any{
		"progress":   progress,
		"updated_at": time.Now(),
	}

	if progress >= 100 {
		updates["is_completed"] = true
		updates["time_left"] = duration.Infinite
	}

	if err := s.dbm.ProjectQuery().Id(id).Update(updates); err != nil {
		return model.ErrNotFound
	}

	s.notifyChanged(id)

	return nil
}

// Update merges the given column values and stamps updated_at. A new
// system name triggers a re-geocode.
func (s *Service) Update(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return model.Invalid("fields", "nothing to update")
	}

	updates := make(map[string]any, len(fields)+1)

	for k, v := range fields {
		updates[k] = v
	}

	if name, ok := updates["system_name"].(string); ok {
		updates["position_x"] = nil
		updates["position_y"] = nil
		updates["position_z"] = nil

		if rec := s.cache.Get(ctx, name); rec != nil {
			updates["position_x"] = rec.X
			updates["position_y"] = rec.Y
			updates["position_z"] = rec.Z
		}
	}

	updates["updated_at"] = time.Now()

	if err := s.dbm.ProjectQuery().Id(id).Update(updates); err != nil {
		return model.ErrNotFound
	}

	s.notifyChanged(id)

	return nil
}

func (s *Service) MarkCompleted(id uint) error {
	updates := map[string]any{
		"is_completed": true,
		"time_left":    duration.Infinite,
		"updated_at":   time.Now(),
	}

	if err := s.dbm.ProjectQuery().Id(id).Update(updates); err != nil {
		return model.ErrNotFound
	}

	s.notifyChanged(id)

	return nil
}

// Remove deletes the project and its participants. Removing a project
// that is already gone is not an error.
func (s *Service) Remove(id uint) error {
	if err := s.dbm.ParticipantQuery().Project(id).Delete(); err != nil {
		return err
	}

	if err := s.dbm.ProjectQuery().Id(id).Delete(); err != nil {
		return err
	}

	s.deleteCb.Notify(id)

	return nil
}

func (s *Service) AddParticipant(projectID uint, userID string) error {
	if userID == "" {
		return model.Invalid("user", "required")
	}

	if s.Get(projectID) == nil {
		return model.ErrNotFound
	}

	if s.dbm.ParticipantQuery().Project(projectID).User(userID).One() != nil {
		return model.ErrAlreadyParticipating
	}

	return s.dbm.Create(&model.Participant{
		ColonizationDataID: projectID,
		UserID:             userID,
		JoinedAt:           time.Now(),
	})
}

// Participants lists user ids in join order.
func (s *Service) Participants(projectID uint) ([]string, error) {
	if s.Get(projectID) == nil {
		return nil, model.ErrNotFound
	}

	rows := s.dbm.ParticipantQuery().Project(projectID).Get()

	res := make([]string, 0, len(rows))

	for _, r := range rows {
		res = append(res, r.UserID)
	}

	return res, nil
}

func (s *Service) notifyChanged(id uint) {
	if p := s.Get(id); p != nil {
		s.changeCb.Notify(p.ToWeb())
	}
}
