package model

import (
	"strings"
	"time"

	"github.com/edtools/wingbot/pkg/space"
)

// Project is one tracked colonization effort in a star system.
type Project struct {
	ID            uint   `gorm:"primarykey"`
	ProjectName   string `gorm:"uniqueIndex"`
	SystemName    string
	TimeLeft      int64
	PositionX     *float64
	PositionY     *float64
	PositionZ     *float64
	Architect     string
	Notes         string
	Progress      int
	IsPrimaryPort bool
	StarPortType  string
	SrvSurveyLink string
	IsCompleted   bool `gorm:"index"`
	AddedBy       string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Participants []*Participant `gorm:"foreignKey:ColonizationDataID;constraint:OnDelete:CASCADE"`
}

func (p *Project) TableName() string {
	return "colonization_data"
}

// Pos returns the system position, nil until all coordinates are known.
func (p *Project) Pos() *space.Point {
	if p == nil || p.PositionX == nil || p.PositionY == nil || p.PositionZ == nil {
		return nil
	}

	return &space.Point{X: *p.PositionX, Y: *p.PositionY, Z: *p.PositionZ}
}

func (p *Project) SetPos(pt *space.Point) {
	if pt == nil {
		p.PositionX, p.PositionY, p.PositionZ = nil, nil, nil

		return
	}

	x, y, z := pt.X, pt.Y, pt.Z
	p.PositionX, p.PositionY, p.PositionZ = &x, &y, &z
}

type Participant struct {
	ID                 uint   `gorm:"primarykey"`
	ColonizationDataID uint   `gorm:"uniqueIndex:idx_project_user"`
	UserID             string `gorm:"uniqueIndex:idx_project_user"`
	JoinedAt           time.Time
}

// SystemPosition is one memoized geocoding answer, keyed by the
// lowercased system name. Entries never expire.
type SystemPosition struct {
	Name         string `gorm:"primarykey"`
	X            float64
	Y            float64
	Z            float64
	CoordsLocked bool
	CachedAt     time.Time
}

func (s *SystemPosition) Pos() *space.Point {
	if s == nil {
		return nil
	}

	return &space.Point{X: s.X, Y: s.Y, Z: s.Z}
}

// NormalizeProjectName makes the unique project key: lowercase with
// spaces turned into underscores.
func NormalizeProjectName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}
