package model

import (
	"time"

	"github.com/edtools/wingbot/pkg/duration"
	"github.com/edtools/wingbot/pkg/space"
)

type WebProject struct {
	ID            uint         `json:"id"`
	ProjectName   string       `json:"project_name"`
	SystemName    string       `json:"system_name"`
	TimeLeft      int64        `json:"time_left"`
	TimeLeftText  string       `json:"time_left_text"`
	Position      *space.Point `json:"position,omitempty"`
	Distance      float64      `json:"distance,omitempty"`
	Architect     string       `json:"architect,omitempty"`
	Notes         string       `json:"notes,omitempty"`
	Progress      int          `json:"progress"`
	IsPrimaryPort bool         `json:"is_primary_port"`
	StarPortType  string       `json:"star_port_type,omitempty"`
	SrvSurveyLink string       `json:"srv_survey_link,omitempty"`
	IsCompleted   bool         `json:"is_completed"`
	AddedBy       string       `json:"added_by,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (p *Project) ToWeb() *WebProject {
	if p == nil {
		return nil
	}

	return &WebProject{
		ID:            p.ID,
		ProjectName:   p.ProjectName,
		SystemName:    p.SystemName,
		TimeLeft:      p.TimeLeft,
		TimeLeftText:  duration.HumanLeft(p.TimeLeft),
		Position:      p.Pos(),
		Architect:     p.Architect,
		Notes:         p.Notes,
		Progress:      p.Progress,
		IsPrimaryPort: p.IsPrimaryPort,
		StarPortType:  p.StarPortType,
		SrvSurveyLink: p.SrvSurveyLink,
		IsCompleted:   p.IsCompleted,
		AddedBy:       p.AddedBy,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

type CacheStats struct {
	TotalEntries int64      `json:"total_entries"`
	OldestEntry  *time.Time `json:"oldest_entry,omitempty"`
	NewestEntry  *time.Time `json:"newest_entry,omitempty"`
}
