// Package wing forms ad-hoc teams through chat messages. A team post's
// whole state lives in the rendered message, every transition re-reads
// the message, computes the successor state and writes it back.
package wing

import (
	"slices"
	"time"

	"github.com/edtools/wingbot/internal/model"
)

type PostState string

const (
	PostOpen PostState = "open"
	PostFull PostState = "full"
)

// TeamPost is the decoded state of one team-formation message.
// Members[0] is always the leader.
type TeamPost struct {
	ID             string
	LeaderID       string
	Activity       string
	Location       string
	Platform       string
	GameVersion    string
	MaxSpots       int
	SpotsAvailable int
	Members        []string
	ExpiresAt      time.Time
}

func (p *TeamPost) State() PostState {
	if p.SpotsAvailable > 0 {
		return PostOpen
	}

	return PostFull
}

func (p *TeamPost) IsMember(userID string) bool {
	return slices.Contains(p.Members, userID)
}

// CanJoin tells whether a join request from the user may be opened.
func (p *TeamPost) CanJoin(userID string) error {
	if userID == p.LeaderID {
		return model.Invalid("join", "you lead this team")
	}

	if p.IsMember(userID) {
		return model.Invalid("join", "already on this team")
	}

	if p.SpotsAvailable <= 0 {
		return model.Invalid("join", "no spots available")
	}

	return nil
}

// AddMember fills one spot with the user.
func (p *TeamPost) AddMember(userID string) error {
	if err := p.CanJoin(userID); err != nil {
		return err
	}

	p.Members = append(p.Members, userID)

	if p.SpotsAvailable > 0 {
		p.SpotsAvailable--
	}

	return nil
}

// RemoveMember frees the user's spot. The leader cannot leave their
// own team, they delete the post instead.
func (p *TeamPost) RemoveMember(userID string) error {
	if userID == p.LeaderID {
		return model.ErrUnauthorized
	}

	idx := slices.Index(p.Members, userID)

	if idx < 0 {
		return model.ErrNotFound
	}

	p.Members = slices.Delete(p.Members, idx, idx+1)

	if p.SpotsAvailable < p.MaxSpots {
		p.SpotsAvailable++
	}

	return nil
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// JoinRequest is the decoded state of one pending-approval message.
type JoinRequest struct {
	ID          string
	PostChannel string
	PostMessage string
	RequesterID string
	LeaderID    string
	Status      RequestStatus
	ExpiresAt   time.Time
}
