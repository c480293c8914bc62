package wing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/edtools/wingbot/internal/gateway"
	"github.com/edtools/wingbot/internal/model"
)

// Message field keys. Keys carry the data identity, the labels next to
// them are display only and may change freely.
const (
	fieldKind        = "kind"
	fieldID          = "id"
	fieldLeader      = "leader"
	fieldActivity    = "activity"
	fieldLocation    = "location"
	fieldPlatform    = "platform"
	fieldVersion     = "version"
	fieldSpots       = "spots"
	fieldMembers     = "members"
	fieldExpires     = "expires"
	fieldPostChannel = "post_channel"
	fieldPostMessage = "post_message"
	fieldRequester   = "requester"
	fieldStatus      = "status"
)

const (
	kindTeamPost    = "team_post"
	kindJoinRequest = "join_request"
)

const (
	ButtonJoin    = "wing_join"
	ButtonAccept  = "wing_accept"
	ButtonReject  = "wing_reject"
	ButtonDismiss = "wing_dismiss"
)

const memberSep = ","

func RenderPost(p *TeamPost) *gateway.Message {
	return &gateway.Message{
		AuthorID: p.LeaderID,
		Title:    fmt.Sprintf("Team up: %s", p.Activity),
		Body:     fmt.Sprintf("<@%s> is looking for wingmates", p.LeaderID),
		Fields: []gateway.Field{
			{Key: fieldKind, Value: kindTeamPost},
			{Key: fieldID, Value: p.ID},
			{Key: fieldLeader, Label: "Leader", Value: p.LeaderID},
			{Key: fieldActivity, Label: "Activity", Value: p.Activity},
			{Key: fieldLocation, Label: "Location", Value: p.Location},
			{Key: fieldPlatform, Label: "Platform", Value: p.Platform},
			{Key: fieldVersion, Label: "Game version", Value: p.GameVersion},
			{Key: fieldSpots, Label: "Spots available", Value: fmt.Sprintf("%d/%d", p.SpotsAvailable, p.MaxSpots)},
			{Key: fieldMembers, Label: "Members", Value: strings.Join(p.Members, memberSep)},
			{Key: fieldExpires, Label: "Expires", Value: strconv.FormatInt(p.ExpiresAt.Unix(), 10)},
		},
		Mentions: []string{p.LeaderID},
		Buttons: []gateway.Button{
			{CustomID: ButtonJoin, Label: "Request to join"},
			{CustomID: ButtonDismiss, Label: "Dismiss"},
		},
	}
}

func ParsePost(msg *gateway.Message) (*TeamPost, error) {
	if kind, _ := msg.Field(fieldKind); kind != kindTeamPost {
		return nil, model.Invalid("message", "not a team post")
	}

	p := &TeamPost{}

	p.ID, _ = msg.Field(fieldID)
	p.LeaderID, _ = msg.Field(fieldLeader)
	p.Activity, _ = msg.Field(fieldActivity)
	p.Location, _ = msg.Field(fieldLocation)
	p.Platform, _ = msg.Field(fieldPlatform)
	p.GameVersion, _ = msg.Field(fieldVersion)

	spots, _ := msg.Field(fieldSpots)

	if _, err := fmt.Sscanf(spots, "%d/%d", &p.SpotsAvailable, &p.MaxSpots); err != nil {
		return nil, model.Invalid("spots", "unreadable")
	}

	if members, ok := msg.Field(fieldMembers); ok && members != "" {
		p.Members = strings.Split(members, memberSep)
	}

	if len(p.Members) == 0 || p.Members[0] != p.LeaderID {
		return nil, model.Invalid("members", "leader must be the first member")
	}

	if exp, ok := msg.Field(fieldExpires); ok {
		if ts, err := strconv.ParseInt(exp, 10, 64); err == nil {
			p.ExpiresAt = time.Unix(ts, 0)
		}
	}

	return p, nil
}

func RenderRequest(r *JoinRequest) *gateway.Message {
	var title, body string

	switch r.Status {
	case RequestAccepted:
		title = "Join request accepted"
		body = fmt.Sprintf("<@%s> is now on <@%s>'s team", r.RequesterID, r.LeaderID)
	case RequestRejected:
		title = "Join request rejected"
		body = fmt.Sprintf("<@%s>'s request was declined", r.RequesterID)
	default:
		title = "Join request"
		body = fmt.Sprintf("<@%s> wants to join <@%s>'s team", r.RequesterID, r.LeaderID)
	}

	msg := &gateway.Message{
		AuthorID: r.RequesterID,
		Title:    title,
		Body:     body,
		Fields: []gateway.Field{
			{Key: fieldKind, Value: kindJoinRequest},
			{Key: fieldID, Value: r.ID},
			{Key: fieldPostChannel, Value: r.PostChannel},
			{Key: fieldPostMessage, Value: r.PostMessage},
			{Key: fieldRequester, Label: "Requester", Value: r.RequesterID},
			{Key: fieldLeader, Label: "Leader", Value: r.LeaderID},
			{Key: fieldStatus, Label: "Status", Value: string(r.Status)},
			{Key: fieldExpires, Label: "Expires", Value: strconv.FormatInt(r.ExpiresAt.Unix(), 10)},
		},
		Mentions: []string{r.LeaderID, r.RequesterID},
	}

	if r.Status == RequestPending {
		msg.Buttons = []gateway.Button{
			{CustomID: ButtonAccept, Label: "Accept"},
			{CustomID: ButtonReject, Label: "Reject"},
		}
	} else {
		msg.Buttons = []gateway.Button{
			{CustomID: ButtonDismiss, Label: "Dismiss"},
		}
	}

	return msg
}

func ParseRequest(msg *gateway.Message) (*JoinRequest, error) {
	if kind, _ := msg.Field(fieldKind); kind != kindJoinRequest {
		return nil, model.Invalid("message", "not a join request")
	}

	r := &JoinRequest{}

	r.ID, _ = msg.Field(fieldID)
	r.PostChannel, _ = msg.Field(fieldPostChannel)
	r.PostMessage, _ = msg.Field(fieldPostMessage)
	r.RequesterID, _ = msg.Field(fieldRequester)
	r.LeaderID, _ = msg.Field(fieldLeader)

	status, _ := msg.Field(fieldStatus)
	r.Status = RequestStatus(status)

	if r.RequesterID == "" || r.LeaderID == "" {
		return nil, model.Invalid("request", "missing requester or leader")
	}

	if exp, ok := msg.Field(fieldExpires); ok {
		if ts, err := strconv.ParseInt(exp, 10, 64); err == nil {
			r.ExpiresAt = time.Unix(ts, 0)
		}
	}

	return r, nil
}
