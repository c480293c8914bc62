// Package dispatcher turns inbound chat commands and button presses
// into calls on the colony store and the wing machine. Every error is
// converted to a user-facing reply here, nothing propagates.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/edtools/wingbot/internal/colony"
	"github.com/edtools/wingbot/internal/gateway"
	"github.com/edtools/wingbot/internal/model"
	"github.com/edtools/wingbot/internal/syscache"
	"github.com/edtools/wingbot/internal/wing"
	"github.com/edtools/wingbot/pkg/duration"
	"github.com/edtools/wingbot/pkg/space"
)

type Reply struct {
	Text      string
	Ephemeral bool
}

type Dispatcher struct {
	colony  *colony.Service
	machine *wing.Machine
	cache   *syscache.SystemCache
	logger  *slog.Logger
}

func New(colonySvc *colony.Service, machine *wing.Machine, cache *syscache.SystemCache) *Dispatcher {
	return &Dispatcher{
		colony:  colonySvc,
		machine: machine,
		cache:   cache,
		logger:  slog.With("logger", "dispatcher"),
	}
}

// HandleCommand runs a slash command. ref points at the message the
// command targets, when the command needs one.
func (d *Dispatcher) HandleCommand(ctx context.Context, name string, args map[string]string, actingUser string, ref gateway.MessageRef) *Reply {
	var reply *Reply

	switch name {
	case "wing_create":
		reply = d.wingCreate(ctx, args, actingUser)
	case "wing_leave":
		reply = d.reportErr(d.machine.LeaveTeam(ctx, ref, actingUser), "you left the team")
	case "wing_dismiss":
		reply = d.reportErr(d.machine.Dismiss(ctx, ref, actingUser), "post deleted")
	case "col_add":
		reply = d.colAdd(ctx, args, actingUser)
	case "col_list":
		reply = d.colList(ctx, args)
	case "col_update":
		reply = d.colUpdate(ctx, args)
	case "col_progress":
		reply = d.colProgress(args)
	case "col_complete":
		reply = d.withProject(args, func(p *model.Project) *Reply {
			return d.reportErr(d.colony.MarkCompleted(p.ID), fmt.Sprintf("%s marked completed", p.ProjectName))
		})
	case "col_remove":
		reply = d.withProject(args, func(p *model.Project) *Reply {
			return d.reportErr(d.colony.Remove(p.ID), fmt.Sprintf("%s removed", p.ProjectName))
		})
	case "col_participate":
		reply = d.withProject(args, func(p *model.Project) *Reply {
			return d.reportErr(d.colony.AddParticipant(p.ID, actingUser), fmt.Sprintf("you joined %s", p.ProjectName))
		})
	case "col_participants":
		reply = d.colParticipants(args)
	default:
		reply = &Reply{Text: "unknown command", Ephemeral: true}
	}

	commandsMetric.WithLabelValues(name, statusOf(reply)).Inc()

	return reply
}

// HandleButton runs a message button press. A custom id may carry a
// suffix after a colon, e.g. "col_page:2".
func (d *Dispatcher) HandleButton(ctx context.Context, customID string, actingUser string, ref gateway.MessageRef) *Reply {
	var reply *Reply

	name, arg := customID, ""
	if idx := strings.Index(customID, ":"); idx > 0 {
		name, arg = customID[:idx], customID[idx+1:]
	}

	switch name {
	case wing.ButtonJoin:
		_, err := d.machine.RequestJoin(ctx, ref, actingUser)
		reply = d.reportErr(err, "request sent, the leader will decide")
	case wing.ButtonAccept:
		reply = d.reportErr(d.machine.Resolve(ctx, ref, wing.ActionAccept, actingUser), "welcome aboard")
	case wing.ButtonReject:
		reply = d.reportErr(d.machine.Resolve(ctx, ref, wing.ActionReject, actingUser), "request declined")
	case wing.ButtonDismiss:
		reply = d.reportErr(d.machine.Dismiss(ctx, ref, actingUser), "dismissed")
	case "col_page":
		reply = d.colList(ctx, map[string]string{"page": arg})
	default:
		reply = &Reply{Text: "unknown action", Ephemeral: true}
	}

	buttonsMetric.WithLabelValues(name, statusOf(reply)).Inc()

	return reply
}

func (d *Dispatcher) wingCreate(ctx context.Context, args map[string]string, actingUser string) *Reply {
	_, err := d.machine.CreateTeamPost(ctx,
		args["channel"],
		actingUser,
		args["activity"],
		args["location"],
		args["platform"],
		args["version"],
		args["duration"])

	return d.reportErr(err, "team post is up, good hunting")
}

func (d *Dispatcher) colAdd(ctx context.Context, args map[string]string, actingUser string) *Reply {
	p := &model.Project{
		ProjectName:   args["project_name"],
		SystemName:    args["system_name"],
		Architect:     args["architect"],
		Notes:         args["notes"],
		TimeLeft:      duration.Parse(args["time_left"]),
		IsPrimaryPort: args["is_primary_port"] == "true",
		StarPortType:  args["star_port_type"],
		SrvSurveyLink: args["srv_survey_link"],
		AddedBy:       actingUser,
	}

	if v := args["progress"]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return d.reportErr(model.Invalid("progress", "not a number"), "")
		}

		p.Progress = n
	}

	if err := d.colony.Add(ctx, p); err != nil {
		return d.reportErr(err, "")
	}

	return &Reply{Text: fmt.Sprintf("%s added (#%d)", p.ProjectName, p.ID)}
}

func (d *Dispatcher) colList(ctx context.Context, args map[string]string) *Reply {
	f := colony.ListFilter{
		Name:      args["name"],
		Architect: args["architect"],
		System:    args["system"],
	}

	if v := args["page"]; v != "" {
		f.Page, _ = strconv.Atoi(v)
	}

	if v := args["page_size"]; v != "" {
		f.PageSize, _ = strconv.Atoi(v)
	}

	if origin := args["origin_system"]; origin != "" {
		rec := d.cache.Get(ctx, origin)

		if rec == nil {
			return &Reply{Text: fmt.Sprintf("system %s is unknown, try another origin", origin), Ephemeral: true}
		}

		f.Origin = rec.Pos()

		if v := args["max_distance"]; v != "" {
			f.MaxDistance, _ = strconv.ParseFloat(v, 64)
		}
	}

	projects := d.colony.ListActive(f)
	total := d.colony.CountActive(f)

	if len(projects) == 0 {
		return &Reply{Text: "no active projects found", Ephemeral: true}
	}

	sb := strings.Builder{}

	page, size := 1, colony.DefaultPageSize
	if f.Page > 1 {
		page = f.Page
	}

	if f.PageSize > 0 {
		size = f.PageSize
	}

	pages := (int(total) + size - 1) / size

	sb.WriteString(fmt.Sprintf("active projects (page %d/%d):\n", page, pages))

	for _, p := range projects {
		sb.WriteString(fmt.Sprintf("- #%d %s @ %s, %d%%, %s left", p.ID, p.ProjectName, p.SystemName, p.Progress, duration.HumanLeft(p.TimeLeft)))

		if p.IsPrimaryPort {
			sb.WriteString(" [primary]")
		}

		if f.Origin != nil {
			if pos := p.Pos(); pos != nil {
				sb.WriteString(fmt.Sprintf(", %.1f ly", space.Distance(*pos, *f.Origin)))
			}
		}

		sb.WriteString("\n")
	}

	return &Reply{Text: sb.String()}
}

func (d *Dispatcher) colUpdate(ctx context.Context, args map[string]string) *Reply {
	return d.withProject(args, func(p *model.Project) *Reply {
		fields := make(map[string]any)

		for arg, col := range map[string]string{
			"system_name":     "system_name",
			"architect":       "architect",
			"notes":           "notes",
			"star_port_type":  "star_port_type",
			"srv_survey_link": "srv_survey_link",
		} {
			if v, ok := args[arg]; ok {
				fields[col] = v
			}
		}

		if v, ok := args["time_left"]; ok {
			fields["time_left"] = duration.Parse(v)
		}

		if v, ok := args["is_primary_port"]; ok {
			fields["is_primary_port"] = v == "true"
		}

		return d.reportErr(d.colony.Update(ctx, p.ID, fields), fmt.Sprintf("%s updated", p.ProjectName))
	})
}

func (d *Dispatcher) colProgress(args map[string]string) *Reply {
	return d.withProject(args, func(p *model.Project) *Reply {
		n, err := strconv.Atoi(args["progress"])
		if err != nil {
			return d.reportErr(model.Invalid("progress", "not a number"), "")
		}

		msg := fmt.Sprintf("%s is now at %d%%", p.ProjectName, n)

		if n >= 100 {
			msg = fmt.Sprintf("%s is complete, o7", p.ProjectName)
		}

		return d.reportErr(d.colony.UpdateProgress(p.ID, n), msg)
	})
}

func (d *Dispatcher) colParticipants(args map[string]string) *Reply {
	return d.withProject(args, func(p *model.Project) *Reply {
		users, err := d.colony.Participants(p.ID)
		if err != nil {
			return d.reportErr(err, "")
		}

		if len(users) == 0 {
			return &Reply{Text: fmt.Sprintf("nobody works on %s yet", p.ProjectName)}
		}

		return &Reply{Text: fmt.Sprintf("%s participants: %s", p.ProjectName, strings.Join(users, ", "))}
	})
}

// withProject resolves the "project" argument (id or name) and hands
// the row to fn.
func (d *Dispatcher) withProject(args map[string]string, fn func(p *model.Project) *Reply) *Reply {
	key := args["project"]

	if key == "" {
		return d.reportErr(model.Invalid("project", "required"), "")
	}

	var p *model.Project

	if id, err := strconv.ParseUint(key, 10, 32); err == nil {
		p = d.colony.Get(uint(id))
	} else {
		p = d.colony.GetByName(key)
	}

	if p == nil {
		return d.reportErr(model.ErrNotFound, "")
	}

	return fn(p)
}

// reportErr renders any taxonomy error as a short reply. ok is the
// success text.
func (d *Dispatcher) reportErr(err error, ok string) *Reply {
	if err == nil {
		return &Reply{Text: ok}
	}

	var text string

	switch {
	case errors.Is(err, model.ErrNotFound):
		text = "not found"
	case errors.Is(err, model.ErrAlreadyParticipating):
		text = "you are already participating"
	case errors.Is(err, model.ErrConflict):
		text = "a project with that name already exists"
	case errors.Is(err, model.ErrUnauthorized):
		text = "you can't do that"

		var detail string
		if idx := strings.Index(err.Error(), ":"); idx > 0 {
			detail = err.Error()[idx+1:]
		}

		if detail != "" {
			text += "," + detail
		}
	case errors.Is(err, model.ErrValidation):
		text = err.Error()
	default:
		d.logger.Error("command failed", slog.Any("error", err))
		text = "something went wrong, try again later"
	}

	return &Reply{Text: text, Ephemeral: true}
}

func statusOf(r *Reply) string {
	if r.Ephemeral {
		return "error"
	}

	return "ok"
}
