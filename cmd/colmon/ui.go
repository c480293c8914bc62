package main

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jroimartin/gocui"

	"github.com/edtools/wingbot/internal/model"
)

const (
	projectsView = "projects"
	projectView  = "project"
)

type binding struct {
	view string
	key  any
	mod  gocui.Modifier
	f    func(_ *gocui.Gui, _ *gocui.View) error
}

func (app *App) setBindings() error {
	bindings := []binding{
		{"", gocui.KeyCtrlC, gocui.ModNone, app.stop},
		{projectsView, gocui.KeyArrowUp, gocui.ModNone, app.cursorUp},
		{projectsView, gocui.KeyArrowDown, gocui.ModNone, app.cursorDown},
		{projectsView, 'r', gocui.ModNone, app.refreshKey},
	}

	for _, b := range bindings {
		if err := app.g.SetKeybinding(b.view, b.key, b.mod, b.f); err != nil {
			return err
		}
	}

	return nil
}

func (app *App) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()

	if v, err := g.SetView(projectsView, 0, 0, maxX/2-1, maxY-1); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return err
		}

		v.Frame = true
		v.Highlight = true
		v.Title = "Projects"
		v.BgColor = gocui.ColorBlack | gocui.AttrBold
		v.SelBgColor = gocui.ColorWhite
	}

	if v, err := g.SetView(projectView, maxX/2, 0, maxX-1, maxY-1); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return err
		}

		v.Frame = true
		v.Title = "Project details"
	}

	_, err := g.SetCurrentView(projectsView)
	app.drawProject()

	return err
}

func (app *App) redraw() {
	if app.g == nil {
		return
	}

	app.g.Update(func(gui *gocui.Gui) error {
		if v, err := gui.View(projectsView); err == nil {
			v.Clear()

			res := make([]*model.WebProject, 0)

			app.projects.Range(func(_, value any) bool {
				res = append(res, value.(*model.WebProject))

				return true
			})

			sort.Slice(res, func(i, j int) bool {
				return res[i].ProjectName < res[j].ProjectName
			})

			for _, p := range res {
				fmt.Fprintf(v, "%s\n", p.ProjectName)
			}
		}

		if v, err := gui.View(projectView); err == nil {
			v.Clear()
		}

		return nil
	})
}

func (app *App) cursorUp(_ *gocui.Gui, v *gocui.View) error {
	v.MoveCursor(0, -1, false)
	app.drawProject()

	return nil
}

func (app *App) cursorDown(_ *gocui.Gui, v *gocui.View) error {
	v.MoveCursor(0, 1, false)
	app.drawProject()

	return nil
}

func (app *App) refreshKey(_ *gocui.Gui, _ *gocui.View) error {
	go app.refresh(context.Background())

	return nil
}

func (app *App) drawProject() {
	var name string

	if v, err := app.g.View(projectsView); err == nil {
		_, y := v.Cursor()
		l, _ := v.Line(y)
		name = l
	}

	if v, err := app.g.View(projectView); err == nil {
		v.Clear()

		if name == "" {
			fmt.Fprintf(v, "no project")

			return
		}

		val, ok := app.projects.Load(name)
		if !ok {
			return
		}

		p := val.(*model.WebProject)

		fmt.Fprintf(v, "Name: %s\n", p.ProjectName)
		fmt.Fprintf(v, "System: %s\n", p.SystemName)

		if p.Architect != "" {
			fmt.Fprintf(v, "Architect: %s\n", p.Architect)
		}

		fmt.Fprintf(v, "Progress: %d%%\n", p.Progress)
		fmt.Fprintf(v, "Time left: %s\n", p.TimeLeftText)

		if p.IsPrimaryPort {
			fmt.Fprintf(v, "Primary port (%s)\n", p.StarPortType)
		}

		if p.Notes != "" {
			fmt.Fprintf(v, "\n%s\n", p.Notes)
		}

		if users, err := app.remoteAPI.GetParticipants(context.Background(), p.ID); err == nil && len(users) > 0 {
			fmt.Fprintf(v, "\nParticipants (%d):\n", len(users))

			for _, u := range users {
				fmt.Fprintf(v, "%s\n", u)
			}
		}
	}
}
