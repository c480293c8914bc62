package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edtools/wingbot/pkg/duration"
	"github.com/edtools/wingbot/pkg/space"
)

func TestNormalizeProjectName(t *testing.T) {
	assert.Equal(t, "new_port", NormalizeProjectName("  New Port "))
	assert.Equal(t, "a_b_c", NormalizeProjectName("A b C"))
	assert.Equal(t, "", NormalizeProjectName("   "))
}

func TestProjectPos(t *testing.T) {
	p := &Project{}

	assert.Nil(t, p.Pos())

	p.SetPos(&space.Point{X: 1, Y: 2, Z: 3})
	assert.Equal(t, &space.Point{X: 1, Y: 2, Z: 3}, p.Pos())

	p.SetPos(nil)
	assert.Nil(t, p.Pos())

	x := 1.0
	p.PositionX = &x
	assert.Nil(t, p.Pos())
}

func TestToWeb(t *testing.T) {
	var p *Project

	assert.Nil(t, p.ToWeb())

	p = &Project{ID: 7, ProjectName: "port", TimeLeft: duration.Infinite, IsCompleted: true}

	w := p.ToWeb()
	assert.Equal(t, uint(7), w.ID)
	assert.Equal(t, "--", w.TimeLeftText)
	assert.True(t, w.IsCompleted)
	assert.Nil(t, w.Position)
}
