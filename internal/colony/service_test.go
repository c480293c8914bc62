package colony

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/edtools/wingbot/internal/database"
	"github.com/edtools/wingbot/internal/model"
	"github.com/edtools/wingbot/internal/syscache"
	"github.com/edtools/wingbot/pkg/duration"
	"github.com/edtools/wingbot/pkg/edsm"
	"github.com/edtools/wingbot/pkg/space"
)

type fakeResolver struct {
	systems map[string]*edsm.SystemInfo
}

func (f *fakeResolver) SystemPosition(_ context.Context, name string) (*edsm.SystemInfo, error) {
	return f.systems[name], nil
}

func getTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	dbm := database.New(db)
	require.NoError(t, dbm.Migrate())

	r := &fakeResolver{systems: map[string]*edsm.SystemInfo{
		"Origin":  {Name: "Origin", Coords: &space.Point{}},
		"Near":    {Name: "Near", Coords: &space.Point{X: 2.5, Y: 2.5, Z: 2.5}},
		"Far":     {Name: "Far", Coords: &space.Point{X: 5.1, Y: 5.1, Z: 5.1}},
		"Achenar": {Name: "Achenar", Coords: &space.Point{X: 67.5, Y: -119.5, Z: 24.8}},
	}}

	return New(dbm, syscache.New(dbm, r))
}

func TestAdd(t *testing.T) {
	s := getTestService(t)
	ctx := context.Background()

	p := &model.Project{ProjectName: "New Port", SystemName: "Achenar", TimeLeft: 3600, AddedBy: "u1"}

	require.NoError(t, s.Add(ctx, p))
	assert.Equal(t, "new_port", p.ProjectName)
	require.NotNil(t, p.Pos())
	assert.Equal(t, 67.5, p.Pos().X)

	users, err := s.Participants(p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, users)

	assert.ErrorIs(t, s.Add(ctx, &model.Project{ProjectName: "new port", SystemName: "Achenar"}), model.ErrConflict)
}

func TestAddUnknownSystem(t *testing.T) {
	s := getTestService(t)

	p := &model.Project{ProjectName: "edge", SystemName: "Raxxla"}

	require.NoError(t, s.Add(context.Background(), p))
	assert.Nil(t, p.Pos())
}

func TestAddValidation(t *testing.T) {
	s := getTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.Add(ctx, &model.Project{SystemName: "Sol"}), model.ErrValidation)
	assert.ErrorIs(t, s.Add(ctx, &model.Project{ProjectName: "x"}), model.ErrValidation)
	assert.ErrorIs(t, s.Add(ctx, &model.Project{ProjectName: "x", SystemName: "Sol", Progress: 101}), model.ErrValidation)
}

func TestListActiveHidesCompleted(t *testing.T) {
	s := getTestService(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, &model.Project{ProjectName: "open", SystemName: "Achenar", TimeLeft: 10}))
	require.NoError(t, s.Add(ctx, &model.Project{ProjectName: "done", SystemName: "Achenar", Progress: 100}))

	res := s.ListActive(ListFilter{})

	require.Len(t, res, 1)
	assert.Equal(t, "open", res[0].ProjectName)
	assert.EqualValues(t, 1, s.CountActive(ListFilter{}))
}

func TestListActiveOrdering(t *testing.T) {
	s := getTestService(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, &model.Project{ProjectName: "slow", SystemName: "Achenar", TimeLeft: 500}))
	require.NoError(t, s.Add(ctx, &model.Project{ProjectName: "fast", SystemName: "Achenar", TimeLeft: 100}))
	require.NoError(t, s.Add(ctx, &model.Project{ProjectName: "fast_primary", SystemName: "Achenar", TimeLeft: 100, IsPrimaryPort: true}))

	res := s.ListActive(ListFilter{})

	require.Len(t, res, 3)
	assert.Equal(t, "fast_primary", res[0].ProjectName)
	assert.Equal(t, "fast", res[1].ProjectName)
	assert.Equal(t, "slow", res[2].ProjectName)
}

func TestListActiveSpatial(t *testing.T) {
	s := getTestService(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, &model.Project{ProjectName: "at_origin", SystemName: "Origin", TimeLeft: 900}))
	require.NoError(t, s.Add(ctx, &model.Project{ProjectName: "near", SystemName: "Near", TimeLeft: 100}))
	require.NoError(t, s.Add(ctx, &model.Project{ProjectName: "far", SystemName: "Far", TimeLeft: 100}))
	require.NoError(t, s.Add(ctx, &model.Project{ProjectName: "lost", SystemName: "Raxxla", TimeLeft: 1}))

	f := ListFilter{Origin: &space.Point{}, MaxDistance: 5}

	res := s.ListActive(f)

	// distances ~0, ~4.3, ~8.8; cutoff at 5 keeps two, nearest first,
	// the project with no coordinates is never considered
	require.Len(t, res, 2)
	assert.Equal(t, "at_origin", res[0].ProjectName)
	assert.Equal(t, "near", res[1].ProjectName)
	assert.EqualValues(t, 2, s.CountActive(f))
}

func TestListActivePagination(t *testing.T) {
	s := getTestService(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, &model.Project{ProjectName: "p1", SystemName: "Achenar", TimeLeft: 1}))
	require.NoError(t, s.Add(ctx, &model.Project{ProjectName: "p2", SystemName: "Achenar", TimeLeft: 2}))
	require.NoError(t, s.Add(ctx, &model.Project{ProjectName: "p3", SystemName: "Achenar", TimeLeft: 3}))

	page1 := s.ListActive(ListFilter{Page: 1, PageSize: 2})
	page2 := s.ListActive(ListFilter{Page: 2, PageSize: 2})

	require.Len(t, page1, 2)
	require.Len(t, page2, 1)

	seen := map[uint]bool{page1[0].ID: true, page1[1].ID: true}
	assert.False(t, seen[page2[0].ID])
}

func TestUpdateProgress(t *testing.T) {
	s := getTestService(t)
	ctx := context.Background()

	p := &model.Project{ProjectName: "building", SystemName: "Achenar", TimeLeft: 3600}
	require.NoError(t, s.Add(ctx, p))

	require.NoError(t, s.UpdateProgress(p.ID, 50))
	assert.Equal(t, 50, s.Get(p.ID).Progress)
	assert.False(t, s.Get(p.ID).IsCompleted)

	require.NoError(t, s.UpdateProgress(p.ID, 100))

	got := s.Get(p.ID)
	assert.True(t, got.IsCompleted)
	assert.Equal(t, duration.Infinite, got.TimeLeft)

	assert.ErrorIs(t, s.UpdateProgress(p.ID, 150), model.ErrValidation)
	assert.ErrorIs(t, s.UpdateProgress(9999, 10), model.ErrNotFound)
}

func TestUpdateRegeocodes(t *testing.T) {
	s := getTestService(t)
	ctx := context.Background()

	p := &model.Project{ProjectName: "moving", SystemName: "Origin"}
	require.NoError(t, s.Add(ctx, p))

	require.NoError(t, s.Update(ctx, p.ID, map[string]any{"system_name": "Achenar", "notes": "relocated"}))

	got := s.Get(p.ID)
	assert.Equal(t, "Achenar", got.SystemName)
	assert.Equal(t, "relocated", got.Notes)
	require.NotNil(t, got.Pos())
	assert.Equal(t, 67.5, got.Pos().X)
}

func TestMarkCompleted(t *testing.T) {
	s := getTestService(t)
	ctx := context.Background()

	p := &model.Project{ProjectName: "halfway", SystemName: "Achenar", Progress: 40}
	require.NoError(t, s.Add(ctx, p))

	require.NoError(t, s.MarkCompleted(p.ID))

	got := s.Get(p.ID)
	assert.True(t, got.IsCompleted)
	assert.Equal(t, 40, got.Progress)
}

func TestRemoveCascades(t *testing.T) {
	s := getTestService(t)
	ctx := context.Background()

	p := &model.Project{ProjectName: "doomed", SystemName: "Achenar", AddedBy: "u1"}
	require.NoError(t, s.Add(ctx, p))
	require.NoError(t, s.AddParticipant(p.ID, "u2"))

	require.NoError(t, s.Remove(p.ID))
	assert.Nil(t, s.Get(p.ID))

	_, err := s.Participants(p.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	// removing again is fine
	require.NoError(t, s.Remove(p.ID))
}

func TestAddParticipant(t *testing.T) {
	s := getTestService(t)
	ctx := context.Background()

	p := &model.Project{ProjectName: "crewed", SystemName: "Achenar", AddedBy: "u1"}
	require.NoError(t, s.Add(ctx, p))

	require.NoError(t, s.AddParticipant(p.ID, "u2"))
	assert.ErrorIs(t, s.AddParticipant(p.ID, "u2"), model.ErrAlreadyParticipating)
	assert.ErrorIs(t, s.AddParticipant(9999, "u2"), model.ErrNotFound)

	users, err := s.Participants(p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, users)
}

func TestGetByName(t *testing.T) {
	s := getTestService(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, &model.Project{ProjectName: "Deep Space Port", SystemName: "Achenar"}))

	assert.NotNil(t, s.GetByName("deep space port"))
	assert.NotNil(t, s.GetByName("deep_space_port"))
	assert.Nil(t, s.GetByName("other"))
}
