package syscache

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/edtools/wingbot/internal/database"
	"github.com/edtools/wingbot/pkg/edsm"
	"github.com/edtools/wingbot/pkg/space"
)

type fakeResolver struct {
	systems map[string]*edsm.SystemInfo
	err     error
	calls   int
}

func (f *fakeResolver) SystemPosition(_ context.Context, name string) (*edsm.SystemInfo, error) {
	f.calls++

	if f.err != nil {
		return nil, f.err
	}

	return f.systems[name], nil
}

func getTestManager(t *testing.T) *database.DatabaseManager {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	dbm := database.New(db)
	require.NoError(t, dbm.Migrate())

	return dbm
}

func TestGetMemoizes(t *testing.T) {
	r := &fakeResolver{systems: map[string]*edsm.SystemInfo{
		"Achenar": {Name: "Achenar", Coords: &space.Point{X: 67.5, Y: -119.5, Z: 24.8}, CoordsLocked: true},
	}}

	c := New(getTestManager(t), r)

	rec := c.Get(context.Background(), "Achenar")

	require.NotNil(t, rec)
	assert.Equal(t, "achenar", rec.Name)
	assert.Equal(t, 67.5, rec.X)
	assert.Equal(t, 1, r.calls)

	// case-insensitive hit, no second resolver call
	rec2 := c.Get(context.Background(), "ACHENAR")

	require.NotNil(t, rec2)
	assert.Equal(t, 1, r.calls)
}

func TestGetLookupFailure(t *testing.T) {
	c := New(getTestManager(t), &fakeResolver{err: errors.New("provider down")})

	assert.Nil(t, c.Get(context.Background(), "Sol"))
}

func TestGetUnknownSystem(t *testing.T) {
	c := New(getTestManager(t), &fakeResolver{systems: map[string]*edsm.SystemInfo{}})

	assert.Nil(t, c.Get(context.Background(), "Raxxla"))
}

func TestPutOverwrites(t *testing.T) {
	c := New(getTestManager(t), nil)

	c.Put(&edsm.SystemInfo{Name: "Sol", Coords: &space.Point{X: 1}})
	c.Put(&edsm.SystemInfo{Name: "SOL", Coords: &space.Point{X: 2}, CoordsLocked: true})

	rec := c.Peek("sol")

	require.NotNil(t, rec)
	assert.Equal(t, 2.0, rec.X)
	assert.True(t, rec.CoordsLocked)
	assert.EqualValues(t, 1, c.Stats().TotalEntries)
}

func TestStatsAndClear(t *testing.T) {
	c := New(getTestManager(t), nil)

	st := c.Stats()
	assert.EqualValues(t, 0, st.TotalEntries)
	assert.Nil(t, st.OldestEntry)

	c.Put(&edsm.SystemInfo{Name: "Sol", Coords: &space.Point{}})
	c.Put(&edsm.SystemInfo{Name: "Achenar", Coords: &space.Point{X: 67.5}})

	st = c.Stats()
	assert.EqualValues(t, 2, st.TotalEntries)
	require.NotNil(t, st.OldestEntry)
	require.NotNil(t, st.NewestEntry)
	assert.False(t, st.NewestEntry.Before(*st.OldestEntry))

	require.NoError(t, c.Clear())
	assert.EqualValues(t, 0, c.Stats().TotalEntries)
}
