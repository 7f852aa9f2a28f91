package course

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hajerbook/backend/core"
	"github.com/hajerbook/backend/core/grid"
)

func TestList_Add(t *testing.T) {
	l := List{StudentID: "s1"}

	c, err := l.Add(FourWheeler)
	require.NoError(t, err)
	assert.Equal(t, FourWheeler, c.VehicleType)
	assert.Len(t, l.Courses, 1)

	tests := []struct {
		name string
		vt   VehicleType
		want string
	}{
		{name: "duplicate vehicle", vt: FourWheeler, want: errDuplicateVehicle.Error()},
		{name: "finished is not a vehicle", vt: Finished, want: errInvalidVehicle.Error()},
		{name: "unknown", vt: "boat", want: errInvalidVehicle.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Add(tt.vt)
			require.True(t, core.IsValidationError(err))
			assert.Equal(t, tt.want, err.(*core.ValidationError).FieldMap()["vehicle_type"])
			assert.Len(t, l.Courses, 1)
		})
	}

	// a finished course frees its category
	require.NoError(t, l.Courses[0].Finish(context.Background()))
	_, err = l.Add(FourWheeler)
	assert.NoError(t, err)
}

func TestList_Wipe(t *testing.T) {
	ctx := context.Background()

	t.Run("only course is reset in place", func(t *testing.T) {
		l := List{StudentID: "s1"}
		c, err := l.Add(TwoWheeler)
		require.NoError(t, err)
		id := c.ID
		_, _, err = c.QuickEntry(ctx, NewSession{Date: "2024-03-01", Simulation: 5, Ground: 3, Road: 2}, grid.Lenient)
		require.NoError(t, err)

		res, err := l.Wipe(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, WipedInPlace, res)
		require.Len(t, l.Courses, 1)
		assert.Equal(t, id, l.Courses[0].ID)
		assert.Equal(t, grid.Summary{}, l.Courses[0].Summary())
		assert.False(t, l.Courses[0].Attendance.Marked())
		assert.Len(t, l.Courses[0].Sessions, 1)
	})

	t.Run("other courses are removed", func(t *testing.T) {
		l := List{StudentID: "s1"}
		first, err := l.Add(TwoWheeler)
		require.NoError(t, err)
		firstID := first.ID
		second, err := l.Add(HeavyVehicle)
		require.NoError(t, err)

		res, err := l.Wipe(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, Removed, res)
		require.Len(t, l.Courses, 1)
		assert.Equal(t, firstID, l.Courses[0].ID)

		res, err = l.Wipe(ctx, firstID)
		require.NoError(t, err)
		assert.Equal(t, WipedInPlace, res)
		assert.Len(t, l.Courses, 1)
	})

	t.Run("unknown course", func(t *testing.T) {
		l := List{StudentID: "s1"}
		_, err := l.Add(TwoWheeler)
		require.NoError(t, err)
		_, err = l.Wipe(ctx, "nope")
		assert.Equal(t, ErrNotFound, err)
	})

	t.Run("only course finished", func(t *testing.T) {
		l := List{StudentID: "s1"}
		c, err := l.Add(TwoWheeler)
		require.NoError(t, err)
		require.NoError(t, c.Finish(ctx))
		_, err = l.Wipe(ctx, c.ID)
		assert.Equal(t, ErrFinished, err)
	})
}

func TestList_Finish(t *testing.T) {
	ctx := context.Background()
	l := List{StudentID: "s1"}
	first, err := l.Add(TwoWheeler)
	require.NoError(t, err)
	firstID := first.ID

	c, err := l.Finish(ctx, firstID)
	require.NoError(t, err)
	assert.Equal(t, Finished, c.VehicleType)
	assert.Equal(t, TwoWheeler, c.Category)

	again, err := l.Add(TwoWheeler)
	require.NoError(t, err)
	_, err = l.Finish(ctx, again.ID)
	require.True(t, core.IsValidationError(err))
	assert.Equal(t, errFinishedTwice.Error(), err.(*core.ValidationError).FieldMap()["vehicle_type"])
	assert.Equal(t, TwoWheeler, l.Courses[1].VehicleType)

	_, err = l.Finish(ctx, firstID)
	assert.Equal(t, ErrFinished, err)
	_, err = l.Finish(ctx, "nope")
	assert.Equal(t, ErrNotFound, err)
}

func TestList_KeepsFinished(t *testing.T) {
	ctx := context.Background()
	stored := List{StudentID: "s1"}
	moto, err := stored.Add(TwoWheeler)
	require.NoError(t, err)
	_, _, err = moto.QuickEntry(ctx, NewSession{Date: "2024-03-01", Ground: 2}, grid.Lenient)
	require.NoError(t, err)
	_, err = stored.Finish(ctx, moto.ID)
	require.NoError(t, err)
	_, err = stored.Add(FourWheeler)
	require.NoError(t, err)

	tests := []struct {
		name    string
		change  func(l *List)
		wantErr bool
	}{
		{name: "unchanged", change: func(l *List) {}},
		{name: "touched", change: func(l *List) { l.Courses[0].UpdatedAt = l.Courses[0].UpdatedAt.Add(time.Hour) }},
		{name: "active course edited", change: func(l *List) { l.Courses[1].GridRows = 10 }},
		{name: "finished course dropped", change: func(l *List) { l.Courses = l.Courses[1:] }},
		{name: "reopened", change: func(l *List) { l.Courses[0].VehicleType = TwoWheeler }, wantErr: true},
		{name: "category moved", change: func(l *List) { l.Courses[0].Category = HeavyVehicle }, wantErr: true},
		{name: "cell cleared", change: func(l *List) { l.Courses[0].Attendance = grid.Attendance{} }, wantErr: true},
		{name: "session added", change: func(l *List) {
			l.Courses[0].Sessions = append(l.Courses[0].Sessions, Session{ID: "x", Date: "2024-03-02", Road: 1})
		}, wantErr: true},
		{name: "session redated", change: func(l *List) { l.Courses[0].Sessions[0].Date = "2024-01-01" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := stored.Clone()
			tt.change(&next)
			err := stored.KeepsFinished(&next)
			if tt.wantErr {
				assert.Equal(t, ErrFinished, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestList_Validate(t *testing.T) {
	two, four := New(TwoWheeler), New(FourWheeler)
	dup := New(TwoWheeler)
	done := New(TwoWheeler)
	done.VehicleType = Finished
	done2 := New(FourWheeler)
	done2.VehicleType = Finished
	twice := New(TwoWheeler)
	twice.VehicleType = Finished
	lost := New(HeavyVehicle)
	lost.VehicleType = Finished
	lost.Category = Finished

	tests := []struct {
		name    string
		courses []Course
		wantErr bool
	}{
		{name: "empty", courses: nil, wantErr: true},
		{name: "ok", courses: []Course{two, four}},
		{name: "duplicate vehicle", courses: []Course{two, dup}, wantErr: true},
		{name: "duplicate id", courses: []Course{two, two}, wantErr: true},
		{name: "unknown vehicle", courses: []Course{{ID: "x", VehicleType: "boat"}}, wantErr: true},
		{name: "finished courses do not clash", courses: []Course{two, done, done2}},
		{name: "finished twice in a category", courses: []Course{two, done, twice}, wantErr: true},
		{name: "finished without a category", courses: []Course{two, lost}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := List{Courses: tt.courses}
			err := l.Validate()
			if tt.wantErr {
				assert.True(t, core.IsValidationError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestList_Dashboard(t *testing.T) {
	ctx := context.Background()
	l := List{StudentID: "s1", Version: 4}
	a, err := l.Add(TwoWheeler)
	require.NoError(t, err)
	_, _, err = a.QuickEntry(ctx, NewSession{Date: "2024-03-01", Simulation: 5, Ground: 3, Road: 2}, grid.Lenient)
	require.NoError(t, err)
	b, err := l.Add(FourWheeler)
	require.NoError(t, err)
	_, _, err = b.QuickEntry(ctx, NewSession{Date: "2024-03-02", Road: 4}, grid.Lenient)
	require.NoError(t, err)

	d := l.Dashboard()
	assert.Equal(t, "s1", d.StudentID)
	assert.Equal(t, int64(4), d.Version)
	require.Len(t, d.Courses, 2)
	assert.Equal(t, StateActive, d.Courses[0].State)
	assert.Equal(t, grid.Summary{Simulation: 5, Ground: 3, Road: 6, Total: 14}, d.Total)
}

func TestDraft(t *testing.T) {
	ctx := context.Background()
	base := List{StudentID: "s1", Version: 1, Courses: []Course{New(TwoWheeler)}}
	d := NewDraft(base)
	assert.False(t, d.Dirty())

	_, err := d.Current().Courses[0].CycleCell(ctx, 0, 0)
	require.NoError(t, err)
	assert.True(t, d.Dirty())
	assert.False(t, d.Base().Courses[0].Attendance.Marked(), "base must not see pending changes")
	assert.False(t, base.Courses[0].Attendance.Marked(), "caller list must not be aliased")

	d.Rollback()
	assert.False(t, d.Dirty())
	assert.False(t, d.Current().Courses[0].Attendance.Marked())

	_, err = d.Current().Courses[0].CycleCell(ctx, 1, 1)
	require.NoError(t, err)
	saved := d.Current().Clone()
	saved.Version = 2
	d.Commit(saved)
	assert.False(t, d.Dirty())
	assert.Equal(t, int64(2), d.Base().Version)
	assert.True(t, d.Base().Courses[0].Attendance.Marked())
}
