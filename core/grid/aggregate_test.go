package grid

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	mark := func(att *Attendance, s Status, cells ...[2]int) {
		for _, c := range cells {
			if err := att.Set(c[0], c[1], s); err != nil {
				t.Fatalf("Set(%v) failed: %v", c, err)
			}
		}
	}

	tests := []struct {
		name  string
		rows  int
		setup func(att *Attendance)
		want  Summary
	}{
		{name: "empty", rows: 30, setup: func(*Attendance) {}, want: Summary{}},
		{
			name: "one per phase", rows: 30,
			setup: func(att *Attendance) {
				mark(att, Attended, [2]int{0, 0}, [2]int{10, 49}, [2]int{29, 3})
			},
			want: Summary{Simulation: 1, Ground: 1, Road: 1, Total: 3},
		},
		{
			name: "absent never counts", rows: 30,
			setup: func(att *Attendance) {
				mark(att, Attended, [2]int{1, 1}, [2]int{1, 2})
				mark(att, Absent, [2]int{1, 3}, [2]int{15, 0}, [2]int{25, 0})
			},
			want: Summary{Simulation: 2, Total: 2},
		},
		{
			name: "rows past gridRows ignored", rows: 9,
			setup: func(att *Attendance) {
				mark(att, Attended, [2]int{2, 0}, [2]int{3, 0}, [2]int{8, 49}, [2]int{9, 0}, [2]int{29, 49})
			},
			want: Summary{Simulation: 1, Ground: 1, Road: 1, Total: 3},
		},
		{
			name: "cols past gridCols still count", rows: 30,
			setup: func(att *Attendance) {
				mark(att, Attended, [2]int{0, 45}, [2]int{0, 49})
			},
			want: Summary{Simulation: 2, Total: 2},
		},
		{
			name: "uneven rows", rows: 11,
			setup: func(att *Attendance) {
				mark(att, Attended, [2]int{2, 0}, [2]int{3, 0}, [2]int{5, 0}, [2]int{6, 0}, [2]int{10, 0})
			},
			want: Summary{Simulation: 1, Ground: 2, Road: 2, Total: 5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			att := new(Attendance)
			tt.setup(att)
			assert.Equal(t, tt.want, Aggregate(att, tt.rows))
		})
	}
}

func TestAggregate_concurrent(t *testing.T) {
	att := new(Attendance)
	att.Fill(0, 120, 30)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, Summary{Simulation: 120, Total: 120}, Aggregate(att, 30))
		}()
	}
	wg.Wait()
}

func TestSummary_Add(t *testing.T) {
	a := Summary{Simulation: 1, Ground: 2, Road: 3, Total: 6}
	b := Summary{Simulation: 4, Road: 1, Total: 5}
	assert.Equal(t, Summary{Simulation: 5, Ground: 2, Road: 4, Total: 11}, a.Add(b))
	assert.Equal(t, 2, a.Of(Ground))
}
