package finder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var eastern = time.FixedZone("EDT", -4*60*60)

func at(hour, minute int) time.Time {
	return time.Date(2024, time.March, 15, hour, minute, 0, 0, eastern)
}

func sampleSpaces() []Space {
	return []Space{
		{ID: 1, Name: "Study Room A", Slots: []Slot{{From: at(9, 0), To: at(12, 0)}}},
		{ID: 2, Name: "Study Room B", Slots: []Slot{{From: at(10, 30), To: at(12, 0)}}},
		{ID: 3, Name: "Board Room", Slots: []Slot{
			{From: at(8, 0), To: at(9, 0)},
			{From: at(13, 0), To: at(17, 0)},
		}},
		{ID: 4, Name: "Closed Room"},
	}
}

func spaceIDs(spaces []Space) []int {
	ids := make([]int, 0, len(spaces))
	for _, sp := range spaces {
		ids = append(ids, sp.ID)
	}
	return ids
}

func TestFindAvailable(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       []int
	}{
		{"morning window", "10:00", "11:00", []int{1}},
		{"late morning", "10:30", "11:30", []int{1, 2}},
		{"afternoon needs a later slot", "13:00", "14:00", []int{3}},
		{"inclusive bounds", "09:00", "12:00", []int{1}},
		{"spans two slots", "08:30", "13:30", []int{}},
		{"twelve hour input", "1:00 PM", "2:00 PM", []int{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindAvailable(sampleSpaces(), "2024-03-15", tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, spaceIDs(got))
		})
	}
}

func TestFindAvailable_ContainmentHolds(t *testing.T) {
	spaces := sampleSpaces()
	got, err := FindAvailable(spaces, "2024-03-15", "10:45", "11:15")
	require.NoError(t, err)
	require.NotEmpty(t, got)

	start, end := at(10, 45), at(11, 15)
	for _, sp := range got {
		covered := false
		for _, slot := range sp.Slots {
			if slot.Contains(start, end) {
				covered = true
			}
		}
		assert.True(t, covered, "space %d returned without a covering slot", sp.ID)
	}
}

func TestFindAvailable_UsesSlotOffset(t *testing.T) {
	utc := []Space{{ID: 7, Name: "UTC Room", Slots: []Slot{{
		From: time.Date(2024, time.March, 15, 14, 0, 0, 0, time.UTC),
		To:   time.Date(2024, time.March, 15, 16, 0, 0, 0, time.UTC),
	}}}}

	got, err := FindAvailable(utc, "2024-03-15", "14:00", "15:00")
	require.NoError(t, err)
	assert.Equal(t, []int{7}, spaceIDs(got))

	got, err = FindAvailable(utc, "2024-03-15", "10:00", "11:00")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindAvailable_InvalidInput(t *testing.T) {
	_, err := FindAvailable(sampleSpaces(), "2024-03-15", "11:00", "10:00")
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = FindAvailable(sampleSpaces(), "2024-03-15", "10:00", "10:00")
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = FindAvailable(sampleSpaces(), "2024-03-15", "25:00", "26:00")
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = FindAvailable(sampleSpaces(), "March 15", "10:00", "11:00")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestFindAvailableSpaces(t *testing.T) {
	up := &fakeUpstream{spaces: map[int][]Space{100: sampleSpaces()}}
	f := New(up, testDirectory(t), nil)
	start, end := "10:00", "11:00"

	got, err := f.FindAvailableSpaces(context.Background(), 9404, "2024-03-15", &start, &end)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, spaceIDs(got))
}

func TestFindAvailableSpaces_NoWindowReturnsRaw(t *testing.T) {
	up := &fakeUpstream{spaces: map[int][]Space{100: sampleSpaces()}}
	f := New(up, testDirectory(t), nil)
	start := "10:00"

	got, err := f.FindAvailableSpaces(context.Background(), 9404, "2024-03-15", &start, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, spaceIDs(got))

	got, err = f.FindAvailableSpaces(context.Background(), 9404, "2024-03-15", nil, nil)
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestFindAvailableSpaces_NoLocation(t *testing.T) {
	f := New(&fakeUpstream{}, testDirectory(t), nil)

	_, err := f.FindAvailableSpaces(context.Background(), 9395, "2024-03-15", nil, nil)
	assert.ErrorIs(t, err, ErrNoBookingLocation)
}
