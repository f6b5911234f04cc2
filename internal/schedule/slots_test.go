package schedule

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelsBasicWindow(t *testing.T) {
	labels, err := Labels(WorkingHours{StartTime: "09:00", EndTime: "11:00", SlotDuration: 30})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00 AM", "09:30 AM", "10:00 AM", "10:30 AM"}, labels)
}

func TestLabelsDefaultDuration(t *testing.T) {
	labels, err := Labels(WorkingHours{StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00 AM", "09:30 AM"}, labels)
}

func TestLabelsPartialTrailingSlot(t *testing.T) {
	// 10:30 starts before the 10:45 close, so it is still emitted; 11:00 is not.
	labels, err := Labels(WorkingHours{StartTime: "10:00", EndTime: "10:45", SlotDuration: 30})
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00 AM", "10:30 AM"}, labels)
}

func TestLabelsCrossesNoon(t *testing.T) {
	labels, err := Labels(WorkingHours{StartTime: "11:00", EndTime: "13:30", SlotDuration: 60})
	require.NoError(t, err)
	assert.Equal(t, []string{"11:00 AM", "12:00 PM", "01:00 PM"}, labels)
}

func TestSlotsConsecutiveSpacing(t *testing.T) {
	wh := WorkingHours{StartTime: "08:15", EndTime: "17:00", SlotDuration: 45}
	offsets, err := Slots(wh)
	require.NoError(t, err)
	require.NotEmpty(t, offsets)

	end, err := ParseClock(wh.EndTime)
	require.NoError(t, err)
	for i, m := range offsets {
		assert.Less(t, m, end, "slot %d starts at or past the end of the window", i)
		if i > 0 {
			assert.Equal(t, wh.SlotDuration, m-offsets[i-1])
		}
	}
}

func TestSlotsNegativeDuration(t *testing.T) {
	_, err := Slots(WorkingHours{StartTime: "09:00", EndTime: "17:00", SlotDuration: -15})
	assert.ErrorIs(t, err, ErrInvalidSlotDuration)
}

func TestSlotsInvertedWindow(t *testing.T) {
	_, err := Slots(WorkingHours{StartTime: "17:00", EndTime: "09:00", SlotDuration: 30})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = Slots(WorkingHours{StartTime: "09:00", EndTime: "09:00", SlotDuration: 30})
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestSlotsMalformedClock(t *testing.T) {
	_, err := Slots(WorkingHours{StartTime: "nine", EndTime: "17:00"})
	assert.ErrorIs(t, err, ErrBadClock)

	_, err = Slots(WorkingHours{StartTime: "09:00", EndTime: "25:00"})
	assert.ErrorIs(t, err, ErrBadClock)
}

func TestFormatLabelBoundaries(t *testing.T) {
	tests := []struct {
		minute int
		want   string
	}{
		{0, "12:00 AM"},
		{540, "09:00 AM"},
		{720, "12:00 PM"},
		{750, "12:30 PM"},
		{1380, "11:00 PM"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatLabel(tt.minute))
	}
}

func TestParseLabelRoundTrip(t *testing.T) {
	for _, minute := range []int{0, 300, 540, 555, 720, 1439} {
		got, err := ParseLabel(FormatLabel(minute))
		require.NoError(t, err)
		assert.Equal(t, minute, got)
	}
}

func TestParseLabelUnpaddedHour(t *testing.T) {
	got, err := ParseLabel("9:00 AM")
	require.NoError(t, err)
	assert.Equal(t, 540, got)
}

func TestParseLabelCaseAndWhitespace(t *testing.T) {
	for _, label := range []string{"10:30 am", " 10:30 AM ", "10:30 Am"} {
		got, err := ParseLabel(label)
		require.NoError(t, err, "label %q", label)
		assert.Equal(t, 630, got)
	}
}

func TestParseLabelMalformed(t *testing.T) {
	for _, label := range []string{"", "morning", "09:00", "13:00 PM"} {
		_, err := ParseLabel(label)
		if !errors.Is(err, ErrBadClock) {
			t.Errorf("ParseLabel(%q) error = %v, want ErrBadClock", label, err)
		}
	}
}
