package types

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeString
		wantErr bool
	}{
		{name: "hh:mm", input: "17:00", want: "17:00"},
		{name: "hh:mm:ss from postgres", input: "09:30:00", want: "09:30"},
		{name: "end of day", input: "24:00", want: "24:00"},
		{name: "single digit hour", input: "9:30", wantErr: true},
		{name: "minutes overflow", input: "10:60", wantErr: true},
		{name: "past end of day", input: "24:30", wantErr: true},
		{name: "non-zero seconds", input: "10:00:15", wantErr: true},
		{name: "garbage", input: "noon", wantErr: true},
		{name: "signed hour", input: "+9:00", wantErr: true},
		{name: "negative hour", input: "-1:00", wantErr: true},
		{name: "signed minutes", input: "09:+5", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTimeStringFromString(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeString_AddMinutes(t *testing.T) {
	got, err := MustTimeString("20:30").AddMinutes(30)
	require.NoError(t, err)
	assert.Equal(t, TimeString("21:00"), got)

	got, err = MustTimeString("23:30").AddMinutes(30)
	require.NoError(t, err)
	assert.Equal(t, TimeString("24:00"), got)

	_, err = MustTimeString("23:45").AddMinutes(30)
	assert.ErrorIs(t, err, ErrTimeOverflow)
}

func TestTimeString_Compare(t *testing.T) {
	a := MustTimeString("17:00")
	b := MustTimeString("17:30")

	assert.True(t, a.IsBefore(b))
	assert.False(t, b.IsBefore(a))
	assert.True(t, b.IsAfter(a))
	assert.True(t, a.Equal(MustTimeString("17:00:00")))
	assert.False(t, TimeString("bad").IsBefore(b))
}

func TestTimeString_OnDate(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	date := time.Date(2026, 10, 20, 15, 45, 0, 0, loc)

	got, err := MustTimeString("18:30").OnDate(date)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 20, 18, 30, 0, 0, loc), got)

	got, err = MustTimeString("24:00").OnDate(date)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 21, 0, 0, 0, 0, loc), got)
}

func TestTimeString_OnDate_DST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		name string
		date time.Time
		time TimeString
		hour int
	}{
		{name: "spring forward", date: time.Date(2026, 3, 8, 0, 0, 0, 0, loc), time: "17:00", hour: 17},
		{name: "spring forward morning", date: time.Date(2026, 3, 8, 0, 0, 0, 0, loc), time: "09:30", hour: 9},
		{name: "fall back", date: time.Date(2026, 11, 1, 0, 0, 0, 0, loc), time: "17:00", hour: 17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.time.OnDate(tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.hour, got.Hour())
			assert.Equal(t, tt.time, NewTimeString(got))
			assert.Equal(t, tt.date.Day(), got.Day())
		})
	}
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString

	require.NoError(t, ts.Scan([]byte("18:00:00")))
	assert.Equal(t, TimeString("18:00"), ts)

	require.NoError(t, ts.Scan(time.Date(0, 1, 1, 7, 15, 0, 0, time.UTC)))
	assert.Equal(t, TimeString("07:15"), ts)

	assert.Error(t, ts.Scan(42))
}
