package ohours_test

import (
	"fmt"
	"time"

	"ohours"
)

// fakeHolidayProvider answers ohours.HolidayProvider deterministically from
// an in-memory table, mirroring michaeldoye-BreathRoute's
// featureflags.NewInMemoryRepository fake-over-interface pattern.
type fakeHolidayProvider struct {
	byRegionYear map[string]map[int][]ohours.Holiday
}

func newFakeHolidayProvider() *fakeHolidayProvider {
	return &fakeHolidayProvider{byRegionYear: make(map[string]map[int][]ohours.Holiday)}
}

func (f *fakeHolidayProvider) add(region string, year int, date time.Time, name string) {
	if f.byRegionYear[region] == nil {
		f.byRegionYear[region] = make(map[int][]ohours.Holiday)
	}
	f.byRegionYear[region][year] = append(f.byRegionYear[region][year], ohours.Holiday{Date: date, Name: name})
}

func (f *fakeHolidayProvider) PublicHolidays(region string, year int) ([]ohours.Holiday, error) {
	years, ok := f.byRegionYear[region]
	if !ok {
		return nil, fmt.Errorf("no holidays configured for region %q", region)
	}
	return years[year], nil
}

// fakeSunProvider answers ohours.SunEventProvider with a fixed wall-clock
// time per event kind, regardless of date or coordinates.
type fakeSunProvider struct {
	times map[ohours.EventKind]time.Time
}

func newFakeSunProvider() *fakeSunProvider {
	return &fakeSunProvider{times: make(map[ohours.EventKind]time.Time)}
}

func (f *fakeSunProvider) set(kind ohours.EventKind, hour, minute int) {
	f.times[kind] = time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC)
}

func (f *fakeSunProvider) SunEvent(kind ohours.EventKind, date time.Time, lat, lon float64) (time.Time, error) {
	t, ok := f.times[kind]
	if !ok {
		return time.Time{}, fmt.Errorf("no fake time configured for event %v", kind)
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}
