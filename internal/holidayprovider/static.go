// Package holidayprovider implements ohours.HolidayProvider against two
// backends: a local YAML calendar file (static.go) and a remote HTTP API
// with ETag caching and retries (remote.go).
package holidayprovider

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"ohours"
)

type yamlHoliday struct {
	Date string `yaml:"date"`
	Name string `yaml:"name"`
}

type yamlFile struct {
	Holidays map[string]map[int][]yamlHoliday `yaml:"holidays"`
}

// StaticProvider serves public holidays from a YAML file of the shape:
//
//	holidays:
//	  DE-BY:
//	    2024:
//	      - date: "2024-01-01"
//	        name: "Neujahr"
type StaticProvider struct {
	data map[string]map[int][]ohours.Holiday
}

// LoadStatic reads and parses a static holiday calendar file.
func LoadStatic(path string) (*StaticProvider, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading static holiday file")
	}

	var f yamlFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, errors.Wrap(err, "parsing static holiday file")
	}

	data := make(map[string]map[int][]ohours.Holiday, len(f.Holidays))
	for region, years := range f.Holidays {
		yearMap := make(map[int][]ohours.Holiday, len(years))
		for year, entries := range years {
			list := make([]ohours.Holiday, 0, len(entries))
			for _, e := range entries {
				d, err := time.Parse("2006-01-02", e.Date)
				if err != nil {
					return nil, errors.Wrapf(err, "parsing date %q for region %s", e.Date, region)
				}
				list = append(list, ohours.Holiday{Date: d, Name: e.Name})
			}
			yearMap[year] = list
		}
		data[region] = yearMap
	}

	return &StaticProvider{data: data}, nil
}

// PublicHolidays implements ohours.HolidayProvider.
func (p *StaticProvider) PublicHolidays(region string, year int) ([]ohours.Holiday, error) {
	years, ok := p.data[region]
	if !ok {
		return nil, fmt.Errorf("no holiday data for region %q", region)
	}
	return years[year], nil
}
