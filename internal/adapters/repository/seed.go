package repository

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/okian/playmatch/internal/domain/model"
)

// Seed is a YAML fixture describing the rows of a MemoryStore.
//
//	schools:
//	  - id: S1
//	    name: North High
//	    location: {city: Duluth, state: MN}
//	teams:
//	  - team_id: T1
//	    team_name: Polar Bears
//	    sport: Ice Hockey
//	    school_id: S1
//	families:
//	  - id: F1
//	    location: {city: Duluth}
//	    children: {sport: hockey}
type Seed struct {
	Schools  []SeedSchool `yaml:"schools"`
	Teams    []SeedTeam   `yaml:"teams"`
	Families []SeedFamily `yaml:"families"`
}

// SeedSchool is a school fixture row.
type SeedSchool struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Location any    `yaml:"location"`
}

// SeedTeam is a team fixture row.
type SeedTeam struct {
	ID       string `yaml:"team_id"`
	Name     string `yaml:"team_name"`
	Sport    string `yaml:"sport"`
	SchoolID string `yaml:"school_id"`
}

// SeedFamily is a family fixture row.
type SeedFamily struct {
	ID       string  `yaml:"id"`
	Location any     `yaml:"location"`
	Children any     `yaml:"children"`
	TeamID   *string `yaml:"team_id"`
}

// LoadSeed reads a YAML fixture from disk.
func LoadSeed(path string) (Seed, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed %s: %w", path, err)
	}
	return ParseSeed(b)
}

// ParseSeed decodes a YAML fixture.
func ParseSeed(b []byte) (Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(b, &seed); err != nil {
		return Seed{}, fmt.Errorf("%w: %w", ErrSeed, err)
	}
	return seed, nil
}

func (s Seed) rows() ([]model.Family, []model.School, []model.Team, error) {
	families := make([]model.Family, 0, len(s.Families))
	for i, f := range s.Families {
		if f.ID == "" {
			return nil, nil, nil, fmt.Errorf("%w: family #%d has no id", ErrSeed, i)
		}
		loc, err := toJSON(f.Location)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: family %s location: %w", ErrSeed, f.ID, err)
		}
		children, err := toJSON(f.Children)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: family %s children: %w", ErrSeed, f.ID, err)
		}
		families = append(families, model.Family{
			ID:       f.ID,
			Location: loc,
			Children: model.ParseChildren(children),
			TeamID:   f.TeamID,
		})
	}

	schools := make([]model.School, 0, len(s.Schools))
	for i, sc := range s.Schools {
		if sc.ID == "" {
			return nil, nil, nil, fmt.Errorf("%w: school #%d has no id", ErrSeed, i)
		}
		loc, err := toJSON(sc.Location)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: school %s location: %w", ErrSeed, sc.ID, err)
		}
		schools = append(schools, model.School{ID: sc.ID, Name: sc.Name, Location: loc})
	}

	teams := make([]model.Team, 0, len(s.Teams))
	for i, t := range s.Teams {
		if t.ID == "" || t.SchoolID == "" {
			return nil, nil, nil, fmt.Errorf("%w: team #%d needs team_id and school_id", ErrSeed, i)
		}
		teams = append(teams, model.Team{ID: t.ID, Name: t.Name, Sport: t.Sport, SchoolID: t.SchoolID})
	}
	return families, schools, teams, nil
}

func toJSON(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}
