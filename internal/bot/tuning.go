package bot

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds the thresholds of the tao strategy.
type Tuning struct {
	Greeting string `yaml:"greeting"`
	Farewell string `yaml:"farewell"`

	IdleUntil  int `yaml:"idle_until"`  // no moves before this turn
	HuntFrom   int `yaml:"hunt_from"`   // start chasing generals
	CitiesFrom int `yaml:"cities_from"` // start taking cities

	DangerRadius    int `yaml:"danger_radius"`     // half-width of the box watched around home
	ExploreMinArmy  int `yaml:"explore_min_army"`  // smallest stack worth sending into fog
	InfluenceWeight int `yaml:"influence_weight"` // cost of one unit of influence, in path steps
}

// DefaultTuning returns the stock thresholds.
func DefaultTuning() Tuning {
	return Tuning{
		Greeting:        "glhf",
		Farewell:        "ggwp",
		IdleUntil:       30,
		HuntFrom:        50,
		CitiesFrom:      300,
		DangerRadius:    2,
		ExploreMinArmy:  10,
		InfluenceWeight: 1000,
	}
}

// LoadTuning reads a YAML tuning file. Keys missing from the file keep
// their default values.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("parse tuning %s: %w", path, err)
	}
	if t.DangerRadius < 0 || t.ExploreMinArmy < 0 {
		return t, fmt.Errorf("parse tuning %s: negative threshold", path)
	}
	return t, nil
}
