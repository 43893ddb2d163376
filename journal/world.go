package journal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// empireNames maps the faction codes used by the feed's flag icons to
// display names.
var empireNames = map[string]string{
	"f0":  "Mondial",
	"f1":  "République de Kraland",
	"f2":  "Empire Brun",
	"f3":  "Palladium Corporation",
	"f4":  "Théocratie Seelienne",
	"f5":  "Paradigme Vert",
	"f6":  "Khanat Elmérien",
	"f7":  "Confédération Libre",
	"f8":  "Royaume de Ruthvénie",
	"f9":  "Provinces indépendantes",
	"f10": "ADMIN",
}

var empireColors = map[string]int{
	"Mondial":                 0xBDC3C7,
	"République de Kraland":   0xFF6B6B,
	"Empire Brun":             0xA97100,
	"Palladium Corporation":   0xFFFF99,
	"Théocratie Seelienne":    0xE6F58F,
	"Paradigme Vert":          0x7CFF7C,
	"Khanat Elmérien":         0xD18CFF,
	"Confédération Libre":     0xBDBDBD,
	"Royaume de Ruthvénie":    0x7FA36A,
	"Provinces indépendantes": 0xB5B34A,
	"ADMIN":                   0x2C2C2C,
}

const defaultEmbedColor = 0x34495E

// Territory describes one empire's currency and region→cities topology as
// declared in the world file.
type Territory struct {
	Currency string              `yaml:"currency"`
	Regions  map[string][]string `yaml:"regions"`
}

// World bundles the immutable lookup tables: faction codes, embed colors,
// role mentions and the territorial topology. Built once at startup and
// passed explicitly to the components that need it.
type World struct {
	Territories    map[string]Territory
	cityToRegion   map[string]string
	regionToEmpire map[string]string
	roleMentions   map[string]string
}

// LoadWorld reads the territory registry from a YAML file and builds the
// inverse city→region and region→empire indexes. roleMentions maps empire
// display names to chat role mention strings; it may be nil.
func LoadWorld(path string, roleMentions map[string]string) (*World, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read world file: %w", err)
	}
	var territories map[string]Territory
	if err := yaml.Unmarshal(b, &territories); err != nil {
		return nil, fmt.Errorf("parse world file: %w", err)
	}
	return NewWorld(territories, roleMentions), nil
}

func NewWorld(territories map[string]Territory, roleMentions map[string]string) *World {
	w := &World{
		Territories:    territories,
		cityToRegion:   make(map[string]string),
		regionToEmpire: make(map[string]string),
		roleMentions:   roleMentions,
	}
	for empire, t := range territories {
		for region, cities := range t.Regions {
			w.regionToEmpire[region] = empire
			for _, city := range cities {
				w.cityToRegion[city] = region
			}
		}
	}
	return w
}

// EmpireName resolves a faction code to its display name. Unknown codes pass
// through unchanged; an empty code resolves to "Inconnu".
func (w *World) EmpireName(code string) string {
	if name, ok := empireNames[code]; ok {
		return name
	}
	if code == "" {
		return "Inconnu"
	}
	return code
}

// EmpireColor returns the embed accent color for an empire.
func (w *World) EmpireColor(empire string) int {
	if c, ok := empireColors[empire]; ok {
		return c
	}
	return defaultEmbedColor
}

// Currency returns the empire's currency glyph, or "" for empires absent
// from the territory registry.
func (w *World) Currency(empire string) string {
	return w.Territories[empire].Currency
}

// Known reports whether the empire appears in the territory registry.
func (w *World) Known(empire string) bool {
	_, ok := w.Territories[empire]
	return ok
}

func (w *World) RegionOf(city string) string   { return w.cityToRegion[city] }
func (w *World) EmpireOf(region string) string { return w.regionToEmpire[region] }

// RoleMention returns the chat role mention for an empire, or "" when no
// role is configured.
func (w *World) RoleMention(empire string) string {
	return w.roleMentions[empire]
}
