// Package benchmark classifies metric values as good, warning or danger
// against externally supplied threshold tables.
package benchmark

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"trading-journal/internal/domain"
)

//go:embed presets.yaml
var defaultPresetsYAML []byte

// DefaultPreset is the preset used when none is requested.
const DefaultPreset = "default"

// ErrUnknownPreset is returned when a preset name is not defined.
var ErrUnknownPreset = errors.New("unknown benchmark preset")

// Direction tells whether larger values of a metric are better.
type Direction string

// Direction constants
const (
	HigherIsBetter Direction = "higher"
	LowerIsBetter  Direction = "lower"
)

// Thresholds are the status boundaries of one metric.
type Thresholds struct {
	Label     string        `yaml:"label"`
	Good      float64       `yaml:"good"`
	Warning   float64       `yaml:"warning"`
	Direction Direction     `yaml:"direction"`
	Format    domain.Format `yaml:"format"`
}

// Classify maps a value onto a status.
func (t Thresholds) Classify(v float64) domain.Status {
	if t.Direction == LowerIsBetter {
		switch {
		case v <= t.Good:
			return domain.StatusGood
		case v <= t.Warning:
			return domain.StatusWarning
		default:
			return domain.StatusDanger
		}
	}
	switch {
	case v >= t.Good:
		return domain.StatusGood
	case v >= t.Warning:
		return domain.StatusWarning
	default:
		return domain.StatusDanger
	}
}

func (t Thresholds) validate() error {
	switch t.Direction {
	case HigherIsBetter:
		if t.Good < t.Warning {
			return fmt.Errorf("good %.4f below warning %.4f", t.Good, t.Warning)
		}
	case LowerIsBetter:
		if t.Good > t.Warning {
			return fmt.Errorf("good %.4f above warning %.4f", t.Good, t.Warning)
		}
	default:
		return fmt.Errorf("direction %q is not higher or lower", t.Direction)
	}
	switch t.Format {
	case domain.FormatCurrency, domain.FormatPercentage, domain.FormatDecimal, domain.FormatCount:
	default:
		return fmt.Errorf("format %q is not supported", t.Format)
	}
	return nil
}

// Table maps metric IDs to thresholds.
type Table map[string]Thresholds

// Classify returns the status of a metric value.
// ok is false when the table has no thresholds for id.
func (t Table) Classify(id string, v float64) (domain.Status, bool) {
	th, ok := t[id]
	if !ok {
		return "", false
	}
	return th.Classify(v), true
}

// Presets is a named set of threshold tables.
type Presets map[string]Table

type presetFile struct {
	Presets Presets `yaml:"presets"`
}

// Load parses presets from YAML and validates every threshold.
func Load(data []byte) (Presets, error) {
	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse benchmark presets: %w", err)
	}
	if len(file.Presets) == 0 {
		return nil, errors.New("parse benchmark presets: no presets defined")
	}

	for name, table := range file.Presets {
		for id, th := range table {
			if th.Label == "" {
				th.Label = id
				table[id] = th
			}
			if err := th.validate(); err != nil {
				return nil, fmt.Errorf("preset %s metric %s: %w", name, id, err)
			}
		}
	}
	return file.Presets, nil
}

// LoadFile reads presets from a YAML file on disk.
func LoadFile(path string) (Presets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read benchmark presets: %w", err)
	}
	return Load(data)
}

// Default returns the embedded presets.
func Default() Presets {
	p, err := Load(defaultPresetsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded benchmark presets are invalid: %v", err))
	}
	return p
}

// Get returns the named table. An empty name selects DefaultPreset.
func (p Presets) Get(name string) (Table, error) {
	if name == "" {
		name = DefaultPreset
	}
	t, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	return t, nil
}

// Names returns the preset names sorted ASC.
func (p Presets) Names() []string {
	names := make([]string, 0, len(p))
	for n := range p {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
