package prefabs

import (
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, eris.Wrapf(err, "prefabs: load %s", filename)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, eris.Wrapf(err, "prefabs: unmarshal %s", filename)
	}

	return spec, nil
}

// EntityBuildSpec is the generic prefab shape shared by abilities and units:
// a name and a map of component name to component spec.
type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

// LoadAbilitySpec loads the ability definition called name.
func LoadAbilitySpec(name string) (EntityBuildSpec, error) {
	spec, err := LoadEntityBuildSpec(AbilityPath(name))
	if err != nil {
		return spec, err
	}
	if strings.TrimSpace(spec.Name) == "" {
		spec.Name = name
	}
	return spec, nil
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type CooldownComponentSpec struct {
	Seconds float64 `yaml:"seconds"`
	Charges int     `yaml:"charges"`
}

// CostsComponentSpec maps resource kind names to the amount spent on start.
type CostsComponentSpec map[string]float64

type DisabledComponentSpec struct {
	Disabled *bool `yaml:"disabled"`
}

type ScriptGateComponentSpec struct {
	Script string `yaml:"script"`
	Source string `yaml:"source"`
}

type PoolSpec struct {
	Current *float64 `yaml:"current"`
	Max     float64  `yaml:"max"`
	Regen   float64  `yaml:"regen"`
}

// ResourcesComponentSpec maps resource kind names to the unit's pools.
type ResourcesComponentSpec map[string]PoolSpec

type AbilitiesComponentSpec struct {
	// List names ability prefabs in roster scan order.
	List []string `yaml:"list"`
	// Bindings maps input actions to entries of List.
	Bindings map[string]string `yaml:"bindings"`
	// Priority orders actions for the priority resolver. Empty uses the
	// default ability action order restricted to bound actions.
	Priority []string `yaml:"priority"`
}

// TimelineSpec drives a headless simulation: which units to build and which
// actions to press on which tick.
type TimelineSpec struct {
	Name             string              `yaml:"name"`
	Ticks            int                 `yaml:"ticks"`
	TickRate         int                 `yaml:"tick_rate"`
	InstantAbilities bool                `yaml:"instant_abilities"`
	Units            []TimelineUnitSpec  `yaml:"units"`
	Inputs           []TimelineInputSpec `yaml:"inputs"`
}

type TimelineUnitSpec struct {
	ID     string `yaml:"id"`
	Prefab string `yaml:"prefab"`
}

type TimelineInputSpec struct {
	Tick    uint64   `yaml:"tick"`
	Unit    string   `yaml:"unit"`
	Press   []string `yaml:"press"`
	Release []string `yaml:"release"`
}

func LoadTimelineSpec(filename string) (TimelineSpec, error) {
	return LoadSpec[TimelineSpec](filename)
}
