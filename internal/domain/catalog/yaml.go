package catalog

import (
	"fmt"

	"purrr-love/internal/domain/pets"

	"gopkg.in/yaml.v3"
)

// Formato del archivo:
//
//	games:
//	  - key: ball_toss
//	    name: Ball Toss
//	    reward: [2, 10]
//	    effects:
//	      happiness: [2, 8]
//	      energy: [-15, -5]
//	store:
//	  - key: toy_mouse
//	    cost: 10
//	    effects:
//	      happiness: 8
type fileDoc struct {
	Games []fileAction `yaml:"games"`
	Store []fileAction `yaml:"store"`
}

type fileAction struct {
	Key         string               `yaml:"key"`
	Name        string               `yaml:"name"`
	Description string               `yaml:"description"`
	Icon        string               `yaml:"icon"`
	Cost        int64                `yaml:"cost"`
	Reward      yamlRange            `yaml:"reward"`
	Effects     map[string]yamlRange `yaml:"effects"`
	Message     string               `yaml:"message"`
}

// yamlRange acepta un escalar (monto fijo) o una secuencia [min, max].
type yamlRange Range

func (r *yamlRange) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v int
		if err := node.Decode(&v); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*r = yamlRange(Fixed(v))
		return nil
	case yaml.SequenceNode:
		var vs []int
		if err := node.Decode(&vs); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		if len(vs) != 2 {
			return fmt.Errorf("line %d: range needs exactly [min, max]", node.Line)
		}
		*r = yamlRange(Range{Min: vs[0], Max: vs[1]})
		return nil
	default:
		return fmt.Errorf("line %d: expected number or [min, max]", node.Line)
	}
}

// Parse decodifica y valida un documento YAML de catálogo.
func Parse(data []byte) (*Catalog, error) {
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	actions := make([]Action, 0, len(doc.Games)+len(doc.Store))
	for _, fa := range doc.Games {
		a, err := fa.toAction(KindGame)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	for _, fa := range doc.Store {
		a, err := fa.toAction(KindStoreItem)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return New(actions)
}

func (fa fileAction) toAction(kind Kind) (Action, error) {
	effects := make([]Effect, 0, len(fa.Effects))
	for name := range fa.Effects {
		if !pets.Attribute(name).Valid() {
			return Action{}, fmt.Errorf("%w: %s: unknown attribute %q", ErrInvalidCatalog, fa.Key, name)
		}
	}
	// Orden estable: el de pets.Attributes.
	for _, attr := range pets.Attributes {
		if r, ok := fa.Effects[string(attr)]; ok {
			effects = append(effects, Effect{Attribute: attr, Delta: Range(r)})
		}
	}

	return Action{
		Key:         fa.Key,
		Kind:        kind,
		Name:        fa.Name,
		Description: fa.Description,
		Icon:        fa.Icon,
		Cost:        fa.Cost,
		Effects:     effects,
		Reward:      Range(fa.Reward),
		Message:     fa.Message,
	}, nil
}
