package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"purrr-love/internal/domain/pets"
)

var (
	ErrUnknownAction  = errors.New("unknown action")
	ErrInvalidCatalog = errors.New("invalid catalog")
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog es de solo lectura una vez construido; se comparte entre requests sin locks.
type Catalog struct {
	byKind map[Kind]map[string]Action
}

// New valida las acciones y arma el catálogo.
func New(actions []Action) (*Catalog, error) {
	c := &Catalog{byKind: map[Kind]map[string]Action{
		KindGame:      {},
		KindStoreItem: {},
	}}

	for _, a := range actions {
		if err := validate(a); err != nil {
			return nil, err
		}
		if _, dup := c.byKind[a.Kind][a.Key]; dup {
			return nil, fmt.Errorf("%w: duplicated key %q", ErrInvalidCatalog, a.Key)
		}
		c.byKind[a.Kind][a.Key] = a
	}
	return c, nil
}

// Default carga el catálogo embebido (juegos y tienda originales).
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// LoadFile permite reemplazar el catálogo embebido (CATALOG_PATH).
func LoadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(b)
}

// Load usa path si viene, si no el embebido.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	return LoadFile(path)
}

func (c *Catalog) Lookup(kind Kind, key string) (Action, error) {
	items, ok := c.byKind[kind]
	if !ok {
		return Action{}, ErrUnknownAction
	}
	a, ok := items[strings.TrimSpace(key)]
	if !ok {
		return Action{}, ErrUnknownAction
	}
	return a, nil
}

// List devuelve las acciones de un tipo ordenadas por key.
func (c *Catalog) List(kind Kind) []Action {
	items := c.byKind[kind]
	out := make([]Action, 0, len(items))
	for _, a := range items {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func validate(a Action) error {
	if strings.TrimSpace(a.Key) == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidCatalog)
	}
	if !a.Kind.Valid() {
		return fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidCatalog, a.Key, a.Kind)
	}
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: %s: empty name", ErrInvalidCatalog, a.Key)
	}
	if len(a.Effects) == 0 {
		return fmt.Errorf("%w: %s: no effects", ErrInvalidCatalog, a.Key)
	}

	seen := map[pets.Attribute]struct{}{}
	for _, e := range a.Effects {
		if !e.Attribute.Valid() {
			return fmt.Errorf("%w: %s: unknown attribute %q", ErrInvalidCatalog, a.Key, e.Attribute)
		}
		if _, dup := seen[e.Attribute]; dup {
			return fmt.Errorf("%w: %s: attribute %q declared twice", ErrInvalidCatalog, a.Key, e.Attribute)
		}
		seen[e.Attribute] = struct{}{}
		if !e.Delta.Valid() {
			return fmt.Errorf("%w: %s: %s range %s inverted", ErrInvalidCatalog, a.Key, e.Attribute, e.Delta)
		}
	}

	if !a.Reward.Valid() {
		return fmt.Errorf("%w: %s: reward range inverted", ErrInvalidCatalog, a.Key)
	}

	switch a.Kind {
	case KindGame:
		if a.Cost != 0 {
			return fmt.Errorf("%w: %s: games cannot have a cost", ErrInvalidCatalog, a.Key)
		}
		if a.Reward.Min < 0 {
			return fmt.Errorf("%w: %s: game reward must not be negative", ErrInvalidCatalog, a.Key)
		}
	case KindStoreItem:
		if a.Cost <= 0 {
			return fmt.Errorf("%w: %s: store items need a positive cost", ErrInvalidCatalog, a.Key)
		}
		if !a.Reward.IsZero() {
			return fmt.Errorf("%w: %s: store items cannot reward coins", ErrInvalidCatalog, a.Key)
		}
	}
	return nil
}
