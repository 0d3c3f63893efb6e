package strategy

import (
	"fmt"
	"sort"

	"github.com/alejandrodnm/pingpong/internal/domain"
)

// Profile es un juego de parámetros del ping-pong con nombre.
// Solo existe para la orquestación (CLI, comparaciones); el motor recibe
// únicamente el StrategyConfig.
type Profile struct {
	Name        string
	Description string
	Config      domain.StrategyConfig
}

// Registry mantiene los perfiles disponibles indexados por nombre.
// Cada llamador crea el suyo: no hay registry global.
type Registry map[string]Profile

// NewRegistry crea un registry vacío.
func NewRegistry() Registry {
	return make(Registry)
}

// DefaultRegistry crea un registry con los perfiles predefinidos.
func DefaultRegistry() Registry {
	r := NewRegistry()
	for _, p := range Builtin() {
		if err := r.Register(p); err != nil {
			panic(err) // los perfiles predefinidos son válidos
		}
	}
	return r
}

// Register añade un perfil al registry, validando su configuración.
// Un nombre repetido reemplaza al anterior.
func (r Registry) Register(p Profile) error {
	if p.Name == "" {
		return fmt.Errorf("strategy.Register: %w: empty profile name", domain.ErrInvalidConfig)
	}
	if err := p.Config.Validate(); err != nil {
		return fmt.Errorf("strategy.Register: %s: %w", p.Name, err)
	}
	r[p.Name] = p
	return nil
}

// Get devuelve el perfil por nombre.
func (r Registry) Get(name string) (Profile, bool) {
	p, ok := r[name]
	return p, ok
}

// Names devuelve los nombres registrados en orden alfabético.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List devuelve los perfiles en orden alfabético.
func (r Registry) List() []Profile {
	out := make([]Profile, 0, len(r))
	for _, name := range r.Names() {
		out = append(out, r[name])
	}
	return out
}
