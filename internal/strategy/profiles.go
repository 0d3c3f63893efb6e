package strategy

import "github.com/alejandrodnm/pingpong/internal/domain"

const (
	Aggressive = "aggressive"
	Balanced   = "balanced"
	Passive    = "passive"
)

// Builtin devuelve los perfiles predefinidos.
//
//	aggressive: cerca del mid, inventario amplio, requote cada 1ms
//	balanced:   el punto medio, default del CLI
//	passive:    lejos del mid, poco inventario, requote cada 10ms
func Builtin() []Profile {
	return []Profile{
		{
			Name:        Aggressive,
			Description: "Tight quotes, large inventory tolerance, fast requotes",
			Config: domain.StrategyConfig{
				QuoteSize: 5, TickOffset: 1, MaxInv: 20, CancelThreshold: 1, CooldownUs: 1_000,
			},
		},
		{
			Name:        Balanced,
			Description: "Moderate offset and inventory, default profile",
			Config: domain.StrategyConfig{
				QuoteSize: 3, TickOffset: 2, MaxInv: 10, CancelThreshold: 2, CooldownUs: 5_000,
			},
		},
		{
			Name:        Passive,
			Description: "Wide quotes, small inventory, slow requotes",
			Config: domain.StrategyConfig{
				QuoteSize: 1, TickOffset: 3, MaxInv: 5, CancelThreshold: 3, CooldownUs: 10_000,
			},
		},
	}
}
