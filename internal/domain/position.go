package domain

// Position es el inventario neto y su base de coste.
//
// Quantity y CostBasis tienen el mismo signo: un largo de 3 a 100 tiene base
// 300, un corto de 3 a 100 tiene base -300. Así el PnL no realizado es siempre
// mark*Quantity - CostBasis, sin ramas por lado.
type Position struct {
	Quantity    int64 // con signo
	CostBasis   int64 // ticks, mismo signo que Quantity
	RealizedPnL int64 // ticks acumulados por reducciones
}

// AverageCost devuelve el precio medio de entrada en ticks.
// Devuelve 0 si no hay posición abierta.
func (p Position) AverageCost() float64 {
	if p.Quantity == 0 {
		return 0
	}
	return float64(p.CostBasis) / float64(p.Quantity)
}

// UnrealizedPnL valora la posición abierta contra mark.
func (p Position) UnrealizedPnL(mark int64) int64 {
	return safeSub(safeMul(mark, p.Quantity), p.CostBasis)
}

// IsFlat indica si no hay inventario.
func (p Position) IsFlat() bool {
	return p.Quantity == 0
}

// Apply aplica un fill con contabilidad de coste medio y devuelve el PnL
// realizado por ese fill.
//
// Si el fill reduce la posición, la base liberada es proporcional a la
// cantidad cerrada (división entera; el resto queda en la base hasta cerrar
// del todo). Si el fill invierte la posición, la parte sobrante abre un lote
// nuevo al precio del fill.
func (p *Position) Apply(side Side, price, qty int64) int64 {
	if qty <= 0 {
		panic("domain: Position.Apply with non-positive quantity")
	}
	signed := safeMul(side.Sign(), qty)

	// Abre o aumenta en la misma dirección.
	if p.Quantity == 0 || (p.Quantity > 0) == (signed > 0) {
		p.Quantity = safeAdd(p.Quantity, signed)
		p.CostBasis = safeAdd(p.CostBasis, safeMul(price, signed))
		return 0
	}

	// Reduce: closing tiene el signo de la posición actual.
	closing := -signed
	if abs64(closing) > abs64(p.Quantity) {
		closing = p.Quantity
	}

	var released int64
	if closing == p.Quantity {
		released = p.CostBasis
	} else {
		released = safeMul(p.CostBasis, closing) / p.Quantity
	}
	realized := safeSub(safeMul(price, closing), released)

	p.Quantity = safeSub(p.Quantity, closing)
	p.CostBasis = safeSub(p.CostBasis, released)
	p.RealizedPnL = safeAdd(p.RealizedPnL, realized)

	// Reversal: lo que sobra abre posición en el otro lado.
	if rest := safeAdd(signed, closing); rest != 0 {
		p.Quantity = rest
		p.CostBasis = safeMul(price, rest)
	}
	return realized
}
