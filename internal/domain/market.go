package domain

// MarketState es la foto sintética del mercado en un paso de la simulación.
// La produce exclusivamente el Market Model; el resto de componentes la leen.
type MarketState struct {
	Timestamp       int64   // microsegundos
	MidPrice        int64   // ticks
	Spread          int64   // ticks, >= 0
	Volatility      float64 // >= min_volatility
	FillProbability float64 // [0, 1]
}

// BestBid devuelve el mejor bid implícito: mid - floor(spread/2).
func (m MarketState) BestBid() int64 {
	return m.MidPrice - m.Spread/2
}

// BestAsk devuelve el mejor ask implícito: mid + ceil(spread/2).
// Con spread impar el lado ask absorbe el tick sobrante.
func (m MarketState) BestAsk() int64 {
	return m.MidPrice + (m.Spread+1)/2
}

// DistanceFromMid devuelve cuántos ticks está un precio por detrás del mid en
// su lado pasivo. Negativo significa que el precio cruzó el mid.
//
//	bid: mid - price
//	ask: price - mid
func (m MarketState) DistanceFromMid(side Side, price int64) int64 {
	if side == SideBid {
		return m.MidPrice - price
	}
	return price - m.MidPrice
}

// Marketable indica si un precio cruza la punta contraria del libro sintético.
func (m MarketState) Marketable(side Side, price int64) bool {
	if side == SideBid {
		return price >= m.BestAsk()
	}
	return price <= m.BestBid()
}
