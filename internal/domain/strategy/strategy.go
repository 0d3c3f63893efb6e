package strategy

import "github.com/alejandrodnm/pingpong/internal/domain"

// Action es el tipo de decisión que toma una estrategia en un paso.
type Action string

const (
	ActionHold          Action = "HOLD"
	ActionRequote       Action = "REQUOTE"
	ActionCancelAndHold Action = "CANCEL_AND_HOLD"
)

// Quote es una orden nueva que la estrategia quiere dejar en el libro.
type Quote struct {
	Side     domain.Side
	Price    int64
	Quantity int64
}

// Decision es la salida de un paso de la estrategia.
// Cancels se aplica antes que Quotes.
type Decision struct {
	Action  Action
	Cancels []int64
	Quotes  []Quote
}

// Input es todo lo que la estrategia ve en un paso. Las órdenes activas
// pueden ser nil; la estrategia no debe mutarlas.
type Input struct {
	Now       int64
	Market    domain.MarketState
	Position  int64
	ActiveBid *domain.Order
	ActiveAsk *domain.Order
}

// Active devuelve la orden activa del lado dado.
func (in Input) Active(side domain.Side) *domain.Order {
	if side == domain.SideBid {
		return in.ActiveBid
	}
	return in.ActiveAsk
}

// Strategy define el contrato de decisión que invoca el motor en cada paso.
type Strategy interface {
	// Name devuelve el identificador de la estrategia.
	Name() string

	// Decide devuelve hold, requote o cancel para el estado actual.
	// No puede fallar: la configuración se valida en el constructor.
	Decide(in Input) Decision
}
