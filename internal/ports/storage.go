package ports

import (
	"context"

	"github.com/alejandrodnm/pingpong/internal/domain"
)

// TraceStorage exporta la traza de un único run (pasos, fills y resumen).
// Cada export reemplaza al anterior: no es un histórico de runs.
type TraceStorage interface {
	// SaveTrace escribe la traza completa del run en una sola transacción.
	SaveTrace(ctx context.Context, result domain.RunResult) error

	// LoadSummary devuelve el resumen del run exportado, si existe.
	LoadSummary(ctx context.Context) (domain.TraceSummary, bool, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
