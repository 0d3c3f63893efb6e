package ports

import (
	"context"

	"github.com/alejandrodnm/pingpong/internal/domain"
)

// Notifier presenta los resultados de los runs al usuario.
type Notifier interface {
	// NotifyRun muestra el resumen completo de un run.
	NotifyRun(ctx context.Context, result domain.RunResult) error

	// NotifyComparison muestra varios runs lado a lado (un perfil por fila).
	NotifyComparison(ctx context.Context, results []domain.RunResult) error

	// NotifySeedSweep muestra un barrido de semillas y su agregado.
	NotifySeedSweep(ctx context.Context, results []domain.RunResult, summary domain.SeedSummary) error
}
