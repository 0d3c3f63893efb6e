package domain

import "math"

// Anualización de los buckets de retorno: sesión de acciones de 6.5h, 252 días.
const (
	TradingDaysPerYear = 252
	HoursPerDay        = 6.5
)

// BucketsPerYear devuelve cuántos buckets de bucketUs caben en un año de trading.
func BucketsPerYear(bucketUs int64) float64 {
	if bucketUs <= 0 {
		return 0
	}
	usPerYear := TradingDaysPerYear * HoursPerDay * 3600 * 1e6
	return usPerYear / float64(bucketUs)
}

// Mean devuelve la media aritmética. 0 para una serie vacía.
func Mean(xs []int64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += float64(x)
	}
	return sum / float64(len(xs))
}

// PopulationStdDev devuelve la desviación estándar poblacional (divide por n).
// 0 para una serie vacía.
func PopulationStdDev(xs []int64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := Mean(xs)
	var ss float64
	for _, x := range xs {
		d := float64(x) - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// SharpeRatio calcula media/desviación poblacional de los retornos por bucket,
// anualizado con sqrt(bucketsPerYear). Sin tasa libre de riesgo.
//
// Devuelve 0 con menos de 2 buckets o desviación nula.
func SharpeRatio(returns []int64, bucketsPerYear float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	sd := PopulationStdDev(returns)
	if sd == 0 {
		return 0
	}
	return Mean(returns) / sd * math.Sqrt(bucketsPerYear)
}

// MaxDrawdown devuelve la mayor caída pico-valle de una serie de PnL acumulado.
// El pico arranca en 0: el run empieza plano.
func MaxDrawdown(series []int64) int64 {
	var peak, maxDD int64
	for _, v := range series {
		if v > peak {
			peak = v
		}
		if dd := peak - v; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// WinRate devuelve la fracción de buckets con retorno positivo. 0 si no hay buckets.
func WinRate(returns []int64) float64 {
	if len(returns) == 0 {
		return 0
	}
	wins := 0
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(returns))
}

// GrossProfit suma los retornos positivos.
func GrossProfit(returns []int64) float64 {
	var total float64
	for _, r := range returns {
		if r > 0 {
			total += float64(r)
		}
	}
	return total
}

// GrossLoss suma el valor absoluto de los retornos negativos.
func GrossLoss(returns []int64) float64 {
	var total float64
	for _, r := range returns {
		if r < 0 {
			total -= float64(r)
		}
	}
	return total
}

// ProfitFactor devuelve profit/loss.
//
// Convención sin pérdidas: +Inf si hubo beneficio, 0 si tampoco hubo beneficio.
func ProfitFactor(profit, loss float64) float64 {
	if loss == 0 {
		if profit > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return profit / loss
}

// FillRatio devuelve filled/attempted, 0 si no se intentó nada.
func FillRatio(filled, attempted int64) float64 {
	if attempted <= 0 {
		return 0
	}
	return float64(filled) / float64(attempted)
}
