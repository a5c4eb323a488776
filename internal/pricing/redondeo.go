// Package pricing holds the pure arithmetic of bulk price changes: percentage
// parsing, the 000/500 rounding policy and per-product planning. It has no
// database or HTTP dependencies.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Paso is the currency step prices snap to. A full cycle is two steps, so
// rounded prices end in 000 or 500.
const Paso int64 = 500

// ModoRedondeo selects how a raw price is snapped to Paso.
type ModoRedondeo string

const (
	ModoCercano ModoRedondeo = "nearest"
	ModoArriba  ModoRedondeo = "up"
	ModoAbajo   ModoRedondeo = "down"
)

// ParseModoRedondeo is lenient: unknown or empty input means ModoCercano.
func ParseModoRedondeo(raw string) ModoRedondeo {
	switch m := ModoRedondeo(strings.ToLower(strings.TrimSpace(raw))); m {
	case ModoCercano, ModoArriba, ModoAbajo:
		return m
	}
	return ModoCercano
}

// Redondear first rounds v to a whole unit (half away from zero) and then
// snaps it using the remainder within a 2*Paso cycle:
//
//	nearest: rem < Paso/2 down, rem < 3*Paso/2 to the half step, else up
//	up:      rem == 0 keeps, rem <= Paso to the half step, else up
//	down:    rem < Paso down, else to the half step
func Redondear(v decimal.Decimal, modo ModoRedondeo) decimal.Decimal {
	paso := decimal.NewFromInt(Paso)
	medio := decimal.NewFromInt(Paso / 2)
	ciclo := paso.Add(paso)

	n := v.Round(0)
	// Mod keeps the sign of n; shift into [0, ciclo) for floor semantics.
	rem := n.Mod(ciclo)
	if rem.IsNegative() {
		rem = rem.Add(ciclo)
	}
	piso := n.Sub(rem)

	switch modo {
	case ModoArriba:
		switch {
		case rem.IsZero():
			return n
		case rem.LessThanOrEqual(paso):
			return piso.Add(paso)
		default:
			return piso.Add(ciclo)
		}
	case ModoAbajo:
		if rem.LessThan(paso) {
			return piso
		}
		return piso.Add(paso)
	default:
		switch {
		case rem.LessThan(medio):
			return piso
		case rem.LessThan(paso.Add(medio)):
			return piso.Add(paso)
		default:
			return piso.Add(ciclo)
		}
	}
}
