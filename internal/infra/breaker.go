package infra

import (
	"errors"
	"sync"
	"time"
)

// Breaker guards calls to an external service (SMTP). After Fallas
// consecutive failures it opens and rejects calls for Espera; then a single
// probe decides whether it closes again.
type Breaker struct {
	mu       sync.Mutex
	nombre   string
	fallas   int
	umbral   int
	espera   time.Duration
	abiertoH time.Time
	probando bool
	ahora    func() time.Time
}

// ErrBreakerAbierto is returned without calling fn while the breaker is open.
var ErrBreakerAbierto = errors.New("servicio externo no disponible")

// BreakerConfig holds the breaker thresholds; zero values take defaults.
type BreakerConfig struct {
	Fallas int
	Espera time.Duration
}

func NewBreaker(nombre string, cfg BreakerConfig) *Breaker {
	if cfg.Fallas <= 0 {
		cfg.Fallas = 5
	}
	if cfg.Espera <= 0 {
		cfg.Espera = time.Minute
	}
	return &Breaker{nombre: nombre, umbral: cfg.Fallas, espera: cfg.Espera, ahora: time.Now}
}

// Estado is "closed", "open" or "half-open", for health output and logs.
func (b *Breaker) Estado() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case b.fallas < b.umbral:
		return "closed"
	case b.ahora().Sub(b.abiertoH) >= b.espera:
		return "half-open"
	default:
		return "open"
	}
}

// Ejecutar runs fn unless the breaker is open or a probe is in flight.
func (b *Breaker) Ejecutar(fn func() error) error {
	b.mu.Lock()
	if b.fallas >= b.umbral {
		if b.probando || b.ahora().Sub(b.abiertoH) < b.espera {
			b.mu.Unlock()
			return ErrBreakerAbierto
		}
		b.probando = true
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.probando = false
	if err != nil {
		b.fallas++
		if b.fallas >= b.umbral {
			b.abiertoH = b.ahora()
		}
		return err
	}
	b.fallas = 0
	return nil
}
