package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tienda/internal/importer"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSinCandidatos means there is no pending PDF import for the user
// (never previewed, already confirmed, or expired).
var ErrSinCandidatos = errors.New("no hay una importación pendiente de confirmar")

const candidatosKeyPrefix = "importacion_pdf:candidatos:"

// CandidatoStore keeps the rows of a PDF import preview between the preview
// and the confirmation, one slot per user.
type CandidatoStore interface {
	Guardar(ctx context.Context, usuarioID uuid.UUID, cs []importer.Candidato) error
	// Obtener returns ErrSinCandidatos when nothing is stored.
	Obtener(ctx context.Context, usuarioID uuid.UUID) ([]importer.Candidato, error)
	Borrar(ctx context.Context, usuarioID uuid.UUID) error
}

type redisCandidatoStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCandidatoStore(rdb *redis.Client, ttl time.Duration) CandidatoStore {
	return &redisCandidatoStore{rdb: rdb, ttl: ttl}
}

func candidatosKey(usuarioID uuid.UUID) string {
	return candidatosKeyPrefix + usuarioID.String()
}

func (s *redisCandidatoStore) Guardar(ctx context.Context, usuarioID uuid.UUID, cs []importer.Candidato) error {
	data, err := json.Marshal(cs)
	if err != nil {
		return fmt.Errorf("candidatos: marshal: %w", err)
	}
	return s.rdb.Set(ctx, candidatosKey(usuarioID), data, s.ttl).Err()
}

func (s *redisCandidatoStore) Obtener(ctx context.Context, usuarioID uuid.UUID) ([]importer.Candidato, error) {
	data, err := s.rdb.Get(ctx, candidatosKey(usuarioID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSinCandidatos
	}
	if err != nil {
		return nil, err
	}
	var cs []importer.Candidato
	if err := json.Unmarshal(data, &cs); err != nil {
		return nil, fmt.Errorf("candidatos: unmarshal: %w", err)
	}
	if len(cs) == 0 {
		return nil, ErrSinCandidatos
	}
	return cs, nil
}

func (s *redisCandidatoStore) Borrar(ctx context.Context, usuarioID uuid.UUID) error {
	return s.rdb.Del(ctx, candidatosKey(usuarioID)).Err()
}
