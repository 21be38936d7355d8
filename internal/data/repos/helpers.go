package repos

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/owenshen0907/NihonGO/internal/domain"
)

const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a Postgres duplicate-key error.
// Report inserts treat it as "row already there", not as failure.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

func counterColumn(d domain.Dimension) string {
	switch d {
	case domain.DimensionListening:
		return "listening"
	case domain.DimensionSpeaking:
		return "speaking"
	case domain.DimensionWriting:
		return "writing"
	default:
		return "reading"
	}
}
