package errors

// Postgres helpers for mapping pgx errors onto ErrorCode and field names

import (
	stderrs "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE classes the render ledger can hit
const (
	pgErrUniqueViolation           = "23505"
	pgErrForeignKeyViolation       = "23503"
	pgErrNotNullViolation          = "23502"
	pgErrCheckViolation            = "23514"
	pgErrStringDataRightTruncation = "22001"
	pgErrInvalidTextRepresentation = "22P02"
	pgErrReadOnlySQLTransaction    = "25006"
	pgErrCannotConnectNow          = "57P03"
)

// dbErrorCode maps a Postgres error to an ErrorCode, ok is false when err is not a PgError
func dbErrorCode(err error) (ErrorCode, bool) {
	var pgErr *pgconn.PgError
	if !stderrs.As(err, &pgErr) {
		return ErrorCodeUnknown, false
	}
	switch pgErr.Code {
	case pgErrUniqueViolation:
		return ErrorCodeDuplicateKey, true
	case pgErrForeignKeyViolation, pgErrStringDataRightTruncation, pgErrInvalidTextRepresentation:
		return ErrorCodeInvalidArgument, true
	case pgErrNotNullViolation, pgErrCheckViolation:
		return ErrorCodeValidation, true
	case pgErrReadOnlySQLTransaction, pgErrCannotConnectNow:
		return ErrorCodeUnavailable, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps a pg error with a mapped ErrorCode and message, nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code, _ := dbErrorCode(err)
	if code == ErrorCodeUnknown {
		code = ErrorCodeDB
	}
	return Wrapf(err, code, "%s", msg)
}

// FromPostgresWithField is FromPostgres plus a field name taken from the PgError
// ColumnName wins, otherwise the last token of the constraint (render_ledger_kind_check -> check is skipped)
func FromPostgresWithField(err error, msg string) error {
	out := FromPostgres(err, msg)
	var pgErr *pgconn.PgError
	if out == nil || !stderrs.As(Root(err), &pgErr) {
		return out
	}
	if col := strings.TrimSpace(pgErr.ColumnName); col != "" {
		return WithField(out, col)
	}
	c := strings.TrimSpace(pgErr.ConstraintName)
	tok := c[strings.LastIndex(c, "_")+1:]
	switch tok {
	case "", "key", "fkey", "check", "pkey":
		return out
	}
	return WithField(out, tok)
}
