package repo

import (
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrorNotFound    = errors.New("not found")
	ErrorConflict    = errors.New("conflict")
	ErrorInvalid     = errors.New("invalid value")
	ErrorUnavailable = errors.New("store unavailable")
)

// SQLSTATE коды, которые переводим в доменные ошибки
const (
	codeUniqueViolation   = "23505"
	codeCheckViolation    = "23514"
	codeNotNullViolation  = "23502"
	codeNumericOutOfRange = "22003"
	codeInvalidDatetime   = "22007"
	codeDatetimeOverflow  = "22008"
	codeInvalidTextRepr   = "22P02"
	codeConnectionFailure = "08006"
	codeCannotConnectNow  = "57P03"
	codeAdminShutdown     = "57P01"
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrorNotFound
	}
	if errors.Is(err, ErrorNotFound) || errors.Is(err, ErrorConflict) ||
		errors.Is(err, ErrorInvalid) || errors.Is(err, ErrorUnavailable) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return ErrorConflict
		case codeCheckViolation, codeNotNullViolation, codeNumericOutOfRange,
			codeInvalidDatetime, codeDatetimeOverflow, codeInvalidTextRepr:
			return fmt.Errorf("%w: %s", ErrorInvalid, pgErr.Message)
		case codeConnectionFailure, codeCannotConnectNow, codeAdminShutdown:
			return fmt.Errorf("%w: %w", ErrorUnavailable, err)
		}
		return err
	}

	// Недоступность хранилища: не удалось подключиться, таймаут или сетевой сбой
	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || pgconn.Timeout(err) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", ErrorUnavailable, err)
	}
	return err
}
