// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"warbler/internal/models"
	"warbler/internal/observability"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// observe opens a span and a latency timer for one repository call.
func observe(ctx context.Context, method, table string) (context.Context, func(error)) {
	ctx, span := observability.StartRepositorySpan(ctx, method, table)
	done := observability.TrackQuery(method, table)
	return ctx, func(err error) {
		done()
		observability.EndSpan(span, err)
	}
}

// translateError maps driver errors onto AppErrors.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if isIntegrityViolation(err) {
		return models.NewIntegrityError(err)
	}
	return models.NewInternalError(err)
}

// isIntegrityViolation reports whether err is a unique, not-null, check or
// foreign key violation on any of the supported databases.
func isIntegrityViolation(err error) bool {
	if err == nil {
		return false
	}

	// PostgreSQL: SQLSTATE class 23
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "23")
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1048, 1062, 1451, 1452, 3819:
			return true
		}
		return false
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrConstraint
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrForeignKeyViolated) ||
		errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"constraint failed",
		"violates",
		"duplicate key",
		"duplicate entry",
		"cannot be null",
		"constraint fails",
		"is violated",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func clampLimit(limit, fallback, ceiling int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > ceiling {
		return ceiling
	}
	return limit
}
