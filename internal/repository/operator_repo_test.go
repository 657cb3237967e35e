package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/balloon_quote/internal/models"
)

func newMockOperatorRepo(t *testing.T) (*OperatorRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewOperatorRepository(sqlx.NewDb(db, "postgres")), mock
}

func TestOperatorRepository_GetByEmail(t *testing.T) {
	repo, mock := newMockOperatorRepo(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, email, password_hash, name, is_active, last_login_at, created_at, updated_at\s+FROM operators`).
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "password_hash", "name", "is_active", "last_login_at", "created_at", "updated_at",
		}).AddRow(7, "ana@example.com", "hash", "Ana", true, nil, now, now))

	op, err := repo.GetByEmail(context.Background(), "ana@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if op.ID != 7 || op.Name != "Ana" || !op.IsActive || op.LastLoginAt != nil {
		t.Fatalf("unexpected operator: %+v", op)
	}
}

func TestOperatorRepository_GetByEmailUnknown(t *testing.T) {
	repo, mock := newMockOperatorRepo(t)
	mock.ExpectQuery(`FROM operators`).WithArgs("nobody@example.com").WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestOperatorRepository_Create(t *testing.T) {
	repo, mock := newMockOperatorRepo(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO operators`).
		WithArgs("ana@example.com", "hash", "Ana", true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(3, now, now))

	op := &models.Operator{Email: "ana@example.com", PasswordHash: "hash", Name: "Ana", IsActive: true}
	if err := repo.Create(context.Background(), op); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if op.ID != 3 || !op.CreatedAt.Equal(now) {
		t.Fatalf("id and timestamps not scanned back: %+v", op)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestOperatorRepository_TouchLastLogin(t *testing.T) {
	repo, mock := newMockOperatorRepo(t)
	mock.ExpectExec(`UPDATE operators SET last_login_at = NOW\(\) WHERE id = \$1`).
		WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE operators`).
		WithArgs(99).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.TouchLastLogin(context.Background(), 3); err != nil {
		t.Fatalf("TouchLastLogin: %v", err)
	}
	if err := repo.TouchLastLogin(context.Background(), 99); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows for a missing operator, got %v", err)
	}
}
