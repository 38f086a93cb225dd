package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"

	"github.com/MangousteEnFeu/TaxProjectV2/dto"
)

func newRepoWithMock(t *testing.T) (*DeclarationRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &DeclarationRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestCreateInsertsDraft(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO declarations").
		WillReturnResult(sqlmock.NewResult(0, 1))

	decl, err := repo.Create(context.Background(), "user-1", "Déclaration 2024")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if decl.ID == "" {
		t.Fatalf("expected generated id")
	}
	if decl.Status != dto.StatusDraft {
		t.Fatalf("expected draft status, got %s", decl.Status)
	}
	if decl.UserID != "user-1" {
		t.Fatalf("expected owner user-1, got %s", decl.UserID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, user_id, title, status").
		WithArgs("missing", "user-1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing", "user-1")
	if !errors.Is(err, ErrDeclarationNotFound) {
		t.Fatalf("expected ErrDeclarationNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDScansProfileFields(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "title", "status", "first_name", "last_name",
		"salary", "other_income", "professional_expenses", "insurance_premiums",
		"securities_value", "charitable_donations", "sources", "taxable_income",
		"estimated_tax", "created_at", "updated_at",
	}).AddRow(
		"decl-1", "user-1", "Déclaration 2024", "submitted", "Jean", "Dupont",
		"80000.00", "5000.00", "3000.00", "4000.00",
		"120000.00", "1000.00", []byte(`[{"name":"salaire.pdf","kind":"text","found":true}]`), "77000.00",
		int64(8120), now, now,
	)

	mock.ExpectQuery("SELECT id, user_id, title, status").
		WithArgs("decl-1", "user-1").
		WillReturnRows(rows)

	decl, err := repo.GetByID(context.Background(), "decl-1", "user-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !decl.Salary.Equal(decimal.NewFromInt(80000)) {
		t.Fatalf("expected salary 80000, got %s", decl.Salary)
	}
	if decl.EstimatedTax != 8120 {
		t.Fatalf("expected estimated tax 8120, got %d", decl.EstimatedTax)
	}
	if len(decl.Sources) != 1 || decl.Sources[0].Name != "salaire.pdf" {
		t.Fatalf("unexpected sources: %+v", decl.Sources)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveResultsNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE declarations").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SaveResults(context.Background(), "missing", "user-1", dto.FiscalProfile{}, dto.TaxResult{})
	if !errors.Is(err, ErrDeclarationNotFound) {
		t.Fatalf("expected ErrDeclarationNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeleteNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("DELETE FROM declarations").
		WithArgs("missing", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing", "user-1")
	if !errors.Is(err, ErrDeclarationNotFound) {
		t.Fatalf("expected ErrDeclarationNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
