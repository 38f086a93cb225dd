package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/MangousteEnFeu/TaxProjectV2/dto"
)

var ErrDeclarationNotFound = errors.New("declaration not found")

type DeclarationRepository struct {
	db *sql.DB
}

func NewDeclarationRepository(db *sql.DB) *DeclarationRepository {
	return &DeclarationRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DeclarationRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026090101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS declarations (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	title TEXT NOT NULL,
	status TEXT NOT NULL,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	salary NUMERIC(14,2) NOT NULL DEFAULT 0,
	other_income NUMERIC(14,2) NOT NULL DEFAULT 0,
	professional_expenses NUMERIC(14,2) NOT NULL DEFAULT 0,
	insurance_premiums NUMERIC(14,2) NOT NULL DEFAULT 0,
	securities_value NUMERIC(14,2) NOT NULL DEFAULT 0,
	charitable_donations NUMERIC(14,2) NOT NULL DEFAULT 0,
	sources JSONB NOT NULL DEFAULT '[]'::jsonb,
	taxable_income NUMERIC(14,2) NOT NULL DEFAULT 0,
	estimated_tax BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_declarations_user_id ON declarations(user_id);
CREATE INDEX IF NOT EXISTS idx_declarations_created_at ON declarations(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *DeclarationRepository) Create(ctx context.Context, userID, title string) (*dto.Declaration, error) {
	now := time.Now().UTC()
	decl := &dto.Declaration{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Status:    dto.StatusDraft,
		Sources:   []dto.SourceRecord{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO declarations (id, user_id, title, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`,
		decl.ID, decl.UserID, decl.Title, string(decl.Status), decl.CreatedAt, decl.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert declaration: %w", err)
	}
	return decl, nil
}

const declarationColumns = `id, user_id, title, status, first_name, last_name,
salary, other_income, professional_expenses, insurance_premiums,
securities_value, charitable_donations, sources, taxable_income,
estimated_tax, created_at, updated_at`

func (r *DeclarationRepository) GetByID(ctx context.Context, id, userID string) (*dto.Declaration, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+declarationColumns+`
FROM declarations
WHERE id = $1 AND user_id = $2`, id, userID)

	decl, err := scanDeclaration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDeclarationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select declaration: %w", err)
	}
	return decl, nil
}

func (r *DeclarationRepository) ListByUser(ctx context.Context, userID string) ([]*dto.Declaration, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+declarationColumns+`
FROM declarations
WHERE user_id = $1
ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list declarations: %w", err)
	}
	defer rows.Close()

	var decls []*dto.Declaration
	for rows.Next() {
		decl, err := scanDeclaration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan declaration: %w", err)
		}
		decls = append(decls, decl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate declarations: %w", err)
	}
	return decls, nil
}

// SaveResults stores an extraction run's profile and tax estimate on the
// declaration and marks it submitted.
func (r *DeclarationRepository) SaveResults(ctx context.Context, id, userID string, profile dto.FiscalProfile, tax dto.TaxResult) error {
	sourcesJSON, err := json.Marshal(profile.Sources)
	if err != nil {
		return fmt.Errorf("marshal sources: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE declarations SET
	status = $3,
	first_name = $4,
	last_name = $5,
	salary = $6,
	other_income = $7,
	professional_expenses = $8,
	insurance_premiums = $9,
	securities_value = $10,
	charitable_donations = $11,
	sources = $12,
	taxable_income = $13,
	estimated_tax = $14,
	updated_at = $15
WHERE id = $1 AND user_id = $2`,
		id, userID, string(dto.StatusSubmitted),
		profile.FirstName, profile.LastName,
		profile.Salary, profile.OtherIncome, profile.ProfessionalExpenses,
		profile.InsurancePremiums, profile.SecuritiesValue, profile.CharitableDonations,
		sourcesJSON, tax.TaxableIncome, tax.TotalTax, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update declaration: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrDeclarationNotFound
	}
	return nil
}

func (r *DeclarationRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM declarations WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete declaration: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrDeclarationNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeclaration(row rowScanner) (*dto.Declaration, error) {
	var decl dto.Declaration
	var status string
	var sourcesJSON []byte

	err := row.Scan(
		&decl.ID, &decl.UserID, &decl.Title, &status,
		&decl.FirstName, &decl.LastName,
		&decl.Salary, &decl.OtherIncome, &decl.ProfessionalExpenses,
		&decl.InsurancePremiums, &decl.SecuritiesValue, &decl.CharitableDonations,
		&sourcesJSON, &decl.TaxableIncome, &decl.EstimatedTax,
		&decl.CreatedAt, &decl.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	decl.Status = dto.DeclarationStatus(status)
	if len(sourcesJSON) > 0 {
		if err := json.Unmarshal(sourcesJSON, &decl.Sources); err != nil {
			return nil, fmt.Errorf("unmarshal sources: %w", err)
		}
	}
	return &decl, nil
}
