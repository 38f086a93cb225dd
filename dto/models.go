package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type DocumentKind string

const (
	KindText    DocumentKind = "text"    // text-bearing PDF
	KindTabular DocumentKind = "tabular" // spreadsheet
	KindScanned DocumentKind = "scanned" // image, OCR required
)

// Field names populated by the extraction strategies.
const (
	FieldSalary               = "salary"
	FieldOtherIncome          = "other_income"
	FieldProfessionalExpenses = "professional_expenses"
	FieldInsurancePremiums    = "insurance_premiums"
	FieldSecuritiesValue      = "securities_value"
	FieldCharitableDonations  = "charitable_donations"
)

type DocumentMeta struct {
	Filename string       `json:"filename"`
	Kind     DocumentKind `json:"kind"`
}

type UploadMetadata struct {
	Documents []DocumentMeta `json:"documents"`
}

// RawDocument is one uploaded document before decoding.
type RawDocument struct {
	Name string
	Kind DocumentKind
	Data []byte
}

// DocumentContent is the decoded form handed to the extraction strategies:
// page text for text/scanned documents, cell rows for tabular ones.
// QRAmount is set when a Swiss QR-bill payment code was decoded on a
// scanned document.
type DocumentContent struct {
	Text     string
	Rows     [][]any
	QRAmount *decimal.Decimal
}

// ExtractionOutcome is the per-document result: populated fields on success,
// a captured message on failure. Never both.
type ExtractionOutcome struct {
	Source string
	Kind   DocumentKind
	Fields map[string]decimal.Decimal
	Err    string
}

func (o ExtractionOutcome) Failed() bool {
	return o.Err != ""
}

type SourceRecord struct {
	Name  string       `json:"name"`
	Kind  DocumentKind `json:"kind"`
	Found bool         `json:"found"`
	Error string       `json:"error,omitempty"`
}

// Identity is supplied by the caller from session data, never read from
// documents.
type Identity struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// FiscalProfile aggregates one extraction run: six totals plus a per-document
// provenance ledger in input order.
type FiscalProfile struct {
	FirstName            string          `json:"first_name"`
	LastName             string          `json:"last_name"`
	Salary               decimal.Decimal `json:"salary"`
	OtherIncome          decimal.Decimal `json:"other_income"`
	ProfessionalExpenses decimal.Decimal `json:"professional_expenses"`
	InsurancePremiums    decimal.Decimal `json:"insurance_premiums"`
	SecuritiesValue      decimal.Decimal `json:"securities_value"`
	CharitableDonations  decimal.Decimal `json:"charitable_donations"`
	Sources              []SourceRecord  `json:"sources"`
}

// PartialFailure reports whether at least one source document failed.
func (p *FiscalProfile) PartialFailure() bool {
	for _, s := range p.Sources {
		if s.Error != "" {
			return true
		}
	}
	return false
}

type TaxResult struct {
	TaxableIncome decimal.Decimal `json:"taxable_income"`
	TaxOnIncome   decimal.Decimal `json:"tax_on_income"`
	TaxableWealth decimal.Decimal `json:"taxable_wealth"`
	TaxOnWealth   decimal.Decimal `json:"tax_on_wealth"`
	TotalTax      int64           `json:"total_tax"`
}

type DeclarationStatus string

const (
	StatusDraft     DeclarationStatus = "draft"
	StatusSubmitted DeclarationStatus = "submitted"
)

// Declaration is the persisted workflow row owning one profile + tax result.
type Declaration struct {
	ID                   string            `json:"id"`
	UserID               string            `json:"user_id"`
	Title                string            `json:"title"`
	Status               DeclarationStatus `json:"status"`
	FirstName            string            `json:"first_name"`
	LastName             string            `json:"last_name"`
	Salary               decimal.Decimal   `json:"salary"`
	OtherIncome          decimal.Decimal   `json:"other_income"`
	ProfessionalExpenses decimal.Decimal   `json:"professional_expenses"`
	InsurancePremiums    decimal.Decimal   `json:"insurance_premiums"`
	SecuritiesValue      decimal.Decimal   `json:"securities_value"`
	CharitableDonations  decimal.Decimal   `json:"charitable_donations"`
	Sources              []SourceRecord    `json:"sources"`
	TaxableIncome        decimal.Decimal   `json:"taxable_income"`
	EstimatedTax         int64             `json:"estimated_tax"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}
