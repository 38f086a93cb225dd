package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MangousteEnFeu/TaxProjectV2/dto"
	"github.com/MangousteEnFeu/TaxProjectV2/metrics"
	"github.com/MangousteEnFeu/TaxProjectV2/utils"
)

// fieldStrategy binds one output field to the ordered keyword phrases used
// to anchor its search.
type fieldStrategy struct {
	field    string
	keywords []string
}

// strategies is the fixed configuration table mapping each document kind to
// the two field groups it is trusted to populate.
var strategies = map[dto.DocumentKind][]fieldStrategy{
	dto.KindText: {
		{dto.FieldSalary, []string{"salaire net", "net salaire", "salaire", "total net", "revenu net"}},
		{dto.FieldProfessionalExpenses, []string{"frais de transport", "déduction", "frais professionnels", "repas", "transport"}},
	},
	dto.KindTabular: {
		{dto.FieldOtherIncome, []string{"dividende", "accessoire", "autre revenu", "bonus", "gain"}},
		{dto.FieldSecuritiesValue, []string{"titre", "fortune", "action", "compte", "solde", "valeur"}},
	},
	dto.KindScanned: {
		{dto.FieldInsurancePremiums, []string{"prime", "assurances", "maladie", "lamal", "helsana", "swica", "groupe mutuel"}},
		{dto.FieldCharitableDonations, []string{"don", "bienfaisance", "caritatif", "fondation", "attestation"}},
	},
}

// ExtractFields runs the locators configured for the document kind over its
// decoded content. Unknown kinds produce an empty map, not an error.
func ExtractFields(kind dto.DocumentKind, content dto.DocumentContent) map[string]decimal.Decimal {
	fields := make(map[string]decimal.Decimal, 2)

	for _, strat := range strategies[kind] {
		var amount decimal.Decimal
		if kind == dto.KindTabular {
			amount = utils.FindAmountInTable(content.Rows, strat.keywords)
		} else {
			amount = utils.FindAmountInText(content.Text, strat.keywords)
		}

		// QR-bill amounts back the insurance field when OCR found nothing.
		if strat.field == dto.FieldInsurancePremiums && amount.IsZero() && content.QRAmount != nil {
			amount = *content.QRAmount
		}

		fields[strat.field] = amount
	}

	return fields
}

// ExtractionService runs the per-document strategies over a batch of
// uploaded documents and folds the outcomes into a fiscal profile.
type ExtractionService struct {
	decoder DocumentDecoder
	metrics *metrics.ExtractionMetrics
}

func NewExtractionService(decoder DocumentDecoder, m *metrics.ExtractionMetrics) *ExtractionService {
	return &ExtractionService{
		decoder: decoder,
		metrics: m,
	}
}

// Run processes documents strictly one after another: OCR and page decoding
// are heavy, so peak resource usage stays bounded to one document's worth of
// work. One outcome per input, in input order; a bad document never aborts
// the batch. The context is only consulted between documents, so callers can
// abandon a batch without leaving a document half-processed.
func (s *ExtractionService) Run(ctx context.Context, docs []dto.RawDocument) ([]dto.ExtractionOutcome, error) {
	start := time.Now()
	outcomes := make([]dto.ExtractionOutcome, 0, len(docs))

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, s.processOne(ctx, doc))
	}

	if s.metrics != nil {
		s.metrics.ObserveBatch(len(docs), time.Since(start))
	}
	return outcomes, nil
}

func (s *ExtractionService) processOne(ctx context.Context, doc dto.RawDocument) (outcome dto.ExtractionOutcome) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("extraction panic on %s: %v", doc.Name, r)
			outcome = dto.ExtractionOutcome{
				Source: doc.Name,
				Kind:   doc.Kind,
				Err:    fmt.Sprintf("extraction panic: %v", r),
			}
		}
		if s.metrics != nil {
			s.metrics.ObserveDocument(string(doc.Kind), outcome.Failed(), time.Since(start))
		}
	}()

	content, err := s.decoder.Decode(ctx, doc)
	if err != nil {
		log.Printf("failed to process %s: %v", doc.Name, err)
		return dto.ExtractionOutcome{
			Source: doc.Name,
			Kind:   doc.Kind,
			Err:    err.Error(),
		}
	}

	return dto.ExtractionOutcome{
		Source: doc.Name,
		Kind:   doc.Kind,
		Fields: ExtractFields(doc.Kind, content),
	}
}

// Aggregate folds per-document outcomes into one fiscal profile. Successes
// add their field amounts into the matching totals; failures contribute
// nothing but still appear in the source ledger. Identity comes from the
// caller's session, never from documents.
func Aggregate(outcomes []dto.ExtractionOutcome, identity dto.Identity) dto.FiscalProfile {
	profile := dto.FiscalProfile{
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Sources:   make([]dto.SourceRecord, 0, len(outcomes)),
	}

	for _, outcome := range outcomes {
		if outcome.Failed() {
			profile.Sources = append(profile.Sources, dto.SourceRecord{
				Name:  outcome.Source,
				Kind:  outcome.Kind,
				Found: false,
				Error: outcome.Err,
			})
			continue
		}

		found := false
		for field, amount := range outcome.Fields {
			switch field {
			case dto.FieldSalary:
				profile.Salary = profile.Salary.Add(amount)
			case dto.FieldOtherIncome:
				profile.OtherIncome = profile.OtherIncome.Add(amount)
			case dto.FieldProfessionalExpenses:
				profile.ProfessionalExpenses = profile.ProfessionalExpenses.Add(amount)
			case dto.FieldInsurancePremiums:
				profile.InsurancePremiums = profile.InsurancePremiums.Add(amount)
			case dto.FieldSecuritiesValue:
				profile.SecuritiesValue = profile.SecuritiesValue.Add(amount)
			case dto.FieldCharitableDonations:
				profile.CharitableDonations = profile.CharitableDonations.Add(amount)
			}
			if amount.IsPositive() {
				found = true
			}
		}

		profile.Sources = append(profile.Sources, dto.SourceRecord{
			Name:  outcome.Source,
			Kind:  outcome.Kind,
			Found: found,
		})
	}

	return profile
}
