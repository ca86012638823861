package quotations

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ceylonharvest/spicetrade-backend/pkg/db/models"
	"github.com/ceylonharvest/spicetrade-backend/pkg/enums"
	pkgerrors "github.com/ceylonharvest/spicetrade-backend/pkg/errors"
	"github.com/ceylonharvest/spicetrade-backend/pkg/pdf"
)

var oneHundred = decimal.NewFromInt(100)

// Breakdown reconstructs the printable quote from the staff-set figures.
// The subtotal is derived backwards out of the stored total so the document
// reflects the quote as issued, even if catalog prices moved since.
func (s *Service) Breakdown(ctx context.Context, actor enums.Actor, customerID, id uuid.UUID) (*pdf.Document, error) {
	quotation, err := s.Get(ctx, actor, customerID, id)
	if err != nil {
		return nil, err
	}
	return s.buildDocument(ctx, quotation)
}

func (s *Service) buildDocument(ctx context.Context, quotation *models.Quotation) (*pdf.Document, error) {
	if quotation.TotalCost == nil || quotation.ExportDuties == nil || quotation.ExchangeRate == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "quotation has not been priced yet")
	}
	if quotation.ExchangeRate.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "quotation carries an invalid exchange rate")
	}

	spices, err := s.catalog.FindByNames(ctx, quotation.InterestedSpices)
	if err != nil {
		return nil, err
	}

	quantity := decimal.NewFromInt(int64(quotation.RequiredQuantityKg))
	lines := make([]pdf.Line, 0, len(spices))
	for _, spice := range spices {
		unitPrice := spice.PricePerKg.Div(*quotation.ExchangeRate)
		lines = append(lines, pdf.Line{
			Name:       spice.Name,
			QuantityKg: quotation.RequiredQuantityKg,
			UnitPrice:  unitPrice,
			Amount:     unitPrice.Mul(quantity),
		})
	}

	subtotal := quotation.TotalCost.Div(decimal.NewFromInt(1).Add(quotation.ExportDuties.Div(oneHundred)))

	currency := "USD"
	if quotation.PreferredCurrency != nil && *quotation.PreferredCurrency != "" {
		currency = *quotation.PreferredCurrency
	}

	return &pdf.Document{
		Reference:     quotation.ID.String(),
		CompanyName:   quotation.CompanyName,
		Country:       quotation.Country,
		Currency:      currency,
		Lines:         lines,
		Subtotal:      subtotal,
		DutiesPercent: *quotation.ExportDuties,
		Total:         *quotation.TotalCost,
	}, nil
}
