package controllers

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ceylonharvest/spicetrade-backend/api/responses"
	"github.com/ceylonharvest/spicetrade-backend/api/validators"
	quotationssvc "github.com/ceylonharvest/spicetrade-backend/internal/quotations"
	"github.com/ceylonharvest/spicetrade-backend/pkg/db/models"
	"github.com/ceylonharvest/spicetrade-backend/pkg/enums"
	pkgerrors "github.com/ceylonharvest/spicetrade-backend/pkg/errors"
	"github.com/ceylonharvest/spicetrade-backend/pkg/logger"
	"github.com/ceylonharvest/spicetrade-backend/pkg/pdf"
)

// QuotationsService is the slice of the quotations service the HTTP layer
// consumes.
type QuotationsService interface {
	Submit(ctx context.Context, input quotationssvc.SubmitInput) (*models.Quotation, error)
	Get(ctx context.Context, actor enums.Actor, customerID, id uuid.UUID) (*models.Quotation, error)
	ListMine(ctx context.Context, customerID uuid.UUID) ([]models.Quotation, error)
	ListAll(ctx context.Context) ([]models.Quotation, error)
	UpdateStaffFields(ctx context.Context, id uuid.UUID, input quotationssvc.StaffFieldsInput) (*models.Quotation, error)
	Approve(ctx context.Context, customerID, id uuid.UUID) (*models.Quotation, error)
	Reject(ctx context.Context, customerID, id uuid.UUID) error
	Breakdown(ctx context.Context, actor enums.Actor, customerID, id uuid.UUID) (*pdf.Document, error)
}

// QuotationSubmit creates the export quotation and its paired global order.
func QuotationSubmit(svc QuotationsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotations service unavailable"))
			return
		}

		customerID, err := callerCustomerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload submitQuotationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quotation, err := svc.Submit(r.Context(), quotationssvc.SubmitInput{
			CustomerID:         customerID,
			CompanyName:        payload.CompanyName,
			ContactName:        payload.ContactName,
			ContactEmail:       payload.ContactEmail,
			ContactPhone:       payload.ContactPhone,
			Country:            payload.Country,
			DeliveryWindow:     payload.DeliveryWindow,
			InterestedSpices:   payload.InterestedSpices,
			RequiredQuantityKg: payload.RequiredQuantityKg,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newQuotationResponse(quotation))
	}
}

// QuotationGet loads one quotation; customers only see their own.
func QuotationGet(svc QuotationsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotations service unavailable"))
			return
		}

		customerID, err := callerCustomerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "quotationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quotation, err := svc.Get(r.Context(), callerActor(r), customerID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newQuotationResponse(quotation))
	}
}

// QuotationList returns the caller's quotations, or every quotation for staff.
func QuotationList(svc QuotationsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotations service unavailable"))
			return
		}

		customerID, err := callerCustomerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var quotations []models.Quotation
		if callerActor(r) == enums.ActorStaff {
			quotations, err = svc.ListAll(r.Context())
		} else {
			quotations, err = svc.ListMine(r.Context(), customerID)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]quotationResponse, 0, len(quotations))
		for i := range quotations {
			out = append(out, newQuotationResponse(&quotations[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// QuotationUpdateStaffFields writes the staff pricing block and moves the
// quotation and its order to quoted.
func QuotationUpdateStaffFields(svc QuotationsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotations service unavailable"))
			return
		}

		id, err := pathUUID(r, "quotationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload staffFieldsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quotation, err := svc.UpdateStaffFields(r.Context(), id, quotationssvc.StaffFieldsInput{
			ExportDuties:       payload.ExportDuties,
			ShippingPartner:    payload.ShippingPartner,
			PackagingMaterials: payload.PackagingMaterials,
			StaffNotes:         payload.StaffNotes,
			LocalBasePrice:     payload.LocalBasePrice,
			TotalCost:          payload.TotalCost,
			PreferredCurrency:  payload.PreferredCurrency,
			ExchangeRate:       payload.ExchangeRate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newQuotationResponse(quotation))
	}
}

// QuotationApprove records the customer's acceptance of the staff pricing.
func QuotationApprove(svc QuotationsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotations service unavailable"))
			return
		}

		customerID, err := callerCustomerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "quotationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quotation, err := svc.Approve(r.Context(), customerID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newQuotationResponse(quotation))
	}
}

// QuotationReject deletes the quotation and its paired order.
func QuotationReject(svc QuotationsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotations service unavailable"))
			return
		}

		customerID, err := callerCustomerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "quotationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Reject(r.Context(), customerID, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "rejected"})
	}
}

// QuotationPDF renders the priced quotation as a downloadable document.
func QuotationPDF(svc QuotationsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotations service unavailable"))
			return
		}

		customerID, err := callerCustomerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "quotationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		doc, err := svc.Breakdown(r.Context(), callerActor(r), customerID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var buf bytes.Buffer
		if err := pdf.Render(&buf, *doc); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render quotation pdf"))
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="quotation-`+id.String()+`.pdf"`)
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}

type submitQuotationRequest struct {
	CompanyName        string   `json:"company_name" validate:"required"`
	ContactName        string   `json:"contact_name" validate:"required"`
	ContactEmail       string   `json:"contact_email" validate:"required,email"`
	ContactPhone       string   `json:"contact_phone"`
	Country            string   `json:"country" validate:"required"`
	DeliveryWindow     string   `json:"delivery_window"`
	InterestedSpices   []string `json:"interested_spices" validate:"required,min=1,dive,required"`
	RequiredQuantityKg int      `json:"required_quantity_kg" validate:"required,min=1"`
}

type staffFieldsRequest struct {
	ExportDuties       decimal.Decimal `json:"export_duties"`
	ShippingPartner    string          `json:"shipping_partner"`
	PackagingMaterials string          `json:"packaging_materials"`
	StaffNotes         string          `json:"staff_notes"`
	LocalBasePrice     decimal.Decimal `json:"local_base_price"`
	TotalCost          decimal.Decimal `json:"total_cost" validate:"required"`
	PreferredCurrency  string          `json:"preferred_currency"`
	ExchangeRate       decimal.Decimal `json:"exchange_rate" validate:"required"`
}

type quotationResponse struct {
	ID         uuid.UUID `json:"id"`
	OrderID    uuid.UUID `json:"order_id"`
	CustomerID uuid.UUID `json:"customer_id"`

	CompanyName    string `json:"company_name"`
	ContactName    string `json:"contact_name"`
	ContactEmail   string `json:"contact_email"`
	ContactPhone   string `json:"contact_phone,omitempty"`
	Country        string `json:"country"`
	DeliveryWindow string `json:"delivery_window,omitempty"`

	InterestedSpices   []string `json:"interested_spices"`
	RequiredQuantityKg int      `json:"required_quantity_kg"`

	ExportDuties       *decimal.Decimal `json:"export_duties,omitempty"`
	ShippingPartner    *string          `json:"shipping_partner,omitempty"`
	PackagingMaterials *string          `json:"packaging_materials,omitempty"`
	StaffNotes         *string          `json:"staff_notes,omitempty"`
	LocalBasePrice     *decimal.Decimal `json:"local_base_price,omitempty"`
	TotalCost          *decimal.Decimal `json:"total_cost,omitempty"`
	PreferredCurrency  *string          `json:"preferred_currency,omitempty"`
	ExchangeRate       *decimal.Decimal `json:"exchange_rate,omitempty"`

	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newQuotationResponse(quotation *models.Quotation) quotationResponse {
	return quotationResponse{
		ID:                 quotation.ID,
		OrderID:            quotation.OrderID,
		CustomerID:         quotation.CustomerID,
		CompanyName:        quotation.CompanyName,
		ContactName:        quotation.ContactName,
		ContactEmail:       quotation.ContactEmail,
		ContactPhone:       quotation.ContactPhone,
		Country:            quotation.Country,
		DeliveryWindow:     quotation.DeliveryWindow,
		InterestedSpices:   quotation.InterestedSpices,
		RequiredQuantityKg: quotation.RequiredQuantityKg,
		ExportDuties:       quotation.ExportDuties,
		ShippingPartner:    quotation.ShippingPartner,
		PackagingMaterials: quotation.PackagingMaterials,
		StaffNotes:         quotation.StaffNotes,
		LocalBasePrice:     quotation.LocalBasePrice,
		TotalCost:          quotation.TotalCost,
		PreferredCurrency:  quotation.PreferredCurrency,
		ExchangeRate:       quotation.ExchangeRate,
		Status:             string(quotation.Status),
		CreatedAt:          quotation.CreatedAt,
		UpdatedAt:          quotation.UpdatedAt,
	}
}
