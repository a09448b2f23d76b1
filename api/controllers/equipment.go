package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/terra-cloud/terra-backend/api/responses"
	"github.com/terra-cloud/terra-backend/api/validators"
	equipmentsvc "github.com/terra-cloud/terra-backend/internal/equipment"
	"github.com/terra-cloud/terra-backend/pkg/enums"
	pkgerrors "github.com/terra-cloud/terra-backend/pkg/errors"
	"github.com/terra-cloud/terra-backend/pkg/logger"
)

type createEquipmentRequest struct {
	Name         string          `json:"name" validate:"required,max=160"`
	SerialNumber *string         `json:"serial_number,omitempty" validate:"omitempty,max=120"`
	Status       *string         `json:"status,omitempty"`
	PropertyID   *string         `json:"property_id,omitempty"`
	PurchaseCost decimal.Decimal `json:"purchase_cost"`
	PurchasedAt  *time.Time      `json:"purchased_at,omitempty"`
	Notes        *string         `json:"notes,omitempty"`
}

type updateEquipmentRequest struct {
	Name         *string          `json:"name,omitempty" validate:"omitempty,max=160"`
	SerialNumber *string          `json:"serial_number,omitempty" validate:"omitempty,max=120"`
	Status       *string          `json:"status,omitempty"`
	PropertyID   *string          `json:"property_id,omitempty"`
	PurchaseCost *decimal.Decimal `json:"purchase_cost,omitempty"`
	PurchasedAt  *time.Time       `json:"purchased_at,omitempty"`
	Notes        *string          `json:"notes,omitempty"`
}

func parseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id").WithDetails(map[string]any{"field": field})
	}
	return &id, nil
}

func parseOptionalEquipmentStatus(raw *string) (*enums.EquipmentStatus, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	status, err := enums.ParseEquipmentStatus(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
	}
	return &status, nil
}

// EquipmentCreate registers a serviceable unit.
func EquipmentCreate(svc equipmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "equipment service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createEquipmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := parseOptionalEquipmentStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		propertyID, err := parseOptionalUUID(payload.PropertyID, "property_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := equipmentsvc.CreateEquipmentInput{
			Name:         strings.TrimSpace(payload.Name),
			SerialNumber: payload.SerialNumber,
			PropertyID:   propertyID,
			PurchaseCost: payload.PurchaseCost,
			PurchasedAt:  payload.PurchasedAt,
			Notes:        payload.Notes,
		}
		if status != nil {
			input.Status = *status
		}

		unit, err := svc.Create(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, unit)
	}
}

// EquipmentList returns the page of units the caller can see.
func EquipmentList(svc equipmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "equipment service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// EquipmentDetail returns a single unit when the caller may see it.
func EquipmentDetail(svc equipmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "equipment service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parsePathID(r, "equipmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		unit, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, unit)
	}
}

// EquipmentUpdate applies a partial mutation to a unit.
func EquipmentUpdate(svc equipmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "equipment service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parsePathID(r, "equipmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateEquipmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := parseOptionalEquipmentStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		propertyID, err := parseOptionalUUID(payload.PropertyID, "property_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		unit, err := svc.Update(r.Context(), actor, id, equipmentsvc.UpdateEquipmentInput{
			Name:         payload.Name,
			SerialNumber: payload.SerialNumber,
			Status:       status,
			PropertyID:   propertyID,
			PurchaseCost: payload.PurchaseCost,
			PurchasedAt:  payload.PurchasedAt,
			Notes:        payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, unit)
	}
}

// EquipmentDelete removes a unit.
func EquipmentDelete(svc equipmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "equipment service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parsePathID(r, "equipmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
