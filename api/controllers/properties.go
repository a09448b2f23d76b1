package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/terra-cloud/terra-backend/api/middleware"
	"github.com/terra-cloud/terra-backend/api/responses"
	"github.com/terra-cloud/terra-backend/api/validators"
	"github.com/terra-cloud/terra-backend/internal/access"
	propertysvc "github.com/terra-cloud/terra-backend/internal/properties"
	pkgerrors "github.com/terra-cloud/terra-backend/pkg/errors"
	"github.com/terra-cloud/terra-backend/pkg/logger"
	"github.com/terra-cloud/terra-backend/pkg/pagination"
)

func requireActor(r *http.Request) (*access.User, error) {
	actor := middleware.ActorFromContext(r.Context())
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return actor, nil
}

func parsePathID(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id").WithDetails(map[string]any{"field": key})
	}
	return id, nil
}

func parsePageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

type createPropertyRequest struct {
	Name         string          `json:"name" validate:"required,max=160"`
	AddressLine1 string          `json:"address_line1" validate:"required,max=160"`
	AddressLine2 *string         `json:"address_line2,omitempty"`
	City         string          `json:"city" validate:"required,max=120"`
	State        string          `json:"state" validate:"required,max=64"`
	PostalCode   string          `json:"postal_code" validate:"required,max=16"`
	Lat          float64         `json:"lat" validate:"gte=-90,lte=90"`
	Lng          float64         `json:"lng" validate:"gte=-180,lte=180"`
	Acreage      decimal.Decimal `json:"acreage"`
	Notes        *string         `json:"notes,omitempty"`
}

type updatePropertyRequest struct {
	Name         *string          `json:"name,omitempty" validate:"omitempty,max=160"`
	AddressLine1 *string          `json:"address_line1,omitempty" validate:"omitempty,max=160"`
	AddressLine2 *string          `json:"address_line2,omitempty"`
	City         *string          `json:"city,omitempty" validate:"omitempty,max=120"`
	State        *string          `json:"state,omitempty" validate:"omitempty,max=64"`
	PostalCode   *string          `json:"postal_code,omitempty" validate:"omitempty,max=16"`
	Lat          *float64         `json:"lat,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Lng          *float64         `json:"lng,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Acreage      *decimal.Decimal `json:"acreage,omitempty"`
	Notes        *string          `json:"notes,omitempty"`
}

// PropertyCreate registers a new maintained site.
func PropertyCreate(svc propertysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "property service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createPropertyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		property, err := svc.Create(r.Context(), actor, propertysvc.CreatePropertyInput{
			Name:         strings.TrimSpace(payload.Name),
			AddressLine1: strings.TrimSpace(payload.AddressLine1),
			AddressLine2: payload.AddressLine2,
			City:         strings.TrimSpace(payload.City),
			State:        strings.TrimSpace(payload.State),
			PostalCode:   strings.TrimSpace(payload.PostalCode),
			Lat:          payload.Lat,
			Lng:          payload.Lng,
			Acreage:      payload.Acreage,
			Notes:        payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, property)
	}
}

// PropertyList returns the page of sites the caller can see.
func PropertyList(svc propertysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "property service unavailable"))
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

// PropertyDetail returns a single site when the caller may see it.
func PropertyDetail(svc propertysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "property service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parsePathID(r, "propertyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		property, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, property)
	}
}

// PropertyUpdate applies a partial mutation to a site.
func PropertyUpdate(svc propertysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "property service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parsePathID(r, "propertyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updatePropertyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		property, err := svc.Update(r.Context(), actor, id, propertysvc.UpdatePropertyInput{
			Name:         payload.Name,
			AddressLine1: payload.AddressLine1,
			AddressLine2: payload.AddressLine2,
			City:         payload.City,
			State:        payload.State,
			PostalCode:   payload.PostalCode,
			Lat:          payload.Lat,
			Lng:          payload.Lng,
			Acreage:      payload.Acreage,
			Notes:        payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, property)
	}
}

// PropertyDelete removes a site.
func PropertyDelete(svc propertysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "property service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parsePathID(r, "propertyId")
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
