package controllers

import (
	"net/http"
	"strings"

	"github.com/terra-cloud/terra-backend/api/responses"
	"github.com/terra-cloud/terra-backend/api/validators"
	pkgerrors "github.com/terra-cloud/terra-backend/pkg/errors"
	"github.com/terra-cloud/terra-backend/pkg/geocode"
	"github.com/terra-cloud/terra-backend/pkg/logger"
)

type geocodeAutocompleteRequest struct {
	Input       string   `json:"input" validate:"required,min=2,max=200"`
	RegionCodes []string `json:"region_codes,omitempty"`
}

// GeocodeAutocomplete proxies address suggestions for the property form.
func GeocodeAutocomplete(client *geocode.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "geocode client not configured"))
			return
		}

		var payload geocodeAutocompleteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		suggestions, err := client.Autocomplete(r.Context(), geocode.AutocompleteRequest{
			Input:               strings.TrimSpace(payload.Input),
			IncludedRegionCodes: payload.RegionCodes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, suggestions)
	}
}

// GeocodeResolve proxies place-details resolution for a chosen suggestion.
func GeocodeResolve(client *geocode.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "geocode client not configured"))
			return
		}

		placeID := strings.TrimSpace(r.URL.Query().Get("place_id"))
		if placeID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "place_id is required"))
			return
		}

		details, err := client.ResolvePlace(r.Context(), placeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, details)
	}
}
