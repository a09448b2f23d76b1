package controllers

import (
	"net/http"

	"github.com/terra-cloud/terra-backend/api/responses"
	"github.com/terra-cloud/terra-backend/api/validators"
	"github.com/terra-cloud/terra-backend/internal/audit"
	"github.com/terra-cloud/terra-backend/internal/auth"
	pkgerrors "github.com/terra-cloud/terra-backend/pkg/errors"
	"github.com/terra-cloud/terra-backend/pkg/logger"
	"github.com/terra-cloud/terra-backend/pkg/metrics"
)

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc auth.Service, trail *audit.Publisher, stats *metrics.AuthMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			stats.ObserveLogin("failure")
			trail.Record(r.Context(), audit.Entry{
				Action: audit.ActionLoginFailed,
				Detail: map[string]any{"email": body.Email},
			})
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats.ObserveLogin("success")
		stats.ObserveSessionEvent("signed_in")
		stats.SessionOpened()
		trail.Record(r.Context(), audit.Entry{
			Action:  audit.ActionLogin,
			ActorID: &result.User.ID,
		})
		w.Header().Set("X-Terra-Token", result.AccessToken)
		responses.WriteSuccess(w, result)
	}
}

// AuthRegister creates the identity and its profile, then reports the
// new account. No token is issued; the client logs in afterwards.
func AuthRegister(svc auth.Service, trail *audit.Publisher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trail.Record(r.Context(), audit.Entry{
			Action:  audit.ActionSignup,
			ActorID: &result.User.ID,
		})
		responses.WriteSuccess(w, result)
	}
}
