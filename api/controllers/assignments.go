package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/terra-cloud/terra-backend/api/responses"
	"github.com/terra-cloud/terra-backend/api/validators"
	assignmentsvc "github.com/terra-cloud/terra-backend/internal/assignments"
	"github.com/terra-cloud/terra-backend/internal/audit"
	"github.com/terra-cloud/terra-backend/pkg/enums"
	pkgerrors "github.com/terra-cloud/terra-backend/pkg/errors"
	"github.com/terra-cloud/terra-backend/pkg/logger"
)

type assignmentRequest struct {
	UserID     string `json:"user_id" validate:"required"`
	Kind       string `json:"kind" validate:"required"`
	ResourceID string `json:"resource_id" validate:"required"`
}

func (req assignmentRequest) toInput() (assignmentsvc.GrantInput, error) {
	userID, err := uuid.Parse(strings.TrimSpace(req.UserID))
	if err != nil {
		return assignmentsvc.GrantInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id").WithDetails(map[string]any{"field": "user_id"})
	}
	resourceID, err := uuid.Parse(strings.TrimSpace(req.ResourceID))
	if err != nil {
		return assignmentsvc.GrantInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id").WithDetails(map[string]any{"field": "resource_id"})
	}
	kind, err := enums.ParseAssignmentKind(strings.TrimSpace(req.Kind))
	if err != nil {
		return assignmentsvc.GrantInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid kind")
	}
	return assignmentsvc.GrantInput{
		UserID:     userID,
		Kind:       kind,
		ResourceID: resourceID,
	}, nil
}

// AssignmentGrant gives a user visibility over one resource.
func AssignmentGrant(svc assignmentsvc.Service, trail *audit.Publisher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assignment service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload assignmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		grant, err := svc.Grant(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trail.Record(r.Context(), audit.Entry{
			Action:    audit.ActionAccessGranted,
			ActorID:   &actor.ID,
			SubjectID: &input.UserID,
			Detail:    map[string]any{"kind": string(input.Kind), "resource_id": input.ResourceID.String()},
		})
		responses.WriteSuccess(w, grant)
	}
}

// AssignmentRevoke removes a user's visibility over one resource.
func AssignmentRevoke(svc assignmentsvc.Service, trail *audit.Publisher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assignment service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload assignmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Revoke(r.Context(), actor, input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trail.Record(r.Context(), audit.Entry{
			Action:    audit.ActionAccessRevoked,
			ActorID:   &actor.ID,
			SubjectID: &input.UserID,
			Detail:    map[string]any{"kind": string(input.Kind), "resource_id": input.ResourceID.String()},
		})
		responses.WriteSuccess(w, map[string]string{"status": "revoked"})
	}
}

// AssignmentListForUser returns every grant held by one user.
func AssignmentListForUser(svc assignmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assignment service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, err := parsePathID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		grants, err := svc.ListForUser(r.Context(), actor, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, grants)
	}
}
