package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lifecert/lifecert-backend/api/responses"
	"github.com/lifecert/lifecert-backend/api/validators"
	"github.com/lifecert/lifecert-backend/internal/courses"
	"github.com/lifecert/lifecert-backend/pkg/db/models"
	pkgerrors "github.com/lifecert/lifecert-backend/pkg/errors"
	"github.com/lifecert/lifecert-backend/pkg/logger"
)

const maxCourseTitleLength = 200

type courseCreateRequest struct {
	Title       string `json:"title" validate:"required,min=1"`
	OwnerUserID string `json:"owner_user_id" validate:"omitempty,uuid"`
}

// CourseCreate registers a course. The caller becomes the owner unless an
// explicit owner is supplied.
func CourseCreate(svc courses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "course service unavailable"))
			return
		}

		callerID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload courseCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ownerID := callerID
		if raw := strings.TrimSpace(payload.OwnerUserID); raw != "" {
			ownerID, err = uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid owner_user_id"))
				return
			}
		}

		created, err := svc.CreateCourse(r.Context(), courses.CreateCourseInput{
			OwnerUserID: ownerID,
			Title:       validators.SanitizeString(payload.Title, maxCourseTitleLength),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, courseResponseFromModel(created))
	}
}

// CourseDetail returns a course by id.
func CourseDetail(svc courses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "course service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "courseId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid course id"))
			return
		}

		course, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, courseResponseFromModel(course))
	}
}

type coursePriceRequest struct {
	Price *string `json:"price"`
}

// CourseSetPrice sets or clears the course's price override. Only the course
// owner may call this; a null price falls back to the platform default.
func CourseSetPrice(svc courses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "course service unavailable"))
			return
		}

		callerID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		courseID, err := uuid.Parse(chi.URLParam(r, "courseId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid course id"))
			return
		}

		var payload coursePriceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var priceCents *int64
		if payload.Price != nil {
			cents, err := validators.ParseAmountCents("price", *payload.Price)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			priceCents = &cents
		}

		updated, err := svc.SetPriceOverride(r.Context(), courses.SetPriceOverrideInput{
			CourseID:    courseID,
			ActorUserID: callerID,
			PriceCents:  priceCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, courseResponseFromModel(updated))
	}
}

type importCompletionRequest struct {
	UserID      string     `json:"user_id" validate:"required,uuid"`
	CourseID    string     `json:"course_id" validate:"required,uuid"`
	CompletedAt *time.Time `json:"completed_at"`
}

// AdminImportCompletion records that a user finished a course. Completions
// feed the eligibility check on every ledger mutation.
func AdminImportCompletion(svc courses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "course service unavailable"))
			return
		}

		var payload importCompletionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, err := uuid.Parse(strings.TrimSpace(payload.UserID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user_id"))
			return
		}
		courseID, err := uuid.Parse(strings.TrimSpace(payload.CourseID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid course_id"))
			return
		}

		completedAt := time.Now()
		if payload.CompletedAt != nil {
			completedAt = *payload.CompletedAt
		}

		if err := svc.ImportCompletion(r.Context(), courses.ImportCompletionInput{
			UserID:      userID,
			CourseID:    courseID,
			CompletedAt: completedAt,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "recorded"})
	}
}

type grantLicenseRequest struct {
	UserID    string     `json:"user_id" validate:"required,uuid"`
	CourseID  string     `json:"course_id" validate:"required,uuid"`
	GrantedAt *time.Time `json:"granted_at"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// AdminGrantLicense records a license grant. Eligibility only asks whether a
// grant ever existed, so expiry is informational.
func AdminGrantLicense(svc courses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "course service unavailable"))
			return
		}

		var payload grantLicenseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, err := uuid.Parse(strings.TrimSpace(payload.UserID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user_id"))
			return
		}
		courseID, err := uuid.Parse(strings.TrimSpace(payload.CourseID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid course_id"))
			return
		}

		grantedAt := time.Now()
		if payload.GrantedAt != nil {
			grantedAt = *payload.GrantedAt
		}

		if err := svc.GrantLicense(r.Context(), courses.GrantLicenseInput{
			UserID:    userID,
			CourseID:  courseID,
			GrantedAt: grantedAt,
			ExpiresAt: payload.ExpiresAt,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "granted"})
	}
}

type courseResponse struct {
	ID          uuid.UUID `json:"id"`
	OwnerUserID uuid.UUID `json:"owner_user_id"`
	Title       string    `json:"title"`
	Price       *string   `json:"price,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func courseResponseFromModel(m *models.Course) courseResponse {
	resp := courseResponse{
		ID:          m.ID,
		OwnerUserID: m.OwnerUserID,
		Title:       m.Title,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.PriceOverrideCents != nil {
		price := validators.FormatCents(*m.PriceOverrideCents)
		resp.Price = &price
	}
	return resp
}
