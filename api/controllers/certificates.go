package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lifecert/lifecert-backend/api/responses"
	"github.com/lifecert/lifecert-backend/api/validators"
	"github.com/lifecert/lifecert-backend/internal/certificates"
	"github.com/lifecert/lifecert-backend/internal/ledger"
	"github.com/lifecert/lifecert-backend/pkg/db/models"
	"github.com/lifecert/lifecert-backend/pkg/enums"
	pkgerrors "github.com/lifecert/lifecert-backend/pkg/errors"
	"github.com/lifecert/lifecert-backend/pkg/logger"
)

type mintOrAppendRequest struct {
	CourseID       string `json:"course_id" validate:"required,uuid"`
	DisplayName    string `json:"display_name"`
	ContentRef     string `json:"content_ref" validate:"required"`
	PaymentRef     string `json:"payment_ref" validate:"required"`
	AttachedAmount string `json:"attached_amount" validate:"required"`
}

// CertificateMintOrAppend records a completed course against the caller's
// record, creating the record when this is their first course.
func CertificateMintOrAppend(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		principalID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload mintOrAppendRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		courseID, err := uuid.Parse(strings.TrimSpace(payload.CourseID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid course_id"))
			return
		}

		attached, err := validators.ParseAmountCents("attached_amount", payload.AttachedAmount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.MintOrAppend(r.Context(), ledger.MintOrAppendInput{
			PrincipalID:   principalID,
			CourseID:      courseID,
			DisplayName:   strings.TrimSpace(payload.DisplayName),
			ContentRef:    strings.TrimSpace(payload.ContentRef),
			PaymentRef:    payload.PaymentRef,
			AttachedCents: attached,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusOK
		if result.Purpose == enums.PaymentPurposeMint {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, mutationResponseFromResult(result))
	}
}

type appendBatchRequest struct {
	CourseIDs      []string `json:"course_ids" validate:"required,min=1,dive,uuid"`
	ContentRef     string   `json:"content_ref" validate:"required"`
	PaymentRef     string   `json:"payment_ref" validate:"required"`
	AttachedAmount string   `json:"attached_amount" validate:"required"`
}

// CertificateAppendBatch appends several courses in one atomic mutation.
func CertificateAppendBatch(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		principalID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload appendBatchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		courseIDs := make([]uuid.UUID, 0, len(payload.CourseIDs))
		for _, raw := range payload.CourseIDs {
			id, err := uuid.Parse(strings.TrimSpace(raw))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid course id in batch"))
				return
			}
			courseIDs = append(courseIDs, id)
		}

		attached, err := validators.ParseAmountCents("attached_amount", payload.AttachedAmount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AppendBatch(r.Context(), ledger.AppendBatchInput{
			PrincipalID:   principalID,
			CourseIDs:     courseIDs,
			ContentRef:    strings.TrimSpace(payload.ContentRef),
			PaymentRef:    payload.PaymentRef,
			AttachedCents: attached,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, mutationResponseFromResult(result))
	}
}

type refreshRequest struct {
	NewContentRef  string `json:"new_content_ref" validate:"required"`
	PaymentRef     string `json:"payment_ref" validate:"required"`
	AttachedAmount string `json:"attached_amount" validate:"required"`
}

// CertificateRefresh swaps the record's content reference without touching its
// items.
func CertificateRefresh(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		principalID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		certificateID, err := uuid.Parse(chi.URLParam(r, "certificateId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid certificate id"))
			return
		}

		var payload refreshRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		attached, err := validators.ParseAmountCents("attached_amount", payload.AttachedAmount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.RefreshContent(r.Context(), ledger.RefreshInput{
			PrincipalID:   principalID,
			CertificateID: certificateID,
			NewContentRef: strings.TrimSpace(payload.NewContentRef),
			PaymentRef:    payload.PaymentRef,
			AttachedCents: attached,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, mutationResponseFromResult(result))
	}
}

// CertificateMine returns the caller's own record with its items.
func CertificateMine(svc certificates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "certificate service unavailable"))
			return
		}

		principalID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cert, err := svc.GetByOwner(r.Context(), principalID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, certificateResponseFromModel(cert))
	}
}

// CertificateDetail returns a record by id.
func CertificateDetail(svc certificates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "certificate service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "certificateId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid certificate id"))
			return
		}

		cert, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, certificateResponseFromModel(cert))
	}
}

// PublicCertificateVerify is the unauthenticated lookup by serial number. It
// returns the record summary plus the shareable verification URL.
func PublicCertificateVerify(svc certificates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "certificate service unavailable"))
			return
		}

		serial, err := validators.ParseQueryInt64(r, "serial", 0, 1, 1<<62)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if serial == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "serial query parameter is required"))
			return
		}

		cert, err := svc.GetBySerial(r.Context(), serial)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		verificationURL, err := svc.VerificationURL(r.Context(), cert)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := verificationResponse{
			Certificate:     certificateResponseFromModel(cert),
			VerificationURL: verificationURL,
		}
		responses.WriteSuccess(w, resp)
	}
}

type certificateItemResponse struct {
	CourseID    uuid.UUID  `json:"course_id"`
	Position    int        `json:"position"`
	PaymentRef  string     `json:"payment_ref"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type certificateResponse struct {
	ID               uuid.UUID                 `json:"id"`
	SerialNumber     int64                     `json:"serial_number"`
	OwnerUserID      uuid.UUID                 `json:"owner_user_id"`
	DisplayName      string                    `json:"display_name"`
	Valid            bool                      `json:"valid"`
	RevocationReason *string                   `json:"revocation_reason,omitempty"`
	ContentRef       string                    `json:"content_ref"`
	ItemCount        int                       `json:"item_count"`
	Items            []certificateItemResponse `json:"items"`
	CreatedAt        time.Time                 `json:"created_at"`
	UpdatedAt        time.Time                 `json:"updated_at"`
}

type verificationResponse struct {
	Certificate     certificateResponse `json:"certificate"`
	VerificationURL string              `json:"verification_url,omitempty"`
}

type mutationResponse struct {
	Certificate    certificateResponse `json:"certificate"`
	Purpose        string              `json:"purpose"`
	RequiredAmount string              `json:"required_amount"`
	PlatformAmount string              `json:"platform_amount"`
	PayeeAmount    string              `json:"payee_amount"`
	RefundAmount   string              `json:"refund_amount"`
}

func certificateResponseFromModel(m *models.Certificate) certificateResponse {
	items := make([]certificateItemResponse, 0, len(m.Items))
	for _, item := range m.Items {
		items = append(items, certificateItemResponse{
			CourseID:    item.CourseID,
			Position:    item.Position,
			PaymentRef:  item.PaymentRef,
			CompletedAt: item.CompletedAt,
			CreatedAt:   item.CreatedAt,
		})
	}
	return certificateResponse{
		ID:               m.ID,
		SerialNumber:     m.SerialNumber,
		OwnerUserID:      m.OwnerUserID,
		DisplayName:      m.DisplayName,
		Valid:            m.Valid,
		RevocationReason: m.RevocationReason,
		ContentRef:       m.ContentRef,
		ItemCount:        m.ItemCount,
		Items:            items,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func mutationResponseFromResult(result *ledger.MutationResult) mutationResponse {
	return mutationResponse{
		Certificate:    certificateResponseFromModel(result.Certificate),
		Purpose:        string(result.Purpose),
		RequiredAmount: validators.FormatCents(result.RequiredCents),
		PlatformAmount: validators.FormatCents(result.Breakdown.PlatformCents),
		PayeeAmount:    validators.FormatCents(result.Breakdown.PayeeShareCents),
		RefundAmount:   validators.FormatCents(result.Breakdown.RefundCents),
	}
}
