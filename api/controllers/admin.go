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
	"github.com/lifecert/lifecert-backend/internal/platform"
	"github.com/lifecert/lifecert-backend/pkg/db/models"
	pkgerrors "github.com/lifecert/lifecert-backend/pkg/errors"
	"github.com/lifecert/lifecert-backend/pkg/logger"
)

// AdminGetSettings returns the current platform configuration.
func AdminGetSettings(svc platform.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "platform service unavailable"))
			return
		}

		settings, err := svc.Current(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, settingsResponseFromModel(settings))
	}
}

type priceUpdateRequest struct {
	Price string `json:"price" validate:"required"`
}

// AdminSetMintPrice updates the default mint price.
func AdminSetMintPrice(svc platform.Service, logg *logger.Logger) http.HandlerFunc {
	return setPriceHandler(svc, logg, func(r *http.Request, svc platform.Service, actor uuid.UUID, cents int64) (*models.PlatformSettings, error) {
		return svc.SetMintPrice(r.Context(), actor, cents)
	})
}

// AdminSetAppendPrice updates the default append price.
func AdminSetAppendPrice(svc platform.Service, logg *logger.Logger) http.HandlerFunc {
	return setPriceHandler(svc, logg, func(r *http.Request, svc platform.Service, actor uuid.UUID, cents int64) (*models.PlatformSettings, error) {
		return svc.SetAppendPrice(r.Context(), actor, cents)
	})
}

func setPriceHandler(svc platform.Service, logg *logger.Logger, apply func(*http.Request, platform.Service, uuid.UUID, int64) (*models.PlatformSettings, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "platform service unavailable"))
			return
		}

		actorID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload priceUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cents, err := validators.ParseAmountCents("price", payload.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := apply(r, svc, actorID, cents)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, settingsResponseFromModel(updated))
	}
}

type treasuryUpdateRequest struct {
	TreasuryUserID string `json:"treasury_user_id" validate:"required,uuid"`
}

// AdminSetTreasury points the platform fee destination at a new account.
func AdminSetTreasury(svc platform.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "platform service unavailable"))
			return
		}

		actorID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload treasuryUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		treasuryID, err := uuid.Parse(strings.TrimSpace(payload.TreasuryUserID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid treasury_user_id"))
			return
		}

		updated, err := svc.SetTreasury(r.Context(), actorID, treasuryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, settingsResponseFromModel(updated))
	}
}

type textUpdateRequest struct {
	Value string `json:"value" validate:"required"`
}

// AdminSetPlatformName renames the platform.
func AdminSetPlatformName(svc platform.Service, logg *logger.Logger) http.HandlerFunc {
	return setTextHandler(svc, logg, func(r *http.Request, svc platform.Service, actor uuid.UUID, value string) (*models.PlatformSettings, error) {
		return svc.SetPlatformName(r.Context(), actor, value)
	})
}

// AdminSetVerificationRoute updates the base route rendered into shareable
// verification URLs.
func AdminSetVerificationRoute(svc platform.Service, logg *logger.Logger) http.HandlerFunc {
	return setTextHandler(svc, logg, func(r *http.Request, svc platform.Service, actor uuid.UUID, value string) (*models.PlatformSettings, error) {
		return svc.SetVerificationRoute(r.Context(), actor, value)
	})
}

// AdminSetMetadataBaseURI updates the metadata URI prefix.
func AdminSetMetadataBaseURI(svc platform.Service, logg *logger.Logger) http.HandlerFunc {
	return setTextHandler(svc, logg, func(r *http.Request, svc platform.Service, actor uuid.UUID, value string) (*models.PlatformSettings, error) {
		return svc.SetMetadataBaseURI(r.Context(), actor, value)
	})
}

func setTextHandler(svc platform.Service, logg *logger.Logger, apply func(*http.Request, platform.Service, uuid.UUID, string) (*models.PlatformSettings, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "platform service unavailable"))
			return
		}

		actorID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload textUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := apply(r, svc, actorID, strings.TrimSpace(payload.Value))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, settingsResponseFromModel(updated))
	}
}

type pauseRequest struct {
	Paused *bool `json:"paused" validate:"required"`
}

// AdminSetPaused halts or resumes all paid ledger mutations.
func AdminSetPaused(svc platform.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "platform service unavailable"))
			return
		}

		actorID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload pauseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.SetPaused(r.Context(), actorID, *payload.Paused)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, settingsResponseFromModel(updated))
	}
}

type revokeRequest struct {
	Reason string `json:"reason" validate:"required,min=1"`
}

// AdminRevokeCertificate invalidates a record. The record stays readable; only
// the valid flag flips.
func AdminRevokeCertificate(svc certificates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "certificate service unavailable"))
			return
		}

		actorID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		certificateID, err := uuid.Parse(chi.URLParam(r, "certificateId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid certificate id"))
			return
		}

		var payload revokeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		revoked, err := svc.Revoke(r.Context(), certificates.RevokeInput{
			CertificateID: certificateID,
			Reason:        strings.TrimSpace(payload.Reason),
			ActorUserID:   actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, certificateResponseFromModel(revoked))
	}
}

type settingsResponse struct {
	MintPrice         string     `json:"mint_price"`
	AppendPrice       string     `json:"append_price"`
	TreasuryUserID    uuid.UUID  `json:"treasury_user_id"`
	PlatformName      string     `json:"platform_name"`
	VerificationRoute string     `json:"verification_route"`
	MetadataBaseURI   string     `json:"metadata_base_uri"`
	Paused            bool       `json:"paused"`
	UpdatedBy         *uuid.UUID `json:"updated_by,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func settingsResponseFromModel(m *models.PlatformSettings) settingsResponse {
	return settingsResponse{
		MintPrice:         validators.FormatCents(m.MintPriceCents),
		AppendPrice:       validators.FormatCents(m.AppendPriceCents),
		TreasuryUserID:    m.TreasuryUserID,
		PlatformName:      m.PlatformName,
		VerificationRoute: m.VerificationRoute,
		MetadataBaseURI:   m.MetadataBaseURI,
		Paused:            m.Paused,
		UpdatedBy:         m.UpdatedBy,
		UpdatedAt:         m.UpdatedAt,
	}
}
