package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/lifecert/lifecert-backend/api/middleware"
	"github.com/lifecert/lifecert-backend/internal/certificates"
	"github.com/lifecert/lifecert-backend/pkg/db/models"
	pkgerrors "github.com/lifecert/lifecert-backend/pkg/errors"
)

func TestAdminRevokeCertificate(t *testing.T) {
	actorID := uuid.New()
	certificateID := uuid.New()
	var captured certificates.RevokeInput

	svc := &testCertificatesService{
		revokeFn: func(ctx context.Context, input certificates.RevokeInput) (*models.Certificate, error) {
			captured = input
			cert := sampleCertificate(uuid.New())
			cert.ID = input.CertificateID
			cert.Valid = false
			reason := input.Reason
			cert.RevocationReason = &reason
			return cert, nil
		},
	}

	body := `{"reason":"fraudulent completion import"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/certificates/"+certificateID.String()+"/revoke", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), actorID.String()))
	req = addRouteParam(req, "certificateId", certificateID.String())
	resp := httptest.NewRecorder()

	AdminRevokeCertificate(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if captured.CertificateID != certificateID {
		t.Fatalf("unexpected certificate %s", captured.CertificateID)
	}
	if captured.ActorUserID != actorID {
		t.Fatalf("unexpected actor %s", captured.ActorUserID)
	}

	var envelope struct {
		Data certificateResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Valid {
		t.Fatal("expected revoked record in response")
	}
}

func TestAdminRevokeCertificateRequiresReason(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/certificates/"+uuid.NewString()+"/revoke", strings.NewReader(`{}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	req = addRouteParam(req, "certificateId", uuid.NewString())
	resp := httptest.NewRecorder()

	AdminRevokeCertificate(&testCertificatesService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminRevokeCertificateMapsStateConflict(t *testing.T) {
	svc := &testCertificatesService{
		revokeFn: func(ctx context.Context, input certificates.RevokeInput) (*models.Certificate, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "certificate has been revoked")
		},
	}

	body := `{"reason":"duplicate"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/certificates/"+uuid.NewString()+"/revoke", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	req = addRouteParam(req, "certificateId", uuid.NewString())
	resp := httptest.NewRecorder()

	AdminRevokeCertificate(svc, testLogger())(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}
