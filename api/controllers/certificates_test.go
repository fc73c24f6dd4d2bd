package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lifecert/lifecert-backend/api/middleware"
	"github.com/lifecert/lifecert-backend/internal/certificates"
	"github.com/lifecert/lifecert-backend/internal/ledger"
	"github.com/lifecert/lifecert-backend/internal/settlement"
	"github.com/lifecert/lifecert-backend/pkg/db/models"
	"github.com/lifecert/lifecert-backend/pkg/enums"
	pkgerrors "github.com/lifecert/lifecert-backend/pkg/errors"
	"github.com/lifecert/lifecert-backend/pkg/logger"
)

type testLedgerService struct {
	mintOrAppendFn func(ctx context.Context, input ledger.MintOrAppendInput) (*ledger.MutationResult, error)
	appendBatchFn  func(ctx context.Context, input ledger.AppendBatchInput) (*ledger.MutationResult, error)
	refreshFn      func(ctx context.Context, input ledger.RefreshInput) (*ledger.MutationResult, error)
}

func (s *testLedgerService) MintOrAppend(ctx context.Context, input ledger.MintOrAppendInput) (*ledger.MutationResult, error) {
	if s.mintOrAppendFn != nil {
		return s.mintOrAppendFn(ctx, input)
	}
	return nil, nil
}

func (s *testLedgerService) AppendBatch(ctx context.Context, input ledger.AppendBatchInput) (*ledger.MutationResult, error) {
	if s.appendBatchFn != nil {
		return s.appendBatchFn(ctx, input)
	}
	return nil, nil
}

func (s *testLedgerService) RefreshContent(ctx context.Context, input ledger.RefreshInput) (*ledger.MutationResult, error) {
	if s.refreshFn != nil {
		return s.refreshFn(ctx, input)
	}
	return nil, nil
}

type testCertificatesService struct {
	getFn             func(ctx context.Context, id uuid.UUID) (*models.Certificate, error)
	getByOwnerFn      func(ctx context.Context, ownerID uuid.UUID) (*models.Certificate, error)
	getBySerialFn     func(ctx context.Context, serial int64) (*models.Certificate, error)
	revokeFn          func(ctx context.Context, input certificates.RevokeInput) (*models.Certificate, error)
	verificationURLFn func(ctx context.Context, cert *models.Certificate) (string, error)
}

func (s *testCertificatesService) Get(ctx context.Context, id uuid.UUID) (*models.Certificate, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return nil, nil
}

func (s *testCertificatesService) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Certificate, error) {
	if s.getByOwnerFn != nil {
		return s.getByOwnerFn(ctx, ownerID)
	}
	return nil, nil
}

func (s *testCertificatesService) GetBySerial(ctx context.Context, serial int64) (*models.Certificate, error) {
	if s.getBySerialFn != nil {
		return s.getBySerialFn(ctx, serial)
	}
	return nil, nil
}

func (s *testCertificatesService) Revoke(ctx context.Context, input certificates.RevokeInput) (*models.Certificate, error) {
	if s.revokeFn != nil {
		return s.revokeFn(ctx, input)
	}
	return nil, nil
}

func (s *testCertificatesService) VerificationURL(ctx context.Context, cert *models.Certificate) (string, error) {
	if s.verificationURLFn != nil {
		return s.verificationURLFn(ctx, cert)
	}
	return "", nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func sampleCertificate(owner uuid.UUID) *models.Certificate {
	return &models.Certificate{
		ID:           uuid.New(),
		SerialNumber: 7,
		OwnerUserID:  owner,
		DisplayName:  "Learner",
		Valid:        true,
		ContentRef:   "ipfs://abc",
		ItemCount:    1,
		Items: []models.CertificateItem{
			{CourseID: uuid.New(), Position: 1, PaymentRef: strings.Repeat("a", 64)},
		},
	}
}

func TestCertificateMintOrAppendSuccess(t *testing.T) {
	principalID := uuid.New()
	courseID := uuid.New()
	var captured ledger.MintOrAppendInput

	svc := &testLedgerService{
		mintOrAppendFn: func(ctx context.Context, input ledger.MintOrAppendInput) (*ledger.MutationResult, error) {
			captured = input
			return &ledger.MutationResult{
				Certificate:   sampleCertificate(principalID),
				Purpose:       enums.PaymentPurposeMint,
				RequiredCents: 1000,
				Breakdown:     settlement.Breakdown{PlatformCents: 100, PayeeShareCents: 900},
			}, nil
		},
	}

	body := `{"course_id":"` + courseID.String() + `","display_name":"Learner","content_ref":"ipfs://abc","payment_ref":"` + strings.Repeat("a", 64) + `","attached_amount":"10.00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), principalID.String()))
	resp := httptest.NewRecorder()

	CertificateMintOrAppend(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if captured.PrincipalID != principalID {
		t.Fatalf("unexpected principal %s", captured.PrincipalID)
	}
	if captured.CourseID != courseID {
		t.Fatalf("unexpected course %s", captured.CourseID)
	}
	if captured.AttachedCents != 1000 {
		t.Fatalf("expected 1000 cents got %d", captured.AttachedCents)
	}

	var envelope struct {
		Data mutationResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Purpose != string(enums.PaymentPurposeMint) {
		t.Fatalf("unexpected purpose %s", envelope.Data.Purpose)
	}
	if envelope.Data.RequiredAmount != "10.00" {
		t.Fatalf("unexpected required amount %s", envelope.Data.RequiredAmount)
	}
	if envelope.Data.PayeeAmount != "9.00" {
		t.Fatalf("unexpected payee amount %s", envelope.Data.PayeeAmount)
	}
}

func TestCertificateMintOrAppendAppendsReturn200(t *testing.T) {
	principalID := uuid.New()
	svc := &testLedgerService{
		mintOrAppendFn: func(ctx context.Context, input ledger.MintOrAppendInput) (*ledger.MutationResult, error) {
			return &ledger.MutationResult{
				Certificate: sampleCertificate(principalID),
				Purpose:     enums.PaymentPurposeAppend,
			}, nil
		},
	}

	body := `{"course_id":"` + uuid.NewString() + `","content_ref":"ipfs://abc","payment_ref":"` + strings.Repeat("b", 64) + `","attached_amount":"1.00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), principalID.String()))
	resp := httptest.NewRecorder()

	CertificateMintOrAppend(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCertificateMintOrAppendMissingUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()

	CertificateMintOrAppend(&testLedgerService{}, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCertificateMintOrAppendRejectsBadAmount(t *testing.T) {
	principalID := uuid.New()
	body := `{"course_id":"` + uuid.NewString() + `","content_ref":"ipfs://abc","payment_ref":"` + strings.Repeat("c", 64) + `","attached_amount":"0.001"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), principalID.String()))
	resp := httptest.NewRecorder()

	CertificateMintOrAppend(&testLedgerService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCertificateMintOrAppendMapsPaymentRequired(t *testing.T) {
	principalID := uuid.New()
	svc := &testLedgerService{
		mintOrAppendFn: func(ctx context.Context, input ledger.MintOrAppendInput) (*ledger.MutationResult, error) {
			return nil, pkgerrors.New(pkgerrors.CodePaymentRequired, "attached amount below required price")
		},
	}

	body := `{"course_id":"` + uuid.NewString() + `","content_ref":"ipfs://abc","payment_ref":"` + strings.Repeat("d", 64) + `","attached_amount":"0.01"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), principalID.String()))
	resp := httptest.NewRecorder()

	CertificateMintOrAppend(svc, testLogger())(resp, req)

	if resp.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodePaymentRequired) {
		t.Fatalf("unexpected code %s", envelope.Error.Code)
	}
	if envelope.Error.Message != "attached amount below required price" {
		t.Fatalf("unexpected message %s", envelope.Error.Message)
	}
}

func TestCertificateAppendBatchPassesAllCourses(t *testing.T) {
	principalID := uuid.New()
	courseA := uuid.New()
	courseB := uuid.New()
	var captured ledger.AppendBatchInput

	svc := &testLedgerService{
		appendBatchFn: func(ctx context.Context, input ledger.AppendBatchInput) (*ledger.MutationResult, error) {
			captured = input
			return &ledger.MutationResult{
				Certificate: sampleCertificate(principalID),
				Purpose:     enums.PaymentPurposeBatchAppend,
			}, nil
		},
	}

	body := `{"course_ids":["` + courseA.String() + `","` + courseB.String() + `"],"content_ref":"ipfs://next","payment_ref":"` + strings.Repeat("e", 64) + `","attached_amount":"2.00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates/batch", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), principalID.String()))
	resp := httptest.NewRecorder()

	CertificateAppendBatch(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(captured.CourseIDs) != 2 {
		t.Fatalf("expected 2 courses got %d", len(captured.CourseIDs))
	}
	if captured.CourseIDs[0] != courseA || captured.CourseIDs[1] != courseB {
		t.Fatal("course order not preserved")
	}
}

func TestCertificateAppendBatchRejectsEmpty(t *testing.T) {
	principalID := uuid.New()
	body := `{"course_ids":[],"content_ref":"ipfs://next","payment_ref":"` + strings.Repeat("f", 64) + `","attached_amount":"2.00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates/batch", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), principalID.String()))
	resp := httptest.NewRecorder()

	CertificateAppendBatch(&testLedgerService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCertificateRefreshRoutesToService(t *testing.T) {
	principalID := uuid.New()
	certificateID := uuid.New()
	var captured ledger.RefreshInput

	svc := &testLedgerService{
		refreshFn: func(ctx context.Context, input ledger.RefreshInput) (*ledger.MutationResult, error) {
			captured = input
			return &ledger.MutationResult{
				Certificate: sampleCertificate(principalID),
				Purpose:     enums.PaymentPurposeRefresh,
			}, nil
		},
	}

	body := `{"new_content_ref":"ipfs://v2","payment_ref":"` + strings.Repeat("1", 64) + `","attached_amount":"1.00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates/"+certificateID.String()+"/refresh", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), principalID.String()))
	req = addRouteParam(req, "certificateId", certificateID.String())
	resp := httptest.NewRecorder()

	CertificateRefresh(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if captured.CertificateID != certificateID {
		t.Fatalf("unexpected certificate %s", captured.CertificateID)
	}
	if captured.NewContentRef != "ipfs://v2" {
		t.Fatalf("unexpected content ref %s", captured.NewContentRef)
	}
}

func TestPublicCertificateVerify(t *testing.T) {
	owner := uuid.New()
	cert := sampleCertificate(owner)

	svc := &testCertificatesService{
		getBySerialFn: func(ctx context.Context, serial int64) (*models.Certificate, error) {
			if serial != 7 {
				t.Fatalf("unexpected serial %d", serial)
			}
			return cert, nil
		},
		verificationURLFn: func(ctx context.Context, c *models.Certificate) (string, error) {
			return "https://verify.example/check?recordId=7", nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/public/certificates/verify?serial=7", nil)
	resp := httptest.NewRecorder()

	PublicCertificateVerify(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data verificationResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.VerificationURL == "" {
		t.Fatal("expected verification url")
	}
	if envelope.Data.Certificate.SerialNumber != 7 {
		t.Fatalf("unexpected serial %d", envelope.Data.Certificate.SerialNumber)
	}
}

func TestPublicCertificateVerifyRequiresSerial(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/public/certificates/verify", nil)
	resp := httptest.NewRecorder()

	PublicCertificateVerify(&testCertificatesService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCertificateMineReturnsOwnRecord(t *testing.T) {
	owner := uuid.New()
	svc := &testCertificatesService{
		getByOwnerFn: func(ctx context.Context, ownerID uuid.UUID) (*models.Certificate, error) {
			if ownerID != owner {
				t.Fatalf("unexpected owner %s", ownerID)
			}
			return sampleCertificate(owner), nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/certificates/me", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), owner.String()))
	resp := httptest.NewRecorder()

	CertificateMine(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCertificateMineNotFound(t *testing.T) {
	svc := &testCertificatesService{
		getByOwnerFn: func(ctx context.Context, ownerID uuid.UUID) (*models.Certificate, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "certificate not found")
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/certificates/me", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()

	CertificateMine(svc, testLogger())(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
