package instancehandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/message-mint/whatsapp-api/internal/domain/instance"
	"github.com/message-mint/whatsapp-api/internal/domain/session"
	"github.com/message-mint/whatsapp-api/internal/transport"
	"github.com/message-mint/whatsapp-api/internal/utils/platformerrors"
)

type stubManager struct {
	connected  bool
	connectIDs []string
	connectErr error
	challenge  *session.Challenge
	challErr   error
	logoutRes  session.LogoutResult
	logoutIDs  []string
	info       session.Info
	infoErr    error
	identities map[string]*transport.Identity
}

func (s *stubManager) Connect(_ context.Context, id string) (transport.Client, error) {
	s.connectIDs = append(s.connectIDs, id)
	return nil, s.connectErr
}

func (s *stubManager) Connected(string) bool { return s.connected }

func (s *stubManager) Identity(id string) (*transport.Identity, bool) {
	ident, ok := s.identities[id]
	return ident, ok
}

func (s *stubManager) GetChallenge(_ context.Context, _ string, _ session.ChallengeKind, _ string) (*session.Challenge, error) {
	return s.challenge, s.challErr
}

func (s *stubManager) Logout(_ context.Context, id string) session.LogoutResult {
	s.logoutIDs = append(s.logoutIDs, id)
	return s.logoutRes
}

func (s *stubManager) Info(string) (session.Info, error) { return s.info, s.infoErr }

type stubValidator struct {
	inst *instance.Instance
	err  error
}

func (s *stubValidator) ValidateUser(context.Context, string, string) (*instance.Instance, error) {
	return s.inst, s.err
}

func serve(t *testing.T, manager SessionManager, validator Validator, target string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	h := NewInstanceHandler(manager, validator, zerolog.Nop())
	router.GET("/v1/instance", h.Handle)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestHandleRequiresQueryParams(t *testing.T) {
	rec := serve(t, &stubManager{}, &stubValidator{}, "/v1/instance")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleLogoutShortCircuitsValidation(t *testing.T) {
	manager := &stubManager{logoutRes: session.LogoutResult{Status: "success", Message: "session logged out"}}
	validator := &stubValidator{err: platformerrors.NewError(
		context.Background(), platformerrors.LayerDomain,
		platformerrors.ErrorTypeUnauthorized, "access token is invalid", nil, "t",
	)}

	rec := serve(t, manager, validator, "/v1/instance?instance_id=abc&access_token=bad&type=logout")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(manager.logoutIDs) != 1 || manager.logoutIDs[0] != "abc" {
		t.Fatalf("logout ids = %v", manager.logoutIDs)
	}
	if body := decode(t, rec); body["status"] != "success" {
		t.Fatalf("body = %v", body)
	}
}

func TestHandleRejectsInvalidToken(t *testing.T) {
	validator := &stubValidator{err: platformerrors.NewError(
		context.Background(), platformerrors.LayerDomain,
		platformerrors.ErrorTypeUnauthorized, "access token is invalid", nil, "t",
	)}

	rec := serve(t, &stubManager{}, validator, "/v1/instance?instance_id=abc&access_token=bad&type=qr")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestHandleServesQRChallenge(t *testing.T) {
	manager := &stubManager{challenge: &session.Challenge{
		Kind:    session.ChallengeQR,
		Payload: "data:image/png;base64,abcd",
	}}

	rec := serve(t, manager, &stubValidator{inst: &instance.Instance{InstanceID: "abc"}},
		"/v1/instance?instance_id=abc&access_token=team1&type=qr")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decode(t, rec)
	if body["qrcode"] != "data:image/png;base64,abcd" {
		t.Fatalf("body = %v", body)
	}
}

func TestHandlePairingCodeRequiresPhone(t *testing.T) {
	rec := serve(t, &stubManager{}, &stubValidator{inst: &instance.Instance{}},
		"/v1/instance?instance_id=abc&access_token=team1&type=paircode")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleFormatsPairingCode(t *testing.T) {
	manager := &stubManager{challenge: &session.Challenge{
		Kind:    session.ChallengePairingCode,
		Payload: "ABCD1234",
	}}

	rec := serve(t, manager, &stubValidator{inst: &instance.Instance{}},
		"/v1/instance?instance_id=abc&access_token=team1&type=paircode&phone=5511999990000")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := decode(t, rec); body["paircode"] != "ABCD-1234" {
		t.Fatalf("body = %v", body)
	}
}

func TestHandleAlreadyConnectedFallsBackToStatus(t *testing.T) {
	manager := &stubManager{
		connected: true,
		challErr:  session.ErrAlreadyConnected,
		info:      session.Info{SessionID: "abc", Status: "open"},
	}
	inst := &instance.Instance{
		InstanceID: "abc",
		Data:       `{"phone":"5511999990000","name":"Test Profile"}`,
	}

	rec := serve(t, manager, &stubValidator{inst: inst},
		"/v1/instance?instance_id=abc&access_token=team1&type=qr")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decode(t, rec)
	if body["connected"] != true || body["status"] != "open" {
		t.Fatalf("body = %v", body)
	}
	profile, ok := body["profile"].(map[string]any)
	if !ok || profile["phone"] != "5511999990000" {
		t.Fatalf("profile = %v", body["profile"])
	}
}

func TestHandleStatusPollDialsSession(t *testing.T) {
	manager := &stubManager{info: session.Info{SessionID: "abc", Status: "connecting"}}

	rec := serve(t, manager, &stubValidator{inst: &instance.Instance{InstanceID: "abc"}},
		"/v1/instance?instance_id=abc&access_token=team1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(manager.connectIDs) != 1 || manager.connectIDs[0] != "abc" {
		t.Fatalf("connect ids = %v, want one dial for abc", manager.connectIDs)
	}
	if body := decode(t, rec); body["status"] != "connecting" {
		t.Fatalf("body = %v", body)
	}
}

func TestHandleStatusPollSurvivesDialFailure(t *testing.T) {
	manager := &stubManager{
		connectErr: errors.New("socket refused"),
		infoErr:    session.ErrSessionNotFound,
	}

	rec := serve(t, manager, &stubValidator{inst: &instance.Instance{InstanceID: "abc"}},
		"/v1/instance?instance_id=abc&access_token=team1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decode(t, rec)
	if body["connected"] != false || body["status"] != "disconnected" {
		t.Fatalf("body = %v", body)
	}
}

func TestHandleChallengeNotReady(t *testing.T) {
	manager := &stubManager{challErr: session.ErrChallengeUnavailable}

	rec := serve(t, manager, &stubValidator{inst: &instance.Instance{}},
		"/v1/instance?instance_id=abc&access_token=team1&type=qr")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestFormatPairingCode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"ABC", "ABC"},
		{"ABCD", "ABCD"},
		{"ABCD1234", "ABCD-1234"},
		{"ABCD1234EF", "ABCD-1234-EF"},
	}
	for _, tc := range cases {
		if got := formatPairingCode(tc.in); got != tc.want {
			t.Errorf("formatPairingCode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
