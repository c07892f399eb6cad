// Package instancehandler serves the instance lifecycle endpoint: challenge
// retrieval, logout and connection status.
package instancehandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/message-mint/whatsapp-api/internal/domain/instance"
	"github.com/message-mint/whatsapp-api/internal/domain/session"
	requests "github.com/message-mint/whatsapp-api/internal/interfaces/httpserver/requests/instance"
	"github.com/message-mint/whatsapp-api/internal/interfaces/httpserver/responses"
	"github.com/message-mint/whatsapp-api/internal/transport"
	"github.com/message-mint/whatsapp-api/internal/utils/platformerrors"
)

// SessionManager is the slice of the session manager the handler drives.
type SessionManager interface {
	Connect(ctx context.Context, id string) (transport.Client, error)
	Connected(id string) bool
	Identity(id string) (*transport.Identity, bool)
	GetChallenge(ctx context.Context, id string, kind session.ChallengeKind, phone string) (*session.Challenge, error)
	Logout(ctx context.Context, id string) session.LogoutResult
	Info(id string) (session.Info, error)
}

// Validator checks the caller's access token against team permissions.
type Validator interface {
	ValidateUser(ctx context.Context, instanceID, accessToken string) (*instance.Instance, error)
}

type InstanceHandler struct {
	manager   SessionManager
	validator Validator
	log       zerolog.Logger
}

func NewInstanceHandler(manager SessionManager, validator Validator, log zerolog.Logger) *InstanceHandler {
	return &InstanceHandler{
		manager:   manager,
		validator: validator,
		log:       log.With().Str("component", "instance-handler").Logger(),
	}
}

// Handle serves GET /v1/instance.
func (h *InstanceHandler) Handle(c *gin.Context) {
	var query requests.Query
	if err := c.ShouldBindQuery(&query); err != nil {
		responses.RespondError(c, platformerrors.NewError(
			c.Request.Context(),
			platformerrors.LayerHandler,
			platformerrors.ErrorTypeValidation,
			"instance_id and access_token are required",
			err,
			"instance-bind-query",
		))
		return
	}

	// Logout tears the session down regardless of its current state.
	if query.Type == requests.TypeLogout {
		result := h.manager.Logout(c.Request.Context(), query.InstanceID)
		c.JSON(http.StatusOK, responses.ActionResponse{
			InstanceID: query.InstanceID,
			Status:     result.Status,
			Message:    result.Message,
		})
		return
	}

	inst, err := h.validator.ValidateUser(c.Request.Context(), query.InstanceID, query.AccessToken)
	if err != nil {
		responses.RespondError(c, err)
		return
	}

	switch query.Type {
	case requests.TypeQR:
		h.serveChallenge(c, query, session.ChallengeQR, inst)
	case requests.TypePairCode:
		h.serveChallenge(c, query, session.ChallengePairingCode, inst)
	default:
		// Status polls revive dormant sessions: a dial is attempted on
		// every poll, the way challenge requests already do.
		if _, err := h.manager.Connect(c.Request.Context(), query.InstanceID); err != nil {
			h.log.Warn().Err(err).Str("instance_id", query.InstanceID).Msg("status poll failed to dial session")
		}
		h.serveStatus(c, query.InstanceID, inst)
	}
}

func (h *InstanceHandler) serveChallenge(c *gin.Context, query requests.Query, kind session.ChallengeKind, inst *instance.Instance) {
	if kind == session.ChallengePairingCode && query.Phone == "" {
		responses.RespondError(c, platformerrors.NewError(
			c.Request.Context(),
			platformerrors.LayerHandler,
			platformerrors.ErrorTypeValidation,
			"phone is required for pairing codes",
			nil,
			"instance-paircode-phone",
		))
		return
	}

	ch, err := h.manager.GetChallenge(c.Request.Context(), query.InstanceID, kind, query.Phone)
	switch {
	case errors.Is(err, session.ErrAlreadyConnected):
		h.serveStatus(c, query.InstanceID, inst)
		return
	case errors.Is(err, session.ErrChallengeUnavailable):
		c.JSON(http.StatusServiceUnavailable, responses.ErrorResponse{
			Status:  "error",
			Message: "challenge not ready yet, retry shortly",
		})
		return
	case err != nil:
		h.log.Error().Err(err).Str("instance_id", query.InstanceID).Msg("challenge request failed")
		responses.RespondError(c, err)
		return
	}

	resp := responses.ChallengeResponse{
		InstanceID: query.InstanceID,
		Status:     string(ch.Kind),
	}
	if ch.Kind == session.ChallengePairingCode {
		resp.PairCode = formatPairingCode(ch.Payload)
	} else {
		resp.QRCode = ch.Payload
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InstanceHandler) serveStatus(c *gin.Context, instanceID string, inst *instance.Instance) {
	status := "disconnected"
	connected := h.manager.Connected(instanceID)
	if connected {
		status = "connected"
	}
	if info, err := h.manager.Info(instanceID); err == nil {
		status = info.Status
	}

	c.JSON(http.StatusOK, responses.StatusResponse{
		InstanceID: instanceID,
		Status:     status,
		Connected:  connected,
		Profile:    profileFromRow(inst),
	})
}

func profileFromRow(inst *instance.Instance) *instance.ProfileData {
	if inst == nil || inst.Data == "" {
		return nil
	}
	var profile instance.ProfileData
	if err := json.Unmarshal([]byte(inst.Data), &profile); err != nil {
		return nil
	}
	return &profile
}

// formatPairingCode groups the raw code into blocks of four separated by
// dashes, the way the phone UI displays it.
func formatPairingCode(code string) string {
	if len(code) <= 4 {
		return code
	}
	var groups []string
	for i := 0; i < len(code); i += 4 {
		end := i + 4
		if end > len(code) {
			end = len(code)
		}
		groups = append(groups, code[i:end])
	}
	return strings.Join(groups, "-")
}
