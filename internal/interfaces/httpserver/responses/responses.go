// Package responses defines the JSON envelopes of the instance API.
package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/message-mint/whatsapp-api/internal/domain/instance"
	"github.com/message-mint/whatsapp-api/internal/utils/platformerrors"
)

// ErrorResponse is the envelope for failed requests.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ChallengeResponse carries a QR data URI or a pairing code.
type ChallengeResponse struct {
	InstanceID string `json:"instance_id"`
	Status     string `json:"status"`
	QRCode     string `json:"qrcode,omitempty"`
	PairCode   string `json:"paircode,omitempty"`
}

// StatusResponse describes the session's current connection state.
type StatusResponse struct {
	InstanceID string                `json:"instance_id"`
	Status     string                `json:"status"`
	Connected  bool                  `json:"connected"`
	Profile    *instance.ProfileData `json:"profile,omitempty"`
}

// ActionResponse reports the outcome of an operator action such as logout.
type ActionResponse struct {
	InstanceID string `json:"instance_id"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

// RespondError maps platform errors to their HTTP status and hides
// everything else behind a generic 500.
func RespondError(c *gin.Context, err error) {
	var perr *platformerrors.PlatformError
	if errors.As(err, &perr) {
		c.JSON(platformerrors.ErrorTypeToHTTPStatus(perr.Type), ErrorResponse{
			Status:  "error",
			Message: perr.Message,
			Code:    perr.UUID,
		})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Status:  "error",
		Message: "internal server error",
	})
}
