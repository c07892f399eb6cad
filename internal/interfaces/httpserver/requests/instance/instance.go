package instance

// Query is the request surface of the instance endpoint. Type selects the
// operation: qr, paircode, logout, or empty for plain status.
type Query struct {
	InstanceID  string `form:"instance_id" binding:"required"`
	AccessToken string `form:"access_token" binding:"required"`
	Type        string `form:"type"`
	Phone       string `form:"phone"`
}

const (
	TypeQR       = "qr"
	TypePairCode = "paircode"
	TypeLogout   = "logout"
)
