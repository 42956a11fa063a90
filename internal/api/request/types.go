package request

// CreateSessionRequest is the request body for logging in. The username is
// left untyped so non-string values are rejected as missing rather than as a
// malformed body.
type CreateSessionRequest struct {
	Username any `json:"username"`
}
