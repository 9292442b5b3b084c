package viewmodels

// SessionView describes the signed-in operator.
type SessionView struct {
	DisplayName string `json:"display_name"`
	IsAdmin     bool   `json:"is_admin"`
}
