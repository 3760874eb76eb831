// internal/domain/models/authmethods.go
package models

// Auth method values stored on the user record.
const (
	AuthMethodPassword = "password"
	AuthMethodGoogle   = "google"
)

// AuthMethod is an authentication method option for the UI.
type AuthMethod struct {
	Value string // the value stored in the database
	Label string // the display label
}

// EnabledAuthMethods are the methods available at signup and login.
var EnabledAuthMethods = []AuthMethod{
	{Value: AuthMethodPassword, Label: "Password"},
	{Value: AuthMethodGoogle, Label: "Google"},
}

// IsValidAuthMethod checks if a value is a recognized auth method.
func IsValidAuthMethod(value string) bool {
	for _, m := range EnabledAuthMethods {
		if m.Value == value {
			return true
		}
	}
	return false
}
