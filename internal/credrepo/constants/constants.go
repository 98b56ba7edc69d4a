package constants

const (
	// LoginCollection is the relation holding credential records. The name
	// matches the table the store schema defines.
	LoginCollection = "login"

	// Field names of the credential relation.
	UsernameField = "username"
	PasswordField = "password"
)
