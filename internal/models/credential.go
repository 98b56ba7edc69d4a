package models

// Credential represents one stored identity record.
// The stored password is compared inside the store query and is never
// serialized into a response body; json:"-" keeps it out of the 200 payload.
type Credential struct {
	ID       string `json:"id,omitempty" bson:"_id,omitempty" mapstructure:"id" db:"id"`
	Username string `json:"username" bson:"username" mapstructure:"username" db:"username"`
	Password string `json:"-" bson:"password" mapstructure:"password" db:"password"`
}

// NewCredential creates a new Credential with the given username and password.
// Note: No validation is performed here.
func NewCredential(username, password string) *Credential {
	return &Credential{
		Username: username,
		Password: password,
	}
}
