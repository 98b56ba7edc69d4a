package dto

// LoginRequestDTO is the login wire request. Presence is the only
// constraint the contract enforces; length and charset are not.
type LoginRequestDTO struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RejectedResponseDTO is the 401 body. It is identical for an unknown
// username and for a wrong password so that usernames cannot be enumerated.
type RejectedResponseDTO struct {
	Mensaje string `json:"mensaje"`
}

// UnavailableResponseDTO is the 500 body. The error text is a fixed opaque
// message; driver details stay in the operator log.
type UnavailableResponseDTO struct {
	Error string `json:"error"`
}
