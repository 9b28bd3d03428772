package response

import (
	"storefront/internal/usecase/commands"
	"storefront/internal/usecase/queries"

	"github.com/google/uuid"
)

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	ClientID    uuid.UUID `json:"client_id"`
	Email       string    `json:"email"`
}

func FromLoginResult(r *commands.LoginResult) *LoginResponse {
	return &LoginResponse{
		AccessToken: r.AccessToken,
		ExpiresIn:   int64(r.ExpiresIn.Seconds()),
		ClientID:    r.ClientID,
		Email:       r.Email,
	}
}

type ClientResponse struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	EmailVerified bool      `json:"email_verified"`
}

func FromClientView(v *queries.ClientView) (*ClientResponse, error) {
	var res ClientResponse
	if err := copyInto(&res, v); err != nil {
		return nil, err
	}
	return &res, nil
}
