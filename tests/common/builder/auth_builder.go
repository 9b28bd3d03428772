//go:build unit || e2e

package builder

import (
	reqdto "storefront/internal/handler/dto/request"
	"storefront/internal/usecase/commands"
)

type AuthBuilder struct {
	Email    string
	Password string
}

func NewAuthBuilder() *AuthBuilder {
	return &AuthBuilder{
		Email:    "buyer@example.com",
		Password: "password123",
	}
}

func (a *AuthBuilder) With(email, password string) *AuthBuilder {
	a.Email = email
	a.Password = password
	return a
}

func (a *AuthBuilder) BuildDTO() reqdto.LoginRequest {
	return reqdto.LoginRequest{
		Email:    a.Email,
		Password: a.Password,
	}
}

func (a *AuthBuilder) BuildInput() commands.LoginInput {
	return commands.LoginInput{
		Email:    a.Email,
		Password: a.Password,
	}
}
