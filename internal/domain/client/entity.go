package client

import (
	"time"

	"github.com/google/uuid"
)

// Client is a storefront customer account.
type Client struct {
	id            uuid.UUID
	email         Email
	passwordHash  string
	firstName     string
	lastName      string
	emailVerified bool
	lastLogin     *time.Time
	isActive      bool
}

func NewClient(email Email, passwordHash, firstName, lastName string) *Client {
	return &Client{
		id:           uuid.New(),
		email:        email,
		passwordHash: passwordHash,
		firstName:    firstName,
		lastName:     lastName,
		isActive:     true,
	}
}

// Reconstruct rebuilds a stored client.
func Reconstruct(id uuid.UUID, email Email, passwordHash, firstName, lastName string, emailVerified, isActive bool, lastLogin *time.Time) *Client {
	return &Client{
		id:            id,
		email:         email,
		passwordHash:  passwordHash,
		firstName:     firstName,
		lastName:      lastName,
		emailVerified: emailVerified,
		isActive:      isActive,
		lastLogin:     lastLogin,
	}
}

func (c *Client) VerifyEmail() { c.emailVerified = true }

func (c *Client) FullName() string {
	switch {
	case c.firstName == "":
		return c.lastName
	case c.lastName == "":
		return c.firstName
	default:
		return c.firstName + " " + c.lastName
	}
}

func (c *Client) ID() uuid.UUID         { return c.id }
func (c *Client) Email() Email          { return c.email }
func (c *Client) PasswordHash() string  { return c.passwordHash }
func (c *Client) FirstName() string     { return c.firstName }
func (c *Client) LastName() string      { return c.lastName }
func (c *Client) EmailVerified() bool   { return c.emailVerified }
func (c *Client) LastLogin() *time.Time { return c.lastLogin }
func (c *Client) IsActive() bool        { return c.isActive }
