package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Account struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	// Advisory flag toggled by login/logout. Does not gate token validity.
	LoggedIn  bool      `db:"logged_in"`
	CreatedAt time.Time `db:"created_at"`
}

// Claims defines the structure of the JWT claims.
type Claims struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}
