package model

import "github.com/golang-jwt/jwt/v5"

type RealtimeConnectClaims struct {
	jwt.RegisteredClaims

	Username string `json:"username,omitempty"`
}
