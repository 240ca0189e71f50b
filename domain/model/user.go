package model

import (
	"time"

	"github.com/golang-jwt/jwt"
)

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	UserName  string    `json:"user_name"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserClaims is the JWT payload for operator sessions. Issuer carries the
// owner id used to scope credentials and scheduled posts.
type UserClaims struct {
	UserName string `json:"user_name"`
	jwt.StandardClaims
}

type ReqLogin struct {
	UserName string `json:"user_name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ReqRegister struct {
	Name     string `json:"name" binding:"required"`
	UserName string `json:"user_name" binding:"required"`
	Password string `json:"password" binding:"required"`
}
