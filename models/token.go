package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims, JWT token'ın içindeki veriler (payload).
//
// Access ve refresh token aynı claim yapısını taşır: kullanıcı kimliği,
// rol ve sessionToken. SessionToken claim'i, User kaydındaki güncel
// session token ile karşılaştırılır — imza ve süre geçerli olsa bile
// eşleşmeyen token reddedilir. Token'lar server tarafında saklanmaz;
// geçerlilik = kriptografik doğrulama + bu cross-check.
type TokenClaims struct {
	UserID       string `json:"userId"`
	Username     string `json:"username"`
	Role         Role   `json:"role"`
	SessionToken string `json:"sessionToken"`
	jwt.RegisteredClaims
}
