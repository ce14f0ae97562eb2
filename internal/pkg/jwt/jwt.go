package jwt

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var (
	ErrInvalidToken           = errors.New("invalid or missing token")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
)

// Service verifies bearer tokens minted by the external identity provider.
type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	// Enabled reports whether a signing secret is configured.
	Enabled() bool
	// IssueToken signs claims with the shared secret. Used by ops tooling and tests.
	IssueToken(claims map[string]interface{}, ttl time.Duration) (string, error)
}

type JWTService struct {
	secretKey string
	tokenAuth *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) Enabled() bool {
	return j.secretKey != ""
}

func (j *JWTService) IssueToken(claims map[string]interface{}, ttl time.Duration) (string, error) {
	if !j.Enabled() {
		return "", ErrInvalidToken
	}

	payload := make(map[string]interface{}, len(claims)+2)
	for k, v := range claims {
		payload[k] = v
	}
	jwtauth.SetIssuedNow(payload)
	if ttl != 0 {
		jwtauth.SetExpiryIn(payload, ttl)
	}

	_, token, err := j.tokenAuth.Encode(payload)
	if err != nil {
		return "", err
	}
	return token, nil
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		secretKey: secretKey,
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}
