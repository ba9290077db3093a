package auth

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/api/idtoken"
)

// GoogleProfile Google ID Token 中我们关心的字段
type GoogleProfile struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleProfile, error)
}

// IDTokenVerifier 校验签名、aud(=ClientID)、过期时间
type IDTokenVerifier struct {
	ClientID string
}

func (v *IDTokenVerifier) Verify(ctx context.Context, token string) (*GoogleProfile, error) {
	if v.ClientID == "" {
		return nil, errors.New("google client id not configured")
	}
	p, err := idtoken.Validate(ctx, token, v.ClientID)
	if err != nil {
		return nil, err
	}
	return profileFromClaims(p.Subject, p.Claims)
}

func profileFromClaims(sub string, claims map[string]interface{}) (*GoogleProfile, error) {
	str := func(k string) string {
		s, _ := claims[k].(string)
		return strings.TrimSpace(s)
	}
	prof := &GoogleProfile{
		Subject: sub,
		Email:   strings.ToLower(str("email")),
		Name:    str("name"),
		Picture: str("picture"),
	}
	switch ev := claims["email_verified"].(type) {
	case bool:
		prof.EmailVerified = ev
	case string:
		prof.EmailVerified = ev == "true"
	}
	if prof.Email == "" {
		return nil, errors.New("google token has no email")
	}
	return prof, nil
}
