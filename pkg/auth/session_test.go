package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tendant/simple-admin-console/pkg/domain"
)

func signTestToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-the-backend-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestDecodeToken(t *testing.T) {
	token := signTestToken(t, jwt.MapClaims{
		"id":       "65f1c0ffee",
		"tenantId": "tenant-1",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})

	claims, err := DecodeToken(token)
	if err != nil {
		t.Fatalf("DecodeToken() error = %v", err)
	}
	if claims.SubjectID() != "65f1c0ffee" {
		t.Errorf("SubjectID() = %q, want %q", claims.SubjectID(), "65f1c0ffee")
	}
	if claims.TenantID != "tenant-1" {
		t.Errorf("TenantID = %q, want %q", claims.TenantID, "tenant-1")
	}
}

func TestDecodeToken_IgnoresExpiry(t *testing.T) {
	token := signTestToken(t, jwt.MapClaims{
		"id":  "u1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	if _, err := DecodeToken(token); err != nil {
		t.Errorf("expired token should still decode, got %v", err)
	}
}

func TestDecodeToken_FallsBackToSubject(t *testing.T) {
	token := signTestToken(t, jwt.MapClaims{"sub": "u2"})

	claims, err := DecodeToken(token)
	if err != nil {
		t.Fatalf("DecodeToken() error = %v", err)
	}
	if claims.SubjectID() != "u2" {
		t.Errorf("SubjectID() = %q, want %q", claims.SubjectID(), "u2")
	}
}

func TestDecodeToken_Errors(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "empty", token: "", wantErr: domain.ErrMissingToken},
		{name: "whitespace", token: "   ", wantErr: domain.ErrMissingToken},
		{name: "garbage", token: "not-a-jwt", wantErr: domain.ErrInvalidToken},
		{name: "no subject", token: signTestToken(t, jwt.MapClaims{"tenantId": "t"}), wantErr: domain.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeToken(tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("DecodeToken() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
