package auth

import (
	"errors"
	"testing"
)

func newTestService() *Service {
	s := NewService("test-secret")
	s.RegisterAPICredentials(MockAPIKey, MockAPISecret)
	return s
}

func TestGenerateToken_RoundTrip(t *testing.T) {
	s := newTestService()

	token, err := s.GenerateToken(Credentials{APIKey: MockAPIKey, APISecret: MockAPISecret})
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	if token.Token == "" {
		t.Fatal("empty token")
	}

	claims, err := s.ValidateToken(token.Token)
	if err != nil {
		t.Fatalf("validate token failed: %v", err)
	}
	if claims.ClientID != MockAPIKey {
		t.Errorf("got client ID %s, want %s", claims.ClientID, MockAPIKey)
	}
}

func TestGenerateToken_InvalidCredentials(t *testing.T) {
	s := newTestService()

	cases := []Credentials{
		{APIKey: MockAPIKey, APISecret: "wrong"},
		{APIKey: "unknown", APISecret: MockAPISecret},
		{},
	}
	for _, creds := range cases {
		if _, err := s.GenerateToken(creds); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("creds %+v: expected ErrInvalidCredentials, got %v", creds, err)
		}
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	s := newTestService()
	token, err := s.GenerateToken(Credentials{APIKey: MockAPIKey, APISecret: MockAPISecret})
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}

	other := NewService("different-secret")
	if _, err := other.ValidateToken(token.Token); err == nil {
		t.Error("token signed with another secret should not validate")
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	s := newTestService()
	if _, err := s.ValidateToken("not.a.jwt"); err == nil {
		t.Error("garbage token should not validate")
	}
}
