package google

import (
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgrijalva/jwt-go"
)

const DefaultTokenURL = "https://oauth2.googleapis.com/token"

// ServiceAccount is the subset of a Google service-account key file we use.
type ServiceAccount struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	TokenURI     string `json:"token_uri"`
}

// ParseServiceAccount decodes a key file and checks the fields needed to mint tokens.
func ParseServiceAccount(raw []byte) (*ServiceAccount, error) {
	var sa ServiceAccount
	if err := json.Unmarshal(raw, &sa); err != nil {
		return nil, fmt.Errorf("decode service account: %w", err)
	}
	switch {
	case sa.ProjectID == "":
		return nil, errors.New("service account: missing project_id")
	case sa.ClientEmail == "":
		return nil, errors.New("service account: missing client_email")
	case sa.PrivateKey == "":
		return nil, errors.New("service account: missing private_key")
	}
	if sa.TokenURI == "" {
		sa.TokenURI = DefaultTokenURL
	}
	return &sa, nil
}

func (sa *ServiceAccount) signingKey() (*rsa.PrivateKey, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(sa.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return key, nil
}
