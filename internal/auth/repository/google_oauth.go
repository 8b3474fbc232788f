package repository

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleCodeExchanger redeems Google authorization codes for ID tokens.
type GoogleCodeExchanger struct {
	config *oauth2.Config
}

func NewGoogleCodeExchanger(clientID, clientSecret, redirectURL string) *GoogleCodeExchanger {
	return NewCodeExchanger(&oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	})
}

func NewCodeExchanger(cfg *oauth2.Config) *GoogleCodeExchanger {
	return &GoogleCodeExchanger{config: cfg}
}

func (g *GoogleCodeExchanger) ExchangeCode(ctx context.Context, code string) (string, error) {
	tok, err := g.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange authorization code: %w", err)
	}
	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return "", fmt.Errorf("token response has no id_token")
	}
	return idToken, nil
}
