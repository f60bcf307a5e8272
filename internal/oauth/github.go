package oauth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/guplink/guplink-api/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

type GitHubProvider struct {
	config *oauth2.Config
}

func NewGitHubProvider(cfg config.OAuthConfig) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"user:email", "read:user"},
			Endpoint:     github.Endpoint,
		},
	}
}

func (p *GitHubProvider) Name() string {
	return "github"
}

func (p *GitHubProvider) GetConsentURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

type githubAccount struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// ExchangeCode trades the callback code for the account profile. GitHub
// leaves the email field empty for accounts with a private email, so a
// second call against the emails endpoint fills the gap.
func (p *GitHubProvider) ExchangeCode(ctx context.Context, code string) (*UserInfo, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("github code exchange: %w", err)
	}
	client := p.config.Client(ctx, token)

	var account githubAccount
	if err := getJSON(client, "https://api.github.com/user", "github", &account); err != nil {
		return nil, err
	}

	email := account.Email
	if email == "" {
		var emails []githubEmail
		if err := getJSON(client, "https://api.github.com/user/emails", "github", &emails); err != nil {
			return nil, err
		}
		if email, err = pickEmail(emails); err != nil {
			return nil, err
		}
	}

	name := account.Name
	if name == "" {
		name = account.Login
	}

	return &UserInfo{
		Email:     email,
		Name:      name,
		AvatarURL: account.AvatarURL,
		ID:        strconv.FormatInt(account.ID, 10),
		Provider:  "github",
	}, nil
}

// pickEmail chooses the address to key the account on: the primary verified
// one when present, any verified one next, the first listed as a last resort.
func pickEmail(emails []githubEmail) (string, error) {
	if len(emails) == 0 {
		return "", errors.New("github account has no email")
	}
	best := -1
	for i, e := range emails {
		switch {
		case e.Primary && e.Verified:
			return e.Email, nil
		case e.Verified && best < 0:
			best = i
		}
	}
	if best < 0 {
		best = 0
	}
	return emails[best].Email, nil
}
