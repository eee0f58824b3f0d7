package auth

import (
	"strings"

	"git.campusqa.org/campusqa/campusqa/src/config"
	"github.com/rs/zerolog"
)

/*
Decides whether a verified email may sign in. Anyone at a campus domain may,
and so may the individually allowed addresses.
*/
type LoginPolicy struct {
	domains map[string]bool
	allowed map[string]bool
}

func NewLoginPolicy(cfg config.AuthConfig) *LoginPolicy {
	p := &LoginPolicy{
		domains: make(map[string]bool, len(cfg.CampusDomains)),
		allowed: make(map[string]bool, len(cfg.AllowedLoginEmails)),
	}
	for _, d := range cfg.CampusDomains {
		p.domains[strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "@"))] = true
	}
	for _, e := range cfg.AllowedLoginEmails {
		p.allowed[normalizeEmail(e)] = true
	}
	return p
}

func (p *LoginPolicy) Allows(email string) bool {
	email = normalizeEmail(email)
	if p.allowed[email] {
		return true
	}

	at := strings.LastIndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return p.domains[email[at+1:]]
}

func (p *LoginPolicy) MarshalZerologObject(e *zerolog.Event) {
	e.Int("campus_domains", len(p.domains))
	e.Int("allowed_login_emails", len(p.allowed))
}
