// Package auth simulates sign-in and registration locally. No credential leaves the process: a successful call
// mints signed demo tokens and stores them like a real backend response would be stored.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

const (
	// DefaultDelay mimics a network round trip.
	DefaultDelay = 1500 * time.Millisecond

	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrMissingName        = errors.New("name is required")
	ErrTermsNotAccepted   = errors.New("terms not accepted")
	ErrWeakPassword       = errors.New("password requirements not met")
	ErrInvalidToken       = errors.New("invalid token")
	ErrMissingSigningKey  = errors.New("signing key is required")
)

// Message returns the user-facing text for an auth error.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrTermsNotAccepted):
		return "Please agree to the terms and conditions"
	case errors.Is(err, ErrWeakPassword):
		return "Please meet all password requirements"
	case errors.Is(err, ErrMissingCredentials):
		return "Please enter your email and password"
	case errors.Is(err, ErrInvalidEmail):
		return "Please enter a valid email address"
	case errors.Is(err, ErrMissingName):
		return "Please enter your name"
	case err == nil:
		return ""
	default:
		return "Something went wrong. Please try again."
	}
}

// Result is the success notification for an auth action.
type Result struct {
	Title       string
	Description string
	Email       string
}

// RegisterInput holds registration form values.
type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	AgreeToTerms bool
}

// Waiter blocks for d or until ctx is done.
type Waiter func(ctx context.Context, d time.Duration) error

// Options configures a Simulator.
type Options struct {
	SigningKey []byte
	Delay      time.Duration
	Wait       Waiter
	Clock      func() time.Time
}

// Simulator implements sign-in, registration, refresh and sign-out without a backend.
type Simulator struct {
	tokens *TokenStore
	key    []byte
	delay  time.Duration
	wait   Waiter
	clock  func() time.Time
}

// NewSimulator constructs a new value for this package.
func NewSimulator(tokens *TokenStore, opts Options) (*Simulator, error) {
	if len(opts.SigningKey) == 0 {
		return nil, ErrMissingSigningKey
	}
	s := &Simulator{
		tokens: tokens,
		key:    append([]byte(nil), opts.SigningKey...),
		delay:  opts.Delay,
		wait:   opts.Wait,
		clock:  opts.Clock,
	}
	if s.delay < 0 {
		s.delay = 0
	}
	if s.wait == nil {
		s.wait = sleepContext
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	return s, nil
}

// SignIn accepts any well-formed email and non-empty password.
func (s *Simulator) SignIn(ctx context.Context, email, password string) (Result, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Result{}, ErrMissingCredentials
	}
	if err := validateEmail(email); err != nil {
		return Result{}, err
	}
	if err := s.issue(ctx, email); err != nil {
		return Result{}, err
	}
	return Result{Title: "Welcome back!", Description: "You have been signed in successfully.", Email: email}, nil
}

// Register checks terms before password rules, matching the form's order.
func (s *Simulator) Register(ctx context.Context, in RegisterInput) (Result, error) {
	email := strings.TrimSpace(in.Email)
	if strings.TrimSpace(in.Name) == "" {
		return Result{}, ErrMissingName
	}
	if email == "" || in.Password == "" {
		return Result{}, ErrMissingCredentials
	}
	if err := validateEmail(email); err != nil {
		return Result{}, err
	}
	if !in.AgreeToTerms {
		return Result{}, ErrTermsNotAccepted
	}
	if unmet := CheckPassword(in.Password); len(unmet) > 0 {
		return Result{}, fmt.Errorf("%w: %d unmet", ErrWeakPassword, len(unmet))
	}
	if err := s.issue(ctx, email); err != nil {
		return Result{}, err
	}
	return Result{Title: "Account created!", Description: "Welcome to Acta. Let's get started!", Email: email}, nil
}

// Refresh verifies a refresh token and mints a new access token for the same subject.
func (s *Simulator) Refresh(refresh string) (string, error) {
	subject, err := s.verify(refresh, "refresh")
	if err != nil {
		return "", err
	}
	return s.mint(subject, "access", AccessTokenTTL)
}

// CurrentUser returns the subject of the stored access token, if it is still valid.
func (s *Simulator) CurrentUser(ctx context.Context) (string, bool, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return "", false, err
	}
	if token.AccessToken == "" {
		return "", false, nil
	}
	subject, err := s.verify(token.AccessToken, "access")
	if err != nil {
		return "", false, nil
	}
	return subject, true, nil
}

// SignOut clears stored tokens.
func (s *Simulator) SignOut(ctx context.Context) error {
	return s.tokens.Clear(ctx)
}

func (s *Simulator) issue(ctx context.Context, subject string) error {
	if err := s.wait(ctx, s.delay); err != nil {
		return err
	}
	access, err := s.mint(subject, "access", AccessTokenTTL)
	if err != nil {
		return err
	}
	refresh, err := s.mint(subject, "refresh", RefreshTokenTTL)
	if err != nil {
		return err
	}
	return s.tokens.Save(ctx, &oauth2.Token{
		AccessToken:  access,
		TokenType:    "Bearer",
		RefreshToken: refresh,
		Expiry:       s.clock().Add(AccessTokenTTL),
	})
}

func (s *Simulator) mint(subject, kind string, ttl time.Duration) (string, error) {
	now := s.clock()
	claims := jwt.MapClaims{
		"sub": subject,
		"typ": kind,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

func (s *Simulator) verify(raw, kind string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.key, nil
	}, jwt.WithTimeFunc(s.clock), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	if typ, _ := claims["typ"].(string); typ != kind {
		return "", fmt.Errorf("%w: expected %s token", ErrInvalidToken, kind)
	}
	subject, _ := claims["sub"].(string)
	if subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return subject, nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
