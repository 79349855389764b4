// internal/account/account.go
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"nutrilog/internal/apierr"
	"nutrilog/internal/config"
	"nutrilog/internal/models"
)

type Store interface {
	CreateUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// Profile is the registration / profile-update payload.
type Profile struct {
	ID         string
	Password   string
	BodyWeight float64
	Height     float64
	Age        int
	Gender     models.Gender
	Activity   int
	Targets    models.Targets
}

type Service struct {
	store  Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(store Store, cfg config.AuthConfig) *Service {
	return &Service{store: store, secret: []byte(cfg.Secret), ttl: cfg.TokenTTL, now: time.Now}
}

func (s *Service) Register(ctx context.Context, p Profile) error {
	if err := p.validate(true); err != nil {
		return err
	}
	p.Gender = models.Gender(strings.ToLower(strings.TrimSpace(string(p.Gender))))
	u, err := s.toUser(p)
	if err != nil {
		return err
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, apierr.ErrConflict) {
			return apierr.Wrap(apierr.ErrConflict, "register", fmt.Errorf("user %q already exists", p.ID))
		}
		return err
	}
	return nil
}

// UpdateProfile rewrites the password, body profile and targets. Gender is
// kept from registration and is used for target derivation.
func (s *Service) UpdateProfile(ctx context.Context, p Profile) error {
	if err := p.validate(false); err != nil {
		return err
	}
	existing, err := s.store.GetUser(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Gender = existing.Gender
	u, err := s.toUser(p)
	if err != nil {
		return err
	}
	return s.store.UpdateUser(ctx, u)
}

func (s *Service) Targets(ctx context.Context, id string) (models.Targets, error) {
	if strings.TrimSpace(id) == "" {
		return models.Targets{}, apierr.Invalid("id is required")
	}
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return models.Targets{}, err
	}
	return u.Targets, nil
}

// Login checks the password and returns the user with a signed access token.
// An unknown id and a wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, id, password string) (*models.User, string, error) {
	if strings.TrimSpace(id) == "" || password == "" {
		return nil, "", apierr.Invalid("id and password are required")
	}
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, apierr.ErrNotFound) {
			return nil, "", apierr.Wrap(apierr.ErrUnauthorized, "login", errors.New("invalid credentials"))
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", apierr.Wrap(apierr.ErrUnauthorized, "login", errors.New("invalid credentials"))
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		return nil, "", err
	}
	u.PasswordHash = ""
	return u, token, nil
}

func (s *Service) issueToken(userID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates an HS256 token and returns its subject.
func (s *Service) VerifyToken(token string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", apierr.Wrap(apierr.ErrUnauthorized, "verify token", err)
	}
	return claims.Subject, nil
}

func (s *Service) toUser(p Profile) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apierr.Invalid("password too long")
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	targets := p.Targets
	if targets.IsZero() {
		targets = DeriveTargets(p.BodyWeight, p.Height, p.Age, p.Gender, p.Activity)
	}
	return &models.User{
		ID:           p.ID,
		PasswordHash: string(hash),
		BodyWeight:   p.BodyWeight,
		Height:       p.Height,
		Age:          p.Age,
		Gender:       p.Gender,
		Activity:     p.Activity,
		Targets:      targets,
	}, nil
}

func (p Profile) validate(requireGender bool) error {
	switch {
	case strings.TrimSpace(p.ID) == "":
		return apierr.Invalid("id is required")
	case p.Password == "":
		return apierr.Invalid("pw is required")
	case p.BodyWeight <= 0:
		return apierr.Invalid("bodyweight must be positive")
	case p.Height <= 0:
		return apierr.Invalid("height must be positive")
	case p.Age <= 0:
		return apierr.Invalid("age must be positive")
	case p.Activity < 1 || p.Activity > 5:
		return apierr.Invalid("activity must be between 1 and 5")
	case requireGender && strings.TrimSpace(string(p.Gender)) == "":
		return apierr.Invalid("gender is required")
	case p.Targets.Protein < 0 || p.Targets.Carbo < 0 || p.Targets.Fat < 0:
		return apierr.Invalid("rd targets must not be negative")
	}
	return nil
}
