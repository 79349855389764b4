package account

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"nutrilog/internal/apierr"
	"nutrilog/internal/config"
	"nutrilog/internal/models"
	"nutrilog/internal/storage"
)

func setupService(t *testing.T) (*Service, *storage.Store) {
	t.Helper()
	store, err := storage.Open(context.Background(), config.DBConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "account.db"),
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewService(store, config.AuthConfig{Secret: "test-secret", TokenTTL: time.Hour}), store
}

func profile() Profile {
	return Profile{ID: "kim", Password: "s3cret", BodyWeight: 70, Height: 175, Age: 30, Gender: "Male", Activity: 3}
}

func TestRegisterHashesPasswordAndDerivesTargets(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()

	if err := svc.Register(ctx, profile()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	u, err := store.GetUser(ctx, "kim")
	if err != nil {
		t.Fatal(err)
	}
	if u.PasswordHash == "s3cret" || u.PasswordHash == "" {
		t.Fatalf("password stored as %q", u.PasswordHash)
	}
	if u.Gender != models.Male {
		t.Errorf("gender = %q", u.Gender)
	}
	want := models.Targets{Carbo: 319.4, Protein: 127.8, Fat: 85.2}
	if u.Targets != want {
		t.Errorf("targets = %+v, want %+v", u.Targets, want)
	}

	if err := svc.Register(ctx, profile()); !errors.Is(err, apierr.ErrConflict) {
		t.Fatalf("duplicate register err = %v", err)
	}
}

func TestRegisterKeepsExplicitTargets(t *testing.T) {
	svc, _ := setupService(t)
	p := profile()
	p.Targets = models.Targets{Protein: 60, Carbo: 280, Fat: 55}
	if err := svc.Register(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	got, err := svc.Targets(context.Background(), "kim")
	if err != nil {
		t.Fatal(err)
	}
	if got != p.Targets {
		t.Fatalf("targets = %+v", got)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := setupService(t)
	mutations := map[string]func(*Profile){
		"no id":        func(p *Profile) { p.ID = " " },
		"no password":  func(p *Profile) { p.Password = "" },
		"no gender":    func(p *Profile) { p.Gender = "" },
		"bad activity": func(p *Profile) { p.Activity = 9 },
		"no weight":    func(p *Profile) { p.BodyWeight = 0 },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			p := profile()
			mutate(&p)
			if err := svc.Register(context.Background(), p); !errors.Is(err, apierr.ErrInvalidInput) {
				t.Fatalf("err = %v", err)
			}
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()

	p := profile()
	if err := svc.UpdateProfile(ctx, p); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("update before register err = %v", err)
	}
	if err := svc.Register(ctx, p); err != nil {
		t.Fatal(err)
	}

	p.Password = "n3w"
	p.BodyWeight = 65
	p.Gender = models.Female
	if err := svc.UpdateProfile(ctx, p); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	u, _ := store.GetUser(ctx, "kim")
	if u.BodyWeight != 65 || u.Gender != models.Male {
		t.Errorf("user = %+v", u)
	}
	if _, _, err := svc.Login(ctx, "kim", "n3w"); err != nil {
		t.Errorf("login with new password: %v", err)
	}
}

func TestLoginAndVerifyToken(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	if err := svc.Register(ctx, profile()); err != nil {
		t.Fatal(err)
	}

	u, token, err := svc.Login(ctx, "kim", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.PasswordHash != "" {
		t.Error("login must not return the credential")
	}
	sub, err := svc.VerifyToken(token)
	if err != nil || sub != "kim" {
		t.Fatalf("VerifyToken sub=%q err=%v", sub, err)
	}

	for _, c := range [][2]string{{"kim", "wrong"}, {"ghost", "s3cret"}} {
		if _, _, err := svc.Login(ctx, c[0], c[1]); !errors.Is(err, apierr.ErrUnauthorized) {
			t.Errorf("Login(%s) err = %v", c[0], err)
		}
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.VerifyToken(token); !errors.Is(err, apierr.ErrUnauthorized) {
		t.Errorf("expired token err = %v", err)
	}
	if _, err := svc.VerifyToken("not.a.token"); !errors.Is(err, apierr.ErrUnauthorized) {
		t.Errorf("garbage token err = %v", err)
	}
}

func TestDeriveTargets(t *testing.T) {
	got := DeriveTargets(60, 165, 25, models.Female, 1)
	// (600 + 1031.25 - 125 - 161) * 1.2 = 1614.3 kcal
	want := models.Targets{Carbo: 201.8, Protein: 80.7, Fat: 53.8}
	if got != want {
		t.Errorf("female sedentary = %+v, want %+v", got, want)
	}
	if clamped := DeriveTargets(60, 165, 25, models.Female, 0); clamped != got {
		t.Errorf("activity below range should clamp to 1, got %+v", clamped)
	}
	if zero := DeriveTargets(1, 1, 120, models.Male, 3); !zero.IsZero() {
		t.Errorf("non-positive energy should give zero targets, got %+v", zero)
	}
}
