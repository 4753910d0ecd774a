package identity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/92kareeem/healthai/internal/platform/auth"
	"github.com/92kareeem/healthai/internal/platform/phi"
)

type mockRepo struct {
	byID     map[uuid.UUID]*User
	byWallet map[string]*User
}

func newMockRepo() *mockRepo {
	return &mockRepo{byID: map[uuid.UUID]*User{}, byWallet: map[string]*User{}}
}

func (m *mockRepo) Create(_ context.Context, u *User) error {
	if _, exists := m.byWallet[u.WalletAddress]; exists {
		return ErrWalletInUse
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.byID[u.ID] = &cp
	m.byWallet[u.WalletAddress] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockRepo) GetByWallet(_ context.Context, wallet string) (*User, error) {
	u, ok := m.byWallet[wallet]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, u *User) error {
	stored, ok := m.byID[u.ID]
	if !ok {
		return ErrNotFound
	}
	cp := *u
	cp.UpdatedAt = time.Now()
	m.byID[u.ID] = &cp
	m.byWallet[stored.WalletAddress] = &cp
	return nil
}

func (m *mockRepo) ListByRole(_ context.Context, role string, limit, offset int) ([]*User, int, error) {
	var out []*User
	for _, u := range m.byID {
		if u.Role == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

const testWallet = "0xAbC1234567890123456789012345678901234567"

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	key := strings.Repeat("k", 32)
	enc, err := phi.NewEncryptor([]byte(key))
	if err != nil {
		t.Fatalf("encryptor: %v", err)
	}
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	return NewService(repo, issuer, enc, zerolog.Nop())
}

func TestRegister_PatientAndDoctor(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{
		WalletAddress: testWallet,
		Role:          RolePatient,
		FirstName:     "Asha",
		LastName:      "Verma",
		Email:         "asha@example.com",
	})
	if err != nil {
		t.Fatalf("register patient: %v", err)
	}
	if u.WalletAddress != strings.ToLower(testWallet) {
		t.Errorf("expected normalized wallet, got %q", u.WalletAddress)
	}
	if u.Email != "asha@example.com" {
		t.Errorf("expected plaintext email in response, got %q", u.Email)
	}

	// The stored row carries ciphertext, not the plaintext address.
	stored := repo.byWallet[u.WalletAddress]
	if stored.Email == "asha@example.com" {
		t.Error("expected encrypted email at rest")
	}

	_, err = svc.Register(ctx, RegisterInput{
		WalletAddress: "0x1111111111111111111111111111111111111111",
		Role:          RoleDoctor,
		FirstName:     "Ravi",
		Email:         "ravi@example.com",
		LicenseNumber: "MED-4521",
	})
	if err != nil {
		t.Fatalf("register doctor: %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService(t, newMockRepo())
	ctx := context.Background()

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"bad wallet", RegisterInput{WalletAddress: "nope", Role: RolePatient, FirstName: "A", Email: "a@b.c"}},
		{"bad role", RegisterInput{WalletAddress: testWallet, Role: "nurse", FirstName: "A", Email: "a@b.c"}},
		{"missing email", RegisterInput{WalletAddress: testWallet, Role: RolePatient, FirstName: "A"}},
		{"missing name", RegisterInput{WalletAddress: testWallet, Role: RolePatient, Email: "a@b.c"}},
		{"doctor without license", RegisterInput{WalletAddress: testWallet, Role: RoleDoctor, FirstName: "A", Email: "a@b.c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tt.in); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestRegister_DuplicateWallet(t *testing.T) {
	svc := newTestService(t, newMockRepo())
	ctx := context.Background()

	in := RegisterInput{WalletAddress: testWallet, Role: RolePatient, FirstName: "A", Email: "a@b.c"}
	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, in); err != ErrWalletInUse {
		t.Errorf("expected ErrWalletInUse, got %v", err)
	}
}

func TestWalletLogin(t *testing.T) {
	svc := newTestService(t, newMockRepo())
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{
		WalletAddress: testWallet,
		Role:          RolePatient,
		FirstName:     "Asha",
		Email:         "asha@example.com",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Mixed-case wallet logs into the normalized account.
	session, err := svc.WalletLogin(ctx, testWallet, "0xsigned")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Token == "" {
		t.Error("expected token")
	}
	if session.User.Email != "asha@example.com" {
		t.Errorf("expected decrypted email, got %q", session.User.Email)
	}
	if !session.ExpiresAt.After(time.Now()) {
		t.Error("expected future expiry")
	}

	if _, err := svc.WalletLogin(ctx, testWallet, ""); err == nil {
		t.Error("expected error for missing signature")
	}
	if _, err := svc.WalletLogin(ctx, "0x2222222222222222222222222222222222222222", "0xsig"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for unknown wallet, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc := newTestService(t, newMockRepo())
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{
		WalletAddress: testWallet,
		Role:          RolePatient,
		FirstName:     "Asha",
		Email:         "asha@example.com",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, err := svc.UpdateProfile(ctx, u.ID, RegisterInput{LastName: "Verma", Email: "new@example.com"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.LastName != "Verma" || updated.FirstName != "Asha" {
		t.Errorf("unexpected name after update: %q %q", updated.FirstName, updated.LastName)
	}
	if updated.Email != "new@example.com" {
		t.Errorf("expected updated email, got %q", updated.Email)
	}

	got, err := svc.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Email != "new@example.com" {
		t.Errorf("expected new email round-tripped, got %q", got.Email)
	}
}
