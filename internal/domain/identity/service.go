package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/92kareeem/healthai/internal/platform/auth"
	"github.com/92kareeem/healthai/internal/platform/phi"
)

// Service manages accounts and wallet-based sessions.
type Service struct {
	repo   Repository
	issuer *auth.TokenIssuer
	enc    *phi.Encryptor
	log    zerolog.Logger
}

// NewService wires the identity service. enc may be nil in development, in
// which case email is stored as plaintext.
func NewService(repo Repository, issuer *auth.TokenIssuer, enc *phi.Encryptor, log zerolog.Logger) *Service {
	return &Service{repo: repo, issuer: issuer, enc: enc, log: log}
}

type RegisterInput struct {
	WalletAddress       string `json:"wallet_address"`
	Role                string `json:"role"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	Email               string `json:"email"`
	Specialization      string `json:"specialization"`
	LicenseNumber       string `json:"license_number"`
	HospitalAffiliation string `json:"hospital_affiliation"`
}

// Register creates an account for a wallet address. Doctors must supply a
// license number.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if !auth.ValidWalletAddress(in.WalletAddress) {
		return nil, fmt.Errorf("invalid wallet address")
	}
	if in.Role != RolePatient && in.Role != RoleDoctor {
		return nil, fmt.Errorf("role must be %s or %s", RolePatient, RoleDoctor)
	}
	if in.Email == "" {
		return nil, ErrEmailRequired
	}
	if in.FirstName == "" && in.LastName == "" {
		return nil, fmt.Errorf("name is required")
	}
	if in.Role == RoleDoctor && in.LicenseNumber == "" {
		return nil, fmt.Errorf("license_number is required for doctors")
	}

	email, err := s.encryptEmail(in.Email)
	if err != nil {
		return nil, fmt.Errorf("encrypt email: %w", err)
	}

	u := &User{
		WalletAddress:       auth.NormalizeWalletAddress(in.WalletAddress),
		Role:                in.Role,
		FirstName:           in.FirstName,
		LastName:            in.LastName,
		Email:               email,
		Specialization:      in.Specialization,
		LicenseNumber:       in.LicenseNumber,
		HospitalAffiliation: in.HospitalAffiliation,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", u.ID.String()).
		Str("role", u.Role).
		Msg("user registered")

	u.Email = in.Email
	return u, nil
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

// WalletLogin verifies the wallet address and signature presence, then issues
// a session token for the registered account.
func (s *Service) WalletLogin(ctx context.Context, wallet, signature string) (*Session, error) {
	if !auth.ValidWalletAddress(wallet) {
		return nil, fmt.Errorf("invalid wallet address")
	}
	if signature == "" {
		return nil, fmt.Errorf("signature is required")
	}

	u, err := s.repo.GetByWallet(ctx, auth.NormalizeWalletAddress(wallet))
	if err != nil {
		return nil, err
	}
	if err := s.decryptEmail(u); err != nil {
		return nil, err
	}

	token, expires, err := s.issuer.Issue(u.ID.String(), u.WalletAddress, u.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.log.Info().
		Str("user_id", u.ID.String()).
		Str("role", u.Role).
		Msg("wallet login")

	return &Session{Token: token, ExpiresAt: expires, User: u}, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.decryptEmail(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) GetByWallet(ctx context.Context, wallet string) (*User, error) {
	u, err := s.repo.GetByWallet(ctx, auth.NormalizeWalletAddress(wallet))
	if err != nil {
		return nil, err
	}
	if err := s.decryptEmail(u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateProfile applies profile changes to an existing account. Wallet address
// and role are immutable.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, in RegisterInput) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.FirstName != "" {
		u.FirstName = in.FirstName
	}
	if in.LastName != "" {
		u.LastName = in.LastName
	}
	if in.Specialization != "" {
		u.Specialization = in.Specialization
	}
	if in.HospitalAffiliation != "" {
		u.HospitalAffiliation = in.HospitalAffiliation
	}
	plain := ""
	if in.Email != "" {
		enc, err := s.encryptEmail(in.Email)
		if err != nil {
			return nil, fmt.Errorf("encrypt email: %w", err)
		}
		u.Email = enc
		plain = in.Email
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	if plain != "" {
		u.Email = plain
	} else if err := s.decryptEmail(u); err != nil {
		return nil, err
	}
	return u, nil
}

// ListPatients returns registered patients with decrypted contact details.
func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.listByRole(ctx, RolePatient, limit, offset)
}

// ListDoctors returns registered doctors with decrypted contact details.
func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.listByRole(ctx, RoleDoctor, limit, offset)
}

func (s *Service) listByRole(ctx context.Context, role string, limit, offset int) ([]*User, int, error) {
	items, total, err := s.repo.ListByRole(ctx, role, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, u := range items {
		if err := s.decryptEmail(u); err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

func (s *Service) encryptEmail(email string) (string, error) {
	if s.enc == nil {
		return email, nil
	}
	return s.enc.Encrypt(email)
}

func (s *Service) decryptEmail(u *User) error {
	if s.enc == nil || u.Email == "" {
		return nil
	}
	plain, err := s.enc.Decrypt(u.Email)
	if err != nil {
		return fmt.Errorf("decrypt email for user %s: %w", u.ID, err)
	}
	u.Email = plain
	return nil
}
