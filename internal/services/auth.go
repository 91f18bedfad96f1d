package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/harentsoaR/hospital-api/internal/apperr"
	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/store"
	"github.com/harentsoaR/hospital-api/internal/utils"
)

const resetCodeDigits = 6

// AccountKind selects the collection used by the shared credential flows.
type AccountKind string

const (
	AccountPatient AccountKind = "patient"
	AccountDoctor  AccountKind = "doctor"
)

type AuthConfig struct {
	BcryptCost int
	CodeTTL    time.Duration
}

type AuthService struct {
	store    store.Store
	tokens   *utils.TokenManager
	notifier Notifier
	recorder *Recorder
	cfg      AuthConfig
	logger   *zap.Logger
	now      func() time.Time
}

func NewAuthService(s store.Store, tokens *utils.TokenManager, notifier Notifier, recorder *Recorder, cfg AuthConfig, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:    s,
		tokens:   tokens,
		notifier: notifier,
		recorder: recorder,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *AuthService) LoginPatient(ctx context.Context, email, password string) (string, *models.Patient, error) {
	p, err := s.store.Patients().GetByEmail(ctx, email)
	if err != nil {
		return "", nil, lookupErr(err, apperr.ErrInvalidCredentials)
	}
	if !utils.CheckPasswordHash(password, p.Password) {
		return "", nil, apperr.ErrInvalidCredentials
	}
	token, err := s.issue(p.ID.Hex())
	if err != nil {
		return "", nil, err
	}
	return token, p, nil
}

// LoginDoctor refuses doctors that still hold their system generated
// password before looking at the supplied password.
func (s *AuthService) LoginDoctor(ctx context.Context, email, password string) (string, *models.Doctor, error) {
	d, err := s.store.Doctors().GetByEmail(ctx, email)
	if err != nil {
		return "", nil, lookupErr(err, apperr.ErrInvalidCredentials)
	}
	if !d.HasChangedSystemGeneratedPassword {
		return "", nil, apperr.ErrPasswordChangeRequired
	}
	if !utils.CheckPasswordHash(password, d.Password) {
		return "", nil, apperr.ErrInvalidCredentials
	}
	token, err := s.issue(d.ID.Hex())
	if err != nil {
		return "", nil, err
	}
	return token, d, nil
}

func (s *AuthService) LoginAdmin(ctx context.Context, email, password string) (string, *models.Hospital, error) {
	h, err := s.store.Hospitals().GetByEmail(ctx, email)
	if err != nil {
		return "", nil, lookupErr(err, apperr.ErrInvalidCredentials)
	}
	if !utils.CheckPasswordHash(password, h.Password) {
		return "", nil, apperr.ErrInvalidCredentials
	}
	token, err := s.issue(h.ID.Hex())
	if err != nil {
		return "", nil, err
	}
	return token, h, nil
}

func (s *AuthService) issue(subject string) (string, error) {
	token, err := s.tokens.GenerateJWT(subject)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return token, nil
}

// Authenticate validates a bearer token and resolves its subject against
// hospitals, patients and doctors in that order.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, apperr.ErrUnauthorized
	}
	subject, err := s.tokens.ValidateJWT(token)
	if err != nil {
		return nil, apperr.ErrInvalidToken
	}
	id, err := ParseID(subject)
	if err != nil {
		return nil, apperr.ErrInvalidToken
	}

	h, err := s.store.Hospitals().GetByID(ctx, id)
	switch {
	case err == nil:
		return &Identity{ID: h.ID, Role: RoleAdmin, Name: h.Name}, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, apperr.Internal(err)
	}

	p, err := s.store.Patients().GetByID(ctx, id)
	switch {
	case err == nil:
		return &Identity{ID: p.ID, Role: RolePatient, Name: p.FullName()}, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, apperr.Internal(err)
	}

	d, err := s.store.Doctors().GetByID(ctx, id)
	switch {
	case err == nil:
		return &Identity{ID: d.ID, Role: RoleDoctor, Name: d.FullName()}, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, apperr.Internal(err)
	}
	return nil, apperr.ErrForbidden
}

// newCode returns a fresh numeric code, its hash and its expiry.
func (s *AuthService) newCode() (code, hash string, expires time.Time, err error) {
	code, err = utils.RandomDigits(resetCodeDigits)
	if err != nil {
		return "", "", time.Time{}, apperr.Internal(err)
	}
	hash, err = utils.HashPassword(code, s.cfg.BcryptCost)
	if err != nil {
		return "", "", time.Time{}, apperr.Internal(err)
	}
	return code, hash, s.now().Add(s.cfg.CodeTTL), nil
}

// checkCode enforces expiry before comparing the presented code.
func (s *AuthService) checkCode(code, hash string, expires *time.Time) error {
	if hash == "" || expires == nil || s.now().After(*expires) {
		return apperr.ErrTokenExpired
	}
	if !utils.CheckPasswordHash(code, hash) {
		return apperr.ErrInvalidCode
	}
	return nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, kind AccountKind, email string) error {
	code, hash, expires, err := s.newCode()
	if err != nil {
		return err
	}
	msg := Message{Kind: MessagePasswordReset, To: email, Secret: code,
		Body: "Use this code to reset your password. It expires in " + s.cfg.CodeTTL.String() + "."}

	switch kind {
	case AccountPatient:
		p, err := s.store.Patients().GetByEmail(ctx, email)
		if err != nil {
			return lookupErr(err, apperr.ErrAccountNotFound)
		}
		p.VerifyToken, p.TokenExpiresIn = hash, &expires
		if err := s.store.Patients().Update(ctx, p); err != nil {
			return writeErr(err)
		}
		msg.Name = p.FullName()
	case AccountDoctor:
		d, err := s.store.Doctors().GetByEmail(ctx, email)
		if err != nil {
			return lookupErr(err, apperr.ErrAccountNotFound)
		}
		d.VerifyToken, d.TokenExpiresIn = hash, &expires
		if err := s.store.Doctors().Update(ctx, d); err != nil {
			return writeErr(err)
		}
		msg.Name = d.FullName()
	default:
		return apperr.Validation("unknown account kind")
	}

	s.notifier.Notify(ctx, msg)
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, kind AccountKind, email, code, password string) error {
	newHash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return apperr.Internal(err)
	}

	switch kind {
	case AccountPatient:
		p, err := s.store.Patients().GetByEmail(ctx, email)
		if err != nil {
			return lookupErr(err, apperr.ErrAccountNotFound)
		}
		if err := s.checkCode(code, p.VerifyToken, p.TokenExpiresIn); err != nil {
			return err
		}
		p.Password, p.VerifyToken, p.TokenExpiresIn = newHash, "", nil
		return writeErr(s.store.Patients().Update(ctx, p))
	case AccountDoctor:
		d, err := s.store.Doctors().GetByEmail(ctx, email)
		if err != nil {
			return lookupErr(err, apperr.ErrAccountNotFound)
		}
		if err := s.checkCode(code, d.VerifyToken, d.TokenExpiresIn); err != nil {
			return err
		}
		d.Password, d.VerifyToken, d.TokenExpiresIn = newHash, "", nil
		return writeErr(s.store.Doctors().Update(ctx, d))
	}
	return apperr.Validation("unknown account kind")
}

// VerifyPatient confirms a newly registered account with the code issued at
// registration.
func (s *AuthService) VerifyPatient(ctx context.Context, email, code string) error {
	p, err := s.store.Patients().GetByEmail(ctx, email)
	if err != nil {
		return lookupErr(err, apperr.ErrPatientNotFound)
	}
	if p.IsVerified {
		return apperr.ErrAlreadyVerified
	}
	if err := s.checkCode(code, p.VerifyToken, p.TokenExpiresIn); err != nil {
		return err
	}
	p.IsVerified, p.VerifyToken, p.TokenExpiresIn = true, "", nil
	if err := s.store.Patients().Update(ctx, p); err != nil {
		return writeErr(err)
	}
	s.recorder.Patient(ctx, "Patient", ActionVerification, p)
	return nil
}

// ChangeSystemPassword replaces a doctor's generated password and activates
// the account.
func (s *AuthService) ChangeSystemPassword(ctx context.Context, doctorID, oldPassword, newPassword string) error {
	id, err := ParseID(doctorID)
	if err != nil {
		return err
	}
	d, err := s.store.Doctors().GetByID(ctx, id)
	if err != nil {
		return lookupErr(err, apperr.ErrDoctorNotFound)
	}
	if d.HasChangedSystemGeneratedPassword {
		return apperr.ErrAlreadyRotated
	}
	if !utils.CheckPasswordHash(oldPassword, d.Password) {
		return apperr.ErrInvalidCredentials.WithMessage("old password is invalid")
	}
	hash, err := utils.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return apperr.Internal(err)
	}
	d.Password = hash
	d.IsVerified = true
	d.IsActive = true
	d.HasChangedSystemGeneratedPassword = true
	if err := s.store.Doctors().Update(ctx, d); err != nil {
		return writeErr(err)
	}
	s.recorder.Doctor(ctx, "Doctor", ActionVerification, d)
	return nil
}

// CreateAdmin stores a hospital account. It backs the create-admin command.
func (s *AuthService) CreateAdmin(ctx context.Context, h *models.Hospital, password string) error {
	if len(password) < 6 {
		return apperr.Validation("password must be at least 6 characters")
	}
	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return apperr.Internal(err)
	}
	h.Password = hash
	if err := s.store.Hospitals().Create(ctx, h); err != nil {
		return writeErr(err)
	}
	s.logger.Info("hospital account created", zap.String("hospital_id", h.ID.Hex()), zap.String("email", h.Email))
	return nil
}
