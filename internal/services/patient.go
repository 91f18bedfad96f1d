package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/harentsoaR/hospital-api/internal/apperr"
	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/store"
	"github.com/harentsoaR/hospital-api/internal/utils"
)

const maxAgeYears = 100

type PatientConfig struct {
	IDPrefix   string
	BcryptCost int
	CodeTTL    time.Duration
}

type PatientService struct {
	store    store.Store
	recorder *Recorder
	notifier Notifier
	cfg      PatientConfig
	logger   *zap.Logger
	now      func() time.Time
}

func NewPatientService(s store.Store, recorder *Recorder, notifier Notifier, cfg PatientConfig, logger *zap.Logger) *PatientService {
	return &PatientService{store: s, recorder: recorder, notifier: notifier, cfg: cfg, logger: logger, now: time.Now}
}

// Profile is the editable part of a patient record.
type Profile struct {
	FirstName  string
	LastName   string
	Phone      string
	DOB        time.Time
	BloodGroup string
	Genotype   string
	Gender     string
	ImgURL     string
}

type RegisterPatientInput struct {
	Profile
	Email    string
	Password string
}

// checkDOB accepts dates in the past and within the last hundred years.
func checkDOB(dob, now time.Time) error {
	if !dob.Before(now) {
		return apperr.Validation("Date of birth must be in the past")
	}
	if !dob.After(now.AddDate(-maxAgeYears, 0, 0)) {
		return apperr.Validation("Date of birth must be within the last 100 years")
	}
	return nil
}

// FormatPatientID renders a counter value as PREFIX-NNN.
func FormatPatientID(prefix string, seq int64) string {
	return fmt.Sprintf("%s-%03d", prefix, seq)
}

func (s *PatientService) Register(ctx context.Context, in RegisterPatientInput) (*models.Patient, error) {
	if err := checkDOB(in.DOB, s.now()); err != nil {
		return nil, err
	}
	repo := s.store.Patients()
	if taken, err := repo.ExistsByEmail(ctx, in.Email); err != nil {
		return nil, apperr.Internal(err)
	} else if taken {
		return nil, apperr.ErrEmailTaken.WithMessage("patient with email: " + in.Email + " already exist")
	}
	if taken, err := repo.ExistsByPhone(ctx, in.Phone); err != nil {
		return nil, apperr.Internal(err)
	} else if taken {
		return nil, apperr.ErrPhoneTaken.WithMessage("patient with phone: " + in.Phone + " already exist")
	}

	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	code, err := utils.RandomDigits(resetCodeDigits)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	codeHash, err := utils.HashPassword(code, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	seq, err := repo.NextSequence(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	expires := s.now().Add(s.cfg.CodeTTL)

	p := &models.Patient{
		PatientID:      FormatPatientID(s.cfg.IDPrefix, seq),
		Email:          in.Email,
		Password:       hash,
		VerifyToken:    codeHash,
		TokenExpiresIn: &expires,
	}
	applyProfile(p, in.Profile)
	if err := repo.Create(ctx, p); err != nil {
		return nil, writeErr(err)
	}

	s.recorder.Patient(ctx, "Patient", ActionCreation, p)
	s.notifier.Notify(ctx, Message{
		Kind:   MessageWelcome,
		To:     p.Email,
		Name:   p.FullName(),
		Secret: code,
		Body:   "Welcome. Use this code to verify your account. Your patient id is " + p.PatientID + ".",
	})
	return p, nil
}

func applyProfile(p *models.Patient, in Profile) {
	p.FirstName = in.FirstName
	p.LastName = in.LastName
	p.Phone = in.Phone
	p.DOB = in.DOB
	p.BloodGroup = in.BloodGroup
	p.Genotype = in.Genotype
	p.Gender = in.Gender
	if in.ImgURL != "" {
		p.ImgURL = in.ImgURL
	}
}

func (s *PatientService) Get(ctx context.Context, id primitive.ObjectID) (*models.Patient, error) {
	p, err := s.store.Patients().GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, apperr.ErrPatientNotFound)
	}
	return p, nil
}

func (s *PatientService) Update(ctx context.Context, caller *Identity, id primitive.ObjectID, in Profile) (*models.Patient, error) {
	if err := checkDOB(in.DOB, s.now()); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyProfile(p, in)
	if err := s.store.Patients().Update(ctx, p); err != nil {
		return nil, writeErr(err)
	}
	s.recorder.Patient(ctx, caller.Actor(), ActionModification, p)
	return p, nil
}

func (s *PatientService) List(ctx context.Context, q Query) (*Page[*models.Patient], error) {
	items, total, err := s.store.Patients().List(ctx, q.Search, models.ListOptions{
		Sort:  q.Sort,
		Skip:  q.Page.Skip(),
		Limit: q.Page.Limit,
	})
	if err != nil {
		return nil, apperr.From(err)
	}
	return pageOf(items, q.Page, total)
}

// Search returns every match without paging.
func (s *PatientService) Search(ctx context.Context, search string) ([]*models.Patient, error) {
	items, _, err := s.store.Patients().List(ctx, search, models.ListOptions{})
	if err != nil {
		return nil, apperr.From(err)
	}
	return items, nil
}

func (s *PatientService) Logs(ctx context.Context, id primitive.ObjectID) ([]*models.ActivityLog, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.recorder.Entries(ctx, models.SubjectPatient, id)
}

// Exists reports whether email, or phone when email is empty, is registered.
func (s *PatientService) Exists(ctx context.Context, email, phone string) (bool, error) {
	var (
		found bool
		err   error
	)
	switch {
	case email != "":
		found, err = s.store.Patients().ExistsByEmail(ctx, email)
	case phone != "":
		found, err = s.store.Patients().ExistsByPhone(ctx, phone)
	default:
		return false, apperr.Validation("invalid query params (allowable params: email || phone)")
	}
	if err != nil {
		return false, apperr.Internal(err)
	}
	return found, nil
}
