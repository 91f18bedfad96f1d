package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/harentsoaR/hospital-api/internal/apperr"
	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/store"
	"github.com/harentsoaR/hospital-api/internal/utils"
)

const systemPasswordLength = 10

type DoctorService struct {
	store      store.Store
	recorder   *Recorder
	notifier   Notifier
	bcryptCost int
	logger     *zap.Logger
	now        func() time.Time
}

func NewDoctorService(s store.Store, recorder *Recorder, notifier Notifier, bcryptCost int, logger *zap.Logger) *DoctorService {
	return &DoctorService{store: s, recorder: recorder, notifier: notifier, bcryptCost: bcryptCost, logger: logger, now: time.Now}
}

type DoctorProfile struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	DOB          time.Time
	Gender       string
	IsConsultant bool
	Unit         string
	ImgURL       string
}

// Register creates an inactive doctor with a generated password that must be
// replaced before the first login.
func (s *DoctorService) Register(ctx context.Context, caller *Identity, in DoctorProfile) (*models.Doctor, error) {
	if err := checkDOB(in.DOB, s.now()); err != nil {
		return nil, err
	}
	repo := s.store.Doctors()
	if taken, err := repo.ExistsByEmail(ctx, in.Email); err != nil {
		return nil, apperr.Internal(err)
	} else if taken {
		return nil, apperr.ErrEmailTaken.WithMessage("doctor with email: " + in.Email + " already exist")
	}
	if taken, err := repo.ExistsByPhone(ctx, in.Phone); err != nil {
		return nil, apperr.Internal(err)
	} else if taken {
		return nil, apperr.ErrPhoneTaken.WithMessage("doctor with phone: " + in.Phone + " already exist")
	}

	password, err := utils.RandomPassword(systemPasswordLength)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	d := &models.Doctor{Password: hash}
	applyDoctorProfile(d, in)
	if err := repo.Create(ctx, d); err != nil {
		return nil, writeErr(err)
	}

	s.recorder.Doctor(ctx, caller.Actor(), ActionCreation, d)
	s.notifier.Notify(ctx, Message{
		Kind:   MessageDoctorCredentials,
		To:     d.Email,
		Name:   d.FullName(),
		Secret: password,
		Body:   "An account has been created for you. Change this password to activate it. Your id is " + d.ID.Hex() + ".",
	})
	return d, nil
}

func applyDoctorProfile(d *models.Doctor, in DoctorProfile) {
	d.FirstName = in.FirstName
	d.LastName = in.LastName
	d.Email = in.Email
	d.Phone = in.Phone
	d.DOB = in.DOB
	d.Gender = in.Gender
	d.IsConsultant = in.IsConsultant
	d.Unit = in.Unit
	if in.ImgURL != "" {
		d.ImgURL = in.ImgURL
	}
}

func (s *DoctorService) Get(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	d, err := s.store.Doctors().GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, apperr.ErrDoctorNotFound)
	}
	return d, nil
}

func (s *DoctorService) Update(ctx context.Context, caller *Identity, id primitive.ObjectID, in DoctorProfile) (*models.Doctor, error) {
	if err := checkDOB(in.DOB, s.now()); err != nil {
		return nil, err
	}
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyDoctorProfile(d, in)
	if err := s.store.Doctors().Update(ctx, d); err != nil {
		return nil, writeErr(err)
	}
	s.recorder.Doctor(ctx, caller.Actor(), ActionModification, d)
	return d, nil
}

// ToggleStatus flips is_active and logs a reactivation or deactivation.
func (s *DoctorService) ToggleStatus(ctx context.Context, caller *Identity, id primitive.ObjectID) (*models.Doctor, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d.IsActive = !d.IsActive
	if err := s.store.Doctors().Update(ctx, d); err != nil {
		return nil, writeErr(err)
	}
	action := ActionDeactivation
	if d.IsActive {
		action = ActionReactivation
	}
	s.recorder.Doctor(ctx, caller.Actor(), action, d)
	return d, nil
}

func (s *DoctorService) List(ctx context.Context, q Query) (*Page[*models.Doctor], error) {
	items, total, err := s.store.Doctors().List(ctx, q.Search, models.ListOptions{
		Sort:  q.Sort,
		Skip:  q.Page.Skip(),
		Limit: q.Page.Limit,
	})
	if err != nil {
		return nil, apperr.From(err)
	}
	return pageOf(items, q.Page, total)
}

func (s *DoctorService) Active(ctx context.Context) ([]*models.Doctor, error) {
	items, err := s.store.Doctors().ListActive(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return items, nil
}

func (s *DoctorService) Logs(ctx context.Context, id primitive.ObjectID) ([]*models.ActivityLog, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.recorder.Entries(ctx, models.SubjectDoctor, id)
}

func (s *DoctorService) Exists(ctx context.Context, email, phone string) (bool, error) {
	var (
		found bool
		err   error
	)
	switch {
	case email != "":
		found, err = s.store.Doctors().ExistsByEmail(ctx, email)
	case phone != "":
		found, err = s.store.Doctors().ExistsByPhone(ctx, phone)
	default:
		return false, apperr.Validation("invalid query params (allowable params: email || phone)")
	}
	if err != nil {
		return false, apperr.Internal(err)
	}
	return found, nil
}
