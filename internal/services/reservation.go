package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/harentsoaR/hospital-api/internal/apperr"
	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/store"
)

type ReservationConfig struct {
	BaseFee        int64
	ConsultantRate int64
	LeadTime       time.Duration
	// Location decides which calendar day "today" is for the past-date rule.
	Location *time.Location
}

type ReservationService struct {
	store    store.Store
	recorder *Recorder
	notifier Notifier
	cfg      ReservationConfig
	logger   *zap.Logger
	now      func() time.Time
}

func NewReservationService(s store.Store, recorder *Recorder, notifier Notifier, cfg ReservationConfig, logger *zap.Logger) *ReservationService {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &ReservationService{
		store:    s,
		recorder: recorder,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *ReservationService) WithClock(now func() time.Time) *ReservationService {
	s.now = clock(now)
	return s
}

// Fee is the consultation fee charged for a doctor.
func (s *ReservationService) Fee(d *models.Doctor) int64 {
	if d.IsConsultant {
		return s.cfg.BaseFee * s.cfg.ConsultantRate
	}
	return s.cfg.BaseFee
}

// checkTime applies the lead-time rule and then the coarser calendar-day rule.
func (s *ReservationService) checkTime(t time.Time) error {
	now := s.now()
	if t.Before(now.Add(s.cfg.LeadTime)) {
		return apperr.ErrLeadTimeViolation
	}
	if dayOf(t, s.cfg.Location).Before(dayOf(now, s.cfg.Location)) {
		return apperr.ErrPastDateViolation
	}
	return nil
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

type CreateReservationInput struct {
	Time      time.Time
	PatientID primitive.ObjectID
	DoctorID  primitive.ObjectID
}

func (s *ReservationService) Create(ctx context.Context, caller *Identity, in CreateReservationInput) (*models.ReservationDetail, error) {
	if err := s.checkTime(in.Time); err != nil {
		return nil, err
	}
	if caller.Role == RolePatient && caller.ID != in.PatientID {
		return nil, apperr.ErrForbidden.WithMessage("patients can only book reservations for themselves")
	}
	patient, err := s.store.Patients().GetByID(ctx, in.PatientID)
	if err != nil {
		return nil, lookupErr(err, apperr.ErrPatientNotFound)
	}
	doctor, err := s.store.Doctors().GetByID(ctx, in.DoctorID)
	if err != nil {
		return nil, lookupErr(err, apperr.ErrDoctorNotFound)
	}
	if !doctor.IsActive {
		return nil, apperr.ErrDoctorInactive
	}
	if err := s.ensureFree(ctx, doctor.ID, in.Time); err != nil {
		return nil, err
	}

	res := &models.Reservation{
		Time:      in.Time,
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Fee:       s.Fee(doctor),
		Status:    models.StatusAwaitingDoctorApproval,
		FeeStatus: models.FeeUnpaid,
	}
	if err := s.store.Reservations().Create(ctx, res); err != nil {
		return nil, writeErr(err)
	}

	detail := &models.ReservationDetail{
		Reservation: *res,
		Patient:     summaryOfPatient(patient),
		Doctor:      summaryOfDoctor(doctor),
	}
	s.recorder.Reservation(ctx, caller.Actor(), ActionCreated, detail, time.Time{})
	s.notifier.Notify(ctx, Message{
		Kind: MessageReservationCreated,
		To:   patient.Email,
		Name: patient.FullName(),
		Body: "Your reservation with Dr. " + doctor.FullName() + " is awaiting the doctor's approval.",
	})
	return detail, nil
}

// ensureFree fails with a slot conflict when the doctor already holds t.
func (s *ReservationService) ensureFree(ctx context.Context, doctorID primitive.ObjectID, t time.Time) error {
	_, err := s.store.Reservations().FindByDoctorAndTime(ctx, doctorID, t)
	switch {
	case err == nil:
		return apperr.ErrSlotConflict
	case errors.Is(err, store.ErrNotFound):
		return nil
	default:
		return apperr.Internal(err)
	}
}

// Reschedule moves a reservation to a new time, keeping its identity.
func (s *ReservationService) Reschedule(ctx context.Context, caller *Identity, id primitive.ObjectID, newTime time.Time) (*models.ReservationDetail, error) {
	res, err := s.store.Reservations().GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, apperr.ErrReservationNotFound)
	}
	if err := s.checkOwner(caller, res); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, res.DoctorID, newTime); err != nil {
		return nil, err
	}
	if res.Status == models.StatusRejected {
		return nil, apperr.ErrInvalidTransition.WithMessage("cannot reschedule a reservation that has been rejected")
	}
	if err := s.checkTime(newTime); err != nil {
		return nil, err
	}

	previous := res.Time
	if err := s.store.Reservations().UpdateTime(ctx, id, newTime); err != nil {
		if errors.Is(err, store.ErrStale) {
			return nil, apperr.ErrInvalidTransition.WithMessage("cannot reschedule a reservation that has been rejected")
		}
		return nil, writeErr(err)
	}

	detail, err := s.detail(ctx, id)
	if err != nil {
		return nil, err
	}
	s.recorder.Reservation(ctx, caller.Actor(), ActionRescheduled, detail, previous)
	s.notifyPatient(ctx, detail, MessageReservationChanged, "Your reservation has been rescheduled.")
	return detail, nil
}

var cancelMessages = map[models.ReservationStatus]string{
	models.StatusRejected:  "this reservation has already been rejected",
	models.StatusOngoing:   "cannot reject an ongoing reservation",
	models.StatusCompleted: "cannot reject an already completed reservation",
}

// Cancel rejects a reservation that has not started.
func (s *ReservationService) Cancel(ctx context.Context, caller *Identity, id primitive.ObjectID) (*models.ReservationDetail, error) {
	detail, err := s.transition(ctx, id, models.StatusRejected, cancelMessages)
	if err != nil {
		return nil, err
	}
	s.recorder.Reservation(ctx, caller.Actor(), ActionRejected, detail, time.Time{})
	s.notifyPatient(ctx, detail, MessageReservationRejected, "Your reservation has been cancelled.")
	return detail, nil
}

// Accept moves a reservation awaiting approval to ongoing. Only the booked
// doctor may accept.
func (s *ReservationService) Accept(ctx context.Context, caller *Identity, id primitive.ObjectID) (*models.ReservationDetail, error) {
	if err := s.checkDoctor(ctx, caller, id); err != nil {
		return nil, err
	}
	detail, err := s.transition(ctx, id, models.StatusOngoing, nil)
	if err != nil {
		return nil, err
	}
	s.recorder.Reservation(ctx, caller.Actor(), ActionAccepted, detail, time.Time{})
	return detail, nil
}

func (s *ReservationService) Complete(ctx context.Context, caller *Identity, id primitive.ObjectID) (*models.ReservationDetail, error) {
	if err := s.checkDoctor(ctx, caller, id); err != nil {
		return nil, err
	}
	detail, err := s.transition(ctx, id, models.StatusCompleted, nil)
	if err != nil {
		return nil, err
	}
	s.recorder.Reservation(ctx, caller.Actor(), ActionCompleted, detail, time.Time{})
	return detail, nil
}

// MarkPaid records that the fee has been settled.
func (s *ReservationService) MarkPaid(ctx context.Context, caller *Identity, id primitive.ObjectID) (*models.ReservationDetail, error) {
	err := s.store.Reservations().UpdateFeeStatus(ctx, id, models.FeeUnpaid, models.FeePaid)
	if errors.Is(err, store.ErrStale) {
		if _, getErr := s.store.Reservations().GetByID(ctx, id); getErr != nil {
			return nil, lookupErr(getErr, apperr.ErrReservationNotFound)
		}
		return nil, apperr.ErrInvalidTransition.WithMessage("reservation fee has already been paid")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	detail, err := s.detail(ctx, id)
	if err != nil {
		return nil, err
	}
	s.recorder.Reservation(ctx, caller.Actor(), ActionPayment, detail, time.Time{})
	return detail, nil
}

// transition applies the state machine with a conditional update so that a
// concurrent change between the read and the write is reported, not lost.
func (s *ReservationService) transition(ctx context.Context, id primitive.ObjectID, next models.ReservationStatus, messages map[models.ReservationStatus]string) (*models.ReservationDetail, error) {
	res, err := s.store.Reservations().GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, apperr.ErrReservationNotFound)
	}
	if !res.Status.CanTransitionTo(next) {
		return nil, invalidTransition(res.Status, next, messages)
	}
	err = s.store.Reservations().UpdateStatus(ctx, id, models.SourcesOf(next), next)
	if errors.Is(err, store.ErrStale) {
		current, getErr := s.store.Reservations().GetByID(ctx, id)
		if getErr != nil {
			return nil, lookupErr(getErr, apperr.ErrReservationNotFound)
		}
		return nil, invalidTransition(current.Status, next, messages)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return s.detail(ctx, id)
}

func invalidTransition(from, to models.ReservationStatus, messages map[models.ReservationStatus]string) error {
	if msg, ok := messages[from]; ok {
		return apperr.ErrInvalidTransition.WithMessage(msg)
	}
	return apperr.ErrInvalidTransition.WithMessage("cannot move a reservation from " + string(from) + " to " + string(to))
}

func (s *ReservationService) checkOwner(caller *Identity, res *models.Reservation) error {
	if caller.Role == RolePatient && caller.ID != res.PatientID {
		return apperr.ErrForbidden
	}
	return nil
}

func (s *ReservationService) checkDoctor(ctx context.Context, caller *Identity, id primitive.ObjectID) error {
	res, err := s.store.Reservations().GetByID(ctx, id)
	if err != nil {
		return lookupErr(err, apperr.ErrReservationNotFound)
	}
	if caller.Role != RoleDoctor || caller.ID != res.DoctorID {
		return apperr.ErrForbidden.WithMessage("only the booked doctor can update this reservation")
	}
	return nil
}

func (s *ReservationService) detail(ctx context.Context, id primitive.ObjectID) (*models.ReservationDetail, error) {
	d, err := s.store.Reservations().GetDetail(ctx, id)
	if err != nil {
		return nil, lookupErr(err, apperr.ErrReservationNotFound)
	}
	return d, nil
}

func (s *ReservationService) Get(ctx context.Context, caller *Identity, id primitive.ObjectID) (*models.ReservationDetail, error) {
	d, err := s.detail(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(caller, &d.Reservation); err != nil {
		return nil, err
	}
	return d, nil
}

type ReservationQuery struct {
	Query
	Status models.ReservationStatus
}

// List pages reservations. Patients only ever see their own.
func (s *ReservationService) List(ctx context.Context, caller *Identity, q ReservationQuery) (*Page[*models.ReservationDetail], error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, apperr.Validation("invalid reservation status: " + string(q.Status))
	}
	filter := models.ReservationFilter{Status: q.Status, Search: q.Search}
	if caller.Role == RolePatient {
		filter.PatientID = caller.ID
	}
	items, total, err := s.store.Reservations().List(ctx, filter, models.ListOptions{
		Sort:  q.Sort,
		Skip:  q.Page.Skip(),
		Limit: q.Page.Limit,
	})
	if err != nil {
		return nil, apperr.From(err)
	}
	return pageOf(items, q.Page, total)
}

func (s *ReservationService) Logs(ctx context.Context, caller *Identity, id primitive.ObjectID) ([]*models.ActivityLog, error) {
	res, err := s.store.Reservations().GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, apperr.ErrReservationNotFound)
	}
	if err := s.checkOwner(caller, res); err != nil {
		return nil, err
	}
	return s.recorder.Entries(ctx, models.SubjectReservation, id)
}

func (s *ReservationService) notifyPatient(ctx context.Context, d *models.ReservationDetail, kind MessageKind, body string) {
	if d.Patient == nil {
		s.logger.Warn("reservation has no patient to notify", zap.String("reservation_id", d.ID.Hex()))
		return
	}
	s.notifier.Notify(ctx, Message{Kind: kind, To: d.Patient.Email, Name: d.Patient.FullName(), Body: body})
}

func summaryOfPatient(p *models.Patient) *models.PersonSummary {
	return &models.PersonSummary{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName, Email: p.Email}
}

func summaryOfDoctor(d *models.Doctor) *models.PersonSummary {
	return &models.PersonSummary{ID: d.ID, FirstName: d.FirstName, LastName: d.LastName, Email: d.Email}
}
