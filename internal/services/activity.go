package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/harentsoaR/hospital-api/internal/apperr"
	"github.com/harentsoaR/hospital-api/internal/events"
	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/store"
)

type Action string

const (
	ActionCreated      Action = "CREATED"
	ActionRescheduled  Action = "RESCHEDULED"
	ActionRejected     Action = "REJECTED"
	ActionAccepted     Action = "ACCEPTED"
	ActionCompleted    Action = "COMPLETED"
	ActionPayment      Action = "PAYMENT"
	ActionCreation     Action = "CREATION"
	ActionModification Action = "MODIFICATION"
	ActionVerification Action = "VERIFICATION"
	ActionReactivation Action = "REACTIVATION"
	ActionDeactivation Action = "DEACTIVATION"
)

// Reservation sentences take, in order: actor, patient, doctor, time and
// previous time.
var reservationTemplates = map[Action]string{
	ActionCreated:     "%[1]s created a reservation for %[2]s with Dr. %[3]s scheduled for %[4]s",
	ActionRescheduled: "%[1]s rescheduled the reservation of %[2]s with Dr. %[3]s from %[5]s to %[4]s",
	ActionRejected:    "%[1]s rejected the reservation of %[2]s with Dr. %[3]s scheduled for %[4]s",
	ActionAccepted:    "%[1]s accepted the reservation of %[2]s with Dr. %[3]s scheduled for %[4]s",
	ActionCompleted:   "%[1]s completed the reservation of %[2]s with Dr. %[3]s scheduled for %[4]s",
	ActionPayment:     "%[1]s recorded payment for the reservation of %[2]s with Dr. %[3]s scheduled for %[4]s",
}

const accountTemplate = "%s initiated the %s of %s"

const (
	activityTimeout = 5 * time.Second
	activityLayout  = "Mon, 02 Jan 2006 15:04 MST"
)

// Recorder appends audit entries. Writes are asynchronous and best-effort:
// a failed write is logged and never reaches the caller.
type Recorder struct {
	repo      store.ActivityRepository
	publisher events.Publisher
	logger    *zap.Logger
	loc       *time.Location
	now       func() time.Time
	wg        sync.WaitGroup
}

func NewRecorder(repo store.ActivityRepository, publisher events.Publisher, loc *time.Location, logger *zap.Logger) *Recorder {
	if loc == nil {
		loc = time.Local
	}
	return &Recorder{repo: repo, publisher: publisher, logger: logger, loc: loc, now: time.Now}
}

func (r *Recorder) Reservation(ctx context.Context, actor string, action Action, res *models.ReservationDetail, previous time.Time) {
	tmpl, ok := reservationTemplates[action]
	if !ok {
		r.logger.Error("unknown reservation activity", zap.String("action", string(action)))
		return
	}
	patient, doctor := "unknown patient", "unknown doctor"
	if res.Patient != nil {
		patient = res.Patient.FullName()
	}
	if res.Doctor != nil {
		doctor = res.Doctor.FullName()
	}
	text := fmt.Sprintf(tmpl, actor, patient, doctor, r.format(res.Time), r.format(previous))
	r.record(ctx, models.SubjectReservation, res.ID, text)
}

func (r *Recorder) Patient(ctx context.Context, actor string, action Action, p *models.Patient) {
	r.record(ctx, models.SubjectPatient, p.ID, accountSentence(actor, action, p.FullName()))
}

func (r *Recorder) Doctor(ctx context.Context, actor string, action Action, d *models.Doctor) {
	r.record(ctx, models.SubjectDoctor, d.ID, accountSentence(actor, action, d.FullName()))
}

// Entries returns the trail of one subject, oldest first.
func (r *Recorder) Entries(ctx context.Context, subject models.ActivitySubject, id primitive.ObjectID) ([]*models.ActivityLog, error) {
	entries, err := r.repo.ListBySubject(ctx, subject, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return entries, nil
}

// Wait blocks until every pending write has finished.
func (r *Recorder) Wait() {
	r.wg.Wait()
}

func (r *Recorder) format(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(r.loc).Format(activityLayout)
}

func accountSentence(actor string, action Action, name string) string {
	return fmt.Sprintf(accountTemplate, actor, strings.ToLower(string(action)), name)
}

func (r *Recorder) record(ctx context.Context, subject models.ActivitySubject, id primitive.ObjectID, text string) {
	entry := &models.ActivityLog{Activity: text, Date: r.now(), SubjectID: id}
	ctx = context.WithoutCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, activityTimeout)
		defer cancel()

		if err := r.repo.Append(ctx, subject, entry); err != nil {
			r.logger.Warn("activity log write failed",
				zap.String("subject", string(subject)),
				zap.String("subject_id", id.Hex()),
				zap.Error(err),
			)
			return
		}
		if r.publisher == nil {
			return
		}
		if err := r.publisher.Publish(ctx, subject, entry); err != nil {
			r.logger.Warn("activity event publish failed",
				zap.String("subject", string(subject)),
				zap.Error(err),
			)
		}
	}()
}
