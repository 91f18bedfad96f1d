package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/hospital-api/internal/apperr"
	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/utils"
)

func TestCreateReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.patient(t, "Ada", "ada@example.com", "08011111111")
	d := f.doctor(t, "Bola", "bola@example.com", "08022222222", false, true)

	res, err := f.reservations.Create(ctx, f.admin(), CreateReservationInput{
		Time:      f.now.Add(40 * time.Minute),
		PatientID: p.ID,
		DoctorID:  d.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), res.Fee)
	assert.Equal(t, models.StatusAwaitingDoctorApproval, res.Status)
	assert.Equal(t, models.FeeUnpaid, res.FeeStatus)
	assert.Equal(t, "Ada Okafor", res.Patient.FullName())

	f.recorder.Wait()
	logs, err := f.reservations.Logs(ctx, f.admin(), res.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Activity, "Admin created a reservation for Ada Okafor with Dr. Bola Adeyemi")

	_, ok := f.notifier.last(MessageReservationCreated)
	assert.True(t, ok)
}

func TestConsultantFee(t *testing.T) {
	f := newFixture(t)
	p := f.patient(t, "Ada", "ada@example.com", "08011111111")
	d := f.doctor(t, "Bola", "bola@example.com", "08022222222", true, true)

	res, err := f.reservations.Create(context.Background(), asPatient(p), CreateReservationInput{
		Time:      f.now.Add(2 * time.Hour),
		PatientID: p.ID,
		DoctorID:  d.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10000), res.Fee)

	f.recorder.Wait()
	logs, err := f.reservations.Logs(context.Background(), asPatient(p), res.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Activity, "Patient created")
}

func TestCreateReservationRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.patient(t, "Ada", "ada@example.com", "08011111111")
	other := f.patient(t, "Chi", "chi@example.com", "08033333333")
	active := f.doctor(t, "Bola", "bola@example.com", "08022222222", false, true)
	inactive := f.doctor(t, "Dayo", "dayo@example.com", "08044444444", false, false)

	cases := []struct {
		name   string
		caller *Identity
		in     CreateReservationInput
		want   *apperr.Error
	}{
		{"under lead time", f.admin(), CreateReservationInput{f.now.Add(29 * time.Minute), p.ID, active.ID}, apperr.ErrLeadTimeViolation},
		{"in the past", f.admin(), CreateReservationInput{f.now.Add(-48 * time.Hour), p.ID, active.ID}, apperr.ErrLeadTimeViolation},
		{"unknown doctor", f.admin(), CreateReservationInput{f.now.Add(time.Hour), p.ID, primitive.NewObjectID()}, apperr.ErrDoctorNotFound},
		{"inactive doctor", f.admin(), CreateReservationInput{f.now.Add(time.Hour), p.ID, inactive.ID}, apperr.ErrDoctorInactive},
		{"unknown patient", f.admin(), CreateReservationInput{f.now.Add(time.Hour), primitive.NewObjectID(), active.ID}, apperr.ErrPatientNotFound},
		{"booking for someone else", asPatient(other), CreateReservationInput{f.now.Add(time.Hour), p.ID, active.ID}, apperr.ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.reservations.Create(ctx, tc.caller, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := f.reservations.Create(ctx, f.admin(), CreateReservationInput{f.now.Add(30 * time.Minute), p.ID, active.ID})
	assert.NoError(t, err, "exactly the lead time is allowed")
}

func TestCheckTimeDayRule(t *testing.T) {
	f := newFixture(t)
	f.reservations.cfg.LeadTime = 0

	assert.NoError(t, f.reservations.checkTime(f.now))
	assert.ErrorIs(t, f.reservations.checkTime(f.now.Add(-time.Second)), apperr.ErrLeadTimeViolation)

	f.reservations.cfg.LeadTime = -48 * time.Hour
	assert.NoError(t, f.reservations.checkTime(f.now))
	assert.ErrorIs(t, f.reservations.checkTime(f.now.Add(-25*time.Hour)), apperr.ErrPastDateViolation)

	lagos := time.FixedZone("WAT", 3600)
	assert.True(t, dayOf(f.now.Add(15*time.Hour), lagos).After(dayOf(f.now, lagos)))
}

func TestDoubleBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.patient(t, "Ada", "ada@example.com", "08011111111")
	q := f.patient(t, "Chi", "chi@example.com", "08033333333")
	d := f.doctor(t, "Bola", "bola@example.com", "08022222222", false, true)
	at := f.now.Add(3 * time.Hour)

	_, err := f.reservations.Create(ctx, f.admin(), CreateReservationInput{at, p.ID, d.ID})
	require.NoError(t, err)

	_, err = f.reservations.Create(ctx, f.admin(), CreateReservationInput{at, q.ID, d.ID})
	assert.ErrorIs(t, err, apperr.ErrSlotConflict)
}

func TestReschedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.patient(t, "Ada", "ada@example.com", "08011111111")
	q := f.patient(t, "Chi", "chi@example.com", "08033333333")
	d := f.doctor(t, "Bola", "bola@example.com", "08022222222", false, true)
	t1, t2, t3 := f.now.Add(2*time.Hour), f.now.Add(3*time.Hour), f.now.Add(4*time.Hour)

	first, err := f.reservations.Create(ctx, f.admin(), CreateReservationInput{t1, p.ID, d.ID})
	require.NoError(t, err)
	_, err = f.reservations.Create(ctx, f.admin(), CreateReservationInput{t2, q.ID, d.ID})
	require.NoError(t, err)

	t.Run("conflict leaves time unchanged", func(t *testing.T) {
		_, err := f.reservations.Reschedule(ctx, f.admin(), first.ID, t2)
		assert.ErrorIs(t, err, apperr.ErrSlotConflict)

		got, err := f.store.Reservations().GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.True(t, got.Time.Equal(t1))
	})

	t.Run("lead time applies to the new time", func(t *testing.T) {
		_, err := f.reservations.Reschedule(ctx, f.admin(), first.ID, f.now.Add(10*time.Minute))
		assert.ErrorIs(t, err, apperr.ErrLeadTimeViolation)
	})

	t.Run("other patients cannot reschedule", func(t *testing.T) {
		_, err := f.reservations.Reschedule(ctx, asPatient(q), first.ID, t3)
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("moves in place", func(t *testing.T) {
		moved, err := f.reservations.Reschedule(ctx, asPatient(p), first.ID, t3)
		require.NoError(t, err)
		assert.Equal(t, first.ID, moved.ID)
		assert.True(t, moved.Time.Equal(t3))

		f.recorder.Wait()
		logs, err := f.reservations.Logs(ctx, f.admin(), first.ID)
		require.NoError(t, err)
		require.Len(t, logs, 2)
		assert.Contains(t, logs[1].Activity, "rescheduled")
		assert.Contains(t, logs[1].Activity, t1.Format(activityLayout))
	})

	t.Run("rejected cannot be rescheduled", func(t *testing.T) {
		_, err := f.reservations.Cancel(ctx, f.admin(), first.ID)
		require.NoError(t, err)

		_, err = f.reservations.Reschedule(ctx, f.admin(), first.ID, f.now.Add(6*time.Hour))
		assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
	})

	t.Run("missing reservation", func(t *testing.T) {
		_, err := f.reservations.Reschedule(ctx, f.admin(), primitive.NewObjectID(), t3)
		assert.ErrorIs(t, err, apperr.ErrReservationNotFound)
	})
}

func TestLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.patient(t, "Ada", "ada@example.com", "08011111111")
	d := f.doctor(t, "Bola", "bola@example.com", "08022222222", false, true)
	other := f.doctor(t, "Dayo", "dayo@example.com", "08044444444", false, true)

	res, err := f.reservations.Create(ctx, f.admin(), CreateReservationInput{f.now.Add(time.Hour), p.ID, d.ID})
	require.NoError(t, err)

	_, err = f.reservations.Accept(ctx, asDoctor(other), res.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.reservations.Complete(ctx, asDoctor(d), res.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	accepted, err := f.reservations.Accept(ctx, asDoctor(d), res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOngoing, accepted.Status)

	_, err = f.reservations.Cancel(ctx, f.admin(), res.ID)
	require.ErrorIs(t, err, apperr.ErrInvalidTransition)
	assert.Equal(t, "cannot reject an ongoing reservation", apperr.From(err).Message)

	done, err := f.reservations.Complete(ctx, asDoctor(d), res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)

	_, err = f.reservations.Cancel(ctx, f.admin(), res.ID)
	require.ErrorIs(t, err, apperr.ErrInvalidTransition)
	assert.Equal(t, "cannot reject an already completed reservation", apperr.From(err).Message)

	paid, err := f.reservations.MarkPaid(ctx, f.admin(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FeePaid, paid.FeeStatus)
	_, err = f.reservations.MarkPaid(ctx, f.admin(), res.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	f.recorder.Wait()
	logs, err := f.reservations.Logs(ctx, f.admin(), res.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 4)
}

func TestCancelTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.patient(t, "Ada", "ada@example.com", "08011111111")
	d := f.doctor(t, "Bola", "bola@example.com", "08022222222", false, true)

	res, err := f.reservations.Create(ctx, f.admin(), CreateReservationInput{f.now.Add(time.Hour), p.ID, d.ID})
	require.NoError(t, err)

	cancelled, err := f.reservations.Cancel(ctx, f.admin(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, cancelled.Status)

	_, err = f.reservations.Cancel(ctx, f.admin(), res.ID)
	require.ErrorIs(t, err, apperr.ErrInvalidTransition)
	assert.Equal(t, "this reservation has already been rejected", apperr.From(err).Message)

	_, err = f.reservations.Cancel(ctx, f.admin(), primitive.NewObjectID())
	assert.ErrorIs(t, err, apperr.ErrReservationNotFound)
}

func TestListReservations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.patient(t, "Ada", "ada@example.com", "08011111111")
	q := f.patient(t, "Chi", "chi@example.com", "08033333333")
	d := f.doctor(t, "Bola", "bola@example.com", "08022222222", false, true)

	for i := 0; i < 12; i++ {
		patient := p.ID
		if i%3 == 0 {
			patient = q.ID
		}
		_, err := f.reservations.Create(ctx, f.admin(), CreateReservationInput{
			Time:      f.now.Add(time.Duration(i+1) * time.Hour),
			PatientID: patient,
			DoctorID:  d.ID,
		})
		require.NoError(t, err)
	}

	page, err := f.reservations.List(ctx, f.admin(), ReservationQuery{Query: Query{Page: utils.NewPage("3", "5")}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Meta.LastPage)
	assert.Equal(t, int64(12), page.Meta.Total)
	assert.Len(t, page.Items, 2)

	_, err = f.reservations.List(ctx, f.admin(), ReservationQuery{Query: Query{Page: utils.NewPage("4", "5")}})
	assert.ErrorIs(t, err, apperr.ErrPageOutOfRange)

	own, err := f.reservations.List(ctx, asPatient(q), ReservationQuery{Query: Query{Page: utils.NewPage("", "")}})
	require.NoError(t, err)
	assert.Equal(t, int64(4), own.Meta.Total)
	for _, item := range own.Items {
		assert.Equal(t, q.ID, item.PatientID)
	}

	found, err := f.reservations.List(ctx, f.admin(), ReservationQuery{Query: Query{Search: "chi", Sort: "time", Page: utils.NewPage("1", "2")}})
	require.NoError(t, err)
	assert.Equal(t, int64(4), found.Meta.Total)
	require.Len(t, found.Items, 2)
	assert.True(t, found.Items[0].Time.Before(found.Items[1].Time))

	none, err := f.reservations.List(ctx, f.admin(), ReservationQuery{Status: models.StatusCompleted, Query: Query{Page: utils.NewPage("1", "")}})
	require.NoError(t, err)
	assert.Equal(t, int64(0), none.Meta.LastPage)
	assert.Empty(t, none.Items)

	_, err = f.reservations.List(ctx, f.admin(), ReservationQuery{Status: "cancelled", Query: Query{Page: utils.NewPage("1", "")}})
	assert.ErrorIs(t, err, apperr.Validation(""))

	_, err = f.reservations.Get(ctx, asPatient(p), own.Items[0].ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = f.reservations.Get(ctx, asPatient(q), own.Items[0].ID)
	assert.NoError(t, err)
}
