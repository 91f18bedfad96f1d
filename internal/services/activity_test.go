package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/store/memstore"
)

type failingRepo struct{}

func (failingRepo) Append(context.Context, models.ActivitySubject, *models.ActivityLog) error {
	return errors.New("disk full")
}

func (failingRepo) ListBySubject(context.Context, models.ActivitySubject, primitive.ObjectID) ([]*models.ActivityLog, error) {
	return nil, nil
}

type mockPublisher struct {
	mock.Mock
	mu sync.Mutex
}

func (m *mockPublisher) Publish(ctx context.Context, subject models.ActivitySubject, entry *models.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Called(ctx, subject, entry).Error(0)
}

func TestRecorderSwallowsWriteFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	rec := NewRecorder(failingRepo{}, nil, time.UTC, zap.New(core))

	rec.Patient(context.Background(), "Admin", ActionModification, &models.Patient{ID: primitive.NewObjectID(), FirstName: "Ada", LastName: "Obi"})
	rec.Wait()

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "activity log write failed", logs.All()[0].Message)
}

func TestRecorderPublishesAfterWrite(t *testing.T) {
	st := memstore.New()
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, models.SubjectReservation, mock.AnythingOfType("*models.ActivityLog")).Return(nil).Once()
	rec := NewRecorder(st.Activity(), pub, time.UTC, zap.NewNop())

	at := time.Date(2030, 1, 2, 14, 30, 0, 0, time.UTC)
	detail := &models.ReservationDetail{
		Reservation: models.Reservation{ID: primitive.NewObjectID(), Time: at},
		Patient:     &models.PersonSummary{FirstName: "Ada", LastName: "Obi"},
		Doctor:      &models.PersonSummary{FirstName: "Bola", LastName: "Ade"},
	}
	rec.Reservation(context.Background(), "Admin", ActionRejected, detail, time.Time{})
	rec.Wait()

	pub.AssertExpectations(t)
	entries, err := rec.Entries(context.Background(), models.SubjectReservation, detail.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Admin rejected the reservation of Ada Obi with Dr. Bola Ade scheduled for Wed, 02 Jan 2030 14:30 UTC", entries[0].Activity)
}

func TestRecorderSurvivesCancelledRequest(t *testing.T) {
	st := memstore.New()
	rec := NewRecorder(st.Activity(), nil, time.UTC, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := &models.Doctor{ID: primitive.NewObjectID(), FirstName: "Bola", LastName: "Ade"}
	rec.Doctor(ctx, "Admin", ActionCreation, d)
	rec.Wait()

	entries, err := rec.Entries(context.Background(), models.SubjectDoctor, d.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRescheduleSentenceShowsBothTimes(t *testing.T) {
	st := memstore.New()
	rec := NewRecorder(st.Activity(), nil, time.UTC, zap.NewNop())
	from := time.Date(2030, 1, 2, 9, 0, 0, 0, time.UTC)
	to := from.Add(2 * time.Hour)

	detail := &models.ReservationDetail{Reservation: models.Reservation{ID: primitive.NewObjectID(), Time: to}}
	rec.Reservation(context.Background(), "Patient", ActionRescheduled, detail, from)
	rec.Wait()

	entries, err := rec.Entries(context.Background(), models.SubjectReservation, detail.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t,
		"Patient rescheduled the reservation of unknown patient with Dr. unknown doctor from Wed, 02 Jan 2030 09:00 UTC to Wed, 02 Jan 2030 11:00 UTC",
		entries[0].Activity)
}
