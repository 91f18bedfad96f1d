package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/store/memstore"
	"github.com/harentsoaR/hospital-api/internal/utils"
)

// captureNotifier records messages instead of sending them.
type captureNotifier struct {
	mu   sync.Mutex
	sent []Message
}

func (n *captureNotifier) Notify(_ context.Context, msg Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func (n *captureNotifier) last(kind MessageKind) (Message, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.sent) - 1; i >= 0; i-- {
		if n.sent[i].Kind == kind {
			return n.sent[i], true
		}
	}
	return Message{}, false
}

type fixture struct {
	store        *memstore.Store
	notifier     *captureNotifier
	recorder     *Recorder
	tokens       *utils.TokenManager
	auth         *AuthService
	patients     *PatientService
	doctors      *DoctorService
	reservations *ReservationService
	products     *ProductService
	now          time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()
	st := memstore.New()
	n := &captureNotifier{}
	rec := NewRecorder(st.Activity(), nil, time.UTC, logger)
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	now := time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)
	clockFn := func() time.Time { return now }

	f := &fixture{
		store:    st,
		notifier: n,
		recorder: rec,
		tokens:   tokens,
		now:      now,
		auth: NewAuthService(st, tokens, n, rec, AuthConfig{
			BcryptCost: bcrypt.MinCost,
			CodeTTL:    24 * time.Hour,
		}, logger),
		patients: NewPatientService(st, rec, n, PatientConfig{
			IDPrefix:   "JHC",
			BcryptCost: bcrypt.MinCost,
			CodeTTL:    24 * time.Hour,
		}, logger),
		doctors: NewDoctorService(st, rec, n, bcrypt.MinCost, logger),
		reservations: NewReservationService(st, rec, n, ReservationConfig{
			BaseFee:        5000,
			ConsultantRate: 2,
			LeadTime:       30 * time.Minute,
			Location:       time.UTC,
		}, logger).WithClock(clockFn),
		products: NewProductService(st),
	}
	var tick time.Duration
	rec.now = func() time.Time {
		tick += time.Millisecond
		return now.Add(tick)
	}
	f.auth.now = clockFn
	f.patients.now = clockFn
	f.doctors.now = clockFn
	return f
}

func (f *fixture) patient(t *testing.T, first, email, phone string) *models.Patient {
	t.Helper()
	p, err := f.patients.Register(context.Background(), RegisterPatientInput{
		Profile: Profile{
			FirstName:  first,
			LastName:   "Okafor",
			Phone:      phone,
			DOB:        time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
			BloodGroup: "0+",
			Genotype:   "AA",
			Gender:     "female",
		},
		Email:    email,
		Password: "secret123",
	})
	require.NoError(t, err)
	return p
}

// doctor registers a doctor and activates it unless active is false.
func (f *fixture) doctor(t *testing.T, first, email, phone string, consultant, active bool) *models.Doctor {
	t.Helper()
	ctx := context.Background()
	d, err := f.doctors.Register(ctx, f.admin(), DoctorProfile{
		FirstName:    first,
		LastName:     "Adeyemi",
		Email:        email,
		Phone:        phone,
		DOB:          time.Date(1980, 5, 5, 0, 0, 0, 0, time.UTC),
		Gender:       "male",
		IsConsultant: consultant,
		Unit:         "Surgery",
	})
	require.NoError(t, err)
	if active {
		d.IsActive = true
		require.NoError(t, f.store.Doctors().Update(ctx, d))
	}
	return d
}

func (f *fixture) admin() *Identity {
	return &Identity{Role: RoleAdmin, Name: "General Hospital"}
}

func asPatient(p *models.Patient) *Identity {
	return &Identity{ID: p.ID, Role: RolePatient, Name: p.FullName()}
}

func asDoctor(d *models.Doctor) *Identity {
	return &Identity{ID: d.ID, Role: RoleDoctor, Name: d.FullName()}
}
