package mongostore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/store"
)

func TestDuplicateField(t *testing.T) {
	cases := map[string]string{
		`E11000 duplicate key error collection: hospital.patients index: email_1 dup key: { email: "a@b.c" }`: "email",
		`E11000 duplicate key error collection: hospital.patients index: phone_1 dup key: { phone: "0800" }`:   "phone",
		`E11000 duplicate key error collection: hospital.reservations index: doctor_time dup key: { ... }`:     "time",
		`something else entirely`: "",
	}
	for msg, want := range cases {
		assert.Equal(t, want, duplicateField(errors.New(msg)), msg)
	}
}

func TestSortDoc(t *testing.T) {
	d, err := sortDoc("-createdAt")
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}, d)

	d, err = sortDoc("_id")
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "_id", Value: 1}}, d)

	_, err = sortDoc("-$where")
	assert.Error(t, err)
}

func TestPatientRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("duplicate email maps to DuplicateError", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: `E11000 duplicate key error collection: hospital.patients index: email_1 dup key: { email: "ada@example.com" }`,
		}))

		err := New(mt.DB).Patients().Create(ctx, &models.Patient{Email: "ada@example.com"})
		field, ok := store.IsDuplicate(err)
		require.True(t, ok, "expected duplicate error, got %v", err)
		assert.Equal(t, "email", field)
	})

	mt.Run("get by id decodes document", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "hospital.patients", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "patient_id", Value: "JHC-004"},
			{Key: "first_name", Value: "Ada"},
			{Key: "last_name", Value: "Obi"},
		}))

		p, err := New(mt.DB).Patients().GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, p.ID)
		assert.Equal(t, "JHC-004", p.PatientID)
		assert.Equal(t, "Ada Obi", p.FullName())
	})

	mt.Run("missing document maps to ErrNotFound", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "hospital.patients", mtest.FirstBatch))

		_, err := New(mt.DB).Patients().GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	mt.Run("next sequence returns incremented counter", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{
			Key:   "value",
			Value: bson.D{{Key: "_id", Value: "patient_id"}, {Key: "seq", Value: int64(7)}},
		}))

		seq, err := New(mt.DB).Patients().NextSequence(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(7), seq)
	})
}

func TestReservationRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("double booking maps to time conflict", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: `E11000 duplicate key error collection: hospital.reservations index: doctor_time dup key: { doctor: ObjectId('x'), time: new Date(1) }`,
		}))

		err := New(mt.DB).Reservations().Create(ctx, &models.Reservation{
			DoctorID: primitive.NewObjectID(),
			Time:     time.Now().Add(time.Hour),
		})
		field, ok := store.IsDuplicate(err)
		require.True(t, ok)
		assert.Equal(t, "time", field)
	})

	mt.Run("status update that matches nothing is stale", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := New(mt.DB).Reservations().UpdateStatus(ctx, primitive.NewObjectID(),
			models.SourcesOf(models.StatusRejected), models.StatusRejected)
		assert.ErrorIs(t, err, store.ErrStale)
	})

	mt.Run("status update that matches succeeds", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		err := New(mt.DB).Reservations().UpdateStatus(ctx, primitive.NewObjectID(),
			[]models.ReservationStatus{models.StatusAwaitingDoctorApproval}, models.StatusOngoing)
		assert.NoError(t, err)
	})

	mt.Run("list reads items and total from facet", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "hospital.reservations", mtest.FirstBatch, bson.D{
			{Key: "items", Value: bson.A{bson.D{
				{Key: "_id", Value: id},
				{Key: "reservation_status", Value: string(models.StatusAwaitingDoctorApproval)},
				{Key: "fee", Value: int64(5000)},
				{Key: "patient_info", Value: bson.D{{Key: "first_name", Value: "Ada"}, {Key: "last_name", Value: "Obi"}}},
			}}},
			{Key: "total", Value: bson.A{bson.D{{Key: "n", Value: int64(11)}}}},
		}))

		items, total, err := New(mt.DB).Reservations().List(ctx,
			models.ReservationFilter{Search: "ada"},
			models.ListOptions{Sort: "-createdAt", Skip: 10, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(11), total)
		require.Len(t, items, 1)
		assert.Equal(t, id, items[0].ID)
		assert.Equal(t, int64(5000), items[0].Fee)
		require.NotNil(t, items[0].Patient)
		assert.Equal(t, "Ada Obi", items[0].Patient.FullName())
	})
}

func TestProductRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("stock below zero is stale", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, "hospital.products", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}),
		)

		err := New(mt.DB).Products().AddQuantity(ctx, primitive.NewObjectID(), -5)
		assert.ErrorIs(t, err, store.ErrStale)
	})

	mt.Run("unknown product is not found", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, "hospital.products", mtest.FirstBatch),
		)

		err := New(mt.DB).Products().AddQuantity(ctx, primitive.NewObjectID(), 3)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestActivityRepoRejectsUnknownSubject(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("unknown subject", func(mt *mtest.T) {
		err := New(mt.DB).Activity().Append(context.Background(), models.ActivitySubject("ward"), &models.ActivityLog{})
		assert.Error(t, err)
	})
}
