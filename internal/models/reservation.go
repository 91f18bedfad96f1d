package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReservationStatus string

const (
	StatusPending                ReservationStatus = "pending"
	StatusAwaitingDoctorApproval ReservationStatus = "awaiting doctor approval"
	StatusRejected               ReservationStatus = "rejected"
	StatusOngoing                ReservationStatus = "ongoing"
	StatusCompleted              ReservationStatus = "completed"
)

type FeeStatus string

const (
	FeePaid   FeeStatus = "paid"
	FeeUnpaid FeeStatus = "unpaid"
)

var transitions = map[ReservationStatus][]ReservationStatus{
	StatusPending:                {StatusRejected},
	StatusAwaitingDoctorApproval: {StatusRejected, StatusOngoing},
	StatusOngoing:                {StatusCompleted},
}

func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAwaitingDoctorApproval, StatusRejected, StatusOngoing, StatusCompleted:
		return true
	}
	return false
}

func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SourcesOf lists every status from which next is reachable. Used to guard
// conditional updates in the store.
func SourcesOf(next ReservationStatus) []ReservationStatus {
	var out []ReservationStatus
	for from, tos := range transitions {
		for _, to := range tos {
			if to == next {
				out = append(out, from)
			}
		}
	}
	return out
}

type Reservation struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Time      time.Time          `bson:"time" json:"time"`
	PatientID primitive.ObjectID `bson:"patient" json:"patient"`
	DoctorID  primitive.ObjectID `bson:"doctor" json:"doctor"`
	Fee       int64              `bson:"fee" json:"fee"`
	Status    ReservationStatus  `bson:"reservation_status" json:"reservation_status"`
	FeeStatus FeeStatus          `bson:"fee_status" json:"fee_status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PersonSummary is the populated view of a patient or doctor embedded in
// reservation responses.
type PersonSummary struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	FirstName string             `bson:"first_name" json:"first_name"`
	LastName  string             `bson:"last_name" json:"last_name"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
}

func (p PersonSummary) FullName() string { return p.FirstName + " " + p.LastName }

// ReservationDetail is a reservation with its patient and doctor resolved.
type ReservationDetail struct {
	Reservation `bson:",inline"`
	Patient     *PersonSummary `bson:"patient_info,omitempty" json:"patient_info,omitempty"`
	Doctor      *PersonSummary `bson:"doctor_info,omitempty" json:"doctor_info,omitempty"`
}

type ReservationFilter struct {
	Status    ReservationStatus
	PatientID primitive.ObjectID
	Search    string
}
