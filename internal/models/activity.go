package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivitySubject selects which of the three audit trails an entry belongs to.
type ActivitySubject string

const (
	SubjectDoctor      ActivitySubject = "doctor"
	SubjectPatient     ActivitySubject = "patient"
	SubjectReservation ActivitySubject = "reservation"
)

type ActivityLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Activity  string             `bson:"activity" json:"activity"`
	Date      time.Time          `bson:"date" json:"date"`
	SubjectID primitive.ObjectID `bson:"subject_id" json:"subject_id"`
}

// ListOptions carries sort and paging for list queries. Sort is a field name,
// optionally prefixed with '-' for descending order.
type ListOptions struct {
	Sort  string
	Skip  int64
	Limit int64
}
