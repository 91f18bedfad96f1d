// Package services holds the business rules. Handlers bind and validate the
// request shape; everything that needs the store or the clock lives here.
package services

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/hospital-api/internal/apperr"
	"github.com/harentsoaR/hospital-api/internal/store"
	"github.com/harentsoaR/hospital-api/internal/utils"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	ID   primitive.ObjectID
	Role Role
	Name string
}

func (i *Identity) IsAdmin() bool { return i != nil && i.Role == RoleAdmin }

// Actor is the name used for the caller in activity log sentences.
func (i *Identity) Actor() string {
	if i == nil {
		return "System"
	}
	switch i.Role {
	case RoleAdmin:
		return "Admin"
	case RoleDoctor:
		return "Doctor"
	default:
		return "Patient"
	}
}

// Query is a parsed list request.
type Query struct {
	Search string
	Sort   string
	Page   utils.Page
}

// Page is one page of results plus its pagination meta.
type Page[T any] struct {
	Items []T
	Meta  *utils.Meta
}

// ParseID converts a hex path parameter into an ObjectID.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("invalid id: " + hex)
	}
	return id, nil
}

// lookupErr maps a store read failure to notFound or an internal error.
func lookupErr(err error, notFound *apperr.Error) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	return apperr.Internal(err)
}

// writeErr maps a store write failure, turning unique-index violations into
// the matching conflict error.
func writeErr(err error) error {
	if err == nil {
		return nil
	}
	if field, ok := store.IsDuplicate(err); ok {
		switch field {
		case "email":
			return apperr.ErrEmailTaken
		case "phone":
			return apperr.ErrPhoneTaken
		case "time":
			return apperr.ErrSlotConflict
		case "name":
			return apperr.ErrProductExists
		default:
			return apperr.Conflict(field + " already exist")
		}
	}
	return apperr.From(err)
}

// pageOf builds the meta for total and fails when the page is past the end.
func pageOf[T any](items []T, p utils.Page, total int64) (*Page[T], error) {
	meta, err := utils.NewMeta(p, total)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Meta: meta}, nil
}

func clock(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}
