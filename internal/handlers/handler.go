package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/hospital-api/internal/apperr"
	"github.com/harentsoaR/hospital-api/internal/middleware"
	"github.com/harentsoaR/hospital-api/internal/services"
	"github.com/harentsoaR/hospital-api/internal/utils"
)

// Handler groups the services behind the HTTP endpoints.
type Handler struct {
	Auth         *services.AuthService
	Patients     *services.PatientService
	Doctors      *services.DoctorService
	Reservations *services.ReservationService
	Products     *services.ProductService
}

func NewHandler(auth *services.AuthService, patients *services.PatientService, doctors *services.DoctorService,
	reservations *services.ReservationService, products *services.ProductService) *Handler {
	return &Handler{
		Auth:         auth,
		Patients:     patients,
		Doctors:      doctors,
		Reservations: reservations,
		Products:     products,
	}
}

// bind decodes the JSON body into req and turns binding failures into a
// validation error naming the offending fields.
func bind(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fieldMessage(fe))
			}
			return apperr.Validation(strings.Join(msgs, "; "))
		}
		return apperr.Validation("invalid request body")
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, fe.Param())
	case "gt", "gte":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "numeric":
		return field + " must contain only digits"
	default:
		return field + " is invalid"
	}
}

func idParam(c *gin.Context) (primitive.ObjectID, error) {
	return services.ParseID(c.Param("id"))
}

func query(c *gin.Context) services.Query {
	return services.Query{
		Search: strings.TrimSpace(c.Query("search")),
		Sort:   c.Query("sort"),
		Page:   utils.NewPage(c.Query("page"), c.Query("limit")),
	}
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(field, s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.Validation(field + " must be a date (YYYY-MM-DD)")
}

func parseTime(field, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, apperr.Validation(field + " must be an RFC 3339 timestamp")
	}
	return t, nil
}

func caller(c *gin.Context) *services.Identity {
	return middleware.Identity(c)
}
