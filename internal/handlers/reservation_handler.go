package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/response"
	"github.com/harentsoaR/hospital-api/internal/services"
)

type CreateReservationRequest struct {
	Time string `json:"time" binding:"required"`
	// Patient defaults to the caller when a patient books.
	Patient string `json:"patient"`
	Doctor  string `json:"doctor" binding:"required"`
}

type RescheduleRequest struct {
	Time string `json:"time" binding:"required"`
}

func (h *Handler) CreateReservation(c *gin.Context) {
	var req CreateReservationRequest
	if err := bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	at, err := parseTime("time", req.Time)
	if err != nil {
		response.Error(c, err)
		return
	}

	who := caller(c)
	in := services.CreateReservationInput{Time: at}
	if req.Patient == "" && who.Role == services.RolePatient {
		in.PatientID = who.ID
	} else if in.PatientID, err = services.ParseID(req.Patient); err != nil {
		response.Error(c, err)
		return
	}
	if in.DoctorID, err = services.ParseID(req.Doctor); err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.Reservations.Create(c.Request.Context(), who, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, "Reservation created successfully", res)
}

func (h *Handler) GetReservations(c *gin.Context) {
	page, err := h.Reservations.List(c.Request.Context(), caller(c), services.ReservationQuery{
		Query:  query(c),
		Status: models.ReservationStatus(c.Query("status")),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, "Reservations retrieved successfully", page.Items, page.Meta)
}

func (h *Handler) GetReservation(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	res, err := h.Reservations.Get(c.Request.Context(), caller(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Reservation retrieved successfully", res)
}

func (h *Handler) RescheduleReservation(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req RescheduleRequest
	if err := bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	at, err := parseTime("time", req.Time)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.Reservations.Reschedule(c.Request.Context(), caller(c), id, at)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Reservation rescheduled successfully", res)
}

type transitionFunc func(context.Context, *services.Identity, primitive.ObjectID) (*models.ReservationDetail, error)

func (h *Handler) transition(c *gin.Context, fn transitionFunc, message string) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	res, err := fn(c.Request.Context(), caller(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, message, res)
}

func (h *Handler) CancelReservation(c *gin.Context) {
	h.transition(c, h.Reservations.Cancel, "Reservation cancelled successfully")
}

func (h *Handler) AcceptReservation(c *gin.Context) {
	h.transition(c, h.Reservations.Accept, "Reservation accepted successfully")
}

func (h *Handler) CompleteReservation(c *gin.Context) {
	h.transition(c, h.Reservations.Complete, "Reservation completed successfully")
}

func (h *Handler) PayReservation(c *gin.Context) {
	h.transition(c, h.Reservations.MarkPaid, "Reservation fee marked as paid")
}

func (h *Handler) GetReservationLogs(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	logs, err := h.Reservations.Logs(c.Request.Context(), caller(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Activity logs retrieved successfully", logs)
}
