package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/hospital-api/internal/response"
	"github.com/harentsoaR/hospital-api/internal/services"
)

type DoctorRequest struct {
	FirstName    string `json:"first_name" binding:"required,min=3"`
	LastName     string `json:"last_name" binding:"required,min=3"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone" binding:"required,min=11,max=15"`
	DOB          string `json:"DOB" binding:"required"`
	Gender       string `json:"gender" binding:"required,oneof=male female"`
	IsConsultant *bool  `json:"is_consultant" binding:"required"`
	Unit         string `json:"unit" binding:"required,oneof=Pediatrics Gynecology 'General Medicine' Surgery"`
	ImgURL       string `json:"img_url"`
}

func (r DoctorRequest) profile() (services.DoctorProfile, error) {
	dob, err := parseDate("DOB", r.DOB)
	if err != nil {
		return services.DoctorProfile{}, err
	}
	return services.DoctorProfile{
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		Phone:        r.Phone,
		DOB:          dob,
		Gender:       r.Gender,
		IsConsultant: *r.IsConsultant,
		Unit:         r.Unit,
		ImgURL:       r.ImgURL,
	}, nil
}

func (h *Handler) RegisterDoctor(c *gin.Context) {
	var req DoctorRequest
	if err := bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	profile, err := req.profile()
	if err != nil {
		response.Error(c, err)
		return
	}

	doctor, err := h.Doctors.Register(c.Request.Context(), caller(c), profile)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, "Doctor registered successfully, login credentials have been sent to "+doctor.Email, doctor)
}

func (h *Handler) GetDoctors(c *gin.Context) {
	page, err := h.Doctors.List(c.Request.Context(), query(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, "Doctors retrieved successfully", page.Items, page.Meta)
}

func (h *Handler) GetActiveDoctors(c *gin.Context) {
	doctors, err := h.Doctors.Active(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Active doctors retrieved successfully", doctors)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	doctor, err := h.Doctors.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Doctor retrieved successfully", doctor)
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req DoctorRequest
	if err := bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	profile, err := req.profile()
	if err != nil {
		response.Error(c, err)
		return
	}

	doctor, err := h.Doctors.Update(c.Request.Context(), caller(c), id, profile)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Doctor updated successfully", doctor)
}

func (h *Handler) ChangeDoctorStatus(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	doctor, err := h.Doctors.ToggleStatus(c.Request.Context(), caller(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	msg := "Doctor deactivated successfully"
	if doctor.IsActive {
		msg = "Doctor activated successfully"
	}
	response.OK(c, http.StatusOK, msg, doctor)
}

func (h *Handler) GetDoctorLogs(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	logs, err := h.Doctors.Logs(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Activity logs retrieved successfully", logs)
}

func (h *Handler) ValidateDoctor(c *gin.Context) {
	q, err := bindExists(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	exists, err := h.Doctors.Exists(c.Request.Context(), q.Email, q.Phone)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Lookup completed", exists)
}
