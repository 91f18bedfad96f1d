package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/hospital-api/internal/apperr"
	"github.com/harentsoaR/hospital-api/internal/response"
	"github.com/harentsoaR/hospital-api/internal/services"
)

type PatientProfileRequest struct {
	FirstName  string `json:"first_name" binding:"required,min=3"`
	LastName   string `json:"last_name" binding:"required,min=3"`
	Phone      string `json:"phone" binding:"required,min=11,max=15"`
	DOB        string `json:"DOB" binding:"required"`
	BloodGroup string `json:"blood_group" binding:"required,oneof=A+ B+ AB+ 0+ A- B- AB- 0-"`
	Genotype   string `json:"genotype" binding:"required,oneof=AA AS SS"`
	Gender     string `json:"gender" binding:"required,oneof=male female"`
	ImgURL     string `json:"img_url"`
}

func (r PatientProfileRequest) profile() (services.Profile, error) {
	dob, err := parseDate("DOB", r.DOB)
	if err != nil {
		return services.Profile{}, err
	}
	return services.Profile{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Phone:      r.Phone,
		DOB:        dob,
		BloodGroup: r.BloodGroup,
		Genotype:   r.Genotype,
		Gender:     r.Gender,
		ImgURL:     r.ImgURL,
	}, nil
}

type RegisterPatientRequest struct {
	PatientProfileRequest
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
}

// ExistsQuery is the query string of the email/phone availability checks.
type ExistsQuery struct {
	Email string `form:"email" binding:"omitempty,email"`
	Phone string `form:"phone" binding:"omitempty,min=11,max=15"`
}

func bindExists(c *gin.Context) (ExistsQuery, error) {
	var q ExistsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return q, apperr.Validation("email must be a valid email and phone must be 11 to 15 characters")
	}
	return q, nil
}

func (h *Handler) RegisterPatient(c *gin.Context) {
	var req RegisterPatientRequest
	if err := bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	profile, err := req.profile()
	if err != nil {
		response.Error(c, err)
		return
	}

	patient, err := h.Patients.Register(c.Request.Context(), services.RegisterPatientInput{
		Profile:  profile,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, "Patient registered successfully, check your email to verify your account", patient)
}

func (h *Handler) GetPatients(c *gin.Context) {
	page, err := h.Patients.List(c.Request.Context(), query(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, "Patients retrieved successfully", page.Items, page.Meta)
}

func (h *Handler) SearchPatients(c *gin.Context) {
	patients, err := h.Patients.Search(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Patients retrieved successfully", patients)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	patient, err := h.Patients.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Patient retrieved successfully", patient)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req PatientProfileRequest
	if err := bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	profile, err := req.profile()
	if err != nil {
		response.Error(c, err)
		return
	}

	patient, err := h.Patients.Update(c.Request.Context(), caller(c), id, profile)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Patient updated successfully", patient)
}

func (h *Handler) GetPatientLogs(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	logs, err := h.Patients.Logs(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Activity logs retrieved successfully", logs)
}

func (h *Handler) ValidatePatient(c *gin.Context) {
	q, err := bindExists(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	exists, err := h.Patients.Exists(c.Request.Context(), q.Email, q.Phone)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Lookup completed", exists)
}
