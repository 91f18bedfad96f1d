package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/hospital-api/internal/response"
	"github.com/harentsoaR/hospital-api/internal/services"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Token           string `json:"token" binding:"required,len=6"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
}

type VerifyAccountRequest struct {
	Email string `json:"email" binding:"required,email"`
	Token string `json:"token" binding:"required,len=6"`
}

type ChangeSystemPasswordRequest struct {
	ID              string `json:"id" binding:"required"`
	OldPassword     string `json:"old_password" binding:"required"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
}

func (h *Handler) HospitalLogin(c *gin.Context) {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	token, hospital, err := h.Auth.LoginAdmin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Token(c, "Login successful", token, hospital)
}

func (h *Handler) PatientLogin(c *gin.Context) {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	token, patient, err := h.Auth.LoginPatient(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Token(c, "Login successful", token, patient)
}

func (h *Handler) DoctorLogin(c *gin.Context) {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	token, doctor, err := h.Auth.LoginDoctor(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Token(c, "Login successful", token, doctor)
}

// ForgotPassword returns the handler for the given account kind.
func (h *Handler) ForgotPassword(kind services.AccountKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ForgotPasswordRequest
		if err := bind(c, &req); err != nil {
			response.Error(c, err)
			return
		}
		if err := h.Auth.ForgotPassword(c.Request.Context(), kind, req.Email); err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, http.StatusOK, "A password reset code has been sent to "+req.Email, nil)
	}
}

func (h *Handler) ResetPassword(kind services.AccountKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ResetPasswordRequest
		if err := bind(c, &req); err != nil {
			response.Error(c, err)
			return
		}
		if err := h.Auth.ResetPassword(c.Request.Context(), kind, req.Email, req.Token, req.Password); err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, http.StatusOK, "Password reset successful", nil)
	}
}

func (h *Handler) VerifyAccount(c *gin.Context) {
	var req VerifyAccountRequest
	if err := bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.Auth.VerifyPatient(c.Request.Context(), req.Email, req.Token); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Account verified successfully", nil)
}

func (h *Handler) ChangeSystemPassword(c *gin.Context) {
	var req ChangeSystemPasswordRequest
	if err := bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.Auth.ChangeSystemPassword(c.Request.Context(), req.ID, req.OldPassword, req.Password); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Password changed successfully", nil)
}
