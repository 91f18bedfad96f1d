package handlers

import (
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/harentsoaR/hospital-api/internal/middleware"
	"github.com/harentsoaR/hospital-api/internal/services"
)

type RouterConfig struct {
	CORSOrigins []string
	Logger      *zap.Logger
}

func init() {
	// Report JSON names rather than Go field names in validation messages.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

// NewRouter wires every endpoint under /api/v1.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(cfg.Logger))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authed := middleware.AuthMiddleware(h.Auth)
	admin := []gin.HandlerFunc{authed, middleware.RequireAdmin()}
	patientOrAdmin := []gin.HandlerFunc{authed, middleware.RequirePatientOrAdmin()}
	doctor := []gin.HandlerFunc{authed, middleware.RequireDoctor()}

	api := r.Group("/api/v1")
	{
		api.POST("/hospital/login", h.HospitalLogin)
	}

	// Patients
	{
		api.POST("/patient/create", h.RegisterPatient)
		api.POST("/patient/verify-account", h.VerifyAccount)
		api.POST("/patient/forgot-password", h.ForgotPassword(services.AccountPatient))
		api.POST("/patient/reset-password", h.ResetPassword(services.AccountPatient))
		api.POST("/patient/login", h.PatientLogin)

		g := api.Group("", admin...)
		g.GET("/patients/all", h.GetPatients)
		g.GET("/patient", h.SearchPatients)
		g.GET("/patient/:id", h.GetPatient)
		g.GET("/patient/logs/:id", h.GetPatientLogs)
		g.POST("/patient/validate", h.ValidatePatient)
		g.PUT("/patient/update/:id", h.UpdatePatient)
	}

	// Doctors
	{
		api.POST("/doctor/login", h.DoctorLogin)
		api.POST("/doctor/forgot-password", h.ForgotPassword(services.AccountDoctor))
		api.POST("/doctor/reset-password", h.ResetPassword(services.AccountDoctor))
		api.PATCH("/doctor/reset-sys-generated-password", h.ChangeSystemPassword)
		api.GET("/doctors/active", authed, middleware.RequireAnyRole(), h.GetActiveDoctors)

		g := api.Group("", admin...)
		g.POST("/doctor/create", h.RegisterDoctor)
		g.GET("/doctors/all", h.GetDoctors)
		g.GET("/doctor/:id", h.GetDoctor)
		g.GET("/doctor/logs/:id", h.GetDoctorLogs)
		g.POST("/doctor/validate", h.ValidateDoctor)
		g.POST("/doctor/change-status/:id", h.ChangeDoctorStatus)
		g.PATCH("/doctor/update/:id", h.UpdateDoctor)
	}

	// Reservations
	{
		g := api.Group("", patientOrAdmin...)
		g.POST("/reservation/create", h.CreateReservation)
		g.GET("/reservations/all", h.GetReservations)
		g.GET("/reservation/:id", h.GetReservation)
		g.GET("/reservation/logs/:id", h.GetReservationLogs)
		g.PUT("/reservation/reschedule/:id", h.RescheduleReservation)

		a := api.Group("", admin...)
		a.PATCH("/reservation/reject/:id", h.CancelReservation)
		a.PATCH("/reservation/pay/:id", h.PayReservation)

		d := api.Group("", doctor...)
		d.PATCH("/reservation/accept/:id", h.AcceptReservation)
		d.PATCH("/reservation/complete/:id", h.CompleteReservation)
	}

	// Products
	{
		g := api.Group("", patientOrAdmin...)
		g.GET("/products/all", h.GetProducts)
		g.GET("/products/manufacturers", h.GetManufacturers)
		g.GET("/product/:id", h.GetProduct)

		a := api.Group("", admin...)
		a.POST("/product/create", h.CreateProduct)
		a.PUT("/product/update/:id", h.UpdateProduct)
		a.PATCH("/product/add/:id", h.AddProductStock)
		a.DELETE("/product/delete/:id", h.DeleteProduct)
	}

	return r
}
