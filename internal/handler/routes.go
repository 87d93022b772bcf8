package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handlers groups every endpoint handler of the API
type Handlers struct {
	Medicine  *MedicineHandler
	User      *UserHandler
	Hydration *HydrationHandler
	Alert     *AlertHandler
	Health    *HealthHandler
	Metrics   http.Handler // optional Prometheus exposition
}

// RegisterRoutes mounts the API on r
func RegisterRoutes(r gin.IRouter, h Handlers) {
	r.GET("/health", h.Health.GetHealth)
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics))
	}

	apiGroup := r.Group("/api")

	medicine := apiGroup.Group("/medicine")
	medicine.POST("/add", h.Medicine.AddMedicine)
	medicine.GET("/today/:userId", h.Medicine.TodaySchedule)
	medicine.GET("/summary/:userId", h.Medicine.Summary)
	medicine.GET("/reminders/:userId", h.Medicine.Reminders)
	medicine.GET("/report/:userId", h.Medicine.Report)
	medicine.GET("/:userId", h.Medicine.ListMedicines)
	medicine.PUT("/toggle/:id/:slot", h.Medicine.ToggleDose)
	medicine.PUT("/reset/:userId", h.Medicine.ResetDay)
	medicine.PUT("/:id", h.Medicine.UpdateMedicine)
	medicine.DELETE("/:id", h.Medicine.DeleteMedicine)

	user := apiGroup.Group("/user")
	user.POST("", h.User.CreateUser)
	user.PUT("/update", h.User.UpdateUser)
	user.POST("/claim/:userId", h.User.ClaimToday)
	user.GET("/claim/:userId", h.User.ClaimStatus)
	user.GET("/:id", h.User.GetUser)
	user.GET("/:id/audit", h.User.AuditTrail)

	apiGroup.POST("/hydration/:userId/glass", h.Hydration.LogGlass)

	alerts := apiGroup.Group("/alerts")
	alerts.GET("/tones/:tone", h.Alert.Tone)
	alerts.GET("/:userId", h.Alert.Drain)
}
