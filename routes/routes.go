package routes

import (
	"github.com/gin-gonic/gin"

	"carbonlens/web/controllers"
	"carbonlens/web/middlewares"
)

func Register(r *gin.Engine, d controllers.Deps) {
	api := r.Group("/api")
	{
		api.GET("/tiers", controllers.ListTiers(d))
		api.POST("/onboarding/start", controllers.StartOnboarding(d))

		onb := api.Group("/onboarding")
		onb.Use(middlewares.Session(d.Config.SessionSecret))
		onb.GET("", controllers.GetOnboarding(d))
		onb.PATCH("/fields", controllers.UpdateOnboardingFields(d))
		onb.POST("/next", controllers.NextOnboardingStep(d))
		onb.POST("/back", controllers.BackOnboardingStep(d))
		onb.POST("/cancel", controllers.CancelOnboarding(d))

		admin := api.Group("/admin")
		admin.Use(middlewares.Admin(d.Config.AdminToken))
		admin.GET("/signups", controllers.ListSignups(d))
		admin.GET("/signups/export", controllers.ExportSignups(d))
	}
}
