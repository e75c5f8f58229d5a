package main

import (
	"log"

	"ctfcore/config"
	"ctfcore/database"
	_ "ctfcore/docs"
	"ctfcore/middleware"
	v1 "ctfcore/routes/v1"
	"ctfcore/services"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title CTF Core API
// @version 1.0
// @description Flag submission, scoring and solve-tracking API for CTF competitions
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	config.LoadConfig()
	database.InitDB()
	database.InitCache()

	store := database.NewSubmissionStore()
	resolver := services.NewHTTPInstanceResolver(config.InstancerAddress)
	instance := services.NewInstanceService(resolver, store)
	submissions := services.NewSubmissionService(store, instance, services.LoadCompetitionWindow, services.MaxTries, log.Default())

	r := gin.Default()

	v1.Register(r, submissions, instance)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	middleware.UpdateSystemMetrics()

	log.Printf("Starting server on :%s", config.ServerPort)
	if err := r.Run(":" + config.ServerPort); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
