// @title           Campus API
// @version         1.0
// @description     API студенческой платформы: лайки, вакансии и файлы (документация Swagger).
// @host            localhost:8000
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization

package main

import (
	_ "campus_backend/docs"
	"campus_backend/internal/app"
)

func main() {
	app.Run()
}
