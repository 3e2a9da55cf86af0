package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler   *AuthHandler
	UserHandler   *UserHandler
	LikeHandler   *LikeHandler
	JobHandler    *JobHandler
	FileHandler   *FileHandler
	HealthHandler *HealthHandler
}
