package app

import (
	"strings"

	"ideaboard-backend/internal/logger"
	"ideaboard-backend/internal/utils"
)

type Config struct {
	Port           string
	Mode           string
	AllowedOrigins []string
}

func LoadConfig(log *logger.Logger) Config {
	port := utils.GetEnv("PORT", "8080", log)
	mode := utils.GetEnv("GIN_MODE", "debug", log)

	origins := utils.GetEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173", log)
	var allowed []string
	for _, origin := range strings.Split(origins, ",") {
		if o := strings.TrimSpace(origin); o != "" {
			allowed = append(allowed, o)
		}
	}

	return Config{
		Port:           port,
		Mode:           mode,
		AllowedOrigins: allowed,
	}
}
