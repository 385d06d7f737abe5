package app

import (
	"strings"

	"github.com/stagelight/showreel-backend/internal/platform/envutil"
	"github.com/stagelight/showreel-backend/internal/platform/logger"
)

type Config struct {
	Port         string
	AllowOrigins []string
}

func LoadConfig(log *logger.Logger) Config {
	port := envutil.GetEnv("PORT", "8080", log)
	originsRaw := envutil.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:5173", log)
	var origins []string
	for _, o := range strings.Split(originsRaw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return Config{
		Port:         port,
		AllowOrigins: origins,
	}
}
