package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"fittrack/internal/config"
)

// CORS middleware для настройки Cross-Origin Resource Sharing
// Принимает конфигурацию CORS и настраивает middleware соответственно
func CORS(cfg *config.CORSConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     cfg.AllowedHeaders,
		ExposeHeaders:    cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	// В debug-режиме без списка источников разрешаем все,
	// иначе только явно указанные (пустой список блокирует все).
	switch {
	case gin.Mode() == gin.DebugMode && len(cfg.AllowedOrigins) == 0:
		corsConfig.AllowAllOrigins = true
	case len(cfg.AllowedOrigins) > 0:
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	default:
		corsConfig.AllowOriginFunc = func(string) bool { return false }
	}

	return cors.New(corsConfig)
}
