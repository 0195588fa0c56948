package config

import "go.uber.org/zap"

// setLogger picks the zap logger for the given APP_ENV
func setLogger(env string) (*zap.Logger, error) {
	switch env {
	case "development":
		return zap.NewDevelopment()
	case "local":
		return zap.NewExample(), nil
	default:
		return zap.NewProduction()
	}
}
