package app

import (
	"context"
	"fmt"
	"time"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	if s.app.extractor == nil {
		status.Status = "degraded"
		status.Components["extractor"] = "missing"
	} else {
		status.Components["extractor"] = "ok"
	}

	if s.app.store != nil {
		if modules, err := s.app.store.Modules(); err != nil {
			status.Status = "degraded"
			status.Components["store"] = fmt.Sprintf("error: %v", err)
		} else {
			status.Components["store"] = fmt.Sprintf("ok (%d modules)", len(modules))
		}
	} else if s.app.Config.DB.Enabled {
		status.Status = "degraded"
		status.Components["store"] = "missing but enabled in config"
	}

	return status
}
