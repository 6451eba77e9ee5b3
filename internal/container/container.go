package container

import (
	"context"

	"safenest/config"
	app "safenest/internal/application"
	"safenest/internal/domain/port"
	"safenest/internal/infrastructure/knowledge"
	"safenest/internal/infrastructure/vision"
	"safenest/internal/logger"
)

type Container struct {
	Knowledge         *knowledge.KnowledgeBase
	Pipeline          *app.InspectionPipeline
	UserService       *app.UserService
	InspectionService *app.InspectionService
}

// New собирает сервисы приложения по конфигурации.
// Бэкенды подключаются в порядке Gemini, Remote, Contour; синтетический всегда остаётся запасным.
func New(ctx context.Context, cfg *config.Config, sessions port.SessionRepository) *Container {
	kb := knowledge.Load(cfg.Knowledge.Path)
	logger.Info("knowledge base loaded", "codes", kb.Len())

	detector := app.NewDefectDetector(Backends(ctx, cfg), vision.NewSyntheticBackend(), cfg.Pipeline.BackendTimeout)
	pipeline := app.NewInspectionPipeline(
		detector,
		app.NewComplianceChecker(kb),
		app.NewReportBuilder(),
		cfg.Pipeline.Concurrency,
	)

	userService := app.NewUserService(sessions)
	inspectionService := app.NewInspectionService(userService, pipeline)

	return &Container{
		Knowledge:         kb,
		Pipeline:          pipeline,
		UserService:       userService,
		InspectionService: inspectionService,
	}
}

// Backends возвращает настроенные бэкенды анализа. Ошибка создания бэкенда не фатальна.
func Backends(ctx context.Context, cfg *config.Config) []port.AnalysisBackend {
	var backends []port.AnalysisBackend

	if cfg.Gemini.Project != "" {
		client, err := vision.NewGeminiClient(ctx, cfg.Gemini.Project, cfg.Gemini.Location)
		if err != nil {
			logger.Warn("gemini backend disabled", "error", err)
		} else {
			backends = append(backends, vision.NewGeminiBackend(client, cfg.Gemini.Model))
		}
	}

	if cfg.Remote.Endpoint != "" {
		backends = append(backends, vision.NewRemoteBackend(cfg.Remote.Endpoint, cfg.Remote.APIKey, nil))
	}

	if cfg.Contour.Enabled {
		backends = append(backends, vision.NewContourBackend())
	}

	names := make([]string, 0, len(backends))
	for _, b := range backends {
		names = append(names, b.Name())
	}
	logger.Info("analysis backends configured", "backends", names)

	return backends
}
