package main

import (
	"fmt"
	"os"
	"runtime"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"icoforge/internal/config"
	"icoforge/internal/controllers"
	"icoforge/internal/logger"
	"icoforge/internal/models"
	"icoforge/internal/opencv"
	"icoforge/internal/resample"
	"icoforge/internal/services"
	"icoforge/internal/shutdown"
	"icoforge/internal/views"
)

const (
	AppName    = "Image to ICO Converter"
	AppID      = "io.icoforge.desktop"
	AppVersion = "1.1.0"
)

// Application wires the window to the conversion services
type Application struct {
	fyneApp fyne.App
	window  fyne.Window
	logger  logger.Logger

	controller *controllers.MainController
	view       *views.MainView

	imageService      *services.ImageService
	conversionService *services.ConversionService
	repository        *models.SessionRepository

	shutdown *shutdown.Manager
}

func main() {
	application, err := NewApplication()
	if err != nil {
		fmt.Fprintf(os.Stderr, "icoforge: %v\n", err)
		os.Exit(1)
	}

	application.Run()
}

// NewApplication creates and initializes the application
func NewApplication() (*Application, error) {
	cfg, cfgPath, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	appLogger := logger.NewConsoleLogger(level)

	registry := resample.NewDefaultRegistry()
	if err := opencv.Register(registry); err != nil {
		return nil, fmt.Errorf("register OpenCV resamplers: %w", err)
	}
	if _, err := registry.Get(cfg.Resampler); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	repo := models.NewSessionRepository(cfg.AllSizes, models.SizesFromInts(cfg.DefaultSizes))
	imageService := services.NewImageService(appLogger, repo)
	conversionService := services.NewConversionService(imageService, registry, repo, appLogger)

	fyneApp := app.NewWithID(AppID)
	fyneApp.SetMetadata(&fyne.AppMetadata{
		ID:      AppID,
		Name:    AppName,
		Version: AppVersion,
	})

	window := fyneApp.NewWindow(AppName)
	window.Resize(fyne.NewSize(cfg.Window.Width, cfg.Window.Height))
	window.CenterOnScreen()

	mainController := controllers.NewMainController(imageService, conversionService, repo, appLogger, controllers.Options{
		Resampler: cfg.Resampler,
		Fit:       cfg.Fit,
		Format:    cfg.Format,
	})
	mainView := views.NewMainView(window, models.StandardSizes, services.SupportedExtensions(), AppVersion)
	mainController.SetMainView(mainView)

	manager := shutdown.NewManager(appLogger)
	manager.Register("conversion service", shutdown.Func(conversionService.Shutdown))
	manager.Register("controller", mainController)

	application := &Application{
		fyneApp:           fyneApp,
		window:            window,
		logger:            appLogger,
		controller:        mainController,
		view:              mainView,
		imageService:      imageService,
		conversionService: conversionService,
		repository:        repo,
		shutdown:          manager,
	}

	appLogger.Info("Application", "initialized", map[string]interface{}{
		"version":    AppVersion,
		"config":     cfgPath,
		"log_level":  level.String(),
		"resampler":  cfg.Resampler,
		"resamplers": registry.Names(),
		"fit":        cfg.Fit,
		"format":     cfg.Format,
		"go_version": runtime.Version(),
	})

	return application, nil
}

// Run shows the window and blocks until the application quits
func (a *Application) Run() {
	a.window.SetOnClosed(a.shutdown.Shutdown)
	a.shutdown.Listen()

	go func() {
		<-a.shutdown.Done()
		fyne.Do(a.fyneApp.Quit)
	}()

	a.window.ShowAndRun()

	a.shutdown.Shutdown()

	stats := a.conversionService.GetConversionStats()
	open, total := opencv.Stats()
	a.logger.Info("Application", "terminated", map[string]interface{}{
		"conversions":      stats.TotalConverted,
		"average_duration": stats.AverageTime.String(),
		"history":          len(a.repository.History()),
		"opencv_open_mats": open,
		"opencv_mats":      total,
	})
}
