package controllers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"icoforge/internal/logger"
	"icoforge/internal/models"
	"icoforge/internal/services"
	"icoforge/internal/views"
)

const (
	msgNoInput = "Please select an input file."
	msgNoSizes = "Please select at least one icon size."

	titleReplace = "Replace File?"
)

// View is the part of the window the controller drives. Methods that
// change widgets must be safe to call from any goroutine.
type View interface {
	SetHandlers(views.Handlers)
	SourcePath() string
	SetSourcePath(path string)
	SetSource(source *models.SourceImage)
	SetSizeSelection(allSizes bool, selected []models.IconSize)
	SetIndividualSizesEnabled(enabled bool)
	SetConverting(active bool)
	UpdateStatus(status string)
	ChooseSource(callback func(path string, err error))
	ChooseOutput(suggested string, callback func(path string, err error))
	Confirm(title, message string, callback func(bool))
	ShowWarning(message string)
	ShowError(err error)
	ShowInfo(title, message string)
	ShowAbout()
}

// Options are the conversion settings that are not exposed as widgets.
type Options struct {
	Resampler string
	Fit       string
	Format    string
}

// MainController runs the browse, select sizes and convert workflow
type MainController struct {
	imageService      *services.ImageService
	conversionService *services.ConversionService
	repository        *models.SessionRepository
	logger            logger.Logger
	options           Options

	mainView View

	converting atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMainController creates a new main controller
func NewMainController(
	imageService *services.ImageService,
	conversionService *services.ConversionService,
	repo *models.SessionRepository,
	log logger.Logger,
	options Options,
) *MainController {
	ctx, cancel := context.WithCancel(context.Background())
	return &MainController{
		imageService:      imageService,
		conversionService: conversionService,
		repository:        repo,
		logger:            log,
		options:           options,
		ctx:               ctx,
		cancel:            cancel,
	}
}

// SetMainView associates the main view with this controller and shows
// the initial size selection
func (mc *MainController) SetMainView(view View) {
	mc.mainView = view

	view.SetHandlers(views.Handlers{
		Browse:          mc.Browse,
		Convert:         mc.Convert,
		About:           mc.About,
		AllSizesChanged: mc.ToggleAllSizes,
		SizeChanged:     mc.ToggleSize,
		SourceChanged:   mc.SourceChanged,
		FilesDropped:    mc.DropFiles,
	})

	var selected []models.IconSize
	for _, size := range models.StandardSizes {
		if mc.repository.IsSizeSelected(size) {
			selected = append(selected, size)
		}
	}
	view.SetSizeSelection(mc.repository.AllSizes(), selected)
}

// Browse asks for a source image
func (mc *MainController) Browse() {
	mc.mainView.ChooseSource(func(path string, err error) {
		if err != nil {
			mc.handleError("File selection failed", err)
			return
		}
		if path == "" {
			return
		}
		mc.SelectSource(path)
	})
}

// SelectSource fills the input field with path and loads it for the preview.
func (mc *MainController) SelectSource(path string) {
	mc.mainView.SetSourcePath(path)
	mc.mainView.UpdateStatus("Loading " + filepath.Base(path) + "...")

	mc.wg.Add(1)
	go func() {
		defer mc.wg.Done()
		mc.loadPreview(path)
	}()
}

func (mc *MainController) loadPreview(path string) {
	source, err := mc.imageService.Load(mc.ctx, path)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		// Convert reports the error again; the preview only notes it
		mc.logger.Warning("MainController", "preview load failed", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		mc.mainView.SetSource(nil)
		mc.mainView.UpdateStatus("Cannot preview " + filepath.Base(path))
		return
	}

	mc.mainView.SetSource(source)
	mc.mainView.UpdateStatus("Ready")
}

// SourceChanged drops a preview that no longer matches the typed path
func (mc *MainController) SourceChanged(path string) {
	path = strings.TrimSpace(path)
	current := mc.repository.Source()
	if current == nil || current.Path == path {
		return
	}
	mc.repository.ClearSource()
	mc.mainView.SetSource(nil)
}

// DropFiles selects the first dropped file with a supported extension
func (mc *MainController) DropFiles(paths []string) {
	for _, path := range paths {
		if services.IsSupported(path) {
			mc.SelectSource(path)
			return
		}
	}
	if len(paths) > 0 {
		mc.mainView.ShowWarning(fmt.Sprintf("Unsupported file type: %s", filepath.Base(paths[0])))
	}
}

// ToggleAllSizes handles the "All Sizes" checkbox; the individual boxes
// are only editable while it is off
func (mc *MainController) ToggleAllSizes(checked bool) {
	mc.repository.SetAllSizes(checked)
	mc.mainView.SetIndividualSizesEnabled(!checked)
}

func (mc *MainController) ToggleSize(size models.IconSize, checked bool) {
	mc.repository.SetSizeSelected(size, checked)
}

// Convert validates the input, asks for the output file and starts the
// conversion in the background
func (mc *MainController) Convert() {
	if mc.converting.Load() || mc.conversionService.IsConverting() {
		return
	}

	input := strings.TrimSpace(mc.mainView.SourcePath())
	if input == "" {
		mc.mainView.ShowWarning(msgNoInput)
		return
	}

	mc.mainView.ChooseOutput(suggestOutputPath(input), func(chosen string, err error) {
		if err != nil {
			mc.handleError("File selection failed", err)
			return
		}
		if chosen == "" {
			return
		}

		output := withICOExtension(chosen)
		if output != chosen {
			removeIfEmpty(chosen)
			// the save dialog only confirmed overwriting chosen, not output
			if fileExists(output) {
				msg := fmt.Sprintf("%s already exists. Do you want to replace it?", filepath.Base(output))
				mc.mainView.Confirm(titleReplace, msg, func(replace bool) {
					if replace {
						mc.convertTo(input, output)
					}
				})
				return
			}
		}

		mc.convertTo(input, output)
	})
}

func (mc *MainController) convertTo(input, output string) {
	sizes := mc.repository.SelectedSizes()
	if len(sizes) == 0 {
		removeIfEmpty(output)
		mc.mainView.ShowWarning(msgNoSizes)
		return
	}
	mc.startConversion(input, output, sizes)
}

func (mc *MainController) startConversion(input, output string, sizes []models.IconSize) {
	if !mc.converting.CompareAndSwap(false, true) {
		return
	}
	mc.mainView.SetConverting(true)
	mc.mainView.UpdateStatus(fmt.Sprintf("Converting %s...", filepath.Base(input)))

	mc.wg.Add(1)
	go func() {
		defer mc.wg.Done()
		defer func() {
			mc.converting.Store(false)
			mc.mainView.SetConverting(false)
		}()

		result, err := mc.conversionService.Convert(mc.ctx, models.ConversionRequest{
			SourcePath: input,
			OutputPath: output,
			Sizes:      sizes,
			Resampler:  mc.options.Resampler,
			Fit:        mc.options.Fit,
			Format:     mc.options.Format,
		})
		if err != nil {
			// the save dialog creates the file before we write it
			removeIfEmpty(output)
			if errors.Is(err, context.Canceled) {
				mc.mainView.UpdateStatus("Conversion cancelled")
				return
			}
			mc.mainView.UpdateStatus("Conversion failed")
			mc.handleError("Conversion failed", err)
			return
		}

		if source := mc.repository.SourceFor(input); source != nil {
			mc.mainView.SetSource(source)
		}
		mc.mainView.UpdateStatus(resultStatus(result))
		mc.mainView.ShowInfo("Success", fmt.Sprintf("Successfully converted %s to %s", input, output))
	}()
}

// About shows the About dialog
func (mc *MainController) About() {
	mc.mainView.ShowAbout()
}

// handleError logs err and shows it in one dialog
func (mc *MainController) handleError(title string, err error) {
	mc.logger.Error("MainController", err, map[string]interface{}{
		logger.ActionField: title,
	})
	if mc.mainView != nil {
		mc.mainView.ShowError(err)
	}
}

// Wait blocks until background loads and conversions have finished.
func (mc *MainController) Wait() {
	mc.wg.Wait()
}

// Shutdown cancels background work and waits for it
func (mc *MainController) Shutdown() {
	mc.cancel()
	mc.conversionService.CancelConversion()
	mc.wg.Wait()
}

func resultStatus(result *models.ConversionResult) string {
	written := make([]string, len(result.Entries))
	for i, e := range result.Entries {
		written[i] = e.Size.String()
	}
	status := fmt.Sprintf("Wrote %s (%s)", filepath.Base(result.OutputPath), strings.Join(written, ", "))

	if len(result.Skipped) > 0 {
		skipped := make([]string, len(result.Skipped))
		for i, s := range result.Skipped {
			skipped[i] = s.String()
		}
		status += fmt.Sprintf("; skipped %s, larger than the source", strings.Join(skipped, ", "))
	}
	return status
}

// suggestOutputPath is the input path with its extension replaced by .ico.
func suggestOutputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".ico"
}

// withICOExtension appends .ico when path has no extension.
func withICOExtension(path string) string {
	if filepath.Ext(path) == "" {
		return path + ".ico"
	}
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// removeIfEmpty deletes path if it is an empty regular file.
func removeIfEmpty(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() || info.Size() != 0 {
		return
	}
	os.Remove(path)
}
