package changelog

import (
	"errors"

	"go.uber.org/zap"

	"github.com/temirov/sdkrel/internal/codereport"
)

const (
	reportLoadSkippedMessageConstant   = "skipping changelog generation because a code report could not be loaded"
	changelogMergedMessageConstant     = "merged release section into changelog"
	logFieldPreviousReportConstant     = "previous_report"
	logFieldCurrentReportConstant      = "current_report"
	logFieldChangelogPathConstant      = "changelog_path"
	logFieldReleaseVersionConstant     = "release_version"
	serviceLoggerRequiredErrorConstant = "changelog service requires a logger"
)

// GenerateOptions describes one changelog generation request.
type GenerateOptions struct {
	PackageDirectory   string
	PreviousReportPath string
	CurrentReportPath  string
	Version            string
	ReleaseDate        string
	DryRun             bool
}

// GenerationResult reports the outcome of a changelog generation run.
type GenerationResult struct {
	ChangeSet codereport.ChangeSet
	Section   string
	Skipped   bool
}

// Service generates changelog sections from code report pairs.
type Service struct {
	logger *zap.Logger
}

// NewService constructs a changelog service.
func NewService(logger *zap.Logger) (*Service, error) {
	if logger == nil {
		return nil, errors.New(serviceLoggerRequiredErrorConstant)
	}
	return &Service{logger: logger}, nil
}

// Generate diffs the report pair, renders the release section, and merges it
// into the package changelog. When either report cannot be loaded the run is
// skipped with a warning instead of failing the surrounding pipeline.
func (service *Service) Generate(options GenerateOptions) (GenerationResult, error) {
	previousReport, previousLoadError := codereport.LoadReport(options.PreviousReportPath)
	if previousLoadError != nil {
		service.logSkip(options, previousLoadError)
		return GenerationResult{Skipped: true}, nil
	}
	currentReport, currentLoadError := codereport.LoadReport(options.CurrentReportPath)
	if currentLoadError != nil {
		service.logSkip(options, currentLoadError)
		return GenerationResult{Skipped: true}, nil
	}

	changeSet := codereport.DiffReports(previousReport, currentReport)
	renderedSection := RenderSection(NewSectionContent(options.Version, options.ReleaseDate, changeSet))

	generationResult := GenerationResult{ChangeSet: changeSet, Section: renderedSection}
	if options.DryRun {
		return generationResult, nil
	}

	changelogPath := ChangelogPath(options.PackageDirectory)
	if mergeError := MergeIntoChangelog(changelogPath, renderedSection); mergeError != nil {
		return GenerationResult{}, mergeError
	}

	service.logger.Info(
		changelogMergedMessageConstant,
		zap.String(logFieldChangelogPathConstant, changelogPath),
		zap.String(logFieldReleaseVersionConstant, options.Version),
	)
	return generationResult, nil
}

func (service *Service) logSkip(options GenerateOptions, loadError error) {
	service.logger.Warn(
		reportLoadSkippedMessageConstant,
		zap.String(logFieldPreviousReportConstant, options.PreviousReportPath),
		zap.String(logFieldCurrentReportConstant, options.CurrentReportPath),
		zap.Error(loadError),
	)
}
