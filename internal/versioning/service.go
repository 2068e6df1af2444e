package versioning

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"go.uber.org/zap"

	"github.com/temirov/sdkrel/internal/changelog"
	"github.com/temirov/sdkrel/internal/pepver"
	"github.com/temirov/sdkrel/internal/pymeta"
)

const (
	serviceLoggerRequiredErrorConstant  = "versioning service requires a logger"
	versionBumpAppliedMessageConstant   = "applied version bump"
	developmentStampMessageConstant     = "stamped development build version"
	logFieldPackageDirectoryConstant    = "package_directory"
	logFieldPreviousVersionConstant     = "previous_version"
	logFieldNextVersionConstant         = "next_version"
	currentVersionErrorTemplateConstant = "unable to read current version in %s: %w"
	currentVersionParseTemplateConstant = "unable to parse current version %q: %w"
	explicitVersionParseTemplate        = "unable to parse requested version %q: %w"
	changelogStampErrorTemplateConstant = "unable to stamp changelog heading in %s: %w"
	unreleasedHeadingTemplateConstant   = `(?m)^## %s \(Unreleased\)[ \t]*$`
	stampedHeadingTemplateConstant      = "## %s (%s)"
	changelogFilePermissionsConstant    = 0o644
)

// BumpOptions describes one version bump request.
type BumpOptions struct {
	PackageDirectory string
	ChangeLevel      pepver.ChangeLevel
	Preview          bool
	ExplicitVersion  string
	ReleaseDate      string
	DryRun           bool
}

// BumpResult reports the outcome of a version bump.
type BumpResult struct {
	PreviousVersion pepver.Version
	NextVersion     pepver.Version
	DryRun          bool
}

// Service applies version changes across a package's release files.
type Service struct {
	logger *zap.Logger
}

// NewService constructs a versioning service.
func NewService(logger *zap.Logger) (*Service, error) {
	if logger == nil {
		return nil, errors.New(serviceLoggerRequiredErrorConstant)
	}
	return &Service{logger: logger}, nil
}

// Bump computes the next version and rewrites the version file, the pyproject
// version field when present, and the changelog's Unreleased heading. Dry runs
// compute without writing.
func (service *Service) Bump(options BumpOptions) (BumpResult, error) {
	currentVersion, currentVersionError := service.currentVersion(options.PackageDirectory)
	if currentVersionError != nil {
		return BumpResult{}, currentVersionError
	}

	nextVersion, nextVersionError := resolveNextVersion(currentVersion, options)
	if nextVersionError != nil {
		return BumpResult{}, nextVersionError
	}

	bumpResult := BumpResult{PreviousVersion: currentVersion, NextVersion: nextVersion, DryRun: options.DryRun}
	if options.DryRun {
		return bumpResult, nil
	}

	if writeError := service.writeVersion(options.PackageDirectory, nextVersion.String()); writeError != nil {
		return BumpResult{}, writeError
	}

	if stampError := StampChangelogDate(changelog.ChangelogPath(options.PackageDirectory), nextVersion.String(), options.ReleaseDate); stampError != nil {
		return BumpResult{}, stampError
	}

	service.logger.Info(
		versionBumpAppliedMessageConstant,
		zap.String(logFieldPackageDirectoryConstant, options.PackageDirectory),
		zap.String(logFieldPreviousVersionConstant, currentVersion.String()),
		zap.String(logFieldNextVersionConstant, nextVersion.String()),
	)
	return bumpResult, nil
}

// StampDevelopmentBuild rewrites the package version with a development build
// suffix derived from the build identifier. The changelog is left untouched.
func (service *Service) StampDevelopmentBuild(packageDirectory string, buildIdentifier int, dryRun bool) (BumpResult, error) {
	currentVersion, currentVersionError := service.currentVersion(packageDirectory)
	if currentVersionError != nil {
		return BumpResult{}, currentVersionError
	}

	stampedVersion, stampError := pepver.AppendDevelopmentBuild(currentVersion, buildIdentifier)
	if stampError != nil {
		return BumpResult{}, stampError
	}

	bumpResult := BumpResult{PreviousVersion: currentVersion, NextVersion: stampedVersion, DryRun: dryRun}
	if dryRun {
		return bumpResult, nil
	}

	if writeError := service.writeVersion(packageDirectory, stampedVersion.String()); writeError != nil {
		return BumpResult{}, writeError
	}

	service.logger.Info(
		developmentStampMessageConstant,
		zap.String(logFieldPackageDirectoryConstant, packageDirectory),
		zap.String(logFieldPreviousVersionConstant, currentVersion.String()),
		zap.String(logFieldNextVersionConstant, stampedVersion.String()),
	)
	return bumpResult, nil
}

func (service *Service) currentVersion(packageDirectory string) (pepver.Version, error) {
	currentVersionText, readError := pymeta.ReadPackageVersion(packageDirectory)
	if readError != nil {
		return pepver.Version{}, fmt.Errorf(currentVersionErrorTemplateConstant, packageDirectory, readError)
	}
	currentVersion, parseError := pepver.Parse(currentVersionText)
	if parseError != nil {
		return pepver.Version{}, fmt.Errorf(currentVersionParseTemplateConstant, currentVersionText, parseError)
	}
	return currentVersion, nil
}

func (service *Service) writeVersion(packageDirectory string, versionText string) error {
	if writeError := pymeta.WritePackageVersion(packageDirectory, versionText); writeError != nil {
		return writeError
	}

	packageMetadata, metadataError := pymeta.LoadMetadata(packageDirectory)
	if metadataError != nil {
		return metadataError
	}
	if packageMetadata.FromPyproject {
		return pymeta.WritePyprojectVersion(packageDirectory, versionText)
	}
	return nil
}

func resolveNextVersion(currentVersion pepver.Version, options BumpOptions) (pepver.Version, error) {
	if len(options.ExplicitVersion) > 0 {
		explicitVersion, parseError := pepver.Parse(options.ExplicitVersion)
		if parseError != nil {
			return pepver.Version{}, fmt.Errorf(explicitVersionParseTemplate, options.ExplicitVersion, parseError)
		}
		return explicitVersion, nil
	}
	return pepver.Next(currentVersion, options.ChangeLevel, options.Preview), nil
}

// StampChangelogDate replaces the Unreleased marker on the given version's
// changelog heading with the release date. A missing changelog or heading is
// not an error.
func StampChangelogDate(changelogPath string, versionText string, releaseDate string) error {
	changelogContent, readError := os.ReadFile(changelogPath)
	if readError != nil {
		if os.IsNotExist(readError) {
			return nil
		}
		return fmt.Errorf(changelogStampErrorTemplateConstant, changelogPath, readError)
	}

	unreleasedHeadingPattern := regexp.MustCompile(fmt.Sprintf(unreleasedHeadingTemplateConstant, regexp.QuoteMeta(versionText)))
	if !unreleasedHeadingPattern.Match(changelogContent) {
		return nil
	}

	stampedHeading := fmt.Sprintf(stampedHeadingTemplateConstant, versionText, releaseDate)
	stampedContent := unreleasedHeadingPattern.ReplaceAll(changelogContent, []byte(stampedHeading))

	if writeError := os.WriteFile(changelogPath, stampedContent, changelogFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(changelogStampErrorTemplateConstant, changelogPath, writeError)
	}
	return nil
}
