package specsource

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	typeSpecLocationFileNameConstant      = "tsp-location.yaml"
	typeSpecLocationReadErrorTemplate     = "failed to read %s: %w"
	typeSpecLocationParseErrorTemplate    = "failed to parse %s: %w"
	typeSpecLocationDirectoryMissingError = "tsp-location.yaml must name a specification directory"
)

// TypeSpecLocation describes the TypeSpec project a package is generated from.
type TypeSpecLocation struct {
	Directory             string   `yaml:"directory"`
	Commit                string   `yaml:"commit"`
	Repository            string   `yaml:"repo"`
	AdditionalDirectories []string `yaml:"additionalDirectories"`
}

// LoadTypeSpecLocation reads a tsp-location.yaml document from disk.
func LoadTypeSpecLocation(locationPath string) (TypeSpecLocation, error) {
	locationContent, readError := os.ReadFile(locationPath)
	if readError != nil {
		return TypeSpecLocation{}, fmt.Errorf(typeSpecLocationReadErrorTemplate, locationPath, readError)
	}

	var parsedLocation TypeSpecLocation
	if unmarshalError := yaml.Unmarshal(locationContent, &parsedLocation); unmarshalError != nil {
		return TypeSpecLocation{}, fmt.Errorf(typeSpecLocationParseErrorTemplate, locationPath, unmarshalError)
	}

	if len(strings.TrimSpace(parsedLocation.Directory)) == 0 {
		return TypeSpecLocation{}, errors.New(typeSpecLocationDirectoryMissingError)
	}

	return parsedLocation, nil
}
