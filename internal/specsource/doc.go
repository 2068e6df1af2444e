// Package specsource resolves the specification inputs of SDK packages.
//
// It parses the fenced YAML configuration blocks of autorest readme files,
// reads tsp-location.yaml documents for TypeSpec projects, and classifies
// packages by generation mode and service plane.
package specsource
