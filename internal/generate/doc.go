// Package generate drives client code regeneration for SDK packages, invoking
// autorest for swagger targets and tsp-client for TypeSpec targets and
// reporting the files each run touched.
package generate
