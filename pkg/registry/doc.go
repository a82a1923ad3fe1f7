// Package registry holds the process-wide set of loaded app instances.
package registry
