// Package infra contains technical adapters such as the nuScenes table
// loader, model implementations, metrics exporters and the run journal.
// These packages should depend only on the interfaces defined in the core
// packages.
package infra
