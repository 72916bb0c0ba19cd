// Package prediction defines the Model capability that maps an
// instance_sample token to a predicted trajectory, and the registry used to
// load a named model with its weights. Concrete models live in infra/models
// and register themselves on import.
package prediction
