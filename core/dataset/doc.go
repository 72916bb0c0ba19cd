// Package dataset describes the records of a nuScenes-style driving dataset
// and the read-only accessor the prediction helper queries. Loading the
// tables from disk lives in infra/nuscenes.
package dataset
