// Package models registers the built-in models with core/prediction.
package models

import (
	_ "github.com/kilianp07/predsubmit/infra/models/physics"
	_ "github.com/kilianp07/predsubmit/infra/models/precomputed"
)
