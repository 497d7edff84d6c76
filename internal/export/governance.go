package export

import "github.com/fluxreel/corecut/internal/errors"

// ProjectLicense carries the watermark and resolution ceiling a project's
// license imposes.
type ProjectLicense struct {
	RequiresWatermark   bool
	MaxExportResolution int // height in pixels; 0 means unset
}

// UserPlan carries the resolution ceiling the exporting user's plan
// imposes.
type UserPlan struct {
	MaxResolution int // height in pixels; 0 means unset
}

// WatermarkSpec is opaque to the coordinator — its mere presence satisfies
// a license's watermark requirement.
type WatermarkSpec struct {
	Source string
}

// GovernanceEnvelope is the caller-supplied policy context for one export.
type GovernanceEnvelope struct {
	ProjectLicense *ProjectLicense
	UserPlan       *UserPlan
	WatermarkSpec  *WatermarkSpec
}

// ValidateGovernance enforces spec.md §4.10 step 1: a required watermark
// must be present, and the requested height must not exceed
// min(user_plan.max, license.max_export) when either is set.
func ValidateGovernance(g GovernanceEnvelope, requestedHeight int) error {
	if g.ProjectLicense != nil && g.ProjectLicense.RequiresWatermark && g.WatermarkSpec == nil {
		return errors.NewWatermarkRequired()
	}

	maxAllowed := 0
	have := false
	if g.UserPlan != nil && g.UserPlan.MaxResolution > 0 {
		maxAllowed = g.UserPlan.MaxResolution
		have = true
	}
	if g.ProjectLicense != nil && g.ProjectLicense.MaxExportResolution > 0 {
		if !have || g.ProjectLicense.MaxExportResolution < maxAllowed {
			maxAllowed = g.ProjectLicense.MaxExportResolution
		}
		have = true
	}
	if have && requestedHeight > maxAllowed {
		return errors.NewResolutionNotAllowed(requestedHeight, maxAllowed)
	}
	return nil
}
