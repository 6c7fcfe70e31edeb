package notescmd

// FeatureGates exposes runtime feature toggles required by note command
// handlers. Callers should supply closures that read their configuration so
// handlers stay decoupled from it while honouring feature flags.
type FeatureGates struct {
	NotesEnabled func() bool
}

func (g FeatureGates) notesEnabled() bool {
	if g.NotesEnabled == nil {
		return true
	}
	return g.NotesEnabled()
}
