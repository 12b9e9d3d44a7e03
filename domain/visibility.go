package domain

// VisibilityReporter is the host environment's foreground/background signal.
// OnChange registers a callback fired on every transition and returns an
// unsubscribe func.
type VisibilityReporter interface {
	Visible() bool
	OnChange(func(visible bool)) (unsubscribe func())
}
