package rdw

// Redirector decides which gains to inject on ticks without a reset.
type Redirector interface {
	Name() string
	// Initialize clears per-experiment state. The manager calls it when
	// the redirector is installed.
	Initialize(m *Manager)
	Apply(m *Manager)
}

// Observer is implemented by redirectors that watch every tick, including
// ticks spent resetting. Observe runs after the user-state update.
type Observer interface {
	Observe(m *Manager)
}

// Resetter handles boundary violations that redirection could not prevent.
type Resetter interface {
	Name() string
	// Initialize runs when the resetter is installed and whenever the
	// tracking area changes.
	Initialize(m *Manager)
	IsResetRequired(m *Manager) bool
	InitializeReset(m *Manager)
	// Apply runs on every tick of an active reset and calls
	// [Manager.OnResetEnd] when the maneuver completes.
	Apply(m *Manager)
	FinalizeReset(m *Manager)
}

// NullRedirector injects nothing.
type NullRedirector struct{}

func (NullRedirector) Name() string        { return "none" }
func (NullRedirector) Initialize(*Manager) {}
func (NullRedirector) Apply(*Manager)      {}

// NullResetter never resets. A manager holding it skips the backup
// boundary check.
type NullResetter struct{}

func (NullResetter) Name() string                  { return "no_reset" }
func (NullResetter) Initialize(*Manager)           {}
func (NullResetter) IsResetRequired(*Manager) bool { return false }
func (NullResetter) InitializeReset(*Manager)      {}
func (NullResetter) Apply(*Manager)                {}
func (NullResetter) FinalizeReset(*Manager)        {}
