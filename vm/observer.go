package vm

import "github.com/rs/zerolog"

// StepMode controls when OnCommand callbacks are triggered.
type StepMode uint8

const (
	// StepAll calls OnCommand for every command.
	StepAll StepMode = iota

	// StepNone never calls OnCommand.
	// Use for: profilers that only need Call/Return events.
	StepNone

	// StepSampled calls OnCommand every N commands.
	StepSampled
)

// ObserverConfig specifies what events an observer wants to receive.
// Use NewObserverConfig() to create configs with safe defaults.
type ObserverConfig struct {
	// StepMode controls OnCommand callback frequency.
	StepMode StepMode

	// SampleInterval is the number of commands between OnCommand calls
	// when StepMode is StepSampled. Values <= 0 are treated as 1.
	SampleInterval int

	// ObserveCalls enables OnCall callbacks.
	ObserveCalls bool

	// ObserveReturns enables OnReturn callbacks.
	ObserveReturns bool
}

// NewObserverConfig creates a config with safe defaults.
// ObserveCalls and ObserveReturns default to true.
func NewObserverConfig(mode StepMode) ObserverConfig {
	return ObserverConfig{
		StepMode:       mode,
		SampleInterval: 1000,
		ObserveCalls:   true,
		ObserveReturns: true,
	}
}

// NormalizeConfig validates and clamps config values.
func NormalizeConfig(cfg ObserverConfig) ObserverConfig {
	if cfg.StepMode == StepSampled && cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 1
	}
	return cfg
}

// Observer receives VM execution events. Implementations can embed
// NoOpObserver and override only what they need.
//
// Observer methods are called synchronously during execution.
type Observer interface {
	// Config returns the observer's configuration.
	// Called once when a run starts.
	Config() ObserverConfig

	// OnCommand is called before a command runs, based on the StepMode.
	// Returns false to halt execution immediately.
	OnCommand(event CommandEvent) bool

	// OnCall is called when a function is invoked (if ObserveCalls is true).
	// Returns false to halt execution immediately.
	OnCall(event CallEvent) bool

	// OnReturn is called when a function returns (if ObserveReturns is true).
	// Returns false to halt execution immediately.
	OnReturn(event ReturnEvent) bool
}

// CommandEvent describes a single command about to run.
type CommandEvent struct {
	// Function is the path of the function the command belongs to, or ""
	// for commands passed to Exec.
	Function string

	// Line is the 1-based command index inside the function.
	Line int

	Command string

	// Depth is the current call depth.
	Depth int

	// Count is the number of commands executed so far in this run,
	// including this one.
	Count int
}

// CallEvent describes a function call.
type CallEvent struct {
	Function string
	// Caller is "" for calls made by Run and Load.
	Caller string
	// Depth is the call depth after the call.
	Depth int
}

// ReturnEvent describes a function return.
type ReturnEvent struct {
	Function string
	// Depth is the call depth after returning.
	Depth int
}

// NoOpObserver is an Observer implementation that does nothing.
// Embed this in your observer to provide default implementations
// for methods you don't need.
type NoOpObserver struct{}

func (NoOpObserver) Config() ObserverConfig {
	return NewObserverConfig(StepAll)
}

func (NoOpObserver) OnCommand(CommandEvent) bool { return true }
func (NoOpObserver) OnCall(CallEvent) bool       { return true }
func (NoOpObserver) OnReturn(ReturnEvent) bool   { return true }

// Ensure NoOpObserver implements Observer.
var _ Observer = NoOpObserver{}

// LogObserver writes every execution event to a logger at trace level.
type LogObserver struct {
	logger zerolog.Logger
}

// NewLogObserver returns an observer that traces execution to logger.
func NewLogObserver(logger zerolog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) Config() ObserverConfig {
	return NewObserverConfig(StepAll)
}

func (o *LogObserver) OnCommand(e CommandEvent) bool {
	o.logger.Trace().
		Str("function", e.Function).
		Int("line", e.Line).
		Int("depth", e.Depth).
		Msg(e.Command)
	return true
}

func (o *LogObserver) OnCall(e CallEvent) bool {
	o.logger.Trace().Str("caller", e.Caller).Int("depth", e.Depth).Msgf("call %s", e.Function)
	return true
}

func (o *LogObserver) OnReturn(e ReturnEvent) bool {
	o.logger.Trace().Int("depth", e.Depth).Msgf("return from %s", e.Function)
	return true
}

var _ Observer = (*LogObserver)(nil)
