package vm

// Option is a configuration function for a Virtual Machine.
type Option func(*VirtualMachine)

// WithMaxCommands sets how many commands a single Run, Load or Exec may
// execute before it fails with a limit error. The default is
// DefaultMaxCommands. The maxCommandChainLength game rule changes it too.
func WithMaxCommands(n int) Option {
	return func(vm *VirtualMachine) {
		vm.maxCommands = n
	}
}

// WithMaxDepth sets the maximum function call depth. The default is
// DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(vm *VirtualMachine) {
		vm.maxDepth = n
	}
}

// WithContextCheckInterval sets how often, in commands, the VM checks
// ctx.Done(). A value of 0 disables the check.
func WithContextCheckInterval(interval int) Option {
	return func(vm *VirtualMachine) {
		vm.contextCheckInterval = interval
	}
}

// WithObserver sets an observer for VM execution events.
// Returning false from any observer method halts execution immediately.
func WithObserver(observer Observer) Option {
	return func(vm *VirtualMachine) {
		vm.observer = observer
	}
}

// WithStrictObjectives makes references to objectives that were never added
// fail. By default objectives are created on first use.
func WithStrictObjectives() Option {
	return func(vm *VirtualMachine) {
		vm.strictObjectives = true
	}
}
