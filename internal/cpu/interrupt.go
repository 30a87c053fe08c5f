package cpu

// interruptState tracks an EI or DI whose effect has not been applied yet.
type interruptState uint8

const (
	// interruptIdle means no enable/disable is pending.
	interruptIdle interruptState = iota
	// interruptPendingEnable is recorded by EI.
	interruptPendingEnable
	// interruptPendingDisable is recorded by DI.
	interruptPendingDisable
)

var interruptStateNames = [...]string{"idle", "pending-enable", "pending-disable"}

func (s interruptState) String() string {
	if int(s) < len(interruptStateNames) {
		return interruptStateNames[s]
	}
	return "invalid"
}

// interruptContext delays the effect of EI and DI by one instruction.
//
//	Idle --EI--> PendingEnable --next step--> (IFF1, IFF2 set) --> Idle
//	Idle --DI--> PendingDisable --next step--> (IFF1, IFF2 reset) --> Idle
//
// Step takes the pending state before executing an instruction and
// applies it once that instruction has completed, so an EI executed in
// one step enables interrupts at the end of the next step.
type interruptContext struct {
	state interruptState
}

// record is called by EI and DI.
func (i *interruptContext) record(s interruptState) {
	i.state = s
}

// take returns the pending state and resets it to idle.
func (i *interruptContext) take() interruptState {
	s := i.state
	i.state = interruptIdle
	return s
}

// apply commits a state previously returned by take.
func (i *interruptContext) apply(c *CPU, s interruptState) {
	switch s {
	case interruptPendingEnable:
		c.IFF1, c.IFF2 = true, true
	case interruptPendingDisable:
		c.IFF1, c.IFF2 = false, false
	}
}

// Pending reports whether an EI or DI is waiting to take effect.
func (c *CPU) Pending() bool {
	return c.interrupt.state != interruptIdle
}
