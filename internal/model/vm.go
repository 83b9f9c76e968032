package model

// VMID stably identifies a virtual machine.
type VMID int

// UnattachedMachine is the sentinel host of a VM that has been created but
// not yet attached to a machine.
const UnattachedMachine MachineID = -1

// VM is a guest running on at most one machine at a time.
type VM struct {
	ID VMID

	GuestOS GuestOS
	CPU     CPUType // fixed at creation, must equal host machine's CPU

	Host MachineID // UnattachedMachine if not yet attached

	// ActiveTasks is the set of task ids currently assigned to this VM.
	ActiveTasks map[TaskID]struct{}

	// Migrating is set while a migration of this VM is in flight. A VM
	// with Migrating set accepts no new tasks and is absent from
	// placement candidates.
	Migrating bool
}

// NewVM constructs a VM with no host and no tasks.
func NewVM(id VMID, guestOS GuestOS, cpu CPUType) *VM {
	return &VM{
		ID:          id,
		GuestOS:     guestOS,
		CPU:         cpu,
		Host:        UnattachedMachine,
		ActiveTasks: make(map[TaskID]struct{}),
	}
}

// Attached reports whether the VM currently has a host machine.
func (v *VM) Attached() bool {
	return v.Host != UnattachedMachine
}

// Empty reports whether the VM is hosting no tasks, the precondition for
// shutting it down.
func (v *VM) Empty() bool {
	return len(v.ActiveTasks) == 0
}

// AddTask records that task t is now running on this VM.
func (v *VM) AddTask(t TaskID) {
	v.ActiveTasks[t] = struct{}{}
}

// RemoveTask records that task t is no longer running on this VM.
func (v *VM) RemoveTask(t TaskID) {
	delete(v.ActiveTasks, t)
}

// AcceptsNewTasks reports whether the VM may be given a new task: it must
// be attached and not mid-migration.
func (v *VM) AcceptsNewTasks() bool {
	return v.Attached() && !v.Migrating
}
