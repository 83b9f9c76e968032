// Package model defines the scheduler's core domain vocabulary: machines,
// VMs, tasks, and the power/performance states that govern them.
package model

// CPUType is the instruction-set architecture of a machine or the
// architecture a task/VM requires.
type CPUType int

const (
	X86 CPUType = iota
	ARM
	RISCV
	POWER
)

func (c CPUType) String() string {
	switch c {
	case X86:
		return "X86"
	case ARM:
		return "ARM"
	case RISCV:
		return "RISCV"
	case POWER:
		return "POWER"
	default:
		return "UNKNOWN_CPU"
	}
}

// GuestOS is the guest operating system a VM runs, and the OS a task
// requires from its host VM.
type GuestOS int

const (
	LINUX GuestOS = iota
	LINUX_RT
	WIN
	AIX
)

func (g GuestOS) String() string {
	switch g {
	case LINUX:
		return "LINUX"
	case LINUX_RT:
		return "LINUX_RT"
	case WIN:
		return "WIN"
	case AIX:
		return "AIX"
	default:
		return "UNKNOWN_OS"
	}
}

// CompatibleCPUs returns the CPU architectures the given guest OS can run
// on, per the fixed compatibility matrix in the spec.
func (g GuestOS) CompatibleCPUs() []CPUType {
	switch g {
	case AIX:
		return []CPUType{POWER}
	case WIN:
		return []CPUType{X86, ARM}
	case LINUX, LINUX_RT:
		return []CPUType{X86, ARM, RISCV, POWER}
	default:
		return nil
	}
}

// Compatible reports whether a guest OS may run on a given CPU architecture.
func (g GuestOS) Compatible(cpu CPUType) bool {
	for _, c := range g.CompatibleCPUs() {
		if c == cpu {
			return true
		}
	}
	return false
}

// SState is the whole-machine power state.
type SState int

const (
	S0 SState = iota // active, only state tasks execute in
	S1
	S2
	S3 // light sleep / standby, small wake latency
	S4
	S5 // powered off
)

func (s SState) String() string {
	switch s {
	case S0:
		return "S0"
	case S1:
		return "S1"
	case S2:
		return "S2"
	case S3:
		return "S3"
	case S4:
		return "S4"
	case S5:
		return "S5"
	default:
		return "UNKNOWN_SSTATE"
	}
}

// PState is the per-core performance state, shared uniformly by all cores
// of a machine (P0 fastest, P3 slowest).
type PState int

const (
	P0 PState = iota
	P1
	P2
	P3
)

// NumPStates is the fixed number of P-states every machine's MIPS vector
// is indexed by.
const NumPStates = 4

// NumSStates is the fixed length of every machine's power-cost vector, as
// given in the workload file. The vector is indexed by SState, so only its
// first six entries (S0..S5) are read.
const NumSStates = 7

// Priority is derived from a task's SLA class and attached to the task
// when it is added to a VM.
type Priority int

const (
	HIGH Priority = iota
	MID
	LOW
)

func (p Priority) String() string {
	switch p {
	case HIGH:
		return "HIGH"
	case MID:
		return "MID"
	case LOW:
		return "LOW"
	default:
		return "UNKNOWN_PRIORITY"
	}
}

// SLAClass is the contractual on-time completion fraction a task belongs to.
type SLAClass int

const (
	SLA0 SLAClass = iota // 95% on-time
	SLA1                 // 90% on-time
	SLA2                 // 80% on-time
	SLA3                 // best-effort
)

func (s SLAClass) String() string {
	switch s {
	case SLA0:
		return "SLA0"
	case SLA1:
		return "SLA1"
	case SLA2:
		return "SLA2"
	case SLA3:
		return "SLA3"
	default:
		return "UNKNOWN_SLA"
	}
}

// PriorityFor derives a task's scheduling priority from its SLA class.
func PriorityFor(sla SLAClass) Priority {
	switch sla {
	case SLA0:
		return HIGH
	case SLA1:
		return MID
	default:
		return LOW
	}
}
