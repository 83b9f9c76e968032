package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuestOSCompatible(t *testing.T) {
	cases := []struct {
		name string
		os   GuestOS
		cpu  CPUType
		want bool
	}{
		{"aix on power", AIX, POWER, true},
		{"aix on x86", AIX, X86, false},
		{"win on x86", WIN, X86, true},
		{"win on arm", WIN, ARM, true},
		{"win on riscv", WIN, RISCV, false},
		{"linux on riscv", LINUX, RISCV, true},
		{"linux_rt on power", LINUX_RT, POWER, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.os.Compatible(c.cpu))
		})
	}
}

func TestPriorityFor(t *testing.T) {
	assert.Equal(t, HIGH, PriorityFor(SLA0))
	assert.Equal(t, MID, PriorityFor(SLA1))
	assert.Equal(t, LOW, PriorityFor(SLA2))
	assert.Equal(t, LOW, PriorityFor(SLA3))
}
