package app

import "runtime"

// Diagnostic identifies a built-in system report bound to a number key.
type Diagnostic int

const (
	DiagDisk Diagnostic = iota + 1
	DiagNetwork
	DiagMemory
	DiagCPU
)

func (d Diagnostic) String() string {
	switch d {
	case DiagDisk:
		return "disk"
	case DiagNetwork:
		return "network"
	case DiagMemory:
		return "memory"
	case DiagCPU:
		return "cpu"
	default:
		return "unknown"
	}
}

var diagnosticCommands = map[string]map[Diagnostic]string{
	"linux": {
		DiagDisk:    "df -h",
		DiagNetwork: "ip -brief address",
		DiagMemory:  "free -h",
		DiagCPU:     "lscpu",
	},
	"darwin": {
		DiagDisk:    "df -h",
		DiagNetwork: "ifconfig",
		DiagMemory:  "vm_stat",
		DiagCPU:     "sysctl -a machdep.cpu",
	},
}

// DiagnosticCommand returns the command line for d on this platform.
func DiagnosticCommand(d Diagnostic) (string, bool) {
	return diagnosticCommand(runtime.GOOS, d)
}

// diagnosticCommand falls back to the linux commands on other platforms.
func diagnosticCommand(goos string, d Diagnostic) (string, bool) {
	table, ok := diagnosticCommands[goos]
	if !ok {
		table = diagnosticCommands["linux"]
	}
	cmd, ok := table[d]
	return cmd, ok
}
