package workload

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/spdfg/cloudsim-eec/internal/model"
)

// LoadFile parses the brace-delimited "machine class { ... }" / "task
// class { ... }" input-file format into Go values. The file is opened with
// os.Open and every failure wrapped with github.com/pkg/errors so the
// caller gets a causal chain back to the offending line.
func LoadFile(path string) ([]MachineClass, []TaskClass, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "workload: open file")
	}
	defer f.Close()

	var machines []MachineClass
	var tasks []TaskClass

	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "machine class"):
			block, err := readBlock(sc, &lineNo)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "workload: line %d", lineNo)
			}
			mc, err := parseMachineClass(block)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "workload: line %d", lineNo)
			}
			machines = append(machines, mc)
		case strings.HasPrefix(line, "task class"):
			block, err := readBlock(sc, &lineNo)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "workload: line %d", lineNo)
			}
			tc, err := parseTaskClass(block)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "workload: line %d", lineNo)
			}
			tasks = append(tasks, tc)
		default:
			return nil, nil, errors.Errorf("workload: line %d: unexpected block header %q", lineNo, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "workload: scan file")
	}
	return machines, tasks, nil
}

// readBlock consumes lines up to and including the closing "}", returning
// the "key: value" pairs found between the opening "{" (which may share a
// line with the header) and the close.
func readBlock(sc *bufio.Scanner, lineNo *int) (map[string]string, error) {
	kv := make(map[string]string)
	for sc.Scan() {
		*lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line == "{" {
			continue
		}
		if line == "}" {
			return kv, nil
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			return nil, errors.Errorf("malformed key:value line %q", line)
		}
		kv[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return nil, errors.New("unterminated block")
}

func parseVector(s string, n int) ([]float64, error) {
	s = strings.Trim(s, "[]")
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) != n {
		return nil, errors.Errorf("expected %d values, got %d in %q", n, len(fields), s)
	}
	out := make([]float64, n)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %q", f)
		}
		out[i] = v
	}
	return out, nil
}

func parseCPUType(s string) (model.CPUType, error) {
	switch strings.ToUpper(s) {
	case "X86":
		return model.X86, nil
	case "ARM":
		return model.ARM, nil
	case "RISCV":
		return model.RISCV, nil
	case "POWER":
		return model.POWER, nil
	default:
		return 0, errors.Errorf("unknown CPU type %q", s)
	}
}

func parseGuestOS(s string) (model.GuestOS, error) {
	switch strings.ToUpper(s) {
	case "LINUX":
		return model.LINUX, nil
	case "LINUX_RT":
		return model.LINUX_RT, nil
	case "WIN":
		return model.WIN, nil
	case "AIX":
		return model.AIX, nil
	default:
		return 0, errors.Errorf("unknown guest OS %q", s)
	}
}

func parseSLA(s string) (model.SLAClass, error) {
	switch strings.ToUpper(s) {
	case "SLA0":
		return model.SLA0, nil
	case "SLA1":
		return model.SLA1, nil
	case "SLA2":
		return model.SLA2, nil
	case "SLA3":
		return model.SLA3, nil
	default:
		return 0, errors.Errorf("unknown SLA class %q", s)
	}
}

func parseTaskType(s string) (TaskType, error) {
	switch strings.ToUpper(s) {
	case "WEB":
		return WEB, nil
	case "CRYPTO":
		return CRYPTO, nil
	case "HPC":
		return HPC, nil
	case "STREAM":
		return STREAM, nil
	case "AI":
		return AI, nil
	default:
		return 0, errors.Errorf("unknown task type %q", s)
	}
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true":
		return true, nil
	case "no", "false":
		return false, nil
	default:
		return false, errors.Errorf("unknown boolean %q", s)
	}
}

func parseInt(kv map[string]string, key string) (int, error) {
	v, ok := kv[key]
	if !ok {
		return 0, errors.Errorf("missing key %q", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing %q", key)
	}
	return n, nil
}

func parseFloat(kv map[string]string, key string) (float64, error) {
	v, ok := kv[key]
	if !ok {
		return 0, errors.Errorf("missing key %q", key)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing %q", key)
	}
	return f, nil
}

func parseMachineClass(kv map[string]string) (MachineClass, error) {
	var mc MachineClass
	var err error

	if mc.NumMachines, err = parseInt(kv, "Number of machines"); err != nil {
		return mc, err
	}
	if mc.CPU, err = parseCPUType(kv["CPU type"]); err != nil {
		return mc, err
	}
	if mc.NumCores, err = parseInt(kv, "Number of cores"); err != nil {
		return mc, err
	}
	if mc.MemoryMiB, err = parseFloat(kv, "Memory"); err != nil {
		return mc, err
	}
	sstates, err := parseVector(kv["S-States"], model.NumSStates)
	if err != nil {
		return mc, errors.Wrap(err, "S-States")
	}
	copy(mc.SStates[:], sstates)
	pstates, err := parseVector(kv["P-States"], model.NumPStates)
	if err != nil {
		return mc, errors.Wrap(err, "P-States")
	}
	copy(mc.PStates[:], pstates)
	mips, err := parseVector(kv["MIPS"], model.NumPStates)
	if err != nil {
		return mc, errors.Wrap(err, "MIPS")
	}
	copy(mc.MIPS[:], mips)
	if mc.GPUs, err = parseBool(kv["GPUs"]); err != nil {
		return mc, err
	}
	return mc, nil
}

func parseTaskClass(kv map[string]string) (TaskClass, error) {
	var tc TaskClass
	var err error

	start, err := parseInt(kv, "Start time")
	if err != nil {
		return tc, err
	}
	tc.StartTime = model.Time(start)

	end, err := parseInt(kv, "End time")
	if err != nil {
		return tc, err
	}
	tc.EndTime = model.Time(end)

	inter, err := parseInt(kv, "Inter arrival")
	if err != nil {
		return tc, err
	}
	tc.InterArrival = model.Time(inter)

	runtime, err := parseInt(kv, "Expected runtime")
	if err != nil {
		return tc, err
	}
	tc.ExpectedRuntime = model.Time(runtime)

	if tc.MemoryMiB, err = parseFloat(kv, "Memory"); err != nil {
		return tc, err
	}
	if tc.VMType, err = parseGuestOS(kv["VM type"]); err != nil {
		return tc, err
	}
	if tc.GPUEnabled, err = parseBool(kv["GPU enabled"]); err != nil {
		return tc, err
	}
	if tc.SLA, err = parseSLA(kv["SLA type"]); err != nil {
		return tc, err
	}
	if tc.CPU, err = parseCPUType(kv["CPU type"]); err != nil {
		return tc, err
	}
	if tc.Type, err = parseTaskType(kv["Task type"]); err != nil {
		return tc, err
	}

	seed, err := parseInt(kv, "Seed")
	if err != nil {
		return tc, err
	}
	tc.Seed = int64(seed)

	if n, ok := kv["Number of instances"]; ok {
		tc.NumInstances, err = strconv.Atoi(n)
		if err != nil {
			return tc, errors.Wrap(err, "Number of instances")
		}
	} else {
		tc.NumInstances = 1
	}

	return tc, nil
}
