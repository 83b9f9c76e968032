// Command eec-scheduler is the standalone replay binary noted in the
// external-interfaces section: the simulator is the canonical parser and
// driver in production, but this binary lets the scheduler's own decision
// logic be exercised end-to-end against a workload file without a live
// simulator process, driving internal/localsim in its place.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/spdfg/cloudsim-eec/internal/accountant"
	"github.com/spdfg/cloudsim-eec/internal/consolidate"
	"github.com/spdfg/cloudsim-eec/internal/engine"
	"github.com/spdfg/cloudsim-eec/internal/inventory"
	"github.com/spdfg/cloudsim-eec/internal/localsim"
	"github.com/spdfg/cloudsim-eec/internal/logging"
	"github.com/spdfg/cloudsim-eec/internal/migration"
	"github.com/spdfg/cloudsim-eec/internal/model"
	"github.com/spdfg/cloudsim-eec/internal/placement"
	"github.com/spdfg/cloudsim-eec/internal/power"
	"github.com/spdfg/cloudsim-eec/internal/workload"
)

var workloadFile = flag.String("workload", "", "Workload file containing machine class and task class blocks")
var logConfigFile = flag.String("logConfig", "", "YAML logging config file (defaults to console-only INFO logging)")
var consolidationPolicy = flag.String("policy", "tier", "Consolidation policy to run: tier or drain")
var checkInterval = flag.Int64("checkInterval", 5_000_000, "Microseconds between SchedulerCheck sweeps")

func init() {
	flag.StringVar(workloadFile, "w", "", "Workload file (shorthand)")
	flag.StringVar(logConfigFile, "l", "", "Logging config file (shorthand)")
	flag.StringVar(consolidationPolicy, "p", "tier", "Consolidation policy: tier or drain (shorthand)")
}

type scheduledEvent struct {
	at   model.Time
	kind string // "arrive", "complete", "check"
	task model.Task
}

func main() {
	flag.Parse()

	if *workloadFile == "" {
		log.Fatal("no workload file provided, pass -workload <file>")
	}

	logCfg := logging.DefaultConfig()
	if *logConfigFile != "" {
		cfg, err := logging.LoadConfig(*logConfigFile)
		if err != nil {
			log.Fatalf("logging config: %v", err)
		}
		logCfg = cfg
	}

	var opts []logging.Option
	if logCfg.File.Enabled {
		startTime := time.Now().Format("20060102150405")
		opts = append(opts, logging.WithFile("eec-"+startTime+logCfg.File.FilenameExtension))
	}
	logger := logging.New(logCfg, opts...)
	defer logger.Close()

	machineClasses, taskClasses, err := workload.LoadFile(*workloadFile)
	if err != nil {
		logger.Errorf("could not load workload file: %v", err)
		os.Exit(1)
	}

	inv := inventory.New()
	seedMachines(inv, machineClasses)

	acc := accountant.New()
	sim := localsim.New(inv, acc)
	ledger := power.NewLedger()

	mig := migration.New(inv, acc, sim, logger)
	place := placement.New(inv, acc, sim, placement.WithLogger(logger), placement.WithMigrationGate(mig))

	var strategy consolidate.Strategy
	switch *consolidationPolicy {
	case "drain":
		strategy = consolidate.NewDrainStrategy(inv, sim, place, logger)
	default:
		strategy = consolidate.NewTierStrategy(inv, sim, place, logger)
	}

	adapter := engine.New(inv, acc, sim, place, strategy, mig, ledger, engine.WithLogger(logger))

	adapter.Init()

	var tasks []model.Task
	nextID := model.TaskID(0)
	for _, tc := range taskClasses {
		generated := workload.Generate(tc, nextID)
		nextID += model.TaskID(len(generated))
		tasks = append(tasks, generated...)
	}
	for _, t := range tasks {
		sim.RegisterTask(t)
	}

	events := buildTimeline(tasks, model.Time(*checkInterval))

	wallStart := time.Now()
	for _, ev := range events {
		switch ev.kind {
		case "arrive":
			adapter.NewTask(ev.task)
		case "complete":
			sim.RecordCompletion(ev.task, ev.at)
			adapter.TaskComplete(ev.at, ev.task.ID)
		case "check":
			machines, vms := sim.Advance(ev.at)
			for _, m := range machines {
				adapter.StateChangeComplete(ev.at, m)
			}
			for _, vm := range vms {
				adapter.MigrationComplete(ev.at, vm)
			}
			adapter.SchedulerCheck(ev.at)
		}
	}

	report := adapter.Shutdown(time.Since(wallStart).Seconds())
	printReport(report)
}

// seedMachines expands each workload machine class into concrete Machine
// records, splitting each class roughly in half between the running and
// off tiers at startup -- the workload file format carries no explicit
// per-machine initial tier, so the replay driver picks a starting point
// for the Consolidator to work from.
func seedMachines(inv *inventory.Inventory, classes []workload.MachineClass) {
	id := 0
	for _, mc := range classes {
		for i := 0; i < mc.NumMachines; i++ {
			m := model.NewMachine(model.MachineID(id), mc.CPU, mc.NumCores, mc.MemoryMiB, mc.GPUs, mc.MIPS, mc.SStates)
			if i%2 == 0 {
				m.SState = model.S0
			} else {
				m.SState = model.S5
			}
			inv.AddMachine(m)
			id++
		}
	}
}

// buildTimeline merges task arrivals, task completions (at their target
// completion time, the replay driver's simplifying duration model) and a
// periodic SchedulerCheck into one time-ordered event list.
func buildTimeline(tasks []model.Task, checkInterval model.Time) []scheduledEvent {
	var events []scheduledEvent
	var maxTime model.Time

	for _, t := range tasks {
		events = append(events, scheduledEvent{at: t.Arrival, kind: "arrive", task: t})
		events = append(events, scheduledEvent{at: t.TargetCompletion, kind: "complete", task: t})
		if t.TargetCompletion > maxTime {
			maxTime = t.TargetCompletion
		}
	}

	if checkInterval > 0 {
		for at := checkInterval; at <= maxTime+checkInterval; at += checkInterval {
			events = append(events, scheduledEvent{at: at, kind: "check"})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].at != events[j].at {
			return events[i].at < events[j].at
		}
		return eventPriority(events[i].kind) < eventPriority(events[j].kind)
	})
	return events
}

// eventPriority breaks same-timestamp ties: completions before arrivals
// before checks, so a task vacating a machine is visible to the next
// arrival's placement pass within the same tick.
func eventPriority(kind string) int {
	switch kind {
	case "complete":
		return 0
	case "arrive":
		return 1
	default:
		return 2
	}
}

func printReport(r engine.Report) {
	fmt.Printf("SLA0: %.2f%% on time\n", r.SLA0OnTime)
	fmt.Printf("SLA1: %.2f%% on time\n", r.SLA1OnTime)
	fmt.Printf("SLA2: %.2f%% on time\n", r.SLA2OnTime)
	fmt.Printf("Total energy: %.3f kWh\n", r.EnergyKWh)
	fmt.Printf("Wall time: %.1fs\n", r.WallSeconds)
}
