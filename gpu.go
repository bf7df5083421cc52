package provenance

import (
	"context"
	"encoding/csv"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// GPUNotFound is the fixed sentinel returned when no accelerator
// management interface is discoverable on the search path.
const GPUNotFound = "nvidia-smi not found"

// smiQueryFields selects the per-GPU columns queried from nvidia-smi.
const smiQueryFields = "index,uuid,name,driver_version,memory.total,memory.used,utilization.gpu,temperature.gpu"

// GPUProber collects accelerator records. The three outcomes (records,
// raw error text, absence sentinel) are all values; Probe never fails.
type GPUProber interface {
	Probe(ctx context.Context) GPUResult
}

// SMIProber queries NVIDIA's management interface when it is present on
// PATH. Lookup and invocation are injectable for tests.
type SMIProber struct {
	timeout  time.Duration
	lookPath func(file string) (string, error)
	invoke   func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewSMIProber returns a prober with the given subprocess timeout.
func NewSMIProber(timeout time.Duration) *SMIProber {
	return &SMIProber{
		timeout:  timeout,
		lookPath: exec.LookPath,
		invoke: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).CombinedOutput()
		},
	}
}

// Probe returns one record per detected GPU. A missing interface yields
// the GPUNotFound sentinel; a failing invocation yields its raw output.
func (p *SMIProber) Probe(ctx context.Context) GPUResult {
	if _, err := p.lookPath("nvidia-smi"); err != nil {
		return GPUResult{Text: GPUNotFound}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.invoke(ctx, "nvidia-smi",
		"--query-gpu="+smiQueryFields, "--format=csv,noheader,nounits")
	if err != nil {
		text := strings.TrimSpace(string(out))
		if text == "" {
			text = err.Error()
		}
		return GPUResult{Text: text}
	}

	gpus, err := parseSMIOutput(out)
	if err != nil {
		return GPUResult{Text: err.Error()}
	}
	return GPUResult{GPUs: gpus}
}

// parseSMIOutput parses nvidia-smi's headerless CSV query output.
func parseSMIOutput(out []byte) ([]GPURecord, error) {
	reader := csv.NewReader(strings.NewReader(string(out)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var gpus []GPURecord
	for _, row := range rows {
		if len(row) < 8 {
			continue
		}
		gpus = append(gpus, GPURecord{
			Index:          atoiLenient(row[0]),
			UUID:           strings.TrimSpace(row[1]),
			Name:           strings.TrimSpace(row[2]),
			DriverVersion:  strings.TrimSpace(row[3]),
			MemoryTotalMiB: atoiLenient(row[4]),
			MemoryUsedMiB:  atoiLenient(row[5]),
			UtilizationPct: atoiLenient(row[6]),
			TemperatureC:   atoiLenient(row[7]),
		})
	}
	return gpus, nil
}

// atoiLenient tolerates the "[N/A]" placeholders nvidia-smi emits for
// unsupported sensors, mapping them to zero.
func atoiLenient(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
