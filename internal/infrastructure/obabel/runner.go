// Package obabel wraps the Open Babel command-line tool as the structure
// generator behind the pipeline's ConformerGenerator port: SMILES-to-SDF
// conversion with generated 3D coordinates, and conformer expansion of a
// single SDF record.
package obabel

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/MolGraph-Pipeline/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MolGraph-Pipeline/pkg/errors"
)

// conformerMarker appears on the second line of every record Open Babel
// writes; conformer output is split on it because the tool does not emit
// "$$$$" separators consistently across versions.
const conformerMarker = "OpenBabel"

// Config holds the tool invocation settings.
type Config struct {
	// Binary is the executable name or path.  Empty selects "obabel".
	Binary string `mapstructure:"binary"`

	// Timeout bounds a single invocation.  Zero means no bound beyond the
	// caller's context.
	Timeout time.Duration `mapstructure:"timeout"`
}

// Runner invokes the external tool.  Safe for sequential reuse; the
// pipeline never calls it concurrently.
type Runner struct {
	cfg Config
	log logging.Logger
}

// NewRunner constructs a Runner.
func NewRunner(cfg Config, log logging.Logger) *Runner {
	if cfg.Binary == "" {
		cfg.Binary = "obabel"
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Runner{cfg: cfg, log: log.Named("obabel")}
}

// Available reports whether the configured binary resolves on PATH.
func (r *Runner) Available() bool {
	_, err := exec.LookPath(r.cfg.Binary)
	return err == nil
}

// ConvertSMILES converts one SMILES string to a single SDF record with
// generated 3D coordinates.  Diagnostic WARNING lines the tool mixes into
// its output are stripped.
func (r *Runner) ConvertSMILES(ctx context.Context, smiles string) (string, error) {
	out, err := r.run(ctx, nil, "-:"+smiles, "-osdf", "--gen3d")
	if err != nil {
		return "", err
	}
	var kept []string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "WARNING") {
			continue
		}
		kept = append(kept, line)
	}
	record := strings.Join(kept, "\n")
	if strings.TrimSpace(record) == "" {
		return "", errors.New(errors.CodeToolBadOutput, "conversion produced no output").WithDetail(smiles)
	}
	return record, nil
}

// GenerateConformers expands one SDF record into up to n conformer records
// scored by RMSD diversity.  n below 1 short-circuits to the input record
// unchanged, with no tool call.
func (r *Runner) GenerateConformers(ctx context.Context, record string, n int) ([]string, error) {
	if n < 1 {
		return []string{record}, nil
	}

	// The tool only recognizes the format when the record is preceded by a
	// blank line on stdin.
	stdin := strings.NewReader("\n" + record)
	out, err := r.run(ctx, stdin,
		"-i", "sdf", "-o", "sdf",
		"--conformer", "--nconf", strconv.Itoa(n),
		"--score", "rmsd", "--writeconformers")
	if err != nil {
		return nil, err
	}

	records := splitConformers(out)
	if len(records) == 0 {
		return nil, errors.New(errors.CodeToolBadOutput, "conformer generation produced no records")
	}
	return records, nil
}

// splitConformers cuts the tool's concatenated output into records.  Each
// record's second line carries the marker; the record starts on the title
// line before it.
func splitConformers(out string) []string {
	lines := strings.Split(out, "\n")

	var starts []int
	for i, line := range lines {
		if strings.Contains(line, conformerMarker) {
			start := i - 1
			if start < 0 {
				start = 0
			}
			starts = append(starts, start)
		}
	}
	if len(starts) == 0 {
		if strings.TrimSpace(out) == "" {
			return nil
		}
		return []string{strings.TrimRight(out, "\n")}
	}

	records := make([]string, 0, len(starts))
	for k, start := range starts {
		end := len(lines)
		if k+1 < len(starts) {
			end = starts[k+1]
		}
		chunk := lines[start:end]
		// Drop terminator and trailing blank lines between records.
		for len(chunk) > 0 {
			last := strings.TrimSpace(chunk[len(chunk)-1])
			if last == "" || last == "$$$$" {
				chunk = chunk[:len(chunk)-1]
				continue
			}
			break
		}
		if len(chunk) == 0 {
			continue
		}
		records = append(records, strings.Join(chunk, "\n"))
	}
	return records
}

// run executes one tool invocation, returning stdout.  Failures carry the
// trailing stderr text as detail.
func (r *Runner) run(ctx context.Context, stdin *strings.Reader, args ...string) (string, error) {
	if _, err := exec.LookPath(r.cfg.Binary); err != nil {
		return "", errors.Wrap(err, errors.CodeToolNotAvailable, "conversion tool not found").
			WithDetail(r.cfg.Binary)
	}
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.cfg.Binary, args...)
	if stdin != nil {
		cmd.Stdin = stdin
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	r.log.Debug("tool invocation finished",
		logging.String("args", strings.Join(args, " ")),
		logging.Duration("elapsed", time.Since(start)),
		logging.Bool("ok", err == nil))
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if len(detail) > 512 {
			detail = detail[len(detail)-512:]
		}
		return "", errors.Wrap(err, errors.CodeToolExecFailed, "conversion tool failed").WithDetail(detail)
	}
	return stdout.String(), nil
}
