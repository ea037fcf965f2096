package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/turtacn/MolGraph-Pipeline/internal/domain/graph"
)

// newMolfileCmd builds the molfile subcommand: it reads JSON-lines graphs
// (the convert output) and writes one V2000 molfile record per graph.
// Graphs must carry discrete atomic-number node labels, which the 3D
// conversion path always provides.
func newMolfileCmd(rc *runtimeContext) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "molfile",
		Short: "Serialize JSON graphs back to V2000 molfile records",
		RunE: func(_ *cobra.Command, _ []string) error {
			in, closeIn, err := openInput(input)
			if err != nil {
				return err
			}
			defer closeIn()
			out, closeOut, err := openOutput(output)
			if err != nil {
				return err
			}
			defer closeOut()
			return writeMolfiles(in, out)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "input file ('-' for stdin)")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file ('-' for stdout)")
	return cmd
}

func writeMolfiles(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Bytes()
		if len(text) == 0 {
			continue
		}
		var g graph.Graph
		if err := json.Unmarshal(text, &g); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		record, err := graph.ToMolfile(&g)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if _, err := io.WriteString(out, record+"\n"); err != nil {
			return err
		}
	}
	return scanner.Err()
}
