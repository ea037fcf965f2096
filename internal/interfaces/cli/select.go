package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/MolGraph-Pipeline/internal/application/pipeline"
)

// newSelectCmd builds the select subcommand: filter an SDF conformer
// stream down to the records of chosen compound ids.
func newSelectCmd(rc *runtimeContext) *cobra.Command {
	var (
		input     string
		output    string
		ids       []string
		idsFile   string
		firstOnly bool
	)

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Filter an SDF stream by compound id",
		Long: "Copies the records whose compound id (PUBCHEM_COMPOUND_CID data field,\n" +
			"falling back to the record title) matches the given ids.  With\n" +
			"--first-only each id keeps only its first record, dropping the\n" +
			"remaining conformers.",
		RunE: func(_ *cobra.Command, _ []string) error {
			if idsFile != "" {
				fileIDs, err := readIDFile(idsFile)
				if err != nil {
					return err
				}
				ids = append(ids, fileIDs...)
			}
			if len(ids) == 0 {
				return fmt.Errorf("no compound ids given: use --id or --ids-file")
			}

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
			return pipeline.SelectByCompoundID(in, out, ids, firstOnly)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "-", "input file ('-' for stdin)")
	f.StringVarP(&output, "output", "o", "-", "output file ('-' for stdout)")
	f.StringSliceVar(&ids, "id", nil, "compound id to keep (repeatable)")
	f.StringVar(&idsFile, "ids-file", "", "file with one compound id per line")
	f.BoolVar(&firstOnly, "first-only", false, "keep only the first record of each id")
	return cmd
}

// newBipartitionCmd builds the bipartition subcommand: a deterministic
// random split of an SDF stream's compound ids into two parts, for
// train/test separation at the compound level so conformers of one
// compound never straddle the split.
func newBipartitionCmd(rc *runtimeContext) *cobra.Command {
	var (
		input        string
		relativeSize float64
		seed         int64
	)

	cmd := &cobra.Command{
		Use:   "bipartition",
		Short: "Randomly split an SDF stream's compound ids into two parts",
		RunE: func(_ *cobra.Command, _ []string) error {
			in, closeIn, err := openInput(input)
			if err != nil {
				return err
			}
			defer closeIn()

			ids, err := pipeline.CompoundIDs(in)
			if err != nil {
				return err
			}
			first, second := pipeline.RandomBipartition(ids, relativeSize, seed)

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string][]string{
				"first":  first,
				"second": second,
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "-", "input file ('-' for stdin)")
	f.Float64Var(&relativeSize, "relative-size", 0.7, "fraction of ids in the first part")
	f.Int64Var(&seed, "seed", 1, "random seed")
	return cmd
}

func readIDFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids, scanner.Err()
}
