package molecule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/turtacn/MolGraph-Pipeline/pkg/errors"
)

// RecordTerminator is the literal line separating records in a multi-record
// SDF stream.
const RecordTerminator = "$$$$"

// ParseSDF parses a single SDF record (V2000 connection table plus optional
// data items) into a Molecule.  The record may or may not include its
// trailing "$$$$" terminator line.  Atom and bond indices are normalized to
// 0-based.
//
// The molfile layout is fixed-width: a 3-line header, a counts line
// (aaabbb...vvvvvv), an atom block (xxxxxxxxxx yyyyyyyyyy zzzzzzzzzz sss),
// a bond block (aaabbbttt), "M  END", then "> <NAME>" data items.
func ParseSDF(record string) (*Molecule, error) {
	lines := strings.Split(strings.ReplaceAll(record, "\r\n", "\n"), "\n")

	// Tolerate leading blank lines; conformer-generator output is prefixed
	// with a newline so the toolkit recognizes the format.
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	lines = lines[start:]

	if len(lines) < 4 {
		return nil, errors.New(errors.CodeInvalidMolfile, "record too short for molfile header")
	}

	mol := &Molecule{
		Title: strings.TrimSpace(lines[0]),
		Raw:   strings.TrimSpace(record),
	}

	counts := lines[3]
	if len(counts) < 6 {
		return nil, errors.New(errors.CodeInvalidMolfile, "counts line too short").
			WithDetail(fmt.Sprintf("line=%q", counts))
	}
	numAtoms, err := strconv.Atoi(strings.TrimSpace(counts[0:3]))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidMolfile, "malformed atom count")
	}
	numBonds, err := strconv.Atoi(strings.TrimSpace(counts[3:6]))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidMolfile, "malformed bond count")
	}

	body := lines[4:]
	if len(body) < numAtoms+numBonds {
		return nil, errors.New(errors.CodeInvalidMolfile, "record shorter than declared atom and bond blocks").
			WithDetail(fmt.Sprintf("atoms=%d bonds=%d lines=%d", numAtoms, numBonds, len(body)))
	}

	for i := 0; i < numAtoms; i++ {
		line := body[i]
		if len(line) < 34 {
			return nil, errors.New(errors.CodeInvalidMolfile, "atom line too short").
				WithDetail(fmt.Sprintf("index=%d line=%q", i, line))
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(line[0:10]), 64)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidMolfile, "malformed x coordinate")
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(line[10:20]), 64)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidMolfile, "malformed y coordinate")
		}
		z, err := strconv.ParseFloat(strings.TrimSpace(line[20:30]), 64)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidMolfile, "malformed z coordinate")
		}
		symbol := strings.TrimSpace(line[31:34])
		mol.Atoms = append(mol.Atoms, Atom{
			Index:     i,
			AtomicNum: AtomicNumForSymbol(symbol),
			Symbol:    symbol,
			Coord:     Coord{x, y, z},
		})
	}

	for i := 0; i < numBonds; i++ {
		line := body[numAtoms+i]
		if len(line) < 9 {
			return nil, errors.New(errors.CodeInvalidMolfile, "bond line too short").
				WithDetail(fmt.Sprintf("index=%d line=%q", i, line))
		}
		begin, err := strconv.Atoi(strings.TrimSpace(line[0:3]))
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidMolfile, "malformed bond begin index")
		}
		end, err := strconv.Atoi(strings.TrimSpace(line[3:6]))
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidMolfile, "malformed bond end index")
		}
		order, err := strconv.Atoi(strings.TrimSpace(line[6:9]))
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidMolfile, "malformed bond order")
		}
		if begin < 1 || begin > numAtoms || end < 1 || end > numAtoms {
			return nil, errors.New(errors.CodeInvalidMolfile, "bond references atom index out of range").
				WithDetail(fmt.Sprintf("begin=%d end=%d atoms=%d", begin, end, numAtoms))
		}
		mol.Bonds = append(mol.Bonds, Bond{Begin: begin - 1, End: end - 1, Order: order})
	}

	mol.Data = parseDataItems(body[numAtoms+numBonds:])
	return mol, nil
}

// parseDataItems extracts "> <NAME>" data blocks following the connection
// table.  Each block's value is the text up to the next blank line.
func parseDataItems(lines []string) map[string]string {
	var data map[string]string
	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, ">") {
			i++
			continue
		}
		open := strings.Index(line, "<")
		close := strings.LastIndex(line, ">")
		if open < 0 || close <= open {
			i++
			continue
		}
		name := line[open+1 : close]
		var value []string
		i++
		for i < len(lines) {
			v := strings.TrimRight(lines[i], " \t")
			if strings.TrimSpace(v) == "" || strings.TrimSpace(v) == RecordTerminator {
				break
			}
			value = append(value, v)
			i++
		}
		if data == nil {
			data = make(map[string]string)
		}
		data[name] = strings.Join(value, "\n")
	}
	return data
}

// WriteSDF serializes the molecule back to a single SDF record, terminated
// by "$$$$".  Coordinates are written with molfile's fixed 10.4 width; data
// items are re-emitted after "M  END".
func WriteSDF(m *Molecule) string {
	var sb strings.Builder

	sb.WriteString(m.Title)
	sb.WriteString("\n\n\n")

	fmt.Fprintf(&sb, "%3d%3d  0     1  0  0  0  0  0999 V2000\n", len(m.Atoms), len(m.Bonds))

	for _, a := range m.Atoms {
		fmt.Fprintf(&sb, "%10.4f%10.4f%10.4f %-3s 0  0  0  0  0  0  0  0  0  0  0  0\n",
			a.Coord[0], a.Coord[1], a.Coord[2], a.Symbol)
	}
	for _, b := range m.Bonds {
		fmt.Fprintf(&sb, "%3d%3d%3d  0  0  0  0\n", b.Begin+1, b.End+1, b.Order)
	}
	sb.WriteString("M  END\n")

	names := make([]string, 0, len(m.Data))
	for name := range m.Data {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&sb, "> <%s>\n%s\n\n", name, m.Data[name])
	}
	sb.WriteString(RecordTerminator)
	sb.WriteString("\n")
	return sb.String()
}
