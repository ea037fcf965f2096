package molecule

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/turtacn/MolGraph-Pipeline/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Structural validation
// ─────────────────────────────────────────────────────────────────────────────

// SMILESHasError reports whether a SMILES string fails the cheap structural
// check applied before any conversion is attempted: the counts of "(" vs ")"
// and "[" vs "]" must match.  Records failing this check are skipped
// silently by the pipeline; they never reach the external tool.
func SMILESHasError(smiles string) bool {
	smiles = strings.TrimSpace(smiles)
	return strings.Count(smiles, "(") != strings.Count(smiles, ")") ||
		strings.Count(smiles, "[") != strings.Count(smiles, "]")
}

// ─────────────────────────────────────────────────────────────────────────────
// SMILES parsing (connection table only, no geometry)
// ─────────────────────────────────────────────────────────────────────────────

// ParseSMILES builds a Molecule from a SMILES string: atoms and bonds only,
// no coordinates.  It understands the organic subset, bracket atoms, branch
// parentheses, explicit bond symbols, ring closures (single digit and
// %nn), and dot-separated fragments.  Stereochemistry markers are accepted
// and ignored.
//
// The resulting molecule carries the trimmed SMILES text as both Title and
// Raw, so 2D graphs annotate their source record per the converter contract.
func ParseSMILES(smiles string) (*Molecule, error) {
	smiles = strings.TrimSpace(smiles)
	if smiles == "" {
		return nil, errors.New(errors.CodeInvalidSMILES, "SMILES string is empty")
	}
	if SMILESHasError(smiles) {
		return nil, errors.New(errors.CodeInvalidSMILES, "unbalanced brackets in SMILES").
			WithDetail(smiles)
	}

	mol := &Molecule{Title: smiles, Raw: smiles}

	runes := []rune(smiles)
	i := 0
	prevAtom := -1
	nextOrder := 0 // 0 = unspecified (single, or aromatic between aromatic atoms)
	var branchStack []int
	ringOpen := map[int]int{} // ring-closure number → waiting atom index
	aromatic := map[int]bool{}

	addAtom := func(symbol string, isAromatic bool) int {
		idx := len(mol.Atoms)
		mol.Atoms = append(mol.Atoms, Atom{
			Index:     idx,
			AtomicNum: AtomicNumForSymbol(symbol),
			Symbol:    symbol,
		})
		aromatic[idx] = isAromatic
		return idx
	}
	bondOrder := func(a, b int) int {
		if nextOrder != 0 {
			return nextOrder
		}
		if aromatic[a] && aromatic[b] {
			return 4
		}
		return 1
	}
	closeRing := func(num, atom int) {
		if open, ok := ringOpen[num]; ok {
			mol.Bonds = append(mol.Bonds, Bond{Begin: open, End: atom, Order: bondOrder(open, atom)})
			nextOrder = 0
			delete(ringOpen, num)
		} else {
			ringOpen[num] = atom
		}
	}
	connect := func(atom int) {
		if prevAtom >= 0 {
			mol.Bonds = append(mol.Bonds, Bond{Begin: prevAtom, End: atom, Order: bondOrder(prevAtom, atom)})
			nextOrder = 0
		}
		prevAtom = atom
	}

	for i < len(runes) {
		ch := runes[i]
		switch {
		case ch == '(':
			branchStack = append(branchStack, prevAtom)
			i++

		case ch == ')':
			if len(branchStack) == 0 {
				return nil, errors.New(errors.CodeInvalidSMILES, "unmatched branch close").WithDetail(smiles)
			}
			prevAtom = branchStack[len(branchStack)-1]
			branchStack = branchStack[:len(branchStack)-1]
			i++

		case ch == '-':
			nextOrder = 1
			i++
		case ch == '=':
			nextOrder = 2
			i++
		case ch == '#':
			nextOrder = 3
			i++
		case ch == ':':
			nextOrder = 4
			i++

		case ch == '/' || ch == '\\':
			// Stereo bond markers carry no connectivity information here.
			i++

		case ch == '.':
			prevAtom = -1
			nextOrder = 0
			i++

		case ch == '%':
			if i+2 >= len(runes) || !unicode.IsDigit(runes[i+1]) || !unicode.IsDigit(runes[i+2]) {
				return nil, errors.New(errors.CodeInvalidSMILES, "malformed two-digit ring closure").WithDetail(smiles)
			}
			if prevAtom < 0 {
				return nil, errors.New(errors.CodeInvalidSMILES, "ring closure before any atom").WithDetail(smiles)
			}
			num := int(runes[i+1]-'0')*10 + int(runes[i+2]-'0')
			closeRing(num, prevAtom)
			i += 3

		case unicode.IsDigit(ch):
			if prevAtom < 0 {
				return nil, errors.New(errors.CodeInvalidSMILES, "ring closure before any atom").WithDetail(smiles)
			}
			closeRing(int(ch-'0'), prevAtom)
			i++

		case ch == '[':
			j := i + 1
			for j < len(runes) && runes[j] != ']' {
				j++
			}
			if j >= len(runes) {
				return nil, errors.New(errors.CodeInvalidSMILES, "unclosed bracket atom").WithDetail(smiles)
			}
			symbol, isAromatic, err := parseBracketAtom(string(runes[i+1 : j]))
			if err != nil {
				return nil, err
			}
			connect(addAtom(symbol, isAromatic))
			i = j + 1

		case unicode.IsLetter(ch):
			symbol, isAromatic, advance := parseOrganicAtom(runes, i)
			if AtomicNumForSymbol(symbol) == 0 {
				return nil, errors.New(errors.CodeInvalidSMILES, "unknown element symbol").
					WithDetail(fmt.Sprintf("symbol=%q smiles=%s", symbol, smiles))
			}
			connect(addAtom(symbol, isAromatic))
			i += advance

		default:
			return nil, errors.New(errors.CodeInvalidSMILES, "unexpected character in SMILES").
				WithDetail(fmt.Sprintf("char=%q smiles=%s", string(ch), smiles))
		}
	}

	if len(ringOpen) != 0 {
		return nil, errors.New(errors.CodeInvalidSMILES, "unclosed ring bond").WithDetail(smiles)
	}
	return mol, nil
}

// parseOrganicAtom extracts an organic-subset atom symbol starting at
// position i.  Lowercase first letters mark aromatic atoms.  Returns
// (symbol, isAromatic, runesConsumed).
func parseOrganicAtom(runes []rune, i int) (string, bool, int) {
	ch := runes[i]
	aromatic := unicode.IsLower(ch)
	upper := unicode.ToUpper(ch)

	// Two-letter elements (Cl, Br) take precedence over one-letter reads.
	if !aromatic && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
		twoLetter := string([]rune{upper, runes[i+1]})
		if AtomicNumForSymbol(twoLetter) != 0 {
			return twoLetter, false, 2
		}
	}
	return string(upper), aromatic, 1
}

// parseBracketAtom extracts the element symbol from the content of a
// bracket atom expression, skipping isotope prefixes and ignoring charge,
// hydrogen-count, and chirality suffixes.
func parseBracketAtom(content string) (string, bool, error) {
	runes := []rune(content)
	idx := 0
	for idx < len(runes) && unicode.IsDigit(runes[idx]) {
		idx++
	}
	if idx >= len(runes) || !unicode.IsLetter(runes[idx]) {
		return "", false, errors.New(errors.CodeInvalidSMILES, "bracket atom has no element symbol").
			WithDetail(content)
	}
	aromatic := unicode.IsLower(runes[idx])
	start := idx
	idx++
	for idx < len(runes) && unicode.IsLower(runes[idx]) {
		idx++
	}
	symbol := string(runes[start:idx])
	if aromatic {
		symbol = strings.ToUpper(symbol[:1]) + symbol[1:]
	}
	// Two-letter reads can swallow a following modifier letter; fall back to
	// the one-letter symbol when the longer form is not an element.
	if AtomicNumForSymbol(symbol) == 0 && len(symbol) > 1 {
		symbol = symbol[:1]
	}
	if AtomicNumForSymbol(symbol) == 0 {
		return "", false, errors.New(errors.CodeInvalidSMILES, "unknown element in bracket atom").
			WithDetail(content)
	}
	return symbol, aromatic, nil
}
