package pipeline

import (
	"io"
	"math/rand"

	"github.com/turtacn/MolGraph-Pipeline/internal/domain/molecule"
	"github.com/turtacn/MolGraph-Pipeline/pkg/errors"
)

// CompoundIDs scans an SDF stream and returns the distinct compound ids in
// order of first appearance.  Unparsable records are skipped.
func CompoundIDs(r io.Reader) ([]string, error) {
	scanner := newSDFScanner(r)
	seen := make(map[string]bool)
	var ids []string
	for scanner.Scan() {
		mol, err := molecule.ParseSDF(scanner.Record())
		if err != nil {
			continue
		}
		id := mol.CompoundID()
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "reading input stream")
	}
	return ids, nil
}

// SelectByCompoundID copies the records of an SDF stream whose compound id
// appears in ids to w, preserving input order.  With firstOnly set, only
// the first record of each selected id is kept, dropping the remaining
// conformers.  Unparsable records are skipped.
func SelectByCompoundID(r io.Reader, w io.Writer, ids []string, firstOnly bool) error {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	written := make(map[string]bool, len(ids))

	scanner := newSDFScanner(r)
	for scanner.Scan() {
		record := scanner.Record()
		mol, err := molecule.ParseSDF(record)
		if err != nil {
			continue
		}
		id := mol.CompoundID()
		if !wanted[id] {
			continue
		}
		if firstOnly && written[id] {
			continue
		}
		written[id] = true
		if _, err := io.WriteString(w, record); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "writing selected record")
		}
		if _, err := io.WriteString(w, molecule.RecordTerminator+"\n"); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "writing selected record")
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "reading input stream")
	}
	return nil
}

// RandomBipartition splits ids into two disjoint parts: the first holds
// relativeSize of the ids (rounded down, at least one when ids is
// non-empty and relativeSize is positive), the second holds the rest.  The
// split is a deterministic function of the seed.
func RandomBipartition(ids []string, relativeSize float64, seed int64) (first, second []string) {
	if len(ids) == 0 {
		return nil, nil
	}
	if relativeSize < 0 {
		relativeSize = 0
	}
	if relativeSize > 1 {
		relativeSize = 1
	}
	cut := int(relativeSize * float64(len(ids)))
	if cut == 0 && relativeSize > 0 {
		cut = 1
	}

	perm := rand.New(rand.NewSource(seed)).Perm(len(ids))
	for i, idx := range perm {
		if i < cut {
			first = append(first, ids[idx])
		} else {
			second = append(second, ids[idx])
		}
	}
	return first, second
}
