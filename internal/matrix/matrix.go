package matrix

import (
	"sort"

	"github.com/sqlsage/sqlsage/internal/advice"
)

// cellKey identifies one matrix cell. Names are normalized before keying
// so lookups tolerate case, Unicode form, and whitespace differences.
type cellKey struct {
	name string
	env  advice.Environment
}

// Matrix is the compiled capability table. Immutable after New.
type Matrix struct {
	cells map[cellKey]advice.CapabilityRow

	// display maps each normalized name to the spelling the source
	// declared first, so diagnostics echo the curated name rather than
	// whatever spelling the caller used.
	display map[string]string

	// rows preserves source declaration order for rendering.
	rows []advice.CapabilityRow
}

// New builds a Matrix from compiled rows. Two rows landing on the same
// (normalized name, environment) cell are rejected even when their declared
// spellings differ, since lookups could not tell them apart.
func New(rows []advice.CapabilityRow) (*Matrix, error) {
	m := &Matrix{
		cells:   make(map[cellKey]advice.CapabilityRow, len(rows)),
		display: make(map[string]string),
		rows:    make([]advice.CapabilityRow, 0, len(rows)),
	}
	for _, row := range rows {
		norm := advice.NormalizeCapabilityName(row.Name)
		key := cellKey{name: norm, env: row.Environment}
		if prior, ok := m.cells[key]; ok {
			return nil, NewDuplicateEntryError(row, prior)
		}
		m.cells[key] = row
		if _, seen := m.display[norm]; !seen {
			m.display[norm] = row.Name
		}
		m.rows = append(m.rows, row)
	}
	return m, nil
}

// Resolve answers availability for one capability in one environment.
// The returned status echoes the curated row, constraint note included.
func (m *Matrix) Resolve(name string, env advice.Environment) (advice.CapabilityStatus, error) {
	norm := advice.NormalizeCapabilityName(name)
	if row, ok := m.cells[cellKey{name: norm, env: env}]; ok {
		return row.Status(), nil
	}
	display, tracked := m.display[norm]
	if !tracked {
		return advice.CapabilityStatus{}, NewUnknownCapabilityError(name, len(m.display))
	}
	return advice.CapabilityStatus{}, NewUnknownEnvironmentError(display, env, m.coverage(norm))
}

// coverage lists the environments that carry a row for the normalized name,
// in canonical environment order.
func (m *Matrix) coverage(norm string) []advice.Environment {
	var covered []advice.Environment
	for _, env := range advice.Environments {
		if _, ok := m.cells[cellKey{name: norm, env: env}]; ok {
			covered = append(covered, env)
		}
	}
	return covered
}

// Rows returns a copy of every row in source declaration order.
func (m *Matrix) Rows() []advice.CapabilityRow {
	out := make([]advice.CapabilityRow, len(m.rows))
	copy(out, m.rows)
	return out
}

// Names returns the curated capability names, sorted, one per capability
// regardless of how many environments carry rows for it.
func (m *Matrix) Names() []string {
	names := make([]string, 0, len(m.display))
	for _, display := range m.display {
		names = append(names, display)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of (capability, environment) rows.
func (m *Matrix) Len() int {
	return len(m.rows)
}
