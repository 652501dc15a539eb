package control

// Table holds the persisted default mappings plus an optional session-local
// override. Edits always go to the local copy; the local copy is discarded
// the moment it becomes equal to the default again, so a session only
// diverges while it actually differs.
//
// The table is owned by a single control loop and is not synchronized.
type Table struct {
	def   Mappings
	local Mappings
}

func NewTable(def Mappings) *Table {
	if def == nil {
		def = Mappings{}
	}
	return &Table{def: def}
}

// Default returns the persisted mapping set.
func (t *Table) Default() Mappings { return t.def }

// Local returns the session override, or nil when the session tracks the
// default.
func (t *Table) Local() Mappings { return t.local }

// SetDefault replaces the persisted mappings, e.g. after a server state push.
func (t *Table) SetDefault(def Mappings) {
	if def == nil {
		def = Mappings{}
	}
	t.def = def
	t.collapse()
}

// Effective returns the mapping the mixer should consult for a group. A
// missing group yields an empty mapping, never an error.
func (t *Table) Effective(group string) Mapping {
	src := t.def
	if t.local != nil {
		src = t.local
	}
	if m, ok := src[group]; ok {
		return m
	}
	return Mapping{}
}

// Bindings returns the ordered binding list for one action, empty when the
// group or action is absent.
func (t *Table) Bindings(group string, action Action) []Binding {
	return t.Effective(group)[action]
}

// Add appends a binding to an action's list.
func (t *Table) Add(group string, action Action, b Binding) {
	m := t.edit(group)
	m[action] = append(m[action], b)
	t.collapse()
}

// ReplaceAt swaps the binding at index i. Out-of-range indices are ignored.
func (t *Table) ReplaceAt(group string, action Action, i int, b Binding) {
	m := t.edit(group)
	if i < 0 || i >= len(m[action]) {
		return
	}
	m[action][i] = b
	t.collapse()
}

// RemoveAt deletes the binding at index i. Out-of-range indices are ignored.
func (t *Table) RemoveAt(group string, action Action, i int) {
	m := t.edit(group)
	if i < 0 || i >= len(m[action]) {
		return
	}
	m[action] = append(m[action][:i], m[action][i+1:]...)
	t.collapse()
}

// ResetAction restores one action's bindings from a reference mapping set.
func (t *Table) ResetAction(group string, action Action, ref Mappings) {
	m := t.edit(group)
	bs := ref[group][action]
	if len(bs) == 0 {
		delete(m, action)
	} else {
		m[action] = append([]Binding(nil), bs...)
	}
	t.collapse()
}

// ClearGroup removes every binding of a group.
func (t *Table) ClearGroup(group string) {
	t.ensureLocal()
	t.local[group] = Mapping{}
	t.collapse()
}

// ResetGroup restores a whole group from a reference mapping set.
func (t *Table) ResetGroup(group string, ref Mappings) {
	t.ensureLocal()
	if m, ok := ref[group]; ok {
		t.local[group] = m.Clone()
	} else {
		delete(t.local, group)
	}
	t.collapse()
}

// ResetAll drops the session override entirely.
func (t *Table) ResetAll() { t.local = nil }

func (t *Table) ensureLocal() {
	if t.local == nil {
		t.local = t.def.Clone()
		if t.local == nil {
			t.local = Mappings{}
		}
	}
}

func (t *Table) edit(group string) Mapping {
	t.ensureLocal()
	m, ok := t.local[group]
	if !ok {
		m = Mapping{}
		t.local[group] = m
	}
	return m
}

func (t *Table) collapse() {
	if t.local != nil && t.local.Equal(t.def) {
		t.local = nil
	}
}
