// Package session implements the sync controller: a state machine over a
// single document session that keeps the committed schema graph and the
// displayed DDL text in step through edit, apply, cancel, and live-edit
// cycles. All pipeline stages are pure in-memory computations; the session
// is the sole owner and mutator of its graph.
package session

import (
	"fmt"

	"github.com/FocuswithJustin/SchemaCanvas/core/dialect"
	apperrors "github.com/FocuswithJustin/SchemaCanvas/core/errors"
	"github.com/FocuswithJustin/SchemaCanvas/core/graph"
	"github.com/FocuswithJustin/SchemaCanvas/core/reconcile"
	"github.com/FocuswithJustin/SchemaCanvas/core/repair"
	"github.com/FocuswithJustin/SchemaCanvas/core/sqlgen"
	"github.com/FocuswithJustin/SchemaCanvas/core/sqlparse"
)

// State identifies where a session is in its edit cycle.
type State string

const (
	// Clean means the displayed DDL equals the generated DDL of the
	// committed graph.
	Clean State = "clean"
	// Editing means the text buffer holds user modifications that have not
	// been applied yet.
	Editing State = "editing"
	// LiveEditing is Editing where every text change immediately attempts a
	// repair, parse, reconcile, commit cycle.
	LiveEditing State = "live-editing"
)

// Session owns one schema document: the committed graph, the DDL text
// buffer shown to the user, and the edit-cycle state. It is not safe for
// concurrent use; callers sharing a session across goroutines serialize
// access externally.
type Session struct {
	dialect dialect.Dialect
	graph   *graph.SchemaGraph

	state       State
	ddl         string
	fingerprint string
	snapshot    string
	committed   bool

	pending  []settingChange
	notices  []string
	warnings []error
	err      error
}

// settingChange is a graph-affecting setting mutation deferred while an
// edit is in progress.
type settingChange struct {
	what  string
	apply func(*Session)
}

// New creates a clean session owning g and generates its initial DDL. A
// nil graph starts the session empty.
func New(d dialect.Dialect, g *graph.SchemaGraph) *Session {
	if g == nil {
		g = graph.NewSchemaGraph()
	}
	g.EnsureIDs()
	s := &Session{dialect: d, graph: g, state: Clean}
	s.regenerate()
	return s
}

// State returns the current edit-cycle state.
func (s *Session) State() State { return s.state }

// Dialect returns the active target dialect.
func (s *Session) Dialect() dialect.Dialect { return s.dialect }

// Graph returns the committed schema graph.
func (s *Session) Graph() *graph.SchemaGraph { return s.graph }

// DDL returns the current text buffer: generated DDL when Clean, the
// user's edited text while editing.
func (s *Session) DDL() string { return s.ddl }

// Fingerprint returns the BLAKE3 fingerprint of the current text buffer.
func (s *Session) Fingerprint() string { return s.fingerprint }

// Err returns the displayed error from the last pipeline run, or nil.
func (s *Session) Err() error { return s.err }

// Notices returns the user-visible notices recorded for deferred setting
// changes. Notices clear once the deferred changes take effect.
func (s *Session) Notices() []string { return s.notices }

// Warnings returns the generation warnings from the last regeneration.
func (s *Session) Warnings() []error { return s.warnings }

// BeginEdit moves a clean session into Editing, snapshotting the current
// DDL as the rollback point for Cancel.
func (s *Session) BeginEdit() error {
	if s.state != Clean {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "edit already in progress")
	}
	s.state = Editing
	s.snapshot = s.ddl
	s.committed = false
	s.err = nil
	return nil
}

// SetText replaces the edited text buffer. In LiveEditing the full
// pipeline runs immediately: success commits the merged graph, failure
// sets the displayed error but never reverts the buffer.
func (s *Session) SetText(text string) error {
	switch s.state {
	case Editing:
		s.storeText(text)
		return nil
	case LiveEditing:
		s.storeText(text)
		if err := s.commitText(text); err != nil {
			s.err = err
			return err
		}
		s.err = nil
		return nil
	default:
		return apperrors.Wrap(apperrors.ErrInvalidInput, "no edit in progress")
	}
}

// Apply runs Repair, Parse, Reconcile over the edited text, commits the
// merged graph, lets any deferred setting changes take effect, and
// regenerates the DDL. On failure the committed graph, the snapshot, and
// the edited text are all left untouched and the session stays in its
// editing state with Err set.
func (s *Session) Apply() error {
	if s.state != Editing && s.state != LiveEditing {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "no edit in progress")
	}
	if err := s.commitText(s.ddl); err != nil {
		s.err = err
		return err
	}
	s.applyPending()
	s.state = Clean
	s.snapshot = ""
	s.committed = false
	s.err = nil
	s.regenerate()
	return nil
}

// Cancel discards the edited text and returns to Clean. The buffer is
// restored from the snapshot unless a live edit already committed or a
// deferred setting change is waiting; then the DDL is regenerated from
// the committed graph instead, since the snapshot no longer matches it.
func (s *Session) Cancel() error {
	if s.state != Editing && s.state != LiveEditing {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "no edit in progress")
	}
	s.state = Clean
	s.err = nil
	if len(s.pending) > 0 || s.committed {
		s.applyPending()
		s.regenerate()
	} else {
		s.setDDL(s.snapshot)
	}
	s.snapshot = ""
	s.committed = false
	return nil
}

// ToggleLive switches between Editing and LiveEditing.
func (s *Session) ToggleLive() error {
	switch s.state {
	case Editing:
		s.state = LiveEditing
	case LiveEditing:
		s.state = Editing
	default:
		return apperrors.Wrap(apperrors.ErrInvalidInput, "no edit in progress")
	}
	return nil
}

// SetGraph replaces the committed graph with one supplied by the visual
// editor. The graph is taken as-is and becomes authoritative. Only a
// clean session accepts a replacement; during an edit the text buffer is
// the authority.
func (s *Session) SetGraph(g *graph.SchemaGraph) error {
	if s.state != Clean {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "edit in progress")
	}
	if g == nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "nil graph")
	}
	g.EnsureIDs()
	s.graph = g
	s.regenerate()
	return nil
}

// SetDialect switches the target dialect. A clean session regenerates
// immediately; during an edit the change is deferred until the next
// successful Apply and a notice records that pending edits take
// precedence.
func (s *Session) SetDialect(d dialect.Dialect) error {
	parsed, err := dialect.Parse(string(d))
	if err != nil {
		return err
	}
	s.change(fmt.Sprintf("dialect change to %s", parsed), func(s *Session) {
		s.dialect = parsed
	})
	return nil
}

// SetCaseSensitive toggles quoted, case-preserving identifier emission.
// Deferral rules match SetDialect.
func (s *Session) SetCaseSensitive(v bool) {
	s.change(fmt.Sprintf("case-sensitive identifiers %t", v), func(s *Session) {
		s.graph.Settings.CaseSensitiveIdentifiers = v
	})
}

// SetInlineConstraints toggles inline foreign-key emission. Deferral
// rules match SetDialect.
func (s *Session) SetInlineConstraints(v bool) {
	s.change(fmt.Sprintf("inline constraints %t", v), func(s *Session) {
		s.graph.Settings.UseInlineConstraints = v
	})
}

func (s *Session) change(what string, apply func(*Session)) {
	if s.state == Clean {
		apply(s)
		s.regenerate()
		return
	}
	s.pending = append(s.pending, settingChange{what: what, apply: apply})
	s.notices = append(s.notices,
		fmt.Sprintf("%s deferred until apply: pending edits take precedence", what))
}

// commitText runs the repair, parse, reconcile pipeline over text and
// commits the merged graph. The committed graph is untouched on failure.
func (s *Session) commitText(text string) error {
	repaired := repair.Repair(text)
	parsed, err := sqlparse.Parse(s.dialect, repaired)
	if err != nil {
		return err
	}
	s.graph = reconcile.Reconcile(s.graph, parsed)
	s.committed = true
	return nil
}

func (s *Session) applyPending() {
	for _, p := range s.pending {
		p.apply(s)
	}
	s.pending = nil
	s.notices = nil
}

// regenerate renders the committed graph and rewrites the text buffer,
// unless the fingerprint shows the rendered text is already displayed.
func (s *Session) regenerate() {
	text, warns := sqlgen.Generate(s.dialect, s.graph)
	s.warnings = warns
	s.setDDL(text)
}

func (s *Session) setDDL(text string) {
	fp := sqlgen.Fingerprint(text)
	if fp == s.fingerprint {
		return
	}
	s.ddl = text
	s.fingerprint = fp
}

func (s *Session) storeText(text string) {
	s.ddl = text
	s.fingerprint = sqlgen.Fingerprint(text)
}
