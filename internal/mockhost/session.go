package mockhost

import (
	"fmt"
	"io"

	"greenrun/internal/catalog"
	"greenrun/internal/datastream"
	"greenrun/internal/logging"
)

// Session holds one connection's navigation state (spec §3 "Session
// state"). A Session is owned exclusively by the goroutine serving its
// connection; nothing here is shared across sessions (spec §5
// "Isolation").
type Session struct {
	ID              string
	CurrentScreen   string
	IsAuthenticated bool
	UserID          string
	Data            map[string]string
}

// newSession creates a session parked on the navigation config's initial
// screen with an empty data dictionary.
func newSession(id string, nav *NavigationConfig) *Session {
	return &Session{ID: id, CurrentScreen: nav.InitialScreen, Data: make(map[string]string)}
}

// hydrateRelatedLookups merges a matched test-data record into session
// data whenever its key field becomes defined — e.g. once loan_number is
// set, the rest of that loan's fields become available to the renderer
// (spec §4.11 "hydrate related lookups").
func hydrateRelatedLookups(sess *Session, store *DataStore) {
	if loanNumber, ok := sess.Data["loan_number"]; ok && loanNumber != "" {
		if row, found := store.Lookup("loans", "loan_number", loanNumber); found {
			for k, v := range row {
				sess.Data[k] = v
			}
		}
	}
}

// updateAuthentication applies spec §4.11's authentication-state rules:
// entering any screen other than the initial one from the initial screen
// authenticates the session and captures its user ID; re-entering the
// initial screen clears authentication and the whole data dictionary
// (documented Open Question (a): the socket itself stays open, see
// SPEC_FULL.md §11).
func updateAuthentication(sess *Session, nav *NavigationConfig, previousScreen, targetScreen string) {
	if targetScreen == nav.InitialScreen {
		sess.IsAuthenticated = false
		sess.UserID = ""
		sess.Data = make(map[string]string)
		return
	}
	if previousScreen == nav.InitialScreen {
		sess.IsAuthenticated = true
		sess.UserID = sess.Data["user_id"]
	}
}

// conn is the minimal transport surface the session loop needs; satisfied
// by net.Conn in production and by net.Pipe()'s ends in tests.
type conn interface {
	io.Reader
	io.Writer
}

// runSession drives one already-negotiated connection: send the initial
// screen, then loop on input records until the connection closes or a
// read, decode or write fails (spec §4.11 "Session + TCP server").
func runSession(id string, rw conn, cat *catalog.Catalog, nav *NavigationConfig, store *DataStore, pending []byte) error {
	log := logging.Get(logging.CategoryMockhost)
	sess := newSession(id, nav)

	def, ok := cat.Get(sess.CurrentScreen)
	if !ok {
		return fmt.Errorf("mockhost: initial screen %q not found in catalog", sess.CurrentScreen)
	}
	record, err := Render(def, sess.Data, "")
	if err != nil {
		return fmt.Errorf("mockhost: rendering initial screen: %w", err)
	}
	if _, err := rw.Write(record); err != nil {
		return fmt.Errorf("mockhost: writing initial screen: %w", err)
	}

	fr := datastream.NewFrameReader(rw, pending)
	evaluator := NewEvaluator(nav, store)

	for {
		raw, err := fr.ReadRecord()
		if err != nil {
			if err == datastream.ErrClosed {
				log.Info("session %s: connection closed", id)
				return nil
			}
			return fmt.Errorf("mockhost: reading input record: %w", err)
		}

		aid, _, _, modified, err := datastream.DecodeInput(raw)
		if err != nil {
			return fmt.Errorf("mockhost: decoding input record: %w", err)
		}

		extracted := Extract(def, modified)
		result := evaluator.Evaluate(sess.CurrentScreen, aid, extracted)

		var errMsg string
		if !result.Success {
			errMsg = result.Error
		} else {
			previousScreen := sess.CurrentScreen
			for k, v := range result.DataUpdates {
				sess.Data[k] = v
			}
			hydrateRelatedLookups(sess, store)
			updateAuthentication(sess, nav, previousScreen, result.Target)
			sess.CurrentScreen = result.Target

			def, ok = cat.Get(sess.CurrentScreen)
			if !ok {
				return fmt.Errorf("mockhost: target screen %q not found in catalog", result.Target)
			}
		}

		record, err := Render(def, sess.Data, errMsg)
		if err != nil {
			return fmt.Errorf("mockhost: rendering screen %q: %w", def.ID, err)
		}
		if _, err := rw.Write(record); err != nil {
			return fmt.Errorf("mockhost: writing screen %q: %w", def.ID, err)
		}
	}
}
