package mockhost

import (
	"fmt"
	"strings"

	"greenrun/internal/textutil"
	"greenrun/internal/wire"
)

// EvalResult is the outcome of evaluating one AID submission against the
// transition table (spec §4.10 "Transition evaluator").
type EvalResult struct {
	Success     bool
	Target      string
	DataUpdates map[string]string
	Error       string
}

// Evaluator matches (screen, AID, extracted fields) against a navigation
// config's transition rules, one per connection so concurrent sessions
// never share evaluation state (spec §5 "Isolation").
type Evaluator struct {
	nav   *NavigationConfig
	store *DataStore
}

// NewEvaluator builds an Evaluator bound to one navigation config and test
// data store, both read-only after load.
func NewEvaluator(nav *NavigationConfig, store *DataStore) *Evaluator {
	return &Evaluator{nav: nav, store: store}
}

// Evaluate finds the first rule matching sourceScreen and the AID name for
// aid, whose conditions are satisfied by the current input's extracted
// fields (never session data — see spec §4.10, §8). A matched rule that
// carries a validation hook runs it; validation failure still counts as a
// match and yields an error transition rather than falling through to a
// later rule.
func (e *Evaluator) Evaluate(sourceScreen string, aid byte, input map[string]string) EvalResult {
	aidName, ok := wire.AIDName(aid)
	if !ok {
		aidName = fmt.Sprintf("0x%02X", aid)
	}

	for _, rule := range e.nav.Transitions {
		if rule.SourceScreen != sourceScreen || rule.AIDKey != aidName {
			continue
		}
		if !conditionsSatisfied(rule.Conditions, input) {
			continue
		}

		if rule.ErrorMessage != "" {
			return EvalResult{Success: false, Error: rule.ErrorMessage}
		}

		if errMsg, ok := e.runValidation(rule, input); !ok {
			return EvalResult{Success: false, Error: errMsg}
		}

		updates := textutil.WithoutSensitive(input)
		for k, v := range rule.SetData {
			updates[k] = v
		}
		return EvalResult{Success: true, Target: rule.TargetScreen, DataUpdates: updates}
	}

	return EvalResult{Success: false, Error: fmt.Sprintf("Invalid key: %s", aidName)}
}

// conditionsSatisfied evaluates every condition against input only: for
// "empty"/"not_empty" atoms the current input is authoritative (no
// fallback to session state, spec §4.10); for a literal comparison a
// missing field is treated as "".
func conditionsSatisfied(conditions map[string]string, input map[string]string) bool {
	for field, expected := range conditions {
		actual := input[field]
		switch expected {
		case "empty":
			if actual != "" {
				return false
			}
		case "not_empty":
			if actual == "" {
				return false
			}
		default:
			if !strings.EqualFold(strings.TrimSpace(actual), strings.TrimSpace(expected)) {
				return false
			}
		}
	}
	return true
}

func (e *Evaluator) runValidation(rule TransitionRule, input map[string]string) (errMsg string, ok bool) {
	switch rule.Validation {
	case "":
		return "", true
	case "credentials":
		userID, password := input["user_id"], input["password"]
		for _, cred := range e.nav.Credentials {
			if strings.EqualFold(cred.UserID, userID) && cred.Password == password {
				return "", true
			}
		}
		return "Invalid user ID or password", false
	case "loan_exists":
		loanNumber := input["loan_number"]
		if _, found := e.store.Lookup("loans", "loan_number", loanNumber); found {
			return "", true
		}
		return fmt.Sprintf("Loan %s not found", loanNumber), false
	default:
		return "", true
	}
}
