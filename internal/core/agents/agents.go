// Package agents defines the fixed agent set and the identifiers derived
// from agent pairs: conversation IDs and conversation keys.
package agents

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Agent identifiers for the five pipeline stages. The set is fixed at
// compile time; every ledger participant must be one of these.
const (
	Strategist  = "strategist"
	Feasibility = "feasibility"
	Compliance  = "compliance"
	Economics   = "economics"
	Synthesis   = "synthesis"
)

// All lists every valid agent in pipeline order.
var All = []string{Strategist, Feasibility, Compliance, Economics, Synthesis}

// Validation errors for ledger participants.
var (
	ErrInvalidParticipant = errors.New("participant is not a valid agent")
	ErrSelfReference      = errors.New("sender and recipient cannot be the same agent")
)

// IsValid reports whether name is a member of the fixed agent set.
func IsValid(name string) bool {
	for _, a := range All {
		if a == name {
			return true
		}
	}
	return false
}

// ValidatePair checks a sender/recipient pair against the fixed agent set.
func ValidatePair(sender, recipient string) error {
	if !IsValid(sender) {
		return fmt.Errorf("invalid sender %q: %w", sender, ErrInvalidParticipant)
	}
	if !IsValid(recipient) {
		return fmt.Errorf("invalid recipient %q: %w", recipient, ErrInvalidParticipant)
	}
	if sender == recipient {
		return ErrSelfReference
	}
	return nil
}

// sortedPair returns the two participants in lexical order.
func sortedPair(a, b string) (string, string) {
	pair := []string{a, b}
	sort.Strings(pair)
	return pair[0], pair[1]
}

// ConversationID derives the time-qualified conversation identifier for a
// pair of agents. It is collision-tolerant, not cryptographically unique:
// two messages in the same second share an ID, which groups them into one
// resolvable conversation.
func ConversationID(sender, recipient string, at time.Time) string {
	first, second := sortedPair(sender, recipient)
	return fmt.Sprintf("%s-%s-%s", first, second, at.UTC().Format("20060102150405"))
}

// ConversationKey derives the time-independent key used for unresolved-turn
// counting: the sorted participant pair plus the issue text. Calendar-distinct
// conversation IDs about the same issue count as one negotiation thread.
func ConversationKey(sender, recipient, issue string) string {
	first, second := sortedPair(sender, recipient)
	return fmt.Sprintf("%s:%s:%s", first, second, issue)
}
