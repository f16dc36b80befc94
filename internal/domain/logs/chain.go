package logs

import (
	"fmt"

	"github.com/eravn/syncdeck/internal/domain/session"
)

// ChainIssue flags a retry-linkage inconsistency in backend data. The
// retryOf/retriedBy fields are plain identity references, so they are
// checked at load time instead of trusted blindly.
type ChainIssue struct {
	SessionID string `json:"sessionId"`
	Reason    string `json:"reason"`
}

// VerifyChain checks the retry linkage of a loaded session set:
//
//   - retryOf must resolve to a session of the same project,
//   - the referenced session must have started before its retry,
//   - at most one session may retry any given original (chains are linear),
//   - retried/retriedBy on the original must agree with retryOf on the
//     retry (two views of the same edge).
//
// Issues are flagged, not repaired; the backend owns the data.
func VerifyChain(sessions []session.Session) []ChainIssue {
	byID := make(map[string]*session.Session, len(sessions))
	for i := range sessions {
		byID[sessions[i].ID] = &sessions[i]
	}

	var issues []ChainIssue
	retriers := make(map[string]string) // original ID -> retrying session ID

	for i := range sessions {
		s := &sessions[i]
		if s.RetryOf == "" {
			continue
		}

		orig, ok := byID[s.RetryOf]
		if !ok {
			// The original may simply be outside the loaded window; only
			// flag what is verifiably wrong, which is nothing here.
			continue
		}

		if orig.ProjectID != s.ProjectID {
			issues = append(issues, ChainIssue{
				SessionID: s.ID,
				Reason:    fmt.Sprintf("retryOf %s belongs to project %s, not %s", s.RetryOf, orig.ProjectID, s.ProjectID),
			})
			continue
		}

		if !orig.StartedAt.Before(s.StartedAt) {
			issues = append(issues, ChainIssue{
				SessionID: s.ID,
				Reason:    fmt.Sprintf("retryOf %s did not start before its retry", s.RetryOf),
			})
		}

		if prev, dup := retriers[s.RetryOf]; dup {
			issues = append(issues, ChainIssue{
				SessionID: s.ID,
				Reason:    fmt.Sprintf("session %s is already retried by %s; chains must be linear", s.RetryOf, prev),
			})
			continue
		}
		retriers[s.RetryOf] = s.ID

		if !orig.Retried {
			issues = append(issues, ChainIssue{
				SessionID: orig.ID,
				Reason:    fmt.Sprintf("retried flag not set although %s retries it", s.ID),
			})
		}
		if orig.RetriedBy != "" && orig.RetriedBy != s.ID {
			issues = append(issues, ChainIssue{
				SessionID: orig.ID,
				Reason:    fmt.Sprintf("retriedBy %s disagrees with retryOf edge from %s", orig.RetriedBy, s.ID),
			})
		}
	}

	// A retried flag with no retrying session in the set is only wrong if
	// retriedBy points inside the loaded set.
	for i := range sessions {
		s := &sessions[i]
		if !s.Retried || s.RetriedBy == "" {
			continue
		}
		t, ok := byID[s.RetriedBy]
		if ok && t.RetryOf != s.ID {
			issues = append(issues, ChainIssue{
				SessionID: s.ID,
				Reason:    fmt.Sprintf("retriedBy %s does not reference this session back", s.RetriedBy),
			})
		}
	}

	return issues
}
