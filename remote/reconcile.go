// ABOUTME: Reconcile decides whether a fetched snapshot replaces local state.
// ABOUTME: Remote wins only when the fetch succeeded and its version beats the stash.
package remote

import "github.com/2389-research/corkboard/kanban"

// Reasons reported in an Outcome.
const (
	ReasonFetchFailed = "fetch-failed"
	ReasonLocalNewer  = "local-newer-or-equal"
	ReasonAdopted     = "adopted"
)

// Outcome is the result of comparing a fetch against the stashed version.
type Outcome struct {
	Adopt   bool
	Version int // version to stash when Adopt is true
	Reason  string
}

// Reconcile compares snap against the version stashed on the previous load.
func Reconcile(stashed int, snap *kanban.Snapshot, fetchErr error) Outcome {
	if fetchErr != nil || snap == nil {
		return Outcome{Reason: ReasonFetchFailed}
	}
	if snap.Version <= stashed {
		return Outcome{Reason: ReasonLocalNewer}
	}
	return Outcome{Adopt: true, Version: snap.Version, Reason: ReasonAdopted}
}
