package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from PostStatus
		to   PostStatus
		want bool
	}{
		{"fetched to preprocessed", StatusFetched, StatusPreprocessed, true},
		{"fetched cannot skip ahead", StatusFetched, StatusPendingApproval, false},
		{"preprocessed to pending", StatusPreprocessed, StatusPendingApproval, true},
		{"pending to processing", StatusPendingApproval, StatusProcessingContent, true},
		{"pending to approved", StatusPendingApproval, StatusApproved, true},
		{"pending to rejected", StatusPendingApproval, StatusRejected, true},
		{"pending cannot go ready directly", StatusPendingApproval, StatusReadyForFinalApproval, false},
		{"pending cannot publish", StatusPendingApproval, StatusPublished, false},
		{"processing to ready", StatusProcessingContent, StatusReadyForFinalApproval, true},
		{"ready back to pending", StatusReadyForFinalApproval, StatusPendingApproval, true},
		{"ready to approved", StatusReadyForFinalApproval, StatusApproved, true},
		{"approved to published", StatusApproved, StatusPublished, true},
		{"any non-terminal to rejected", StatusFetched, StatusRejected, true},
		{"published is terminal", StatusPublished, StatusRejected, false},
		{"rejected is terminal", StatusRejected, StatusPendingApproval, false},
		{"rejected stays rejected", StatusRejected, StatusRejected, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanTransition(tc.from, tc.to))
		})
	}
}

func TestDecideTransition(t *testing.T) {
	cases := []struct {
		name string
		from PostStatus
		to   PostStatus
		want TransitionOutcome
	}{
		{"repeated pending is a no-op", StatusPendingApproval, StatusPendingApproval, TransitionNoop},
		{"repeated published is a no-op", StatusPublished, StatusPublished, TransitionNoop},
		{"repeated rejected is a no-op", StatusRejected, StatusRejected, TransitionNoop},
		{"preprocessed to pending applies", StatusPreprocessed, StatusPendingApproval, TransitionApply},
		{"ready back to pending applies", StatusReadyForFinalApproval, StatusPendingApproval, TransitionApply},
		{"ready straight to processing conflicts", StatusReadyForFinalApproval, StatusProcessingContent, TransitionConflict},
		{"fetched cannot skip ahead", StatusFetched, StatusPendingApproval, TransitionConflict},
		{"published cannot be rejected", StatusPublished, StatusRejected, TransitionConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DecideTransition(tc.from, tc.to))
		})
	}
}

// From PENDING_APPROVAL the only reachable statuses are
// PROCESSING_CONTENT, APPROVED and REJECTED.
func TestPendingApprovalReachableSet(t *testing.T) {
	all := []PostStatus{
		StatusFetched, StatusPreprocessed, StatusPendingApproval,
		StatusProcessingContent, StatusReadyForFinalApproval,
		StatusApproved, StatusPublished, StatusRejected,
	}

	var reachable []PostStatus
	for _, s := range all {
		if CanTransition(StatusPendingApproval, s) {
			reachable = append(reachable, s)
		}
	}

	assert.ElementsMatch(t,
		[]PostStatus{StatusProcessingContent, StatusApproved, StatusRejected},
		reachable)
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, StatusPublished.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.False(t, StatusPendingApproval.IsTerminal())
	assert.False(t, StatusFetched.IsTerminal())
}
