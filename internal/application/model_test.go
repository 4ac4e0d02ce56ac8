package application

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusPending, StatusUnderReview, true},
		{StatusPending, StatusApproved, false},
		{StatusPending, StatusCancelled, true},
		{StatusUnderReview, StatusApproved, true},
		{StatusUnderReview, StatusInterviewScheduled, true},
		{StatusUnderReview, StatusCommitteePending, true},
		{StatusInterviewScheduled, StatusApproved, true},
		{StatusInterviewScheduled, StatusUnderReview, false},
		{StatusCommitteePending, StatusCommitteeApproved, true},
		{StatusCommitteePending, StatusApproved, false},
		{StatusApproved, StatusCompleted, true},
		{StatusApproved, StatusRejected, false},
		{StatusCommitteeApproved, StatusCompleted, true},
		// Terminal statuses allow nothing.
		{StatusRejected, StatusUnderReview, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		// Unknown statuses allow nothing.
		{"draft", StatusPending, false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestIsApprovedStatus(t *testing.T) {
	approved := map[string]bool{
		StatusApproved:          true,
		StatusCommitteeApproved: true,
	}
	all := []string{
		StatusPending, StatusUnderReview, StatusInterviewScheduled,
		StatusCommitteePending, StatusApproved, StatusCommitteeApproved,
		StatusRejected, StatusCompleted, StatusCancelled,
	}
	for _, status := range all {
		if got := IsApprovedStatus(status); got != approved[status] {
			t.Errorf("IsApprovedStatus(%s) = %v, want %v", status, got, approved[status])
		}
	}
}
