package leaderboard

import "testing"

func intPtr(v int) *int { return &v }

func TestNormalize_PrefersNestedProfileAliases(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{
			ProfileFirstName: "Ayu",
			ProfileLastName:  "Lestari",
			ProfileUserEmail: "ayu@example.com",
			FirstName:        "stale-flat",
			LastName:         "stale-flat",
			UserEmail:        "flat@example.com",
			Points:           intPtr(12),
		},
	}

	entries := Normalize(rows)
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got=%d", len(entries))
	}
	if got := entries[0].DisplayName(); got != "Ayu Lestari" {
		t.Fatalf("unexpected display name: got=%q", got)
	}
	if entries[0].Email != "ayu@example.com" {
		t.Fatalf("unexpected email: got=%q", entries[0].Email)
	}
	if entries[0].Points != 12 {
		t.Fatalf("unexpected points: got=%d", entries[0].Points)
	}
}

func TestNormalize_FallsBackToFlatAliases(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{
			FirstName:   "Budi",
			LastName:    "Santoso",
			UserEmail:   "budi@example.com",
			TotalPoints: intPtr(7),
		},
	}

	entries := Normalize(rows)
	if got := entries[0].DisplayName(); got != "Budi Santoso" {
		t.Fatalf("unexpected display name: got=%q", got)
	}
	if entries[0].Email != "budi@example.com" {
		t.Fatalf("unexpected email: got=%q", entries[0].Email)
	}
	if entries[0].Points != 7 {
		t.Fatalf("unexpected points from total_points fallback: got=%d", entries[0].Points)
	}
}

func TestNormalize_EmptyNameFieldsStayEmpty(t *testing.T) {
	t.Parallel()

	entries := Normalize([]Row{{}})
	if got := entries[0].DisplayName(); got != "" {
		t.Fatalf("expected empty display name, got=%q", got)
	}
	if entries[0].Points != 0 {
		t.Fatalf("expected zero points, got=%d", entries[0].Points)
	}
}

func TestNormalize_RankDefaultsToReceivedOrder(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{FirstName: "first"},
		{FirstName: "second"},
		{FirstName: "third", Rank: 2},
	}

	entries := Normalize(rows)
	if entries[0].Rank != 1 || entries[1].Rank != 2 {
		t.Fatalf("expected positional ranks 1,2 got=%d,%d", entries[0].Rank, entries[1].Rank)
	}
	// An explicit rank from the backend is trusted, ties included.
	if entries[2].Rank != 2 {
		t.Fatalf("expected explicit rank 2, got=%d", entries[2].Rank)
	}
}

func TestNormalize_KeepsPredictedTeamForLeagueRows(t *testing.T) {
	t.Parallel()

	entries := Normalize([]Row{{PredictedTeamName: " Persija Jakarta "}})
	if entries[0].PredictedTeamName != "Persija Jakarta" {
		t.Fatalf("unexpected predicted team: got=%q", entries[0].PredictedTeamName)
	}
}
