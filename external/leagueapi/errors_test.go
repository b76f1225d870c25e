package leagueapi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractErrorMessage_StableAcrossMultiFieldPayloads(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "known field wins over another known field",
			body: `{"league":["league is closed"],"predicted_team":["team already taken"]}`,
			want: "predicted_team: team already taken",
		},
		{
			name: "unknown fields fall back to sorted key order",
			body: `{"zeta":["last"],"alpha":["first"]}`,
			want: "alpha: first",
		},
		{
			name: "known field beats unknown field regardless of key order",
			body: `{"aaa":["generic"],"league":["league is closed"]}`,
			want: "league: league is closed",
		},
		{
			name: "field array beats top-level error",
			body: `{"error":"bad request","email":["invalid email"]}`,
			want: "email: invalid email",
		},
		{
			name: "error beats detail",
			body: `{"error":"bad request","detail":"unused"}`,
			want: "bad request",
		},
		{
			name: "detail is the last resort",
			body: `{"detail":"not found"}`,
			want: "not found",
		},
		{
			name: "undecodable body yields nothing",
			body: `<html>502</html>`,
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			// Repeat to catch any dependence on map iteration order.
			for range 20 {
				require.Equal(t, tc.want, extractErrorMessage([]byte(tc.body)))
			}
		})
	}
}
