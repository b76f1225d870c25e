package leagueapi

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

// Field arrays are probed in a fixed order so a payload faulting several
// fields always yields the same message.
var errorFieldPriority = []string{
	"predicted_team",
	"league",
	"email",
	"password",
	"new_password",
	"old_password",
}

// mapStatusError converts a non-2xx response into a usecase sentinel carrying
// the most specific human-readable message the payload offers.
func mapStatusError(status int, raw []byte) error {
	message := extractErrorMessage(raw)
	if message == "" && len(raw) > 0 {
		message = fmt.Sprintf("backend status=%d body=%s", status, abbreviateBody(raw))
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return wrapStatus(usecase.ErrUnauthorized, status, message)
	case status == http.StatusNotFound:
		return wrapStatus(usecase.ErrNotFound, status, message)
	case status == http.StatusConflict:
		return wrapStatus(usecase.ErrAlreadyPredicted, status, message)
	case status == http.StatusBadRequest:
		if looksLikeDuplicatePrediction(message) {
			return wrapStatus(usecase.ErrAlreadyPredicted, status, message)
		}
		return wrapStatus(usecase.ErrInvalidInput, status, message)
	case status >= 500 || status == http.StatusTooManyRequests:
		return wrapStatus(usecase.ErrDependencyUnavailable, status, message)
	default:
		return wrapStatus(usecase.ErrInvalidInput, status, message)
	}
}

func wrapStatus(sentinel error, status int, message string) error {
	if message == "" {
		return fmt.Errorf("%w: backend status=%d", sentinel, status)
	}
	return fmt.Errorf("%w: %s", sentinel, message)
}

// The backend rejects duplicate predictions with a validation payload rather
// than a 409, so the message text is the only conflict signal on a 400.
func looksLikeDuplicatePrediction(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "already") &&
		(strings.Contains(lower, "predict") || strings.Contains(lower, "exists"))
}

// extractErrorMessage digs the most specific message out of a DRF-style error
// payload. Priority: per-field string arrays (known fields first, the rest in
// sorted key order), then "error", then "detail". Anything undecodable yields
// an empty message and the caller falls back to a status-only description.
func extractErrorMessage(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	var payload map[string]any
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return ""
	}

	for _, key := range fieldProbeOrder(payload) {
		if message := firstStringElement(payload[key]); message != "" {
			return fmt.Sprintf("%s: %s", key, message)
		}
	}
	if message := stringValue(payload["error"]); message != "" {
		return message
	}
	return stringValue(payload["detail"])
}

func fieldProbeOrder(payload map[string]any) []string {
	known := make(map[string]struct{}, len(errorFieldPriority))
	keys := make([]string, 0, len(payload))
	for _, key := range errorFieldPriority {
		known[key] = struct{}{}
		if _, ok := payload[key]; ok {
			keys = append(keys, key)
		}
	}

	rest := make([]string, 0, len(payload))
	for key := range payload {
		if key == "error" || key == "detail" {
			continue
		}
		if _, ok := known[key]; ok {
			continue
		}
		rest = append(rest, key)
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func firstStringElement(value any) string {
	items, ok := value.([]any)
	if !ok || len(items) == 0 {
		return ""
	}
	return stringValue(items[0])
}

func stringValue(value any) string {
	text, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(text)
}
