package salesforce

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// notFoundHint is attached to NOT_FOUND-class rejections. The ambiguity is
// deliberate: the API does not distinguish a wrong org from a missing object
// or a permission gap, so callers must not assume a single root cause.
const notFoundHint = "object not visible: the org may be missing the feature, " +
	"the object name may be wrong, or the integration user may lack read permission"

// APIError is a classified Salesforce REST failure.
type APIError struct {
	StatusCode int
	ErrorCode  string
	Message    string
	Hint       string
}

func (e *APIError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("salesforce api error %d (%s): %s", e.StatusCode, e.ErrorCode, e.Message)
	}
	return fmt.Sprintf("salesforce api error %d: %s", e.StatusCode, e.Message)
}

// classifyError parses the structured error payload Salesforce returns as a
// JSON array of {message, errorCode} objects, falling back to the raw body.
func classifyError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}

	var payload []struct {
		Message   string `json:"message"`
		ErrorCode string `json:"errorCode"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload) > 0 {
		apiErr.ErrorCode = payload[0].ErrorCode
		apiErr.Message = payload[0].Message
	}

	switch apiErr.ErrorCode {
	case "NOT_FOUND", "INVALID_TYPE", "INVALID_FIELD":
		apiErr.Hint = notFoundHint
	}
	return apiErr
}

// DebugInfo renders an error as detail lines suitable for attaching to a
// CheckResult. Credential-like material never appears here: the classified
// error carries only status, code, message, and hint.
func DebugInfo(err error) []string {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		lines := []string{
			fmt.Sprintf("HTTP status: %d", apiErr.StatusCode),
		}
		if apiErr.ErrorCode != "" {
			lines = append(lines, fmt.Sprintf("Error code: %s", apiErr.ErrorCode))
		}
		if apiErr.Message != "" {
			lines = append(lines, fmt.Sprintf("Message: %s", redact(apiErr.Message)))
		}
		if apiErr.Hint != "" {
			lines = append(lines, fmt.Sprintf("Note: %s", apiErr.Hint))
		}
		return lines
	}
	return []string{fmt.Sprintf("Error: %s", redact(err.Error()))}
}

// redact strips credential-like tokens from free-form error text before it
// is attached to a report.
func redact(s string) string {
	for _, marker := range []string{"Bearer ", "access_token=", "session_id="} {
		if idx := strings.Index(s, marker); idx >= 0 {
			s = s[:idx+len(marker)] + "[redacted]"
		}
	}
	return s
}
