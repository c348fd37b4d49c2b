package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/siftscience/sift-cli/internal/api"
	"github.com/siftscience/sift-cli/internal/config"
	"github.com/siftscience/sift-cli/internal/validation"
)

// HandleError processes an error and returns a user-friendly message with suggestions
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder

	var (
		apiErr     *api.APIError
		verr       *validation.Error
		structured *api.StructuredError
	)

	switch {
	case errors.Is(err, config.ErrNotConfigured):
		msg.WriteString("No API key configured.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Run: sift auth login --api-key <key>\n")
		msg.WriteString("  - Or export SIFT_API_KEY\n")

	case errors.As(err, &verr):
		fmt.Fprintf(&msg, "Invalid input: %s\n", verr.Message)
		if len(verr.Allowed) > 0 {
			fmt.Fprintf(&msg, "\nAllowed values for %s: %s\n", verr.Field, strings.Join(verr.Allowed, ", "))
		}

	case errors.As(err, &structured) && structured.Code == api.ErrSoftFailure:
		fmt.Fprintf(&msg, "Request failed: %s\n\n", structured.Message)
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Inspect error_message in the response\n")
		msg.WriteString("  - Use --debug or --dry-run to see the request\n")
		if id, ok := structured.Context["request_id"].(string); ok && id != "" {
			fmt.Fprintf(&msg, "\nRequest ID: %s\n", id)
		}

	case errors.As(err, &apiErr):
		msg.WriteString(describeAPIError(apiErr))

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())
	}

	return msg.String()
}

func describeAPIError(apiErr *api.APIError) string {
	var msg strings.Builder

	switch apiErr.Kind {
	case api.KindTransport:
		fmt.Fprintf(&msg, "Request failed: %s\n\n", apiErr.Error())
		msg.WriteString("Suggestions:\n")
		cause := strings.ToLower(apiErr.Error())
		switch {
		case apiErr.Timeout():
			msg.WriteString("  - The request timed out; raise --timeout or --connect-timeout\n")
		case strings.Contains(cause, "no such host"):
			msg.WriteString("  - Check the --base-url host name\n")
		case strings.Contains(cause, "certificate"):
			msg.WriteString("  - Verify the server's TLS certificate\n")
		default:
			msg.WriteString("  - Check your network connection\n")
			msg.WriteString("  - Verify the URL: sift auth status\n")
		}

	case api.KindMalformedResponse:
		fmt.Fprintf(&msg, "Malformed response: %s\n\n", apiErr.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check that --base-url points at the Sift API\n")

	default:
		detail := ""
		if apiErr.APIErrorMessage != nil {
			detail = *apiErr.APIErrorMessage
		}
		if detail != "" {
			fmt.Fprintf(&msg, "API error (HTTP %d): %s\n\n", apiErr.StatusCode, detail)
		} else {
			fmt.Fprintf(&msg, "API error (HTTP %d)\n\n", apiErr.StatusCode)
		}
		msg.WriteString(suggestionsForStatusCode(apiErr.StatusCode))
		if apiErr.RetryAfter > 0 {
			fmt.Fprintf(&msg, "  - The server asked to retry after %s\n", apiErr.RetryAfter)
		}
	}

	if apiErr.RequestID != "" {
		fmt.Fprintf(&msg, "\nRequest ID: %s\n", apiErr.RequestID)
	}
	return msg.String()
}

func suggestionsForStatusCode(code int) string {
	var suggestions strings.Builder
	suggestions.WriteString("Suggestions:\n")

	switch code {
	case 400:
		suggestions.WriteString("  - Check the payload fields and their types\n")
		suggestions.WriteString("  - Use --dry-run to see the request body\n")

	case 401:
		suggestions.WriteString("  - Your API key may be invalid or revoked\n")
		suggestions.WriteString("  - Run: sift auth login\n")

	case 403:
		suggestions.WriteString("  - The API key does not have access to this account\n")
		suggestions.WriteString("  - Check --account-id\n")

	case 404:
		suggestions.WriteString("  - The resource doesn't exist\n")
		suggestions.WriteString("  - Check the id and the account id\n")

	case 429:
		suggestions.WriteString("  - Too many requests\n")
		suggestions.WriteString("  - Wait and retry in a few seconds\n")

	case 500, 502, 503, 504:
		suggestions.WriteString("  - Server error, not your fault\n")
		suggestions.WriteString("  - Wait and retry\n")

	default:
		suggestions.WriteString("  - Use --debug for more details\n")
	}

	return suggestions.String()
}
