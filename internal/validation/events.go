package validation

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// ReservedEvents are the event names the scoring service defines. Custom
// events must not start with "$".
var ReservedEvents = []string{
	"$add_item_to_cart",
	"$add_promotion",
	"$chargeback",
	"$content_status",
	"$create_account",
	"$create_content",
	"$create_order",
	"$flag_content",
	"$label",
	"$link_session_to_user",
	"$login",
	"$logout",
	"$order_status",
	"$remove_item_from_cart",
	"$security_notification",
	"$transaction",
	"$update_account",
	"$update_content",
	"$update_order",
	"$update_password",
	"$verification",
}

// IsReservedEvent reports whether name is one of ReservedEvents.
func IsReservedEvent(name string) bool {
	for _, candidate := range ReservedEvents {
		if name == candidate {
			return true
		}
	}
	return false
}

// SuggestEventName returns the closest reserved event name for a "$"-prefixed
// name that is not reserved. It returns "" when name is reserved, custom, or
// nothing is close enough.
func SuggestEventName(name string) string {
	if !strings.HasPrefix(name, "$") || IsReservedEvent(name) {
		return ""
	}
	matches := fuzzy.Find(strings.ToLower(name), ReservedEvents)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}
