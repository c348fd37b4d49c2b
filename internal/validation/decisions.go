package validation

import (
	"strings"
)

// Decision sources accepted by the apply-decision endpoints.
const (
	SourceManualReview  = "MANUAL_REVIEW"
	SourceAutomatedRule = "AUTOMATED_RULE"
	SourceChargeback    = "CHARGEBACK"
)

// DecisionSources lists the allowed values of the "source" field.
var DecisionSources = []string{SourceManualReview, SourceAutomatedRule, SourceChargeback}

// EntityTypes lists the entity types the decisions query accepts.
var EntityTypes = []string{"user", "order", "session", "content"}

// DecisionProperties checks the payload of an apply-decision call.
func DecisionProperties(props map[string]any) error {
	if err := NonEmptyMapping("properties", props); err != nil {
		return err
	}

	source := props["source"]
	if err := nonEmptyStringValue("source", source); err != nil {
		return err
	}
	s := source.(string)

	allowed := false
	for _, candidate := range DecisionSources {
		if s == candidate {
			allowed = true
			break
		}
	}
	if !allowed {
		err := valueError("source", "decision 'source' must be one of [%s]", strings.Join(DecisionSources, ", "))
		err.Allowed = DecisionSources
		return err
	}

	if s == SourceManualReview && !truthy(props["analyst"]) {
		return valueError("analyst", "must provide 'analyst' for decision 'source': 'MANUAL_REVIEW'")
	}
	return nil
}

// EntityType checks the entity_type argument of the decisions query.
// Matching is case-insensitive; the value is sent as given.
func EntityType(entityType string) error {
	if entityType == "" {
		return valueError("entity_type", "entity_type must be a non-empty string")
	}
	lower := strings.ToLower(entityType)
	for _, candidate := range EntityTypes {
		if lower == candidate {
			return nil
		}
	}
	err := valueError("entity_type", "entity_type must be one of {%s}", strings.Join(EntityTypes, ", "))
	err.Allowed = EntityTypes
	return err
}

// truthy reports whether v would count as "provided": present, non-nil and
// not an empty string, mapping or slice.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	default:
		return true
	}
}
