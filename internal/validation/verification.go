package validation

// Payload keys used by the verification endpoints.
const (
	KeyUserID           = "$user_id"
	KeySendTo           = "$send_to"
	KeyVerificationType = "$verification_type"
	KeyEvent            = "$event"
	KeySessionID        = "$session_id"
	KeyCode             = "$code"
)

// VerificationSend checks the payload of a verification send call.
func VerificationSend(props map[string]any) error {
	if err := NonEmptyMapping("properties", props); err != nil {
		return err
	}
	if err := nonEmptyStringValue("user_id", props[KeyUserID]); err != nil {
		return err
	}
	if err := nonEmptyStringValue("send_to", props[KeySendTo]); err != nil {
		return err
	}
	if err := nonEmptyStringValue("verification_type", props[KeyVerificationType]); err != nil {
		return err
	}

	event, ok := AsMapping(props[KeyEvent])
	if !ok {
		return typeError("event", "%s must be a mapping", KeyEvent)
	}
	if len(event) == 0 {
		return valueError("event", "%s mapping may not be empty", KeyEvent)
	}
	return nonEmptyStringValue("session_id", event[KeySessionID])
}

// VerificationResend checks the payload of a verification resend call.
func VerificationResend(props map[string]any) error {
	if err := NonEmptyMapping("properties", props); err != nil {
		return err
	}
	return nonEmptyStringValue("user_id", props[KeyUserID])
}

// VerificationCheck checks the payload of a verification check call. The
// code may be any JSON value but must be present.
func VerificationCheck(props map[string]any) error {
	if err := NonEmptyMapping("properties", props); err != nil {
		return err
	}
	if err := nonEmptyStringValue("user_id", props[KeyUserID]); err != nil {
		return err
	}
	if props[KeyCode] == nil {
		return valueError("code", "code is required")
	}
	return nil
}
