package util

type Envelope map[string]any

func Error(message string) Envelope {
	return Envelope{"error": message}
}

// FieldError reports a validation failure tied to one input field.
func FieldError(message, field, reason string) Envelope {
	return Envelope{"error": message, "field": field, "reason": reason}
}

func Data(key string, value any) Envelope {
	return Envelope{key: value}
}

func Page(key string, value any, limit, offset int) Envelope {
	return Envelope{key: value, "limit": limit, "offset": offset}
}
