package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Role records a role name under the key "role".
func Role(role any) slog.Attr {
	if role == nil {
		return slog.Attr{}
	}
	return slog.Any("role", role)
}

// UserID records the user identifier under the key "user_id".
// If id is nil, it returns an empty Attr.
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// FlowID records the auth flow correlation identifier under the key "flow_id".
// If id is nil, it returns an empty Attr.
func FlowID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("flow_id", id)
}

// ClientID records the installation identifier under the key "client_id".
// If id is nil, it returns an empty Attr.
func ClientID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("client_id", id)
}
