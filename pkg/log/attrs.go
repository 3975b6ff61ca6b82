package log

import "log/slog"

func Step[T ~string](id T) slog.Attr {
	return slog.String("step", string(id))
}

func Role[T ~string](role T) slog.Attr {
	return slog.String("role", string(role))
}

func Service[T ~string](svc T) slog.Attr {
	return slog.String("service", string(svc))
}

func JobID[T ~string](id T) slog.Attr {
	return slog.String("job_id", string(id))
}

func Status[T ~string](status T) slog.Attr {
	return slog.String("status", string(status))
}

func Event[T ~string](typ T) slog.Attr {
	return slog.String("event", string(typ))
}

func Session(id string) slog.Attr {
	return slog.String("session_id", id)
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}

func ErrorString(msg string) slog.Attr {
	return slog.String("error", msg)
}
