package log

import "log/slog"

func TimerID(id int64) slog.Attr {
	return slog.Int64("timer_id", id)
}

func ProcessInstanceID[T ~int64](id T) slog.Attr {
	return slog.Int64("process_instance_id", int64(id))
}

func ProcessID[T ~string](id T) slog.Attr {
	return slog.String("process_id", string(id))
}

func SessionID[T ~string](id T) slog.Attr {
	return slog.String("session_id", string(id))
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
