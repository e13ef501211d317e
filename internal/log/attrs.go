package log

import "log/slog"

func RunID[T ~string](id T) slog.Attr {
	return slog.String("run_id", string(id))
}

func HistoryID[T ~string](id T) slog.Attr {
	return slog.String("history_id", string(id))
}

func DatasetID[T ~string](id T) slog.Attr {
	return slog.String("dataset_id", string(id))
}

func ToolID[T ~string](id T) slog.Attr {
	return slog.String("tool_id", string(id))
}

func State[T ~string](state T) slog.Attr {
	return slog.String("state", string(state))
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}
