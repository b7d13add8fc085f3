// Package log is a thin structured logging layer over [log/slog].
//
// A [Logger] is created with [Make] and configured with functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"))
//
// Loggers are values. [Logger.Wrap] derives a logger with different options
// and [Logger.With] derives one carrying extra attributes; neither modifies
// the receiver.
//
// Attributes are always typed [slog.Attr] values:
//
//	logger.Info("artifact written",
//		slog.String("path", path),
//		slog.Bool("changed", true))
//
// The package also keeps a default logger, written to standard error, that
// backs the package-level functions ([Info], [DebugContext], and so on).
// [Config] replaces it with a reconfigured copy.
//
// The additional [LevelTrace] sits below [LevelDebug] and is used for
// per-symbol detail that is too noisy even for debug output.
package log
