package resolve

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPrefix is prepended to symbol names in persisted configurations
// and generated macros.
const DefaultPrefix = "CONFIG_"

// Layer is a set of symbol overrides read from one configuration file.
// Values are keyed by symbol name without prefix and hold the literal text,
// unquoted and unescaped for strings, or "n" for "is not set" records.
type Layer struct {
	Name   string
	Values map[string]string
}

// ReadLayer parses records in the persisted configuration format from r.
// Lines that are neither records nor comments are logged and skipped.
// A later record for the same symbol replaces an earlier one.
func ReadLayer(r io.Reader, name, prefix string, opts ...Option) (Layer, error) {
	o := makeOptions(opts...)
	layer := Layer{Name: name, Values: map[string]string{}}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())

		sym, value, ok := parseRecord(text, prefix)
		if !ok {
			if text != "" && !strings.HasPrefix(text, "#") {
				o.logger.Warn("ignoring malformed configuration line",
					slog.String("layer", name),
					slog.Int("line", line),
					slog.String("text", text),
				)
			}

			continue
		}

		layer.Values[sym] = value
	}

	if err := sc.Err(); err != nil {
		return Layer{}, ErrReadLayer.With(slog.String("layer", name)).Wrap(err)
	}

	return layer, nil
}

// LoadLayer reads the configuration file at path. A missing file is
// reported as [ErrMissingInput].
func LoadLayer(path, prefix string, opts ...Option) (Layer, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Layer{}, ErrMissingInput.With(slog.String("path", path))
		}

		return Layer{}, ErrReadLayer.With(slog.String("path", path)).Wrap(err)
	}
	defer f.Close()

	return ReadLayer(f, path, prefix, opts...)
}

// parseRecord recognizes "PREFIXNAME=value" and "# PREFIXNAME is not set".
func parseRecord(text, prefix string) (name, value string, ok bool) {
	if rest, found := strings.CutPrefix(text, "# "+prefix); found {
		name, found = strings.CutSuffix(rest, " is not set")
		if !found || !validName(name) {
			return "", "", false
		}

		return name, "n", true
	}

	rest, found := strings.CutPrefix(text, prefix)
	if !found {
		return "", "", false
	}

	name, value, found = strings.Cut(rest, "=")
	if !found || !validName(name) {
		return "", "", false
	}

	if strings.HasPrefix(value, `"`) {
		value, ok = unescape(value)
		if !ok {
			return "", "", false
		}

		return name, value, true
	}

	return name, value, true
}

func validName(s string) bool {
	if s == "" {
		return false
	}

	for _, c := range s {
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_':
		default:
			return false
		}
	}

	return true
}

// unescape decodes a double-quoted value in which backslash escapes the
// following character.
func unescape(s string) (string, bool) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", false
	}

	s = s[1 : len(s)-1]

	var b strings.Builder

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case c == '\\':
			if i+1 == len(s) {
				return "", false
			}

			i++
			b.WriteByte(s[i])

		case c == '"':
			return "", false

		default:
			b.WriteByte(c)
		}
	}

	return b.String(), true
}

// escape quotes s for a persisted configuration record.
func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)

	return `"` + r.Replace(s) + `"`
}

// FindDefconfig locates the override layer for board under search: the
// board-specific "<search>/<board>/defconfig" if it exists, otherwise the
// global "<search>/defconfig".
func FindDefconfig(search, board string) (string, bool) {
	var candidates []string

	if board != "" {
		candidates = append(candidates, filepath.Join(search, board, "defconfig"))
	}

	candidates = append(candidates, filepath.Join(search, "defconfig"))

	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}

	return "", false
}
