package resolve

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/ardnew/kconfgen/kconfig"
)

// WriteConfig writes the visible symbols of res in declaration order as
// persisted configuration records, with a comment block introducing each
// change of menu path. Reading the output back with [ReadLayer] and
// resolving it as the only layer reproduces res.
func WriteConfig(w io.Writer, res *Resolution, prefix string) error {
	bw := bufio.NewWriter(w)

	title := res.Tree.Title
	if title == "" {
		title = "Configuration"
	}

	fmt.Fprintf(bw, "#\n# Automatically generated file; DO NOT EDIT.\n# %s\n#\n", title)

	group := kconfig.Ungrouped

	for _, s := range res.Tree.Symbols {
		if !res.Visible(s.Name) {
			continue
		}

		line, ok := record(s, res.values[s.Name], prefix)
		if !ok {
			continue
		}

		if path := res.Tree.MenuPath(s.Locations[0]); path != group {
			group = path

			if path == kconfig.Ungrouped {
				bw.WriteString("\n")
			} else {
				fmt.Fprintf(bw, "\n#\n# %s\n#\n", path)
			}
		}

		bw.WriteString(line)
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// FormatConfig returns the output of [WriteConfig].
func FormatConfig(res *Resolution, prefix string) []byte {
	var buf bytes.Buffer

	_ = WriteConfig(&buf, res, prefix)

	return buf.Bytes()
}

func record(s *kconfig.Symbol, v kconfig.Value, prefix string) (string, bool) {
	name := prefix + s.Name

	switch s.Type {
	case kconfig.TypeBool, kconfig.TypeTristate:
		if v.Tri == kconfig.Off {
			return "# " + name + " is not set", true
		}

		return name + "=" + v.Tri.String(), true

	case kconfig.TypeString:
		return name + "=" + escape(v.Text), true

	default:
		if v.Text == "" {
			return "", false
		}

		return name + "=" + v.Text, true
	}
}
