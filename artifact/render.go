package artifact

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ardnew/kconfgen/kconfig"
	"github.com/ardnew/kconfgen/resolve"
)

// Render returns the header text of a.
//
// Symbols resolved to n produce no macro at all. Help text is emitted as
// one comment per non-blank line directly above the macro it documents.
// The output depends only on a and the values in res.
func Render(a Artifact, res *resolve.Resolution, opts ...Option) []byte {
	o := makeOptions(opts...)

	var b bytes.Buffer

	if o.header != "" {
		b.WriteString(o.header)
		b.WriteByte('\n')
	} else {
		fmt.Fprintf(&b, "/* Auto-generated by kconfgen for %s - DO NOT EDIT */\n\n", a.Spec.Title)
	}

	fmt.Fprintf(&b, "#ifndef %s\n#define %s\n\n", a.Spec.Guard, a.Spec.Guard)
	fmt.Fprintf(&b, "/* %s */\n\n", a.Spec.Title)

	for _, g := range a.Groups {
		if g.Path != kconfig.Ungrouped {
			fmt.Fprintf(&b, "/* %s */\n", g.Path)
		}

		for _, s := range g.Symbols {
			v, _ := res.Value(s.Name)

			line, ok := Macro(s, v, o.prefix)
			if !ok {
				continue
			}

			for _, help := range s.HelpLines() {
				fmt.Fprintf(&b, "/* %s */\n", help)
			}

			b.WriteString(line)
			b.WriteString("\n\n")
		}
	}

	for _, c := range a.Spec.Counts {
		fmt.Fprintf(&b, "#define %s %d\n\n", c.Name, count(c, res))
	}

	fmt.Fprintf(&b, "#endif /* %s */\n", a.Spec.Guard)

	return b.Bytes()
}

// Macro returns the #define line for s with value v, or false if the value
// produces no macro: n for bool and tristate, and empty int or hex.
func Macro(s *kconfig.Symbol, v kconfig.Value, prefix string) (string, bool) {
	name := prefix + s.Name

	switch s.Type {
	case kconfig.TypeBool, kconfig.TypeTristate:
		switch v.Tri {
		case kconfig.On:
			return "#define " + name + " 1", true
		case kconfig.Module:
			return "#define " + name + "_MODULE 1", true
		default:
			return "", false
		}

	case kconfig.TypeString:
		return "#define " + name + " " + quote(v.Text), true

	case kconfig.TypeHex:
		if v.Text == "" {
			return "", false
		}

		text := v.Text
		if !strings.HasPrefix(text, "0x") && !strings.HasPrefix(text, "0X") {
			text = "0x" + text
		}

		return "#define " + name + " " + text, true

	default:
		if v.Text == "" {
			return "", false
		}

		return "#define " + name + " " + v.Text, true
	}
}

var cEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// quote returns s as a C string literal.
func quote(s string) string { return `"` + cEscaper.Replace(s) + `"` }

// count returns how many symbols of c resolved to y.
func count(c Count, res *resolve.Resolution) int {
	n := 0

	for _, name := range c.Symbols {
		if v, ok := res.Value(name); ok && v.Type.IsTristate() && v.Tri == kconfig.On {
			n++
		}
	}

	return n
}
