package browse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/kconfgen/kconfig"
)

// Styles.
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	nameStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	enabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	matchStyle    = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
)

// renderName highlights the matched byte offsets of name.
func renderName(name string, matched []int, selected bool) string {
	if selected {
		return selectedStyle.Render(name)
	}

	if len(matched) == 0 {
		return nameStyle.Render(name)
	}

	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}

	var b strings.Builder

	for i, r := range name {
		if hit[i] {
			b.WriteString(matchStyle.Render(string(r)))
		} else {
			b.WriteString(nameStyle.Render(string(r)))
		}
	}

	return b.String()
}

// renderValue colors a resolved value by whether it enables the symbol.
func renderValue(r row) string {
	switch {
	case !r.visible:
		return hintStyle.Render("(hidden)")
	case r.sym.Type.IsTristate() && r.value == "n":
		return disabledStyle.Render(r.value)
	case r.sym.Type.IsTristate():
		return enabledStyle.Render(r.value)
	case r.sym.Type == kconfig.TypeString:
		return valueStyle.Render(strconv.Quote(r.value))
	default:
		return valueStyle.Render(r.value)
	}
}

// renderRow renders one line of the symbol list.
func renderRow(r row, matched []int, selected bool, nameWidth int) string {
	name := renderName(r.sym.Name, matched, selected)
	pad := max(nameWidth-lipgloss.Width(r.sym.Name), 0)

	marker := "  "
	if selected {
		marker = promptStyle.Render("> ")
	}

	return marker + name + strings.Repeat(" ", pad+2) +
		renderValue(r) + "  " + hintStyle.Render(r.menu)
}

// renderDetails renders every property of the symbol in r.
func renderDetails(r row, tree *kconfig.Tree) string {
	var b strings.Builder

	field := func(label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-10s", label)))
		b.WriteString(value)
		b.WriteString("\n")
	}

	s := r.sym

	b.WriteString(titleStyle.Render(s.Name))
	b.WriteString("\n\n")

	field("Type", s.Type.String())

	if p := s.Prompt(); p != "" {
		field("Prompt", p)
	}

	field("Value", renderValue(r))
	field("Depends", s.Depends.String())

	for i, d := range s.Defaults {
		label := ""
		if i == 0 {
			label = "Defaults"
		}

		field(label, defaultText(d))
	}

	for i, rg := range s.Ranges {
		label := ""
		if i == 0 {
			label = "Ranges"
		}

		text := rg.Low + " " + rg.High
		if rg.Cond != nil {
			text += " if " + rg.Cond.String()
		}

		field(label, text)
	}

	for i, loc := range s.Locations {
		label := ""
		if i == 0 {
			label = "Defined"
		}

		field(label, fmt.Sprintf("%s:%d %s",
			loc.File, loc.Line, hintStyle.Render(tree.MenuPath(loc))))
	}

	if help := s.Help(); help != "" {
		b.WriteString("\n")
		b.WriteString(help)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render("Esc/Enter: back  Ctrl+C: quit"))
	b.WriteString("\n")

	return b.String()
}

func defaultText(d kconfig.Default) string {
	text := d.Text

	switch {
	case d.Value != nil:
		text = d.Value.String()
	case d.Ref != "":
		text = d.Ref
	}

	if d.Cond != nil {
		text += " if " + d.Cond.String()
	}

	return text
}
