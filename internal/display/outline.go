// Package display renders file analysis reports as plain text. JSON output
// is the default everywhere; this is the human-oriented alternative for
// reading a report in a terminal.
package display

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/jsmorph/internal/analysis"
)

// Outline renders a file report as an indented text summary.
func Outline(rep *analysis.FileReport) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s (%s, %s)\n", rep.Path, rep.Kind, rep.Strategy)
	if rep.ParseNote != "" {
		fmt.Fprintf(&sb, "  note: %s\n", rep.ParseNote)
	}

	if len(rep.Imports) > 0 {
		sb.WriteString("  imports:\n")
		for _, imp := range rep.Imports {
			fmt.Fprintf(&sb, "    %s%s  [line %d]\n", importLabel(imp), fromSource(imp), imp.Line)
		}
	}

	if len(rep.Classes) > 0 {
		sb.WriteString("  classes:\n")
		for _, c := range rep.Classes {
			label := c.Name
			if c.Extends != "" {
				label += " extends " + c.Extends
			}
			fmt.Fprintf(&sb, "    %s  [line %d]\n", label, c.Line)
			for _, m := range c.Methods {
				fmt.Fprintf(&sb, "      %s()\n", m)
			}
		}
	}

	if len(rep.Functions) > 0 {
		sb.WriteString("  functions:\n")
		for _, fn := range rep.Functions {
			if fn.Class != "" {
				continue // already listed under its class
			}
			fmt.Fprintf(&sb, "    %s  [line %d]\n", functionLabel(fn), fn.Line)
		}
	}

	if len(rep.Exports) > 0 {
		sb.WriteString("  exports:\n")
		for _, ex := range rep.Exports {
			label := ex.Name
			if ex.Default {
				label += " (default)"
			}
			if ex.Kind != "" {
				label += " " + ex.Kind
			}
			fmt.Fprintf(&sb, "    %s  [line %d]\n", label, ex.Line)
		}
	}

	return sb.String()
}

func functionLabel(fn analysis.FunctionInfo) string {
	prefix := ""
	if fn.Async {
		prefix = "async "
	}
	name := fn.Name
	if fn.Generator {
		name = "*" + name
	}
	return fmt.Sprintf("%s%s(%s)", prefix, name, strings.Join(fn.Params, ", "))
}

func importLabel(imp analysis.ImportInfo) string {
	var parts []string
	if imp.Default != "" {
		parts = append(parts, imp.Default)
	}
	if imp.Namespace != "" {
		parts = append(parts, "* as "+imp.Namespace)
	}
	if len(imp.Named) > 0 {
		parts = append(parts, "{ "+strings.Join(imp.Named, ", ")+" }")
	}
	if len(parts) == 0 {
		return "(side effect)"
	}
	return strings.Join(parts, ", ")
}

func fromSource(imp analysis.ImportInfo) string {
	if imp.Require {
		return fmt.Sprintf(" = require('%s')", imp.Source)
	}
	return fmt.Sprintf(" from '%s'", imp.Source)
}
