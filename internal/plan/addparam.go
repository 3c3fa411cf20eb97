package plan

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/jsmorph/internal/classify"
	"github.com/standardbeagle/jsmorph/internal/jserrors"
	"github.com/standardbeagle/jsmorph/internal/refindex"
	"github.com/standardbeagle/jsmorph/internal/types"
)

// Param describes a parameter to add to a function signature. Type is only
// emitted for TypeScript files; Default doubles as the argument inserted at
// call sites when call propagation is on.
type Param struct {
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	Default string `json:"default,omitempty"`
}

// AddParameter plans inserting a parameter into every declaration of
// functionName and, when updateCalls is set, a matching argument into every
// direct call site. Call sites that cannot take the default automatically
// are reported as needs_manual_update diagnostics instead of edits. When no
// declaration exists anywhere in the target set the whole plan is a
// zero-effect not_found result: call sites are never touched for a function
// that was not located.
func AddParameter(ix *refindex.Index, functionName string, param Param, position int, updateCalls bool) (*Plan, error) {
	if !classify.ValidIdentifier(param.Name) {
		return nil, jserrors.New(jserrors.ErrorTypeInvalidInput, "add_parameter",
			fmt.Errorf("%q is not a valid parameter name", param.Name))
	}

	p := newPlan("add_parameter")

	declsFound := planDeclarations(p, ix, functionName, param, position)
	if declsFound == 0 {
		msg := "no function declaration named " + functionName + " found"
		if hint := NearestName(functionName, ix.SymbolNames()); hint != "" {
			msg += "; did you mean " + hint + "?"
		}
		p.diag(DiagNotFound, "", 0, "%s", msg)
	} else if updateCalls {
		planCallUpdates(p, ix, functionName, param, position)
	}

	if err := p.normalize(); err != nil {
		return nil, jserrors.New(jserrors.ErrorTypeInternal, "add_parameter", err)
	}
	return p, nil
}

// planDeclarations edits every located signature and returns how many
// declarations resolved to an actual function.
func planDeclarations(p *Plan, ix *refindex.Index, functionName string, param Param, position int) int {
	declsFound := 0
	for i := range ix.Files {
		fr := &ix.Files[i]
		fc := fr.Classification
		if fc == nil {
			continue
		}
		kind := types.FileKindForPath(fr.Path)
		isTS := kind == types.FileKindTS || kind == types.FileKindTSX

		for _, occ := range fc.ForSymbol(functionName) {
			if occ.Kind != types.ContextDeclaration || !functionLike(occ) {
				continue
			}
			open, close, ok := signatureParens(fr.Source, occ)
			if !ok {
				// A declarator whose initializer never reaches a parameter
				// list is a plain value binding, not this function.
				if occ.NodeKind == "variable_declarator" || occ.NodeKind == "" {
					continue
				}
				declsFound++
				p.diag(DiagNeedsManualUpdate, fr.Path, occ.Line,
					"could not locate the parameter list of %s; add %s by hand", functionName, param.Name)
				continue
			}
			declsFound++
			text := param.render(isTS)
			off, lead, trail := insertionOffset(fr.Source, open, close, position)
			p.addEdit(fr.Path, fr.Snapshot, insertion(off, text, lead, trail), occ.Kind.String())
		}
	}
	return declsFound
}

// planCallUpdates inserts the default argument at every direct call site,
// or flags the site when no default is available.
func planCallUpdates(p *Plan, ix *refindex.Index, functionName string, param Param, position int) {
	for i := range ix.Files {
		fr := &ix.Files[i]
		fc := fr.Classification
		if fc == nil {
			continue
		}
		for _, occ := range fc.ForSymbol(functionName) {
			if occ.Kind != types.ContextFunctionCall {
				continue
			}
			if param.Default == "" {
				p.diag(DiagNeedsManualUpdate, fr.Path, occ.Line,
					"call to %s needs a value for new parameter %s", functionName, param.Name)
				continue
			}
			open, close, ok := parameterList(fr.Source, occ.EndByte)
			if !ok {
				p.diag(DiagNeedsManualUpdate, fr.Path, occ.Line,
					"call to %s has no recognizable argument list", functionName)
				continue
			}
			off, lead, trail := insertionOffset(fr.Source, open, close, position)
			p.addEdit(fr.Path, fr.Snapshot, insertion(off, param.Default, lead, trail), occ.Kind.String())
		}
	}
}

// render formats the parameter entry for one signature.
func (p Param) render(typescript bool) string {
	var b strings.Builder
	b.WriteString(p.Name)
	if typescript && p.Type != "" {
		b.WriteString(": ")
		b.WriteString(p.Type)
	}
	if p.Default != "" {
		b.WriteString(" = ")
		b.WriteString(p.Default)
	}
	return b.String()
}

func insertion(offset int, text string, leadingComma, trailingComma bool) Edit {
	if leadingComma {
		text = ", " + text
	}
	if trailingComma {
		text += ", "
	}
	return Edit{Start: offset, End: offset, Replacement: text}
}

// functionLikeKinds are declaration node kinds that own a parameter list.
// variable_declarator is included for arrow and function expressions bound
// to a name; signatureParens verifies the initializer actually is one.
var functionLikeKinds = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
	"function_expression":            true,
	"generator_function":             true,
	"method_definition":              true,
	"variable_declarator":            true,
}

func functionLike(occ types.Occurrence) bool {
	if occ.NodeKind == "" {
		// Pattern-mode occurrences carry no node kind; signature discovery
		// decides from the surrounding text.
		return true
	}
	return functionLikeKinds[occ.NodeKind]
}

// signatureParens finds the parameter list of a declared function. Two
// shapes are handled: the list directly after the name (declarations,
// methods, generics skipped) and the list after an `=` initializer
// (`const f = async (a, b) => ...`, `const f = function (a) {...}`).
func signatureParens(src []byte, occ types.Occurrence) (open, close int, ok bool) {
	i := skipSpace(src, occ.EndByte)

	// TypeScript type parameters sit between name and parens.
	if i < len(src) && src[i] == '<' {
		i = skipAngles(src, i)
		i = skipSpace(src, i)
	}
	if i < len(src) && src[i] == '(' {
		return parameterList(src, i)
	}

	if occ.NodeKind != "variable_declarator" && occ.NodeKind != "" {
		return 0, 0, false
	}

	// Declarator form: skip an optional type annotation, then the `=`.
	eq := i
	for eq < len(src) && src[eq] != '=' && src[eq] != '\n' && src[eq] != ';' {
		eq++
	}
	if eq >= len(src) || src[eq] != '=' {
		return 0, 0, false
	}
	j := skipSpace(src, eq+1)
	for _, kw := range []string{"async", "function*", "function"} {
		if hasWordAt(src, j, kw) {
			j = skipSpace(src, j+len(kw))
		}
	}
	if j < len(src) && src[j] == '<' {
		j = skipAngles(src, j)
		j = skipSpace(src, j)
	}
	if j < len(src) && src[j] == '(' {
		return parameterList(src, j)
	}
	return 0, 0, false
}

func skipSpace(src []byte, i int) int {
	for i < len(src) {
		switch src[i] {
		case ' ', '\t', '\r', '\n':
			i++
		default:
			return i
		}
	}
	return i
}

// skipAngles advances past a balanced <...> group starting at i.
func skipAngles(src []byte, i int) int {
	depth := 0
	for ; i < len(src); i++ {
		switch src[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return i
}

func hasWordAt(src []byte, i int, word string) bool {
	end := i + len(word)
	if end > len(src) || string(src[i:end]) != word {
		return false
	}
	if strings.HasSuffix(word, "*") {
		return true
	}
	return end == len(src) || !isWordByte(src[end])
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
