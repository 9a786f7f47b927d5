package shell

import (
	"bytes"
	"regexp"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

const redactedParam = "REDACTED"
const redactedValue = "***"

// Variables whose values are harmless to share with the completion service.
var safeVars = map[string]bool{
	"HOME": true, "USER": true, "PWD": true, "OLDPWD": true,
	"SHELL": true, "PATH": true, "LANG": true, "TERM": true,
	"EDITOR": true, "PAGER": true, "HOSTNAME": true, "LOGNAME": true,
	"TMPDIR": true, "XDG_CONFIG_HOME": true, "XDG_DATA_HOME": true,
	"XDG_CACHE_HOME": true, "XDG_RUNTIME_DIR": true,
	"COLUMNS": true, "LINES": true, "LC_ALL": true, "LC_CTYPE": true,
}

var specialParams = map[string]bool{
	"?": true, "!": true, "#": true, "@": true, "*": true,
	"-": true, "$": true, "_": true,
	"0": true, "1": true, "2": true, "3": true, "4": true,
	"5": true, "6": true, "7": true, "8": true, "9": true,
}

var (
	reBraceVar  = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)
	reSimpleVar = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	reAssign    = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)=(\S+)`)
)

// Redact masks variable expansions and assignment values in a command
// before it is sent out as session context. Commands that do not parse are
// masked with a pattern-based pass instead.
func Redact(command string) string {
	if strings.TrimSpace(command) == "" {
		return command
	}

	parser := syntax.NewParser(syntax.Variant(syntax.LangBash), syntax.KeepComments(true))
	file, err := parser.Parse(strings.NewReader(command), "")
	if err != nil {
		return redactPatterns(command)
	}

	syntax.Walk(file, func(node syntax.Node) bool {
		switch n := node.(type) {
		case *syntax.ParamExp:
			if n.Param != nil && !keepParam(n.Param.Value) {
				n.Param.Value = redactedParam
			}
		case *syntax.Assign:
			if n.Name != nil && !safeVars[n.Name.Value] && n.Value != nil {
				n.Value.Parts = []syntax.WordPart{&syntax.Lit{Value: redactedValue}}
			}
		}
		return true
	})

	var buf bytes.Buffer
	if err := syntax.NewPrinter(syntax.Indent(0)).Print(&buf, file); err != nil {
		return redactPatterns(command)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func keepParam(name string) bool {
	return safeVars[name] || specialParams[name]
}

func redactPatterns(command string) string {
	command = reBraceVar.ReplaceAllStringFunc(command, func(match string) string {
		if keepParam(reBraceVar.FindStringSubmatch(match)[1]) {
			return match
		}
		return "${" + redactedParam + "}"
	})

	command = reSimpleVar.ReplaceAllStringFunc(command, func(match string) string {
		name := reSimpleVar.FindStringSubmatch(match)[1]
		if name == redactedParam || keepParam(name) {
			return match
		}
		return "$" + redactedParam
	})

	return reAssign.ReplaceAllStringFunc(command, func(match string) string {
		name := reAssign.FindStringSubmatch(match)[1]
		if safeVars[name] {
			return match
		}
		return name + "=" + redactedValue
	})
}
