package shell

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Check reports whether command parses under the flavor's grammar. Flavors
// with no available parser (fish, csh, PowerShell) are never rejected.
func Check(f Flavor, command string) error {
	var lang syntax.LangVariant
	switch f {
	case Bash, Zsh:
		lang = syntax.LangBash
	case Dash, Unknown:
		lang = syntax.LangPOSIX
	case Ksh:
		lang = syntax.LangMirBSDKorn
	default:
		return nil
	}

	parser := syntax.NewParser(syntax.Variant(lang))
	if _, err := parser.Parse(strings.NewReader(command), ""); err != nil {
		return fmt.Errorf("not valid %s syntax: %w", f, err)
	}
	return nil
}
