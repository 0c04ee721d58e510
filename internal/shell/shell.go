package shell

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Flavor identifies the command interpreter family the user is running.
type Flavor int

const (
	Unknown Flavor = iota
	PowerShell
	Bash
	Zsh
	Fish
	Dash
	Ksh
	Csh
)

// Invocation is the interpreter binary and the flag that makes it run a
// command string.
type Invocation struct {
	Binary string
	Flag   string
}

// Detect inspects the process environment to find the user's shell and how
// to invoke it. The invocation keeps the binary named by $SHELL, so sh stays
// sh and pwsh stays pwsh.
func Detect() (Flavor, Invocation) {
	return detect(runtime.GOOS, os.Getenv)
}

func detect(goos string, getenv func(string) string) (Flavor, Invocation) {
	if path := getenv("SHELL"); path != "" {
		name := strings.ToLower(filepath.Base(path))
		name = strings.TrimSuffix(name, ".exe")
		if f := flavorOf(name); f != Unknown {
			inv := f.Invocation()
			inv.Binary = name
			return f, inv
		}
	}

	if goos == "windows" {
		return PowerShell, PowerShell.Invocation()
	}

	return Unknown, Unknown.Invocation()
}

func flavorOf(name string) Flavor {
	switch name {
	case "bash", "sh":
		return Bash
	case "zsh":
		return Zsh
	case "fish":
		return Fish
	case "dash":
		return Dash
	case "ksh", "mksh", "pdksh":
		return Ksh
	case "csh", "tcsh":
		return Csh
	case "pwsh", "powershell":
		return PowerShell
	}
	return Unknown
}

// Invocation returns the default way to run a command string under this
// flavor.
func (f Flavor) Invocation() Invocation {
	switch f {
	case PowerShell:
		return Invocation{Binary: "powershell", Flag: "-Command"}
	case Bash:
		return Invocation{Binary: "bash", Flag: "-c"}
	case Zsh:
		return Invocation{Binary: "zsh", Flag: "-c"}
	case Fish:
		return Invocation{Binary: "fish", Flag: "-c"}
	case Dash:
		return Invocation{Binary: "dash", Flag: "-c"}
	case Ksh:
		return Invocation{Binary: "ksh", Flag: "-c"}
	case Csh:
		return Invocation{Binary: "csh", Flag: "-c"}
	default:
		return Invocation{Binary: "sh", Flag: "-c"}
	}
}

// DisplayName is the human-readable name used when instructing the model.
func (f Flavor) DisplayName() string {
	switch f {
	case PowerShell:
		return "Windows PowerShell"
	case Bash:
		return "Bourne Again Shell (bash / sh)"
	case Zsh:
		return "Z Shell (zsh)"
	case Fish:
		return "Friendly Interactive Shell (fish)"
	case Dash:
		return "Debian Almquist Shell (dash)"
	case Ksh:
		return "Korn Shell (ksh)"
	case Csh:
		return "C Shell (csh)"
	default:
		return "a generic Unix-like shell"
	}
}

func (f Flavor) String() string {
	switch f {
	case PowerShell:
		return "powershell"
	case Bash:
		return "bash"
	case Zsh:
		return "zsh"
	case Fish:
		return "fish"
	case Dash:
		return "dash"
	case Ksh:
		return "ksh"
	case Csh:
		return "csh"
	default:
		return "unknown"
	}
}
