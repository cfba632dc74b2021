package process

import (
	"os"
	"os/exec"
	"strings"

	"github.com/conneroisu/uci/pkg/ucierrs"
)

// findEngine locates the engine executable. Paths containing a separator
// are used as given; bare names are searched on PATH.
func findEngine(name string) (string, error) {
	if strings.ContainsRune(name, os.PathSeparator) || strings.ContainsRune(name, '/') {
		info, err := os.Stat(name)
		if err != nil {
			return "", ucierrs.NewProcessError(
				ucierrs.ErrCodeProcessNotFound, "engine executable not found", err,
			).WithCommand(name, nil)
		}
		if info.IsDir() {
			return "", ucierrs.NewProcessError(
				ucierrs.ErrCodeProcessNotFound, "engine path is a directory", nil,
			).WithCommand(name, nil)
		}

		return name, nil
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", ucierrs.NewProcessError(
			ucierrs.ErrCodeProcessNotFound, "engine not found in PATH", err,
		).WithCommand(name, nil)
	}

	return path, nil
}
