package assemblyset

import (
	"os"
	"path/filepath"
)

// Prober resolves an assembly reference's simple name to a file path,
// using the standard two-tier search order: the entry assembly's own
// directory first, then the configured platform BCL directory.
type Prober struct {
	AppDir string
	BCLDir string
}

// Resolve returns the resolved path and whether it was found in the
// BCL directory (vs. the application directory).
func (p *Prober) Resolve(assemblyName string) (path string, fromBCL bool, ok bool) {
	for _, ext := range []string{".dll", ".exe"} {
		candidate := filepath.Join(p.AppDir, assemblyName+ext)
		if fileExists(candidate) {
			return candidate, false, true
		}
	}
	if p.BCLDir != "" {
		for _, ext := range []string{".dll", ".exe"} {
			candidate := filepath.Join(p.BCLDir, assemblyName+ext)
			if fileExists(candidate) {
				return candidate, true, true
			}
		}
	}
	return "", false, false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
