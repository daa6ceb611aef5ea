package resolve

import "github.com/yndnr/projconf/internal/core/domain"

// FindRoot returns the index of the first fragment marked root: true.
func FindRoot(stack domain.Stack) (int, bool) {
	for i, f := range stack {
		if f.IsRoot() {
			return i, true
		}
	}
	return -1, false
}

// RootDir returns the project root directory: the directory of the root
// marker's source file. It returns "" when the marker has no source, and
// fsRoot when there is no marker at all.
func RootDir(stack domain.Stack, fsRoot string) string {
	i, ok := FindRoot(stack)
	if !ok {
		return fsRoot
	}
	if stack[i].Source() == "" {
		return ""
	}
	return stack[i].Dir("")
}
