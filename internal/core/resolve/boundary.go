package resolve

import "github.com/yndnr/projconf/internal/core/domain"

// Eligible returns the fragments allowed to contribute levels, libraries
// and modules: everything from the root marker onward, or the whole stack
// when there is no marker. Nothing above the project root can inject
// namespaced overlays.
func Eligible(stack domain.Stack) domain.Stack {
	if i, ok := FindRoot(stack); ok {
		return stack[i:]
	}
	return stack
}
