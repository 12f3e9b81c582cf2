package cgsmiles

import (
	"github.com/turtacn/cgsmiles/pkg/errors"
)

// metaScope names the meta block in grammar error details.
const metaScope = "meta"

// grammarError builds a GrammarError positioned inside scope, which is either
// a fragment name or metaScope.
func grammarError(scope string, pos int, format string, args ...interface{}) *errors.AppError {
	return errors.Newf(errors.ErrCodeGrammar, format, args...).
		WithDetailf("fragment=%s position=%d", scope, pos)
}

// limitError reports a notation that is well formed but asks for more work
// than the resolver allows.
func limitError(scope string, pos int, format string, args ...interface{}) *errors.AppError {
	return errors.Newf(errors.ErrCodeNotationTooLarge, format, args...).
		WithDetailf("fragment=%s position=%d", scope, pos)
}

func undefinedFragmentError(name string, node, pos int) *errors.AppError {
	return errors.Newf(errors.ErrCodeUndefinedFragment, "fragment %q is not defined", name).
		WithDetailf("meta_node=%d position=%d", node, pos)
}
