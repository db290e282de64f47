// Package collect composes concurrent tasks under one shared cancellation
// scope. Any returns as soon as a winner completes and may cooperatively
// cancel the losers; All always joins every task and reports each task's own
// outcome in input order. Both forward cancellation from the enclosing
// task's slot into the scope they create.
package collect
