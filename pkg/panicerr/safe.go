// Package panicerr turns panics in long-running goroutines into errors so a
// conc pool can cancel its siblings instead of crashing the process.
package panicerr

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/panics"
)

// Guard runs fn and converts a panic into an error naming the component.
func Guard(name string, fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		var (
			catcher panics.Catcher
			err     error
		)
		catcher.Try(func() {
			err = fn(ctx)
		})
		if r := catcher.Recovered(); r != nil {
			return fmt.Errorf("%s panicked: %w", name, r.AsError())
		}
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}
}
