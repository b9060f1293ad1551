// Package parser defines the contract for the external script parser used
// as a validation gate. Parsing rejects malformed scripts before any
// mutation; script execution is out of scope.
package parser

import "context"

// Parser validates a script body. A nil error means the script parses.
type Parser interface {
	Parse(ctx context.Context, body string) error
}

// Func adapts a plain function to the Parser interface.
type Func func(ctx context.Context, body string) error

func (f Func) Parse(ctx context.Context, body string) error { return f(ctx, body) }

// AcceptAll is the default Parser used when no host parser is wired. It
// accepts every body; form-level validation still applies.
type AcceptAll struct{}

func (AcceptAll) Parse(context.Context, string) error { return nil }
