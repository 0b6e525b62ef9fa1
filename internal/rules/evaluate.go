package rules

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
)

type commandRunner func(ctx context.Context, path string, args []string) error

func runCommand(ctx context.Context, path string, args []string) error {
	return exec.CommandContext(ctx, path, args...).Run()
}

// Evaluator walks condition trees. Leaf failures are logged and evaluate to
// false, they never reach the caller.
type Evaluator struct {
	log *slog.Logger
	run commandRunner
}

func NewEvaluator(log *slog.Logger) *Evaluator {
	return &Evaluator{log: log, run: runCommand}
}

// Evaluate visits children in pre-order, left to right. NotMatched reads state
// written by earlier rules, so results depend on rule order.
func (e *Evaluator) Evaluate(ctx context.Context, cond Condition, dctx *DialogContext) bool {
	switch c := cond.(type) {
	case And:
		for _, child := range c.Children {
			if !e.Evaluate(ctx, child, dctx) {
				return false
			}
		}
		return true

	case Or:
		for _, child := range c.Children {
			if e.Evaluate(ctx, child, dctx) {
				return true
			}
		}
		return false

	case Not:
		return !e.Evaluate(ctx, c.Child, dctx)

	case TitleRegex:
		return c.Pattern.MatchString(dctx.Dialog().Name)

	case InfoRegex:
		info, err := dctx.ExtendedInfo(ctx)
		if err != nil {
			e.log.Error("info condition skipped", "dialog", dctx.Dialog().String(), "error", err)
			return false
		}
		if info == nil {
			return false
		}
		return c.Pattern.MatchString(info.About)

	case DialogType:
		return dctx.Dialog().Kind == c.Kind

	case ContactPresent:
		return e.contactPresent(ctx, c, dctx)

	case ExternalExecutable:
		return e.externalExecutable(ctx, c, dctx)

	case NotMatched:
		return !dctx.HasMatched()
	}

	e.log.Error("unsupported condition", "type", fmt.Sprintf("%T", cond))

	return false
}

func (e *Evaluator) contactPresent(ctx context.Context, c ContactPresent, dctx *DialogContext) bool {
	for p, err := range dctx.Participants(ctx) {
		if err != nil {
			e.log.Error("contact condition skipped", "dialog", dctx.Dialog().String(), "error", err)
			return false
		}
		if p.Username == c.Handle {
			return true
		}
	}

	return false
}

func (e *Evaluator) externalExecutable(ctx context.Context, c ExternalExecutable, dctx *DialogContext) bool {
	d := dctx.Dialog()
	path, err := expandHome(c.Path)
	if err != nil {
		e.log.Error("executable condition skipped", "dialog", d.String(), "path", c.Path, "error", err)
		return false
	}
	args, err := substitutePlaceholders(c.Args, d)
	if err != nil {
		e.log.Error("executable condition skipped", "dialog", d.String(), "path", path, "error", err)
		return false
	}

	err = e.run(ctx, path, args)
	if err == nil {
		return true
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		e.log.Debug("executable rejected dialog", "dialog", d.String(), "path", path, "code", exitErr.ExitCode())
		return false
	}
	e.log.Error("executable condition failed", "dialog", d.String(), "error", &ExternalProcessError{Path: path, Err: err})

	return false
}
