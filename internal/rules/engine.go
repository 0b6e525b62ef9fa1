package rules

import (
	"context"
	"iter"
	"log/slog"

	"github.com/alexbilevskiy/tgfolders/internal/model"
)

type DialogLister interface {
	// ListDialogs is single pass; the sequence cannot be restarted.
	ListDialogs(ctx context.Context) iter.Seq2[model.Dialog, error]
}

type Engine struct {
	log     *slog.Logger
	rules   []Rule
	eval    *Evaluator
	fetcher ChatInfoFetcher
}

func NewEngine(log *slog.Logger, rules []Rule, fetcher ChatInfoFetcher) *Engine {
	return &Engine{log: log, rules: rules, eval: NewEvaluator(log), fetcher: fetcher}
}

// ApplyRules returns every rule matching the dialog, in rule order. Each match
// marks the context, which is what NotMatched rules further down observe.
func (e *Engine) ApplyRules(ctx context.Context, dctx *DialogContext) []*Rule {
	var matched []*Rule
	for i := range e.rules {
		rule := &e.rules[i]
		if !e.eval.Evaluate(ctx, rule.Condition, dctx) {
			continue
		}
		dctx.MarkMatched()
		matched = append(matched, rule)
	}

	return matched
}

// Assign lists all dialogs up front and then classifies them one by one.
func (e *Engine) Assign(ctx context.Context, lister DialogLister) (*model.Assignment, error) {
	var dialogs []model.Dialog
	for d, err := range lister.ListDialogs(ctx) {
		if err != nil {
			return nil, &model.RemoteListError{What: "dialogs", Err: err}
		}
		dialogs = append(dialogs, d)
	}
	e.log.Info("dialogs loaded", "count", len(dialogs), "rules", len(e.rules))

	assignment := model.NewAssignment()
	for _, d := range dialogs {
		if d.Peer.Kind == "" || d.Peer.Kind == model.PeerEmpty {
			e.log.Debug("dialog has no peer, skipping", "dialog", d.String())
			continue
		}
		dctx := NewDialogContext(d, e.fetcher)
		for _, rule := range e.ApplyRules(ctx, dctx) {
			e.log.Debug("dialog matched", "dialog", d.String(), "rule", rule.Name)
			assignment.Add(rule.Name, d.Peer)
		}
	}

	return assignment, nil
}
