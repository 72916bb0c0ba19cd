// Package inference runs a model over the tokens of a split and collects the
// predictions in token order.
package inference

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/predsubmit/core/logger"
	coremetrics "github.com/kilianp07/predsubmit/core/metrics"
	"github.com/kilianp07/predsubmit/core/model"
	"github.com/kilianp07/predsubmit/core/prediction"
)

// TokenError reports the token whose prediction failed.
type TokenError struct {
	Index int
	Token string
	Err   error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("predict token %d (%s): %v", e.Index, e.Token, e.Err)
}

func (e *TokenError) Unwrap() error { return e.Err }

type options struct {
	workers       int
	modelName     string
	sink          coremetrics.MetricsSink
	log           logger.Logger
	progressEvery int
	now           func() time.Time
}

// Option configures Run.
type Option func(*options)

// WithWorkers sets the number of concurrent model calls. Values below two
// run tokens one after another in order.
func WithWorkers(n int) Option { return func(o *options) { o.workers = n } }

// WithSink records an InferenceEvent per token.
func WithSink(s coremetrics.MetricsSink) Option {
	return func(o *options) {
		if s != nil {
			o.sink = s
		}
	}
}

// WithModelName labels recorded events.
func WithModelName(name string) Option { return func(o *options) { o.modelName = name } }

// WithLogger logs progress and failures.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithProgressEvery logs progress every n completed tokens. Zero disables it.
func WithProgressEvery(n int) Option { return func(o *options) { o.progressEvery = n } }

// Run invokes m once per token. The result has the same length and order as
// tokens. The first failing token aborts the run and no predictions are
// returned.
func Run(ctx context.Context, m prediction.Model, tokens []string, opts ...Option) ([]model.Prediction, error) {
	o := options{
		workers: 1,
		sink:    coremetrics.NopSink{},
		log:     logger.NopLogger{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	r := &runner{opts: o, model: m, total: len(tokens)}
	preds := make([]model.Prediction, len(tokens))

	if o.workers <= 1 {
		for i, tok := range tokens {
			p, err := r.predict(ctx, i, tok)
			if err != nil {
				return nil, err
			}
			preds[i] = p
		}
		return preds, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, tok := range tokens {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			p, err := r.predict(gctx, i, tok)
			if err != nil {
				return err
			}
			preds[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return preds, nil
}

type runner struct {
	opts  options
	model prediction.Model
	total int
	done  atomic.Int64
}

func (r *runner) predict(ctx context.Context, i int, tok string) (model.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return model.Prediction{}, err
	}
	start := r.opts.now()
	p, err := r.model.Predict(ctx, tok)
	ev := coremetrics.InferenceEvent{
		Model:   r.opts.modelName,
		Token:   tok,
		Modes:   p.NumModes(),
		Latency: r.opts.now().Sub(start),
		Time:    start,
	}
	if err != nil {
		ev.Err = err.Error()
		ev.Modes = 0
	}
	if serr := r.opts.sink.RecordInference(ev); serr != nil {
		r.opts.log.Warnf("record inference for %s: %v", tok, serr)
	}
	if err != nil {
		r.opts.log.Errorf("token %d (%s) failed: %v", i, tok, err)
		return model.Prediction{}, &TokenError{Index: i, Token: tok, Err: err}
	}
	if n := int(r.done.Add(1)); r.opts.progressEvery > 0 && (n%r.opts.progressEvery == 0 || n == r.total) {
		r.opts.log.Infow("inference progress", map[string]any{"done": n, "total": r.total})
	}
	return p, nil
}
