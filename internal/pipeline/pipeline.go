// Package pipeline orchestrates the per-event reply flow: advice lookup,
// product matching, composition, and dispatch.
package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"github.com/kaiunlab/kaiun/internal/line"
	"github.com/kaiunlab/kaiun/internal/recommend"
	"github.com/kaiunlab/kaiun/internal/store"
)

const (
	recommendHeader = "【おすすめアイテム】"
	purchasePrefix  = "購入はこちら: "
	// noMatchMessage substitutes for the product block when no product
	// matches the message.
	noMatchMessage = "今のご相談にぴったりの商品はまだ準備中です✨"
)

// AdviceResolver resolves advice text for a message. Implementations never
// fail; they substitute a fallback internally.
type AdviceResolver interface {
	GetAdvice(ctx context.Context, text string) string
}

// ProductSource lists the recommendable products.
type ProductSource interface {
	ListProducts(ctx context.Context) ([]store.ProductRecord, error)
}

// Replyer delivers one reply per reply token.
type Replyer interface {
	Reply(ctx context.Context, replyToken, text string) error
}

// Result aggregates the outcome of one webhook batch.
type Result struct {
	Processed int
	Delivered int
	Failed    int
}

// Controller runs the reply pipeline for each inbound event.
type Controller struct {
	advice   AdviceResolver
	products ProductSource
	matcher  *recommend.Matcher
	replyer  Replyer
	logger   *slog.Logger
}

// NewController wires the pipeline stages together.
func NewController(log *slog.Logger, adviceResolver AdviceResolver, products ProductSource, matcher *recommend.Matcher, replyer Replyer) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		advice:   adviceResolver,
		products: products,
		matcher:  matcher,
		replyer:  replyer,
		logger:   log.With(slog.String("service", "pipeline")),
	}
}

// Process handles every event of a batch concurrently. Events are
// independent: one event's failure never aborts its siblings, and
// advisory-stage failures (store, engine, matcher) are recovered with safe
// defaults so a reply is always attempted. Only delivery failures count as
// failed; they are logged and never retried because the reply token is
// single-use.
func (c *Controller) Process(ctx context.Context, events []line.InboundEvent) Result {
	if len(events) == 0 {
		return Result{}
	}

	var (
		mu     sync.Mutex
		result = Result{Processed: len(events)}
		wg     sync.WaitGroup
	)
	for _, event := range events {
		wg.Add(1)
		go func(ev line.InboundEvent) {
			defer wg.Done()
			delivered := c.processEvent(ctx, ev)
			mu.Lock()
			if delivered {
				result.Delivered++
			} else {
				result.Failed++
			}
			mu.Unlock()
		}(event)
	}
	wg.Wait()
	return result
}

// processEvent runs the stages for one event strictly in sequence and
// reports whether the reply was delivered.
func (c *Controller) processEvent(ctx context.Context, event line.InboundEvent) bool {
	adviceText := c.advice.GetAdvice(ctx, event.Text)

	var matched *store.ProductRecord
	products, err := c.products.ListProducts(ctx)
	if err != nil {
		// A store failure downgrades the recommendation to "no match";
		// the reply still goes out.
		c.logger.Warn("product listing failed", slog.Any("error", err))
	} else {
		matched = c.matcher.Match(event.Text, products)
	}

	text := Compose(adviceText, matched)
	if err := c.replyer.Reply(ctx, event.ReplyToken, text); err != nil {
		c.logger.Error("reply delivery failed",
			slog.String("user_id", event.UserID),
			slog.Any("error", err),
		)
		return false
	}
	return true
}

// Compose assembles the final reply: the advice, then the recommendation
// block, either a product (name, description, purchase link) or the
// not-ready message.
func Compose(advice string, product *store.ProductRecord) string {
	block := noMatchMessage
	if product != nil {
		block = product.Name + "\n" + product.Description + "\n" + purchasePrefix + product.URL
	}
	return advice + "\n\n" + recommendHeader + "\n" + block
}
