package display

import (
	"context"

	"github.com/hbagdi/hitview/pkg/response"
	"go.uber.org/zap"
)

// Strategy is one way of presenting a response. Show reports whether the
// strategy took care of the item; declining lets the next strategy try.
type Strategy interface {
	Name() string
	Show(ctx context.Context, item *response.Item) (bool, error)
}

// Result tells which strategy, if any, handled an item.
type Result struct {
	Handled  bool
	Strategy string
}

// Chain tries its strategies in order and stops at the first one that
// handles the item.
type Chain struct {
	strategies []Strategy
	logger     *zap.Logger
}

func NewChain(logger *zap.Logger, strategies ...Strategy) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{
		strategies: strategies,
		logger:     logger,
	}
}

// Show runs the chain. A failing strategy is logged and skipped; a cancelled
// context stops the chain with an unhandled result.
func (c *Chain) Show(ctx context.Context, item *response.Item) Result {
	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			c.logger.Debug("display: cancelled", zap.String("id", item.ID),
				zap.String("before", s.Name()), zap.Error(err))
			return Result{}
		}
		handled, err := s.Show(ctx, item)
		if err != nil {
			c.logger.Warn("display: strategy failed", zap.String("id", item.ID),
				zap.String("strategy", s.Name()), zap.Error(err))
			continue
		}
		if handled {
			c.logger.Debug("display: handled", zap.String("id", item.ID),
				zap.String("strategy", s.Name()))
			return Result{Handled: true, Strategy: s.Name()}
		}
	}
	return Result{}
}

func (c *Chain) Strategies() []string {
	res := make([]string, 0, len(c.strategies))
	for _, s := range c.strategies {
		res = append(res, s.Name())
	}
	return res
}
