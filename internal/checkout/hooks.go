package checkout

import (
	"context"
	"log/slog"

	"storefront/internal/catalog"
	"storefront/internal/domain"
)

// StockDecrementHook subtracts each sold line from the product's stock after
// the order commits. It keeps going past per-line failures so one exhausted
// product does not block the rest of the order.
func StockDecrementHook(log *slog.Logger, products catalog.Products) Hook {
	return func(ctx context.Context, o *domain.Order) error {
		var last error
		for _, line := range o.OrderContent {
			if err := products.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				log.ErrorContext(ctx, "stock decrement failed",
					"order_id", o.ID, "product_id", line.ProductID, "err", err)
				last = err
			}
		}
		return last
	}
}
