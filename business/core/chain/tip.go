package chain

import (
	"context"
	"time"
)

// Publisher fans a message out to the current subscribers.
type Publisher interface {
	Count() int
	Send(msg string)
}

// WatchTip polls the node for the best block hash on every interval and
// publishes the hash when it changes. The node is only polled while there
// is at least one subscriber. WatchTip returns when the context is canceled.
func (c *Core) WatchTip(ctx context.Context, pub Publisher, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last string
	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if pub.Count() == 0 {
				last = ""
				continue
			}

			hash, err := c.BestBlockHash(ctx)
			if err != nil {
				c.log.Infow("watch tip", "status", "best block hash failed", "ERROR", err)
				continue
			}

			if tip := string(hash); tip != last {
				last = tip
				pub.Send(tip)
			}
		}
	}
}
