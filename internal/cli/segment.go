package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"salesetl/internal/cache"
)

var segmentCmd = &cobra.Command{
	Use:   "segment <customer_id>",
	Short: "Look up the cached segment of a customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("customer id %q: %w", args[0], err)
		}
		if !cfg.Cache.Redis.Enabled() {
			return fmt.Errorf("cache.redis.addr is not configured")
		}
		c, err := cache.NewSegmentCache(cmd.Context(), cfg.Cache.Redis)
		if err != nil {
			return err
		}
		defer c.Close()

		seg, err := c.Lookup(cmd.Context(), id)
		if err != nil {
			return err
		}
		cmd.Println(seg)
		return nil
	},
}
