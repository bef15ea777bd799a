package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/chaspy/toeic-assessment-poc/data"
	"github.com/chaspy/toeic-assessment-poc/internal/item"
	"github.com/chaspy/toeic-assessment-poc/internal/skills"
)

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Inspect item pools",
}

var poolValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a pool file, or the bundled pool, against the schema and the test blueprint",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			pool   *item.Pool
			source = "bundled pool"
			err    error
		)
		if len(args) == 1 {
			source = args[0]
			pool, err = item.LoadFile(args[0])
		} else {
			pool, err = item.ParseJSON(data.DefaultPool)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: schema %s, %d items\n", source, pool.SchemaVersion, pool.Len())
		counts := pool.CountByPart()
		for _, p := range item.AllParts() {
			fmt.Fprintf(out, "  %-4s %d\n", p, counts[p])
		}

		catalog := skills.DefaultCatalog()
		unknown := map[string]bool{}
		for _, it := range pool.Items() {
			for _, tag := range it.Skills {
				if !catalog.Known(tag) {
					unknown[tag] = true
				}
			}
		}
		if len(unknown) > 0 {
			tags := make([]string, 0, len(unknown))
			for tag := range unknown {
				tags = append(tags, tag)
			}
			sort.Strings(tags)
			fmt.Fprintf(out, "  skill tags without catalog entry (generic advice is used): %v\n", tags)
		}

		bp := item.DefaultBlueprint()
		if _, err := bp.Select(pool.Items()); err != nil {
			return fmt.Errorf("pool cannot fill the %d-item blueprint: %w", bp.Size(), err)
		}
		fmt.Fprintf(out, "OK: fills the %d-item blueprint\n", bp.Size())
		return nil
	},
}

func init() {
	poolCmd.AddCommand(poolValidateCmd)
}
