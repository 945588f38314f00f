// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"localmarket/internal/app"
	"localmarket/internal/catalog"
	"localmarket/internal/models"
	"localmarket/internal/tree"
)

// cli carries state shared by every subcommand for one invocation.
type cli struct {
	open    func() (*app.App, error)
	app     *app.App
	jsonOut bool
}

func newRootCmd(open func() (*app.App, error)) *cobra.Command {
	c := &cli{open: open}

	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Inspect and manage the offline category cache",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open()
			if err != nil {
				return fmt.Errorf("initialise: %w", err)
			}
			c.app = a
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if c.app == nil {
				return nil
			}
			return c.app.Close()
		},
	}
	root.PersistentFlags().BoolVar(&c.jsonOut, "json", false, "Print JSON instead of text")

	root.AddCommand(
		c.newTreeCmd(),
		c.newSearchCmd(),
		c.newStatsCmd(),
		c.newValidateCmd(),
		c.newRefreshCmd(),
		c.newClearCmd(),
	)
	return root
}

func (c *cli) newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the category tree, cache first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.app.Service.Tree(cmd.Context())
			if err != nil {
				return err
			}
			if c.jsonOut {
				return printJSON(cmd.OutOrStdout(), res)
			}
			printTreeResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func (c *cli) newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Find categories by name, slug or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := c.app.Service.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if c.jsonOut {
				return printJSON(cmd.OutOrStdout(), found)
			}
			w := cmd.OutOrStdout()
			if len(found) == 0 {
				fmt.Fprintln(w, "No matching categories.")
				return nil
			}
			for _, n := range found {
				fmt.Fprintf(w, "%s\t%s\n", n.ID, tree.PathString(n))
			}
			return nil
		},
	}
}

func (c *cli) newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache age, size and tree shape without fetching",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := c.app.Service.Stats(cmd.Context())
			if c.jsonOut {
				return printJSON(cmd.OutOrStdout(), st)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "cached:       %v\n", st.Cache.IsCached)
			fmt.Fprintf(w, "expired:      %v\n", st.Cache.IsExpired)
			if st.Cache.LastUpdated != nil {
				fmt.Fprintf(w, "last updated: %s (%dh ago)\n", st.Cache.LastUpdated.Format("2006-01-02 15:04:05"), st.Cache.AgeInHours)
			} else {
				fmt.Fprintln(w, "last updated: never")
			}
			fmt.Fprintf(w, "size:         %d bytes\n", st.Cache.DataSize)
			fmt.Fprintf(w, "categories:   %d (%d roots, %d leaves, depth %d)\n",
				st.Tree.Total, st.Tree.Roots, st.Tree.Leaves, st.Tree.MaxDepth)
			fmt.Fprintf(w, "online:       %v\n", st.Network.IsOnline)
			return nil
		},
	}
}

func (c *cli) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the tree for cycles and stale level/path data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := c.app.Service.Validate(cmd.Context())
			if err != nil {
				return err
			}
			if c.jsonOut {
				if err := printJSON(cmd.OutOrStdout(), v); err != nil {
					return err
				}
			} else {
				w := cmd.OutOrStdout()
				for _, e := range v.Errors {
					fmt.Fprintf(w, "error: %s\n", e)
				}
				for _, warn := range v.Warnings {
					fmt.Fprintf(w, "warning: %s\n", warn)
				}
				if v.IsValid {
					fmt.Fprintln(w, "tree is valid")
				}
			}
			if !v.IsValid {
				return fmt.Errorf("tree has %d structural errors", len(v.Errors))
			}
			return nil
		},
	}
}

func (c *cli) newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Rebuild the tree from the category API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.app.Service.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			if c.jsonOut {
				return printJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "refreshed %d categories\n", len(tree.Flatten(res.Tree)))
			for _, w := range res.Warnings {
				fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", w)
			}
			return nil
		},
	}
}

func (c *cli) newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached category data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !c.app.Service.Clear(cmd.Context()) {
				return fmt.Errorf("category cache could not be fully cleared")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "category cache cleared")
			return nil
		},
	}
}

func printTreeResult(w io.Writer, res catalog.TreeResult) {
	status := string(res.Source)
	if res.IsStale {
		status += ", stale"
	}
	fmt.Fprintf(w, "# source: %s\n", status)
	printNodes(w, res.Tree)
}

func printNodes(w io.Writer, nodes []*models.CategoryNode) {
	for _, n := range nodes {
		fmt.Fprintf(w, "%s%s (%s)\n", strings.Repeat("  ", n.Level), n.Name, n.ID)
		printNodes(w, n.Children)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
