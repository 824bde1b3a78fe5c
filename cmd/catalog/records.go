package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-catalog-browser/catalog"
	"github.com/goliatone/go-catalog-browser/pkg/di"
)

// resourceFlags holds the record fields accepted by add and update.
type resourceFlags struct {
	title       string
	url         string
	description string
	category    string
	tags        []string
	rating      float64
	reviews     int
	cover       string
}

func (f *resourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "resource title")
	cmd.Flags().StringVar(&f.url, "url", "", "resource URL")
	cmd.Flags().StringVar(&f.description, "description", "", "short description")
	cmd.Flags().StringVar(&f.category, "category", "", "category id")
	cmd.Flags().StringSliceVar(&f.tags, "tags", nil, "comma separated tags")
	cmd.Flags().Float64Var(&f.rating, "rating", 0, "rating between 0 and 5")
	cmd.Flags().IntVar(&f.reviews, "reviews", 0, "number of reviews")
	cmd.Flags().StringVar(&f.cover, "cover", "", "cover image URL")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("category")
}

func (f *resourceFlags) resource() catalog.Resource {
	return catalog.Resource{
		Title:       f.title,
		URL:         f.url,
		Description: f.description,
		Category:    f.category,
		Tags:        f.tags,
		Rating:      f.rating,
		Reviews:     f.reviews,
		Cover:       f.cover,
	}
}

var (
	addFlags    resourceFlags
	updateFlags resourceFlags
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a resource",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *di.Container) error {
			created, err := c.Browser().Create(ctx, addFlags.resource())
			if err != nil {
				return fmt.Errorf("adding resource: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s.\n", created.ID)
			return nil
		})
	},
}

var updateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Replace the fields of a resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *di.Container) error {
			updated, err := c.Browser().Update(ctx, args[0], updateFlags.resource())
			if err != nil {
				return fmt.Errorf("updating resource: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s.\n", updated.ID)
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *di.Container) error {
			if err := c.Browser().Delete(ctx, args[0]); err != nil {
				return fmt.Errorf("deleting resource: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", args[0])
			return nil
		})
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the resources table in the configured SQL database",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *di.Container) error {
			if err := c.Migrate(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		})
	},
}

func init() {
	addFlags.register(addCmd)
	updateFlags.register(updateCmd)
}
