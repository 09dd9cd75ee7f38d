package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"folio/client"
	"folio/models"
)

func newAPIClient(v *viper.Viper, baseURL string) (*client.Client, error) {
	store, err := tokenStore(v)
	if err != nil {
		return nil, err
	}

	cfg := client.DefaultConfig()
	cfg.BaseURL = baseURL
	if version := v.GetString("API_VERSION"); version != "" {
		cfg.Version = version
	}
	return client.New(cfg, client.WithTokenStore(store)), nil
}

func printJSON(w io.Writer, value interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func addServerFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "server", client.DefaultBaseURL, "API base URL")
}

func newHealthCmd(v *viper.Viper) *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check a running API",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient(v, server)
			if err != nil {
				return err
			}
			resp, err := c.Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s (database %s)\n", resp.Service, resp.Version, resp.Status, resp.Database)
			return nil
		},
	}
	addServerFlag(cmd, &server)
	return cmd
}

func newProjectsCmd(v *viper.Viper) *cobra.Command {
	var (
		server        string
		typ, status   string
		search        string
		featured      bool
		limit, offset int
		sortBy, order string
	)

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := models.DefaultQueryFilter()
			if typ != "" {
				f.Type = &typ
			}
			if status != "" {
				f.Status = &status
			}
			if search != "" {
				f.Search = &search
			}
			if cmd.Flags().Changed("featured") {
				f.Featured = &featured
			}
			f.Limit = limit
			f.Offset = offset
			f.Sort = sortBy
			f.Order = order

			c, err := newAPIClient(v, server)
			if err != nil {
				return err
			}
			resp, err := c.ListProjects(cmd.Context(), f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range resp.Data {
				fmt.Fprintf(out, "%-36s  %3d  %s", p.ID, p.Priority, p.Title)
				if link := p.PrimaryURL(); link != "" {
					fmt.Fprintf(out, "  <%s>", link)
				}
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "page %d of %d (%d total)\n",
				resp.Pagination.CurrentPage, resp.Pagination.Pages, resp.Pagination.Total)
			return nil
		},
	}

	addServerFlag(cmd, &server)
	cmd.Flags().StringVar(&typ, "type", "", "company, personal or freelance")
	cmd.Flags().StringVar(&status, "status", "", "completed, in_progress, planned or archived")
	cmd.Flags().StringVar(&search, "search", "", "full-text search")
	cmd.Flags().BoolVar(&featured, "featured", false, "only featured (or, with =false, non-featured) projects")
	cmd.Flags().IntVar(&limit, "limit", models.DefaultLimit, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	cmd.Flags().StringVar(&sortBy, "sort", models.DefaultSort, "created_at, updated_at, title or priority")
	cmd.Flags().StringVar(&order, "order", models.DefaultOrder, "asc or desc")
	return cmd
}

func newProjectCmd(v *viper.Viper) *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "project <id>",
		Short: "Show one project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid project id %q: %w", args[0], err)
			}

			c, err := newAPIClient(v, server)
			if err != nil {
				return err
			}
			p, err := c.GetProject(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
	addServerFlag(cmd, &server)
	return cmd
}

func newStatsCmd(v *viper.Viper) *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show project statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient(v, server)
			if err != nil {
				return err
			}
			resp, err := c.ProjectStats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp.Data)
		},
	}
	addServerFlag(cmd, &server)
	return cmd
}
