package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"MovieCatalog/internal/catalog"
)

func (c *cli) searchCmd() *cobra.Command {
	var (
		crit   catalog.Criteria
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the catalog by name, id and genre",
		Long: `Search the catalog. Criteria combine with AND; name and genre match
case-insensitive substrings, id matches exactly.

Examples:
  catalog search --name escape
  catalog search --genre sci-fi --name the
  catalog search --id 3 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !crit.Valid() {
				return errors.New("provide at least one of --name, --id or --genre")
			}

			cat, err := c.readCatalog(cmd)
			if err != nil {
				return err
			}

			movies := cat.Search(crit)
			if asJSON {
				return printJSON(cmd.OutOrStdout(), movies)
			}
			if len(movies) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No movies found")
				return nil
			}
			return printMovies(cmd.OutOrStdout(), movies)
		},
	}

	cmd.Flags().StringVar(&crit.Name, "name", "", "Title substring")
	cmd.Flags().Int64Var(&crit.ID, "id", 0, "Exact movie id")
	cmd.Flags().StringVar(&crit.Genre, "genre", "", "Genre substring")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func (c *cli) showCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}

			cat, err := c.readCatalog(cmd)
			if err != nil {
				return err
			}

			m, ok := cat.ByID(id)
			if !ok {
				return fmt.Errorf("movie %d not found", id)
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), m)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%d)\n", m.Title, m.Year)
			fmt.Fprintf(out, "Directed by %s\n", m.Director)
			fmt.Fprintf(out, "%s · %d min · %.1f\n\n", m.Genre, m.Duration, m.Rating)
			fmt.Fprintln(out, m.Description)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func (c *cli) genresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List the distinct genres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := c.readCatalog(cmd)
			if err != nil {
				return err
			}
			for _, g := range cat.Genres() {
				fmt.Fprintln(cmd.OutOrStdout(), g)
			}
			return nil
		},
	}
}

func printMovies(w io.Writer, movies []catalog.Movie) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tYEAR\tGENRE\tRATING")
	for _, m := range movies {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%.1f\n", m.ID, m.Title, m.Year, m.Genre, m.Rating)
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
