package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/michaelscutari/symsort/internal/category"
	"github.com/michaelscutari/symsort/internal/db"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the run journal non-interactively",
	Long: `Query the run journal and output results for scripting.

Without filters the categories are listed. --category lists its folders,
--category with --namespace lists the links in one folder.`,
	RunE: runQuery,
}

var (
	queryDB        string
	queryOut       string
	queryCategory  string
	queryNamespace string
	querySource    string
	queryFailed    bool
	querySort      string
	queryLimit     int
)

func init() {
	f := queryCmd.Flags()
	f.StringVarP(&queryDB, "db", "d", "", "Path to journal file (default <out>/.symsort/latest.db)")
	f.StringVarP(&queryOut, "out", "o", "", "Output directory whose latest journal to read")
	f.StringVarP(&queryCategory, "category", "c", "", "Category: pictures, audio, video, text")
	f.StringVar(&queryNamespace, "namespace", "", "Folder within the category")
	f.StringVar(&querySource, "source", "", "List links whose source path contains this text")
	f.BoolVar(&queryFailed, "failed", false, "List links that could not be created")
	f.StringVarP(&querySort, "sort", "s", "links", "Sort folders by: links, name")
	f.IntVarP(&queryLimit, "limit", "n", 20, "Maximum number of results")
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryCategory != "" {
		c, ok := category.Parse(queryCategory)
		if !ok {
			return fmt.Errorf("unknown category %q", queryCategory)
		}
		queryCategory = c.String()
	}
	if queryNamespace != "" && queryCategory == "" {
		return fmt.Errorf("--namespace requires --category")
	}

	database, err := openJournal(queryDB, queryOut)
	if err != nil {
		return err
	}
	defer database.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	switch {
	case queryFailed || querySource != "":
		var links []db.LinkRow
		if queryFailed {
			links, err = db.LoadFailures(database, queryLimit)
		} else {
			links, err = db.FindBySource(database, querySource, queryLimit)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "STATE\tTARGET\tSOURCE\tREASON\n")
		for _, l := range links {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", l.Outcome, l.Target, l.Source, l.Reason)
		}

	case queryNamespace != "":
		links, err := db.LoadLinks(database, queryCategory, queryNamespace, queryLimit)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "STATE\tNAME\tSOURCE\n")
		for _, l := range links {
			fmt.Fprintf(w, "%s\t%s\t%s\n", l.Outcome, l.Name, l.Source)
		}

	case queryCategory != "":
		namespaces, err := db.LoadNamespaces(database, queryCategory, querySort, queryLimit)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "LINKS\tNAME\n")
		for _, n := range namespaces {
			fmt.Fprintf(w, "%s\t%s\n", humanize.Comma(n.Links), n.Name)
		}

	default:
		cats, err := db.LoadCategories(database)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "FOUND\tCREATED\tSKIPPED\tFAILED\tNAME\n")
		for _, c := range cats {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				humanize.Comma(c.Found),
				humanize.Comma(c.Created),
				humanize.Comma(c.Skipped),
				humanize.Comma(c.Failed),
				c.Name,
			)
		}
	}

	return nil
}
