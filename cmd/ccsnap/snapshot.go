package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"ccsnap/internal/app"
	"ccsnap/internal/export"
	"ccsnap/internal/model"
	"ccsnap/internal/snap"
)

// scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Take a snapshot of all configured locations",
	RunE: func(cmd *cobra.Command, args []string) error {
		notes, _ := cmd.Flags().GetString("notes")
		tags, _ := cmd.Flags().GetStringSlice("tag")
		by, _ := cmd.Flags().GetString("by")
		skipContent, _ := cmd.Flags().GetBool("skip-content")

		a, err := newApp("scan")
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.Scan(cmd.Context(), app.ScanRequest{
			Notes:       notes,
			Tags:        tags,
			TriggeredBy: by,
			SkipContent: skipContent,
		})
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		fmt.Printf("Snapshot %s\n", s.ID)
		fmt.Printf("  %d locations, %d files, %d directories, %s\n",
			s.TotalLocations, s.FilesFound, s.DirectoriesFound, humanize.IBytes(uint64(s.TotalSizeBytes)))
		if s.IsBaseline {
			fmt.Println("  baseline snapshot")
		} else {
			fmt.Printf("  %d change(s) since previous\n", len(s.Changes))
			printChanges(os.Stdout, s.Changes)
		}
		return nil
	},
}

// list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		query, err := listQueryFromFlags(cmd)
		if err != nil {
			return err
		}

		a, err := newApp("list")
		if err != nil {
			return err
		}
		defer a.Close()

		page, err := a.ListSnapshots(cmd.Context(), query)
		if err != nil {
			return err
		}

		if len(page.Items) == 0 {
			fmt.Println("No snapshots found.")
			return nil
		}

		width := terminalWidth()
		for _, s := range page.Items {
			printSnapshotRow(os.Stdout, s, width)
		}
		fmt.Printf("\nPage %d, %d of %d snapshot(s)", page.Page, len(page.Items), page.Total)
		if page.HasNext {
			fmt.Printf(", next: --page %d", page.Page+1)
		}
		fmt.Println()
		return nil
	},
}

func listQueryFromFlags(cmd *cobra.Command) (snap.ListQuery, error) {
	trigger, _ := cmd.Flags().GetString("trigger")
	tags, _ := cmd.Flags().GetStringSlice("tag")
	allTags, _ := cmd.Flags().GetBool("all-tags")
	since, _ := cmd.Flags().GetString("since")
	until, _ := cmd.Flags().GetString("until")
	search, _ := cmd.Flags().GetString("search")
	sortBy, _ := cmd.Flags().GetString("sort")
	asc, _ := cmd.Flags().GetBool("asc")
	page, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")

	q := snap.ListQuery{
		TriggerType:  model.TriggerType(trigger),
		Tags:         tags,
		MatchAllTags: allTags,
		Search:       search,
		SortBy:       snap.SortField(sortBy),
		Ascending:    asc,
		Page:         page,
		PageSize:     limit,
	}

	var err error
	if q.Since, err = parseTimeFlag(since, time.Now()); err != nil {
		return q, fmt.Errorf("invalid --since: %w", err)
	}
	if q.Until, err = parseTimeFlag(until, time.Now()); err != nil {
		return q, fmt.Errorf("invalid --until: %w", err)
	}
	return q, nil
}

// parseTimeFlag accepts RFC 3339, a date (YYYY-MM-DD, local time) or a
// duration counted back from now (e.g. 24h).
func parseTimeFlag(s string, now time.Time) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		t = t.UTC()
		return &t, nil
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		t := now.Add(-d).UTC()
		return &t, nil
	}
	return nil, fmt.Errorf("%q is not a time, date or duration", s)
}

// show command
var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		showPaths, _ := cmd.Flags().GetBool("paths")
		showChanges, _ := cmd.Flags().GetBool("changes")

		a, err := newApp("show")
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.GetSnapshot(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printSnapshot(os.Stdout, s, showPaths, showChanges, time.Now())
		return nil
	},
}

// delete command
var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("delete")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteSnapshot(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted snapshot %s\n", args[0])
		return nil
	},
}

// tag command
var tagCmd = &cobra.Command{
	Use:   "tag ID NAME",
	Short: "Tag a snapshot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tagType, _ := cmd.Flags().GetString("type")
		description, _ := cmd.Flags().GetString("description")

		a, err := newApp("tag")
		if err != nil {
			return err
		}
		defer a.Close()

		tag, err := a.AddTag(cmd.Context(), args[0], args[1], tagType, description)
		if errors.Is(err, snap.ErrTagExists) {
			return fmt.Errorf("snapshot %s is already tagged %q", args[0], args[1])
		}
		if err != nil {
			return err
		}
		fmt.Printf("Tagged %s as %q\n", args[0], tag.TagName)
		return nil
	},
}

// annotate command
var annotateCmd = &cobra.Command{
	Use:   "annotate ID TEXT",
	Short: "Annotate a snapshot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		annotationType, _ := cmd.Flags().GetString("type")

		a, err := newApp("annotate")
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.AddAnnotation(cmd.Context(), args[0], args[1], annotationType); err != nil {
			return err
		}
		fmt.Printf("Annotated %s\n", args[0])
		return nil
	},
}

// compare command
var compareCmd = &cobra.Command{
	Use:   "compare FROM TO",
	Short: "Show differences between two snapshots",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("compare")
		if err != nil {
			return err
		}
		defer a.Close()

		cmp, err := a.Compare(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s) -> %s (%s)\n",
			shortID(cmp.From.ID), cmp.From.SnapshotTime.Local().Format("2006-01-02 15:04"),
			shortID(cmp.To.ID), cmp.To.SnapshotTime.Local().Format("2006-01-02 15:04"))
		if len(cmp.Changes) == 0 {
			fmt.Println("No differences.")
			return nil
		}
		printChanges(os.Stdout, cmp.Changes)
		return nil
	},
}

// cat command
var catCmd = &cobra.Command{
	Use:   "cat HASH",
	Short: "Print captured file content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("cat")
		if err != nil {
			return err
		}
		defer a.Close()

		entry, err := a.GetContent(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(entry.Content)
		return err
	},
}

// export command
var exportCmd = &cobra.Command{
	Use:   "export ID",
	Short: "Export a snapshot as json, yaml or csv",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatName, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		includeContent, _ := cmd.Flags().GetBool("include-content")
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		format, err := export.ParseFormat(formatName)
		if err != nil {
			return err
		}

		a, err := newApp("export")
		if err != nil {
			return err
		}
		defer a.Close()

		opts := app.ExportOptions{Format: format, IncludeContent: includeContent, Encrypt: encrypt}
		if output == "" || output == "-" {
			return a.ExportSnapshot(cmd.Context(), args[0], os.Stdout, opts)
		}

		f, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		if err := a.ExportSnapshot(cmd.Context(), args[0], f, opts); err != nil {
			f.Close()
			os.Remove(output)
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		fmt.Fprintf(os.Stderr, "Exported %s to %s\n", args[0], output)
		return nil
	},
}

// gc command
var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Remove captured content no snapshot refers to",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("gc")
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.SweepContent(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d unreferenced content entr%s\n", n, pluralY(n))
		return nil
	},
}

func pluralY(n int64) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringP("notes", "m", "", "Notes to store with the snapshot")
	scanCmd.Flags().StringSliceP("tag", "t", nil, "Tag the snapshot (repeatable)")
	scanCmd.Flags().String("by", "", "Who triggered the snapshot (default: current user)")
	scanCmd.Flags().Bool("skip-content", false, "Record metadata only, without file content")

	rootCmd.AddCommand(listCmd)
	listCmd.Flags().String("trigger", "", "Only snapshots with this trigger (manual, api, scheduled)")
	listCmd.Flags().StringSliceP("tag", "t", nil, "Only snapshots with this tag (repeatable)")
	listCmd.Flags().Bool("all-tags", false, "Require every --tag instead of any")
	listCmd.Flags().String("since", "", "Only snapshots at or after (RFC 3339, YYYY-MM-DD or duration like 24h)")
	listCmd.Flags().String("until", "", "Only snapshots at or before (RFC 3339, YYYY-MM-DD or duration)")
	listCmd.Flags().StringP("search", "s", "", "Only snapshots whose notes contain this text")
	listCmd.Flags().String("sort", "time", "Sort by time or size")
	listCmd.Flags().Bool("asc", false, "Oldest or smallest first")
	listCmd.Flags().IntP("page", "p", 1, "Page number")
	listCmd.Flags().IntP("limit", "n", 20, "Snapshots per page (max 500)")

	rootCmd.AddCommand(showCmd)
	showCmd.Flags().Bool("paths", false, "List every scanned location")
	showCmd.Flags().Bool("changes", false, "List changes since the previous snapshot")

	rootCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(tagCmd)
	tagCmd.Flags().String("type", "", "Tag type")
	tagCmd.Flags().String("description", "", "Tag description")

	rootCmd.AddCommand(annotateCmd)
	annotateCmd.Flags().String("type", "", "Annotation type")

	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(catCmd)

	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("format", "f", "json", "Export format: json, yaml or csv")
	exportCmd.Flags().StringP("output", "o", "", "Write to file instead of stdout")
	exportCmd.Flags().Bool("include-content", false, "Embed captured file content")
	exportCmd.Flags().Bool("encrypt", false, "Encrypt to the configured public key")

	rootCmd.AddCommand(gcCmd)
}
