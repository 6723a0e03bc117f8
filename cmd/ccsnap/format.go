package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"ccsnap/internal/model"
)

const defaultWidth = 100

// terminalWidth returns the width of stdout, or defaultWidth when stdout is
// not a terminal.
func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatSize(p *int64) string {
	if p == nil {
		return "-"
	}
	return humanize.IBytes(uint64(*p))
}

func formatWhen(t time.Time, now time.Time) string {
	return fmt.Sprintf("%s (%s)", t.Local().Format("2006-01-02 15:04:05"), humanize.RelTime(t, now, "ago", "from now"))
}

// printSnapshotRow writes one line of `ccsnap list`.
func printSnapshotRow(w io.Writer, s *model.Snapshot, width int) {
	changed := "base"
	if s.ChangedFromPrevious != nil {
		changed = fmt.Sprintf("%d chg", *s.ChangedFromPrevious)
	}
	size := s.TotalSizeBytes
	prefix := fmt.Sprintf("%s  %s  %-9s  %3df %2dd  %9s  %-8s",
		shortID(s.ID),
		s.SnapshotTime.Local().Format("2006-01-02 15:04"),
		s.TriggerType,
		s.FilesFound,
		s.DirectoriesFound,
		formatSize(&size),
		changed,
	)

	var extra []string
	if tags := s.TagNames(); len(tags) > 0 {
		extra = append(extra, "["+strings.Join(tags, ",")+"]")
	}
	if s.Notes != "" {
		extra = append(extra, s.Notes)
	}
	line := prefix
	if len(extra) > 0 {
		line += "  " + truncate(strings.Join(extra, " "), width-len(prefix)-2)
	}
	fmt.Fprintln(w, strings.TrimRight(line, " "))
}

// printSnapshot writes the detail view of `ccsnap show`.
func printSnapshot(w io.Writer, s *model.Snapshot, showPaths, showChanges bool, now time.Time) {
	fmt.Fprintf(w, "Snapshot:   %s\n", s.ID)
	fmt.Fprintf(w, "Taken:      %s\n", formatWhen(s.SnapshotTime, now))
	fmt.Fprintf(w, "Trigger:    %s", s.TriggerType)
	if s.TriggeredBy != "" {
		fmt.Fprintf(w, " by %s", s.TriggeredBy)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Host:       %s (%s %s, user %s)\n", s.Hostname, s.OSType, s.OSVersion, s.Username)
	fmt.Fprintf(w, "Locations:  %d (%d files, %d directories, %s)\n",
		s.TotalLocations, s.FilesFound, s.DirectoriesFound, humanize.IBytes(uint64(s.TotalSizeBytes)))
	fmt.Fprintf(w, "Hash:       %s\n", s.ContentHash)
	if s.IsBaseline {
		fmt.Fprintln(w, "Changes:    baseline")
	} else if s.ChangedFromPrevious != nil {
		fmt.Fprintf(w, "Changes:    %d since previous\n", *s.ChangedFromPrevious)
	}
	if s.Notes != "" {
		fmt.Fprintf(w, "Notes:      %s\n", s.Notes)
	}
	for _, t := range s.Tags {
		fmt.Fprintf(w, "Tag:        %s", t.TagName)
		if t.TagType != "" {
			fmt.Fprintf(w, " (%s)", t.TagType)
		}
		if t.Description != "" {
			fmt.Fprintf(w, " - %s", t.Description)
		}
		fmt.Fprintln(w)
	}
	for _, a := range s.Annotations {
		fmt.Fprintf(w, "Note:       %s", a.AnnotationText)
		if a.AnnotationType != "" {
			fmt.Fprintf(w, " [%s]", a.AnnotationType)
		}
		fmt.Fprintln(w)
	}

	if showPaths {
		fmt.Fprintln(w, "\nPaths:")
		for _, p := range s.Paths {
			printPath(w, p)
		}
	}
	if showChanges && len(s.Changes) > 0 {
		fmt.Fprintln(w, "\nChanges:")
		printChanges(w, s.Changes)
	}
}

func printPath(w io.Writer, p *model.SnapshotPath) {
	state := "missing"
	switch {
	case p.ErrorMessage != "" && !p.Exists:
		state = "error"
	case p.Type == model.PathTypeDirectory && p.ItemCount != nil:
		state = fmt.Sprintf("dir, %d items", *p.ItemCount)
	case p.Type == model.PathTypeDirectory:
		state = "dir"
	case p.Exists:
		state = formatSize(p.SizeBytes)
	}
	fmt.Fprintf(w, "  %-9s %-28s %-16s %s\n", p.Category, p.Name, state, p.ResolvedPath)
	if p.ContentRef != "" {
		fmt.Fprintf(w, "  %-9s %-28s content %s\n", "", "", p.ContentRef)
	}
	if p.ErrorMessage != "" {
		fmt.Fprintf(w, "  %-9s %-28s ! %s\n", "", "", p.ErrorMessage)
	}
}

func printChanges(w io.Writer, changes []*model.SnapshotChange) {
	for _, c := range changes {
		marker := "~"
		switch c.ChangeType {
		case model.ChangeAdded:
			marker = "+"
		case model.ChangeRemoved:
			marker = "-"
		}
		fmt.Fprintf(w, "  %s %-9s %-28s %s -> %s\n",
			marker, c.Category, c.Name, formatSize(c.PreviousSizeBytes), formatSize(c.NewSizeBytes))
	}
}

// readPassphrase prompts on stderr and reads a passphrase without echo when
// stdin is a terminal. CCSNAP_PASSPHRASE, when set, is used instead.
func readPassphrase(prompt string, confirm bool) (string, error) {
	if p := os.Getenv("CCSNAP_PASSPHRASE"); p != "" {
		return p, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, prompt)
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	if confirm {
		fmt.Fprint(os.Stderr, "Confirm passphrase: ")
		second, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		if string(first) != string(second) {
			return "", fmt.Errorf("passphrases do not match")
		}
	}
	return string(first), nil
}
