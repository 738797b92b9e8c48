// cmd/duck/main.go
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"duck/client"
	"duck/internal/change"
	"duck/internal/config"
	"duck/internal/history"
	"duck/internal/logging"
	"duck/internal/repo"
	"duck/internal/watch"
	"duck/shared/types"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "duck",
	Short: "Duck is a tiny line-based version control system",
	Long: `Duck records snapshots of a working tree as a linear history of commits.
Each commit stores, per changed file, the lines added and deleted relative to
the previous commit.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		l, err := logging.NewCLILogger(level)
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		logger = l.Logger
		return nil
	},
}

func init() {
	var initCmd = &cobra.Command{
		Use:   "init",
		Short: "Initialize a new Duck repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}

			force, _ := cmd.Flags().GetBool("force")
			if err := repo.Init(dir, force); err != nil {
				return err
			}

			fmt.Println("Initialized empty Duck repository in", config.DuckPath(dir))
			return nil
		},
	}

	var commitCmd = &cobra.Command{
		Use:   "commit",
		Short: "Record the working tree as a new commit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			message, _ := cmd.Flags().GetString("message")
			allowEmpty, _ := cmd.Flags().GetBool("allow-empty")

			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			c, err := r.Commit(message, repo.CommitOptions{AllowEmpty: allowEmpty})
			if err != nil {
				return err
			}

			printCommitSummary(c)
			return nil
		},
	}

	var statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show files that differ from the last commit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			changes, err := r.Status()
			if err != nil {
				return fmt.Errorf("getting status: %w", err)
			}

			if head := r.Head(); head != "" {
				fmt.Printf("On commit %s\n", shortID(head))
			} else {
				fmt.Println("No commits yet")
			}
			printStatus(changes)
			return nil
		},
	}

	var diffCmd = &cobra.Command{
		Use:   "diff [paths...]",
		Short: "Show changes between the last commit and the working tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			paths, err := repoPaths(r.Root, args)
			if err != nil {
				return err
			}

			diffs, err := r.Diff(paths)
			if err != nil {
				return err
			}

			contextLines, _ := cmd.Flags().GetInt("context")
			for _, d := range diffs {
				fmt.Printf("\ndiff --duck a/%s b/%s\n", d.Path, d.Path)
				if d.Result.Identical() {
					color.Blue("no line changes (%s)", d.Type)
					continue
				}
				printColoredDiff(d.Result.Format(contextLines))
			}
			return nil
		},
	}

	var logCmd = &cobra.Command{
		Use:   "log",
		Short: "List commits, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if server, _ := cmd.Flags().GetString("server"); server != "" {
				return printRemoteLog(client.New(server))
			}

			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			commits := r.Log()
			if len(commits) == 0 {
				fmt.Println("No commits yet")
				return nil
			}

			yellow := color.New(color.FgYellow).SprintFunc()
			for i := len(commits) - 1; i >= 0; i-- {
				c := commits[i]
				fmt.Printf("%s %s\n", yellow("commit "+c.ID), headMarker(c.ID, r.Head()))
				fmt.Printf("    %s\n", c.Entry.Message)
				fmt.Printf("    %d files, %d changed\n\n", len(c.Entry.NewFiles), len(c.Entry.Changes))
			}
			return nil
		},
	}

	var showCmd = &cobra.Command{
		Use:   "show [commit]",
		Short: "Show the changes recorded by a commit (default HEAD)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := "HEAD"
			if len(args) == 1 {
				ref = args[0]
			}

			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			if file, _ := cmd.Flags().GetString("file"); file != "" {
				paths, err := repoPaths(r.Root, []string{file})
				if err != nil {
					return err
				}
				lines, err := r.Reconstruct(ref, paths[0])
				if err != nil {
					return err
				}
				for _, line := range lines {
					fmt.Println(line)
				}
				return nil
			}

			c, err := r.Show(ref)
			if err != nil {
				return err
			}
			printCommit(c)
			return nil
		},
	}

	var watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Watch the working tree and report changes as they happen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			autoCommit, _ := cmd.Flags().GetBool("auto-commit")
			debounce, _ := cmd.Flags().GetDuration("debounce")

			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			w, err := watch.New(r.Root, r.Ignore(), debounce, logger)
			if err != nil {
				return err
			}
			defer w.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Printf("Watching %s (Ctrl-C to stop)\n", r.Root)
			err = w.Run(ctx, func(paths []string) {
				if autoCommit {
					autoCommitPaths(r, paths)
					return
				}
				changes, err := r.Status()
				if err != nil {
					logger.Error("getting status", zap.Error(err))
					return
				}
				fmt.Printf("\n%s\n", time.Now().Format(time.TimeOnly))
				printStatus(changes)
			})
			if stderrors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	var verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Check that the history replays onto the stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			if err := r.Verify(); err != nil {
				return fmt.Errorf("verification failed:\n%w", err)
			}
			fmt.Printf("%s %d commits verified\n", color.GreenString("ok"), len(r.Log()))

			stats, err := r.Stats()
			if err != nil {
				return err
			}
			fmt.Printf("%d objects, %d bytes (%d stored, %d compressed)\n",
				stats.Objects, stats.Size, stats.StoredSize, stats.Compressed)
			return nil
		},
	}

	rootCmd.PersistentFlags().String("log-level", logLevelFromEnv(), "Log level (debug, info, warn, error)")

	initCmd.Flags().Bool("force", false, "Re-initialize, discarding any existing history")

	commitCmd.Flags().StringP("message", "m", "", "Commit message")
	commitCmd.Flags().Bool("allow-empty", false, "Record a commit even if nothing changed")
	commitCmd.MarkFlagRequired("message")

	diffCmd.Flags().IntP("context", "U", 3, "Lines of context around each change")

	logCmd.Flags().String("server", "", "Read the log from a duckd server instead of the local repository")

	showCmd.Flags().StringP("file", "f", "", "Print the file as it was at the commit")

	watchCmd.Flags().Bool("auto-commit", false, "Record a commit after each batch of changes")
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "Quiet period before changes are reported")

	// Add commands to root
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(verifyCmd)
}

func logLevelFromEnv() string {
	if level := os.Getenv("DUCK_LOG_LEVEL"); level != "" {
		return level
	}
	return "warn"
}

func openRepo() (*repo.Repository, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}
	return repo.Open(cwd, logger)
}

// repoPaths turns command line paths, relative to the current directory,
// into slash paths relative to root.
func repoPaths(root string, args []string) ([]string, error) {
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", arg, err)
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, fmt.Errorf("%s is outside the repository", arg)
		}
		paths = append(paths, filepath.ToSlash(rel))
	}
	return paths, nil
}

func autoCommitPaths(r *repo.Repository, paths []string) {
	message := fmt.Sprintf("auto: %d paths changed", len(paths))
	c, err := r.Commit(message, repo.CommitOptions{})
	if stderrors.Is(err, repo.ErrNothingToCommit) {
		return
	}
	if err != nil {
		logger.Error("auto commit failed", zap.Error(err))
		return
	}
	printCommitSummary(c)
}

func shortID(id string) string {
	if len(id) > 13 {
		return id[:13]
	}
	return id
}

func headMarker(id, head string) string {
	if id == head {
		return color.CyanString("(HEAD)")
	}
	return ""
}

func printCommitSummary(c history.Commit) {
	added, deleted := 0, 0
	for _, rec := range c.Entry.Changes {
		a, d := rec.Stats()
		added += a
		deleted += d
	}
	fmt.Printf("[%s] %s\n", shortID(c.ID), c.Entry.Message)
	fmt.Printf(" %d files changed, %s, %s\n",
		len(c.Entry.Changes),
		color.GreenString("%d insertions(+)", added),
		color.RedString("%d deletions(-)", deleted))
}

func printStatus(changes []shared.Change) {
	if len(changes) == 0 {
		fmt.Println("nothing to commit, working tree clean")
		return
	}

	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Println("Changes since last commit:")
	for _, c := range changes {
		var mark string
		switch c.Type {
		case shared.ChangeAdd:
			mark = green("A")
		case shared.ChangeDelete:
			mark = red("D")
		default:
			mark = yellow("M")
		}
		fmt.Printf("\t%s %s %s\n", mark, c.Path, countSuffix(c.Additions, c.Deletions))
	}
}

func countSuffix(additions, deletions int) string {
	return fmt.Sprintf("(%s %s)",
		color.GreenString("+%d", additions),
		color.RedString("-%d", deletions))
}

func printCommit(c history.Commit) {
	color.Yellow("commit %s", c.ID)
	fmt.Printf("\n    %s\n\n", c.Entry.Message)
	fmt.Printf("old files: %s\n", strings.Join(c.Entry.OldFiles, ", "))
	fmt.Printf("new files: %s\n", strings.Join(c.Entry.NewFiles, ", "))

	paths := make([]string, 0, len(c.Entry.Changes))
	for p := range c.Entry.Changes {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		fmt.Printf("\nchange --duck %s\n", p)
		printColoredDiff(formatRecord(c.Entry.Changes[p]))
	}
}

// formatRecord lists deletions by old line number, then additions by new
// line number. A record carries no context lines.
func formatRecord(rec *change.Record) string {
	var b strings.Builder
	for _, idx := range sortedIndices(rec.Del) {
		fmt.Fprintf(&b, "-%4d  %s\n", idx+1, rec.Del[idx])
	}
	for _, idx := range sortedIndices(rec.Add) {
		fmt.Fprintf(&b, "+%4d  %s\n", idx+1, rec.Add[idx])
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func sortedIndices(m map[int]string) []int {
	out := make([]int, 0, len(m))
	for idx := range m {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

func printRemoteLog(c *client.Client) error {
	head, _, err := c.Head()
	if err != nil {
		return fmt.Errorf("reading head: %w", err)
	}
	commits, err := c.Log()
	if err != nil {
		return fmt.Errorf("reading log: %w", err)
	}
	if len(commits) == 0 {
		fmt.Println("No commits yet")
		return nil
	}

	for i := len(commits) - 1; i >= 0; i-- {
		s := commits[i]
		fmt.Printf("%s %s\n", color.YellowString("commit "+s.ID), headMarker(s.ID, head))
		fmt.Printf("    %s\n", s.Message)
		fmt.Printf("    %d files, %d changed\n\n", s.Files, s.Changed)
	}
	return nil
}

func printColoredDiff(diff string) {
	// Create color objects
	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)
	header := color.New(color.FgCyan)

	// Process diff line by line
	lines := strings.Split(diff, "\n")
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}

		switch {
		case strings.HasPrefix(line, "@@"):
			header.Println(line)
		case strings.HasPrefix(line, "+"):
			added.Println(line)
		case strings.HasPrefix(line, "-"):
			removed.Println(line)
		default:
			fmt.Println(line)
		}
	}
}

// printError reports err the way every duck command does: the message in
// red followed by a pointer to the help.
func printError(err error) {
	color.New(color.FgRed).Fprintf(os.Stderr, "ERROR : %v\n", err)
	color.New(color.FgBlue).Fprintln(os.Stderr, "INFO : run `duck help`")
}

func main() {
	defer func() { logger.Sync() }()
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}
