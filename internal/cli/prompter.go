package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/Veraticus/spice-autocategorize/internal/model"
	"github.com/Veraticus/spice-autocategorize/internal/reconcile"
)

// maxSuggestions bounds the "did you mean" list after a rejected category.
const maxSuggestions = 5

// Prompter implements reconcile.Prompter on a terminal.
type Prompter struct {
	startTime   time.Time
	writer      io.Writer
	reader      *NonBlockingReader
	progressBar *progressbar.ProgressBar
	vocabulary  []string
	total       int
}

// NewCLIPrompter creates a new CLI prompter with the given reader and writer.
// The vocabulary feeds suggestions when the user mistypes a category.
func NewCLIPrompter(reader io.Reader, writer io.Writer, vocabulary model.Vocabulary) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	return &Prompter{
		reader:     NewNonBlockingReader(reader),
		writer:     writer,
		vocabulary: vocabulary.Names(),
		startTime:  time.Now(),
	}
}

var _ reconcile.Prompter = (*Prompter)(nil)

// ShowTransaction prints one record and its predicted category.
func (p *Prompter) ShowTransaction(_ context.Context, index, total int, txn model.Transaction, predicted string) error {
	if p.progressBar == nil || p.total != total {
		p.total = total
		p.initProgressBar()
	}
	if err := p.progressBar.Set(index); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
	if _, err := fmt.Fprintln(p.writer); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	content := p.formatTransaction(txn, predicted)
	title := fmt.Sprintf("Transaction %d of %d", index+1, total)
	if _, err := fmt.Fprintln(p.writer, RenderBox(title, content)); err != nil {
		return fmt.Errorf("failed to write transaction box: %w", err)
	}
	return nil
}

// AskCategory reads the answer to the category prompt.
func (p *Prompter) AskCategory(ctx context.Context) (string, error) {
	prompt := fmt.Sprintf("[Enter] to accept, %s to quit, or type correct category", reconcile.AbortToken)
	if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
		return "", fmt.Errorf("failed to write category prompt: %w", err)
	}
	return p.read(ctx, p.reader.ReadLine)
}

// AskNote reads an optional free-text note, kept verbatim.
func (p *Prompter) AskNote(ctx context.Context) (string, error) {
	if _, err := fmt.Fprint(p.writer, FormatPrompt("Add note?")); err != nil {
		return "", fmt.Errorf("failed to write note prompt: %w", err)
	}
	return p.read(ctx, p.reader.ReadRawLine)
}

// ShowInvalid reports a rejected category and suggests close matches.
func (p *Prompter) ShowInvalid(_ context.Context, input string, err error) error {
	if _, writeErr := fmt.Fprintln(p.writer, FormatError(err.Error())); writeErr != nil {
		return fmt.Errorf("failed to write validation error: %w", writeErr)
	}

	if suggestions := p.suggest(input); len(suggestions) > 0 {
		msg := "Did you mean: " + strings.Join(suggestions, ", ")
		if _, writeErr := fmt.Fprintln(p.writer, FormatInfo(msg)); writeErr != nil {
			return fmt.Errorf("failed to write suggestions: %w", writeErr)
		}
	}
	return nil
}

// Finish completes the progress bar and prints a short summary.
func (p *Prompter) Finish(result reconcile.Result) {
	if p.progressBar != nil {
		if result.Reviewed == p.total {
			if err := p.progressBar.Finish(); err != nil {
				slog.Warn("Failed to finish progress bar", "error", err)
			}
		}
		if _, err := fmt.Fprintln(p.writer); err != nil {
			slog.Warn("Failed to write newline", "error", err)
		}
	}

	status := "Review complete"
	if result.Aborted {
		status = "Review stopped early"
	}
	summary := fmt.Sprintf("  • Reviewed: %d of %d\n", result.Reviewed, len(result.Categories)) +
		fmt.Sprintf("  • Overridden: %d\n", result.Overridden) +
		fmt.Sprintf("  • Time taken: %s", time.Since(p.startTime).Round(time.Second))

	if _, err := fmt.Fprintln(p.writer, RenderBox(SpiceIcon+" "+status, summary)); err != nil {
		slog.Warn("Failed to write summary box", "error", err)
	}
}

func (p *Prompter) read(ctx context.Context, readFn func(context.Context) (string, error)) (string, error) {
	line, err := readFn(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("input terminated: %w", err)
		}
		if errors.Is(err, ErrInputCancelled) {
			return "", fmt.Errorf("%w: %w", err, ctx.Err())
		}
		return "", err
	}
	return line, nil
}

func (p *Prompter) formatTransaction(txn model.Transaction, predicted string) string {
	details := fmt.Sprintf("  Date:   %s\n", txn.DatePosted.Format("Jan 2, 2006")) +
		fmt.Sprintf("  Amount: %s\n", FormatAmount(txn.Amount)) +
		fmt.Sprintf("  Payee:  %s\n", txn.Payee)
	if txn.Memo != "" {
		details += fmt.Sprintf("  Memo:   %s\n", txn.Memo)
	}
	details += SubtleStyle.Render(fmt.Sprintf("  ID:     %s", txn.ID))

	suggestion := fmt.Sprintf("\n%s Predicted: %s", ForestIcon, PredictionStyle.Render(predicted))
	return details + suggestion
}

func (p *Prompter) initProgressBar() {
	p.progressBar = progressbar.NewOptions(p.total,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Reviewing transactions...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// suggest returns vocabulary entries that contain input case-insensitively,
// or share its first letter when nothing contains it.
func (p *Prompter) suggest(input string) []string {
	needle := strings.ToLower(strings.TrimSpace(input))
	if needle == "" {
		return nil
	}

	var matches []string
	for _, name := range p.vocabulary {
		if strings.Contains(strings.ToLower(name), needle) {
			matches = append(matches, name)
		}
	}
	if len(matches) == 0 {
		for _, name := range p.vocabulary {
			if strings.HasPrefix(strings.ToLower(name), needle[:1]) {
				matches = append(matches, name)
			}
		}
	}

	sort.Strings(matches)
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	return matches
}
