// Package report prints human-facing run summaries to stdout. Logs go to
// stderr through zerolog; this package is for the lines a user reads.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/kikiluvv/quizprep/internal/pipeline"
	"github.com/kikiluvv/quizprep/internal/pool"
	"github.com/kikiluvv/quizprep/internal/questionnaire"
)

// maxListed caps the per-item path listings.
const maxListed = 20

var (
	titleColor = lipgloss.Color("39")
	okColor    = lipgloss.Color("42")
	warnColor  = lipgloss.Color("220")
	errColor   = lipgloss.Color("196")
	dimColor   = lipgloss.Color("244")
)

// isTerminal reports whether a writer is a TTY.
var isTerminal = defaultIsTerminal

// Printer writes styled summaries.
type Printer struct {
	out     io.Writer
	noColor bool
}

// New returns a Printer. Colour is dropped when noColor is set or out is
// not a terminal.
func New(out io.Writer, noColor bool) *Printer {
	return &Printer{out: out, noColor: noColor || !isTerminal(out)}
}

func defaultIsTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}
	if file, ok := w.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}

func (p *Printer) stylize(text string, color lipgloss.Color, bold bool) string {
	if p.noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Bold(bold).Render(text)
}

func (p *Printer) title(text string) {
	fmt.Fprintln(p.out, p.stylize(text, titleColor, true))
}

func (p *Printer) field(label string, value any) {
	fmt.Fprintf(p.out, "  %s %v\n", p.stylize(label+":", dimColor, false), value)
}

func (p *Printer) counted(label string, n int, color lipgloss.Color) {
	value := fmt.Sprint(n)
	if n > 0 {
		value = p.stylize(value, color, true)
	}
	p.field(label, value)
}

func (p *Printer) list(header string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, p.stylize(header, warnColor, false))
	for i, l := range lines {
		if i == maxListed {
			fmt.Fprintf(p.out, "  ... and %d more\n", len(lines)-maxListed)
			break
		}
		fmt.Fprintf(p.out, "  - %s\n", l)
	}
}

// Convert summarises a converter run and lists the video files the items
// expect to find.
func (p *Printer) Convert(output string, res questionnaire.Result) {
	p.title("Converted questionnaire")
	p.field("input records", res.Total)
	p.counted("items written", len(res.Items), okColor)
	p.counted("skipped", len(res.Skipped), warnColor)
	p.field("saved to", output)

	if len(res.Skipped) > 0 {
		lines := make([]string, 0, len(res.Skipped))
		for _, s := range res.Skipped {
			lines = append(lines, fmt.Sprintf("record %d: %v", s.Index, s.Reason))
		}
		p.list("Skipped records:", lines)
	}
	p.VideoPaths(res.Items)
}

// VideoPaths reminds the user which video files the questionnaire expects.
func (p *Printer) VideoPaths(items []questionnaire.Item) {
	urls := make([]string, 0, len(items))
	for _, it := range items {
		if it.VideoURL != "" {
			urls = append(urls, it.VideoURL)
		}
	}
	p.list("Ensure your video files match the expected paths:", urls)
}

// Pool summarises a pool build with one line per result file.
func (p *Printer) Pool(output string, strategy pool.Strategy, res *pool.Result) {
	p.title(fmt.Sprintf("Built questionnaire pool (%s)", strategy))
	p.counted("items written", len(res.Items), okColor)
	p.counted("samples skipped", res.Skipped, warnColor)
	p.counted("duplicates dropped", res.Duplicates, warnColor)
	p.counted("files failed", res.FailedFiles, errColor)
	p.counted("files ignored", res.IgnoredFiles, dimColor)
	p.field("saved to", output)

	if len(res.Files) == 0 {
		return
	}
	fmt.Fprintln(p.out)
	for _, f := range res.Files {
		kind := "tips"
		if f.IsGE {
			kind = "ge"
		}
		line := fmt.Sprintf("  %-40s %-12s %-4s %d/%d/%d", f.Name, f.Domain, kind, f.Included, f.Selected, f.Samples)
		switch {
		case f.Err != nil:
			line = p.stylize(fmt.Sprintf("  %-40s error: %v", f.Name, f.Err), errColor, false)
		case f.Included == 0:
			line = p.stylize(line, dimColor, false)
		}
		fmt.Fprintln(p.out, line)
	}
	fmt.Fprintln(p.out, p.stylize("  (included/selected/samples)", dimColor, false))
}

// Extract summarises a clip extraction run.
func (p *Printer) Extract(outputDir string, res *pipeline.ExtractResult) {
	p.title("Video processing complete")
	if res.Source != nil {
		p.field("source", fmt.Sprintf("%s (%dx%d, %.2f fps, %s)", res.Source.FilePath,
			res.Source.Width, res.Source.Height, res.Source.FPS, res.Source.Duration.Round(time.Millisecond)))
	}
	p.field("output size", fmt.Sprintf("%dx%d", res.Width, res.Height))
	p.counted("clips written", res.Extracted, okColor)
	p.counted("failed", res.Failed, errColor)
	if res.Posters > 0 {
		p.field("posters", res.Posters)
	}
	if res.Patched > 0 {
		p.field("items updated", res.Patched)
	}
	p.field("directory", outputDir)
}

// Converted prints the new file and the HTML snippet that embeds it.
func (p *Printer) Converted(res *pipeline.ConvertResult) {
	p.title("Conversion successful")
	p.field("input", res.Input)
	p.field("output", res.Output)
	if res.SizeMB > 0 {
		p.field("size", fmt.Sprintf("%.2f MB", res.SizeMB))
	}
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, "Reference the new video in HTML like this:")
	fmt.Fprintln(p.out, p.stylize(VideoTag(res.Output), dimColor, false))
}

// VideoTag returns an HTML5 video element for src.
func VideoTag(src string) string {
	src = strings.ReplaceAll(src, `\`, "/")
	return strings.Join([]string{
		"<video controls>",
		fmt.Sprintf(`    <source src="%s" type="video/mp4">`, src),
		"    Your browser does not support HTML5 video.",
		"</video>",
	}, "\n")
}

// Patched reports the outcome of a questionnaire URL rewrite.
func (p *Printer) Patched(path string, n int, backup string) {
	if n == 0 {
		fmt.Fprintln(p.out, p.stylize("No matching video path found in "+path, warnColor, false))
		return
	}
	if backup != "" {
		p.field("backup", backup)
	}
	fmt.Fprintln(p.out, p.stylize(fmt.Sprintf("Updated %d video path(s) in %s", n, path), okColor, false))
}

// Pages prints the steps for publishing the questionnaire on GitHub Pages.
func (p *Printer) Pages(dataFile, videoDir string) {
	p.title("Publishing the questionnaire with GitHub Pages")
	steps := []string{
		"Create a new GitHub repository",
		"Upload the following files to the repository:\n" +
			"     - index.html\n" +
			"     - questionnaire.js\n" +
			"     - " + dataFile + "\n" +
			"     - " + strings.TrimSuffix(videoDir, "/") + "/ directory with your video files",
		"Go to Settings > Pages and enable GitHub Pages",
		"Your questionnaire will be available at https://<username>.github.io/<repository>/",
	}
	for i, s := range steps {
		fmt.Fprintf(p.out, "  %s %s\n", p.stylize(fmt.Sprintf("%d.", i+1), okColor, true), s)
	}
}
