package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct {
	translate func(string) string
}

// Option configures a MarkdownFormatter.
type Option func(*MarkdownFormatter)

// WithTranslator sets the function used to translate labels.
func WithTranslator(t func(string) string) Option {
	return func(f *MarkdownFormatter) {
		f.translate = t
	}
}

// NewMarkdownFormatter creates a MarkdownFormatter. Labels are English
// unless a translator is given.
func NewMarkdownFormatter(opts ...Option) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Upscale Summary"))
	fmt.Fprintf(&b, "%s: %s\n", t("Generated"), s.GeneratedAt.Format(time.RFC3339))
	if s.RunID != "" {
		fmt.Fprintf(&b, "%s: `%s`\n", t("Run ID"), s.RunID)
	}

	fmt.Fprintf(&b, "\n## %s\n\n", t("Result"))
	status := t("Completed")
	switch {
	case s.Result.Error != "":
		status = t("Failed")
	case s.Result.Stopped:
		status = t("Stopped early")
	}
	row := tableWriter(&b, t("Item"), t("Value"))
	row(t("Status"), status)
	if s.Result.Error != "" {
		row(t("Error"), escapeCell(s.Result.Error))
	}
	frames := fmt.Sprintf("%d", s.Result.FramesWritten)
	if s.Input.FrameCount > 0 {
		frames = fmt.Sprintf("%d / %d", s.Result.FramesWritten, s.Input.FrameCount)
	}
	row(t("Frames Written"), frames)
	row(t("Elapsed"), s.Result.Elapsed.Round(time.Millisecond).String())
	row(t("Throughput"), fmt.Sprintf("%.2f fps", s.Result.Throughput()))

	fmt.Fprintf(&b, "\n## %s\n\n", t("Video"))
	row = tableWriter(&b, "", t("Input"), t("Output"))
	row(t("File"), escapeCell(s.Input.Path), escapeCell(s.Output.Path))
	row(t("Resolution"),
		fmt.Sprintf("%dx%d", s.Input.Width, s.Input.Height),
		fmt.Sprintf("%dx%d", s.Output.Width, s.Output.Height))
	row(t("Frame Rate"), fmt.Sprintf("%.2f fps", s.Input.FPS), fmt.Sprintf("%.2f fps", s.Input.FPS))
	codec := s.Input.Codec
	if codec == "" {
		codec = t("unknown")
	}
	row(t("Codec"), codec, "H.264")
	if s.Output.FileSize > 0 {
		row(t("File Size"), "", formatBytes(s.Output.FileSize))
	}

	fmt.Fprintf(&b, "\n## %s\n\n", t("Settings"))
	row = tableWriter(&b, t("Item"), t("Value"))
	row(t("Algorithm"), s.Settings.Algo)
	row(t("Scale"), fmt.Sprintf("x%d", s.Settings.Factor))
	row(t("Parallel Instances"), fmt.Sprintf("%d", s.Settings.Workers))
	crf := t("default")
	if s.Settings.CRF > 0 {
		crf = fmt.Sprintf("%d", s.Settings.CRF)
	}
	row(t("CRF"), crf)

	return b.String()
}

// tableWriter writes a Markdown table header and returns a row writer.
func tableWriter(b *strings.Builder, headers ...string) func(cells ...string) {
	fmt.Fprintf(b, "| %s |\n", strings.Join(headers, " | "))
	seps := make([]string, len(headers))
	for i := range seps {
		seps[i] = "---"
	}
	fmt.Fprintf(b, "| %s |\n", strings.Join(seps, " | "))
	return func(cells ...string) {
		fmt.Fprintf(b, "| %s |\n", strings.Join(cells, " | "))
	}
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func formatBytes(n int64) string {
	const unit = 1024
	switch {
	case n >= unit*unit*unit:
		return fmt.Sprintf("%.2f GB", float64(n)/(unit*unit*unit))
	case n >= unit*unit:
		return fmt.Sprintf("%.2f MB", float64(n)/(unit*unit))
	case n >= unit:
		return fmt.Sprintf("%.2f KB", float64(n)/unit)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
