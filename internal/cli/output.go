package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/alecthomas/chroma/v2/quick"
)

// output writes command results. JSON output is highlighted when colour is enabled.
type output struct {
	w     io.Writer
	color bool
}

func newOutput(w io.Writer, colorSetting string) *output {
	return &output{w: w, color: useColor(w, colorSetting)}
}

func useColor(w io.Writer, setting string) bool {
	switch setting {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// json prints raw indented. An empty body is printed as {}.
func (o *output) json(raw []byte) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}
	buf.WriteByte('\n')

	if !o.color {
		_, err := o.w.Write(buf.Bytes())
		return err
	}
	return quick.Highlight(o.w, buf.String(), "json", "terminal256", "monokai")
}

// value marshals v and prints it the same way as a raw response
func (o *output) value(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return o.json(raw)
}

func (o *output) table(header string, rows [][]any) error {
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func (o *output) line(format string, args ...any) {
	fmt.Fprintf(o.w, format+"\n", args...)
}
