package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/hbagdi/hitview/pkg/model"
	"github.com/nwidger/jsoncolor"
)

type Printer struct {
	writer io.Writer
	mode   Mode
}

type Mode int

const (
	ModeColorConsole Mode = iota
	ModeNoColor
)

type Opts struct {
	Writer io.Writer
	Mode   Mode
}

func NewPrinter(opts Opts) Printer {
	return Printer{
		writer: opts.Writer,
		mode:   opts.Mode,
	}
}

// Print writes the full exchange: request line, request headers and body
// (when the request is known), then status line, response headers and body.
func (p Printer) Print(resp *model.Response) error {
	if resp.Request != nil {
		if err := p.printRequest(resp.Request); err != nil {
			return err
		}
	}
	return p.printResponse(resp)
}

// PrintHeaders writes only the status line and the response headers.
func (p Printer) PrintHeaders(resp *model.Response) error {
	return p.printStatusAndHeaders(resp)
}

// PrintDocument writes the content of a document. JSON documents are
// indented and colored.
func (p Printer) PrintDocument(content []byte, language string) error {
	if language == "json" && json.Valid(content) {
		js, err := p.prettyJSON(content)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(p.writer, string(js))
		return err
	}
	_, err := fmt.Fprintf(p.writer, "%s", content)
	if err != nil {
		return err
	}
	if len(content) > 0 && content[len(content)-1] != '\n' {
		_, err = fmt.Fprintln(p.writer)
	}
	return err
}

type colorPrinter interface {
	SprintfFunc() func(format string, a ...interface{}) string
}

type noColor struct{}

func (n noColor) SprintfFunc() func(format string, a ...interface{}) string {
	return fmt.Sprintf
}

type colorName int

const (
	white colorName = iota
	cyan
	yellow
	grey
	blue
	green
	magenta
	red
)

var consoleColors = map[colorName]colorPrinter{}

func init() {
	consoleColors[white] = color.New(color.FgWhite)
	consoleColors[cyan] = color.New(color.FgCyan)
	consoleColors[yellow] = color.New(color.FgYellow)
	consoleColors[grey] = color.New(color.FgBlack, color.Bold)
	consoleColors[blue] = color.New(color.FgBlue)
	consoleColors[green] = color.New(color.FgGreen)
	consoleColors[magenta] = color.New(color.FgMagenta)
	consoleColors[red] = color.New(color.FgRed)
}

func (p Printer) colorPrinterFor(name colorName) colorPrinter {
	switch p.mode {
	case ModeColorConsole:
		return consoleColors[name]
	case ModeNoColor:
		return noColor{}
	default:
		panic(fmt.Sprintf("invalid mode: %v", p.mode))
	}
}

//nolint:gomnd
func colorForCode(code int) colorName {
	switch {
	case code < 200:
		return white
	case code < 300:
		return green
	case code < 400:
		return yellow
	case code < 500:
		return magenta
	case code < 600:
		return red
	default:
		return white
	}
}

// Status renders the status code colored by class.
func (p Printer) Status(code int) string {
	return p.colorPrinterFor(colorForCode(code)).SprintfFunc()("%d", code)
}

func (p Printer) printRequest(r *model.Request) error {
	requestLine := p.colorPrinterFor(white).SprintfFunc()("%s %s\n", r.Method, r.URL)
	if _, err := fmt.Fprintf(p.writer, "%s", requestLine); err != nil {
		return err
	}
	if err := p.printHeaders(r.Header); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(p.writer); err != nil {
		return err
	}
	if len(r.Body) > 0 {
		if err := p.printBody(r.Body); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(p.writer); err != nil {
			return err
		}
	}
	return nil
}

func (p Printer) printStatusAndHeaders(resp *model.Response) error {
	proto := resp.Protocol
	if proto == "" {
		proto = "HTTP"
	}
	status := resp.StatusMessage
	if status == "" {
		status = http.StatusText(resp.StatusCode)
	}
	line := p.colorPrinterFor(white).SprintfFunc()("%s ", proto) +
		p.colorPrinterFor(colorForCode(resp.StatusCode)).SprintfFunc()("%s %s\n",
			strconv.Itoa(resp.StatusCode), status)
	if _, err := fmt.Fprintf(p.writer, "%s", line); err != nil {
		return err
	}
	return p.printHeaders(resp.Header)
}

func (p Printer) printResponse(resp *model.Response) error {
	if err := p.printStatusAndHeaders(resp); err != nil {
		return err
	}
	body := resp.RawBody
	if len(body) == 0 {
		body = []byte(resp.Body)
	}
	if len(body) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(p.writer); err != nil {
		return err
	}
	return p.printBody(body)
}

func isJSON(b []byte) bool {
	return json.Valid(b)
}

func (p Printer) printBody(body []byte) error {
	if isJSON(body) {
		js, err := p.prettyJSON(body)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(p.writer, string(js))
		return err
	}
	res := p.colorPrinterFor(white).SprintfFunc()("%s", body)
	_, err := fmt.Fprintf(p.writer, "%s\n", res)
	return err
}

func (p Printer) prettyJSON(js []byte) ([]byte, error) {
	if len(js) == 0 {
		return js, nil
	}

	var jsMap interface{}
	if err := json.Unmarshal(js, &jsMap); err != nil {
		return nil, err
	}

	dst, err := jsoncolor.MarshalIndentWithFormatter(jsMap, "", "  ", p.formatter())
	if err != nil {
		return nil, err
	}
	return dst, nil
}

func (p Printer) printHeaders(header http.Header) error {
	headerKeySprintf := p.colorPrinterFor(cyan).SprintfFunc()
	headerValueSprintf := p.colorPrinterFor(white).SprintfFunc()
	var res string
	keys := make([]string, 0, len(header))
	for k := range header {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		values := header[k]
		for _, v := range values {
			res += headerKeySprintf("%s", k)
			res += headerValueSprintf(": %s\n", v)
		}
	}
	_, err := fmt.Fprintf(p.writer, "%s", res)
	return err
}

func (p Printer) formatter() *jsoncolor.Formatter {
	f := jsoncolor.NewFormatter()
	whiteP := p.colorPrinterFor(white)
	blueP := p.colorPrinterFor(blue)
	greenP := p.colorPrinterFor(green)
	greyP := p.colorPrinterFor(grey)
	yellowP := p.colorPrinterFor(yellow)

	f.ObjectColor = whiteP
	f.ArrayColor = whiteP
	f.FieldQuoteColor = whiteP
	f.CommaColor = whiteP
	f.StringQuoteColor = whiteP
	f.ColonColor = whiteP
	f.SpaceColor = whiteP

	f.FieldColor = blueP

	f.NullColor = greyP

	f.StringColor = greenP

	f.TrueColor = yellowP
	f.FalseColor = yellowP

	f.NumberColor = blueP
	return f
}
