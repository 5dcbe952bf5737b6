package printer

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/hbagdi/hitview/pkg/model"
)

// Inspect writes v as an indented tree, one node per line.
func (p Printer) Inspect(v model.Value) error {
	var sb strings.Builder
	p.inspect(&sb, "", v, 0)
	_, err := fmt.Fprint(p.writer, sb.String())
	return err
}

func (p Printer) inspect(sb *strings.Builder, label string, v model.Value, depth int) {
	indent := strings.Repeat("  ", depth)
	key := ""
	if label != "" {
		key = p.colorPrinterFor(blue).SprintfFunc()("%s", label) + ": "
	}
	switch v.Kind {
	case model.KindPrimitive:
		fmt.Fprintf(sb, "%s%s%s\n", indent, key, p.primitive(v.Primitive))
	case model.KindBuffer:
		fmt.Fprintf(sb, "%s%s%s\n", indent, key,
			p.colorPrinterFor(grey).SprintfFunc()("<buffer %d bytes> %s",
				len(v.Buffer), base64.StdEncoding.EncodeToString(v.Buffer)))
	case model.KindDate:
		fmt.Fprintf(sb, "%s%s%s\n", indent, key,
			p.colorPrinterFor(yellow).SprintfFunc()("%s", v.Date.Format(time.RFC3339)))
	case model.KindArray:
		fmt.Fprintf(sb, "%s%s[%d]\n", indent, key, len(v.Items))
		for i, item := range v.Items {
			p.inspect(sb, fmt.Sprintf("%d", i), item, depth+1)
		}
	case model.KindObject:
		fmt.Fprintf(sb, "%s%s{%d}\n", indent, key, len(v.Fields))
		for _, f := range v.Fields {
			p.inspect(sb, f.Key, f.Value, depth+1)
		}
	}
}

func (p Printer) primitive(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return p.colorPrinterFor(grey).SprintfFunc()("null")
	case string:
		return p.colorPrinterFor(green).SprintfFunc()("%q", t)
	case bool:
		return p.colorPrinterFor(yellow).SprintfFunc()("%v", t)
	default:
		return p.colorPrinterFor(blue).SprintfFunc()("%v", t)
	}
}
