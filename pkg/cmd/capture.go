package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/hbagdi/hitview/pkg/app"
	"github.com/hbagdi/hitview/pkg/model"
	"github.com/spf13/cobra"
)

type captureFlags struct {
	name   string
	line   int
	meta   []string
	url    string
	method string
	noShow bool
}

func newCaptureCmd(flags *globalFlags) *cobra.Command {
	opts := &captureFlags{}
	c := &cobra.Command{
		Use:   "capture [file]",
		Short: "Add a raw HTTP response (status line, headers, body) to the history",
		Long: "Reads an HTTP response as produced by 'curl -i' or an HTTP dump from " +
			"file, or from stdin when no file is given, adds it to the history and shows it.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withApp(cmd, func(ctx context.Context, a *app.App) error {
				return executeCapture(ctx, cmd, a, opts, args)
			})
		},
	}
	c.Flags().StringVar(&opts.name, "name", "", "name of the request the response belongs to")
	c.Flags().IntVar(&opts.line, "line", 0, "line of the request in its file")
	c.Flags().StringArrayVar(&opts.meta, "meta", nil,
		"request metadata as key=value or key, repeatable (save, noResponseView, openWith, extension, name)")
	c.Flags().StringVar(&opts.url, "url", "", "URL of the request")
	c.Flags().StringVar(&opts.method, "method", http.MethodGet, "method of the request")
	c.Flags().BoolVar(&opts.noShow, "no-show", false, "add to the history without showing")
	return c
}

func executeCapture(ctx context.Context, cmd *cobra.Command, a *app.App,
	opts *captureFlags, args []string) error {
	in := cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open response file: %v", err)
		}
		defer f.Close()
		in = f
	}
	resp, err := parseResponse(in, opts.method, opts.url)
	if err != nil {
		return err
	}
	resp.Name = fmt.Sprintf("response %d", len(a.Store.Items())+1)

	region, err := opts.region(cmd.Flags().Changed("line"))
	if err != nil {
		return err
	}
	item := a.Store.Add(ctx, resp, region, !opts.noShow)
	if item == nil {
		return fmt.Errorf("response could not be stored")
	}
	_, err = fmt.Fprintf(cmd.ErrOrStderr(), "captured %s (%s)\n", item.ID, item.Name)
	return err
}

func (o *captureFlags) region(withLine bool) (*model.Region, error) {
	if o.name == "" && !withLine && len(o.meta) == 0 {
		return nil, nil
	}
	region := &model.Region{Name: o.name}
	if withLine {
		line := o.line
		region.Line = &line
	}
	if len(o.meta) > 0 {
		region.MetaData = map[string]string{}
		for _, kv := range o.meta {
			k, v, _ := strings.Cut(kv, "=")
			k = strings.TrimSpace(k)
			if k == "" {
				return nil, fmt.Errorf("invalid metadata '%v'", kv)
			}
			region.MetaData[k] = strings.TrimSpace(v)
		}
	}
	return region, nil
}

// parseResponse reads a raw HTTP/1.x response.
func parseResponse(r io.Reader, method, url string) (*model.Response, error) {
	var req *http.Request
	if method != "" {
		req = &http.Request{Method: method}
	}
	httpResp, err := http.ReadResponse(bufio.NewReader(r), req)
	if err != nil {
		return nil, fmt.Errorf("parse response: %v", err)
	}
	defer httpResp.Body.Close()
	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %v", err)
	}

	var rawHeaders strings.Builder
	fmt.Fprintf(&rawHeaders, "%s %s\r\n", httpResp.Proto, httpResp.Status)
	if err := httpResp.Header.Write(&rawHeaders); err != nil {
		return nil, fmt.Errorf("read response headers: %v", err)
	}

	resp := &model.Response{
		Protocol:   httpResp.Proto,
		StatusCode: httpResp.StatusCode,
		StatusMessage: strings.TrimSpace(strings.TrimPrefix(httpResp.Status,
			strconv.Itoa(httpResp.StatusCode))),
		ContentType: httpResp.Header.Get("Content-Type"),
		Header:      httpResp.Header,
		RawHeaders:  rawHeaders.String(),
		RawBody:     body,
		Body:        string(body),
	}
	if url != "" {
		resp.Request = &model.Request{Method: method, URL: url}
	}
	return resp, nil
}
