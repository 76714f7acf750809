package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"contactrelay/internal/fetcher"
	"contactrelay/pkg/config"
)

type fetchOptions struct {
	url         string
	pagePath    string
	selector    string
	outPath     string
	announceURL string
}

func newFetchCommand(rt *runtimeState) *cobra.Command {
	opts := &fetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch a JSON array and render one paragraph per item into a page",
		Long: "Fetch issues one GET to --url and appends a <p> per array element, holding the\n" +
			"element's JSON text, to the container matched by --selector. Fetch failures are\n" +
			"logged and the page is written unchanged.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFetch(cmd, rt, opts)
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", config.GetEnv("FETCH_URL", "http://localhost:8000/api/data"), "Data endpoint (env FETCH_URL)")
	cmd.Flags().StringVar(&opts.pagePath, "page", "", "HTML page template (default: built-in page with <div id=\"data\">)")
	cmd.Flags().StringVar(&opts.selector, "selector", fetcher.DefaultSelector, "CSS selector of the container")
	cmd.Flags().StringVarP(&opts.outPath, "out", "o", "-", "Output file, - for stdout")
	cmd.Flags().StringVar(&opts.announceURL, "announce-url", config.GetEnv("FETCH_ANNOUNCE_URL", ""), "URL to log at start-up; it is not requested (env FETCH_ANNOUNCE_URL)")
	return cmd
}

func runFetch(cmd *cobra.Command, rt *runtimeState, opts *fetchOptions) error {
	var src io.Reader = strings.NewReader(fetcher.DefaultPage)
	if opts.pagePath != "" {
		f, err := os.Open(opts.pagePath)
		if err != nil {
			return fmt.Errorf("open page: %w", err)
		}
		defer f.Close()
		src = f
	}

	doc, err := fetcher.ParsePage(src)
	if err != nil {
		return err
	}

	page := &fetcher.Page{
		Client:      fetcher.NewClient(nil, rt.logger),
		URL:         opts.url,
		Selector:    opts.selector,
		AnnounceURL: opts.announceURL,
		Logger:      rt.logger,
	}
	// Load logs its own failures.
	_, _ = page.Load(cmd.Context(), doc)

	out, err := doc.Html()
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	w := rt.writer
	if opts.outPath != "-" && opts.outPath != "" {
		f, err := os.Create(opts.outPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	_, err = io.WriteString(w, out)
	return err
}
