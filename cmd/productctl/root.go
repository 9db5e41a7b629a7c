package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/productlens/backend/config"
	"github.com/productlens/backend/internal/domain"
	"github.com/productlens/backend/internal/infrastructure/opinions"
	"github.com/productlens/backend/internal/infrastructure/page"
	"github.com/productlens/backend/internal/usecase"
	"github.com/spf13/cobra"
)

var version = "dev"

type options struct {
	opinionsURL string
	timeout     time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "productctl",
		Short:        "Extract product data from retailer pages",
		Long:         "productctl runs ProductLens product detection against a saved or live Amazon/BestBuy page and queries the opinions backend.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.opinionsURL, "opinions-url", "", "opinions backend base URL (defaults to configuration)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "request timeout (defaults to configuration)")

	root.AddCommand(newExtractCmd(opts))
	root.AddCommand(newOpinionsCmd(opts))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "productctl %s\n", version)
		},
	})

	return root
}

type extractOutput struct {
	Product  *domain.ProductRecord  `json:"product"`
	Opinions *domain.OpinionsResult `json:"opinions,omitempty"`
}

func newExtractCmd(opts *options) *cobra.Command {
	var (
		pageURL      string
		file         string
		withOpinions bool
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract the product record of a page",
		Example: `  productctl extract --url https://www.amazon.com/dp/B08KTZ8249
  productctl extract --url https://www.bestbuy.com/site/6509650.p --file saved.html --opinions`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			detection, err := detect(ctx, cfg, pageURL, file)
			if err != nil {
				return err
			}

			out := extractOutput{Product: detection.Record}
			if withOpinions {
				if err := detection.Badge.LoadOpinions(ctx, opinionsClient(cfg, opts)); err != nil {
					return err
				}
				out.Opinions = detection.Badge.Opinions()
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&pageURL, "url", "", "page address; selects the site rules")
	cmd.Flags().StringVar(&file, "file", "", "saved page HTML; the page is downloaded when omitted")
	cmd.Flags().BoolVar(&withOpinions, "opinions", false, "also fetch opinions for the product title")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

func detect(ctx context.Context, cfg *config.Config, pageURL, file string) (*usecase.Detection, error) {
	if file == "" {
		fetcher := page.NewFetcher(page.Config{
			Timeout:      cfg.Fetcher.Timeout,
			MaxBodyBytes: cfg.Fetcher.MaxBodyBytes,
			UserAgent:    cfg.Fetcher.UserAgent,
		})
		return usecase.NewDetectionService(nil, fetcher).DetectURL(ctx, pageURL, "")
	}

	markup, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	return usecase.NewDetectionService(nil, nil).DetectHTML(ctx, pageURL, "", string(markup))
}

func newOpinionsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "opinions <product title>",
		Short: "Fetch discussions and reviews for a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			result, err := opinionsClient(cfg, opts).FetchOpinions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
}

func opinionsClient(cfg *config.Config, opts *options) *opinions.Client {
	baseURL := cfg.Opinions.BaseURL
	if opts.opinionsURL != "" {
		baseURL = opts.opinionsURL
	}
	timeout := cfg.Opinions.Timeout
	if opts.timeout > 0 {
		timeout = opts.timeout
	}
	return opinions.NewClient(baseURL, timeout, 0)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
