package cmd

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/jwhyun/finbot/internal/products"
)

var (
	securitiesFile string
	productsFile   string
)

// seedSecurity is one securities entry in the seed file. Nil metrics map
// to NULL columns so lookups render "정보 없음" instead of zeros.
type seedSecurity struct {
	Code      string   `json:"code"`
	Name      string   `json:"name"`
	ShortName string   `json:"short_name"`
	Market    string   `json:"market"`
	Price     float64  `json:"price"`
	PBR       *float64 `json:"pbr"`
	PER       *float64 `json:"per"`
	EPS       *float64 `json:"eps"`
	Sector    string   `json:"sector"`
}

// seedProduct is one catalog entry (deposit, savings, annuity or stock
// product description) in the seed file.
type seedProduct struct {
	ID       string             `json:"id"`
	Text     string             `json:"text"`
	Category string             `json:"category"`
	Company  string             `json:"company"`
	Code     string             `json:"code"`
	Metrics  map[string]float64 `json:"metrics"`
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the product search index from seed files",
	Long: `Loads securities and product catalog seed files into the database,
embeds every entry into the vector index and persists the index under the
data directory. Re-running replaces previously indexed entries.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		exitOnError(err)

		if securitiesFile == "" && productsFile == "" {
			exitOnError(fmt.Errorf("at least one of --securities or --products is required"))
		}

		ctx := context.Background()
		a, err := buildApp(ctx, cfg)
		exitOnError(err)
		defer a.Close()

		if securitiesFile != "" {
			exitOnError(indexSecurities(ctx, a, securitiesFile))
		}
		if productsFile != "" {
			exitOnError(indexProducts(ctx, a, productsFile))
		}

		exitOnError(a.index.Persist(ctx, cfg.DataDir))
		fmt.Printf("Indexed %d documents into %s\n", a.index.Count(), cfg.DataDir)
	},
}

func indexSecurities(ctx context.Context, a *app, path string) error {
	var seeds []seedSecurity
	if err := readSeedFile(path, &seeds); err != nil {
		return err
	}

	store := products.NewSecurityStore(a.db)
	bar := progressbar.Default(int64(len(seeds)), "securities")
	docs := make([]products.Document, 0, len(seeds))
	for _, s := range seeds {
		sec := products.Security{
			Code:      s.Code,
			Name:      s.Name,
			ShortName: s.ShortName,
			Market:    products.Market(s.Market),
			Price:     s.Price,
			PBR:       nullFloat(s.PBR),
			PER:       nullFloat(s.PER),
			EPS:       nullFloat(s.EPS),
			Sector:    s.Sector,
		}
		if err := store.Upsert(ctx, sec); err != nil {
			return fmt.Errorf("upserting security %s: %w", s.Code, err)
		}
		docs = append(docs, sec.IndexDocument())
		bar.Add(1)
	}

	return a.index.Add(ctx, docs)
}

func indexProducts(ctx context.Context, a *app, path string) error {
	var seeds []seedProduct
	if err := readSeedFile(path, &seeds); err != nil {
		return err
	}

	bar := progressbar.Default(int64(len(seeds)), "products")
	docs := make([]products.Document, 0, len(seeds))
	for _, p := range seeds {
		category, ok := products.NormalizeCategory(p.Category)
		if !ok {
			return fmt.Errorf("product %s: unknown category %q", p.ID, p.Category)
		}
		docs = append(docs, products.Document{
			ID:       p.ID,
			Text:     p.Text,
			Category: category,
			Company:  p.Company,
			Code:     p.Code,
			Metrics:  p.Metrics,
		})
		bar.Add(1)
	}

	return a.index.Add(ctx, docs)
}

func readSeedFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func init() {
	indexCmd.Flags().StringVar(&securitiesFile, "securities", "", "securities seed file (JSON)")
	indexCmd.Flags().StringVar(&productsFile, "products", "", "product catalog seed file (JSON)")
	rootCmd.AddCommand(indexCmd)
}
