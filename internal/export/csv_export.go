package export

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/yingtu35/link-verifier/internal/webscraper"
)

type DeadLinkRow struct {
	Page        string `csv:"Page,omitempty"`
	Counts      string `csv:"Counts,omitempty"`
	DeadLink    string `csv:"Dead Link"`
	Text        string `csv:"Text"`
	FinalURL    string `csv:"Final URL"`
	StatusCode  int    `csv:"Status Code"`
	Description string `csv:"Description"`
}

type CSVExporter struct{}

func NewCSVExporter() Exporter {
	return &CSVExporter{}
}

func (e *CSVExporter) Export(results *webscraper.Results, filename string) error {
	file, err := os.Create(filename + ".csv")
	if err != nil {
		return fmt.Errorf("create %s.csv: %w", filename, err)
	}
	defer file.Close()

	rows := e.transformData(results)
	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return fmt.Errorf("export CSV: %w", err)
	}
	return nil
}

// transformData lists one row per dead link; only the first row of a page
// carries the page URL and its count.
func (e *CSVExporter) transformData(results *webscraper.Results) []DeadLinkRow {
	rows := []DeadLinkRow{}
	for _, url := range results.Pages() {
		page, _ := results.Page(url)
		for i, o := range page.DeadLinks {
			row := DeadLinkRow{
				DeadLink:    o.LinkURL,
				Text:        o.LinkText,
				FinalURL:    o.FinalURL,
				StatusCode:  o.StatusCode,
				Description: o.Description,
			}
			if i == 0 {
				row.Page = url
				row.Counts = strconv.Itoa(page.DeadLinkCount)
			}
			rows = append(rows, row)
		}
	}
	return rows
}
