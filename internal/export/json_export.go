package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/yingtu35/link-verifier/internal/webscraper"
)

type DeadLink struct {
	Link        string `json:"Link"`
	Text        string `json:"Text"`
	FinalURL    string `json:"Final URL"`
	StatusCode  int    `json:"Status Code"`
	Description string `json:"Description"`
}

type Record struct {
	Page      string     `json:"Page"`
	Counts    int        `json:"Counts"`
	DeadLinks []DeadLink `json:"Dead Links"`
}

type JsonExporter struct{}

func NewJsonExporter() Exporter {
	return &JsonExporter{}
}

func (e *JsonExporter) Export(results *webscraper.Results, filename string) error {
	resultJson, err := json.MarshalIndent(e.transformData(results), "", "    ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(filename+".json", resultJson, 0o644); err != nil {
		return fmt.Errorf("export JSON: %w", err)
	}
	return nil
}

func (e *JsonExporter) transformData(results *webscraper.Results) []Record {
	records := []Record{}
	for _, url := range results.Pages() {
		page, _ := results.Page(url)
		record := Record{Page: url, Counts: page.DeadLinkCount}
		for _, o := range page.DeadLinks {
			record.DeadLinks = append(record.DeadLinks, DeadLink{
				Link:        o.LinkURL,
				Text:        o.LinkText,
				FinalURL:    o.FinalURL,
				StatusCode:  o.StatusCode,
				Description: o.Description,
			})
		}
		records = append(records, record)
	}
	return records
}
