// Package extract produces the extraction document for an uploaded PDF.
//
// There is no real extraction engine yet: Extractor fabricates the sample
// contract structure so the rest of the pipeline (storage, linking, review)
// can be exercised end to end. The field layout matches what the review UI
// renders.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phototype/evidence-mcp/pkg/types"
)

// contractFields is the placeholder field mapping. Struct order defines the
// JSON key order the flattener will see.
type contractFields struct {
	ContractNumber string `json:"contract_number"`
	Date           string `json:"date"`
	Seller         party  `json:"seller"`
	Buyer          buyer  `json:"buyer"`
	Subject        struct {
		Description   string `json:"description"`
		Quantity      string `json:"quantity"`
		Unit          string `json:"unit"`
		OriginCountry string `json:"origin_country"`
	} `json:"subject_of_contract"`
	Price struct {
		Price     string `json:"price"`
		Currency  string `json:"currency"`
		TotalCost string `json:"total_cost"`
	} `json:"price_and_total_cost"`
	Delivery struct {
		Deadline          string   `json:"deadline"`
		RequiredDocuments []string `json:"required_documents"`
	} `json:"delivery_documents"`
}

type party struct {
	Name           string `json:"name"`
	Location       string `json:"location"`
	Representative string `json:"representative"`
	Authority      string `json:"authority"`
}

type buyer struct {
	Name      string `json:"name"`
	Location  string `json:"location"`
	Director  string `json:"director"`
	Authority string `json:"authority"`
}

// Extractor fabricates extraction documents. Clock and NewID are injectable
// so tests get deterministic output.
type Extractor struct {
	Clock func() time.Time
	NewID func() string
}

// New returns an extractor using the real clock and random IDs.
func New() *Extractor {
	return &Extractor{
		Clock: time.Now,
		NewID: uuid.NewString,
	}
}

// Extract builds the placeholder extraction document for a source file.
func (e *Extractor) Extract(sourceFile string) (*types.ExtractionDocument, error) {
	now := e.Clock()

	fields := contractFields{
		ContractNumber: "AUTO_" + strings.ToUpper(e.NewID()[:8]),
		Date:           now.Format("02 January 2006"),
		Seller: party{
			Name:           "Extracted Company Name",
			Location:       "Extracted Location",
			Representative: "Extracted Representative",
			Authority:      "Extracted Authority Document",
		},
		Buyer: buyer{
			Name:      "Extracted Buyer Name",
			Location:  "Extracted Buyer Location",
			Director:  "Extracted Director Name",
			Authority: "Extracted Buyer Authority",
		},
	}
	fields.Subject.Description = "Extracted contract description from PDF"
	fields.Subject.Quantity = "Extracted quantity"
	fields.Subject.Unit = "Extracted unit"
	fields.Subject.OriginCountry = "Extracted Origin Country"
	fields.Price.Price = "Pricing method extracted from PDF"
	fields.Price.Currency = "USD"
	fields.Price.TotalCost = "Amount extracted from PDF"
	fields.Delivery.Deadline = "Deadline extracted from PDF"
	fields.Delivery.RequiredDocuments = []string{
		"Invoice",
		"Bill of Lading",
		"Certificate of Origin",
		"Packing List",
	}

	rawFields, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encoding fields: %w", err)
	}

	return &types.ExtractionDocument{
		Fields: rawFields,
		Text:   fmt.Sprintf("Full text extracted from PDF file: %s", sourceFile),
		Metadata: types.ExtractionMetadata{
			ProcessedDate:    now.Format(time.RFC3339),
			SourceFile:       sourceFile,
			ProcessingMethod: "Automated PDF extraction",
		},
	}, nil
}
