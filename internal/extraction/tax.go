package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rocjay1/burnrate/internal/models"
)

// TaxExtraction is the validated result of reading a tax document.
type TaxExtraction struct {
	DocType    models.TaxDocType
	TaxYear    string
	EntityName string
	Figures    models.TaxFigures
	Insights   []string
}

// ParseTaxDocument decodes a tax extraction reply. Unknown document types
// become "other" and a missing tax year becomes defaultYear.
func ParseTaxDocument(raw []byte, defaultYear string) (*TaxExtraction, error) {
	var doc struct {
		DocType    looseString   `json:"docType"`
		TaxYear    looseString   `json:"taxYear"`
		EntityName looseString   `json:"entityName"`
		Insights   []looseString `json:"insights"`
		Data       struct {
			GrossIncome        looseNumber `json:"grossIncome"`
			FederalTaxWithheld looseNumber `json:"federalTaxWithheld"`
			SocialSecurityTax  looseNumber `json:"socialSecurityTax"`
			MedicareTax        looseNumber `json:"medicareTax"`
			StateTaxWithheld   looseNumber `json:"stateTaxWithheld"`
			State              looseString `json:"state"`
			PropertyTaxAmount  looseNumber `json:"propertyTaxAmount"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode tax extraction: %w", err)
	}

	out := &TaxExtraction{
		DocType:    normalizeDocType(string(doc.DocType)),
		TaxYear:    string(doc.TaxYear),
		EntityName: string(doc.EntityName),
		Figures: models.TaxFigures{
			GrossIncome:        doc.Data.GrossIncome.Float(),
			FederalTaxWithheld: doc.Data.FederalTaxWithheld.Float(),
			SocialSecurityTax:  doc.Data.SocialSecurityTax.Float(),
			MedicareTax:        doc.Data.MedicareTax.Float(),
			StateTaxWithheld:   doc.Data.StateTaxWithheld.Float(),
			PropertyTaxAmount:  doc.Data.PropertyTaxAmount.Float(),
		},
	}
	if out.TaxYear == "" {
		out.TaxYear = defaultYear
	}
	if state := string(doc.Data.State); state != "" {
		out.Figures.State = &state
	}
	for _, insight := range doc.Insights {
		if insight != "" {
			out.Insights = append(out.Insights, string(insight))
		}
	}
	return out, nil
}

func normalizeDocType(s string) models.TaxDocType {
	v := strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(v, "1099") {
		return models.TaxDoc1099
	}
	switch v {
	case "w-2":
		return models.TaxDocW2
	case "property tax", "property-tax":
		return models.TaxDocPropertyTax
	}
	if t := models.TaxDocType(v); t.Valid() {
		return t
	}
	return models.TaxDocOther
}
