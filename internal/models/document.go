package models

// UploadedDocument is a verified statement whose signals were saved.
type UploadedDocument struct {
	ID          string `json:"id"`
	FileName    string `json:"fileName"`
	BlobName    string `json:"blobName"`
	UploadedAt  int64  `json:"uploadedAt"`
	SignalCount int    `json:"signalCount"`
}

// Draft holds validated extraction output awaiting user verification.
type Draft struct {
	ID        string            `json:"id"`
	FileName  string            `json:"fileName"`
	BlobName  string            `json:"blobName"`
	Signals   []FinancialSignal `json:"signals"`
	CreatedAt int64             `json:"createdAt"`
}

// TaxDocType enumerates the recognised tax document kinds.
type TaxDocType string

const (
	TaxDocW2          TaxDocType = "w2"
	TaxDoc1099        TaxDocType = "1099"
	TaxDocPropertyTax TaxDocType = "property_tax"
	TaxDocPaystub     TaxDocType = "paystub"
	TaxDocOther       TaxDocType = "other"
)

// Valid reports whether t is a recognised document type.
func (t TaxDocType) Valid() bool {
	switch t {
	case TaxDocW2, TaxDoc1099, TaxDocPropertyTax, TaxDocPaystub, TaxDocOther:
		return true
	}
	return false
}

// TaxFigures are the amounts read off a tax document. Nil means not found.
type TaxFigures struct {
	GrossIncome        *float64 `json:"grossIncome"`
	FederalTaxWithheld *float64 `json:"federalTaxWithheld"`
	SocialSecurityTax  *float64 `json:"socialSecurityTax"`
	MedicareTax        *float64 `json:"medicareTax"`
	StateTaxWithheld   *float64 `json:"stateTaxWithheld"`
	State              *string  `json:"state"`
	PropertyTaxAmount  *float64 `json:"propertyTaxAmount"`
}

// TaxDocument is an uploaded tax form.
type TaxDocument struct {
	ID         string     `json:"id"`
	FileName   string     `json:"fileName"`
	BlobName   string     `json:"blobName"`
	DocType    TaxDocType `json:"docType"`
	TaxYear    string     `json:"taxYear"`
	EntityName string     `json:"entityName"`
	UploadedAt int64      `json:"uploadedAt"`
}

// TaxInsightType distinguishes extracted figures from free-text advice.
type TaxInsightType string

const (
	TaxInsightExtraction TaxInsightType = "extraction"
	TaxInsightAdvice     TaxInsightType = "advice"
)

// TaxInsight belongs to a TaxDocument and is deleted with it.
type TaxInsight struct {
	ID        string         `json:"id"`
	DocID     string         `json:"docId"`
	Type      TaxInsightType `json:"type"`
	Figures   *TaxFigures    `json:"figures,omitempty"`
	Advice    string         `json:"advice,omitempty"`
	CreatedAt int64          `json:"createdAt"`
}
