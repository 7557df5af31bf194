package domain

import "time"

// Sentinel values applied when mapping scraped acquisitions.
const (
	// UnknownAuthority replaces a missing contracting authority name.
	UnknownAuthority = "Autoritate necunoscută"
	// DefaultCurrency is the only currency the catalog publishes.
	DefaultCurrency = "RON"
)

// Tender status values.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// FetchMode selects which date field the catalog filters on.
type FetchMode string

const (
	ModeFinalized FetchMode = "finalized"
	ModeOngoing   FetchMode = "ongoing"
)

// ContractType wraps the catalog's contract-type descriptor.
type ContractType struct {
	Text string `json:"text"`
}

// RawAcquisition is one item of the catalog list response, kept exactly
// in the external wire shape. Optional fields stay pointers so that
// missing-value fallbacks happen once, at the mapping boundary.
type RawAcquisition struct {
	DirectAcquisitionID  int64         `json:"directAcquisitionId"`
	PublicNoticeNo       string        `json:"publicNoticeNo"`
	Name                 string        `json:"directAcquisitionName"`
	Description          string        `json:"directAcquisitionDescription"`
	ContractingAuthority string        `json:"contractingAuthorityName"`
	CpvCode              string        `json:"cpvCode"`
	ClosingValue         *float64      `json:"closingValue"`
	PublicationDate      string        `json:"publicationDate"`
	ContractTypeID       int           `json:"sysAcquisitionContractTypeID"`
	ContractType         *ContractType `json:"sysAcquisitionContractType"`
}

// AcquisitionPage is one page of catalog results. Total counts every
// item matching the filter, not just this page.
type AcquisitionPage struct {
	Total int              `json:"total"`
	Items []RawAcquisition `json:"items"`
}

// ClassifiedAcquisition is a raw acquisition that matched the taxonomy,
// with provenance attached.
type ClassifiedAcquisition struct {
	RawAcquisition
	MatchedKeyword string
	Authority      string
	Mode           FetchMode
}

// Tender is the persisted record, unique per notice number.
type Tender struct {
	ID              int64
	NoticeNumber    string
	Title           string
	Description     string
	Authority       string
	Supplier        string
	Value           string
	Currency        string
	Location        string
	CpvCode         string
	PublicationDate time.Time
	Deadline        *time.Time
	Status          string
	ContractType    string
	MatchedKeyword  string
	Link            string
}

// TenderFilter narrows tender listings.
type TenderFilter struct {
	Search   string
	Location string
	Status   string
}

// TenderStats aggregates the stored records for reporting.
type TenderStats struct {
	TotalTenders int
	TotalValue   float64
	KeywordStats map[string]int
	Currency     string
}

// ModeStats counts what a single fetch mode saw during one scrape.
type ModeStats struct {
	Scanned        int
	Matched        int
	StoppedOnError bool
}

// ScrapeReport is the ephemeral outcome of one scrapeDay call.
type ScrapeReport struct {
	Date      string
	Matches   []ClassifiedAcquisition
	Finalized ModeStats
	Ongoing   ModeStats
}

// TotalScanned sums the items inspected across both modes.
func (r *ScrapeReport) TotalScanned() int {
	return r.Finalized.Scanned + r.Ongoing.Scanned
}

// JobResult reports one daily-job execution.
type JobResult struct {
	Saved     int
	EmailSent bool
}
