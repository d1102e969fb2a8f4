package io

// Curriculum is the structured JSON document: a named plan split into
// terms of items.
type Curriculum struct {
	Name        string `json:"name"`
	DPName      string `json:"dp_name,omitempty"`
	Institution string `json:"institution,omitempty"`
	Terms       []Term `json:"curriculum_terms"`
}

// Term is one column of a curriculum. ID is 1-indexed.
type Term struct {
	ID    int    `json:"id,omitempty"`
	Name  string `json:"name"`
	Items []Item `json:"curriculum_items"`
}

// Item is a course and the requisites it lists.
type Item struct {
	ID            int          `json:"id"`
	Name          string       `json:"name"`
	NameSub       string       `json:"nameSub,omitempty"`
	NameCanonical string       `json:"nameCanonical,omitempty"`
	Credits       float64      `json:"credits"`
	Requisites    []Requisite  `json:"curriculum_requisites"`
	Metrics       *ItemMetrics `json:"metrics,omitempty"`
}

// Requisite names the course SourceID as a requisite of its item.
// TargetID is informational; the owning item is always the target.
type Requisite struct {
	SourceID int    `json:"source_id"`
	TargetID int    `json:"target_id"`
	Type     string `json:"type"`
}

// ItemMetrics carries precomputed metrics. Missing fields are omitted.
type ItemMetrics struct {
	Complexity     *float64 `json:"complexity,omitempty"`
	Centrality     *int     `json:"centrality,omitempty"`
	DelayFactor    *int     `json:"delay factor,omitempty"`
	BlockingFactor *float64 `json:"blocking factor,omitempty"`
}
