package classification

// Result is the classification verdict for a single tender as published
// on the procurement portal's relations-details page.
type Result struct {
	ItemID                 string   `json:"item_id"`
	Label                  string   `json:"classification"`
	RequiresClassification bool     `json:"requires_classification"`
	Bundles                []string `json:"bundles"`
}

// LabelUnspecified is returned when the upstream page carries no
// classification fields at all.
const LabelUnspecified = "غير محدد"

// labelNotRequired marks a tender whose classification field explicitly
// says no classification is needed.
const labelNotRequired = "غير مطلوب"
