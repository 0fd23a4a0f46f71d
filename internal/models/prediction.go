package models

// Number of risk classes the classifier predicts.
const NumClasses = 3

// ClassLabels names the risk classes in classifier output order.
var ClassLabels = [NumClasses]string{"Low risk", "Moderate risk", "High risk"}

// ClassLabel returns the label of a class index, or "" when out of range.
func ClassLabel(class int) string {
	if class < 0 || class >= NumClasses {
		return ""
	}
	return ClassLabels[class]
}

// PredictionResult is the classifier outcome for one assessment.
type PredictionResult struct {
	Probabilities []float64 `json:"probabilities" example:"0.5,0.45,0.05"`
	WinningClass  int       `json:"winning_class" example:"0"`
	WinningLabel  string    `json:"winning_label" example:"Low risk"`
	CloseClasses  []int     `json:"close_classes" example:"0,1"`
}

// FeatureAttribution is the contribution of one feature to a class score.
type FeatureAttribution struct {
	Feature string  `json:"feature" example:"TUG_Score"`
	Value   float64 `json:"value" example:"12.5"`
	Impact  float64 `json:"impact" example:"0.31"`
}

// ClassExplanation holds the top attributions for one class.
type ClassExplanation struct {
	Class        int                  `json:"class"`
	Label        string               `json:"label"`
	Winner       bool                 `json:"winner"`
	BaseValue    float64              `json:"base_value"`
	Attributions []FeatureAttribution `json:"attributions"`
}
