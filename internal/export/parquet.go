// Package export writes stored assessments as Parquet for offline analysis.
package export

import (
	"fmt"
	"io"
	"sort"

	"epif/internal/models"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// AssessmentRow is the flattened Parquet layout of one assessment. The
// feature vector is stored as two parallel lists sorted by feature name.
type AssessmentRow struct {
	ID             string    `parquet:"id"`
	CreatedAtMs    int64     `parquet:"created_at_ms"`
	PractitionerID int64     `parquet:"practitioner_id"`
	Falls          int32     `parquet:"falls"`
	FallLocation   string    `parquet:"fall_location"`
	WinningClass   int32     `parquet:"winning_class"`
	WinningLabel   string    `parquet:"winning_label"`
	Probabilities  []float64 `parquet:"probabilities,list"`
	CloseClasses   []int32   `parquet:"close_classes,list"`
	FeatureNames   []string  `parquet:"feature_names,list"`
	FeatureValues  []float64 `parquet:"feature_values,list"`
}

// NewAssessmentRow flattens a stored assessment. A missing practitioner is
// written as 0.
func NewAssessmentRow(a models.Assessment) AssessmentRow {
	row := AssessmentRow{
		ID:            a.ID.String(),
		CreatedAtMs:   a.CreatedAt.UnixMilli(),
		Falls:         int32(a.Falls),
		FallLocation:  a.FallLocation,
		WinningClass:  int32(a.WinningClass),
		WinningLabel:  a.WinningLabel,
		Probabilities: append([]float64(nil), a.Probabilities...),
	}
	if a.PractitionerID != nil {
		row.PractitionerID = int64(*a.PractitionerID)
	}
	for _, c := range a.CloseClasses {
		row.CloseClasses = append(row.CloseClasses, int32(c))
	}

	names := make([]string, 0, len(a.Features))
	for name := range a.Features {
		names = append(names, name)
	}
	sort.Strings(names)
	row.FeatureNames = names
	row.FeatureValues = make([]float64, len(names))
	for i, name := range names {
		row.FeatureValues[i] = a.Features[name]
	}
	return row
}

// Features rebuilds the feature map of a row.
func (r AssessmentRow) Features() map[string]float64 {
	out := make(map[string]float64, len(r.FeatureNames))
	for i, name := range r.FeatureNames {
		if i < len(r.FeatureValues) {
			out[name] = r.FeatureValues[i]
		}
	}
	return out
}

// Writer streams assessments to a Parquet file.
type Writer struct {
	writer *parquet.GenericWriter[AssessmentRow]
	count  int
}

// NewWriter writes zstd-compressed Parquet to w. The output is complete
// only after Close.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		writer: parquet.NewGenericWriter[AssessmentRow](w,
			parquet.Compression(&zstd.Codec{Level: zstd.SpeedDefault}),
			parquet.CreatedBy("epif", "1.0", ""),
		),
	}
}

func (w *Writer) Write(assessments []models.Assessment) (int, error) {
	rows := make([]AssessmentRow, len(assessments))
	for i, a := range assessments {
		rows[i] = NewAssessmentRow(a)
	}
	n, err := w.writer.Write(rows)
	w.count += n
	if err != nil {
		return n, fmt.Errorf("write parquet rows: %w", err)
	}
	return n, nil
}

// Close flushes the last row group and writes the footer.
func (w *Writer) Close() error {
	if err := w.writer.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

// Count returns the number of rows written so far.
func (w *Writer) Count() int {
	return w.count
}
