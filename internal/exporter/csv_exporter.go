package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"ideaboard/internal/ideas"
)

// SchemaVersion identifies the CSV export format version.
// This version should be incremented when adding new columns or changing the format.
const SchemaVersion = "1"

// csvColumns defines the column order for export.
var csvColumns = []string{
	"schemaVersion",
	"id",
	"title",
	"url",
	"content",
	"sourceSubreddit",
	"dateOfPost",
	"introduction",
	"implementationPlan",
	"marketAnalysis",
	"userComments",
	"innovation",
	"quality",
	"problemSignificance",
	"engagementScore",
	"overallScore",
	"reasoningBehindScore",
	"adviceForImprovement",
	"createdAt",
	"updatedAt",
}

// CSVExporter exports ideas to CSV format.
type CSVExporter struct{}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Export writes ideas to the given writer in CSV format.
func (e *CSVExporter) Export(w io.Writer, ideaList []ideas.Idea) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(csvColumns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, idea := range ideaList {
		if err := writer.Write(e.ideaToRow(idea)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return writer.Error()
}

// ideaToRow converts an idea to a CSV row following the column order.
func (e *CSVExporter) ideaToRow(idea ideas.Idea) []string {
	row := make([]string, len(csvColumns))

	row[0] = SchemaVersion
	row[1] = idea.ID.String()
	row[2] = idea.Title
	row[3] = idea.URL
	row[4] = idea.Content
	row[5] = idea.SourceSubreddit
	row[6] = idea.DateOfPost
	row[7] = idea.Introduction
	row[8] = idea.ImplementationPlan
	row[9] = idea.MarketAnalysis
	row[10] = idea.UserComments
	row[11] = formatOptionalInt(idea.Innovation)
	row[12] = formatOptionalInt(idea.Quality)
	row[13] = formatOptionalInt(idea.ProblemSignificance)
	row[14] = formatOptionalInt(idea.EngagementScore)
	row[15] = formatOptionalFloat(idea.OverallScore())
	row[16] = idea.ReasoningBehindScore
	row[17] = idea.AdviceForImprovement
	row[18] = formatTime(idea.CreatedAt)
	row[19] = formatTime(idea.UpdatedAt)

	return row
}

// formatOptionalInt formats an optional integer pointer to a string.
func formatOptionalInt(value *int) string {
	if value == nil {
		return ""
	}
	return strconv.Itoa(*value)
}

// formatOptionalFloat formats an optional float pointer to a string.
func formatOptionalFloat(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', 2, 64)
}

// formatTime formats a time to RFC3339 string.
func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Format(time.RFC3339)
}
