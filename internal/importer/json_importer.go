package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"ideaboard/internal/ideas"
)

// IdeaStore is the subset of the ideas service the importer needs.
type IdeaStore interface {
	Upsert(ctx context.Context, input ideas.UpsertInput) (ideas.Idea, error)
	AttachDetails(ctx context.Context, id uuid.UUID, details ideas.DetailsInput) (ideas.Idea, error)
}

var ErrInvalidUpload = errors.New("invalid json upload")

// MaxImportRecords limits the number of records processed per upload to
// prevent excessive memory usage and long-running requests.
const MaxImportRecords = 1000

// MaxFailedRecords caps the number of failed/skipped records stored in the
// summary to avoid unbounded memory growth from malformed uploads.
const MaxFailedRecords = 100

// Record is one entry of the analysis pipeline's merged output file.
type Record struct {
	Title           string `json:"title"`
	URL             string `json:"url"`
	Content         string `json:"content"`
	SourceSubreddit string `json:"source_subreddit"`
	DateOfPost      string `json:"date_of_post"`

	Introduction         *string `json:"introduction"`
	ImplementationPlan   *string `json:"implementation_plan"`
	MarketAnalysis       *string `json:"market_analysis"`
	UserComments         *string `json:"user_comments"`
	Innovation           *int    `json:"innovation"`
	Quality              *int    `json:"quality"`
	ProblemSignificance  *int    `json:"problem_significance"`
	EngagementScore      *int    `json:"engagement_score"`
	ReasoningBehindScore *string `json:"reasoning_behind_score"`
	AdviceForImprovement *string `json:"advice_for_improvement"`
}

type Summary struct {
	TotalRecords      int             `json:"totalRecords"`
	Imported          int             `json:"imported"`
	Analyzed          int             `json:"analyzed"`
	SkippedDuplicates []SkippedRecord `json:"skippedDuplicates"`
	Failed            []FailedRecord  `json:"failed"`
	TruncatedRecords  bool            `json:"truncatedRecords,omitempty"`
}

type SkippedRecord struct {
	Index  int    `json:"index"`
	Title  string `json:"title,omitempty"`
	URL    string `json:"url,omitempty"`
	Reason string `json:"reason"`
}

type FailedRecord struct {
	Index int    `json:"index"`
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error"`
}

// JSONImporter loads pipeline output files into the idea catalog.
type JSONImporter struct {
	ideas IdeaStore
}

func NewJSONImporter(ideas IdeaStore) *JSONImporter {
	return &JSONImporter{ideas: ideas}
}

// Import reads a JSON array of pipeline records, upserting each idea and
// attaching analysis details when the record carries them. Records sharing a
// URL with an earlier record in the same upload are skipped so the first
// occurrence wins.
func (i *JSONImporter) Import(ctx context.Context, reader io.Reader) (Summary, error) {
	if i.ideas == nil {
		return Summary{}, fmt.Errorf("%w: idea store is not configured", ErrInvalidUpload)
	}

	var records []Record
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return Summary{}, fmt.Errorf("%w: file is empty", ErrInvalidUpload)
		}
		return Summary{}, fmt.Errorf("%w: expected a JSON array of records", ErrInvalidUpload)
	}
	if len(records) > MaxImportRecords {
		return Summary{}, fmt.Errorf("%w: upload exceeds maximum of %d records", ErrInvalidUpload, MaxImportRecords)
	}

	summary := Summary{TotalRecords: len(records)}
	seenURLs := make(map[string]struct{}, len(records))

	for idx, record := range records {
		url := strings.TrimSpace(record.URL)
		if _, dup := seenURLs[strings.ToLower(url)]; dup && url != "" {
			if len(summary.SkippedDuplicates) < MaxFailedRecords {
				summary.SkippedDuplicates = append(summary.SkippedDuplicates, SkippedRecord{
					Index:  idx,
					Title:  record.Title,
					URL:    url,
					Reason: "duplicate url",
				})
			} else {
				summary.TruncatedRecords = true
			}
			continue
		}

		idea, err := i.ideas.Upsert(ctx, ideas.UpsertInput{
			Title:           record.Title,
			URL:             url,
			Content:         record.Content,
			SourceSubreddit: record.SourceSubreddit,
			DateOfPost:      record.DateOfPost,
		})
		if err != nil {
			if len(summary.Failed) < MaxFailedRecords {
				summary.Failed = append(summary.Failed, FailedRecord{
					Index: idx,
					Title: record.Title,
					URL:   url,
					Error: err.Error(),
				})
			} else {
				summary.TruncatedRecords = true
			}
			continue
		}

		seenURLs[strings.ToLower(url)] = struct{}{}
		summary.Imported++

		if !record.hasDetails() {
			continue
		}

		if _, err := i.ideas.AttachDetails(ctx, idea.ID, ideas.DetailsInput{
			Introduction:         record.Introduction,
			ImplementationPlan:   record.ImplementationPlan,
			MarketAnalysis:       record.MarketAnalysis,
			UserComments:         record.UserComments,
			Innovation:           record.Innovation,
			Quality:              record.Quality,
			ProblemSignificance:  record.ProblemSignificance,
			EngagementScore:      record.EngagementScore,
			ReasoningBehindScore: record.ReasoningBehindScore,
			AdviceForImprovement: record.AdviceForImprovement,
		}); err != nil {
			if len(summary.Failed) < MaxFailedRecords {
				summary.Failed = append(summary.Failed, FailedRecord{
					Index: idx,
					Title: record.Title,
					URL:   url,
					Error: err.Error(),
				})
			} else {
				summary.TruncatedRecords = true
			}
			continue
		}
		summary.Analyzed++
	}

	return summary, nil
}

func (r Record) hasDetails() bool {
	for _, field := range []*string{
		r.Introduction,
		r.ImplementationPlan,
		r.MarketAnalysis,
		r.UserComments,
		r.ReasoningBehindScore,
		r.AdviceForImprovement,
	} {
		if field != nil {
			return true
		}
	}
	for _, score := range []*int{r.Innovation, r.Quality, r.ProblemSignificance, r.EngagementScore} {
		if score != nil {
			return true
		}
	}
	return false
}
