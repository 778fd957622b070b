package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/jsonfeed-views/app/database"
	"github.com/lysyi3m/jsonfeed-views/app/source"
)

// Importer bundles what an import needs besides the source itself.
type Importer struct {
	Fetcher    *Fetcher
	Parser     *source.Parser
	Filterer   *source.Filterer
	Extractor  *source.ContentExtractor
	NodeRepo   database.NodeRepository
	SourceRepo database.SourceRepository
}

type ImportSourceTask struct {
	Task
	Config   *source.Config
	importer *Importer
}

func NewImportSourceTask(config *source.Config, importer *Importer) *ImportSourceTask {
	return &ImportSourceTask{
		Task:     NewTask(TaskTypeImportSource, config.Name),
		Config:   config,
		importer: importer,
	}
}

func (t *ImportSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	settings := t.Config.Settings

	data, err := t.importer.Fetcher.Fetch(ctx, t.Config.URL, settings.TimeoutDuration(), "")
	if err != nil {
		return fmt.Errorf("failed to fetch source: %w", err)
	}

	metadata, entries, err := t.importer.Parser.Run(data)
	if err != nil {
		return fmt.Errorf("failed to parse source: %w", err)
	}

	if settings.MaxItems > 0 && len(entries) > settings.MaxItems {
		entries = entries[:settings.MaxItems]
	}

	fresh := make([]source.Entry, 0, len(entries))
	duplicateCount := 0
	for _, entry := range entries {
		isDuplicate, err := t.importer.NodeRepo.CheckDuplicate(t.SourceName, entry.ContentHash)
		if err != nil {
			return fmt.Errorf("failed to check for duplicates: %w", err)
		}
		if isDuplicate {
			duplicateCount++
			continue
		}
		fresh = append(fresh, entry)
	}

	filteredCount := 0
	newCount := 0
	for _, entry := range t.importer.Filterer.Run(fresh, t.Config) {
		if entry.IsFiltered {
			filteredCount++
			slog.Debug("Entry filtered", "source", t.SourceName, "guid", entry.GUID, "reason", entry.FilterReason)
			continue
		}

		if settings.ExtractContent && !entry.HasContent && entry.Link != "" {
			entry = t.extractContent(ctx, entry)
		}

		if err := t.importer.NodeRepo.UpsertNode(toNode(t.SourceName, entry)); err != nil {
			return fmt.Errorf("failed to store entry %s: %w", entry.GUID, err)
		}
		newCount++
	}

	nextFetch := time.Now().UTC().Add(settings.RefreshDuration())
	if err := t.importer.SourceRepo.UpdateSourceMetadata(t.SourceName, metadata.Title, nextFetch); err != nil {
		return fmt.Errorf("failed to update source metadata: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"total", len(entries),
		"duplicates", duplicateCount,
		"filtered", filteredCount,
		"new", newCount)

	return nil
}

// extractContent replaces a description-only body with the readable part of
// the linked page. Failures keep the entry as parsed.
func (t *ImportSourceTask) extractContent(ctx context.Context, entry source.Entry) source.Entry {
	data, err := t.importer.Fetcher.Fetch(ctx, entry.Link, t.Config.Settings.TimeoutDuration(), "text/html")
	if err != nil {
		slog.Warn("Failed to fetch article", "source", t.SourceName, "url", entry.Link, "error", err)
		return entry
	}

	extracted, err := t.importer.Extractor.Run(data, entry.Link)
	if err != nil {
		slog.Warn("Failed to extract content", "source", t.SourceName, "url", entry.Link, "error", err)
		return entry
	}

	entry.Body = extracted.HTML
	entry.HasContent = true
	if entry.Summary == "" {
		entry.Summary = source.Summarize(extracted.Text)
	}
	return entry
}

func toNode(sourceName string, entry source.Entry) database.Node {
	return database.Node{
		Source:      sourceName,
		GUID:        entry.GUID,
		Title:       entry.Title,
		Path:        entry.Link,
		Body:        entry.Body,
		Summary:     entry.Summary,
		Image:       entry.Image,
		AuthorName:  entry.AuthorName,
		ContentHash: entry.ContentHash,
		CreatedAt:   entry.PublishedAt,
		ChangedAt:   entry.UpdatedAt,
	}
}
