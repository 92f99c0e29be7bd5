package artifact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"meetscribe/internal/chunkwriter"
	"meetscribe/internal/config"
	"meetscribe/internal/document"
	"meetscribe/internal/fileutil"
	"meetscribe/internal/logging"
	"meetscribe/internal/media"
	"meetscribe/internal/services"
	"meetscribe/internal/textutil"
	"meetscribe/internal/transcript"
)

// ErrVideoUnavailable marks items whose archive entry has no video in a
// preferred format. Such items only ever produce a placeholder document.
var ErrVideoUnavailable = errors.New("video unavailable")

const defaultVideoExt = ".mp4"

// Identity is the resolved identity of an archive item: its display metadata
// plus the archive file chosen as the source video.
type Identity struct {
	media.Metadata
	FileName string `json:"file_name"`
	Missing  bool   `json:"missing"`
}

// Recorder persists resolved identities so later runs skip resolution.
type Recorder interface {
	RecordIdentity(ctx context.Context, identifier string, identity Identity) error
}

// Pipeline holds the collaborators and settings shared by every item of a series.
type Pipeline struct {
	Roots            Roots
	Resolver         media.Resolver
	Extractor        media.AudioExtractor
	Transcriber      media.Transcriber
	Formats          []string
	FileIdentifier   string
	MaxDocumentBytes int
	Recorder         Recorder
	Logger           *slog.Logger
}

// Item is one archive recording and its derivation graph. Each artifact is
// computed at most once and trusted on presence afterwards.
type Item struct {
	identifier string
	pipeline   *Pipeline
	identity   *Identity
}

// NewItem binds identifier to the pipeline. A non-nil known identity (typically
// loaded from the catalog) skips resolution.
func (p *Pipeline) NewItem(identifier string, known *Identity) *Item {
	item := &Item{identifier: identifier, pipeline: p}
	if known != nil {
		cp := *known
		item.identity = &cp
	}
	return item
}

// Identifier returns the archive identifier.
func (it *Item) Identifier() string { return it.identifier }

// Identity returns the resolved identity, if resolution has happened.
func (it *Item) Identity() (Identity, bool) {
	if it.identity == nil {
		return Identity{}, false
	}
	return *it.identity, true
}

// Resolve fetches metadata and the preferred source file once. An item without
// a preferred-format file is marked missing and its placeholder document is
// written immediately.
func (it *Item) Resolve(ctx context.Context) (Identity, error) {
	if it.identity != nil {
		return *it.identity, nil
	}
	ctx = services.WithStage(services.WithIdentifier(ctx, it.identifier), "resolve")
	logger := it.logger(ctx)
	resolver := it.pipeline.Resolver

	meta, err := resolver.Metadata(ctx, it.identifier)
	if err != nil {
		return Identity{}, services.Wrap(services.ErrTransient, "resolve", "metadata", it.identifier, err)
	}
	identity := Identity{Metadata: meta}

	name, err := resolver.PreferredFile(ctx, it.identifier, it.pipeline.Formats)
	switch {
	case errors.Is(err, media.ErrNoPreferredFile):
		identity.Missing = true
	case err != nil:
		return Identity{}, services.Wrap(services.ErrTransient, "resolve", "preferred file", it.identifier, err)
	default:
		identity.FileName = name
	}

	it.identity = &identity
	if identity.Missing {
		if err := it.writePlaceholder(ctx); err != nil {
			it.identity = nil
			return Identity{}, err
		}
	}
	if rec := it.pipeline.Recorder; rec != nil {
		if err := rec.RecordIdentity(ctx, it.identifier, identity); err != nil {
			return Identity{}, fmt.Errorf("record identity: %w", err)
		}
	}
	logger.Debug("item resolved",
		logging.String("title", identity.Title),
		logging.String("date", identity.Date),
		logging.String("file_name", identity.FileName),
		logging.Bool("missing", identity.Missing),
	)
	return identity, nil
}

// BaseName is the file stem shared by all artifacts of the item.
func (it *Item) BaseName() (string, error) {
	if it.identity == nil {
		return "", fmt.Errorf("item %s: identity not resolved", it.identifier)
	}
	return it.baseName(*it.identity), nil
}

func (it *Item) baseName(identity Identity) string {
	if it.pipeline.FileIdentifier != config.FileIdentifierIdentifier {
		if name := textutil.SanitizeFileName(identity.Title); name != "" {
			return name
		}
	}
	if name := textutil.SanitizeFileName(it.identifier); name != "" {
		return name
	}
	return "item"
}

// Paths returns the artifact locations, resolving the item if needed.
func (it *Item) Paths(ctx context.Context) (Paths, error) {
	identity, err := it.Resolve(ctx)
	if err != nil {
		return Paths{}, err
	}
	return it.paths(identity), nil
}

func (it *Item) paths(identity Identity) Paths {
	ext := defaultVideoExt
	if e := filepath.Ext(identity.FileName); e != "" {
		ext = e
	}
	return it.pipeline.Roots.paths(it.baseName(identity), ext)
}

// Ensure guarantees the artifact of the given kind exists and returns its path,
// computing only the missing tail of video → audio → segments → document. For
// KindDocument the returned path is the unsuffixed stem; see DocumentFiles.
func (it *Item) Ensure(ctx context.Context, kind Kind) (string, error) {
	ctx = services.WithIdentifier(ctx, it.identifier)
	identity, err := it.Resolve(ctx)
	if err != nil {
		return "", err
	}
	paths := it.paths(identity)
	ctx = services.WithStage(ctx, kind.String())

	switch kind {
	case KindVideo:
		return it.ensureVideo(ctx, identity, paths)
	case KindAudio:
		return it.ensureAudio(ctx, identity, paths)
	case KindSegments:
		return it.ensureSegments(ctx, identity, paths)
	case KindDocument:
		return it.ensureDocument(ctx, identity, paths)
	default:
		return "", fmt.Errorf("ensure: unsupported kind %v", kind)
	}
}

func (it *Item) ensureVideo(ctx context.Context, identity Identity, paths Paths) (string, error) {
	if fileutil.Exists(paths.Video) {
		return paths.Video, nil
	}
	if identity.Missing {
		return "", services.Wrap(services.ErrNotFound, "video", "download", it.identifier, ErrVideoUnavailable)
	}
	logger := it.logger(ctx)
	logger.Info("downloading video", logging.String("file_name", identity.FileName), logging.String("video_file", paths.Video))
	if err := it.pipeline.Resolver.Download(ctx, it.identifier, identity.FileName, paths.Video); err != nil {
		return "", services.Wrap(services.ErrTransient, "video", "download", identity.FileName, err)
	}
	return paths.Video, nil
}

func (it *Item) ensureAudio(ctx context.Context, identity Identity, paths Paths) (string, error) {
	if fileutil.Exists(paths.Audio) {
		return paths.Audio, nil
	}
	video, err := it.ensureVideo(services.WithStage(ctx, KindVideo.String()), identity, paths)
	if err != nil {
		return "", err
	}
	it.logger(ctx).Info("extracting audio", logging.String("audio_file", paths.Audio))
	if err := it.pipeline.Extractor.Extract(ctx, video, paths.Audio); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "audio", "extract", filepath.Base(video), err)
	}
	return paths.Audio, nil
}

func (it *Item) ensureSegments(ctx context.Context, identity Identity, paths Paths) (string, error) {
	if fileutil.Exists(paths.Segments) {
		return paths.Segments, nil
	}
	audio, err := it.ensureAudio(services.WithStage(ctx, KindAudio.String()), identity, paths)
	if err != nil {
		return "", err
	}
	logger := it.logger(ctx)
	logger.Info("transcribing audio", logging.String("audio_file", audio))
	spans, err := it.pipeline.Transcriber.Transcribe(ctx, audio)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "segments", "transcribe", filepath.Base(audio), err)
	}
	segments := make([]transcript.Segment, 0, len(spans))
	for _, span := range spans {
		segments = append(segments, transcript.New(identity.URL, span.Start, span.End, strings.TrimSpace(span.Text)))
	}
	if err := transcript.WriteFile(paths.Segments, segments); err != nil {
		return "", services.Wrap(services.ErrTransient, "segments", "persist", filepath.Base(paths.Segments), err)
	}
	logger.Info("transcript saved", logging.Int("segment_count", len(segments)), logging.String("segment_file", paths.Segments))
	return paths.Segments, nil
}

func (it *Item) ensureDocument(ctx context.Context, identity Identity, paths Paths) (string, error) {
	if identity.Missing {
		if !fileutil.Exists(paths.Document) {
			if err := it.writePlaceholder(ctx); err != nil {
				return "", err
			}
		}
		return paths.Document, nil
	}
	if fileutil.Exists(chunkwriter.ChunkPath(paths.Document, 0)) {
		return paths.Document, nil
	}

	segPath, err := it.ensureSegments(services.WithStage(ctx, KindSegments.String()), identity, paths)
	if err != nil {
		return "", err
	}
	segments, err := transcript.ReadFile(segPath)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "document", "read segments", filepath.Base(segPath), err)
	}
	doc := document.Render(identity.Metadata, segments)
	maxBytes := it.pipeline.MaxDocumentBytes
	if maxBytes <= 0 {
		maxBytes = chunkwriter.DefaultMaxBytes
	}
	written, err := chunkwriter.Write(paths.Document, doc.Header, doc.Lines, maxBytes)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "document", "write", filepath.Base(paths.Document), err)
	}
	if err := removeStaleChunks(paths.Document, len(written)); err != nil {
		return "", services.Wrap(services.ErrTransient, "document", "cleanup", filepath.Base(paths.Document), err)
	}
	it.logger(ctx).Info("document written",
		logging.Int("chunk_count", len(written)),
		logging.Int("row_count", len(doc.Lines)),
		logging.String("document", paths.Document),
	)
	return paths.Document, nil
}

func (it *Item) writePlaceholder(ctx context.Context) error {
	paths := it.paths(*it.identity)
	if err := document.WritePlaceholder(paths.Document, it.identifier); err != nil {
		return services.Wrap(services.ErrTransient, "document", "placeholder", filepath.Base(paths.Document), err)
	}
	logging.Warn(it.logger(ctx), "no video in a preferred format", logging.Notice{
		Event:  "video_not_found",
		Hint:   "the item is recorded as missing and not retried; remove it from series_items in the state database to resolve it again",
		Impact: "item published as a placeholder without transcript",
	},
		logging.String("formats", strings.Join(it.pipeline.Formats, ",")),
		logging.String("document", paths.Document),
	)
	return nil
}

// DocumentFiles lists the published document files: the placeholder for a
// missing item, otherwise the numbered chunks in index order. A chunk set is
// only listed once chunk 0 exists, since chunks are published last-to-first.
func (it *Item) DocumentFiles() ([]string, error) {
	if it.identity == nil {
		return nil, nil
	}
	return it.documentFiles(it.paths(*it.identity))
}

func (it *Item) documentFiles(paths Paths) ([]string, error) {
	if it.identity.Missing {
		if fileutil.Exists(paths.Document) {
			return []string{paths.Document}, nil
		}
		return nil, nil
	}
	chunks, err := listChunks(paths.Document)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(chunks))
	for i, c := range chunks {
		if c.index != i {
			break
		}
		files = append(files, c.path)
	}
	return files, nil
}

type chunkFile struct {
	index int
	path  string
}

// listChunks returns every numbered chunk of document on disk, sorted by index.
func listChunks(document string) ([]chunkFile, error) {
	dir := filepath.Dir(document)
	ext := filepath.Ext(document)
	stem := strings.TrimSuffix(filepath.Base(document), ext)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list documents: %w", err)
	}
	var chunks []chunkFile
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || !strings.HasSuffix(name, ext) {
			continue
		}
		suffix, ok := strings.CutPrefix(strings.TrimSuffix(name, ext), stem+"_")
		if !ok {
			continue
		}
		index, err := strconv.Atoi(suffix)
		if err != nil || index < 0 || strconv.Itoa(index) != suffix {
			continue
		}
		chunks = append(chunks, chunkFile{index: index, path: filepath.Join(dir, name)})
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].index < chunks[j].index })
	return chunks, nil
}

// removeStaleChunks deletes chunks at or beyond keep left by an interrupted
// or larger earlier write.
func removeStaleChunks(document string, keep int) error {
	chunks, err := listChunks(document)
	if err != nil {
		return err
	}
	for _, c := range chunks {
		if c.index < keep {
			continue
		}
		if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove stale chunk: %w", err)
		}
	}
	return nil
}

// Status reports which artifacts exist without contacting any collaborator.
type Status struct {
	Resolved bool
	Missing  bool
	Video    bool
	Audio    bool
	Segments bool
	Document bool
	Chunks   int
}

// Status inspects the artifact directories. Unresolved items report only
// Resolved=false because their file names are not yet known.
func (it *Item) Status() Status {
	if it.identity == nil {
		return Status{}
	}
	paths := it.paths(*it.identity)
	files, _ := it.documentFiles(paths)
	st := Status{
		Resolved: true,
		Missing:  it.identity.Missing,
		Video:    fileutil.Exists(paths.Video),
		Audio:    fileutil.Exists(paths.Audio),
		Segments: fileutil.Exists(paths.Segments),
		Document: len(files) > 0,
	}
	if !st.Missing {
		st.Chunks = len(files)
	}
	return st
}

func (it *Item) logger(ctx context.Context) *slog.Logger {
	return logging.WithContext(ctx, logging.NewComponentLogger(it.pipeline.Logger, "artifact"))
}
