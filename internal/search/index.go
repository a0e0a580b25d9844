package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	chromem "github.com/philippgille/chromem-go"

	"github.com/ziadkadry99/cyanguide/internal/guide"
	"github.com/ziadkadry99/cyanguide/internal/progress"
)

const collectionName = "guide"

// Document metadata keys. A cached vector is reused only when both match.
const (
	metaEmbedder = "embedder"
	metaDigest   = "digest"
)

// Index is an in-memory semantic index over guide sections, one document
// per section.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	cache      *chromem.Collection // loaded by Load, consumed by Build
	embedFunc  chromem.EmbeddingFunc
	embedder   Embedder
	reporter   progress.Reporter
}

// NewIndex creates an empty index that embeds with e.
func NewIndex(e Embedder) (*Index, error) {
	db := chromem.NewDB()
	ef := ToChromemFunc(e)

	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &Index{db: db, collection: col, embedFunc: ef, embedder: e, reporter: progress.Nop{}}, nil
}

// SetReporter reports Build progress to r.
func (x *Index) SetReporter(r progress.Reporter) {
	x.reporter = r
}

// Build makes the index hold exactly the sections of g. Vectors from a
// loaded cache or an earlier Build are reused when they were made by the same
// embedder from the same text; every other section is embedded again.
func (x *Index) Build(ctx context.Context, g *guide.Guide) error {
	prev := x.cache
	if prev == nil {
		prev = x.collection
	}
	name := x.embedder.Name()

	var docs []chromem.Document
	fresh := 0
	g.Walk(func(s *guide.Section, _ int) bool {
		content := sectionText(s)
		doc := chromem.Document{
			ID:      s.ID,
			Content: content,
			Metadata: map[string]string{
				"title":      s.Title,
				"path":       g.Path(s.ID),
				metaEmbedder: name,
				metaDigest:   digest(content),
			},
		}
		if old, err := prev.GetByID(ctx, s.ID); err == nil && reusable(old, doc) {
			doc.Embedding = old.Embedding
		} else {
			fresh++
		}
		docs = append(docs, doc)
		return true
	})

	if err := x.db.DeleteCollection(collectionName); err != nil {
		return fmt.Errorf("reset collection: %w", err)
	}
	col, err := x.db.CreateCollection(collectionName, nil, x.embedFunc)
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	x.collection = col
	x.cache = nil

	if fresh > 0 {
		x.reporter.Start(fresh)
		defer x.reporter.Finish()
	}
	done := 0
	for _, doc := range docs {
		embedded := len(doc.Embedding) == 0
		if err := x.collection.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("indexing %s with %s: %w", doc.ID, name, err)
		}
		if embedded {
			done++
			x.reporter.Update(done, doc.Metadata["title"])
		}
	}
	return nil
}

func reusable(old, doc chromem.Document) bool {
	return len(old.Embedding) > 0 &&
		old.Metadata[metaEmbedder] == doc.Metadata[metaEmbedder] &&
		old.Metadata[metaDigest] == doc.Metadata[metaDigest]
}

func digest(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Search returns up to limit sections closest to query.
func (x *Index) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 5
	}

	// chromem-go requires nResults <= collection size.
	count := x.collection.Count()
	if count == 0 {
		return nil, nil
	}
	limit = min(limit, count)

	docs, err := x.collection.Query(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	terms := Tokenize(query)
	results := make([]Result, len(docs))
	for i, d := range docs {
		results[i] = Result{
			ID:      d.ID,
			Title:   d.Metadata["title"],
			Path:    d.Metadata["path"],
			Snippet: Snippet(bodyOf(d.Content), terms),
			Score:   d.Similarity,
		}
	}
	return results, nil
}

// Count returns the number of indexed sections.
func (x *Index) Count() int {
	return x.collection.Count()
}

// Persist writes the index to a gzip-compressed file so later runs can skip
// embedding.
func (x *Index) Persist(path string) error {
	if err := x.db.ExportToFile(path, true, ""); err != nil {
		return fmt.Errorf("export index to %s: %w", path, err)
	}
	return nil
}

// Load reads an index written by Persist as a cache for the next Build.
// Nothing is searchable from it until Build has checked every vector
// against the current embedder and guide text. A missing file is not an
// error.
func (x *Index) Load(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	db := chromem.NewDB()
	if err := db.ImportFromFile(path, ""); err != nil {
		return fmt.Errorf("import index from %s: %w", path, err)
	}
	col := db.GetCollection(collectionName, x.embedFunc)
	if col == nil {
		return fmt.Errorf("collection %q not found in %s", collectionName, path)
	}
	x.cache = col
	return nil
}

// bodyOf strips the title line sectionText prepends.
func bodyOf(content string) string {
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\n' && content[i+1] == '\n' {
			return content[i+2:]
		}
	}
	return content
}
