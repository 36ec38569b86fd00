// Command resonate runs the resonance pipeline end to end over a sample
// dream journal: ingest, anchor resolution, and constellation building.
package main

import (
	"context"
	"flag"
	"fmt"
	"hash/fnv"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/hack-pad/hackpadfs/mem"
	"go.uber.org/zap"

	"github.com/somnia-app/gosomnia/internal/engine"
	"github.com/somnia-app/gosomnia/internal/store"
	"github.com/somnia-app/gosomnia/pkg/analysis"
	"github.com/somnia-app/gosomnia/pkg/anchor"
	"github.com/somnia-app/gosomnia/pkg/vector"
)

const embeddingDim = 32

// hashEmbedder folds words into a fixed-dimension bag-of-words vector.
// Deterministic, so repeated runs produce identical scores. Stands in for
// a real embedding model.
type hashEmbedder struct{}

func (hashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, embeddingDim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'")
		if word == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[h.Sum32()%embeddingDim] += 1
	}
	return vec, nil
}

type sampleEntry struct {
	id      string
	daysAgo int
	text    string
}

var journal = []sampleEntry{
	{"riverbed", 2, "I walked along a dry riverbed under a full moon, the water long gone but the stones still wet."},
	{"flood", 5, "Water rose through the house and the moon reflected on the flood, calm despite everything."},
	{"teeth", 9, "My teeth crumbled one by one into my hands while a mirror refused to show my face."},
	{"bridge", 12, "A rope bridge over dark water swayed as I crossed toward a door that kept receding."},
	{"lake", 20, "The moon sat low over a frozen lake and I could hear water moving under the ice."},
	{"office", 40, "Endless spreadsheet rows, a meeting that never started, fluorescent light."},
	{"falling", 70, "Falling through clouds toward water that never arrived, the moon spinning above."},
}

func main() {
	dsn := flag.String("dsn", ":memory:", "sqlite data source name")
	uid := flag.String("uid", "dreamer", "journal owner")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	st, err := store.NewSQLiteStoreWithDSN(*dsn)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	fs, err := mem.NewFS()
	if err != nil {
		log.Fatalf("index fs: %v", err)
	}
	idx, err := vector.NewIndex(fs, "index.bin")
	if err != nil {
		log.Fatalf("index: %v", err)
	}

	eng := engine.New(st, hashEmbedder{}, engine.Config{
		Logger: logger,
		Index:  idx,
	})

	ctx := context.Background()
	now := time.Now().UTC()

	for _, s := range journal {
		_, err := eng.IngestEntry(ctx, engine.EntryInput{
			ID:        s.id,
			UID:       *uid,
			CreatedAt: now.AddDate(0, 0, -s.daysAgo),
			Text:      s.text,
		})
		if err != nil {
			log.Fatalf("ingest %s: %v", s.id, err)
		}
	}

	anchorText := "Tonight the moon was bright over the water near the old bridge."
	anchorVec, err := hashEmbedder{}.Embed(ctx, anchorText)
	if err != nil {
		log.Fatalf("embed anchor: %v", err)
	}

	for _, period := range []anchor.Period{anchor.PeriodDay, anchor.PeriodWeek, anchor.PeriodMonth} {
		key := anchor.New(*uid, period, time.UTC, now)
		result, err := eng.Resolve(ctx, key, anchorVec)
		if err != nil {
			log.Fatalf("resolve %s: %v", key.String(), err)
		}

		fmt.Printf("\n%s\n", key.String())
		fmt.Printf("  candidates=%d threshold=%.3f top=%.3f\n",
			result.Candidates, result.Threshold, result.TopScore)
		for _, h := range result.Hits {
			fmt.Printf("  hit %-10s score=%.3f cosine=%.3f age=%.1fd\n",
				h.EntryID, h.DecayedScore, h.RawCosine, h.AgeDays)
		}
	}

	key := anchor.New(*uid, anchor.PeriodMonth, time.UTC, now)
	g, err := eng.Constellation(ctx, key, anchorVec)
	if err != nil {
		log.Fatalf("constellation: %v", err)
	}

	fmt.Printf("\nconstellation for %s\n", key.String())
	fmt.Printf("  nodes=%d edges=%d avg_degree=%.2f orphans=%d\n",
		g.NodeCount(), g.EdgeCount(), g.AverageDegree(), len(g.OrphanNodes()))

	edges := make([]string, 0, len(g.Edges))
	for _, e := range g.Edges {
		edges = append(edges, fmt.Sprintf("  edge %s -- %s weight=%.3f", e.A, e.B, e.Weight))
	}
	sort.Strings(edges)
	for _, line := range edges {
		fmt.Println(line)
	}

	journalEntries := make([]analysis.JournalEntry, 0, len(journal))
	for i := len(journal) - 1; i >= 0; i-- {
		// oldest first
		s := journal[i]
		en, err := st.GetEntry(s.id)
		if err != nil || en == nil {
			log.Fatalf("load %s: %v", s.id, err)
		}
		journalEntries = append(journalEntries, analysis.JournalEntry{
			ID:      en.ID,
			Text:    en.Text,
			Symbols: en.Symbols,
		})
	}

	metrics := analysis.NewAnalyzer(g).AnalyzeJournal(journalEntries)
	fmt.Println("\njournal metrics")
	fmt.Printf("  entries=%d words=%d continuity=%.1f\n",
		metrics.Entries, metrics.TotalWords, metrics.ContinuityScore)

	related, err := eng.Related(ctx, *uid, anchorVec, 3)
	if err != nil {
		log.Fatalf("related: %v", err)
	}
	fmt.Println("\nrelated entries")
	for _, r := range related {
		fmt.Printf("  %-10s similarity=%.3f\n", r.EntryID, r.Similarity)
	}
}
