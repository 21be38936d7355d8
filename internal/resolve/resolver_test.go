package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/owenshen0907/NihonGO/internal/domain"
	"github.com/owenshen0907/NihonGO/internal/platform/logger"
)

type fakeEmbedder struct {
	vectors map[string][]float32
	failOn  map[string]error
	calls   int
}

func (f *fakeEmbedder) Embed(_ context.Context, input string) ([]float32, error) {
	f.calls++
	if err, ok := f.failOn[input]; ok {
		return nil, err
	}
	if v, ok := f.vectors[input]; ok {
		return v, nil
	}
	// Deterministic default so equal inputs embed equally.
	return []float32{float32(len(input)), 1, 0}, nil
}

type fakeCorpus struct {
	candidates []Candidate
	err        error
}

func (f *fakeCorpus) Nearest(context.Context, []float32, int) ([]Candidate, error) {
	return f.candidates, f.err
}

type fakeLedger struct {
	rows    []*domain.GrammarReport
	inserts int
}

func vecEqual(a, b pgvector.Vector) bool {
	as, bs := a.Slice(), b.Slice()
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func (f *fakeLedger) FindByIDOrEmbedding(_ context.Context, userID, id string, embedding pgvector.Vector) (*domain.GrammarReport, error) {
	for _, r := range f.rows {
		if r.UserID != userID {
			continue
		}
		if (id != "" && r.ID == id) || vecEqual(r.Embedding, embedding) {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeLedger) Insert(_ context.Context, row *domain.GrammarReport) (*domain.GrammarReport, error) {
	// Mirrors the repo contract: a key collision yields the existing row.
	for _, r := range f.rows {
		if r.UserID == row.UserID && r.ID == row.ID {
			return r, nil
		}
	}
	f.inserts++
	f.rows = append(f.rows, row)
	return row, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func newResolver(t *testing.T, emb *fakeEmbedder, corpus *fakeCorpus, ledger *fakeLedger) *Resolver {
	t.Helper()
	return NewResolver(emb, corpus, ledger, Config{}, testLogger(t))
}

func TestResolveAdoptsSingleCandidateUnderThreshold(t *testing.T) {
	ledger := &fakeLedger{}
	corpus := &fakeCorpus{candidates: []Candidate{
		{ID: "G042", Formula: "〜ないでください", Explanation: "不要做", Lesson: 7, Level: 2, Distance: 0.12},
		{ID: "G099", Formula: "まったく別", Distance: 0.80},
	}}
	r := newResolver(t, &fakeEmbedder{}, corpus, ledger)

	sub := Subject{Formula: "ないでください", Explanation: "请不要"}
	got, err := r.Resolve(context.Background(), "alice", sub)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.ID != "G042" {
		t.Fatalf("adopted id = %q, want G042", got.ID)
	}
	if got.Formula != "〜ないでください" || got.Lesson != 7 || got.Level != 2 {
		t.Fatalf("candidate fields not carried: %+v", got)
	}
	if got.Listening != 0 || got.Speaking != 0 || got.Writing != 0 || got.Reading != 0 {
		t.Fatalf("counters must start at zero: %+v", got)
	}
	// The stored embedding is the subject's, so the same note matches later.
	want, _ := (&fakeEmbedder{}).Embed(context.Background(), sub.EmbeddingInput())
	if !vecEqual(got.Embedding, pgvector.NewVector(want)) {
		t.Fatalf("stored embedding is not the input embedding")
	}
}

func TestResolveThresholdIsStrict(t *testing.T) {
	ledger := &fakeLedger{}
	corpus := &fakeCorpus{candidates: []Candidate{
		{ID: "G001", Formula: "〜てください", Distance: 0.35},
	}}
	r := newResolver(t, &fakeEmbedder{}, corpus, ledger)

	got, err := r.Resolve(context.Background(), "alice", Subject{Formula: "てください"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !domain.IsMintedID(got.ID) {
		t.Fatalf("distance == threshold must mint, got id %q", got.ID)
	}
}

func TestResolveTieBreakPrefersOverlapThenDistance(t *testing.T) {
	corpus := &fakeCorpus{candidates: []Candidate{
		{ID: "LOW_OVERLAP", Formula: "ことができます", Distance: 0.05},
		{ID: "HIGH_OVERLAP", Formula: "〜ないでください", Distance: 0.30},
		{ID: "HIGH_OVERLAP_FAR", Formula: "ないでください", Distance: 0.34},
	}}
	r := newResolver(t, &fakeEmbedder{}, corpus, &fakeLedger{})

	got, err := r.Resolve(context.Background(), "alice", Subject{Formula: "ないでください"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// Both HIGH_OVERLAP candidates clean to the same rune set, so the
	// overlap scores tie and the smaller distance wins.
	if got.ID != "HIGH_OVERLAP" {
		t.Fatalf("chosen id = %q, want HIGH_OVERLAP", got.ID)
	}
}

func TestResolveIsIdempotentForAdoptedRows(t *testing.T) {
	ledger := &fakeLedger{}
	corpus := &fakeCorpus{candidates: []Candidate{
		{ID: "G042", Formula: "〜ないでください", Distance: 0.12},
	}}
	r := newResolver(t, &fakeEmbedder{}, corpus, ledger)

	sub := Subject{Formula: "ないでください", Explanation: "请不要"}
	first, err := r.Resolve(context.Background(), "alice", sub)
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	second, err := r.Resolve(context.Background(), "alice", sub)
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if first != second {
		t.Fatalf("second resolve must return the stored row")
	}
	if ledger.inserts != 1 {
		t.Fatalf("inserts = %d, want 1", ledger.inserts)
	}
}

func TestResolveMintsAndDedupesByEmbedding(t *testing.T) {
	ledger := &fakeLedger{}
	r := newResolver(t, &fakeEmbedder{}, &fakeCorpus{}, ledger)

	sub := Subject{Formula: "〜てたまらない", Explanation: "非常に"}
	first, err := r.Resolve(context.Background(), "alice", sub)
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	if !strings.HasPrefix(first.ID, "EXP") {
		t.Fatalf("minted id %q lacks EXP prefix", first.ID)
	}
	if strings.Contains(first.ID, "-") {
		t.Fatalf("minted id %q contains dashes", first.ID)
	}
	if first.Lesson != 1 || first.Level != 1 {
		t.Fatalf("minted defaults: %+v", first)
	}

	// Same subject again: matched by embedding even though the id would differ.
	second, err := r.Resolve(context.Background(), "alice", sub)
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("minted row not reused: %q vs %q", second.ID, first.ID)
	}
	if ledger.inserts != 1 {
		t.Fatalf("inserts = %d, want 1", ledger.inserts)
	}

	// A different user gets their own row.
	other, err := r.Resolve(context.Background(), "bob", sub)
	if err != nil {
		t.Fatalf("bob Resolve: %v", err)
	}
	if other.ID == first.ID {
		t.Fatalf("users must not share minted rows")
	}
}

func TestResolveEmbeddingFailureIsRetryableAndWriteFree(t *testing.T) {
	sub := Subject{Formula: "〜ばかりか"}
	emb := &fakeEmbedder{failOn: map[string]error{
		sub.EmbeddingInput(): fmt.Errorf("upstream 503"),
	}}
	ledger := &fakeLedger{}
	r := newResolver(t, emb, &fakeCorpus{}, ledger)

	_, err := r.Resolve(context.Background(), "alice", sub)
	if !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Fatalf("err = %v, want ErrEmbeddingUnavailable", err)
	}
	if len(ledger.rows) != 0 {
		t.Fatalf("failed resolution must not write")
	}
}

func TestResolveEmbedTimeoutBounded(t *testing.T) {
	slow := &slowEmbedder{delay: 200 * time.Millisecond}
	r := NewResolver(slow, &fakeCorpus{}, &fakeLedger{}, Config{EmbedTimeout: 20 * time.Millisecond}, testLogger(t))

	start := time.Now()
	_, err := r.Resolve(context.Background(), "alice", Subject{Formula: "x"})
	if !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Fatalf("err = %v, want ErrEmbeddingUnavailable", err)
	}
	if time.Since(start) > 150*time.Millisecond {
		t.Fatalf("embed timeout not enforced")
	}
}

type slowEmbedder struct{ delay time.Duration }

func (s *slowEmbedder) Embed(ctx context.Context, _ string) ([]float32, error) {
	select {
	case <-time.After(s.delay):
		return []float32{1}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestResolveAllIsolatesFailures(t *testing.T) {
	bad := Subject{Formula: "壊れた"}
	emb := &fakeEmbedder{failOn: map[string]error{
		bad.EmbeddingInput(): fmt.Errorf("boom"),
	}}
	corpus := &fakeCorpus{candidates: []Candidate{
		{ID: "G001", Formula: "〜ながら", Distance: 0.10},
	}}
	r := newResolver(t, emb, corpus, &fakeLedger{})

	subjects := []Subject{
		{Formula: "ながら"},
		bad,
		{Formula: "ながらも"},
	}
	outcomes := r.ResolveAll(context.Background(), "alice", subjects)
	if len(outcomes) != 3 {
		t.Fatalf("outcomes = %d, want 3", len(outcomes))
	}
	if outcomes[0].Err != nil || outcomes[0].Report == nil {
		t.Fatalf("first subject should succeed: %+v", outcomes[0])
	}
	if !errors.Is(outcomes[1].Err, ErrEmbeddingUnavailable) {
		t.Fatalf("second subject err = %v", outcomes[1].Err)
	}
	if outcomes[2].Err != nil || outcomes[2].Report == nil {
		t.Fatalf("third subject should succeed despite sibling failure: %+v", outcomes[2])
	}
}

func TestResolveRejectsEmptySubject(t *testing.T) {
	r := newResolver(t, &fakeEmbedder{}, &fakeCorpus{}, &fakeLedger{})
	if _, err := r.Resolve(context.Background(), "alice", Subject{}); err == nil {
		t.Fatalf("empty subject must error")
	}
}

func TestMintIDShape(t *testing.T) {
	id := MintID()
	if !strings.HasPrefix(id, "EXP") {
		t.Fatalf("id %q lacks prefix", id)
	}
	if len(id) != 3+32 {
		t.Fatalf("id %q has unexpected length %d", id, len(id))
	}
	if id == MintID() {
		t.Fatalf("ids must be unique")
	}
}
