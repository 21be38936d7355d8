package services

import (
	"context"
	"reflect"
	"testing"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/owenshen0907/NihonGO/internal/domain"
	"github.com/owenshen0907/NihonGO/internal/platform/logger"
)

func svcLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestSplitWordTerms(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"食べる", []string{"食べる"}},
		{"出る・出す", []string{"出る", "出す"}},
		{"出る・ ・出す", []string{"出る", "出す"}},
		{"・出る・", []string{"出る"}},
	}
	for _, c := range cases {
		if got := splitWordTerms(c.in); !reflect.DeepEqual(got, c.want) {
			t.Fatalf("splitWordTerms(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

type fakeWordRepo struct {
	words []*domain.Word
}

func (f *fakeWordRepo) FindByKanji(_ context.Context, _ *gorm.DB, terms []string) (*domain.Word, error) {
	for _, w := range f.words {
		for _, term := range terms {
			if w.Kanji == term {
				return w, nil
			}
		}
	}
	return nil, nil
}
func (f *fakeWordRepo) Create(_ context.Context, _ *gorm.DB, rows []*domain.Word) error {
	f.words = append(f.words, rows...)
	return nil
}
func (f *fakeWordRepo) UpdateExtension(context.Context, *gorm.DB, string, datatypes.JSON) error {
	return nil
}

type fakeWordReportRepo struct {
	rows []*domain.WordReport
}

func (f *fakeWordReportRepo) GetByID(_ context.Context, _ *gorm.DB, userID, id string) (*domain.WordReport, error) {
	for _, r := range f.rows {
		if r.UserID == userID && r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}
func (f *fakeWordReportRepo) FindByKanji(_ context.Context, _ *gorm.DB, userID string, terms []string) (*domain.WordReport, error) {
	for _, r := range f.rows {
		if r.UserID != userID {
			continue
		}
		for _, term := range terms {
			if r.Kanji == term {
				return r, nil
			}
		}
	}
	return nil, nil
}
func (f *fakeWordReportRepo) Insert(_ context.Context, _ *gorm.DB, row *domain.WordReport) (*domain.WordReport, error) {
	for _, r := range f.rows {
		if r.UserID == row.UserID && r.ID == row.ID {
			return r, nil
		}
	}
	f.rows = append(f.rows, row)
	return row, nil
}
func (f *fakeWordReportRepo) ListByUser(_ context.Context, _ *gorm.DB, userID string) ([]*domain.WordReport, error) {
	var out []*domain.WordReport
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}
func (f *fakeWordReportRepo) AdjustCounter(context.Context, *gorm.DB, string, string, domain.Dimension, int, string) error {
	return nil
}
func (f *fakeWordReportRepo) UpdateExtension(context.Context, *gorm.DB, string, string, datatypes.JSON) error {
	return nil
}

func newWordTestService(t *testing.T, wordRepo *fakeWordRepo, reportRepo *fakeWordReportRepo) *notesService {
	t.Helper()
	return &notesService{
		log:            svcLogger(t),
		wordRepo:       wordRepo,
		wordReportRepo: reportRepo,
	}
}

func TestResolveWordPrefersExistingReport(t *testing.T) {
	reports := &fakeWordReportRepo{rows: []*domain.WordReport{
		{UserID: "alice", ID: "W001", Kanji: "食べる", Listening: 3},
	}}
	s := newWordTestService(t, &fakeWordRepo{}, reports)

	got, err := s.resolveWord(context.Background(), "alice", WordNote{Word: "食べる"})
	if err != nil {
		t.Fatalf("resolveWord: %v", err)
	}
	if got.ID != "W001" || got.Listening != 3 {
		t.Fatalf("existing report not returned: %+v", got)
	}
	if len(reports.rows) != 1 {
		t.Fatalf("no insert expected")
	}
}

func TestResolveWordAdoptsCorpusRow(t *testing.T) {
	words := &fakeWordRepo{words: []*domain.Word{
		{ID: "W777", Kana: "でる", Kanji: "出る", Romaji: "deru", Level: 2, Translation: "出去"},
	}}
	reports := &fakeWordReportRepo{}
	s := newWordTestService(t, words, reports)

	got, err := s.resolveWord(context.Background(), "alice", WordNote{Word: "出る・出す", Meaning: "出"})
	if err != nil {
		t.Fatalf("resolveWord: %v", err)
	}
	if got.ID != "W777" || got.Kana != "でる" || got.Level != 2 {
		t.Fatalf("corpus fields not carried: %+v", got)
	}
	if got.Listening != 0 || got.Reading != 0 {
		t.Fatalf("counters must start at zero: %+v", got)
	}
}

func TestResolveWordMintsWhenUnknown(t *testing.T) {
	reports := &fakeWordReportRepo{}
	s := newWordTestService(t, &fakeWordRepo{}, reports)

	got, err := s.resolveWord(context.Background(), "alice", WordNote{Word: "ぴかぴか", Meaning: "闪亮"})
	if err != nil {
		t.Fatalf("resolveWord: %v", err)
	}
	if !domain.IsMintedID(got.ID) {
		t.Fatalf("unknown word must mint, got id %q", got.ID)
	}
	if got.Kana != "ぴかぴか" || got.Kanji != "ぴかぴか" || got.Translation != "闪亮" || got.Level != 1 {
		t.Fatalf("minted defaults: %+v", got)
	}

	// The same word resolves to the same row afterwards.
	again, err := s.resolveWord(context.Background(), "alice", WordNote{Word: "ぴかぴか", Meaning: "闪亮"})
	if err != nil {
		t.Fatalf("second resolveWord: %v", err)
	}
	if again.ID != got.ID {
		t.Fatalf("minted word not reused: %q vs %q", again.ID, got.ID)
	}
}
