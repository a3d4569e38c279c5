package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/ekaya-inc/intelhub/pkg/apperrors"
	"github.com/ekaya-inc/intelhub/pkg/kvstore"
	"github.com/ekaya-inc/intelhub/pkg/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// countingStore records Set calls on top of a MemoryStore.
type countingStore struct {
	*kvstore.MemoryStore
	sets atomic.Int32
	fail bool
}

func (c *countingStore) Set(ctx context.Context, key string, value []byte) error {
	c.sets.Add(1)
	if c.fail {
		return errors.New("disk full")
	}
	return c.MemoryStore.Set(ctx, key, value)
}

func newTestStore(t *testing.T, kv kvstore.Store) *Store {
	t.Helper()
	var n int
	s := New(kv, zap.NewNop(),
		WithClock(func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("c%d", n) }),
	)
	t.Cleanup(s.Close)
	return s
}

func finding(id, competitor, siteType string, status models.FindingStatus) models.Finding {
	return models.Finding{
		ID:              id,
		Competitor:      competitor,
		Title:           "Title " + id,
		SiteType:        siteType,
		EngagementType:  "Content",
		OwnedEarned:     "Owned",
		ConfidenceScore: 80,
		Status:          status,
		DiscoveredAt:    "2026-03-14",
	}
}

func TestStore_AddCompetitor(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	s := newTestStore(t, kv)

	first, err := s.AddCompetitor("  Acme Corp ")
	require.NoError(t, err)
	second, err := s.AddCompetitor("Globex")
	require.NoError(t, err)

	assert.Equal(t, models.Competitor{ID: "c1", Name: "Acme Corp", DateAdded: "2026-03-14"}, first)
	assert.Equal(t, "c2", second.ID)
	assert.Equal(t, []models.Competitor{first, second}, s.Competitors())
	assert.Equal(t, []string{"Acme Corp", "Globex"}, s.CompetitorNames())

	s.Flush()
	stored, err := kvstore.Decode[[]models.Competitor](context.Background(), kv, kvstore.KeyCompetitors)
	require.NoError(t, err)
	assert.Equal(t, []models.Competitor{first, second}, stored)
}

func TestStore_AddCompetitor_RejectsBlankName(t *testing.T) {
	s := newTestStore(t, kvstore.NewMemoryStore())

	_, err := s.AddCompetitor("   ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Empty(t, s.Competitors())
}

func TestStore_RenameCompetitor(t *testing.T) {
	s := newTestStore(t, kvstore.NewMemoryStore())
	c, err := s.AddCompetitor("Acme")
	require.NoError(t, err)
	s.PrependFindings([]models.Finding{finding("f1", "Acme", "Blog", models.FindingStatusApproved)})

	renamed, err := s.RenameCompetitor(c.ID, "Acme Industries")
	require.NoError(t, err)
	assert.Equal(t, "Acme Industries", renamed.Name)
	assert.Equal(t, c.DateAdded, renamed.DateAdded)

	f, err := s.Finding("f1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", f.Competitor, "findings keep the denormalized name")

	_, err = s.RenameCompetitor("missing", "x")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = s.RenameCompetitor(c.ID, "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestStore_DeleteCompetitor_DoesNotCascade(t *testing.T) {
	s := newTestStore(t, kvstore.NewMemoryStore())
	acme, _ := s.AddCompetitor("Acme")
	globex, _ := s.AddCompetitor("Globex")
	s.PrependFindings([]models.Finding{finding("f1", "Acme", "Blog", models.FindingStatusApproved)})

	require.NoError(t, s.DeleteCompetitor(acme.ID))

	assert.Equal(t, []models.Competitor{globex}, s.Competitors())
	assert.Len(t, s.Findings(models.FindingFilter{}), 1)
	assert.ErrorIs(t, s.DeleteCompetitor(acme.ID), apperrors.ErrNotFound)
}

func TestStore_PrependFindings(t *testing.T) {
	kv := &countingStore{MemoryStore: kvstore.NewMemoryStore()}
	s := newTestStore(t, kv)

	s.PrependFindings([]models.Finding{finding("old", "Acme", "Blog", models.FindingStatusApproved)})
	s.PrependFindings([]models.Finding{
		finding("new1", "Globex", "News", models.FindingStatusFlagged),
		finding("new2", "Initech", "Social", models.FindingStatusApproved),
	})

	var ids []string
	for _, f := range s.Findings(models.FindingFilter{}) {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"new1", "new2", "old"}, ids)

	s.Flush()
	stored, err := kvstore.Decode[[]models.Finding](context.Background(), kv, kvstore.KeyFindings)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestStore_PrependFindings_EmptyBatchIsNoop(t *testing.T) {
	kv := &countingStore{MemoryStore: kvstore.NewMemoryStore()}
	s := newTestStore(t, kv)

	s.PrependFindings(nil)
	s.PrependFindings([]models.Finding{})
	s.Flush()

	assert.Zero(t, kv.sets.Load())
	assert.Empty(t, s.Findings(models.FindingFilter{}))
}

func TestStore_UpdateFindingStatus(t *testing.T) {
	tests := []struct {
		name    string
		from    models.FindingStatus
		to      models.FindingStatus
		wantErr error
	}{
		{"flagged to approved", models.FindingStatusFlagged, models.FindingStatusApproved, nil},
		{"flagged to dismissed", models.FindingStatusFlagged, models.FindingStatusDismissed, nil},
		{"flagged to flagged", models.FindingStatusFlagged, models.FindingStatusFlagged, apperrors.ErrInvalidTransition},
		{"approved to dismissed", models.FindingStatusApproved, models.FindingStatusDismissed, apperrors.ErrInvalidTransition},
		{"dismissed to approved", models.FindingStatusDismissed, models.FindingStatusApproved, apperrors.ErrInvalidTransition},
		{"unknown status", models.FindingStatusFlagged, models.FindingStatus("archived"), apperrors.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, kvstore.NewMemoryStore())
			s.PrependFindings([]models.Finding{finding("f1", "Acme", "Blog", tt.from)})

			updated, err := s.UpdateFindingStatus("f1", tt.to)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				f, _ := s.Finding("f1")
				assert.Equal(t, tt.from, f.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, updated.Status)
			f, _ := s.Finding("f1")
			assert.Equal(t, tt.to, f.Status)
		})
	}
}

func TestStore_UpdateFindingStatus_UnknownID(t *testing.T) {
	s := newTestStore(t, kvstore.NewMemoryStore())

	_, err := s.UpdateFindingStatus("nope", models.FindingStatusApproved)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStore_FindingsFilterAndFacets(t *testing.T) {
	s := newTestStore(t, kvstore.NewMemoryStore())
	s.PrependFindings([]models.Finding{
		finding("f1", "Acme", "Blog", models.FindingStatusApproved),
		finding("f2", "Globex", "News", models.FindingStatusFlagged),
		finding("f3", "Acme", "News", models.FindingStatusFlagged),
		finding("f4", "", "", models.FindingStatusApproved),
	})

	got := s.Findings(models.FindingFilter{Competitor: "Acme", Status: models.FindingStatusFlagged})
	require.Len(t, got, 1)
	assert.Equal(t, "f3", got[0].ID)

	assert.Len(t, s.Findings(models.FindingFilter{SiteType: "News"}), 2)
	assert.Len(t, s.ApprovedFindings(), 2)
	assert.Empty(t, s.Findings(models.FindingFilter{Competitor: "Hooli"}))

	facets := s.FindingFacets()
	assert.Equal(t, []string{"Acme", "Globex"}, facets.Competitors)
	assert.Equal(t, []string{"Blog", "News"}, facets.SiteTypes)
}

func TestStore_ReadsReturnCopies(t *testing.T) {
	s := newTestStore(t, kvstore.NewMemoryStore())
	_, _ = s.AddCompetitor("Acme")
	s.PrependFindings([]models.Finding{finding("f1", "Acme", "Blog", models.FindingStatusFlagged)})

	competitors := s.Competitors()
	competitors[0].Name = "Mutated"
	findings := s.Findings(models.FindingFilter{})
	findings[0].Status = models.FindingStatusDismissed

	assert.Equal(t, "Acme", s.Competitors()[0].Name)
	f, _ := s.Finding("f1")
	assert.Equal(t, models.FindingStatusFlagged, f.Status)
}

func TestStore_ReportsAndHistory(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	s := newTestStore(t, kv)

	s.PrependReport(models.Report{ID: "r1", Month: 1, Year: 2026})
	s.PrependReport(models.Report{ID: "r2", Month: 2, Year: 2026})
	s.PrependDiscoveryRun(models.DiscoveryRun{ID: "d1", TotalFindings: 3})
	s.PrependDiscoveryRun(models.DiscoveryRun{ID: "d2", TotalFindings: 5})
	s.SetLatestExportURL("https://files.example.com/run.xlsx")

	reports := s.Reports()
	require.Len(t, reports, 2)
	assert.Equal(t, "r2", reports[0].ID)

	r, err := s.Report("r1")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Month)
	_, err = s.Report("r9")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	history := s.DiscoveryHistory()
	require.Len(t, history, 2)
	assert.Equal(t, "d2", history[0].ID)
	assert.Equal(t, "https://files.example.com/run.xlsx", s.LatestExportURL())

	s.Flush()
	ctx := context.Background()
	assert.Equal(t, "https://files.example.com/run.xlsx", kvstore.Read(ctx, kv, kvstore.KeyLatestExportURL, ""))
	assert.Len(t, kvstore.Read(ctx, kv, kvstore.KeyReports, []models.Report{}), 2)
	assert.Len(t, kvstore.Read(ctx, kv, kvstore.KeyDiscoveryHistory, []models.DiscoveryRun{}), 2)
}

func TestStore_Dashboard(t *testing.T) {
	s := newTestStore(t, kvstore.NewMemoryStore())

	empty := s.Dashboard()
	assert.Equal(t, models.Dashboard{}, empty)

	_, _ = s.AddCompetitor("Acme")
	_, _ = s.AddCompetitor("Globex")
	s.PrependFindings([]models.Finding{
		finding("f1", "Acme", "Blog", models.FindingStatusFlagged),
		finding("f2", "Acme", "Blog", models.FindingStatusApproved),
		finding("f3", "Globex", "News", models.FindingStatusFlagged),
	})
	s.PrependReport(models.Report{ID: "r1"})
	s.PrependDiscoveryRun(models.DiscoveryRun{ID: "d1"})
	s.PrependDiscoveryRun(models.DiscoveryRun{ID: "d2"})

	d := s.Dashboard()
	assert.Equal(t, 2, d.CompetitorsTracked)
	assert.Equal(t, "Globex", d.LatestCompetitor)
	assert.Equal(t, 3, d.TotalFindings)
	assert.Equal(t, 2, d.FlaggedCount)
	assert.Equal(t, 1, d.ReportsGenerated)
	require.NotNil(t, d.LastRun)
	assert.Equal(t, "d2", d.LastRun.ID)
}

func TestStore_Load(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	require.NoError(t, kvstore.Write(ctx, kv, kvstore.KeyCompetitors, []models.Competitor{{ID: "c1", Name: "Acme", DateAdded: "2026-01-02"}}))
	require.NoError(t, kv.Set(ctx, kvstore.KeyFindings, []byte("{not json")))
	require.NoError(t, kv.Set(ctx, kvstore.KeyReports, []byte("null")))
	require.NoError(t, kvstore.Write(ctx, kv, kvstore.KeyLatestExportURL, "https://files.example.com/a.xlsx"))

	s := newTestStore(t, kv)
	require.NoError(t, s.Load(ctx))

	assert.Equal(t, []models.Competitor{{ID: "c1", Name: "Acme", DateAdded: "2026-01-02"}}, s.Competitors())
	assert.NotNil(t, s.Findings(models.FindingFilter{}))
	assert.Empty(t, s.Findings(models.FindingFilter{}))
	assert.NotNil(t, s.Reports())
	assert.Empty(t, s.Reports())
	assert.Empty(t, s.DiscoveryHistory())
	assert.Equal(t, "https://files.example.com/a.xlsx", s.LatestExportURL())
}

func TestStore_WriteFailuresAreSwallowed(t *testing.T) {
	kv := &countingStore{MemoryStore: kvstore.NewMemoryStore(), fail: true}
	s := newTestStore(t, kv)

	c, err := s.AddCompetitor("Acme")
	require.NoError(t, err)
	s.Flush()

	assert.Equal(t, int32(1), kv.sets.Load())
	assert.Equal(t, []models.Competitor{c}, s.Competitors())
}

func TestStore_ConcurrentMutationsPersistLatest(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	s := newTestStore(t, kv)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = s.AddCompetitor(fmt.Sprintf("Competitor %d", i))
		}(i)
	}
	wg.Wait()
	s.Flush()

	stored := kvstore.Read(context.Background(), kv, kvstore.KeyCompetitors, []models.Competitor{})
	assert.Len(t, stored, 20)
	assert.ElementsMatch(t, s.Competitors(), stored)
}

func TestStore_CloseDrainsPendingWrites(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	s := New(kv, zap.NewNop())

	_, err := s.AddCompetitor("Acme")
	require.NoError(t, err)
	s.Close()
	s.Close()

	stored := kvstore.Read(context.Background(), kv, kvstore.KeyCompetitors, []models.Competitor{})
	require.Len(t, stored, 1)
	assert.Equal(t, "Acme", stored[0].Name)
}

func TestStore_SampleMode(t *testing.T) {
	ctx := context.Background()
	kv := &countingStore{MemoryStore: kvstore.NewMemoryStore()}
	s := newTestStore(t, kv)

	acme, err := s.AddCompetitor("Acme")
	require.NoError(t, err)
	s.SetLatestExportURL("https://files.example.com/real.xlsx")
	s.Flush()
	setsBefore := kv.sets.Load()

	require.NoError(t, s.SetSampleMode(ctx, true))
	assert.True(t, s.SampleMode())
	assert.True(t, s.Dashboard().SampleMode)
	assert.NotContains(t, s.Competitors(), acme)
	assert.NotEmpty(t, s.Findings(models.FindingFilter{}))
	assert.NotEmpty(t, s.Reports())
	assert.NotEmpty(t, s.DiscoveryHistory())
	assert.Equal(t, "https://files.example.com/real.xlsx", s.LatestExportURL())

	_, err = s.AddCompetitor("Demo Only")
	require.NoError(t, err)
	s.Flush()
	assert.Equal(t, setsBefore, kv.sets.Load(), "sample mode must not write through")

	require.NoError(t, s.SetSampleMode(ctx, false))
	assert.False(t, s.SampleMode())
	assert.Equal(t, []models.Competitor{acme}, s.Competitors())
	assert.Empty(t, s.Findings(models.FindingFilter{}))
	assert.Empty(t, s.Reports())
}

// ctxStore fails reads once its context is done, like the network-backed stores.
type ctxStore struct {
	*kvstore.MemoryStore
}

func (c *ctxStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.MemoryStore.Get(ctx, key)
}

func TestStore_Load_ReadFailureKeepsState(t *testing.T) {
	kv := &ctxStore{MemoryStore: kvstore.NewMemoryStore()}
	s := newTestStore(t, kv)

	acme, err := s.AddCompetitor("Acme")
	require.NoError(t, err)
	s.Flush()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = s.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []models.Competitor{acme}, s.Competitors())
}

func TestStore_SetSampleMode_ReloadFailureKeepsPersistedData(t *testing.T) {
	kv := &ctxStore{MemoryStore: kvstore.NewMemoryStore()}
	s := newTestStore(t, kv)

	acme, err := s.AddCompetitor("Acme")
	require.NoError(t, err)
	globex, err := s.AddCompetitor("Globex")
	require.NoError(t, err)
	s.Flush()

	require.NoError(t, s.SetSampleMode(context.Background(), true))
	sample := s.Competitors()

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	err = s.SetSampleMode(canceled, false)
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, s.SampleMode())
	assert.Equal(t, sample, s.Competitors())

	_, err = s.AddCompetitor("Demo Only")
	require.NoError(t, err)
	s.Flush()
	stored := kvstore.Read(context.Background(), kv, kvstore.KeyCompetitors, []models.Competitor{})
	assert.Equal(t, []models.Competitor{acme, globex}, stored)

	require.NoError(t, s.SetSampleMode(context.Background(), false))
	assert.False(t, s.SampleMode())
	assert.Equal(t, []models.Competitor{acme, globex}, s.Competitors())
}

func TestStore_SetSampleMode_NoChange(t *testing.T) {
	s := newTestStore(t, kvstore.NewMemoryStore())
	_, _ = s.AddCompetitor("Acme")

	require.NoError(t, s.SetSampleMode(context.Background(), false))
	assert.Len(t, s.Competitors(), 1)
}
