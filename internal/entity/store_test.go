package entity_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genr8-backend/internal/entity"
	"genr8-backend/internal/kv"
)

// tickingClock advances one second per call so creation timestamps are distinct.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newStore(t *testing.T) (*entity.Store, *kv.MemoryBackend) {
	t.Helper()
	backend := kv.NewMemoryBackend()
	return entity.NewStore(backend, entity.WithClock(tickingClock())), backend
}

type failingBackend struct {
	*kv.MemoryBackend
	failWrites bool
}

func (f *failingBackend) Set(ctx context.Context, key string, value []byte) error {
	if f.failWrites {
		return errors.New("disk full")
	}
	return f.MemoryBackend.Set(ctx, key, value)
}

func TestCreate_AssignsUniqueIDs(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		rec, err := s.Assets.Create(ctx, entity.Record{"prompt": fmt.Sprintf("p%d", i)})
		require.NoError(t, err)
		require.NotEmpty(t, rec.ID())
		assert.False(t, seen[rec.ID()], "duplicate id %s", rec.ID())
		seen[rec.ID()] = true
	}
}

func TestCreate_ConcurrentCallersKeepEveryRecord(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Assets.Create(ctx, entity.Record{"n": float64(i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	all, err := s.Assets.Filter(ctx, entity.Query{})
	require.NoError(t, err)
	assert.Len(t, all, 20)
}

func TestCreate_RoundTrip(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	data := entity.Record{
		"prompt":         "a red fox",
		"generator_type": "logo",
		"is_favorite":    false,
		"settings":       map[string]any{"style": "flat", "colors": []any{"red", "white"}},
	}
	created, err := s.Assets.Create(ctx, data)
	require.NoError(t, err)

	found, err := s.Assets.Filter(ctx, entity.Query{Match: entity.Record{"id": created.ID()}})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, created, found[0])

	for k, v := range data {
		assert.Equal(t, v, found[0][k], k)
	}
	assert.NotEmpty(t, found[0][entity.FieldCreatedDate])
	assert.Equal(t, entity.DefaultEmail, found[0][entity.FieldCreatedBy])
}

func TestCreate_IgnoresSuppliedIdentity(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	rec, err := s.Projects.Create(ctx, entity.Record{
		"id":           "temp-1",
		"created_date": "1999-01-01T00:00:00.000Z",
		"created_by":   "someone@else.com",
		"name":         "Logos",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "temp-1", rec.ID())
	assert.Equal(t, "2024-05-01T12:00:01.000Z", rec.String(entity.FieldCreatedDate))
	assert.Equal(t, entity.DefaultEmail, rec.String(entity.FieldCreatedBy))
}

func TestCreate_StampsProfileEmail(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, err := s.Profiles.UpdateMe(ctx, entity.Record{"email": "artist@example.com"})
	require.NoError(t, err)

	rec, err := s.Projects.Create(ctx, entity.Record{"name": "Logos"})
	require.NoError(t, err)
	assert.Equal(t, "artist@example.com", rec.String(entity.FieldCreatedBy))
}

func TestCreate_ResultIsDetachedFromInput(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	settings := map[string]any{"style": "flat"}
	rec, err := s.Assets.Create(ctx, entity.Record{"settings": settings})
	require.NoError(t, err)
	settings["style"] = "changed"

	got, err := s.Assets.Get(ctx, rec.ID())
	require.NoError(t, err)
	assert.Equal(t, "flat", got["settings"].(map[string]any)["style"])
}

func TestFilter_ResultIsDetachedFromStorage(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	rec, err := s.Projects.Create(ctx, entity.Record{"name": "Logos"})
	require.NoError(t, err)

	found, err := s.Projects.Filter(ctx, entity.Query{})
	require.NoError(t, err)
	found[0]["name"] = "mutated"

	again, err := s.Projects.Get(ctx, rec.ID())
	require.NoError(t, err)
	assert.Equal(t, "Logos", again["name"])
}

func TestUpdate_ShallowMerge(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	rec, err := s.Assets.Create(ctx, entity.Record{"a": 0, "b": 2})
	require.NoError(t, err)

	updated, err := s.Assets.Update(ctx, rec.ID(), entity.Record{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, float64(1), updated["a"])
	assert.Equal(t, float64(2), updated["b"])
	assert.Equal(t, rec.ID(), updated.ID())
	assert.Equal(t, rec[entity.FieldCreatedDate], updated[entity.FieldCreatedDate])
}

func TestUpdate_KeepsIdentityFields(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	rec, err := s.Assets.Create(ctx, entity.Record{"a": 0})
	require.NoError(t, err)

	updated, err := s.Assets.Update(ctx, rec.ID(), entity.Record{
		"id":           "other",
		"created_date": "2000-01-01T00:00:00.000Z",
	})
	require.NoError(t, err)
	assert.Equal(t, rec.ID(), updated.ID())
	assert.Equal(t, rec[entity.FieldCreatedDate], updated[entity.FieldCreatedDate])
}

func TestUpdate_NotFound(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	existing, err := s.Assets.Create(ctx, entity.Record{"a": 0})
	require.NoError(t, err)

	_, err = s.Assets.Update(ctx, "missing", entity.Record{"a": 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrNotFound))

	all, err := s.Assets.Filter(ctx, entity.Query{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, existing, all[0])
}

func TestDelete_Idempotent(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	rec, err := s.Projects.Create(ctx, entity.Record{"name": "Logos"})
	require.NoError(t, err)
	other, err := s.Projects.Create(ctx, entity.Record{"name": "Avatars"})
	require.NoError(t, err)

	require.NoError(t, s.Projects.Delete(ctx, rec.ID()))
	found, err := s.Projects.Filter(ctx, entity.Query{Match: entity.Record{"id": rec.ID()}})
	require.NoError(t, err)
	assert.Empty(t, found)

	require.NoError(t, s.Projects.Delete(ctx, rec.ID()))
	found, err = s.Projects.Filter(ctx, entity.Query{Match: entity.Record{"id": rec.ID()}})
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = s.Projects.Get(ctx, other.ID())
	assert.NoError(t, err)
}

func TestFilter_Conjunction(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	for _, r := range []entity.Record{
		{"a": 1, "b": 2},
		{"a": 1, "b": 3},
		{"a": 2, "b": 2},
		{"a": 1},
	} {
		_, err := s.Assets.Create(ctx, r)
		require.NoError(t, err)
	}

	found, err := s.Assets.Filter(ctx, entity.Query{Match: entity.Record{"a": 1, "b": 2}})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, float64(1), found[0]["a"])
	assert.Equal(t, float64(2), found[0]["b"])

	all, err := s.Assets.Filter(ctx, entity.Query{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	limited, err := s.Assets.Filter(ctx, entity.Query{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
	assert.Equal(t, all[:2], limited)
}

func TestFilter_ExactMatchOnly(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, err := s.Assets.Create(ctx, entity.Record{"prompt": "red fox", "is_favorite": true})
	require.NoError(t, err)

	found, err := s.Assets.Filter(ctx, entity.Query{Match: entity.Record{"prompt": "red"}})
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = s.Assets.Filter(ctx, entity.Query{Match: entity.Record{"is_favorite": "true"}})
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = s.Assets.Filter(ctx, entity.Query{Match: entity.Record{"project_id": nil}})
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = s.Assets.Filter(ctx, entity.Query{Match: entity.Record{"is_favorite": true}})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestFilter_SortDirection(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"first", "second", "third"} {
		rec, err := s.Projects.Create(ctx, entity.Record{"name": name})
		require.NoError(t, err)
		ids = append(ids, rec.ID())
	}

	newest, err := s.Projects.Filter(ctx, entity.Query{Sort: "-created_date"})
	require.NoError(t, err)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, idsOf(newest))

	byDefault, err := s.Projects.Filter(ctx, entity.Query{})
	require.NoError(t, err)
	assert.Equal(t, idsOf(newest), idsOf(byDefault))

	oldest, err := s.Projects.Filter(ctx, entity.Query{Sort: "created_date"})
	require.NoError(t, err)
	assert.Equal(t, ids, idsOf(oldest))

	byName, err := s.Projects.Filter(ctx, entity.Query{Sort: "-name"})
	require.NoError(t, err)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, idsOf(byName))
}

func TestFilter_SortNumbersAndMissingFields(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	for _, n := range []float64{10, 2, 33} {
		_, err := s.Assets.Create(ctx, entity.Record{"n": n})
		require.NoError(t, err)
	}

	asc, err := s.Assets.Filter(ctx, entity.Query{Sort: "n"})
	require.NoError(t, err)
	var got []float64
	for _, r := range asc {
		got = append(got, r["n"].(float64))
	}
	assert.Equal(t, []float64{2, 10, 33}, got)

	unsortable, err := s.Assets.Filter(ctx, entity.Query{Sort: "missing"})
	require.NoError(t, err)
	assert.Len(t, unsortable, 3)
}

func TestProfiles_MeProvisionsOnce(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	me, err := s.Profiles.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultEmail, me.String("email"))
	assert.Equal(t, entity.DefaultCredits, me.Int("credits"))
	assert.Equal(t, 0, me.Int("total_generations"))
	assert.NotEmpty(t, me.ID())

	again, err := s.Profiles.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, me.ID(), again.ID())
}

func TestProfiles_UpdateMe(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	updated, err := s.Profiles.UpdateMe(ctx, entity.Record{"credits": 5})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Int("credits"))
	assert.Equal(t, entity.DefaultEmail, updated.String("email"))

	me, err := s.Profiles.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, me.Int("credits"))
	assert.Equal(t, updated.ID(), me.ID())
}

func TestProfiles_ChargeClampsAtZero(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, err := s.Profiles.UpdateMe(ctx, entity.Record{"credits": 3})
	require.NoError(t, err)

	me, err := s.Profiles.Charge(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 0, me.Int("credits"))
	assert.Equal(t, 4, me.Int("total_generations"))

	me, err = s.Profiles.Charge(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, me.Int("credits"))
	assert.Equal(t, 5, me.Int("total_generations"))

	_, err = s.Profiles.Charge(ctx, -1)
	assert.Error(t, err)
}

func TestStore_CorruptCollectionReadsEmpty(t *testing.T) {
	backend := kv.NewMemoryBackend()
	require.NoError(t, backend.Set(context.Background(), "genr8_projects", []byte("{not json")))
	s := entity.NewStore(backend)

	found, err := s.Projects.Filter(context.Background(), entity.Query{})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestStore_PrefixesKeys(t *testing.T) {
	backend := kv.NewMemoryBackend()
	s := entity.NewStore(backend, entity.WithPrefix("test_"))
	ctx := context.Background()

	_, err := s.Projects.Create(ctx, entity.Record{"name": "Logos"})
	require.NoError(t, err)

	_, found, err := backend.Get(ctx, "test_projects")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestStore_WriteFailureIsReturned(t *testing.T) {
	backend := &failingBackend{MemoryBackend: kv.NewMemoryBackend()}
	s := entity.NewStore(backend)
	ctx := context.Background()

	rec, err := s.Projects.Create(ctx, entity.Record{"name": "Logos"})
	require.NoError(t, err)

	backend.failWrites = true
	_, err = s.Projects.Update(ctx, rec.ID(), entity.Record{"name": "Other"})
	assert.ErrorContains(t, err, "disk full")

	backend.failWrites = false
	got, err := s.Projects.Get(ctx, rec.ID())
	require.NoError(t, err)
	assert.Equal(t, "Logos", got["name"])
}

func TestStore_Collection(t *testing.T) {
	s, _ := newStore(t)

	c, err := s.Collection("assets")
	require.NoError(t, err)
	assert.Same(t, s.Assets, c)

	_, err = s.Collection("users")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestScenario_SaveAssetToProject(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	project, err := s.Projects.Create(ctx, entity.Record{"name": "Logos"})
	require.NoError(t, err)
	asset, err := s.Assets.Create(ctx, entity.Record{"prompt": "x", "generator_type": "logo"})
	require.NoError(t, err)
	_, err = s.Assets.Create(ctx, entity.Record{"prompt": "y", "generator_type": "logo"})
	require.NoError(t, err)

	_, err = s.Assets.Update(ctx, asset.ID(), entity.Record{"project_id": project.ID()})
	require.NoError(t, err)

	found, err := s.Assets.Filter(ctx, entity.Query{Match: entity.Record{"project_id": project.ID()}})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, asset.ID(), found[0].ID())
}

func TestRecord_Decode(t *testing.T) {
	rec := entity.Record{"name": "Logos", "credits": float64(7)}
	var out struct {
		Name    string `json:"name"`
		Credits int    `json:"credits"`
	}
	require.NoError(t, rec.Decode(&out))
	assert.Equal(t, "Logos", out.Name)
	assert.Equal(t, 7, out.Credits)
}

func idsOf(records []entity.Record) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID()
	}
	return ids
}
