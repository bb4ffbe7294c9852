package topics

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCorpus = []string{
	"battery drains fast and the battery life is terrible",
	"battery life improved a lot after the charger swap",
	"battery keeps dying overnight even on standby",
	"camera quality is stunning in daylight photos",
	"camera photos look blurry in low light",
	"the camera zoom is the best photos I have taken",
	"shipping took three weeks and the package arrived damaged",
	"shipping was slow but the package was fine",
	"delivery package lost twice before shipping finally worked",
}

type stubRepo struct {
	corpus []string
	calls  int
	err    error
}

func (s *stubRepo) GetAllReviewTexts(context.Context) ([]string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}

	return s.corpus, nil
}

func testManager(t *testing.T, repo *stubRepo) *Manager {
	t.Helper()

	logger := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "model.json")

	return NewManager(repo, path, 3, 0.05, &logger)
}

func TestManager_TrainsWhenAbsent(t *testing.T) {
	repo := &stubRepo{corpus: testCorpus}
	mgr := testManager(t, repo)

	assert.Equal(t, StateAbsent, mgr.State())

	require.NoError(t, mgr.EnsureReady(context.Background()))

	assert.Equal(t, StateReady, mgr.State())
	assert.Equal(t, 1, repo.calls)

	// Ready managers do not refit.
	require.NoError(t, mgr.EnsureReady(context.Background()))
	assert.Equal(t, 1, repo.calls)
}

func TestManager_LoadsPersistedArtifact(t *testing.T) {
	repo := &stubRepo{corpus: testCorpus}

	logger := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "model.json")

	first := NewManager(repo, path, 3, 0.05, &logger)
	require.NoError(t, first.EnsureReady(context.Background()))

	// A second manager on the same path must load without touching the
	// corpus.
	second := NewManager(repo, path, 3, 0.05, &logger)
	require.NoError(t, second.EnsureReady(context.Background()))

	assert.Equal(t, StateReady, second.State())
	assert.Equal(t, 1, repo.calls)
}

func TestManager_Retrain(t *testing.T) {
	repo := &stubRepo{corpus: testCorpus}
	mgr := testManager(t, repo)

	require.NoError(t, mgr.EnsureReady(context.Background()))
	require.NoError(t, mgr.Retrain(context.Background()))

	assert.Equal(t, 2, repo.calls)
	assert.Equal(t, StateReady, mgr.State())
}

func TestManager_AssignBeforeReady(t *testing.T) {
	mgr := testManager(t, &stubRepo{corpus: testCorpus})

	_, label, _, err := mgr.Assign("battery drains fast")

	require.ErrorIs(t, err, ErrNotTrained)
	assert.Equal(t, "Misc", label)
}

func TestManager_AssignStable(t *testing.T) {
	mgr := testManager(t, &stubRepo{corpus: testCorpus})
	require.NoError(t, mgr.EnsureReady(context.Background()))

	const text = "the battery drains way too fast"

	first, _, prob, err := mgr.Assign(text)
	require.NoError(t, err)
	require.GreaterOrEqual(t, first, 0)
	assert.Greater(t, prob, 0.0)

	again, _, _, err := mgr.Assign(text)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestManager_AssignOutlier(t *testing.T) {
	mgr := testManager(t, &stubRepo{corpus: testCorpus})
	require.NoError(t, mgr.EnsureReady(context.Background()))

	topicID, label, prob, err := mgr.Assign("zzz qqq xyzzy")

	require.NoError(t, err)
	assert.Equal(t, -1, topicID)
	assert.Equal(t, "Misc", label)
	assert.Zero(t, prob)
}

func TestTrain_EmptyCorpus(t *testing.T) {
	_, err := Train(nil, 3)
	require.ErrorIs(t, err, ErrEmptyCorpus)

	_, err = Train([]string{"a an the", "ok lol"}, 3)
	require.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestTrain_FewerDocsThanTopics(t *testing.T) {
	model, err := Train([]string{"battery drains battery life"}, 10)
	require.NoError(t, err)

	assert.Equal(t, 1, model.TopicCount())
}

func TestModel_LabelFromTerms(t *testing.T) {
	m := &Model{
		Centroids:  [][]float64{{1}, {1}},
		TopicTerms: [][]string{{"ok", "lol", "battery", "drains", "life"}, {}},
	}

	assert.Equal(t, "battery drains life", m.Label(0))
	assert.Equal(t, "Misc", m.Label(1))
	assert.Equal(t, "Misc", m.Label(-1))
}

func TestTokenize(t *testing.T) {
	got := tokenize("The battery LIFE is OK!! don't panic, lol")

	assert.Equal(t, []string{"battery", "life", "don't", "panic"}, got)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	model, err := Train(testCorpus, 3)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "model.json")
	require.NoError(t, model.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	text := strings.Repeat("camera photos ", 3)

	wantID, wantProb := model.Transform(text, 0.05)
	gotID, gotProb := loaded.Transform(text, 0.05)

	assert.Equal(t, wantID, gotID)
	assert.InDelta(t, wantProb, gotProb, 1e-9)
}
