// Package topics holds the shared topic model: a TF-IDF vectorizer with
// spherical k-means clustering, trained once on the raw corpus and
// frozen for inference so topic ids stay stable across runs.
package topics

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

const (
	minDocFreq       = 2
	maxIterations    = 50
	termsPerTopic    = 10
	trainingSeed     = 421
	modelFilePerm    = 0o644
	modelDirPerm     = 0o755
)

var (
	ErrEmptyCorpus = errors.New("corpus has no usable terms")
	ErrNotTrained  = errors.New("model is not trained")
)

var tokenRx = regexp.MustCompile(`[a-z][a-z']+`)

// Model is the frozen clustering state. All fields are exported for the
// JSON artifact.
type Model struct {
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
	Centroids  [][]float64    `json:"centroids"`

	// TopicTerms holds the highest-weight vocabulary terms per topic,
	// most representative first.
	TopicTerms [][]string `json:"topic_terms"`
}

// Train fits a model with up to k topics on the corpus. Fewer topics
// result when the corpus is too small to fill them.
func Train(corpus []string, k int) (*Model, error) {
	if k < 1 {
		k = 1
	}

	docs := make([][]string, 0, len(corpus))
	for _, text := range corpus {
		docs = append(docs, tokenize(text))
	}

	vocab, idf := buildVocabulary(docs)
	if len(vocab) == 0 {
		return nil, ErrEmptyCorpus
	}

	m := &Model{Vocabulary: vocab, IDF: idf}

	vectors := make([][]float64, 0, len(docs))

	for _, doc := range docs {
		v := m.vectorize(doc)
		if v != nil {
			vectors = append(vectors, v)
		}
	}

	if len(vectors) == 0 {
		return nil, ErrEmptyCorpus
	}

	if k > len(vectors) {
		k = len(vectors)
	}

	m.Centroids = kmeans(vectors, k)
	m.TopicTerms = m.representativeTerms()

	return m, nil
}

// Transform assigns text to the nearest topic. Texts below minSimilarity
// get the outlier id -1 with probability zero. The model is never
// mutated by inference.
func (m *Model) Transform(text string, minSimilarity float64) (int, float64) {
	v := m.vectorize(tokenize(text))
	if v == nil {
		return -1, 0
	}

	best, bestSim := -1, -1.0

	for i, c := range m.Centroids {
		if sim := dot(v, c); sim > bestSim {
			best, bestSim = i, sim
		}
	}

	if best < 0 || bestSim < minSimilarity {
		return -1, 0
	}

	return best, bestSim
}

// TopicCount returns the number of fitted topics.
func (m *Model) TopicCount() int {
	return len(m.Centroids)
}

// Terms returns the representative terms for a topic id, or nil for the
// outlier id or an unknown topic.
func (m *Model) Terms(topicID int) []string {
	if topicID < 0 || topicID >= len(m.TopicTerms) {
		return nil
	}

	return m.TopicTerms[topicID]
}

// Save writes the model artifact as JSON, creating parent directories.
func (m *Model) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), modelDirPerm); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}

	if err := os.WriteFile(path, data, modelFilePerm); err != nil {
		return fmt.Errorf("write model: %w", err)
	}

	return nil
}

// Load reads a persisted model artifact. os.ErrNotExist passes through
// so callers can distinguish "absent" from "corrupt".
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}

	m := &Model{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("unmarshal model: %w", err)
	}

	if len(m.Centroids) == 0 {
		return nil, ErrNotTrained
	}

	return m, nil
}

func tokenize(text string) []string {
	tokens := tokenRx.FindAllString(strings.ToLower(text), -1)

	out := make([]string, 0, len(tokens))

	for _, tok := range tokens {
		tok = strings.Trim(tok, "'")
		if len(tok) < 3 || isJunkWord(tok) {
			continue
		}

		out = append(out, tok)
	}

	return out
}

func buildVocabulary(docs [][]string) (map[string]int, []float64) {
	df := make(map[string]int)

	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, tok := range doc {
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				df[tok]++
			}
		}
	}

	minDF := minDocFreq
	if len(docs) < 2*minDocFreq {
		// Tiny corpora would otherwise produce an empty vocabulary.
		minDF = 1
	}

	terms := make([]string, 0, len(df))

	for term, count := range df {
		if count >= minDF {
			terms = append(terms, term)
		}
	}

	sort.Strings(terms)

	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))

	for i, term := range terms {
		vocab[term] = i
		idf[i] = math.Log(float64(1+len(docs))/float64(1+df[term])) + 1
	}

	return vocab, idf
}

// vectorize builds a unit-length tf-idf vector, or nil when no token is
// in the vocabulary.
func (m *Model) vectorize(doc []string) []float64 {
	v := make([]float64, len(m.IDF))

	hits := 0

	for _, tok := range doc {
		if idx, ok := m.Vocabulary[tok]; ok {
			v[idx] += m.IDF[idx]
			hits++
		}
	}

	if hits == 0 {
		return nil
	}

	normalize(v)

	return v
}

// kmeans runs spherical k-means with a deterministic seed so training is
// reproducible for a given corpus.
func kmeans(vectors [][]float64, k int) [][]float64 {
	rng := rand.New(rand.NewSource(trainingSeed))

	centroids := make([][]float64, k)
	for i, idx := range rng.Perm(len(vectors))[:k] {
		centroids[i] = append([]float64(nil), vectors[idx]...)
	}

	assignment := make([]int, len(vectors))

	for iter := 0; iter < maxIterations; iter++ {
		changed := false

		for i, v := range vectors {
			best, bestSim := 0, -1.0

			for j, c := range centroids {
				if sim := dot(v, c); sim > bestSim {
					best, bestSim = j, sim
				}
			}

			if assignment[i] != best {
				assignment[i] = best
				changed = true
			}
		}

		if !changed && iter > 0 {
			break
		}

		recomputeCentroids(centroids, vectors, assignment, rng)
	}

	return centroids
}

func recomputeCentroids(centroids, vectors [][]float64, assignment []int, rng *rand.Rand) {
	dim := len(centroids[0])

	for j := range centroids {
		sum := make([]float64, dim)
		count := 0

		for i, v := range vectors {
			if assignment[i] == j {
				for d := range v {
					sum[d] += v[d]
				}

				count++
			}
		}

		if count == 0 {
			// Re-seed an empty cluster with a random vector.
			centroids[j] = append([]float64(nil), vectors[rng.Intn(len(vectors))]...)

			continue
		}

		normalize(sum)
		centroids[j] = sum
	}
}

// representativeTerms picks the highest-weight vocabulary terms per
// centroid.
func (m *Model) representativeTerms() [][]string {
	reverse := make([]string, len(m.IDF))
	for term, idx := range m.Vocabulary {
		reverse[idx] = term
	}

	out := make([][]string, len(m.Centroids))

	for j, c := range m.Centroids {
		type weighted struct {
			term   string
			weight float64
		}

		ws := make([]weighted, 0, len(c))

		for idx, w := range c {
			if w > 0 {
				ws = append(ws, weighted{term: reverse[idx], weight: w})
			}
		}

		sort.Slice(ws, func(a, b int) bool {
			if ws[a].weight != ws[b].weight {
				return ws[a].weight > ws[b].weight
			}

			return ws[a].term < ws[b].term
		})

		n := termsPerTopic
		if n > len(ws) {
			n = len(ws)
		}

		terms := make([]string, n)
		for i := 0; i < n; i++ {
			terms[i] = ws[i].term
		}

		out[j] = terms
	}

	return out
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}

	return sum
}

func normalize(v []float64) {
	var norm float64
	for _, x := range v {
		norm += x * x
	}

	if norm == 0 {
		return
	}

	norm = math.Sqrt(norm)
	for i := range v {
		v[i] /= norm
	}
}
