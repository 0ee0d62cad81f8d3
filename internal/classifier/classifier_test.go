package classifier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopNeverPredicts(t *testing.T) {
	n := NewNoop()
	assert.False(t, n.Ready())

	pred, ok := n.Classify("anything at all")
	assert.False(t, ok)
	assert.Equal(t, Prediction{}, pred)
}

func TestSoftmaxSumsToOne(t *testing.T) {
	probs := softmax([]float32{2.0, 1.0, 0.5, -1.0})
	var sum float64
	for _, p := range probs {
		sum += p
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Greater(t, probs[0], probs[1])
}

func writeVocab(t *testing.T, tokens []string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.txt")
	data := ""
	for _, tok := range tokens {
		data += tok + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestWordPieceEncode(t *testing.T) {
	path := writeVocab(t, []string{"[PAD]", "[UNK]", "[CLS]", "[SEP]", "hello", "wor", "##ld"})
	tok, err := loadWordPieceTokenizer(path)
	require.NoError(t, err)

	ids, attn := tok.encode("Hello world", 8)
	require.Len(t, ids, 8)
	require.Len(t, attn, 8)

	// [CLS] hello wor ##ld [SEP] [PAD] [PAD] [PAD]
	assert.Equal(t, []int64{2, 4, 5, 6, 3, 0, 0, 0}, ids)
	assert.Equal(t, []int64{1, 1, 1, 1, 1, 0, 0, 0}, attn)
}

func TestWordPieceUnknownCollapsesToUNK(t *testing.T) {
	path := writeVocab(t, []string{"[PAD]", "[UNK]", "[CLS]", "[SEP]", "known"})
	tok, err := loadWordPieceTokenizer(path)
	require.NoError(t, err)

	ids, _ := tok.encode("zzz known", 6)
	// [CLS] [UNK] known [SEP] [PAD] [PAD]
	assert.Equal(t, []int64{2, 1, 4, 3, 0, 0}, ids)
}

func TestWordPieceTruncatesToSeqLen(t *testing.T) {
	path := writeVocab(t, []string{"[PAD]", "[UNK]", "[CLS]", "[SEP]", "aa"})
	tok, err := loadWordPieceTokenizer(path)
	require.NoError(t, err)

	ids, attn := tok.encode("aa aa aa aa aa aa aa aa", 4)
	require.Len(t, ids, 4)
	assert.Equal(t, int64(3), ids[3], "sequence must end with [SEP]")
	assert.Equal(t, []int64{1, 1, 1, 1}, attn)
}

func TestLoadLabelsArrayAndMap(t *testing.T) {
	dir := t.TempDir()

	arrPath := filepath.Join(dir, "arr.json")
	require.NoError(t, os.WriteFile(arrPath, []byte(`["SAFE","SENSITIVE","POLICY_RISK","HARMFUL"]`), 0o644))
	labels, err := loadLabels(arrPath)
	require.NoError(t, err)
	assert.Equal(t, []Label{LabelSafe, LabelSensitive, LabelPolicyRisk, LabelHarmful}, labels)

	mapPath := filepath.Join(dir, "map.json")
	require.NoError(t, os.WriteFile(mapPath, []byte(`{"0":"SAFE","1":"HARMFUL"}`), 0o644))
	labels, err = loadLabels(mapPath)
	require.NoError(t, err)
	assert.Equal(t, []Label{LabelSafe, LabelHarmful}, labels)
}
