package embedding

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeVocab(t *testing.T, tokens ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vocab.txt")
	if err := os.WriteFile(path, []byte(strings.Join(tokens, "\n")+"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func testVocab(t *testing.T) *WordPieceTokenizer {
	t.Helper()
	path := writeVocab(t, "[PAD]", "[UNK]", "[CLS]", "[SEP]", "hello", "world", "play", "##ing", "!")
	tok, err := NewWordPieceTokenizer(path)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestWordPieceTokenizer_Tokenize(t *testing.T) {
	tok := testVocab(t)
	ids, attn, types := tok.Tokenize("hello world", 10)
	if len(ids) != 10 || len(attn) != 10 || len(types) != 10 {
		t.Fatalf("row lengths: %d %d %d", len(ids), len(attn), len(types))
	}
	want := []int64{2, 4, 5, 3} // [CLS] hello world [SEP]
	for i, w := range want {
		if ids[i] != w {
			t.Errorf("ids[%d] = %d, want %d", i, ids[i], w)
		}
		if attn[i] != 1 {
			t.Errorf("attn[%d] = %d, want 1", i, attn[i])
		}
	}
	// padding starts right after [SEP]
	if ids[4] != 0 || attn[4] != 0 {
		t.Errorf("expected padding at position 4, got id=%d attn=%d", ids[4], attn[4])
	}
}

func TestWordPieceTokenizer_subwords(t *testing.T) {
	tok := testVocab(t)
	ids, _, _ := tok.Tokenize("playing", 10)
	if ids[1] != 6 || ids[2] != 7 {
		t.Errorf("expected play ##ing, got %v", ids[:4])
	}
}

func TestWordPieceTokenizer_unknownWord(t *testing.T) {
	tok := testVocab(t)
	ids, _, _ := tok.Tokenize("zzz", 10)
	if ids[1] != 1 {
		t.Errorf("expected [UNK] id 1, got %d", ids[1])
	}
}

func TestWordPieceTokenizer_punctuationSplit(t *testing.T) {
	tok := testVocab(t)
	ids, _, _ := tok.Tokenize("hello!", 10)
	if ids[1] != 4 || ids[2] != 8 {
		t.Errorf("expected hello !, got %v", ids[:4])
	}
}

func TestWordPieceTokenizer_truncation(t *testing.T) {
	tok := testVocab(t)
	ids, attn, _ := tok.Tokenize("hello world hello world hello", 4)
	if len(ids) != 4 {
		t.Fatalf("len(ids) = %d", len(ids))
	}
	if ids[0] != 2 || ids[3] != 3 {
		t.Errorf("expected [CLS] ... [SEP], got %v", ids)
	}
	if attendedLength(attn) != 4 {
		t.Errorf("attended length = %d", attendedLength(attn))
	}
}

func TestNewWordPieceTokenizer_missingSpecials(t *testing.T) {
	path := writeVocab(t, "hello", "world")
	if _, err := NewWordPieceTokenizer(path); err == nil {
		t.Fatal("expected error for vocab without special tokens")
	}
}

func TestNewWordPieceTokenizer_missingFile(t *testing.T) {
	if _, err := NewWordPieceTokenizer(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("expected error for missing vocab file")
	}
}

func TestSimpleTokenizer_Tokenize(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, attn, _ := tok.Tokenize("hello world", 10)
	if len(ids) != 10 {
		t.Errorf("len(ids)=%d", len(ids))
	}
	if ids[0] != 101 {
		t.Errorf("expected CLS 101, got %d", ids[0])
	}
	if attn[0] != 1 {
		t.Error("attention[0] should be 1")
	}
}

func TestHashString(t *testing.T) {
	h := HashString("abc")
	if h == 0 {
		t.Error("hash should be non-zero")
	}
	if HashString("abc") != HashString("abc") {
		t.Error("hash should be deterministic")
	}
}

func TestTokenizeBatch_commonLength(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, attn, types, seqLen := TokenizeBatch(tok, []string{"a b c", "a"}, 10)
	if seqLen != 5 { // CLS + 3 words + SEP on the longest row
		t.Errorf("seqLen = %d, want 5", seqLen)
	}
	for i := range ids {
		if len(ids[i]) != seqLen || len(attn[i]) != seqLen || len(types[i]) != seqLen {
			t.Errorf("row %d not trimmed to seqLen", i)
		}
	}
	if attendedLength(attn[1]) != 3 { // CLS + a + SEP
		t.Errorf("short row attended length = %d", attendedLength(attn[1]))
	}
}

func TestTokenizeBatch_minimumLength(t *testing.T) {
	tok := &SimpleTokenizer{}
	_, _, _, seqLen := TokenizeBatch(tok, []string{""}, 10)
	if seqLen < 2 {
		t.Errorf("seqLen = %d, want >= 2", seqLen)
	}
}
