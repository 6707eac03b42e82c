package embedding

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// Tokenizer produces token IDs for BERT-style models (input_ids, attention_mask, token_type_ids).
// Rows are padded to maxTokens; positions past the last real token carry attention 0.
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64)
}

// WordPieceTokenizer tokenizes text against a BERT-style vocab.txt using
// greedy longest-match-first subword splitting with "##" continuations.
type WordPieceTokenizer struct {
	vocab        map[string]int64
	clsID        int64
	sepID        int64
	unkID        int64
	maxWordChars int
}

// NewWordPieceTokenizer loads a vocabulary file with one token per line; the
// line number is the token ID. The vocabulary must define the [CLS], [SEP],
// and [UNK] special tokens.
func NewWordPieceTokenizer(vocabPath string) (*WordPieceTokenizer, error) {
	f, err := os.Open(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocab: %w", err)
	}
	defer f.Close()

	vocab := make(map[string]int64)
	scanner := bufio.NewScanner(f)
	var id int64
	for scanner.Scan() {
		vocab[strings.TrimRight(scanner.Text(), "\r")] = id
		id++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vocab: %w", err)
	}

	t := &WordPieceTokenizer{vocab: vocab, maxWordChars: 100}
	var ok bool
	if t.clsID, ok = vocab["[CLS]"]; !ok {
		return nil, fmt.Errorf("vocab %s has no [CLS] token", vocabPath)
	}
	if t.sepID, ok = vocab["[SEP]"]; !ok {
		return nil, fmt.Errorf("vocab %s has no [SEP] token", vocabPath)
	}
	if t.unkID, ok = vocab["[UNK]"]; !ok {
		return nil, fmt.Errorf("vocab %s has no [UNK] token", vocabPath)
	}
	return t, nil
}

// VocabSize returns the number of entries in the loaded vocabulary.
func (t *WordPieceTokenizer) VocabSize() int {
	return len(t.vocab)
}

// Tokenize produces padded token IDs up to maxTokens, truncating longer input.
// The layout is [CLS] piece... [SEP] with zero padding.
func (t *WordPieceTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens <= 0 {
		maxTokens = 512
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	inputIDs[0] = t.clsID
	attentionMask[0] = 1

	pos := 1
	for _, word := range splitBasic(text) {
		for _, pieceID := range t.wordPieces(word) {
			if pos >= maxTokens-1 {
				break
			}
			inputIDs[pos] = pieceID
			attentionMask[pos] = 1
			pos++
		}
	}
	if pos < maxTokens {
		inputIDs[pos] = t.sepID
		attentionMask[pos] = 1
	}
	return inputIDs, attentionMask, tokenTypeIDs
}

// wordPieces splits a single word into vocabulary pieces, longest match first.
// A word with any unmatchable remainder maps to a single [UNK].
func (t *WordPieceTokenizer) wordPieces(word string) []int64 {
	runes := []rune(word)
	if len(runes) > t.maxWordChars {
		return []int64{t.unkID}
	}
	var pieces []int64
	start := 0
	for start < len(runes) {
		end := len(runes)
		matched := int64(-1)
		for end > start {
			sub := string(runes[start:end])
			if start > 0 {
				sub = "##" + sub
			}
			if id, ok := t.vocab[sub]; ok {
				matched = id
				break
			}
			end--
		}
		if matched < 0 {
			return []int64{t.unkID}
		}
		pieces = append(pieces, matched)
		start = end
	}
	return pieces
}

// splitBasic splits text on whitespace and isolates punctuation as its own
// word, the pre-tokenization step BERT vocabularies expect.
func splitBasic(text string) []string {
	var words []string
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			words = append(words, word.String())
			word.Reset()
		}
	}
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush()
			words = append(words, string(r))
		default:
			word.WriteRune(r)
		}
	}
	flush()
	return words
}

// SimpleTokenizer is a word-split tokenizer with hash-based token IDs, used
// when no vocabulary file is available and in tests.
type SimpleTokenizer struct{}

// Tokenize splits text into words and produces padded token IDs up to maxTokens.
func (t *SimpleTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens <= 0 {
		maxTokens = 512
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	inputIDs[0] = 101 // [CLS]
	attentionMask[0] = 1

	pos := 1
	for _, word := range splitBasic(text) {
		if pos >= maxTokens-1 {
			break
		}
		inputIDs[pos] = int64(HashString(word) % 30000)
		attentionMask[pos] = 1
		pos++
	}
	if pos < maxTokens {
		inputIDs[pos] = 102 // [SEP]
		attentionMask[pos] = 1
	}
	return inputIDs, attentionMask, tokenTypeIDs
}

// HashString returns a deterministic hash for use as a simple token ID.
func HashString(s string) int {
	h := 0
	for _, c := range s {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	return h
}

// TokenizeBatch tokenizes every text with truncation at maxTokens and trims
// all rows to the longest attended length, so the padded batch carries no
// all-padding columns. Returned rows share one common length seqLen >= 2.
func TokenizeBatch(t Tokenizer, texts []string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs [][]int64, seqLen int) {
	inputIDs = make([][]int64, len(texts))
	attentionMask = make([][]int64, len(texts))
	tokenTypeIDs = make([][]int64, len(texts))
	for i, text := range texts {
		inputIDs[i], attentionMask[i], tokenTypeIDs[i] = t.Tokenize(text, maxTokens)
		if n := attendedLength(attentionMask[i]); n > seqLen {
			seqLen = n
		}
	}
	if seqLen < 2 {
		seqLen = 2
	}
	for i := range texts {
		inputIDs[i] = inputIDs[i][:seqLen]
		attentionMask[i] = attentionMask[i][:seqLen]
		tokenTypeIDs[i] = tokenTypeIDs[i][:seqLen]
	}
	return inputIDs, attentionMask, tokenTypeIDs, seqLen
}

// attendedLength returns the count of positions with attention 1. Masks are
// contiguous (real tokens first, then padding), so this is also the index of
// the first padding position.
func attendedLength(mask []int64) int {
	n := 0
	for _, m := range mask {
		if m == 1 {
			n++
		}
	}
	return n
}
