package examgen

import (
	"fmt"

	"github.com/tiktoken-go/tokenizer"
)

// TiktokenTokenizer is a Tokenizer over a BPE encoding such as cl100k_base
type TiktokenTokenizer struct {
	codec tokenizer.Codec
}

// NewTiktokenTokenizer loads the named encoding; empty selects cl100k_base
func NewTiktokenTokenizer(encoding string) (*TiktokenTokenizer, error) {
	if encoding == "" {
		encoding = string(tokenizer.Cl100kBase)
	}
	codec, err := tokenizer.Get(tokenizer.Encoding(encoding))
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer %s: %w", encoding, err)
	}
	return &TiktokenTokenizer{codec: codec}, nil
}

func (t *TiktokenTokenizer) Encode(text string) ([]int, error) {
	ids, _, err := t.codec.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("failed to encode: %w", err)
	}
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out, nil
}

func (t *TiktokenTokenizer) Decode(ids []int) (string, error) {
	in := make([]uint, len(ids))
	for i, id := range ids {
		if id < 0 {
			return "", fmt.Errorf("invalid token id %d", id)
		}
		in[i] = uint(id)
	}
	text, err := t.codec.Decode(in)
	if err != nil {
		return "", fmt.Errorf("failed to decode: %w", err)
	}
	return text, nil
}
