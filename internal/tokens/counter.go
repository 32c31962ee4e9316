// Package tokens provides approximate token accounting for recorded model
// interactions using the cl100k_base encoding.
package tokens

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// Counter counts tokens with a lazily initialized shared codec.
type Counter struct {
	once  sync.Once
	codec tokenizer.Codec
	err   error
}

// NewCounter creates a new token counter.
func NewCounter() *Counter {
	return &Counter{}
}

func (c *Counter) getCodec() (tokenizer.Codec, error) {
	c.once.Do(func() {
		c.codec, c.err = tokenizer.Get(tokenizer.Cl100kBase)
	})
	return c.codec, c.err
}

// Count returns the token count of text, or 0 when the codec is unavailable.
// The counts are observability data, not billing data, so failures are soft.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	codec, err := c.getCodec()
	if err != nil {
		return 0
	}
	ids, _, err := codec.Encode(text)
	if err != nil {
		return 0
	}
	return len(ids)
}
