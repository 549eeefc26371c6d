package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, Brokers(" a:9092, ,b:9092 "))
	assert.Nil(t, Brokers(""))
}

func TestNewWriter_UsesKeyHashing(t *testing.T) {
	w := NewWriter("a:9092,b:9092", "market_events")
	assert.Equal(t, "market_events", w.Topic)
	assert.Equal(t, "a:9092,b:9092", w.Addr.String())
}
