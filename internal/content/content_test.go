package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const small = `
title: Test
welcome: hi
list:
  title: Things
  items: [" alpha ", beta, gamma]
topics:
  preamble: Read this
  items:
    - key: crypto
      title: Crypto
      description: coins
      takeaways: [one, "", two]
`

func TestDefaultBundle(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.Equal(t, 195, c.Len())
	assert.Equal(t, "countries", c.ListNoun())
	assert.Len(t, c.Topics(), 10)

	topic, ok := c.Topic("blockchain")
	require.True(t, ok)
	assert.NotEmpty(t, topic.Description)
	assert.NotEmpty(t, topic.Takeaways)
}

func TestParseTrimsAndDefaults(t *testing.T) {
	c, err := Parse([]byte(small))
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, c.Items())
	assert.Equal(t, "items", c.ListNoun())

	topic, ok := c.Topic("crypto")
	require.True(t, ok)
	assert.Equal(t, []string{"one", "two"}, topic.Takeaways)
	assert.Equal(t, "Crypto", topic.Label())
}

func TestCatalogIsImmutable(t *testing.T) {
	c, err := Parse([]byte(small))
	require.NoError(t, err)

	items := c.Items()
	items[0] = "mutated"
	assert.Equal(t, "alpha", c.Items()[0])

	topics := c.Topics()
	topics[0].Takeaways[0] = "mutated"
	topic, _ := c.Topic("crypto")
	assert.Equal(t, "one", topic.Takeaways[0])

	slice := c.Slice(0, 2)
	slice[1] = "mutated"
	assert.Equal(t, "beta", c.Items()[1])
}

func TestSliceClipsBounds(t *testing.T) {
	c, err := Parse([]byte(small))
	require.NoError(t, err)
	assert.Equal(t, []string{"beta", "gamma"}, c.Slice(1, 99))
	assert.Nil(t, c.Slice(5, 10))
	assert.Equal(t, []string{"alpha"}, c.Slice(-3, 1))
}

func TestParseRejectsInvalidBundles(t *testing.T) {
	cases := map[string]string{
		"missing title":  "list: {title: L, items: [a]}",
		"empty bundle":   "title: T",
		"duplicate item": "title: T\nlist: {title: L, items: [Chad, chad]}",
		"blank item":     "title: T\nlist: {title: L, items: [a, '  ']}",
		"duplicate key":  "title: T\ntopics:\n  items:\n    - {key: crypto, title: A, description: d}\n    - {key: crypto, title: B, description: d}",
		"missing desc":   "title: T\ntopics:\n  items:\n    - {key: crypto, title: A}",
		"unknown field":  "title: T\nlist: {title: L, items: [a]}\ncolour: red",
	}
	for name, doc := range cases {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestParseEnforcesTopicKeys(t *testing.T) {
	allowed := func(k string) bool { return k == "security" }
	_, err := Parse([]byte(small), WithTopicKeys(allowed))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), `"crypto" is not an addressable topic`), err.Error())
}

func TestLoadFileAndFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.yaml")
	require.NoError(t, os.WriteFile(path, []byte(small), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	c, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 195, c.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
