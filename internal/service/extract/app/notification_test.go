package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	t.Run("plain key", func(t *testing.T) {
		body := []byte(`{"Records":[{"s3":{"object":{"key":"bundle.json"}}}]}`)
		key, err := objectKey(body)
		require.NoError(t, err)
		assert.Equal(t, "bundle.json", key)
	})

	t.Run("percent-encoded key", func(t *testing.T) {
		body := []byte(`{"Records":[{"s3":{"object":{"key":"patient+records%2Fbundle%20one.json"}}}]}`)
		key, err := objectKey(body)
		require.NoError(t, err)
		assert.Equal(t, "patient records/bundle one.json", key)
	})

	t.Run("multiple records uses the first", func(t *testing.T) {
		body := []byte(`{"Records":[{"s3":{"object":{"key":"a.json"}}},{"s3":{"object":{"key":"b.json"}}}]}`)
		key, err := objectKey(body)
		require.NoError(t, err)
		assert.Equal(t, "a.json", key)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := objectKey([]byte(`not json`))
		require.Error(t, err)
	})

	t.Run("no records", func(t *testing.T) {
		_, err := objectKey([]byte(`{"Records":[]}`))
		require.Error(t, err)
	})

	t.Run("empty key", func(t *testing.T) {
		_, err := objectKey([]byte(`{"Records":[{"s3":{"object":{}}}]}`))
		require.Error(t, err)
	})

	t.Run("undecodable key", func(t *testing.T) {
		_, err := objectKey([]byte(`{"Records":[{"s3":{"object":{"key":"bad%zz"}}}]}`))
		require.Error(t, err)
	})
}
