package joinlink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	link, err := Build("https://play.example.com/join", "test-session-id")
	require.NoError(t, err)
	assert.Equal(t, "https://play.example.com/join?session=test-session-id", link)
}

func TestBuildPreservesExistingQuery(t *testing.T) {
	link, err := Build("https://play.example.com/join?lang=nb", "test-session-id")
	require.NoError(t, err)
	assert.Equal(t, "https://play.example.com/join?lang=nb&session=test-session-id", link)
}

func TestBuildEscapesSessionID(t *testing.T) {
	link, err := Build("https://play.example.com/join", "id with spaces")
	require.NoError(t, err)
	assert.Equal(t, "https://play.example.com/join?session=id+with+spaces", link)
}

func TestBuildEmptySessionID(t *testing.T) {
	_, err := Build("https://play.example.com/join", "")
	assert.EqualError(t, err, "session id cannot be empty")
}

func TestQRProducesPNG(t *testing.T) {
	png, err := QR("https://play.example.com/join", "test-session-id", 256)
	require.NoError(t, err)
	require.NotEmpty(t, png)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestQREmptySessionID(t *testing.T) {
	_, err := QR("https://play.example.com/join", "", 256)
	assert.Error(t, err)
}
