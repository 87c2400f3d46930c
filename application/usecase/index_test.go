package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexmorbo/bttn-relay/domain/token"
)

func TestIndex_ListsButtons(t *testing.T) {
	registry, _, _ := setupRegistry()
	codec := token.NewCodec("a_secret")
	_, err := registry.Load("incident")
	require.NoError(t, err)
	_, err = registry.Load("hello")
	require.NoError(t, err)

	uc := NewIndexUseCase(registry, codec, "http://relay/")
	entries, err := uc.Execute(codec.Sign(token.IndexLabel, ""))
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "hello", entries[0].Label)
	assert.Equal(t, "incident", entries[1].Label)
	assert.Equal(t, "http://relay/"+codec.Sign("incident", ""), entries[1].PushURL)
	assert.Equal(t, "http://relay/delete/"+codec.Sign("incident", token.ActionDelete), entries[1].DeleteURL)
	assert.Equal(t, "http://relay/initialise/"+codec.Sign("incident", token.ActionInitialise), entries[1].InitialiseURL)
}

func TestIndex_RequiresIndexToken(t *testing.T) {
	registry, _, _ := setupRegistry()
	codec := token.NewCodec("a_secret")
	uc := NewIndexUseCase(registry, codec, "")

	for _, tok := range []string{"", "garbage", codec.Sign("incident", "")} {
		_, err := uc.Execute(tok)
		assert.ErrorIs(t, err, token.ErrInvalidToken)
	}
}

func TestIndex_UnsignedModeIsOpen(t *testing.T) {
	loader := newMockButtonLoader()
	codec := token.NewCodec("")
	registry := NewRegistry(loader, codec, &mockTokenWriter{}, testLogger())
	_, err := registry.Load("incident")
	require.NoError(t, err)

	entries, err := NewIndexUseCase(registry, codec, "").Execute("")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "/incident", entries[0].PushURL)
	assert.Equal(t, "/delete/incident", entries[0].DeleteURL)
}
