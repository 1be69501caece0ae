package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeDeserializeQaCreated(t *testing.T) {
	evt := QaCreatedEvent{
		BaseEvent:  NewBaseEvent(QaCreated, "ingest"),
		QaID:       "65f0c0ffee",
		CategoryID: 3,
		URI:        "art-1",
	}

	data, typ, err := SerializeEvent(evt)
	require.NoError(t, err)
	assert.Equal(t, QaCreated, typ)

	out, err := DeserializeEvent(typ, data)
	require.NoError(t, err)
	got, ok := out.(*QaCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, evt.ID, got.ID)
	assert.Equal(t, "art-1", got.URI)
	assert.EqualValues(t, 3, got.CategoryID)
	assert.Equal(t, "1.0", got.Version)
}

func TestSerializeUnknownEvent(t *testing.T) {
	_, _, err := SerializeEvent(struct{}{})
	assert.Error(t, err)

	_, err = DeserializeEvent("post.created", []byte(`{}`))
	assert.Error(t, err)
}
