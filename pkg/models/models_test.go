package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestChunkID(t *testing.T) {
	docID := uuid.MustParse("11111111-2222-3333-4444-555555555555")

	assert.Equal(t, "11111111-2222-3333-4444-555555555555:0", ChunkID(docID, 0))
	assert.Equal(t, "11111111-2222-3333-4444-555555555555:17", ChunkID(docID, 17))
}

func TestDocumentIsTerminal(t *testing.T) {
	tests := []struct {
		status   DocumentStatus
		terminal bool
	}{
		{DocumentPending, false},
		{DocumentProcessing, false},
		{DocumentSuccess, true},
		{DocumentFailed, true},
	}

	for _, tt := range tests {
		d := Document{Status: tt.status}
		assert.Equal(t, tt.terminal, d.IsTerminal(), "status %s", tt.status)
	}
}

func TestSearchFilterIsZero(t *testing.T) {
	var nilFilter *SearchFilter
	assert.True(t, nilFilter.IsZero())
	assert.True(t, (&SearchFilter{}).IsZero())
	assert.True(t, (&SearchFilter{Eq: map[string]string{}}).IsZero())
	assert.False(t, (&SearchFilter{Eq: map[string]string{"region": "auckland"}}).IsZero())
}
