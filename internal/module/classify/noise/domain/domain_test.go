package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestModel_TableName(t *testing.T) {
	assert.Equal(t, "classify_noise_models", Model{}.TableName())
}

func TestModel_Ratio_ZeroDocumentsIsZero(t *testing.T) {
	m := New(uuid.New())
	assert.Equal(t, 0.0, m.Ratio("danke"))
}

func TestModel_Observe_TracksDistinctTokensPerDocument(t *testing.T) {
	m := New(uuid.New())

	m.Observe([]string{"vielen", "dank", "vielen"}, 0)
	m.Observe([]string{"vielen", "fuer", "ihren", "einkauf"}, 0)

	assert.Equal(t, 2, m.TotalDocuments)
	assert.InDelta(t, 1.0, m.Ratio("vielen"), 0.0001)
	assert.InDelta(t, 0.5, m.Ratio("dank"), 0.0001)
	assert.InDelta(t, 0.5, m.Ratio("einkauf"), 0.0001)
	assert.Equal(t, 0.0, m.Ratio("never-seen"))
}

func TestModel_Observe_DampenerCapSaturatesCount(t *testing.T) {
	m := New(uuid.New())

	for i := 0; i < 10; i++ {
		m.Observe([]string{"vielen"}, 3)
	}

	assert.Equal(t, 3, m.DocFrequency.Data()["vielen"])
	assert.Equal(t, 10, m.TotalDocuments)
	assert.InDelta(t, 0.3, m.Ratio("vielen"), 0.0001)
}

func TestModel_Prune_DropsTokensBelowMinCount(t *testing.T) {
	m := New(uuid.New())
	m.Observe([]string{"vielen", "dank"}, 0)
	m.Observe([]string{"vielen", "fuer", "ihren"}, 0)
	m.Observe([]string{"vielen"}, 0)

	removed := m.Prune(2)

	freq := m.DocFrequency.Data()
	assert.Equal(t, 3, removed)
	assert.Equal(t, 3, freq["vielen"])
	assert.NotContains(t, freq, "dank")
	assert.NotContains(t, freq, "fuer")
	assert.NotContains(t, freq, "ihren")
}

func TestModel_Prune_NoopWhenEverythingAboveMinCount(t *testing.T) {
	m := New(uuid.New())
	m.Observe([]string{"vielen"}, 0)
	m.Observe([]string{"vielen"}, 0)

	assert.Equal(t, 0, m.Prune(1))
	assert.Contains(t, m.DocFrequency.Data(), "vielen")
}
